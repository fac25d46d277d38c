// Command portfolio_desktop runs the portfolio site in a desktop window.
package main

import (
	"log"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/user/portfolio_go/internal/web"
)

func main() {
	server, err := web.New(web.DefaultConfig())
	if err != nil {
		log.Fatal("Error setting up server: ", err.Error())
	}
	app := NewApp(server)

	err = wails.Run(&options.App{
		Title:  "Portfolio",
		Width:  1200,
		Height: 860,
		AssetServer: &assetserver.Options{
			Handler: server,
		},
		BackgroundColour: &options.RGBA{R: 250, G: 250, B: 250, A: 255}, // #fafafa
		OnStartup:        app.Startup,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		log.Fatal("Error running Wails app: ", err.Error())
	}
}
