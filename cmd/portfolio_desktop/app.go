package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/user/portfolio_go/internal/web"
)

// App is bound to the window. The pages themselves are served by the
// embedded web server.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	server *web.Server
}

// NewApp creates the application around server.
func NewApp(server *web.Server) *App {
	return &App{server: server}
}

// Startup is called when the window opens. It keeps the context for the
// runtime calls and starts the janitor.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	runtime.WindowSetTitle(a.ctx, "Portfolio")
	var janitor context.Context
	janitor, a.cancel = context.WithCancel(ctx)
	go a.server.Janitor(janitor)
}

// Shutdown stops the janitor.
func (a *App) Shutdown(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) sendStatus(message string) {
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, "statusUpdate", message)
	}
	log.Println(message)
}

// ChooseReportPath asks where to save a McCabe-Thiele report. An empty
// path means the dialog was cancelled.
func (a *App) ChooseReportPath() (string, error) {
	return runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Save McCabe-Thiele report",
		DefaultFilename: "mccabe_thiele_report.pdf",
		Filters:         []runtime.FileFilter{{DisplayName: "PDF (*.pdf)", Pattern: "*.pdf"}},
	})
}

// HandleGenerateReport writes the McCabe-Thiele report for the page
// parameters in query to pdfFilePath. The work runs in the background;
// progress arrives as statusUpdate events and the outcome as
// generationComplete.
func (a *App) HandleGenerateReport(query string, pdfFilePath string) (string, error) {
	values, err := url.ParseQuery(query)
	if err != nil {
		return "", fmt.Errorf("invalid column parameters: %w", err)
	}
	if pdfFilePath == "" {
		return "", fmt.Errorf("no file selected")
	}
	a.sendStatus(fmt.Sprintf("Request: %s -> %s", query, pdfFilePath))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errMsg := fmt.Sprintf("PANIC recovered: %v", r)
				a.sendStatus(errMsg)
				runtime.EventsEmit(a.ctx, "generationComplete", false, errMsg)
			}
		}()
		runtime.EventsEmit(a.ctx, "generationStart")

		a.sendStatus("Stepping off stages and running the sensitivity sweep...")
		f, err := os.Create(pdfFilePath)
		if err != nil {
			errMsg := fmt.Sprintf("Error creating PDF file: %v", err)
			a.sendStatus(errMsg)
			runtime.EventsEmit(a.ctx, "generationComplete", false, errMsg)
			return
		}
		err = a.server.WriteMcCabeReport(f, values)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(pdfFilePath)
			errMsg := fmt.Sprintf("Error generating PDF report: %v", err)
			a.sendStatus(errMsg)
			runtime.EventsEmit(a.ctx, "generationComplete", false, errMsg)
			return
		}
		successMsg := fmt.Sprintf("PDF report successfully generated: %s", pdfFilePath)
		a.sendStatus(successMsg)
		runtime.EventsEmit(a.ctx, "generationComplete", true, successMsg)
	}()

	return "Report generation started in background.", nil
}
