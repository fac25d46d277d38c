package web

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/user/portfolio_go/internal/games"
	"github.com/user/portfolio_go/internal/latex"
	"github.com/user/portfolio_go/internal/lyrics"
	"github.com/user/portfolio_go/internal/menu"
)

func (s *Server) index(c echo.Context) error {
	return render(c, "index", nil, nil)
}

type latexData struct {
	Latex  string
	Python string
	Numpy  string
}

func (s *Server) latexPage(c echo.Context) error {
	data := &latexData{Latex: c.FormValue("latex")}
	if strings.TrimSpace(data.Latex) != "" {
		data.Python = latex.ToPython(data.Latex)
		data.Numpy = latex.ToNumpy(data.Latex)
	}
	return render(c, "latex", data, nil)
}

type dropChanceData struct {
	Percent  float64
	Attempts int
	Message  string
}

func (s *Server) dropChancePage(c echo.Context) error {
	f := newForm(c)
	data := &dropChanceData{
		Percent:  f.float("percent", 0),
		Attempts: f.int("attempts", 0),
	}
	if err := f.err(); err != nil {
		return render(c, "dropchance", data, err)
	}
	var err error
	data.Message, err = games.DropChanceMessage(data.Percent, data.Attempts)
	return render(c, "dropchance", data, err)
}

type menuData struct {
	Meal  menu.Meal
	Meals []menu.Meal
	Menu  *menu.Menu
}

func (s *Server) menuPage(c echo.Context) error {
	data := &menuData{Meals: menu.Meals}
	meal, err := menu.ParseMeal(c.FormValue("meal"))
	if err != nil {
		return render(c, "menu", data, err)
	}
	data.Meal = meal
	data.Menu, err = s.Menu.Menu(c.Request().Context(), meal)
	if errors.Is(err, menu.ErrNoMenu) {
		err = errors.New("No menu is available for " + meal.Label() + " this week.")
	}
	return render(c, "menu", data, err)
}

type lyricsData struct {
	Text      string
	Rendering lyrics.Rendering
}

func (s *Server) lyricsPage(c echo.Context) error {
	data := &lyricsData{Text: c.FormValue("lyrics")}
	if strings.TrimSpace(data.Text) == "" {
		return render(c, "jplyrics", data, nil)
	}
	tok, err := s.tokenizer()
	if err != nil {
		return render(c, "jplyrics", data, err)
	}
	data.Rendering = lyrics.Render(tok, data.Text)
	return render(c, "jplyrics", data, nil)
}
