package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/user/portfolio_go/internal/games"
)

func (s *Server) sandboxPage(c echo.Context) error {
	return render(c, "sandbox", nil, nil)
}

func gameError(err error) error {
	switch {
	case errors.Is(err, games.ErrNoSession):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, games.ErrGameOver):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return err
}

func (s *Server) reactionStart(c echo.Context) error {
	id, delay := s.Sandbox.StartReaction()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":      id,
		"delayMs": delay.Milliseconds(),
	})
}

func (s *Server) reactionClick(c echo.Context) error {
	res, err := s.Sandbox.ClickReaction(c.Param("id"))
	if err != nil {
		return gameError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tooEarly": res.TooEarly,
		"ms":       res.Millis(),
	})
}

func (s *Server) accuracyStart(c echo.Context) error {
	id, target := s.Sandbox.StartAccuracy()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":     id,
		"target": target,
		"total":  games.Targets,
	})
}

func (s *Server) accuracyHit(c echo.Context) error {
	step, err := s.Sandbox.HitTarget(c.Param("id"))
	if err != nil {
		return gameError(err)
	}
	return c.JSON(http.StatusOK, step)
}
