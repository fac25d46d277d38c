package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/user/portfolio_go/internal/downloader"
)

type downloaderData struct {
	URL      string
	Media    downloader.Media
	FormatID string
	Analysis *downloader.Analysis
	Result   *downloader.Result
	Busy     bool
}

// downloaderPage shows the URL form. Posting action=analyze lists the
// formats, action=download fetches the selected one.
func (s *Server) downloaderPage(c echo.Context) error {
	f := newForm(c)
	data := &downloaderData{
		URL:      f.str("url", ""),
		Media:    downloader.Media(f.str("media", string(downloader.Video))),
		FormatID: f.str("format", ""),
		Busy:     s.Downloads.Busy(),
	}
	ctx := c.Request().Context()
	var err error
	switch f.str("action", "") {
	case "analyze":
		data.Analysis, err = s.Downloads.Analyze(ctx, data.URL)
	case "download":
		media, perr := downloader.ParseMedia(string(data.Media))
		if perr != nil {
			err = perr
			break
		}
		data.Result, err = s.Downloads.Download(ctx, downloader.Request{URL: data.URL, Media: media, FormatID: data.FormatID})
	}
	return render(c, "downloader", data, err)
}

func (s *Server) downloadFile(c echo.Context) error {
	res, err := s.Downloads.File(c.Param("id"))
	if errors.Is(err, downloader.ErrNotFound) || errors.Is(err, downloader.ErrNoFile) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.Attachment(res.Path, res.Filename)
}
