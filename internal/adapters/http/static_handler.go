package http

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/recipebox/core/internal/infrastructure/logger"
)

// StaticHandler serves the front-end page and its stylesheet from disk.
// Files are read on every request.
type StaticHandler struct {
	indexPath      string
	stylesheetPath string
	logger         *logger.Logger
}

// NewStaticHandler creates a new static asset handler
func NewStaticHandler(dir, index, stylesheet string, logger *logger.Logger) *StaticHandler {
	return &StaticHandler{
		indexPath:      filepath.Join(dir, index),
		stylesheetPath: filepath.Join(dir, stylesheet),
		logger:         logger,
	}
}

// Index serves the HTML document
func (h *StaticHandler) Index(c echo.Context) error {
	data, err := os.ReadFile(h.indexPath)
	if err != nil {
		h.logger.Errorw("Failed to read index document", "error", err, "path", h.indexPath)
		return c.Blob(http.StatusInternalServerError, echo.MIMETextPlain, []byte("Error loading index.html"))
	}

	return c.Blob(http.StatusOK, echo.MIMETextHTML, data)
}

// Stylesheet serves the CSS file
func (h *StaticHandler) Stylesheet(c echo.Context) error {
	data, err := os.ReadFile(h.stylesheetPath)
	if err != nil {
		return c.Blob(http.StatusNotFound, echo.MIMETextPlain, []byte("CSS not found"))
	}

	return c.Blob(http.StatusOK, "text/css", data)
}
