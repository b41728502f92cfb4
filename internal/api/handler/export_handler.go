package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/schadensbericht/portal/internal/api/metrics"
)

// Exporter writes an archive of the application tree.
type Exporter interface {
	Write(ctx context.Context, w io.Writer) error
}

type ExportHandler struct {
	exporter Exporter
	filename string
	log      zerolog.Logger
}

func NewExportHandler(exporter Exporter, filename string, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{exporter: exporter, filename: filename, log: log}
}

// Download builds the project archive and sends it as an attachment. The
// archive is assembled in memory first so a failure still yields a clean
// error response.
//
// @Summary      Download project archive
// @Tags         export
// @Produce      application/zip
// @Success      200
// @Failure      500  {object}  map[string]string
// @Router       /export [get]
func (h *ExportHandler) Download(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.exporter.Write(c.Request().Context(), &buf); err != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("download export: %w", err)
	}

	metrics.ExportsTotal.WithLabelValues("success").Inc()
	h.log.Info().
		Str("user_id", currentUserID(c)).
		Int("bytes", buf.Len()).
		Msg("export downloaded")

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", h.filename))
	return c.Stream(http.StatusOK, "application/zip", &buf)
}
