// Package seeds exposes the pipeline-triggering endpoints.
package seeds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"moviedw/internal/extract"
	"moviedw/internal/pipeline"
	"moviedw/internal/transform"
)

type (
	// Runner drives the seed flows, typically the pipeline.
	Runner interface {
		SeedSample(ctx context.Context) (pipeline.SeedResult, error)
		SeedUpload(ctx context.Context, fileType string, r io.Reader) (pipeline.SeedResult, error)
	}

	Controller struct {
		runner Runner
	}
)

func New(runner Runner) *Controller {
	return &Controller{runner: runner}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.POST("/", controller.sample)
	eg.POST("/file/", controller.file)
}

// sample loads the built-in demo dataset.
func (controller *Controller) sample(ec echo.Context) error {
	res, err := controller.runner.SeedSample(ec.Request().Context())
	if err != nil {
		return seedError(err)
	}
	return ec.JSON(http.StatusOK, res)
}

// file accepts a multipart upload ("file" part, optional "type" field) and
// runs the full pipeline over it. Without an explicit type the file extension
// decides.
func (controller *Controller) file(ec echo.Context) error {
	fh, err := ec.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing multipart part 'file'")
	}

	fileType := strings.TrimSpace(ec.FormValue("type"))
	if fileType == "" {
		fileType = strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer src.Close()

	res, err := controller.runner.SeedUpload(ec.Request().Context(), fileType, src)
	if err != nil {
		return seedError(err)
	}
	return ec.JSON(http.StatusOK, res)
}

// seedError maps pipeline failures onto HTTP statuses: declared-but-missing
// formats are 501, bad input data is 422, bad request shape is 400, the rest
// is a plain 500.
func seedError(err error) error {
	if errors.Is(err, extract.ErrNotImplemented) {
		return echo.NewHTTPError(http.StatusNotImplemented, err.Error())
	}

	var missing *transform.MissingColumnsError
	var dates *transform.InvalidDatesError
	if errors.As(err, &missing) || errors.As(err, &dates) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	var unsupported *pipeline.UnsupportedTypeError
	if errors.As(err, &unsupported) {
		return echo.NewHTTPError(http.StatusBadRequest, unsupported.Error())
	}
	return err
}
