// Package searches exposes the full-text search endpoint.
package searches

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"moviedw/internal/search"
)

type (
	// Searcher runs full-text queries, typically the search indexer. A nil
	// Searcher means search is not configured for this deployment.
	Searcher interface {
		Search(ctx context.Context, q string, limit int) ([]search.Document, error)
	}

	Controller struct {
		searcher Searcher
	}

	searchRequest struct {
		Query string `query:"q" validate:"required"`
		Limit int    `query:"limit" validate:"gte=0,lte=1000"`
	}
)

func New(searcher Searcher) *Controller {
	return &Controller{searcher: searcher}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/", controller.search)
}

func (controller *Controller) search(ec echo.Context) error {
	if controller.searcher == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	var req searchRequest
	if err := ec.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed query parameters")
	}
	if err := ec.Validate(&req); err != nil {
		return err
	}

	docs, err := controller.searcher.Search(ec.Request().Context(), req.Query, req.Limit)
	if err != nil {
		return err
	}
	return ec.JSON(http.StatusOK, docs)
}
