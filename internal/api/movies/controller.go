// Package movies exposes the warehouse query endpoints.
package movies

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"moviedw/internal/movie"
	"moviedw/internal/query"
)

type (
	// Service is where this controller reads movies from, typically the query
	// service.
	Service interface {
		Movies(ctx context.Context, p query.Params) ([]movie.Movie, error)
	}

	Controller struct {
		service Service
	}

	listRequest struct {
		Country   string   `query:"country"`
		Language  string   `query:"language"`
		MinScore  *float64 `query:"min_score" validate:"omitempty,gte=0,lte=100"`
		StartDate string   `query:"start_date"`
		EndDate   string   `query:"end_date"`
		Limit     int      `query:"limit" validate:"gte=0,lte=1000"`
		Offset    int      `query:"offset" validate:"gte=0"`
	}
)

func New(service Service) *Controller {
	return &Controller{service: service}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/", controller.list)
}

// list returns the movies matching the filter query parameters. Invalid
// filter values are a 400; the filters themselves are all optional.
func (controller *Controller) list(ec echo.Context) error {
	var req listRequest
	if err := ec.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed query parameters")
	}
	if err := ec.Validate(&req); err != nil {
		return err
	}

	ms, err := controller.service.Movies(ec.Request().Context(), query.Params{
		Country:   req.Country,
		Language:  req.Language,
		MinScore:  req.MinScore,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})

	var invalid *query.InvalidParamError
	if errors.As(err, &invalid) {
		return echo.NewHTTPError(http.StatusBadRequest, invalid.Error())
	}
	if err != nil {
		return err
	}

	out := make([]map[string]any, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Dict())
	}
	return ec.JSON(http.StatusOK, out)
}
