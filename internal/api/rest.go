// Package api is the HTTP surface of the warehouse. It is a thin wrapper
// around the Echo router; each route group is owned by one controller, and
// controllers talk to the pipeline and query service through small interfaces.
package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"moviedw/internal/api/movies"
	"moviedw/internal/api/searches"
	"moviedw/internal/api/seeds"
)

type (
	controller interface {
		SetRoutes(*echo.Group)
	}

	// RestGateway owns the router and its controllers.
	RestGateway struct {
		addr string
		ec   *echo.Echo
	}
)

// requestValidator adapts go-playground/validator to Echo's Validator hook,
// turning struct-tag failures into 400 responses.
type requestValidator struct {
	validate *validator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	if err := rv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// NewRestGateway constructs the router and registers every route group.
// searcher may be nil when search is not configured; its controller then
// answers 503.
func NewRestGateway(addr string, runner seeds.Runner, service movies.Service, searcher searches.Searcher) *RestGateway {
	ec := echo.New()
	ec.HidePort = true
	ec.HideBanner = true
	ec.Validator = &requestValidator{validate: validator.New()}

	ec.Use(middleware.Logger())
	ec.Use(middleware.Recover())
	ec.Pre(middleware.AddTrailingSlash())

	seeds.New(runner).SetRoutes(ec.Group("/seed"))
	movies.New(service).SetRoutes(ec.Group("/query/movies"))
	searches.New(searcher).SetRoutes(ec.Group("/search/movies"))

	return &RestGateway{addr: addr, ec: ec}
}

// Handler exposes the router as a plain http.Handler.
func (gateway *RestGateway) Handler() http.Handler { return gateway.ec }

// Run serves until the context is cancelled, then closes the listener. The
// error from a clean context-driven shutdown is suppressed.
func (gateway *RestGateway) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = gateway.ec.Close()
	}()

	err := gateway.ec.Start(gateway.addr)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
