package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashboards/internal/charts"
	"dashboards/internal/config"
	"dashboards/internal/engine"
	"dashboards/internal/models"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/zeebo/xxh3"
	"golang.org/x/time/rate"
)

// jsonSerializer plugs goccy/go-json into Echo.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body: "+err.Error()).SetInternal(err)
	}
	return nil
}

// NewServer builds the Echo instance shared by both commands.
func NewServer(cfg config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = jsonSerializer{}
	if cfg.Debug {
		e.Debug = true
		e.Logger.SetLevel(log.DEBUG)
		log.SetLevel(log.DEBUG)
	} else {
		e.Logger.SetLevel(log.INFO)
		log.SetLevel(log.INFO)
	}

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	if cfg.Rate > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.Rate))))
	}
	return e
}

// Run starts e and blocks until it fails or the process is signalled, in
// which case in-flight requests get ten seconds to finish.
func Run(e *echo.Echo, addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- e.Start(addr) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// RegisterHealth exposes the loaded dataset's shape.
func RegisterHealth(e *echo.Echo, ds *engine.Dataset) {
	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.Health{
			Status:      "ok",
			Rows:        ds.Rows(),
			Columns:     len(ds.Columns()),
			Fingerprint: fmt.Sprintf("%016x", ds.Fingerprint()),
		})
	})
}

// --- HELPERS ---

// etag ties a response to the dataset content and the request key.
func etag(ds *engine.Dataset, key string) string {
	return fmt.Sprintf(`W/"%016x-%016x"`, ds.Fingerprint(), xxh3.HashString(key))
}

// notModified sets the ETag header and reports whether the client already
// holds this representation.
func notModified(c echo.Context, tag string) bool {
	c.Response().Header().Set("ETag", tag)
	return c.Request().Header.Get("If-None-Match") == tag
}

func httpError(err error) error {
	switch {
	case errors.Is(err, engine.ErrUnknownColumn),
		errors.Is(err, engine.ErrNotNumeric),
		errors.Is(err, engine.ErrNotCategorical):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, charts.ErrNoData):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	}
	return err
}
