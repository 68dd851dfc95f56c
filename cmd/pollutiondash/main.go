package main

import (
	"os"
	"time"

	"dashboards/internal/api"
	"dashboards/internal/config"
	"dashboards/internal/dashboard"
	"dashboards/internal/engine"
	"dashboards/internal/geo"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

var defaults = config.Config{
	Host:        "0.0.0.0",
	Port:        80,
	Debug:       true,
	DataPath:    "pollution_data.csv",
	GeoJSONPath: "us-states.json",
	CacheTTL:    10 * time.Minute,
}

func main() {
	cfg, err := config.Parse("pollutiondash", os.Args[1:], defaults)
	if err != nil {
		os.Exit(config.ExitCode(err))
	}
	e := api.NewServer(cfg)

	// The CSV and the boundary file are independent; read both at once.
	t0 := time.Now()
	var (
		ds  *engine.Dataset
		ref *geo.Reference
		g   errgroup.Group
	)
	g.Go(func() error {
		var err error
		ds, err = dashboard.LoadPollution(cfg.DataPath)
		return err
	})
	g.Go(func() error {
		var err error
		ref, err = geo.Load(cfg.GeoJSONPath)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("Startup failed: %v", err)
	}
	log.Infof("Loaded %d rows in %v", ds.Rows(), time.Since(t0))

	p, err := dashboard.NewPollution(ds, ref, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}

	api.RegisterHealth(e, ds)
	api.NewTableHandler(dashboard.NewTable(ds)).RegisterRoutes(e)
	api.NewPollutionHandler(p).RegisterRoutes(e)

	log.Infof("Pollution dashboard on http://%s", cfg.Addr())
	if err := api.Run(e, cfg.Addr()); err != nil {
		log.Fatal(err)
	}
}
