package main

import (
	"os"
	"time"

	"dashboards/internal/api"
	"dashboards/internal/config"
	"dashboards/internal/dashboard"
	"dashboards/internal/engine"

	"github.com/labstack/gommon/log"
)

var defaults = config.Config{
	Host:     "127.0.0.1",
	Port:     8050,
	Debug:    true,
	DataPath: "Major_Safety_Events.csv",
}

func main() {
	cfg, err := config.Parse("tableview", os.Args[1:], defaults)
	if err != nil {
		os.Exit(config.ExitCode(err))
	}
	e := api.NewServer(cfg)

	t0 := time.Now()
	ds, err := engine.Load(cfg.DataPath)
	if err != nil {
		log.Fatalf("Loading %s: %v", cfg.DataPath, err)
	}
	log.Infof("Loaded %d rows x %d columns in %v", ds.Rows(), len(ds.Columns()), time.Since(t0))

	api.RegisterHealth(e, ds)
	api.NewTableHandler(dashboard.NewTable(ds)).RegisterRoutes(e)

	log.Infof("Table viewer on http://%s", cfg.Addr())
	if err := api.Run(e, cfg.Addr()); err != nil {
		log.Fatal(err)
	}
}
