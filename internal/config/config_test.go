package config

import (
	"testing"
	"time"
)

var defaults = Config{Host: "127.0.0.1", Port: 8050, Debug: true, DataPath: "data.csv", CacheTTL: time.Minute}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse("test", nil, defaults)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != defaults {
		t.Errorf("got %+v, want %+v", cfg, defaults)
	}
	if cfg.Addr() != "127.0.0.1:8050" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestParseEnvAndFlags(t *testing.T) {
	t.Setenv("DASH_PORT", "9000")
	t.Setenv("DASH_DEBUG", "false")
	t.Setenv("DASH_CACHE_TTL", "5s")
	t.Setenv("DASH_RATE", "not-a-number")

	cfg, err := Parse("test", []string{"-host", "0.0.0.0", "-data", "other.csv"}, defaults)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9000 || cfg.Debug || cfg.CacheTTL != 5*time.Second {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Rate != 0 {
		t.Errorf("invalid env must fall back to default, got %v", cfg.Rate)
	}
	if cfg.Host != "0.0.0.0" || cfg.DataPath != "other.csv" {
		t.Errorf("flags not applied: %+v", cfg)
	}

	cfg, err = Parse("test", []string{"-port", "7000"}, defaults)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 7000 {
		t.Errorf("flag must override env, got %d", cfg.Port)
	}
}

func TestParseBadFlag(t *testing.T) {
	if _, err := Parse("test", []string{"-port", "abc"}, defaults); err == nil {
		t.Error("expected error")
	}
}

func TestParseHelp(t *testing.T) {
	_, err := Parse("test", []string{"-h"}, defaults)
	if err == nil {
		t.Fatal("expected error")
	}
	if code := ExitCode(err); code != 0 {
		t.Errorf("-h exit code = %d, want 0", code)
	}

	_, err = Parse("test", []string{"-nope"}, defaults)
	if code := ExitCode(err); code != 2 {
		t.Errorf("unknown flag exit code = %d, want 2", code)
	}
}
