package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serial.BaudRate != 9600 {
		t.Fatalf("baud = %d; want 9600", cfg.Serial.BaudRate)
	}
	if cfg.Serial.ReadTimeout() != 2*time.Second {
		t.Fatalf("timeout = %v; want 2s", cfg.Serial.ReadTimeout())
	}
	if cfg.Poll.Interval() != time.Second {
		t.Fatalf("interval = %v; want 1s", cfg.Poll.Interval())
	}
	if cfg.Export.Path != "sensor_data.csv" || cfg.HTTP.Port != "8080" || cfg.Log.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileEnvAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datalogger.yml")
	yml := "serial:\n  baud_rate: 115200\n  timeout_seconds: 0.5\npoll:\n  interval_seconds: 0.25\nexport:\n  path: from-file.csv\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATALOGGER_HTTP_PORT", "9090")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("out", "", "")
	if err := flags.Parse([]string{"--out", "from-flag.csv"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serial.BaudRate != 115200 {
		t.Errorf("baud = %d; want 115200", cfg.Serial.BaudRate)
	}
	if cfg.Serial.ReadTimeout() != 500*time.Millisecond {
		t.Errorf("timeout = %v; want 500ms", cfg.Serial.ReadTimeout())
	}
	if cfg.Poll.Interval() != 250*time.Millisecond {
		t.Errorf("interval = %v; want 250ms", cfg.Poll.Interval())
	}
	if cfg.HTTP.Port != "9090" {
		t.Errorf("http.port = %q; want env override 9090", cfg.HTTP.Port)
	}
	if cfg.Export.Path != "from-flag.csv" {
		t.Errorf("export.path = %q; want flag override", cfg.Export.Path)
	}
}

func TestLoad_UnsetFlagKeepsFileValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.yml")
	if err := os.WriteFile(path, []byte("serial:\n  baud_rate: 19200\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("baud", 9600, "")

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serial.BaudRate != 19200 {
		t.Fatalf("baud = %d; want 19200 from file", cfg.Serial.BaudRate)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml"), nil); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Log:    LogConfig{Level: "info"},
		Serial: SerialConfig{BaudRate: 9600, TimeoutSeconds: 2},
		Poll:   PollConfig{IntervalSeconds: 1},
		Export: ExportConfig{Path: "x.csv"},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]func(c *Config){
		"bad level":     func(c *Config) { c.Log.Level = "loud" },
		"zero baud":     func(c *Config) { c.Serial.BaudRate = 0 },
		"zero timeout":  func(c *Config) { c.Serial.TimeoutSeconds = 0 },
		"neg interval":  func(c *Config) { c.Poll.IntervalSeconds = -1 },
		"empty export":  func(c *Config) { c.Export.Path = "  " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
