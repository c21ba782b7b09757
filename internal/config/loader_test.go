package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/racecurve/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DataPath, convey.ShouldEqual, "data/results.txt")
				convey.So(cfg.CacheEnabled, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RACECURVE_ADDR", ":8080")
			_ = os.Setenv("RACECURVE_DATA_PATH", "/srv/results-2025.txt")
			_ = os.Setenv("RACECURVE_LAYOUT", "results")
			_ = os.Setenv("RACECURVE_HAS_HEADER", "true")
			_ = os.Setenv("RACECURVE_CACHE_ENABLED", "false")
			_ = os.Setenv("RACECURVE_WATCH", "true")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DataPath, convey.ShouldEqual, "/srv/results-2025.txt")
				convey.So(cfg.Layout, convey.ShouldEqual, "results")
				convey.So(cfg.HasHeader, convey.ShouldBeTrue)
				convey.So(cfg.CacheEnabled, convey.ShouldBeFalse)
				convey.So(cfg.Watch, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
layout: results
has_header: true
default_dataset: "2024"
datasets:
  "2023": data/results-2023.txt
  "2024": data/results-2024.txt
  "2025": data/results-2025.txt
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("RACECURVE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Layout, convey.ShouldEqual, "results")
				convey.So(cfg.HasHeader, convey.ShouldBeTrue)
				convey.So(cfg.Datasets, convey.ShouldHaveLength, 3)
				convey.So(cfg.Datasets["2023"], convey.ShouldEqual, "data/results-2023.txt")
				convey.So(cfg.DefaultName(), convey.ShouldEqual, "2024")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nlog_level: debug\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("RACECURVE_CONFIG", tmpFile)
			_ = os.Setenv("RACECURVE_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("RACECURVE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("RACECURVE_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("RACECURVE_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown layout", func() {
			_ = os.Setenv("RACECURVE_LAYOUT", "csv")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with an invalid boolean", func() {
			_ = os.Setenv("RACECURVE_CACHE_ENABLED", "sometimes")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"RACECURVE_CONFIG",
		"RACECURVE_ADDR",
		"RACECURVE_DATA_PATH",
		"RACECURVE_LAYOUT",
		"RACECURVE_HAS_HEADER",
		"RACECURVE_CACHE_ENABLED",
		"RACECURVE_WATCH",
		"RACECURVE_LOG_LEVEL",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "racecurve-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
