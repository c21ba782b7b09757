package config_test

import (
	"errors"
	"testing"

	"github.com/okian/racecurve/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Layout, convey.ShouldEqual, "simple")
			convey.So(cfg.CacheEnabled, convey.ShouldBeTrue)
			convey.So(cfg.Watch, convey.ShouldBeFalse)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then a single default dataset is derived from data_path", func() {
			convey.So(cfg.DatasetPaths(), convey.ShouldResemble, map[string]string{"default": "data/results.txt"})
			convey.So(cfg.DefaultName(), convey.ShouldEqual, "default")
		})
	})
}

func TestConfig_Datasets(t *testing.T) {
	convey.Convey("Given several yearly datasets", t, func() {
		cfg := config.New()
		cfg.Datasets = map[string]string{"2023": "a.txt", "2025": "c.txt", "2024": "b.txt"}

		convey.Convey("Then the latest year is the default", func() {
			convey.So(cfg.DefaultName(), convey.ShouldEqual, "2025")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then an explicit default must exist", func() {
			cfg.DefaultDataset = "2019"
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("Then the returned map is a copy", func() {
			paths := cfg.DatasetPaths()
			paths["2030"] = "x"
			convey.So(cfg.Datasets, convey.ShouldHaveLength, 3)
		})
	})

	convey.Convey("Given invalid fields", t, func() {
		cfg := config.New()
		cfg.Layout = "csv"
		convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)

		cfg = config.New()
		cfg.LogFormat = "xml"
		convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)

		cfg = config.New()
		cfg.Datasets = map[string]string{"2024": " "}
		convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
	})
}
