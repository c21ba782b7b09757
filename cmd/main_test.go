package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/racecurve/internal/config"
	"github.com/okian/racecurve/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainWiring(t *testing.T) {
	convey.Convey("Given configuration for one results file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "results.txt")
		convey.So(os.WriteFile(path, []byte("Willem Goff\tM\t24\t17:19.9\nSomeone Else\tM\t24\t18:00.0\n"), 0o600), convey.ShouldBeNil)

		t.Setenv("RACECURVE_DATA_PATH", path)
		t.Setenv("RACECURVE_ADDR", ":0")

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.DataPath, convey.ShouldEqual, path)

		convey.Convey("When the service and handler are built", func() {
			svc, err := newService(cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			ctx := context.Background()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()
			h := newHandler(ctx, svc)

			convey.Convey("Then /data serves the summary", func() {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/data", http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(strings.TrimSpace(w.Body.String()), convey.ShouldEqual,
					`{"male":[{"age":24,"time_seconds":1039.9,"time_display":"17:19.9","name":"Willem Goff"}],"female":[]}`)
				convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
			})

			convey.Convey("Then the chart page and docs are mounted", func() {
				for _, p := range []string{"/", "/api-docs", "/openapi.yaml", "/healthz", "/metrics"} {
					w := httptest.NewRecorder()
					h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})
	})

	convey.Convey("Given an unknown layout", t, func() {
		cfg := config.New()
		cfg.Layout = "csv"

		convey.Convey("Then the service is not built", func() {
			_, err := newService(cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
