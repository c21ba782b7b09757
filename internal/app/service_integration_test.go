package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/racecurve/internal/adapters/repository"
	"github.com/okian/racecurve/internal/adapters/source"
	service "github.com/okian/racecurve/internal/app"
	"github.com/okian/racecurve/internal/domain/parser"
	"github.com/okian/racecurve/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// results-layout lines: place, bib, division place, name, age, sex,
// division, gun time, net time.
const (
	results2024 = "1\t1\t1\tAnn Lee\t30\tF\tF30-34\t21:00.0\t20:58.0\n" +
		"2\t2\t1\tBob Ray\t41\tM\tM40-44\t18:00.0\t17:59.0\n"
	results2025 = "1\t1\t1\tCat Poe\t30\tF\tF30-34\t20:30.0\t20:29.0\n" +
		"2\t2\t1\tDan Oak\t41\tM\tM40-44\t18:00.0\t17:58.0\n" +
		"3\t3\t1\tEve Ash\t65\tF\tF65-69\t31:02.4\t31:00.0\n"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given yearly datasets in the results layout", t, func() {
		dir := t.TempDir()
		p24 := filepath.Join(dir, "results-2024.txt")
		p25 := filepath.Join(dir, "results-2025.txt")
		writeResults(t, p24, results2024)
		writeResults(t, p25, results2025)

		cat, err := source.FromPaths("2025", map[string]string{"2024": p24, "2025": p25})
		So(err, ShouldBeNil)
		store := repository.NewMemoryStore()
		svc := service.New(cat,
			service.WithLogger(logger.Get()),
			service.WithLayout(parser.ResultsLayout),
			service.WithStore(store),
			service.WithWatch(true),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When listing datasets", func() {
			list := svc.Datasets(ctx)

			Convey("Then both years are known and 2025 is the default", func() {
				So(list.Datasets, ShouldResemble, []string{"2024", "2025"})
				So(list.Default, ShouldEqual, "2025")
			})
		})

		Convey("When requesting a single year", func() {
			sum, err := svc.Summary(ctx, "2024")

			Convey("Then only that year is aggregated", func() {
				So(err, ShouldBeNil)
				So(sum.Female, ShouldHaveLength, 1)
				So(sum.Female[0].Name, ShouldEqual, "Ann Lee")
				So(sum.Female[0].TimeDisplay, ShouldEqual, "21:00.0")
			})
		})

		Convey("When requesting the all-time summary", func() {
			sum, err := svc.AllTime(ctx)

			Convey("Then each age keeps its fastest finisher across years", func() {
				So(err, ShouldBeNil)
				So(sum.Female, ShouldHaveLength, 2)
				So(sum.Female[0].Name, ShouldEqual, "Cat Poe")
				So(sum.Female[1].Age, ShouldEqual, 65)
			})

			Convey("Then ties keep the earlier year", func() {
				So(sum.Male, ShouldHaveLength, 1)
				So(sum.Male[0].Name, ShouldEqual, "Bob Ray")
			})
		})

		Convey("When requesting winners of a year", func() {
			w, err := svc.Winners(ctx, "2025")

			Convey("Then division winners are listed by sex and division", func() {
				So(err, ShouldBeNil)
				So(w.AgeGroup, ShouldHaveLength, 3)
				So(w.AgeGroup[0].Division, ShouldEqual, "F30-34")
				So(w.AgeGroup[2].Name, ShouldEqual, "Dan Oak")
				for _, a := range w.AgeGroup {
					So(a.OnFront, ShouldBeTrue)
				}
				So(w.Front, ShouldHaveLength, 3)
			})
		})

		Convey("When requesting rankings of a year", func() {
			ranked, err := svc.Rankings(ctx, "2025")

			Convey("Then front finishers are ordered by time", func() {
				So(err, ShouldBeNil)
				So(ranked, ShouldHaveLength, 3)
				So(ranked[0].Name, ShouldEqual, "Dan Oak")
				So(ranked[2].Name, ShouldEqual, "Eve Ash")
				So(ranked[2].DistanceToFront, ShouldEqual, 0)
			})
		})

		Convey("When a watched file is rewritten", func() {
			_, err := svc.Summary(ctx, "2024")
			So(err, ShouldBeNil)
			writeResults(t, p24, results2024+"3\t3\t1\tFay Elm\t50\tF\tF50-54\t25:00.0\t24:58.0\n")

			Convey("Then its snapshot is dropped", func() {
				deadline := time.Now().Add(5 * time.Second)
				for time.Now().Before(deadline) {
					if _, ok := store.Get(ctx, "2024"); !ok {
						break
					}
					time.Sleep(20 * time.Millisecond)
				}
				_, ok := store.Get(ctx, "2024")
				So(ok, ShouldBeFalse)
				So(counterValue("racecurve_summary_watch_invalidations_total", "2024"), ShouldBeGreaterThanOrEqualTo, 1)

				sum, err := svc.Summary(ctx, "2024")
				So(err, ShouldBeNil)
				So(sum.Female, ShouldHaveLength, 2)
			})
		})
	})
}
