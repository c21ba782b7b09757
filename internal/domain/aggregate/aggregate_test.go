package aggregate_test

import (
	"math/rand"
	"testing"

	"github.com/okian/racecurve/internal/domain/aggregate"
	"github.com/okian/racecurve/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(name string, sex model.Sex, age int, secs float64, display string) model.RaceRecord {
	return model.RaceRecord{Name: name, Sex: sex, Age: age, TimeSeconds: secs, TimeDisplay: display}
}

func TestAggregate(t *testing.T) {
	Convey("Given two male runners of the same age", t, func() {
		records := []model.RaceRecord{
			rec("Willem Goff", model.Male, 24, 1039.9, "17:19.9"),
			rec("Someone Else", model.Male, 24, 1080.0, "18:00.0"),
		}

		Convey("When aggregating", func() {
			s := aggregate.Aggregate(records)

			Convey("Then only the fastest is kept", func() {
				So(s.Male, ShouldResemble, []model.AgeBest{
					{Age: 24, TimeSeconds: 1039.9, TimeDisplay: "17:19.9", Name: "Willem Goff"},
				})
				So(s.Female, ShouldNotBeNil)
				So(s.Female, ShouldBeEmpty)
			})
		})
	})

	Convey("Given equal times for the same sex and age", t, func() {
		records := []model.RaceRecord{
			rec("First", model.Female, 40, 1500, "25:00.0"),
			rec("Second", model.Female, 40, 1500, "25:00.0"),
		}

		Convey("Then the earlier record wins", func() {
			s := aggregate.Aggregate(records)
			So(s.Female, ShouldHaveLength, 1)
			So(s.Female[0].Name, ShouldEqual, "First")
		})
	})

	Convey("Given no records", t, func() {
		s := aggregate.Aggregate(nil)

		Convey("Then both sequences are empty but not nil", func() {
			So(s.Male, ShouldNotBeNil)
			So(s.Female, ShouldNotBeNil)
			So(s.Len(), ShouldEqual, 0)
		})
	})

	Convey("Given records of unknown sex", t, func() {
		s := aggregate.Aggregate([]model.RaceRecord{rec("X", model.SexUnknown, 30, 1000, "16:40.0")})
		So(s.Len(), ShouldEqual, 0)
	})
}

func TestAggregateProperties(t *testing.T) {
	Convey("Given a random field of finishers", t, func() {
		rng := rand.New(rand.NewSource(7))
		records := make([]model.RaceRecord, 0, 2000)
		for i := 0; i < 2000; i++ {
			sex := model.Male
			if rng.Intn(2) == 0 {
				sex = model.Female
			}
			records = append(records, rec("r", sex, 10+rng.Intn(70), float64(900+rng.Intn(3000))+float64(rng.Intn(10))/10, ""))
		}
		s := aggregate.Aggregate(records)

		Convey("Then each sequence is strictly ascending by age", func() {
			for _, seq := range [][]model.AgeBest{s.Male, s.Female} {
				for i := 1; i < len(seq); i++ {
					So(seq[i].Age, ShouldBeGreaterThan, seq[i-1].Age)
				}
			}
		})

		Convey("And every input pair is represented by its minimum", func() {
			minimum := map[model.Sex]map[int]float64{model.Male: {}, model.Female: {}}
			for _, r := range records {
				cur, ok := minimum[r.Sex][r.Age]
				if !ok || r.TimeSeconds < cur {
					minimum[r.Sex][r.Age] = r.TimeSeconds
				}
			}
			for _, sex := range []model.Sex{model.Male, model.Female} {
				seq := s.For(sex)
				So(len(seq), ShouldEqual, len(minimum[sex]))
				for _, e := range seq {
					want, ok := minimum[sex][e.Age]
					So(ok, ShouldBeTrue)
					So(e.TimeSeconds, ShouldEqual, want)
				}
			}
		})

		Convey("And aggregation is idempotent", func() {
			So(aggregate.Aggregate(records), ShouldResemble, s)
		})
	})
}

func TestMerge(t *testing.T) {
	Convey("Given summaries from two years", t, func() {
		y2024 := model.Summary{
			Male:   []model.AgeBest{{Age: 30, TimeSeconds: 1000, Name: "A"}, {Age: 40, TimeSeconds: 1200, Name: "B"}},
			Female: []model.AgeBest{{Age: 35, TimeSeconds: 1300, Name: "C"}},
		}
		y2025 := model.Summary{
			Male:   []model.AgeBest{{Age: 30, TimeSeconds: 990, Name: "D"}, {Age: 40, TimeSeconds: 1200, Name: "E"}},
			Female: []model.AgeBest{{Age: 20, TimeSeconds: 1250, Name: "F"}},
		}

		Convey("When merging", func() {
			m := aggregate.Merge(y2024, y2025)

			Convey("Then each age keeps the fastest across years, earlier on ties", func() {
				So(m.Male, ShouldHaveLength, 2)
				So(m.Male[0].Name, ShouldEqual, "D")
				So(m.Male[1].Name, ShouldEqual, "B")
				So(m.Female, ShouldHaveLength, 2)
				So(m.Female[0].Age, ShouldEqual, 20)
				So(m.Female[1].Age, ShouldEqual, 35)
			})
		})

		Convey("When merging nothing", func() {
			m := aggregate.Merge()
			So(m.Male, ShouldNotBeNil)
			So(m.Female, ShouldNotBeNil)
		})
	})
}
