package aggregate

import (
	"sort"

	"github.com/okian/racecurve/internal/domain/model"
)

// winnerPlace is the division place of an age-group winner.
const winnerPlace = "1"

type runnerKey struct {
	name string
	age  int
	sex  model.Sex
}

// Winners collects the division winners of records and the finishers on
// front, each flagged with membership of the other list. Division winners
// are ordered by sex then division, front finishers by sex then age.
func Winners(records []model.RaceRecord, front model.Front) model.Winners {
	out := model.EmptyWinners()

	onFront := map[runnerKey]struct{}{}
	for _, sex := range []model.Sex{model.Male, model.Female} {
		for _, e := range frontFor(front, sex) {
			onFront[runnerKey{e.Name, e.Age, sex}] = struct{}{}
		}
	}

	divisionWinners := map[runnerKey]struct{}{}
	for _, r := range records {
		if r.Sex == model.SexUnknown || r.Division == "" || r.DivisionPlace != winnerPlace {
			continue
		}
		key := runnerKey{r.Name, r.Age, r.Sex}
		divisionWinners[key] = struct{}{}
		_, isFront := onFront[key]
		out.AgeGroup = append(out.AgeGroup, model.AgeGroupWinner{
			Name:        r.Name,
			Age:         r.Age,
			Sex:         r.Sex.String(),
			Division:    r.Division,
			TimeDisplay: r.TimeDisplay,
			OnFront:     isFront,
		})
	}
	sort.SliceStable(out.AgeGroup, func(i, j int) bool {
		a, b := out.AgeGroup[i], out.AgeGroup[j]
		if a.Sex != b.Sex {
			return a.Sex < b.Sex
		}
		return a.Division < b.Division
	})

	for _, sex := range []model.Sex{model.Male, model.Female} {
		for _, e := range frontFor(front, sex) {
			_, won := divisionWinners[runnerKey{e.Name, e.Age, sex}]
			out.Front = append(out.Front, model.FrontWinner{
				Name:           e.Name,
				Age:            e.Age,
				Sex:            sex.String(),
				TimeDisplay:    e.TimeDisplay,
				AgeGroupWinner: won,
			})
		}
	}
	sort.SliceStable(out.Front, func(i, j int) bool {
		a, b := out.Front[i], out.Front[j]
		if a.Sex != b.Sex {
			return a.Sex < b.Sex
		}
		return a.Age < b.Age
	})
	return out
}

// Rankings orders every finisher by their gap to the front of their sex,
// then by time. Finishers on the front have a zero gap.
func Rankings(records []model.RaceRecord, front model.Front) []model.RankedRunner {
	out := make([]model.RankedRunner, 0, len(records))
	for _, sex := range []model.Sex{model.Male, model.Female} {
		group := make([]model.RaceRecord, 0, len(records))
		for _, r := range records {
			if r.Sex == sex {
				group = append(group, r)
			}
		}
		curve := frontFor(front, sex)
		blocking := BlockingCounts(group)
		for i, r := range group {
			var gap float64
			if t, ok := FrontTimeAt(r.Age, curve); ok {
				gap = r.TimeSeconds - t
			}
			out = append(out, model.RankedRunner{
				Name:            r.Name,
				Age:             r.Age,
				Sex:             sex.String(),
				TimeSeconds:     r.TimeSeconds,
				TimeDisplay:     r.TimeDisplay,
				DistanceToFront: gap,
				Blocking:        blocking[i],
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceToFront != out[j].DistanceToFront {
			return out[i].DistanceToFront < out[j].DistanceToFront
		}
		return out[i].TimeSeconds < out[j].TimeSeconds
	})
	return out
}

// FrontTimeAt returns the front time at age. Ages between two front points
// are interpolated linearly; ages outside the front take the nearest end.
// curve must be ascending by age. It reports false for an empty curve.
func FrontTimeAt(age int, curve []model.AgeBest) (float64, bool) {
	if len(curve) == 0 {
		return 0, false
	}
	i := sort.Search(len(curve), func(i int) bool { return curve[i].Age >= age })
	switch {
	case i == len(curve):
		return curve[len(curve)-1].TimeSeconds, true
	case curve[i].Age == age || i == 0:
		return curve[i].TimeSeconds, true
	}
	lo, hi := curve[i-1], curve[i]
	frac := float64(age-lo.Age) / float64(hi.Age-lo.Age)
	return lo.TimeSeconds + (hi.TimeSeconds-lo.TimeSeconds)*frac, true
}

// BlockingCounts returns, for each record, how many records of the group
// would have to be removed for it to reach the front. Below the peak age
// (the age of the fastest record) a record is blocked by faster records of
// the same age or younger; above it by faster records of the same age or
// older; at the peak age only by faster records of that age. All records
// must share one sex.
func BlockingCounts(group []model.RaceRecord) []int {
	out := make([]int, len(group))
	if len(group) == 0 {
		return out
	}

	peak := 0
	for i := range group {
		if group[i].TimeSeconds < group[peak].TimeSeconds {
			peak = i
		}
	}
	peakAge := group[peak].Age

	times := make([]float64, len(group))
	for i, r := range group {
		times[i] = r.TimeSeconds
	}
	sort.Float64s(times)
	// rank is the number of times strictly below t.
	rank := func(t float64) int { return sort.SearchFloat64s(times, t) }

	byAge := make([]int, len(group))
	for i := range byAge {
		byAge[i] = i
	}
	sort.SliceStable(byAge, func(a, b int) bool { return group[byAge[a]].Age < group[byAge[b]].Age })

	// sweep walks age groups in order, adding each whole group before
	// counting faster records among everything added so far.
	sweep := func(order []int, counted func(age int) bool) {
		tree := newFenwick(len(times))
		for start := 0; start < len(order); {
			age := group[order[start]].Age
			end := start
			for end < len(order) && group[order[end]].Age == age {
				end++
			}
			for _, i := range order[start:end] {
				tree.add(rank(group[i].TimeSeconds))
			}
			if counted(age) {
				for _, i := range order[start:end] {
					out[i] = tree.below(rank(group[i].TimeSeconds))
				}
			}
			start = end
		}
	}

	sweep(byAge, func(age int) bool { return age < peakAge })

	reversed := make([]int, len(byAge))
	for i, idx := range byAge {
		reversed[len(byAge)-1-i] = idx
	}
	sweep(reversed, func(age int) bool { return age > peakAge })

	var atPeak []float64
	for _, r := range group {
		if r.Age == peakAge {
			atPeak = append(atPeak, r.TimeSeconds)
		}
	}
	sort.Float64s(atPeak)
	for i, r := range group {
		if r.Age == peakAge {
			out[i] = sort.SearchFloat64s(atPeak, r.TimeSeconds)
		}
	}
	return out
}

func frontFor(f model.Front, sex model.Sex) []model.AgeBest {
	if sex == model.Female {
		return f.Female
	}
	return f.Male
}

// fenwick counts inserted ranks and answers prefix counts in log time.
type fenwick []int

func newFenwick(n int) fenwick { return make(fenwick, n+1) }

func (f fenwick) add(pos int) {
	for i := pos + 1; i < len(f); i += i & -i {
		f[i]++
	}
}

// below returns how many inserted ranks are less than pos.
func (f fenwick) below(pos int) int {
	n := 0
	for i := pos; i > 0; i -= i & -i {
		n += f[i]
	}
	return n
}
