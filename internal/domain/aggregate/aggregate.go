// Package aggregate reduces race records to per-age bests and derives the
// age-performance front from them.
package aggregate

import (
	"sort"

	"github.com/okian/racecurve/internal/domain/model"
)

// Aggregate groups records by sex and age and keeps the fastest record of
// each group. Ties keep the record seen first. Each sequence is ascending by
// age. Records with SexUnknown are ignored.
func Aggregate(records []model.RaceRecord) model.Summary {
	best := map[model.Sex]map[int]model.AgeBest{
		model.Male:   {},
		model.Female: {},
	}
	for _, r := range records {
		byAge, ok := best[r.Sex]
		if !ok {
			continue
		}
		cur, seen := byAge[r.Age]
		if !seen || r.TimeSeconds < cur.TimeSeconds {
			byAge[r.Age] = model.BestOf(r)
		}
	}
	return model.Summary{
		Male:   sortedByAge(best[model.Male]),
		Female: sortedByAge(best[model.Female]),
	}
}

// Merge combines summaries into one, keeping the per-age minimum. On equal
// times the entry from the earlier summary wins.
func Merge(summaries ...model.Summary) model.Summary {
	male := map[int]model.AgeBest{}
	female := map[int]model.AgeBest{}
	for _, s := range summaries {
		mergeInto(male, s.Male)
		mergeInto(female, s.Female)
	}
	return model.Summary{
		Male:   sortedByAge(male),
		Female: sortedByAge(female),
	}
}

func mergeInto(dst map[int]model.AgeBest, entries []model.AgeBest) {
	for _, e := range entries {
		cur, seen := dst[e.Age]
		if !seen || e.TimeSeconds < cur.TimeSeconds {
			dst[e.Age] = e
		}
	}
}

func sortedByAge(byAge map[int]model.AgeBest) []model.AgeBest {
	out := make([]model.AgeBest, 0, len(byAge))
	for _, e := range byAge {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Age < out[j].Age })
	return out
}
