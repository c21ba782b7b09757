package aggregate

import (
	"math"
	"sort"

	"github.com/okian/racecurve/internal/domain/model"
)

// ParetoFront returns the age-performance front of entries: times fall
// towards the peak (the fastest entry) and rise after it. An entry younger
// than the peak stays only if it beats every younger entry; an entry at or
// older than the peak stays only if it beats every older entry. The result
// is ascending by age.
func ParetoFront(entries []model.AgeBest) []model.AgeBest {
	if len(entries) == 0 {
		return []model.AgeBest{}
	}

	sorted := make([]model.AgeBest, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Age < sorted[j].Age })

	peak := entries[0]
	for _, e := range entries[1:] {
		if e.TimeSeconds < peak.TimeSeconds {
			peak = e
		}
	}

	front := make([]model.AgeBest, 0, len(sorted))
	bestSoFar := math.Inf(1)
	split := len(sorted)
	for i, e := range sorted {
		if e.Age >= peak.Age {
			split = i
			break
		}
		if e.TimeSeconds < bestSoFar {
			front = append(front, e)
			bestSoFar = e.TimeSeconds
		}
	}

	var older []model.AgeBest
	bestSoFar = math.Inf(1)
	for i := len(sorted) - 1; i >= split; i-- {
		e := sorted[i]
		if e.TimeSeconds < bestSoFar {
			older = append(older, e)
			bestSoFar = e.TimeSeconds
		}
	}
	for i := len(older) - 1; i >= 0; i-- {
		front = append(front, older[i])
	}
	return front
}

// Front applies ParetoFront to both sequences of a summary.
func Front(s model.Summary) model.Front {
	return model.Front{
		Male:   ParetoFront(s.Male),
		Female: ParetoFront(s.Female),
	}
}
