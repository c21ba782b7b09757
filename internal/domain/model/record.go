// Package model contains domain models passed between layers.
package model

import (
	"strings"
)

// Sex is the finisher category used to split the summary.
type Sex int

const (
	SexUnknown Sex = iota
	Male
	Female
)

// String returns the single-letter code.
func (s Sex) String() string {
	switch s {
	case Male:
		return "M"
	case Female:
		return "F"
	default:
		return "?"
	}
}

// ParseSex maps an input code to a Sex. Recognised codes are M, F, Male and
// Female in any case. Anything else yields SexUnknown and false.
func ParseSex(code string) (Sex, bool) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "m", "male":
		return Male, true
	case "f", "female":
		return Female, true
	default:
		return SexUnknown, false
	}
}

// RaceRecord is one parsed finisher line.
type RaceRecord struct {
	Name          string
	Sex           Sex
	Age           int
	TimeSeconds   float64
	TimeDisplay   string // clock text as it appeared in the file
	Division      string
	DivisionPlace string
}

// AgeBest is the fastest record for one (sex, age) pair.
type AgeBest struct {
	Age         int     `json:"age"`
	TimeSeconds float64 `json:"time_seconds"`
	TimeDisplay string  `json:"time_display"`
	Name        string  `json:"name"`
}

// BestOf projects a record onto the response shape.
func BestOf(r RaceRecord) AgeBest {
	return AgeBest{
		Age:         r.Age,
		TimeSeconds: r.TimeSeconds,
		TimeDisplay: r.TimeDisplay,
		Name:        r.Name,
	}
}

// Summary holds one age-ordered AgeBest sequence per sex.
type Summary struct {
	Male   []AgeBest `json:"male"`
	Female []AgeBest `json:"female"`
}

// EmptySummary returns a summary whose sequences encode as [] rather than null.
func EmptySummary() Summary {
	return Summary{Male: []AgeBest{}, Female: []AgeBest{}}
}

// For returns the sequence for sex, or nil for SexUnknown.
func (s Summary) For(sex Sex) []AgeBest {
	switch sex {
	case Male:
		return s.Male
	case Female:
		return s.Female
	default:
		return nil
	}
}

// Len returns the total number of entries across both sequences.
func (s Summary) Len() int { return len(s.Male) + len(s.Female) }

// Front holds the Pareto age-performance curve per sex.
type Front struct {
	Male   []AgeBest `json:"male"`
	Female []AgeBest `json:"female"`
}

// DatasetList names the configured datasets and the one served by default.
type DatasetList struct {
	Datasets []string `json:"datasets"`
	Default  string   `json:"default"`
}

// AgeGroupWinner is a finisher placed first in their division.
type AgeGroupWinner struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Sex         string `json:"sex"`
	Division    string `json:"division"`
	TimeDisplay string `json:"time_display"`
	OnFront     bool   `json:"on_front"`
}

// FrontWinner is a finisher on the age-performance front.
type FrontWinner struct {
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Sex            string `json:"sex"`
	TimeDisplay    string `json:"time_display"`
	AgeGroupWinner bool   `json:"age_group_winner"`
}

// Winners lists the division winners and the front finishers of a dataset.
type Winners struct {
	AgeGroup []AgeGroupWinner `json:"age_group"`
	Front    []FrontWinner    `json:"front"`
}

// EmptyWinners returns winners whose lists encode as [].
func EmptyWinners() Winners {
	return Winners{AgeGroup: []AgeGroupWinner{}, Front: []FrontWinner{}}
}

// RankedRunner places a finisher relative to the front of their sex.
// DistanceToFront is the gap in seconds to the front time at their age;
// Blocking counts the finishers that keep them off the front.
type RankedRunner struct {
	Name            string  `json:"name"`
	Age             int     `json:"age"`
	Sex             string  `json:"sex"`
	TimeSeconds     float64 `json:"time_seconds"`
	TimeDisplay     string  `json:"time_display"`
	DistanceToFront float64 `json:"distance_to_front"`
	Blocking        int     `json:"blocking_runners"`
}
