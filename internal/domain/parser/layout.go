package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// noColumn marks an optional column the layout does not carry.
const noColumn = -1

// Layout binds tab-separated columns to record fields.
type Layout struct {
	Name             string
	NameCol          int
	SexCol           int
	AgeCol           int
	TimeCol          int
	DivisionCol      int
	DivisionPlaceCol int
	MinFields        int
	MaxFields        int // 0 means no upper bound
}

// SimpleLayout is name, sex, age, time and nothing else.
var SimpleLayout = Layout{
	Name:             "simple",
	NameCol:          0,
	SexCol:           1,
	AgeCol:           2,
	TimeCol:          3,
	DivisionCol:      noColumn,
	DivisionPlaceCol: noColumn,
	MinFields:        4,
	MaxFields:        4,
}

// ResultsLayout matches the timing company export:
// place, bib, division place, name, age, sex, division, gun time, net time, ...
var ResultsLayout = Layout{
	Name:             "results",
	DivisionPlaceCol: 2,
	NameCol:          3,
	AgeCol:           4,
	SexCol:           5,
	DivisionCol:      6,
	TimeCol:          7,
	MinFields:        9,
}

// LayoutByName returns a built-in layout.
func LayoutByName(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SimpleLayout.Name:
		return SimpleLayout, nil
	case ResultsLayout.Name:
		return ResultsLayout, nil
	default:
		return Layout{}, fmt.Errorf("%w: %q", ErrLayout, name)
	}
}

func (l Layout) fieldCountOK(n int) bool {
	if n < l.MinFields {
		return false
	}
	return l.MaxFields == 0 || n <= l.MaxFields
}

func (l Layout) fieldCountText() string {
	switch {
	case l.MaxFields == 0:
		return fmt.Sprintf("at least %d", l.MinFields)
	case l.MaxFields == l.MinFields:
		return strconv.Itoa(l.MinFields)
	default:
		return fmt.Sprintf("%d..%d", l.MinFields, l.MaxFields)
	}
}

func (l Layout) optional(fields []string, col int) string {
	if col == noColumn || col >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[col])
}
