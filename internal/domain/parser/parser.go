// Package parser turns raw race-results lines into typed records.
package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/okian/racecurve/internal/domain/model"
)

const (
	// ctxCheckEvery bounds how many lines are scanned between ctx checks.
	ctxCheckEvery = 1024
	maxLineBytes  = 1 << 20
	secondsPerMin = 60
	msPerSecond   = 1000

	// readBufferBytes is the reader chunk size; longer lines are joined.
	readBufferBytes = 64 * 1024
)

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithLayout selects the column layout.
func WithLayout(l Layout) Option {
	return func(p *Parser) {
		p.layout = l
	}
}

// WithHeader declares that the first line is a header and must be excluded.
func WithHeader(hasHeader bool) Option {
	return func(p *Parser) {
		p.hasHeader = hasHeader
	}
}

// Parser reads results files. It holds no mutable state and is safe for
// concurrent use.
type Parser struct {
	layout    Layout
	hasHeader bool
}

// New creates a parser using the simple layout and no header by default.
func New(opts ...Option) *Parser {
	p := &Parser{layout: SimpleLayout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Layout returns the configured layout.
func (p *Parser) Layout() Layout { return p.layout }

// Result is the outcome of parsing one source.
type Result struct {
	Records []model.RaceRecord
	Skipped []*ParseError
	Lines   int // physical lines read, header and blanks included
}

// Parse reads every line from r. Malformed lines are collected in
// Result.Skipped and never abort the scan; only read errors and ctx
// cancellation are returned. Lines longer than maxLineBytes are skipped
// whole with ErrLineLength.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (Result, error) {
	res := Result{Records: []model.RaceRecord{}}

	br := bufio.NewReaderSize(r, readBufferBytes)
	for {
		line, tooLong, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read results: %w", err)
		}
		res.Lines++
		if res.Lines%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		if res.Lines == 1 && p.hasHeader {
			continue
		}
		if tooLong {
			res.Skipped = append(res.Skipped, &ParseError{
				Line:   res.Lines,
				Text:   line,
				Kind:   ErrLineLength,
				Detail: fmt.Sprintf("exceeds %d bytes", maxLineBytes),
			})
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, perr := p.ParseLine(line)
		if perr != nil {
			perr.Line = res.Lines
			perr.Text = line
			res.Skipped = append(res.Skipped, perr)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// readLine returns the next line without its terminator. A line over
// maxLineBytes is consumed to its end and only its first maxLineBytes are
// returned, with tooLong set. io.EOF is returned once no bytes remain.
func readLine(br *bufio.Reader) (string, bool, error) {
	var buf []byte
	read, tooLong := false, false
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && read {
				return string(buf), tooLong, nil
			}
			return "", false, err
		}
		read = true
		if room := maxLineBytes - len(buf); room > 0 {
			if len(chunk) > room {
				buf = append(buf, chunk[:room]...)
				tooLong = true
			} else {
				buf = append(buf, chunk...)
			}
		} else if len(chunk) > 0 {
			tooLong = true
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

// ParseLine binds one tab-separated line to a RaceRecord.
func (p *Parser) ParseLine(line string) (model.RaceRecord, *ParseError) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, "\t")
	l := p.layout
	if !l.fieldCountOK(len(fields)) {
		return model.RaceRecord{}, newParseError(ErrFieldCount, "got %d fields, layout %s wants %s", len(fields), l.Name, l.fieldCountText())
	}

	ageText := strings.TrimSpace(fields[l.AgeCol])
	age, err := strconv.Atoi(ageText)
	if err != nil {
		return model.RaceRecord{}, newParseError(ErrAge, "%q is not an integer", ageText)
	}
	if age < 0 {
		return model.RaceRecord{}, newParseError(ErrAge, "%d is negative", age)
	}

	sexText := fields[l.SexCol]
	sex, ok := model.ParseSex(sexText)
	if !ok {
		return model.RaceRecord{}, newParseError(ErrSex, "%q", strings.TrimSpace(sexText))
	}

	display := strings.TrimSpace(fields[l.TimeCol])
	secs, err := ParseTime(display)
	if err != nil {
		return model.RaceRecord{}, newParseError(ErrTime, "%q: %s", display, strings.TrimPrefix(err.Error(), ErrTime.Error()+": "))
	}

	return model.RaceRecord{
		Name:          strings.TrimSpace(fields[l.NameCol]),
		Sex:           sex,
		Age:           age,
		TimeSeconds:   secs,
		TimeDisplay:   display,
		Division:      l.optional(fields, l.DivisionCol),
		DivisionPlace: l.optional(fields, l.DivisionPlaceCol),
	}, nil
}

// ParseTime converts "MM:SS[.f]" or "H:MM:SS[.f]" to seconds. Colon groups
// are decreasing units; only the last may carry a fraction and every group
// after the first must be below 60. The total is accumulated in whole
// milliseconds so that the result is the float nearest the written decimal.
func ParseTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrTime)
	}
	groups := strings.Split(s, ":")
	if len(groups) < 2 || len(groups) > 3 {
		return 0, fmt.Errorf("%w: want 2 or 3 colon groups, got %d", ErrTime, len(groups))
	}

	var whole int64
	var fracMs int64
	for i, g := range groups {
		last := i == len(groups)-1
		digits, frac, hasFrac := strings.Cut(g, ".")
		if hasFrac && !last {
			return 0, fmt.Errorf("%w: fraction only allowed on seconds", ErrTime)
		}
		if !isDigits(digits) || (hasFrac && !isDigits(frac)) {
			return 0, fmt.Errorf("%w: group %q is not numeric", ErrTime, g)
		}
		v, err := strconv.ParseInt(digits, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: group %q: %v", ErrTime, g, err)
		}
		if i > 0 && v >= secondsPerMin {
			return 0, fmt.Errorf("%w: group %q out of range", ErrTime, g)
		}
		whole = whole*secondsPerMin + v
		if hasFrac {
			f, err := strconv.ParseFloat("0."+frac, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: fraction %q: %v", ErrTime, frac, err)
			}
			fracMs = int64(math.Round(f * msPerSecond))
		}
	}

	ms := whole*msPerSecond + fracMs
	if ms == 0 {
		return 0, fmt.Errorf("%w: zero time", ErrTime)
	}
	return float64(ms) / msPerSecond, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
