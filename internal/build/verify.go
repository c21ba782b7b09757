package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/racecurve/internal/domain/model"
	"github.com/okian/racecurve/pkg/logger"
)

// ErrVerification is returned when a server response breaks an invariant.
var ErrVerification = errors.New("verification failed")

const defaultTimeout = 30 * time.Second

// VerifyReport summarizes a verification run.
type VerifyReport struct {
	Datasets   int
	Entries    int
	Violations []string
}

// Verifier fetches the query surface of a running server and checks it.
type Verifier struct {
	client  *http.Client
	baseURL string
	log     logger.Logger
}

// NewVerifier creates a verifier for baseURL. A zero timeout uses 30s.
func NewVerifier(baseURL string, timeout time.Duration, log logger.Logger) *Verifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Verifier{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// Verify checks health, every dataset summary and front, and the all-time
// merge. Transport failures are returned as errors; invariant violations
// are collected in the report and wrapped in ErrVerification.
func (v *Verifier) Verify(ctx context.Context) (VerifyReport, error) {
	var health map[string]string
	if err := v.getJSON(ctx, "/healthz", &health); err != nil {
		return VerifyReport{}, fmt.Errorf("service health check failed: %w", err)
	}
	if health["status"] != "ok" {
		return VerifyReport{}, fmt.Errorf("service unhealthy: status %q", health["status"])
	}

	var list model.DatasetList
	if err := v.getJSON(ctx, "/datasets", &list); err != nil {
		return VerifyReport{}, err
	}

	summaries := make([]model.Summary, len(list.Datasets))
	fronts := make([]model.Front, len(list.Datasets))
	var allTime model.Summary

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range list.Datasets {
		q := "?year=" + url.QueryEscape(name)
		g.Go(func() error { return v.getJSON(gctx, "/data"+q, &summaries[i]) })
		g.Go(func() error { return v.getJSON(gctx, "/data/pareto"+q, &fronts[i]) })
	}
	g.Go(func() error { return v.getJSON(gctx, "/data/all-time", &allTime) })
	if err := g.Wait(); err != nil {
		return VerifyReport{}, err
	}

	report := VerifyReport{Datasets: len(list.Datasets)}
	add := func(vs []string) { report.Violations = append(report.Violations, vs...) }

	for i, name := range list.Datasets {
		report.Entries += summaries[i].Len()
		add(CheckSummary(name, summaries[i]))
		add(CheckFront(name, summaries[i], fronts[i]))
	}
	add(CheckSummary(allTimeName, allTime))
	add(CheckMerge(allTime, summaries))

	for _, msg := range report.Violations {
		v.log.Warn(ctx, "invariant violated", logger.String("detail", msg))
	}
	v.log.Info(ctx, "verification finished",
		logger.Int("datasets", report.Datasets),
		logger.Int("entries", report.Entries),
		logger.Int("violations", len(report.Violations)),
	)
	if len(report.Violations) > 0 {
		return report, fmt.Errorf("%w: %d violations", ErrVerification, len(report.Violations))
	}
	return report, nil
}

func (v *Verifier) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("GET %s: read body: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

// CheckSummary reports shape violations of one summary: null sequences,
// ages not strictly ascending, non-positive times or empty displays.
func CheckSummary(label string, s model.Summary) []string {
	var out []string
	for _, side := range []struct {
		sex     string
		entries []model.AgeBest
	}{{"male", s.Male}, {"female", s.Female}} {
		if side.entries == nil {
			out = append(out, fmt.Sprintf("%s: %s is null", label, side.sex))
			continue
		}
		for i, e := range side.entries {
			if i > 0 && e.Age <= side.entries[i-1].Age {
				out = append(out, fmt.Sprintf("%s: %s age %d follows %d", label, side.sex, e.Age, side.entries[i-1].Age))
			}
			if e.Age < 0 {
				out = append(out, fmt.Sprintf("%s: %s negative age %d", label, side.sex, e.Age))
			}
			if e.TimeSeconds <= 0 {
				out = append(out, fmt.Sprintf("%s: %s age %d has time %v", label, side.sex, e.Age, e.TimeSeconds))
			}
			if e.TimeDisplay == "" {
				out = append(out, fmt.Sprintf("%s: %s age %d has no time display", label, side.sex, e.Age))
			}
		}
	}
	return out
}

// CheckFront reports front entries that are not entries of the summary.
func CheckFront(label string, s model.Summary, f model.Front) []string {
	var out []string
	check := func(sex string, all, front []model.AgeBest) {
		byAge := make(map[int]model.AgeBest, len(all))
		for _, e := range all {
			byAge[e.Age] = e
		}
		for _, e := range front {
			if got, ok := byAge[e.Age]; !ok || got != e {
				out = append(out, fmt.Sprintf("%s: %s front entry for age %d is not a summary entry", label, sex, e.Age))
			}
		}
	}
	check("male", s.Male, f.Male)
	check("female", s.Female, f.Female)
	return out
}

// CheckMerge reports all-time entries that are not the per-age minimum over
// the dataset summaries, and per-dataset ages missing from the merge.
func CheckMerge(all model.Summary, parts []model.Summary) []string {
	var out []string
	check := func(sex string, merged []model.AgeBest, pick func(model.Summary) []model.AgeBest) {
		best := map[int]float64{}
		for _, p := range parts {
			for _, e := range pick(p) {
				if cur, ok := best[e.Age]; !ok || e.TimeSeconds < cur {
					best[e.Age] = e.TimeSeconds
				}
			}
		}
		seen := make(map[int]bool, len(merged))
		for _, e := range merged {
			seen[e.Age] = true
			want, ok := best[e.Age]
			switch {
			case !ok:
				out = append(out, fmt.Sprintf("all-time: %s age %d appears in no dataset", sex, e.Age))
			case e.TimeSeconds != want:
				out = append(out, fmt.Sprintf("all-time: %s age %d has %v, fastest is %v", sex, e.Age, e.TimeSeconds, want))
			}
		}
		for age := range best {
			if !seen[age] {
				out = append(out, fmt.Sprintf("all-time: %s age %d missing", sex, age))
			}
		}
	}
	check("male", all.Male, func(s model.Summary) []model.AgeBest { return s.Male })
	check("female", all.Female, func(s model.Summary) []model.AgeBest { return s.Female })
	return out
}
