// Package results accumulates keyword decisions and exports them as
// accepted/rejected CSV partitions.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"kwclassify/internal/models"
)

// ErrNoData is returned when exporting an empty aggregator.
var ErrNoData = errors.New("no results to export")

// Columns is the header of both exported files. "reason" is appended when
// any row carries one.
var Columns = []string{
	"title",
	"views",
	"views_per_year",
	"relevance_score",
	"relevance_accepted",
	"category",
	"category_confidence",
}

const reasonColumn = "reason"

// Aggregator collects classified keywords in input order. It is owned by a
// single job goroutine and is not safe for concurrent use.
type Aggregator struct {
	rows []models.ClassifiedKeyword
	now  func() time.Time
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{now: time.Now}
}

// Add appends one classified keyword.
func (a *Aggregator) Add(kw models.Keyword, d models.Decision) {
	a.rows = append(a.rows, models.ClassifiedKeyword{Keyword: kw, Decision: d})
}

// Len returns the number of accumulated rows.
func (a *Aggregator) Len() int {
	return len(a.rows)
}

// Rows returns a copy of the accumulated rows.
func (a *Aggregator) Rows() []models.ClassifiedKeyword {
	out := make([]models.ClassifiedKeyword, len(a.rows))
	copy(out, a.rows)
	return out
}

// Statistics summarizes the accumulated decisions.
func (a *Aggregator) Statistics() models.Statistics {
	stats := models.Statistics{
		Total:             len(a.rows),
		CategoryBreakdown: make(map[string]int),
	}
	for _, r := range a.rows {
		if r.Decision.RelevanceAccepted {
			stats.Accepted++
		} else {
			stats.Rejected++
		}
		stats.CategoryBreakdown[r.Decision.Category]++
	}
	stats.AcceptanceRate = models.Percentage(stats.Accepted, stats.Total)
	return stats
}

// Export writes the accepted and rejected partitions into dir (created if
// needed) and returns both paths. The file names share a timestamp plus a
// random suffix so concurrent jobs never collide.
func (a *Aggregator) Export(dir string) (acceptedPath, rejectedPath string, err error) {
	if len(a.rows) == 0 {
		return "", "", ErrNoData
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}

	suffix := a.now().Format("20060102_150405") + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	acceptedPath = filepath.Join(dir, "accepted_keywords_"+suffix+".csv")
	rejectedPath = filepath.Join(dir, "rejected_keywords_"+suffix+".csv")

	var accepted, rejected []models.ClassifiedKeyword
	withReason := false
	for _, r := range a.rows {
		if r.Decision.Reason != "" {
			withReason = true
		}
		if r.Decision.RelevanceAccepted {
			accepted = append(accepted, r)
		} else {
			rejected = append(rejected, r)
		}
	}

	if err := writeCSV(acceptedPath, accepted, withReason); err != nil {
		return "", "", err
	}
	if err := writeCSV(rejectedPath, rejected, withReason); err != nil {
		return "", "", err
	}
	return acceptedPath, rejectedPath, nil
}

func writeCSV(path string, rows []models.ClassifiedKeyword, withReason bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}

	w := csv.NewWriter(f)
	header := Columns
	if withReason {
		header = append(append([]string{}, Columns...), reasonColumn)
	}
	_ = w.Write(header)

	for _, r := range rows {
		record := []string{
			r.Keyword.Title,
			strconv.Itoa(r.Keyword.Views),
			strconv.FormatFloat(r.Keyword.ViewsPerYear, 'f', -1, 64),
			strconv.Itoa(r.Decision.RelevanceScore),
			strconv.FormatBool(r.Decision.RelevanceAccepted),
			r.Decision.Category,
			strconv.Itoa(r.Decision.CategoryConfidence),
		}
		if withReason {
			record = append(record, r.Decision.Reason)
		}
		_ = w.Write(record)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	return nil
}
