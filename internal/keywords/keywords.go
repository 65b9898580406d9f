// Package keywords loads keyword rows from uploaded CSV files and manual text input.
package keywords

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"kwclassify/internal/models"
)

// RequiredColumns must appear in the header of an input CSV.
var RequiredColumns = []string{"title", "views", "views_per_year"}

var (
	ErrEmptyFile      = errors.New("CSV file is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrInvalidCSV     = errors.New("invalid CSV format")
)

// LoadFile reads and validates the CSV at path.
func LoadFile(path string) ([]models.Keyword, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load reads keyword rows from CSV data. The header must contain every
// required column (in any order, extra columns ignored) and at least one
// row must follow it. Rows with a blank title are skipped; unparseable
// numbers become 0.
func Load(r io.Reader) ([]models.Keyword, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []models.Keyword
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}

		title := strings.TrimSpace(field(record, index["title"]))
		if title == "" {
			continue
		}
		rows = append(rows, models.Keyword{
			Title:        title,
			Views:        parseViews(field(record, index["views"])),
			ViewsPerYear: parseViewsPerYear(field(record, index["views_per_year"])),
		})
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// ParseManual parses free text with one keyword per line. A line with commas
// is read as title,views,views_per_year (extra fields ignored); a line
// without commas is a bare title. Blank lines are skipped.
func ParseManual(text string) []models.Keyword {
	var rows []models.Keyword
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !strings.Contains(line, ",") {
			rows = append(rows, models.Keyword{Title: line})
			continue
		}

		parts := strings.Split(line, ",")
		title := strings.TrimSpace(parts[0])
		if title == "" {
			continue
		}
		kw := models.Keyword{Title: title}
		if len(parts) > 1 {
			kw.Views = parseViews(parts[1])
		}
		if len(parts) > 2 {
			kw.ViewsPerYear = parseViewsPerYear(parts[2])
		}
		rows = append(rows, kw)
	}
	return rows
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return index, nil
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

// parseViews reads a non-negative integer count. Whole-number floats such
// as "1200.0" are accepted; anything else is 0.
func parseViews(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func parseViewsPerYear(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
