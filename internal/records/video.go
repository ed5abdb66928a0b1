package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Video is one row of the video performance dataset.
type Video struct {
	Title  string
	Script string
	Views  float64
	Likes  float64
}

// ParseVideosCSV reads a header-led CSV with columns title, script, views and
// likes, in any order. A missing script column or cell becomes "". Extra
// columns are ignored.
func ParseVideosCSV(r io.Reader) ([]Video, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("records: video CSV is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("records: read video CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"title", "views", "likes"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("records: video CSV is missing column %q", required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var videos []Video
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("records: read video CSV: %w", err)
		}

		views, err := parseCount(cell(row, "views"))
		if err != nil {
			return nil, fmt.Errorf("records: video CSV line %d: views: %w", line, err)
		}
		likes, err := parseCount(cell(row, "likes"))
		if err != nil {
			return nil, fmt.Errorf("records: video CSV line %d: likes: %w", line, err)
		}
		videos = append(videos, Video{
			Title:  cell(row, "title"),
			Script: cell(row, "script"),
			Views:  views,
			Likes:  likes,
		})
	}
	return videos, nil
}

func parseCount(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("value is empty")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return f, nil
}
