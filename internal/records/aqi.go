// Package records loads the flat datasets the agents work from: per-city AQI
// readings, a folder of text and PDF documents, and a CSV of video
// performance metadata. Everything is read from disk on each call.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNotFound is returned when no record matches a lookup key.
var ErrNotFound = errors.New("records: not found")

// AQIRecord is one air-quality reading for a city on a date. Numeric fields
// keep the JSON literal exactly as supplied.
type AQIRecord struct {
	City string      `json:"city"`
	Date string      `json:"date"`
	AQI  json.Number `json:"aqi"`
	PM25 json.Number `json:"pm2_5"`
	PM10 json.Number `json:"pm10"`
	O3   json.Number `json:"o3"`
	NO2  json.Number `json:"no2"`
}

// ParseAQIRecord decodes a single record from JSON and checks that the
// identifying fields and the index are present.
func ParseAQIRecord(data []byte) (AQIRecord, error) {
	var rec AQIRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return AQIRecord{}, fmt.Errorf("records: invalid AQI record: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return AQIRecord{}, err
	}
	return rec, nil
}

// Validate reports missing or malformed required fields.
func (r AQIRecord) Validate() error {
	switch {
	case strings.TrimSpace(r.City) == "":
		return fmt.Errorf("records: AQI record: city is required")
	case strings.TrimSpace(r.Date) == "":
		return fmt.Errorf("records: AQI record: date is required")
	case r.AQI == "":
		return fmt.Errorf("records: AQI record: aqi is required")
	}
	if _, err := r.AQI.Float64(); err != nil {
		return fmt.Errorf("records: AQI record: aqi %q is not a number", r.AQI)
	}
	return nil
}

// Matches reports whether the record is for city (case-insensitive) on date.
func (r AQIRecord) Matches(city, date string) bool {
	return strings.EqualFold(r.City, city) && r.Date == date
}

// Index returns the AQI rounded up to a whole number, so a fractional value
// lands in the same health category as a float comparison would put it.
func (r AQIRecord) Index() int {
	f, err := r.AQI.Float64()
	if err != nil {
		return 0
	}
	return int(math.Ceil(f))
}

// Value renders a pollutant field for display. Missing values render as
// "n/a".
func Value(n json.Number) string {
	if n == "" {
		return "n/a"
	}
	return n.String()
}
