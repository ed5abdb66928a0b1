package agent

import (
	"fmt"
	"strings"

	"github.com/54b3r/microagents-go/internal/records"
)

// Category is a US EPA AQI health band.
type Category string

const (
	Good                        Category = "Good"
	Moderate                    Category = "Moderate"
	UnhealthyForSensitiveGroups Category = "Unhealthy for Sensitive Groups"
	Unhealthy                   Category = "Unhealthy"
	VeryUnhealthy               Category = "Very Unhealthy"
	Hazardous                   Category = "Hazardous"
)

// Classify maps an AQI value to its health category and a one-sentence
// description of the implications.
func Classify(aqi int) (Category, string) {
	switch {
	case aqi <= 50:
		return Good, "Air quality is good. No health impacts expected."
	case aqi <= 100:
		return Moderate, "Air quality is moderate. Some people may experience mild health effects."
	case aqi <= 150:
		return UnhealthyForSensitiveGroups, "Air quality is unhealthy for sensitive groups. Children, elderly, and those with respiratory conditions should limit outdoor activities."
	case aqi <= 200:
		return Unhealthy, "Air quality is unhealthy. Everyone should avoid prolonged outdoor activities."
	case aqi <= 300:
		return VeryUnhealthy, "Air quality is very unhealthy. Everyone may experience serious health effects and should avoid outdoor activities."
	default:
		return Hazardous, "Air quality is hazardous. This is an emergency condition; everyone should stay indoors."
	}
}

// FallbackAnswer is the canned answer used when the completion fails.
func FallbackAnswer(rec records.AQIRecord) string {
	cat, desc := Classify(rec.Index())
	return fmt.Sprintf("%s on %s: AQI %s (%s). This air quality level means: %s. Key pollutants: pm2_5=%s, pm10=%s, o3=%s, no2=%s.",
		rec.City, rec.Date, records.Value(rec.AQI), cat,
		strings.TrimSuffix(desc, "."),
		records.Value(rec.PM25), records.Value(rec.PM10), records.Value(rec.O3), records.Value(rec.NO2),
	)
}
