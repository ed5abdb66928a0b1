package agent

import "fmt"

// AQIFailure shapes err into the AQI response returned to callers.
func AQIFailure(err error) *AQIResponse {
	kind := KindOf(err)
	return &AQIResponse{
		Answer:    fmt.Sprintf("Error processing AQI query: %v", err),
		ErrorKind: kind,
		Outcome:   string(kind),
	}
}

// DocumentFailure shapes err into the document response returned to callers.
func DocumentFailure(err error) *DocumentResponse {
	kind := KindOf(err)
	return &DocumentResponse{
		Answer:    fmt.Sprintf("Error processing document query: %v. Please check your API key and try again.", err),
		Citations: []Citation{},
		ErrorKind: kind,
		Outcome:   string(kind),
	}
}

// VideoFailure shapes err into the video response returned to callers.
func VideoFailure(err error) *VideoResponse {
	kind := KindOf(err)
	return &VideoResponse{
		Recommendations: []Recommendation{},
		Error:           fmt.Sprintf("YouTube recommendation failed: %v", err),
		ErrorKind:       kind,
		Outcome:         string(kind),
	}
}
