package recommend

import (
	"regexp"
	"strings"
)

// enumerator matches a leading "1. " style list marker.
var enumerator = regexp.MustCompile(`^\d+\.\s*`)

// Recommendation is one recommended song and the model's reason for it.
type Recommendation struct {
	Title    string `json:"title"`
	Reason   string `json:"reason"`
	TrackURL string `json:"trackUrl,omitempty"`
}

// Pair groups lines as (title, reason). A trailing title without a reason
// line gets an empty reason.
func Pair(lines []string) []Recommendation {
	recs := make([]Recommendation, 0, (len(lines)+1)/2)
	for i := 0; i < len(lines); i += 2 {
		rec := Recommendation{
			Title: CleanTitle(lines[i]),
		}
		if i+1 < len(lines) {
			rec.Reason = strings.TrimSpace(lines[i+1])
		}
		recs = append(recs, rec)
	}
	return recs
}

// CleanTitle strips a leading list enumerator and surrounding space.
func CleanTitle(line string) string {
	return strings.TrimSpace(enumerator.ReplaceAllString(strings.TrimSpace(line), ""))
}
