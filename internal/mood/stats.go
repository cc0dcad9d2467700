package mood

import (
	"fmt"
	"math"
	"slices"

	"github.com/goccy/go-json"
)

// Stat is the share of one emoji across all statistics records.
type Stat struct {
	Emoji          string  `json:"emoji"`
	Label          string  `json:"label"`
	Percentage     float64 `json:"percentage"`
	PrimaryColor   string  `json:"primaryColor"`
	SecondaryColor string  `json:"secondaryColor"`
}

// ComputeStats groups symbols by value and returns each one's percentage of
// the total, rounded to one decimal. Empty input yields an empty slice.
// Results are ordered by count, most frequent first; ties keep enumeration order.
func ComputeStats(symbols []string) []Stat {
	if len(symbols) == 0 {
		return []Stat{}
	}

	counts := make(map[string]int)
	var order []string
	for _, s := range symbols {
		if _, seen := counts[s]; !seen {
			order = append(order, s)
		}
		counts[s]++
	}

	slices.SortStableFunc(order, func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return rank(a) - rank(b)
	})

	total := float64(len(symbols))
	stats := make([]Stat, 0, len(order))
	for _, s := range order {
		label := LabelFor(s)
		color := ColorFor(label)
		stats = append(stats, Stat{
			Emoji:          s,
			Label:          label,
			Percentage:     Round1(float64(counts[s]) / total * 100),
			PrimaryColor:   color,
			SecondaryColor: color,
		})
	}
	return stats
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// rank orders known moods by enumeration and puts unknown symbols last.
func rank(symbol string) int {
	e := ParseEmoji(symbol)
	if e == Unknown {
		return len(All()) + 1
	}
	return int(e)
}

// EncodeStats serialises stats into the cache blob format.
func EncodeStats(stats []Stat) ([]byte, error) {
	if stats == nil {
		stats = []Stat{}
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("encoding emotion stats: %w", err)
	}
	return data, nil
}

// DecodeStats parses a cache blob produced by EncodeStats.
func DecodeStats(data []byte) ([]Stat, error) {
	var stats []Stat
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decoding emotion stats: %w", err)
	}
	if stats == nil {
		stats = []Stat{}
	}
	return stats, nil
}
