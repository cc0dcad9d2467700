// Package hotspots groups map pins into geographic clusters using k-means.
package hotspots

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/go-muji/internal/db"
	"github.com/justestif/go-muji/internal/geo"
	"github.com/justestif/go-muji/internal/mood"
)

// DefaultK is the number of clusters used when none is requested.
const DefaultK = 3

// Hotspot is one cluster of pins.
type Hotspot struct {
	Center        geo.Coordinate `json:"center"`
	Count         int            `json:"count"`
	DominantEmoji string         `json:"dominantEmoji"`
	Label         string         `json:"label"`
	Radius        float64        `json:"radius"` // meters from Center to the farthest pin
}

// pinObservation wraps a pin to implement clusters.Observation.
type pinObservation struct {
	pin    *db.EmotionRecord
	coords clusters.Coordinates
}

func (o pinObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o pinObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// Detect partitions pins into at most k hotspots, largest first.
// A non-positive k selects DefaultK; k is capped at the number of pins.
func Detect(pins []db.EmotionRecord, k int) ([]Hotspot, error) {
	if len(pins) == 0 {
		return nil, nil
	}
	if k <= 0 {
		k = DefaultK
	}
	k = min(k, len(pins))

	var obs clusters.Observations
	for i := range pins {
		p := &pins[i]
		obs = append(obs, pinObservation{
			pin:    p,
			coords: clusters.Coordinates{p.Latitude, p.Longitude},
		})
	}

	result, err := kmeans.New().Partition(obs, k)
	if err != nil {
		return nil, fmt.Errorf("partitioning pins: %w", err)
	}

	var spots []Hotspot
	for _, cluster := range result {
		if len(cluster.Observations) == 0 {
			continue
		}
		spots = append(spots, summarize(cluster))
	}

	slices.SortFunc(spots, func(a, b Hotspot) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if a.Center.Latitude != b.Center.Latitude {
			return cmp.Compare(a.Center.Latitude, b.Center.Latitude)
		}
		return cmp.Compare(a.Center.Longitude, b.Center.Longitude)
	})
	return spots, nil
}

// summarize builds a Hotspot from the cluster members. The centre is the mean
// of the member positions; kmeans leaves cluster.Center at its random seed
// when the first assignment pass moves no point.
func summarize(cluster clusters.Cluster) Hotspot {
	members := make([]*db.EmotionRecord, 0, len(cluster.Observations))
	for _, o := range cluster.Observations {
		if po, ok := o.(pinObservation); ok {
			members = append(members, po.pin)
		}
	}

	var center geo.Coordinate
	symbols := make([]string, len(members))
	for i, p := range members {
		center.Latitude += p.Latitude
		center.Longitude += p.Longitude
		symbols[i] = p.Emoji
	}
	if n := float64(len(members)); n > 0 {
		center.Latitude /= n
		center.Longitude /= n
	}

	var radius float64
	for _, p := range members {
		d := geo.Distance(center, geo.Coordinate{Latitude: p.Latitude, Longitude: p.Longitude})
		radius = math.Max(radius, d)
	}

	h := Hotspot{
		Center: center,
		Count:  len(symbols),
		Radius: radius,
		Label:  mood.DefaultLabel,
	}
	// ComputeStats orders by frequency, so the first entry is the dominant emoji.
	if stats := mood.ComputeStats(symbols); len(stats) > 0 {
		h.DominantEmoji = stats[0].Emoji
		h.Label = stats[0].Label
	}
	return h
}
