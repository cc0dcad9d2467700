package hotspots

import (
	"math"
	"testing"

	"github.com/justestif/go-muji/internal/db"
)

func pin(emoji string, lat, lon float64) db.EmotionRecord {
	return db.EmotionRecord{Emoji: emoji, Latitude: lat, Longitude: lon, IsPin: true}
}

func TestDetect_Empty(t *testing.T) {
	spots, err := Detect(nil, 3)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if spots != nil {
		t.Errorf("Detect(nil) = %v, want nil", spots)
	}
}

func TestDetect_SingleCluster(t *testing.T) {
	pins := []db.EmotionRecord{
		pin("😀", 37.560, 126.970),
		pin("😀", 37.562, 126.972),
		pin("😭", 37.564, 126.974),
	}

	spots, err := Detect(pins, 1)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(spots) != 1 {
		t.Fatalf("got %d hotspots, want 1", len(spots))
	}

	h := spots[0]
	if h.Count != 3 {
		t.Errorf("Count = %d, want 3", h.Count)
	}
	if math.Abs(h.Center.Latitude-37.562) > 1e-9 || math.Abs(h.Center.Longitude-126.972) > 1e-9 {
		t.Errorf("Center = %+v, want mean of pins", h.Center)
	}
	if h.DominantEmoji != "😀" || h.Label != "행복" {
		t.Errorf("dominant = %q/%q, want 😀/행복", h.DominantEmoji, h.Label)
	}
	// Centre to either end is about 280 m.
	if h.Radius < 250 || h.Radius > 320 {
		t.Errorf("Radius = %.1f, want ~280m", h.Radius)
	}
}

func TestDetect_KCappedAndCountsPreserved(t *testing.T) {
	pins := []db.EmotionRecord{
		pin("😀", 37.56, 126.97),
		pin("😡", 35.18, 129.07),
	}

	tests := []struct {
		name string
		k    int
	}{
		{"default k", 0},
		{"k larger than pins", 10},
		{"exact", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spots, err := Detect(pins, tt.k)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if len(spots) == 0 || len(spots) > len(pins) {
				t.Fatalf("got %d hotspots, want 1..%d", len(spots), len(pins))
			}
			total := 0
			for i, h := range spots {
				total += h.Count
				if i > 0 && spots[i-1].Count < h.Count {
					t.Errorf("hotspots not sorted by count: %v", spots)
				}
			}
			if total != len(pins) {
				t.Errorf("total count = %d, want %d", total, len(pins))
			}
		})
	}
}

func TestDetect_SinglePin(t *testing.T) {
	for _, k := range []int{1, 3} {
		spots, err := Detect([]db.EmotionRecord{pin("😡", 35.18, 129.07)}, k)
		if err != nil {
			t.Fatalf("Detect(k=%d) error = %v", k, err)
		}
		if len(spots) != 1 {
			t.Fatalf("Detect(k=%d) = %d hotspots, want 1", k, len(spots))
		}
		h := spots[0]
		if h.Center.Latitude != 35.18 || h.Center.Longitude != 129.07 {
			t.Errorf("Detect(k=%d) Center = %+v, want the pin position", k, h.Center)
		}
		if h.Radius != 0 {
			t.Errorf("Detect(k=%d) Radius = %.1f, want 0", k, h.Radius)
		}
		if h.DominantEmoji != "😡" || h.Count != 1 {
			t.Errorf("Detect(k=%d) = %+v", k, h)
		}
	}
}

func TestDetect_CentersStayNearMembers(t *testing.T) {
	pins := []db.EmotionRecord{
		pin("😀", 37.5600, 126.9700),
		pin("😀", 37.5601, 126.9701),
		pin("😭", 37.5602, 126.9702),
		pin("😭", 37.5603, 126.9703),
	}

	spots, err := Detect(pins, 3)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	for _, h := range spots {
		if h.Radius > 100 {
			t.Errorf("Radius = %.1f, want members within 100m of the centre", h.Radius)
		}
		if math.Abs(h.Center.Latitude-37.56) > 0.001 || math.Abs(h.Center.Longitude-126.97) > 0.001 {
			t.Errorf("Center = %+v, want near the pins", h.Center)
		}
	}
}
