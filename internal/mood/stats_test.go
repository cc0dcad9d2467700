package mood

import (
	"math"
	"reflect"
	"testing"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name    string
		symbols []string
		want    []Stat
	}{
		{
			name:    "empty input",
			symbols: nil,
			want:    []Stat{},
		},
		{
			name:    "single mood",
			symbols: []string{"😀", "😀"},
			want: []Stat{
				{Emoji: "😀", Label: "행복", Percentage: 100, PrimaryColor: "255,186,133", SecondaryColor: "255,186,133"},
			},
		},
		{
			name:    "ordered by count",
			symbols: []string{"😭", "😀", "😀", "😀"},
			want: []Stat{
				{Emoji: "😀", Label: "행복", Percentage: 75, PrimaryColor: "255,186,133", SecondaryColor: "255,186,133"},
				{Emoji: "😭", Label: "슬픔", Percentage: 25, PrimaryColor: "178,204,255", SecondaryColor: "178,204,255"},
			},
		},
		{
			name:    "thirds round to one decimal",
			symbols: []string{"😡", "😶", "🙃"},
			want: []Stat{
				{Emoji: "😡", Label: "화남", Percentage: 33.3, PrimaryColor: "255,126,126", SecondaryColor: "255,126,126"},
				{Emoji: "😶", Label: "평온", Percentage: 33.3, PrimaryColor: "134,229,127", SecondaryColor: "134,229,127"},
				{Emoji: "🙃", Label: DefaultLabel, Percentage: 33.3, PrimaryColor: DefaultColor, SecondaryColor: DefaultColor},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(tt.symbols)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ComputeStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeStatsSumsToHundred(t *testing.T) {
	inputs := [][]string{
		{"😀"},
		{"😀", "😡", "😶"},
		{"😀", "😀", "😡", "😶", "😭", "🤒", "🤒"},
		{"😀", "😡", "😡", "😶", "😶", "😶", "😭", "😭", "😭", "😭", "🤒"},
	}

	for _, symbols := range inputs {
		stats := ComputeStats(symbols)
		var sum float64
		for _, s := range stats {
			sum += s.Percentage
		}
		tolerance := 0.05*float64(len(stats)) + 1e-9
		if math.Abs(sum-100) > tolerance {
			t.Errorf("ComputeStats(%v) sums to %.2f, want 100 within %.2f", symbols, sum, tolerance)
		}
	}
}

func TestStatsRoundTrip(t *testing.T) {
	stats := ComputeStats([]string{"😀", "😀", "😭", "🤒", "😶", "😡", "😡"})

	data, err := EncodeStats(stats)
	if err != nil {
		t.Fatalf("EncodeStats() error = %v", err)
	}

	got, err := DecodeStats(data)
	if err != nil {
		t.Fatalf("DecodeStats() error = %v", err)
	}

	if !reflect.DeepEqual(got, stats) {
		t.Errorf("round trip = %+v, want %+v", got, stats)
	}
}

func TestEncodeNilStats(t *testing.T) {
	data, err := EncodeStats(nil)
	if err != nil {
		t.Fatalf("EncodeStats(nil) error = %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("EncodeStats(nil) = %s, want []", data)
	}
}

func TestDecodeStatsInvalid(t *testing.T) {
	if _, err := DecodeStats([]byte("{not json")); err == nil {
		t.Error("DecodeStats() expected error for malformed input")
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{33.333, 33.3},
		{66.666, 66.7},
		{12.25, 12.3},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round1(tt.in); got != tt.want {
			t.Errorf("Round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
