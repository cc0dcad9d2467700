package mood

import "testing"

func TestLabelAndColor(t *testing.T) {
	tests := []struct {
		symbol    string
		wantLabel string
		wantColor string
	}{
		{"😀", "행복", "255,186,133"},
		{"😡", "화남", "255,126,126"},
		{"😶", "평온", "134,229,127"},
		{"😭", "슬픔", "178,204,255"},
		{"🤒", "아픔", "213,213,213"},
		{"🙂", DefaultLabel, DefaultColor},
		{"", DefaultLabel, DefaultColor},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			label := LabelFor(tt.symbol)
			if label != tt.wantLabel {
				t.Errorf("LabelFor(%q) = %q, want %q", tt.symbol, label, tt.wantLabel)
			}
			if got := ColorFor(label); got != tt.wantColor {
				t.Errorf("ColorFor(%q) = %q, want %q", label, got, tt.wantColor)
			}
		})
	}
}

func TestEveryMoodHasDisplayValues(t *testing.T) {
	for _, e := range All() {
		if e.Symbol() == "" {
			t.Errorf("%d has no symbol", e)
		}
		if e.Label() == "" || e.Label() == DefaultLabel {
			t.Errorf("%s has no label", e)
		}
		if e.Color() == "" {
			t.Errorf("%s has no color", e)
		}
		if ParseEmoji(e.Symbol()) != e {
			t.Errorf("ParseEmoji(%q) did not round-trip", e.Symbol())
		}
	}
}

func TestColorForUnknownLabel(t *testing.T) {
	if got := ColorFor("기쁨"); got != DefaultColor {
		t.Errorf("ColorFor(unknown) = %q, want %q", got, DefaultColor)
	}
}
