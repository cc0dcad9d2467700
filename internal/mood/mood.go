// Package mood defines the fixed emoji enumeration and its display labels and colours.
package mood

// Emoji is one of the fixed moods a user can log.
type Emoji int

// Known moods. Unknown covers any symbol outside the enumeration.
const (
	Unknown Emoji = iota
	Happy
	Angry
	Calm
	Sad
	Sick
)

// Display defaults for symbols outside the enumeration.
const (
	DefaultLabel = "-"
	DefaultColor = "134,229,127"
)

// All returns every known mood in display order.
func All() []Emoji {
	return []Emoji{Happy, Angry, Calm, Sad, Sick}
}

// ParseEmoji maps a symbol to its mood. Unrecognised symbols yield Unknown.
func ParseEmoji(symbol string) Emoji {
	for _, e := range All() {
		if e.Symbol() == symbol {
			return e
		}
	}
	return Unknown
}

// Symbol returns the emoji character for e.
func (e Emoji) Symbol() string {
	switch e {
	case Happy:
		return "😀"
	case Angry:
		return "😡"
	case Calm:
		return "😶"
	case Sad:
		return "😭"
	case Sick:
		return "🤒"
	case Unknown:
		return ""
	}
	return ""
}

// Label returns the Korean display label for e.
func (e Emoji) Label() string {
	switch e {
	case Happy:
		return "행복"
	case Angry:
		return "화남"
	case Calm:
		return "평온"
	case Sad:
		return "슬픔"
	case Sick:
		return "아픔"
	case Unknown:
		return DefaultLabel
	}
	return DefaultLabel
}

// Color returns the "r,g,b" display colour for e.
func (e Emoji) Color() string {
	switch e {
	case Happy:
		return "255,186,133"
	case Angry:
		return "255,126,126"
	case Calm:
		return "134,229,127"
	case Sad:
		return "178,204,255"
	case Sick:
		return "213,213,213"
	case Unknown:
		return DefaultColor
	}
	return DefaultColor
}

// String implements fmt.Stringer.
func (e Emoji) String() string {
	if e == Unknown {
		return "unknown"
	}
	return e.Symbol()
}

// LabelFor returns the display label for an emoji symbol.
func LabelFor(symbol string) string {
	return ParseEmoji(symbol).Label()
}

// ColorFor returns the display colour for a label as produced by LabelFor.
func ColorFor(label string) string {
	for _, e := range All() {
		if e.Label() == label {
			return e.Color()
		}
	}
	return DefaultColor
}
