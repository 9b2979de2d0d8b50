package performance

// Mood buckets a sentiment score for display.
type Mood struct {
	Name  string
	Emoji string
}

var (
	Jubilant = Mood{Name: "jubilant", Emoji: "😄"}
	Pleased  = Mood{Name: "pleased", Emoji: "🙂"}
	Neutral  = Mood{Name: "neutral", Emoji: "😐"}
	Upset    = Mood{Name: "upset", Emoji: "😠"}
	Furious  = Mood{Name: "furious", Emoji: "😡"}
)

// MoodFor uses strict lower bounds, so 0.6 is Pleased and -0.6 is Furious.
func MoodFor(score float64) Mood {
	switch {
	case score > 0.6:
		return Jubilant
	case score > 0.2:
		return Pleased
	case score > -0.2:
		return Neutral
	case score > -0.6:
		return Upset
	default:
		return Furious
	}
}
