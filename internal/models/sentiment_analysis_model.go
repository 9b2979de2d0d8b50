package models

// SentimentResult is a single classifier verdict for one text.
type SentimentResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"score"`
}

// WordImportance is one token of an attributed text and how much it moved the composite score.
type WordImportance struct {
	Word         string  `json:"word"`
	Contribution float64 `json:"contribution"`
}
