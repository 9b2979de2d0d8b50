package models

// CommentReport is the performance snapshot of one tracked comment.
type CommentReport struct {
	CommentID string        `json:"comment_id"`
	Karma     int           `json:"karma"`
	Body      string        `json:"body"`
	Replies   []ReplyReport `json:"replies"`
	// Skipped counts replies written by our own account.
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

// ReplyReport is the sentiment breakdown of one reply. Analyzed is false when
// there was nothing to analyze or the classifier failed.
type ReplyReport struct {
	Index       int              `json:"index"`
	ReplyID     string           `json:"reply_id"`
	Author      string           `json:"author"`
	Body        string           `json:"body"`
	Analyzed    bool             `json:"analyzed"`
	Score       float64          `json:"score"`
	Mood        string           `json:"mood,omitempty"`
	Emoji       string           `json:"emoji,omitempty"`
	HeatmapPath string           `json:"heatmap_path,omitempty"`
	Words       []WordImportance `json:"words,omitempty"`
	Error       string           `json:"error,omitempty"`
}
