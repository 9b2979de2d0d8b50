package models

import "time"

// TrackedComment is a posted reply kept for later performance polling.
// PostID and ReplyText are empty for rows written in the short layout.
type TrackedComment struct {
	CommentID string    `json:"comment_id" dynamodbav:"comment_id"`
	PostID    string    `json:"post_id,omitempty" dynamodbav:"post_id,omitempty"`
	ReplyText string    `json:"reply_text,omitempty" dynamodbav:"reply_text,omitempty"`
	PostDate  time.Time `json:"post_date" dynamodbav:"post_date"`
}
