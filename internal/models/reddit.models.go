package models

import "encoding/json"

// ScrapedPost is one submission as written to scraped_posts.json.
type ScrapedPost struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Score int    `json:"score"`
	URL   string `json:"url"`
}

// PostWithReply is a scraped post plus the drafted reply, as written to posts_with_replies.json.
type PostWithReply struct {
	ScrapedPost
	GeneratedReply string `json:"generated_reply"`
	WordCount      int    `json:"word_count"`
}

// CommentSnapshot is the refreshed state of one of our posted comments.
type CommentSnapshot struct {
	ID      string  `json:"id"`
	Body    string  `json:"body"`
	Score   int     `json:"score"`
	Replies []Reply `json:"replies"`
}

// Reply is a single reply somewhere below a tracked comment. Author is empty for deleted accounts.
type Reply struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Body   string `json:"body"`
}

type RedditAPIResponse struct {
	Kind string        `json:"kind"`
	Data RedditAPIData `json:"data"`
}

type RedditAPIData struct {
	After    string           `json:"after"`
	Children []RedditAPIChild `json:"children"`
}

type RedditAPIChild struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type RedditLinkData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Selftext string `json:"selftext"`
	Score    int    `json:"score"`
	URL      string `json:"url"`
}

type RedditCommentData struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	LinkID string `json:"link_id"`
	Author string `json:"author"`
	Body   string `json:"body"`
	Score  int    `json:"score"`
	// Replies is "" when there are none, otherwise a listing.
	Replies json.RawMessage `json:"replies"`
}

type RedditMe struct {
	Name string `json:"name"`
}

type RedditCommentResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
		Data   struct {
			Things []struct {
				Kind string            `json:"kind"`
				Data RedditCommentData `json:"data"`
			} `json:"things"`
		} `json:"data"`
	} `json:"json"`
}
