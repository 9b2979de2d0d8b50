package clients

import "time"

const (
	DEFAULT_USER_AGENT = "replybot/0.1 (+https://github.com/spacesedan/replybot)"
	REQUEST_TIMEOUT    = 60 * time.Second
	previewLength      = 50
)
