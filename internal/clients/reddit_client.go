package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/spacesedan/replybot/config"
	"github.com/spacesedan/replybot/internal/models"
)

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"
)

var (
	ErrRedditAuth = errors.New("[RedditSession] authentication failed")
	ErrRedditAPI  = errors.New("[RedditSession] api request failed")
)

type RedditOption func(*redditOptions)

type redditOptions struct {
	apiURL   string
	tokenURL string
	client   *http.Client
}

// WithRedditEndpoints points the session at another API and token URL.
func WithRedditEndpoints(apiURL, tokenURL string) RedditOption {
	return func(o *redditOptions) {
		o.apiURL = strings.TrimRight(apiURL, "/")
		o.tokenURL = tokenURL
	}
}

func WithRedditHTTPClient(c *http.Client) RedditOption {
	return func(o *redditOptions) { o.client = c }
}

// RedditSession is an authenticated connection to the Reddit API. With
// account credentials it signs in as the bot account using the password
// grant, otherwise it is application-only and can read but not post.
type RedditSession struct {
	client    *http.Client
	base      *http.Client
	apiURL    string
	account   bool
	username  string
	userAgent string

	mu sync.Mutex
	me string
}

func NewRedditSession(ctx context.Context, cfg config.RedditConfig, opts ...RedditOption) (*RedditSession, error) {
	o := redditOptions{
		apiURL:   REDDIT_API_URL,
		tokenURL: REDDIT_AUTH_URL,
		client:   &http.Client{Timeout: REQUEST_TIMEOUT},
	}
	for _, opt := range opts {
		opt(&o)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DEFAULT_USER_AGENT
	}

	base := &http.Client{
		Timeout:   o.client.Timeout,
		Transport: &userAgentTransport{base: o.client.Transport, userAgent: userAgent},
	}
	// token refreshes outlive the caller's context
	tokenCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, base)

	account := cfg.Username != "" && cfg.Password != ""
	var src oauth2.TokenSource
	if account {
		conf := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: o.tokenURL, AuthStyle: oauth2.AuthStyleInHeader},
		}
		src = oauth2.ReuseTokenSource(nil, &passwordTokenSource{
			ctx:      tokenCtx,
			conf:     conf,
			username: cfg.Username,
			password: cfg.Password,
		})
	} else {
		conf := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     o.tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		src = conf.TokenSource(tokenCtx)
	}

	start := time.Now()
	if _, err := src.Token(); err != nil {
		slog.Error("[RedditSession] Failed to obtain access token",
			slog.Bool("account", account),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrRedditAuth, err)
	}

	slog.Info("[RedditSession] Authenticated",
		slog.Bool("account", account),
		slog.Duration("elapsed", time.Since(start)))

	client := oauth2.NewClient(tokenCtx, src)
	client.Timeout = base.Timeout

	return &RedditSession{
		client:    client,
		base:      base,
		apiURL:    o.apiURL,
		account:   account,
		username:  cfg.Username,
		userAgent: userAgent,
	}, nil
}

// Reddit issues no refresh token for the password grant, so an expired
// token is replaced by signing in again.
type passwordTokenSource struct {
	ctx      context.Context
	conf     *oauth2.Config
	username string
	password string
}

func (p *passwordTokenSource) Token() (*oauth2.Token, error) {
	return p.conf.PasswordCredentialsToken(p.ctx, p.username, p.password)
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return base.RoundTrip(r)
}

func (rs *RedditSession) Close() {
	rs.base.CloseIdleConnections()
	slog.Debug("[RedditSession] Session closed")
}

// Me returns the name of the signed-in account.
func (rs *RedditSession) Me(ctx context.Context) (string, error) {
	if !rs.account {
		return "", fmt.Errorf("%w: no account credentials configured", ErrRedditAuth)
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.me != "" {
		return rs.me, nil
	}

	var me models.RedditMe
	if err := rs.get(ctx, "/api/v1/me", nil, &me); err != nil {
		return "", err
	}
	if me.Name == "" {
		me.Name = rs.username
	}
	rs.me = me.Name
	return rs.me, nil
}

// NewPosts lists the newest submissions of a subreddit.
func (rs *RedditSession) NewPosts(ctx context.Context, subreddit string, limit int) ([]models.ScrapedPost, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("raw_json", "1")

	var listing models.RedditAPIResponse
	if err := rs.get(ctx, "/r/"+url.PathEscape(subreddit)+"/new", q, &listing); err != nil {
		return nil, err
	}

	posts := make([]models.ScrapedPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var link models.RedditLinkData
		if err := json.Unmarshal(child.Data, &link); err != nil {
			slog.Warn("[RedditSession] Skipping undecodable post",
				slog.String("subreddit", subreddit),
				slog.String("error", err.Error()))
			continue
		}
		posts = append(posts, models.ScrapedPost{
			ID:    link.ID,
			Title: link.Title,
			Text:  link.Selftext,
			Score: link.Score,
			URL:   link.URL,
		})
	}

	slog.Info("[RedditSession] Fetched new posts",
		slog.String("subreddit", subreddit),
		slog.Int("count", len(posts)))
	return posts, nil
}

// Reply posts text as a top-level comment on a submission and returns the
// new comment's id.
func (rs *RedditSession) Reply(ctx context.Context, postID, text string) (string, error) {
	if !rs.account {
		return "", fmt.Errorf("%w: posting requires account credentials", ErrRedditAuth)
	}

	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("thing_id", fullname("t3", postID))
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rs.apiURL+"/api/comment", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("[RedditSession] failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp models.RedditCommentResponse
	if err := rs.do(req, &resp); err != nil {
		return "", err
	}
	if len(resp.JSON.Errors) > 0 {
		return "", fmt.Errorf("%w: comment rejected: %v", ErrRedditAPI, resp.JSON.Errors)
	}
	if len(resp.JSON.Data.Things) == 0 || resp.JSON.Data.Things[0].Data.ID == "" {
		return "", fmt.Errorf("%w: comment response carried no id", ErrRedditAPI)
	}

	id := resp.JSON.Data.Things[0].Data.ID
	slog.Info("[RedditSession] Posted reply",
		slog.String("post_id", postID),
		slog.String("comment_id", id))
	return id, nil
}

// Comment fetches the current score and body of one of our comments along
// with every reply below it, flattened breadth first. Collapsed "more"
// stubs are not expanded.
func (rs *RedditSession) Comment(ctx context.Context, id string) (models.CommentSnapshot, error) {
	q := url.Values{}
	q.Set("id", fullname("t1", id))
	q.Set("raw_json", "1")

	var info models.RedditAPIResponse
	if err := rs.get(ctx, "/api/info", q, &info); err != nil {
		return models.CommentSnapshot{}, err
	}
	if len(info.Data.Children) == 0 {
		return models.CommentSnapshot{}, fmt.Errorf("%w: comment %s not found", ErrRedditAPI, id)
	}
	var found models.RedditCommentData
	if err := json.Unmarshal(info.Data.Children[0].Data, &found); err != nil {
		return models.CommentSnapshot{}, fmt.Errorf("%w: decode comment %s: %w", ErrRedditAPI, id, err)
	}

	q = url.Values{}
	q.Set("comment", strings.TrimPrefix(id, "t1_"))
	q.Set("raw_json", "1")

	var thread []models.RedditAPIResponse
	if err := rs.get(ctx, "/comments/"+strings.TrimPrefix(found.LinkID, "t3_"), q, &thread); err != nil {
		return models.CommentSnapshot{}, err
	}

	root := found
	if len(thread) > 1 && len(thread[1].Data.Children) > 0 {
		var c models.RedditCommentData
		if err := json.Unmarshal(thread[1].Data.Children[0].Data, &c); err == nil && c.ID != "" {
			root = c
		}
	}

	replies, err := flattenReplies(root.Replies)
	if err != nil {
		return models.CommentSnapshot{}, fmt.Errorf("%w: decode replies of %s: %w", ErrRedditAPI, id, err)
	}

	return models.CommentSnapshot{
		ID:      root.ID,
		Body:    root.Body,
		Score:   root.Score,
		Replies: replies,
	}, nil
}

func flattenReplies(raw json.RawMessage) ([]models.Reply, error) {
	var out []models.Reply
	queue := []json.RawMessage{raw}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		if len(next) == 0 || next[0] != '{' {
			continue
		}
		var listing models.RedditAPIResponse
		if err := json.Unmarshal(next, &listing); err != nil {
			return nil, err
		}
		for _, child := range listing.Data.Children {
			if child.Kind != "t1" {
				continue
			}
			var c models.RedditCommentData
			if err := json.Unmarshal(child.Data, &c); err != nil {
				return nil, err
			}
			author := c.Author
			if author == "[deleted]" {
				author = ""
			}
			out = append(out, models.Reply{ID: c.ID, Author: author, Body: c.Body})
			queue = append(queue, c.Replies)
		}
	}
	return out, nil
}

func (rs *RedditSession) get(ctx context.Context, path string, q url.Values, out any) error {
	u := rs.apiURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("[RedditSession] failed to build request: %w", err)
	}
	return rs.do(req, out)
}

func (rs *RedditSession) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := rs.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRedditAPI, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrRedditAPI, req.URL.Path, err)
	}

	slog.Debug("[RedditSession] Request complete",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrRedditAPI, req.Method, req.URL.Path, resp.StatusCode, preview(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrRedditAPI, req.URL.Path, err)
	}
	return nil
}

func fullname(kind, id string) string {
	if strings.HasPrefix(id, kind+"_") {
		return id
	}
	return kind + "_" + id
}

func preview(body []byte) string {
	raw := string(body)
	if len(raw) > previewLength {
		raw = raw[:previewLength]
	}
	return raw
}
