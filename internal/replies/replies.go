// Package replies drafts a reply for each scraped post with a language model.
package replies

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/replybot/internal/models"
	"github.com/spacesedan/replybot/internal/store"
)

const noTextContent = "[No text content - check URL/image for context]"

type Generator interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// BuildPrompt renders the instruction sent to the model for one post.
func BuildPrompt(persona string, post models.ScrapedPost) string {
	content := post.Text
	if strings.TrimSpace(content) == "" {
		content = noTextContent
	}

	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\n**POST DETAILS:**\n")
	fmt.Fprintf(&b, "Title: %s\n", post.Title)
	fmt.Fprintf(&b, "Content: %s\n", content)
	fmt.Fprintf(&b, "URL: %s\n", post.URL)
	fmt.Fprintf(&b, "Upvotes: %d\n", post.Score)
	b.WriteString(`
**RESPONSE GUIDELINES:**
- Maximum 40 words
- Be humorous and insightful
- Show One Piece knowledge when relevant
- Stay respectful but don't be afraid to give honest opinions
- Sound natural and human, avoid generic responses
- If post is question-based, provide helpful insight
- If post is humorous, match the energy appropriately

**Your Reply:**`)
	return b.String()
}

func CountWords(s string) int {
	return len(strings.Fields(s))
}

type Drafter struct {
	gen     Generator
	persona string
}

func NewDrafter(gen Generator, persona string) *Drafter {
	return &Drafter{gen: gen, persona: persona}
}

// Generate drafts a reply per post. Posts whose generation fails are logged
// and left out.
func (d *Drafter) Generate(ctx context.Context, posts []models.ScrapedPost) []models.PostWithReply {
	out := make([]models.PostWithReply, 0, len(posts))
	for i, post := range posts {
		if ctx.Err() != nil {
			slog.Warn("[Drafter] Context canceled, stopping generation", slog.Int("remaining", len(posts)-i))
			break
		}

		start := time.Now()
		reply, err := d.gen.GenerateReply(ctx, BuildPrompt(d.persona, post))
		if err != nil {
			slog.Error("[Drafter] Could not generate reply",
				slog.String("post_id", post.ID),
				slog.String("error", err.Error()))
			continue
		}
		reply = strings.TrimSpace(reply)

		out = append(out, models.PostWithReply{
			ScrapedPost:    post,
			GeneratedReply: reply,
			WordCount:      CountWords(reply),
		})
		slog.Info("[Drafter] Generated reply",
			slog.String("post_id", post.ID),
			slog.Int("post", i+1),
			slog.Int("of", len(posts)),
			slog.Int("word_count", CountWords(reply)),
			slog.Duration("elapsed", time.Since(start)))
	}
	return out
}

// GenerateFromFile reads scraped posts from in and writes drafted replies to
// out. Nothing is written when no reply could be generated.
func (d *Drafter) GenerateFromFile(ctx context.Context, in, out string) ([]models.PostWithReply, error) {
	posts, err := store.LoadScrapedPosts(in, "run the scrape step first")
	if err != nil {
		return nil, err
	}
	slog.Info("[Drafter] Loaded posts", slog.Int("count", len(posts)), slog.String("file", in))

	drafted := d.Generate(ctx, posts)
	if len(drafted) == 0 {
		slog.Warn("[Drafter] No replies generated, nothing saved")
		return drafted, nil
	}
	if err := store.SavePostsWithReplies(out, drafted); err != nil {
		return nil, err
	}
	slog.Info("[Drafter] Saved posts with replies", slog.Int("count", len(drafted)), slog.String("file", out))
	return drafted, nil
}

// Preview prints each drafted reply for a quick read-through.
func Preview(w io.Writer, posts []models.PostWithReply) {
	fmt.Fprintln(w, "📋 GENERATED REPLIES PREVIEW")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	for i, p := range posts {
		fmt.Fprintf(w, "\n%d. 📝 %s\n", i+1, p.Title)
		fmt.Fprintf(w, "   🤖 Reply: %q\n", p.GeneratedReply)
		fmt.Fprintf(w, "   📊 %d words\n", p.WordCount)
	}
}
