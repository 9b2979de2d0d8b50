package review

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Console drives a Workflow from line-oriented operator input.
type Console struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return NewScannerConsole(bufio.NewScanner(in), out)
}

// NewScannerConsole shares sc with other readers of the same input.
func NewScannerConsole(sc *bufio.Scanner, out io.Writer) *Console {
	return &Console{in: sc, out: out}
}

// Run prompts for every post until the workflow is done or input ends.
func (c *Console) Run(ctx context.Context, w *Workflow) error {
	for !w.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.show(w.State())

		fmt.Fprint(c.out, "Choose an action: [a]ccept, [e]dit, [r]eject, [s]kip to next? ")
		line, ok := c.readLine()
		if !ok {
			return c.inputErr()
		}

		var cmd Command
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "a":
			fmt.Fprintln(c.out, "✅ Reply accepted. Posting to Reddit...")
			cmd = Command{Action: Accept}
		case "e":
			fmt.Fprintln(c.out, "✏️ Enter your new reply. Press Enter on an empty line when done.")
			text, ok := c.readBlock()
			if !ok {
				return c.inputErr()
			}
			cmd = Command{Action: Edit, Text: text}
		case "r":
			cmd = Command{Action: Reject}
		case "s":
			cmd = Command{Action: Skip}
		default:
			fmt.Fprintln(c.out, "⚠️ Invalid choice. Please try again.")
			continue
		}

		out, err := w.Apply(ctx, cmd)
		switch {
		case errors.Is(err, ErrPostFailed):
			fmt.Fprintf(c.out, "❌ %v\n", err)
			continue
		case errors.Is(err, ErrTrackingFailed):
			fmt.Fprintf(c.out, "⚠️ Posted %s but could not track it: %v\n", out.CommentID, err)
		case err != nil:
			return err
		}

		switch cmd.Action {
		case Accept:
			if err == nil {
				fmt.Fprintf(c.out, "📝 Comment %s saved for future analysis.\n", out.CommentID)
			}
		case Edit:
			fmt.Fprintln(c.out, "📝 Reply updated. Please review your edits.")
		case Reject, Skip:
			fmt.Fprintln(c.out, "⏩ Skipping this post.")
		}
	}

	fmt.Fprintln(c.out, "\n🎉 Review workflow completed!")
	return nil
}

func (c *Console) show(st State) {
	fmt.Fprintln(c.out, "\n"+strings.Repeat("=", 80))
	fmt.Fprintf(c.out, "Reviewing Post %d/%d\n", st.Index+1, st.Total)
	fmt.Fprintf(c.out, "📝 Title: %s\n", st.Post.Title)
	fmt.Fprintln(c.out, strings.Repeat("-", 40))
	fmt.Fprintln(c.out, "🤖 Generated Reply:")
	fmt.Fprintf(c.out, "   %q\n", st.Reply)
	fmt.Fprintf(c.out, "   (Word count: %d)\n", st.Words)
	fmt.Fprintln(c.out, strings.Repeat("-", 40))
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return c.in.Text(), true
}

// readBlock reads lines up to the first empty one and joins them with "\n".
func (c *Console) readBlock() (string, bool) {
	var lines []string
	for {
		line, ok := c.readLine()
		if !ok {
			if len(lines) == 0 {
				return "", false
			}
			break
		}
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), true
}

func (c *Console) inputErr() error {
	if err := c.in.Err(); err != nil {
		return fmt.Errorf("[ReviewConsole] failed to read input: %w", err)
	}
	return io.ErrUnexpectedEOF
}
