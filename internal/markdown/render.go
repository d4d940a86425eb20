package markdown

import (
	"strings"

	"xsync/internal/model"
)

const delimiter = "---"

// Render produces the persisted markdown form of a post: front matter with
// id, created_at and, when the post is a retweet, retweeted_id, then the raw
// text followed by one trailing blank line. Pure and deterministic; the text
// is written as-is, without escaping.
func Render(p model.Post) string {
	var b strings.Builder
	b.WriteString(delimiter + "\n")
	b.WriteString("id: " + p.ID + "\n")
	b.WriteString("created_at: " + p.CreatedAt + "\n")
	if rt := p.RetweetedID(); rt != "" {
		b.WriteString("retweeted_id: " + rt + "\n")
	}
	b.WriteString(delimiter + "\n\n")
	b.WriteString(p.Text + "\n\n")
	return b.String()
}
