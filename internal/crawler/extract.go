package crawler

import (
	"strconv"
	"strings"

	"github.com/nao1215/ucomment/internal/innertube"
	"github.com/nao1215/ucomment/internal/model"
)

// channelPrefixLength is len("/channel/"). Author URLs shorter than this
// yield an empty author id.
const channelPrefixLength = len("/channel/")

// ExtractComment builds an output record from a comment renderer. Absent
// fields fall back to their zero value and never fail the extraction.
func ExtractComment(c *innertube.CommentRenderer) model.Comment {
	var rec model.Comment

	if text, ok := c.VoteCountText(); ok {
		if v, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64); err == nil {
			rec.VoteCount = v
		}
	}

	if name, ok := c.AuthorName(); ok {
		rec.AuthorName = strings.ReplaceAll(name, "@", "")
	}

	if runs, ok := c.Runs(); ok {
		rec.Text = strings.Join(runs, "")
	}

	if url, ok := c.AuthorURL(); ok && len(url) > channelPrefixLength {
		rec.AuthorID = url[channelPrefixLength:]
	}

	return rec
}
