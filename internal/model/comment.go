package model

import "strconv"

// CSVHeader is the fixed header row every comment sink is seeded with.
var CSVHeader = []string{"UserId", "Author", "Comment", "Likes"}

// Comment is one extracted comment. It is the output record of a crawl.
// Comments are immutable once extracted.
type Comment struct {
	// AuthorID is the author's channel id, derived from the profile URL
	// with its fixed path prefix stripped.
	AuthorID string `json:"author_id"`

	// AuthorName is the author's display name with any '@' removed.
	AuthorName string `json:"author_name"`

	// Text is the concatenation of all text runs in declared order.
	Text string `json:"text"`

	// VoteCount is the like count. Absent or unparsable input is 0.
	VoteCount uint64 `json:"vote_count"`
}

// Row renders the comment as a CSV row in CSVHeader column order.
func (c Comment) Row() []string {
	return []string{
		c.AuthorID,
		c.AuthorName,
		c.Text,
		strconv.FormatUint(c.VoteCount, 10),
	}
}
