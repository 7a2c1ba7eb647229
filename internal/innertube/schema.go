package innertube

import (
	"bytes"
	"encoding/json"

	"github.com/nao1215/ucomment/internal/model"
)

// Node is one raw element of a page's item list.
type Node json.RawMessage

// MarshalJSON returns the raw node bytes.
func (n Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	return n, nil
}

// UnmarshalJSON keeps a copy of the raw node bytes.
func (n *Node) UnmarshalJSON(data []byte) error {
	*n = append((*n)[0:0], data...)
	return nil
}

// Decode decodes the node into the item schema.
// An error means the node is not an object or one of its renderers is not
// an object. Anything below a renderer that has an unexpected shape is
// treated as absent.
func (n Node) Decode() (*Item, error) {
	var item Item
	if err := json.Unmarshal(n, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Item is the decoded form of a node. Exactly one of the renderer fields is
// expected to be set; which one determines the node's kind.
type Item struct {
	CommentThreadRenderer    *CommentThreadRenderer    `json:"commentThreadRenderer"`
	CommentRenderer          *CommentRenderer          `json:"commentRenderer"`
	ContinuationItemRenderer *ContinuationItemRenderer `json:"continuationItemRenderer"`
}

// CommentThreadRenderer wraps a top-level comment and its reply sub-tree.
type CommentThreadRenderer struct {
	Comment optional[threadComment] `json:"comment"`
	Replies optional[threadReplies] `json:"replies"`
}

type threadComment struct {
	CommentRenderer optional[CommentRenderer] `json:"commentRenderer"`
}

type threadReplies struct {
	CommentRepliesRenderer optional[struct {
		// Entries are decoded on demand; only the first one is ever read.
		Contents optional[[]json.RawMessage] `json:"contents"`
	}] `json:"commentRepliesRenderer"`
}

// replyEntry is the part of a replies entry that carries the reply token.
type replyEntry struct {
	ContinuationItemRenderer optional[ContinuationItemRenderer] `json:"continuationItemRenderer"`
}

// TopComment returns the comment the thread wraps, if any.
func (t *CommentThreadRenderer) TopComment() (*CommentRenderer, bool) {
	if t == nil {
		return nil, false
	}
	comment, ok := t.Comment.get()
	if !ok {
		return nil, false
	}
	return comment.CommentRenderer.get()
}

// HasReplies reports whether the thread carries a replies section at all.
func (t *CommentThreadRenderer) HasReplies() bool {
	if t == nil {
		return false
	}
	_, ok := t.Replies.get()
	return ok
}

// ReplyToken returns the continuation token of the reply sub-tree.
// Only the first entry of the replies section is consulted.
func (t *CommentThreadRenderer) ReplyToken() (model.Token, bool) {
	if t == nil {
		return "", false
	}
	replies, ok := t.Replies.get()
	if !ok {
		return "", false
	}
	renderer, ok := replies.CommentRepliesRenderer.get()
	if !ok {
		return "", false
	}
	contents, ok := renderer.Contents.get()
	if !ok || len(*contents) == 0 {
		return "", false
	}

	var first optional[replyEntry]
	_ = first.UnmarshalJSON((*contents)[0])
	entry, ok := first.get()
	if !ok {
		return "", false
	}
	cont, _ := entry.ContinuationItemRenderer.get()
	return cont.EndpointToken()
}

// CommentRenderer is a comment at any nesting depth.
type CommentRenderer struct {
	VoteCount      optional[SimpleText]     `json:"voteCount"`
	AuthorText     optional[SimpleText]     `json:"authorText"`
	ContentText    optional[contentText]    `json:"contentText"`
	AuthorEndpoint optional[authorEndpoint] `json:"authorEndpoint"`
}

type contentText struct {
	Runs optional[[]optional[textRun]] `json:"runs"`
}

type textRun struct {
	Text flexString `json:"text"`
}

type authorEndpoint struct {
	CommandMetadata optional[struct {
		WebCommandMetadata optional[struct {
			URL flexString `json:"url"`
		}] `json:"webCommandMetadata"`
	}] `json:"commandMetadata"`
}

// VoteCountText returns the display text of the vote count.
func (c *CommentRenderer) VoteCountText() (string, bool) {
	if c == nil {
		return "", false
	}
	s, _ := c.VoteCount.get()
	return s.Text()
}

// AuthorName returns the author display text.
func (c *CommentRenderer) AuthorName() (string, bool) {
	if c == nil {
		return "", false
	}
	s, _ := c.AuthorText.get()
	return s.Text()
}

// Runs returns the text of every run in declared order.
// A run without text, or one that is not an object, contributes "".
func (c *CommentRenderer) Runs() ([]string, bool) {
	if c == nil {
		return nil, false
	}
	content, ok := c.ContentText.get()
	if !ok {
		return nil, false
	}
	list, ok := content.Runs.get()
	if !ok {
		return nil, false
	}
	runs := make([]string, 0, len(*list))
	for _, r := range *list {
		run, ok := r.get()
		if !ok {
			runs = append(runs, "")
			continue
		}
		runs = append(runs, string(run.Text))
	}
	return runs, true
}

// AuthorURL returns the author's profile URL path.
func (c *CommentRenderer) AuthorURL() (string, bool) {
	if c == nil {
		return "", false
	}
	endpoint, ok := c.AuthorEndpoint.get()
	if !ok {
		return "", false
	}
	meta, ok := endpoint.CommandMetadata.get()
	if !ok {
		return "", false
	}
	web, ok := meta.WebCommandMetadata.get()
	if !ok {
		return "", false
	}
	url := string(web.URL)
	return url, url != ""
}

// ContinuationItemRenderer is either a "load more" button or a pagination
// cursor, both carrying a continuation token.
type ContinuationItemRenderer struct {
	ContinuationEndpoint optional[ContinuationEndpoint] `json:"continuationEndpoint"`
	Button               optional[struct {
		ButtonRenderer optional[struct {
			Command optional[ContinuationEndpoint] `json:"command"`
		}] `json:"buttonRenderer"`
	}] `json:"button"`
}

// ButtonToken returns the token of a "load more" button.
func (r *ContinuationItemRenderer) ButtonToken() (model.Token, bool) {
	if r == nil {
		return "", false
	}
	button, ok := r.Button.get()
	if !ok {
		return "", false
	}
	renderer, ok := button.ButtonRenderer.get()
	if !ok {
		return "", false
	}
	cmd, _ := renderer.Command.get()
	return cmd.Token()
}

// EndpointToken returns the token of a pagination cursor.
func (r *ContinuationItemRenderer) EndpointToken() (model.Token, bool) {
	if r == nil {
		return "", false
	}
	e, _ := r.ContinuationEndpoint.get()
	return e.Token()
}

// ContinuationEndpoint holds a continuation command.
type ContinuationEndpoint struct {
	ContinuationCommand optional[struct {
		Token flexString `json:"token"`
	}] `json:"continuationCommand"`
}

// Token returns the continuation token. An empty token counts as absent.
func (e *ContinuationEndpoint) Token() (model.Token, bool) {
	if e == nil {
		return "", false
	}
	cmd, ok := e.ContinuationCommand.get()
	if !ok || cmd.Token == "" {
		return "", false
	}
	return model.Token(cmd.Token), true
}

// SimpleText is the service's plain text wrapper.
type SimpleText struct {
	SimpleText *flexString `json:"simpleText"`
}

// Text returns the wrapped text.
func (s *SimpleText) Text() (string, bool) {
	if s == nil || s.SimpleText == nil {
		return "", false
	}
	return string(*s.SimpleText), true
}

// optional holds a sub-object that is present only when its JSON matches T.
// null, a missing key and a value of the wrong shape all leave it absent,
// so one odd field never fails the enclosing node.
type optional[T any] struct {
	v *T
}

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.v = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil //nolint:nilerr // wrong shape means absent
	}
	o.v = &v
	return nil
}

// get returns the value and whether it is present.
func (o optional[T]) get() (*T, bool) {
	return o.v, o.v != nil
}

// flexString decodes a JSON string and silently yields "" for any other
// JSON type, so a leaf with an unexpected type degrades to its default
// instead of failing the whole node.
type flexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if !bytes.Equal(data, []byte("null")) {
		*f = ""
	}
	return nil
}
