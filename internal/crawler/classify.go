package crawler

import (
	"github.com/nao1215/ucomment/internal/innertube"
	"github.com/nao1215/ucomment/internal/model"
)

// Kind is the classified shape of a node.
type Kind int

const (
	// KindNone is a node that contributes nothing besides, possibly, a reply token.
	KindNone Kind = iota
	// KindThread is a thread wrapping a top-level comment.
	KindThread
	// KindComment is a bare comment (typically a reply).
	KindComment
	// KindButtonContinuation is a "load more" button.
	KindButtonContinuation
	// KindEndpointContinuation is a pagination cursor.
	KindEndpointContinuation
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindThread:
		return "thread"
	case KindComment:
		return "comment"
	case KindButtonContinuation:
		return "button-continuation"
	case KindEndpointContinuation:
		return "endpoint-continuation"
	default:
		return "none"
	}
}

// Classification is the result of classifying one node.
type Classification struct {
	Kind Kind
	// Comment is set for KindThread and KindComment.
	Comment *innertube.CommentRenderer
	// Continuation is set for the two continuation kinds.
	Continuation model.Token
	// Reply is the reply-section token of a thread. It is reported
	// independently of Kind.
	Reply model.Token
}

// Tokens returns the tokens to follow, continuation first.
func (c Classification) Tokens() []model.Token {
	var tokens []model.Token
	if !c.Continuation.IsZero() {
		tokens = append(tokens, c.Continuation)
	}
	if !c.Reply.IsZero() {
		tokens = append(tokens, c.Reply)
	}
	return tokens
}

// Classify decodes node and classifies it by which renderer is present.
// The result depends on nothing but the node's contents. An error means the
// node could not be decoded at all.
func Classify(node innertube.Node) (Classification, error) {
	item, err := node.Decode()
	if err != nil {
		return Classification{}, err
	}
	return classifyItem(item), nil
}

func classifyItem(item *innertube.Item) Classification {
	var c Classification

	if comment, ok := item.CommentThreadRenderer.TopComment(); ok {
		c.Kind = KindThread
		c.Comment = comment
	} else if item.CommentRenderer != nil {
		c.Kind = KindComment
		c.Comment = item.CommentRenderer
	} else if tok, ok := item.ContinuationItemRenderer.ButtonToken(); ok {
		c.Kind = KindButtonContinuation
		c.Continuation = tok
	} else if tok, ok := item.ContinuationItemRenderer.EndpointToken(); ok {
		c.Kind = KindEndpointContinuation
		c.Continuation = tok
	}

	// A replies section without a token has no branch to follow.
	if tok, ok := item.CommentThreadRenderer.ReplyToken(); ok {
		c.Reply = tok
	}

	return c
}
