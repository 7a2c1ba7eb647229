package innertube

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/ucomment/internal/model"
)

func TestNode_Decode(t *testing.T) {
	t.Parallel()

	t.Run("thread with reply token", func(t *testing.T) {
		t.Parallel()

		n := Node(`{"commentThreadRenderer":{
			"comment":{"commentRenderer":{
				"authorText":{"simpleText":"@alice"},
				"voteCount":{"simpleText":"5"},
				"contentText":{"runs":[{"text":"hi"},{"text":" there"}]},
				"authorEndpoint":{"commandMetadata":{"webCommandMetadata":{"url":"/channel/alice"}}}
			}},
			"replies":{"commentRepliesRenderer":{"contents":[
				{"continuationItemRenderer":{"continuationEndpoint":{"continuationCommand":{"token":"R1"}}}}
			]}}
		}}`)

		item, err := n.Decode()
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		c, ok := item.CommentThreadRenderer.TopComment()
		if !ok {
			t.Fatal("TopComment() not found")
		}
		if got, _ := c.AuthorName(); got != "@alice" {
			t.Errorf("AuthorName() = %q", got)
		}
		if got, _ := c.VoteCountText(); got != "5" {
			t.Errorf("VoteCountText() = %q", got)
		}
		runs, ok := c.Runs()
		if !ok {
			t.Fatal("Runs() not found")
		}
		if diff := cmp.Diff([]string{"hi", " there"}, runs); diff != "" {
			t.Errorf("Runs() mismatch (-want +got):\n%s", diff)
		}
		if got, _ := c.AuthorURL(); got != "/channel/alice" {
			t.Errorf("AuthorURL() = %q", got)
		}
		tok, ok := item.CommentThreadRenderer.ReplyToken()
		if !ok || tok != model.Token("R1") {
			t.Errorf("ReplyToken() = %q, %v", tok, ok)
		}
	})

	t.Run("button and endpoint continuations", func(t *testing.T) {
		t.Parallel()

		button := Node(`{"continuationItemRenderer":{"button":{"buttonRenderer":{"command":{"continuationCommand":{"token":"B"}}}}}}`)
		item, err := button.Decode()
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if tok, ok := item.ContinuationItemRenderer.ButtonToken(); !ok || tok != "B" {
			t.Errorf("ButtonToken() = %q, %v", tok, ok)
		}
		if _, ok := item.ContinuationItemRenderer.EndpointToken(); ok {
			t.Error("EndpointToken() found on a button node")
		}

		endpoint := Node(`{"continuationItemRenderer":{"continuationEndpoint":{"continuationCommand":{"token":"E"}}}}`)
		item, err = endpoint.Decode()
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if tok, ok := item.ContinuationItemRenderer.EndpointToken(); !ok || tok != "E" {
			t.Errorf("EndpointToken() = %q, %v", tok, ok)
		}
	})

	t.Run("wrong leaf types degrade to empty", func(t *testing.T) {
		t.Parallel()

		n := Node(`{"commentRenderer":{"voteCount":{"simpleText":12},"authorText":{"simpleText":null},"contentText":{"runs":[{"text":7},{}]}}}`)
		item, err := n.Decode()
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if got, ok := item.CommentRenderer.VoteCountText(); !ok || got != "" {
			t.Errorf("VoteCountText() = %q, %v", got, ok)
		}
		if _, ok := item.CommentRenderer.AuthorName(); ok {
			t.Error("AuthorName() found for null simpleText")
		}
		runs, _ := item.CommentRenderer.Runs()
		if diff := cmp.Diff([]string{"", ""}, runs); diff != "" {
			t.Errorf("Runs() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("wrong container types are absent", func(t *testing.T) {
		t.Parallel()

		n := Node(`{"commentThreadRenderer":{
			"comment":{"commentRenderer":{
				"voteCount":"5",
				"authorText":["@alice"],
				"contentText":{"runs":{"text":"hi"}},
				"authorEndpoint":{"commandMetadata":7}
			}},
			"replies":{"commentRepliesRenderer":{"contents":[
				{"continuationItemRenderer":{"continuationEndpoint":{"continuationCommand":{"token":"R"}}}},
				{"commentRenderer":"unexpected"}
			]}}
		}}`)

		item, err := n.Decode()
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		c, ok := item.CommentThreadRenderer.TopComment()
		if !ok {
			t.Fatal("TopComment() not found")
		}
		if _, ok := c.VoteCountText(); ok {
			t.Error("VoteCountText() found for a string voteCount")
		}
		if _, ok := c.AuthorName(); ok {
			t.Error("AuthorName() found for an array authorText")
		}
		if _, ok := c.Runs(); ok {
			t.Error("Runs() found for object runs")
		}
		if _, ok := c.AuthorURL(); ok {
			t.Error("AuthorURL() found for a numeric commandMetadata")
		}
		if tok, ok := item.CommentThreadRenderer.ReplyToken(); !ok || tok != "R" {
			t.Errorf("ReplyToken() = %q, %v, want R", tok, ok)
		}
	})

	t.Run("first reply entry of the wrong shape", func(t *testing.T) {
		t.Parallel()

		n := Node(`{"commentThreadRenderer":{"replies":{"commentRepliesRenderer":{"contents":["R",{"continuationItemRenderer":{}}]}}}}`)
		item, err := n.Decode()
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if _, ok := item.CommentThreadRenderer.ReplyToken(); ok {
			t.Error("ReplyToken() found in a non-object entry")
		}
	})

	t.Run("non-string run entries contribute empty text", func(t *testing.T) {
		t.Parallel()

		n := Node(`{"commentRenderer":{"contentText":{"runs":[{"text":"a"},"b",{"text":"c"}]}}}`)
		item, err := n.Decode()
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		runs, _ := item.CommentRenderer.Runs()
		if diff := cmp.Diff([]string{"a", "", "c"}, runs); diff != "" {
			t.Errorf("Runs() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("structural mismatch fails", func(t *testing.T) {
		t.Parallel()

		n := Node(`{"commentThreadRenderer":[1,2,3]}`)
		if _, err := n.Decode(); err == nil {
			t.Error("Decode() error = nil, want error")
		}
	})

	t.Run("empty replies contents", func(t *testing.T) {
		t.Parallel()

		n := Node(`{"commentThreadRenderer":{"replies":{"commentRepliesRenderer":{"contents":[]}}}}`)
		item, err := n.Decode()
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if !item.CommentThreadRenderer.HasReplies() {
			t.Error("HasReplies() = false")
		}
		if _, ok := item.CommentThreadRenderer.ReplyToken(); ok {
			t.Error("ReplyToken() found in empty contents")
		}
	})
}

func TestNilAccessors(t *testing.T) {
	t.Parallel()

	var thread *CommentThreadRenderer
	if _, ok := thread.TopComment(); ok {
		t.Error("nil thread TopComment() ok")
	}
	if _, ok := thread.ReplyToken(); ok {
		t.Error("nil thread ReplyToken() ok")
	}
	var c *CommentRenderer
	if _, ok := c.Runs(); ok {
		t.Error("nil comment Runs() ok")
	}
	if _, ok := c.AuthorURL(); ok {
		t.Error("nil comment AuthorURL() ok")
	}
	var r *ContinuationItemRenderer
	if _, ok := r.ButtonToken(); ok {
		t.Error("nil renderer ButtonToken() ok")
	}
}
