package crawler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/ucomment/internal/innertube"
	"github.com/nao1215/ucomment/internal/model"
)

// fakeFetcher serves pages from a map and records every call.
type fakeFetcher struct {
	pages map[model.Token][]innertube.Node
	calls []model.Token
	err   map[model.Token]error
}

func (f *fakeFetcher) Fetch(_ context.Context, token model.Token) ([]innertube.Node, error) {
	f.calls = append(f.calls, token)
	if err := f.err[token]; err != nil {
		return nil, err
	}
	return f.pages[token], nil
}

type memSink struct {
	records []model.Comment
	err     error
}

func (s *memSink) Append(c model.Comment) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, c)
	return nil
}

func thread(author, votes, url string, runs []string, replyToken string) innertube.Node {
	replies := ""
	if replyToken != "" {
		replies = fmt.Sprintf(`,"replies":{"commentRepliesRenderer":{"contents":[{"continuationItemRenderer":{"continuationEndpoint":{"continuationCommand":{"token":%q}}}}]}}`, replyToken)
	}
	return innertube.Node(fmt.Sprintf(`{"commentThreadRenderer":{"comment":{"commentRenderer":%s}%s}}`,
		commentJSON(author, votes, url, runs), replies))
}

func comment(author, votes, url string, runs []string) innertube.Node {
	return innertube.Node(fmt.Sprintf(`{"commentRenderer":%s}`, commentJSON(author, votes, url, runs)))
}

func commentJSON(author, votes, url string, runs []string) string {
	runJSON := ""
	for i, r := range runs {
		if i > 0 {
			runJSON += ","
		}
		runJSON += fmt.Sprintf(`{"text":%q}`, r)
	}
	return fmt.Sprintf(`{"authorText":{"simpleText":%q},"voteCount":{"simpleText":%q},"contentText":{"runs":[%s]},"authorEndpoint":{"commandMetadata":{"webCommandMetadata":{"url":%q}}}}`,
		author, votes, runJSON, url)
}

func button(token string) innertube.Node {
	return innertube.Node(fmt.Sprintf(`{"continuationItemRenderer":{"button":{"buttonRenderer":{"command":{"continuationCommand":{"token":%q}}}}}}`, token))
}

func endpoint(token string) innertube.Node {
	return innertube.Node(fmt.Sprintf(`{"continuationItemRenderer":{"continuationEndpoint":{"continuationCommand":{"token":%q}}}}`, token))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		node         innertube.Node
		wantKind     Kind
		wantComment  bool
		wantContinue model.Token
		wantReply    model.Token
	}{
		{
			name:        "thread with comment",
			node:        thread("@a", "1", "/channel/a", []string{"x"}, ""),
			wantKind:    KindThread,
			wantComment: true,
		},
		{
			name:        "thread with comment and reply",
			node:        thread("@a", "1", "/channel/a", []string{"x"}, "R"),
			wantKind:    KindThread,
			wantComment: true,
			wantReply:   "R",
		},
		{
			name:        "bare comment",
			node:        comment("@b", "2", "/channel/b", []string{"y"}),
			wantKind:    KindComment,
			wantComment: true,
		},
		{
			name:         "button continuation",
			node:         button("B"),
			wantKind:     KindButtonContinuation,
			wantContinue: "B",
		},
		{
			name:         "endpoint continuation",
			node:         endpoint("E"),
			wantKind:     KindEndpointContinuation,
			wantContinue: "E",
		},
		{
			name: "button wins over endpoint",
			node: innertube.Node(`{"continuationItemRenderer":{
				"button":{"buttonRenderer":{"command":{"continuationCommand":{"token":"B"}}}},
				"continuationEndpoint":{"continuationCommand":{"token":"E"}}}}`),
			wantKind:     KindButtonContinuation,
			wantContinue: "B",
		},
		{
			name: "thread comment wins over bare comment",
			node: innertube.Node(`{"commentThreadRenderer":{"comment":{"commentRenderer":{"authorText":{"simpleText":"t"}}}},
				"commentRenderer":{"authorText":{"simpleText":"c"}}}`),
			wantKind:    KindThread,
			wantComment: true,
		},
		{
			name:      "thread without comment still reports reply",
			node:      innertube.Node(`{"commentThreadRenderer":{"replies":{"commentRepliesRenderer":{"contents":[{"continuationItemRenderer":{"continuationEndpoint":{"continuationCommand":{"token":"R"}}}}]}}}}`),
			wantKind:  KindNone,
			wantReply: "R",
		},
		{
			name:        "replies without token",
			node:        innertube.Node(`{"commentThreadRenderer":{"comment":{"commentRenderer":{}},"replies":{"commentRepliesRenderer":{"contents":[{}]}}}}`),
			wantKind:    KindThread,
			wantComment: true,
		},
		{
			name:     "unknown node",
			node:     innertube.Node(`{"adSlotRenderer":{}}`),
			wantKind: KindNone,
		},
		{
			name:     "empty token is no token",
			node:     endpoint(""),
			wantKind: KindNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			first, err := Classify(tt.node)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			second, err := Classify(tt.node)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if first.Kind != second.Kind || first.Continuation != second.Continuation || first.Reply != second.Reply {
				t.Errorf("Classify() not idempotent: %+v vs %+v", first, second)
			}

			if first.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", first.Kind, tt.wantKind)
			}
			if (first.Comment != nil) != tt.wantComment {
				t.Errorf("Comment set = %v, want %v", first.Comment != nil, tt.wantComment)
			}
			if first.Continuation != tt.wantContinue {
				t.Errorf("Continuation = %q, want %q", first.Continuation, tt.wantContinue)
			}
			if first.Reply != tt.wantReply {
				t.Errorf("Reply = %q, want %q", first.Reply, tt.wantReply)
			}
		})
	}
}

func TestClassify_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := Classify(innertube.Node(`{"commentRenderer":"oops"}`)); err == nil {
		t.Error("Classify() error = nil, want decode error")
	}
}

func TestClassification_Tokens(t *testing.T) {
	t.Parallel()

	c := Classification{Continuation: "C", Reply: "R"}
	if diff := cmp.Diff([]model.Token{"C", "R"}, c.Tokens()); diff != "" {
		t.Errorf("Tokens() mismatch (-want +got):\n%s", diff)
	}
	if got := (Classification{}).Tokens(); len(got) != 0 {
		t.Errorf("Tokens() = %v, want empty", got)
	}
}

func TestExtractComment(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, n innertube.Node) *innertube.CommentRenderer {
		t.Helper()
		c, err := Classify(n)
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		return c.Comment
	}

	tests := []struct {
		name string
		node innertube.Node
		want model.Comment
	}{
		{
			name: "all fields",
			node: comment("@alice", "5", "/channel/alice", []string{"hi", " there"}),
			want: model.Comment{AuthorID: "alice", AuthorName: "alice", Text: "hi there", VoteCount: 5},
		},
		{
			name: "every at sign removed",
			node: comment("@a@b", "0", "/channel/UCx", []string{"t"}),
			want: model.Comment{AuthorID: "UCx", AuthorName: "ab", Text: "t"},
		},
		{
			name: "missing vote count",
			node: innertube.Node(`{"commentRenderer":{"authorText":{"simpleText":"@handle"},"contentText":{"runs":[{"text":"x"}]}}}`),
			want: model.Comment{AuthorName: "handle", Text: "x"},
		},
		{
			name: "unparsable vote count",
			node: comment("@a", "1.2K", "/channel/a", nil),
			want: model.Comment{AuthorID: "a", AuthorName: "a"},
		},
		{
			name: "missing runs",
			node: innertube.Node(`{"commentRenderer":{"voteCount":{"simpleText":"3"}}}`),
			want: model.Comment{VoteCount: 3},
		},
		{
			name: "run without text",
			node: innertube.Node(`{"commentRenderer":{"contentText":{"runs":[{"text":"a"},{"emoji":{}},{"text":"b"}]}}}`),
			want: model.Comment{Text: "ab"},
		},
		{
			name: "author url shorter than prefix",
			node: comment("x", "1", "/c/", []string{"y"}),
			want: model.Comment{AuthorName: "x", Text: "y", VoteCount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ExtractComment(decode(t, tt.node))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractComment() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWalker_Walk(t *testing.T) {
	t.Parallel()

	t.Run("two-level tree", func(t *testing.T) {
		t.Parallel()

		// The pagination cursor and the thread's reply section share R1,
		// so the reply page is fetched once.
		f := &fakeFetcher{pages: map[model.Token][]innertube.Node{
			"T0": {
				thread("@a", "1", "/channel/a", []string{"A"}, "R1"),
				endpoint("R1"),
			},
			"R1": {comment("@b", "2", "/channel/b", []string{"B"})},
		}}
		sink := &memSink{}
		var counter model.Counter

		stats, err := NewWalker(f).Walk(context.Background(), "T0", &counter, sink)
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if len(f.calls) != 2 {
			t.Errorf("fetch calls = %v, want 2", f.calls)
		}
		if stats.Nodes != 3 {
			t.Errorf("Nodes = %d, want 3", stats.Nodes)
		}
		if len(sink.records) != 2 {
			t.Errorf("records = %d, want 2", len(sink.records))
		}
		if counter.Load() != 2 {
			t.Errorf("counter = %d, want 2", counter.Load())
		}
		if stats.Duplicates != 1 {
			t.Errorf("Duplicates = %d, want 1", stats.Duplicates)
		}
	})

	t.Run("depth-first order", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{pages: map[model.Token][]innertube.Node{
			"T0": {
				thread("@a", "1", "/channel/a", []string{"A"}, "RA"),
				thread("@b", "1", "/channel/b", []string{"B"}, ""),
				button("P2"),
			},
			"RA": {
				comment("@a1", "0", "/channel/a1", []string{"A1"}),
				button("RA2"),
			},
			"RA2": {comment("@a2", "0", "/channel/a2", []string{"A2"})},
			"P2":  {thread("@c", "0", "/channel/c", []string{"C"}, "")},
		}}
		sink := &memSink{}
		var counter model.Counter

		stats, err := NewWalker(f).Walk(context.Background(), "T0", &counter, sink)
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		var texts []string
		for _, r := range sink.records {
			texts = append(texts, r.Text)
		}
		if diff := cmp.Diff([]string{"A", "A1", "A2", "B", "C"}, texts); diff != "" {
			t.Errorf("record order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]model.Token{"T0", "RA", "RA2", "P2"}, f.calls); diff != "" {
			t.Errorf("fetch order mismatch (-want +got):\n%s", diff)
		}
		if stats.Pages != 4 {
			t.Errorf("Pages = %d, want 4", stats.Pages)
		}
	})

	t.Run("continuation then reply of the same node", func(t *testing.T) {
		t.Parallel()

		both := innertube.Node(`{
			"continuationItemRenderer":{"continuationEndpoint":{"continuationCommand":{"token":"P"}}},
			"commentThreadRenderer":{"replies":{"commentRepliesRenderer":{"contents":[{"continuationItemRenderer":{"continuationEndpoint":{"continuationCommand":{"token":"R"}}}}]}}}}`)
		f := &fakeFetcher{pages: map[model.Token][]innertube.Node{"T0": {both}}}

		var counter model.Counter
		if _, err := NewWalker(f).Walk(context.Background(), "T0", &counter, &memSink{}); err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if diff := cmp.Diff([]model.Token{"T0", "P", "R"}, f.calls); diff != "" {
			t.Errorf("fetch order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no double visit on cycles", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{pages: map[model.Token][]innertube.Node{
			"T0": {button("T1")},
			"T1": {button("T0"), button("T1")},
		}}
		var counter model.Counter

		stats, err := NewWalker(f).Walk(context.Background(), "T0", &counter, &memSink{})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		seen := make(map[model.Token]int)
		for _, c := range f.calls {
			seen[c]++
			if seen[c] > 1 {
				t.Errorf("token %q fetched %d times", c, seen[c])
			}
		}
		if stats.Duplicates != 2 {
			t.Errorf("Duplicates = %d, want 2", stats.Duplicates)
		}
	})

	t.Run("malformed node is skipped", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{pages: map[model.Token][]innertube.Node{
			"T0": {
				innertube.Node(`{"commentThreadRenderer":"broken"}`),
				comment("@ok", "1", "/channel/ok", []string{"fine"}),
			},
		}}
		sink := &memSink{}
		var counter model.Counter

		stats, err := NewWalker(f).Walk(context.Background(), "T0", &counter, sink)
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if stats.Malformed != 1 {
			t.Errorf("Malformed = %d, want 1", stats.Malformed)
		}
		if len(sink.records) != 1 || sink.records[0].Text != "fine" {
			t.Errorf("records = %+v", sink.records)
		}
	})

	t.Run("odd field shapes degrade to defaults", func(t *testing.T) {
		t.Parallel()

		const replyTail = `,"replies":{"commentRepliesRenderer":{"contents":[` +
			`{"continuationItemRenderer":{"continuationEndpoint":{"continuationCommand":{"token":"R"}}}},` +
			`{"commentRenderer":"unexpected"}]}}}}`

		tests := []struct {
			name string
			node innertube.Node
			want model.Comment
		}{
			{
				name: "string vote count on a thread",
				node: innertube.Node(`{"commentThreadRenderer":{"comment":{"commentRenderer":` +
					`{"authorText":{"simpleText":"@a"},"voteCount":"5","contentText":{"runs":[{"text":"A"}]}}}` +
					replyTail),
				want: model.Comment{AuthorName: "a", Text: "A"},
			},
			{
				name: "object runs on a thread comment",
				node: innertube.Node(`{"commentThreadRenderer":{"comment":{"commentRenderer":` +
					`{"authorText":{"simpleText":"@a"},"voteCount":{"simpleText":"3"},"contentText":{"runs":{"text":"A"}}}}` +
					replyTail),
				want: model.Comment{AuthorName: "a", VoteCount: 3},
			},
			{
				name: "unread reply entry of the wrong shape",
				node: innertube.Node(`{"commentThreadRenderer":{"comment":{"commentRenderer":` +
					`{"authorText":{"simpleText":"@a"},"voteCount":{"simpleText":"1"},"authorEndpoint":[]}}` +
					replyTail),
				want: model.Comment{AuthorName: "a", VoteCount: 1},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				f := &fakeFetcher{pages: map[model.Token][]innertube.Node{
					"T0": {tt.node},
					"R":  {comment("@b", "2", "/channel/b", []string{"B"})},
				}}
				sink := &memSink{}
				var counter model.Counter

				stats, err := NewWalker(f).Walk(context.Background(), "T0", &counter, sink)
				if err != nil {
					t.Fatalf("Walk() error = %v", err)
				}
				if stats.Malformed != 0 {
					t.Errorf("Malformed = %d, want 0", stats.Malformed)
				}
				if diff := cmp.Diff([]model.Token{"T0", "R"}, f.calls); diff != "" {
					t.Errorf("fetch calls mismatch (-want +got):\n%s", diff)
				}
				want := []model.Comment{
					tt.want,
					{AuthorID: "b", AuthorName: "b", Text: "B", VoteCount: 2},
				}
				if diff := cmp.Diff(want, sink.records); diff != "" {
					t.Errorf("records mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})

	t.Run("bare comment with object runs", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{pages: map[model.Token][]innertube.Node{
			"T0": {innertube.Node(`{"commentRenderer":{"authorText":{"simpleText":"@c"},"contentText":{"runs":{"0":{"text":"x"}}}}}`)},
		}}
		sink := &memSink{}
		var counter model.Counter

		stats, err := NewWalker(f).Walk(context.Background(), "T0", &counter, sink)
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if stats.Malformed != 0 {
			t.Errorf("Malformed = %d, want 0", stats.Malformed)
		}
		if diff := cmp.Diff([]model.Comment{{AuthorName: "c"}}, sink.records); diff != "" {
			t.Errorf("records mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("fetch failure aborts and keeps emitted records", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		f := &fakeFetcher{
			pages: map[model.Token][]innertube.Node{
				"T0": {comment("@a", "1", "/channel/a", []string{"A"}), button("T1"), comment("@b", "1", "/channel/b", []string{"B"})},
			},
			err: map[model.Token]error{"T1": boom},
		}
		sink := &memSink{}
		var counter model.Counter

		_, err := NewWalker(f).Walk(context.Background(), "T0", &counter, sink)
		if !errors.Is(err, boom) {
			t.Fatalf("Walk() error = %v, want %v", err, boom)
		}
		if len(sink.records) != 1 {
			t.Errorf("records = %d, want 1", len(sink.records))
		}
		if counter.Load() != 1 {
			t.Errorf("counter = %d, want 1", counter.Load())
		}
	})

	t.Run("sink failure aborts", func(t *testing.T) {
		t.Parallel()

		sinkErr := errors.New("disk full")
		f := &fakeFetcher{pages: map[model.Token][]innertube.Node{
			"T0": {comment("@a", "1", "/channel/a", []string{"A"})},
		}}
		var counter model.Counter

		_, err := NewWalker(f).Walk(context.Background(), "T0", &counter, &memSink{err: sinkErr})
		if !errors.Is(err, sinkErr) {
			t.Fatalf("Walk() error = %v, want %v", err, sinkErr)
		}
	})

	t.Run("cancellation is checked before fetch", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		f := &fakeFetcher{}
		var counter model.Counter

		_, err := NewWalker(f).Walk(ctx, "T0", &counter, &memSink{})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Walk() error = %v, want context.Canceled", err)
		}
		if len(f.calls) != 0 {
			t.Errorf("fetch calls = %v, want none", f.calls)
		}
	})

	t.Run("page limit", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{pages: map[model.Token][]innertube.Node{
			"T0": {button("T1")},
			"T1": {button("T2")},
			"T2": {},
		}}
		var counter model.Counter

		stats, err := NewWalker(f, WithMaxPages(2)).Walk(context.Background(), "T0", &counter, &memSink{})
		if !errors.Is(err, ErrPageLimit) {
			t.Fatalf("Walk() error = %v, want ErrPageLimit", err)
		}
		if stats.Pages != 2 {
			t.Errorf("Pages = %d, want 2", stats.Pages)
		}
	})

	t.Run("progress hook sees running total", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{pages: map[model.Token][]innertube.Node{
			"T0": {
				comment("@a", "1", "/channel/a", []string{"A"}),
				comment("@b", "1", "/channel/b", []string{"B"}),
			},
		}}
		var totals []int64
		var counter model.Counter
		counter.Inc()

		_, err := NewWalker(f, WithProgress(func(n int64) { totals = append(totals, n) })).
			Walk(context.Background(), "T0", &counter, &memSink{})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if diff := cmp.Diff([]int64{2, 3}, totals); diff != "" {
			t.Errorf("progress mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty page ends the branch", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{pages: map[model.Token][]innertube.Node{}}
		var counter model.Counter

		stats, err := NewWalker(f).Walk(context.Background(), "T0", &counter, &memSink{})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if stats.Pages != 1 || stats.Nodes != 0 {
			t.Errorf("stats = %+v", stats)
		}
	})
}

func TestMalformedNodeError(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad")
	err := error(&MalformedNodeError{Index: 3, Page: "abc", Err: cause})
	if !errors.Is(err, ErrMalformedNode) {
		t.Error("errors.Is(err, ErrMalformedNode) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	if KindThread.String() != "thread" || KindNone.String() != "none" || Kind(99).String() != "none" {
		t.Error("unexpected Kind strings")
	}
}
