package main

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/ucomment/internal/database"
	"github.com/nao1215/ucomment/internal/model"
)

// seedHistory stores a completed run of abc123 and a failed run of def456.
func seedHistory(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	ok := model.NewCrawl("abc123")
	ok.Start(start)
	ok.Comments = 42
	ok.PagesFetched = 3
	ok.Finish(start.Add(2*time.Second), model.CrawlStatusCompleted, nil)

	failed := model.NewCrawl("def456")
	failed.Start(start.Add(time.Minute))
	failed.Finish(start.Add(time.Minute+time.Second), model.CrawlStatusFailed, errors.New("token not found"))

	for _, c := range []*model.Crawl{ok, failed} {
		if err := db.SaveCrawl(context.Background(), c); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestHistoryCommand(t *testing.T) {
	t.Parallel()

	// Subtests share one database file and run in sequence.
	dir := seedHistory(t)

	t.Run("table lists every run", func(t *testing.T) {
		stdout, _, err := runRoot(t, "history", "--db-dir", dir)
		if err != nil {
			t.Fatalf("history error = %v", err)
		}
		for _, want := range []string{"abc123", "def456", "Completed", "Failed", "2 run(s)"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("output does not contain %q:\n%s", want, stdout)
			}
		}
	})

	t.Run("filters by video id", func(t *testing.T) {
		stdout, _, err := runRoot(t, "history", "--db-dir", dir, "--json", "abc123")
		if err != nil {
			t.Fatalf("history error = %v", err)
		}
		var got []model.Crawl
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid json %q: %v", stdout, err)
		}
		if len(got) != 1 || got[0].VideoID != "abc123" || got[0].Comments != 42 {
			t.Errorf("got %+v, want the abc123 run", got)
		}
	})

	t.Run("markdown to a file with the table on stdout", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports", "history.md")
		stdout, _, err := runRoot(t, "history", "--db-dir", dir, "-m", "-o", path)
		if err != nil {
			t.Fatalf("history error = %v", err)
		}
		if !strings.Contains(stdout, "2 run(s)") {
			t.Errorf("stdout is not the table:\n%s", stdout)
		}
		md := readString(t, path)
		if !strings.Contains(md, "# Comment Crawl History") || !strings.Contains(md, "token not found") {
			t.Errorf("markdown report incomplete:\n%s", md)
		}
	})

	t.Run("json and markdown are exclusive", func(t *testing.T) {
		if _, _, err := runRoot(t, "history", "--db-dir", dir, "-j", "-m"); err == nil {
			t.Error("history error = nil, want error")
		}
	})

	t.Run("rejects an invalid video id", func(t *testing.T) {
		if _, _, err := runRoot(t, "history", "--db-dir", dir, "a/b"); err == nil {
			t.Error("history error = nil, want error")
		}
	})
}
