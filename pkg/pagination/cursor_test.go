package pagination

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Sternrassler/rbx-client/pkg/logging"
)

// stubPages serves pages 1..len(pages); page i returns a cursor unless it is
// the last page or endless is set.
type stubPages struct {
	pages   [][]int
	endless bool
	cursors []string
}

func (s *stubPages) FetchPage(_ context.Context, cursor string) (Page[int], error) {
	s.cursors = append(s.cursors, cursor)
	n := len(s.cursors) // 1-based page number

	var data []int
	if n <= len(s.pages) {
		data = s.pages[n-1]
	}

	next := ""
	if s.endless || n < len(s.pages) {
		next = fmt.Sprintf("cursor-%d", n)
	}
	return Page[int]{Data: data, NextPageCursor: next}, nil
}

func TestFetchAll_StopsWhenCursorEmpty(t *testing.T) {
	stub := &stubPages{pages: [][]int{{1, 2}, {3}, {4, 5}, {6}, {7}}}

	items, state, err := FetchAll[int](context.Background(), stub)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	if len(stub.cursors) != 5 {
		t.Errorf("fetched %d pages, want 5", len(stub.cursors))
	}
	want := []int{1, 2, 3, 4, 5, 6, 7}
	if fmt.Sprint(items) != fmt.Sprint(want) {
		t.Errorf("items = %v, want %v", items, want)
	}
	if state.Pages != 5 || state.Truncated || state.Cursor != "" {
		t.Errorf("state = %+v, want 5 pages, not truncated", state)
	}
}

func TestFetchAll_FollowsCursor(t *testing.T) {
	stub := &stubPages{pages: [][]int{{1}, {2}, {3}}}

	if _, _, err := FetchAll[int](context.Background(), stub); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	want := []string{"", "cursor-1", "cursor-2"}
	if fmt.Sprint(stub.cursors) != fmt.Sprint(want) {
		t.Errorf("cursors = %q, want %q", stub.cursors, want)
	}
}

func TestFetchAll_CeilingStopsEndlessCursor(t *testing.T) {
	stub := &stubPages{
		pages:   [][]int{{1}, {2}, {3}, {4}, {5}, {6}, {7}},
		endless: true,
	}

	items, state, err := FetchAll[int](context.Background(), stub)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	if len(stub.cursors) != MaxPages {
		t.Errorf("fetched %d pages, want %d", len(stub.cursors), MaxPages)
	}
	if len(items) != 5 {
		t.Errorf("items = %v, want 5 items", items)
	}
	if !state.Truncated {
		t.Error("state.Truncated = false, want true")
	}
	if state.Cursor != "cursor-5" {
		t.Errorf("state.Cursor = %q, want cursor-5", state.Cursor)
	}
}

func TestFetchAll_SinglePage(t *testing.T) {
	fetch := PageFunc[string](func(_ context.Context, cursor string) (Page[string], error) {
		if cursor != "" {
			t.Errorf("unexpected cursor %q", cursor)
		}
		return Page[string]{Data: []string{"only"}}, nil
	})

	items, state, err := FetchAll[string](context.Background(), fetch)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(items) != 1 || state.Pages != 1 {
		t.Errorf("items = %v, pages = %d", items, state.Pages)
	}
}

func TestFetchAll_ErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	fetch := PageFunc[int](func(_ context.Context, _ string) (Page[int], error) {
		calls++
		if calls == 2 {
			return Page[int]{}, boom
		}
		return Page[int]{Data: []int{calls}, NextPageCursor: "next"}, nil
	})

	items, _, err := FetchAll[int](context.Background(), fetch)
	if !errors.Is(err, boom) {
		t.Fatalf("FetchAll() error = %v, want boom", err)
	}
	if items != nil {
		t.Errorf("items = %v, want nil on error", items)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestFetchAll_LogsOnceWithTruncation(t *testing.T) {
	buf := &bytes.Buffer{}
	logging.Setup(logging.Config{Level: logging.LevelDebug, Output: buf})
	t.Cleanup(func() {
		logging.Setup(logging.Config{Level: logging.LevelInfo, Output: &bytes.Buffer{}})
	})

	stub := &stubPages{pages: [][]int{{1}, {2}, {3}, {4}, {5}, {6}}, endless: true}
	if _, _, err := FetchAll[int](context.Background(), stub); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("logged %d lines, want 1:\n%s", len(lines), buf.String())
	}
	for _, want := range []string{`"component":"pagination"`, `"truncated":true`, `"pages":5`} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("log line missing %s: %s", want, lines[0])
		}
	}
}
