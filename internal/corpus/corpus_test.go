package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/orthostat/internal/model"
)

func TestNewNormalizesAndSorts(t *testing.T) {
	c := New([]model.Entry{
		{Word: "she", Freq: 10},
		{Word: " the ", Freq: 100},
		{Word: "", Freq: 99},
		{Word: "bad", Freq: -1},
		{Word: "they", Freq: 50},
		{Word: "demo", Freq: 10},
	})
	want := []model.Entry{
		{Word: "THE", Freq: 100},
		{Word: "THEY", Freq: 50},
		{Word: "SHE", Freq: 10},
		{Word: "DEMO", Freq: 10},
	}
	if diff := cmp.Diff(want, c.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if c.TotalFreq() != 170 {
		t.Fatalf("expected total 170, got %v", c.TotalFreq())
	}
}

func TestWindowClamps(t *testing.T) {
	c := New([]model.Entry{{Word: "a", Freq: 4}, {Word: "b", Freq: 3}, {Word: "c", Freq: 2}, {Word: "d", Freq: 1}})
	cases := []struct {
		skip, take int
		want       []string
	}{
		{0, 2, []string{"A", "B"}},
		{1, 2, []string{"B", "C"}},
		{3, 10, []string{"D"}},
		{10, 5, []string{}},
		{-1, 1, []string{"A"}},
		{0, -3, []string{}},
	}
	for _, tc := range cases {
		got := Words(c.Window(tc.skip, tc.take))
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("Window(%d, %d) mismatch (-want +got):\n%s", tc.skip, tc.take, diff)
		}
	}
	head := c.Head(2)
	head = append(head, model.Entry{Word: "X"})
	if c.Entries()[2].Word != "C" {
		t.Fatalf("append to a window must not modify the corpus")
	}
	_ = head
}

func TestLazyLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	lazy := NewLazy(func(context.Context) ([]model.Entry, error) {
		calls.Add(1)
		return []model.Entry{{Word: "demo", Freq: 1}}, nil
	})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := lazy.Corpus(context.Background()); err != nil {
				t.Errorf("Corpus failed: %v", err)
			}
		}()
	}
	wg.Wait()
	if calls.Load() != 1 {
		t.Fatalf("expected a single load, got %d", calls.Load())
	}
}

func TestLazyKeepsError(t *testing.T) {
	boom := errors.New("boom")
	lazy := NewLazy(func(context.Context) ([]model.Entry, error) { return nil, boom })
	if _, err := lazy.Corpus(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	empty := NewLazy(func(context.Context) ([]model.Entry, error) { return nil, nil })
	if _, err := empty.Corpus(context.Background()); err == nil {
		t.Fatalf("expected error for empty corpus")
	}
}

func TestFileSourceFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freqs.tsv")
	if err := os.WriteFile(path, []byte("the\t100\nco-op\t40\nshe\t10\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	c, err := NewLazy(FileSource(path, "en")).Corpus(context.Background())
	if err != nil {
		t.Fatalf("Corpus failed: %v", err)
	}
	if diff := cmp.Diff([]string{"THE", "SHE"}, Words(c.Entries())); diff != "" {
		t.Fatalf("words mismatch (-want +got):\n%s", diff)
	}
}
