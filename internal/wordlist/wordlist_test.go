package wordlist

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/orthostat/internal/model"
)

func TestParseEntriesFormats(t *testing.T) {
	input := `# word frequencies
the	1000
50 they

she 10
`
	entries, err := ParseEntries(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	want := []model.Entry{
		{Word: "the", Freq: 1000},
		{Word: "they", Freq: 50},
		{Word: "she", Freq: 10},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEntriesBareWordsUseRank(t *testing.T) {
	entries, err := ParseEntries(strings.NewReader("the\nof\nand\n"))
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Freq != 1 || entries[2].Freq != 1.0/3 {
		t.Fatalf("unexpected rank weights: %+v", entries)
	}
}

func TestParseEntriesErrors(t *testing.T) {
	cases := []string{
		"",
		"the of and\n",
		"the many\n",
		"the -4\n",
	}
	for _, input := range cases {
		if _, err := ParseEntries(strings.NewReader(input)); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestWriteAndLoadEntries(t *testing.T) {
	entries := []model.Entry{{Word: "demo", Freq: 1000}, {Word: "memo", Freq: 2.5}}
	var buf bytes.Buffer
	if err := WriteEntries(&buf, entries); err != nil {
		t.Fatalf("WriteEntries failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "freqs.tsv")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	loaded, err := LoadEntries(path)
	if err != nil {
		t.Fatalf("LoadEntries failed: %v", err)
	}
	if diff := cmp.Diff(entries, loaded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
