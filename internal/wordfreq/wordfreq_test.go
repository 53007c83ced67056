package wordfreq

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"math"
	"os"
	"testing"

	"github.com/tinylib/msgp/msgp"
)

func TestExtractEntriesOrderAndFilter(t *testing.T) {
	data := encodeTestBins(t, []interface{}{
		map[string]interface{}{"format": "cB", "version": int64(1)},
		[]interface{}{"the", "a", "go-1"},
		[]interface{}{},
		[]interface{}{"of", "they"},
	})
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq/data/large_en.msgpack.gz": gzipBytes(t, data),
	})

	entries, err := ExtractEntries(wheelPath, "en", "large", 4)
	if err != nil {
		t.Fatalf("ExtractEntries failed: %v", err)
	}
	expected := []string{"the", "a", "of", "they"}
	if len(entries) != len(expected) {
		t.Fatalf("expected %d entries, got %d: %+v", len(expected), len(entries), entries)
	}
	for i, word := range expected {
		if entries[i].Word != word {
			t.Fatalf("expected %q at index %d, got %q", word, i, entries[i].Word)
		}
	}
	if entries[0].Freq != perBillion {
		t.Fatalf("expected top bin at %v, got %v", perBillion, entries[0].Freq)
	}
	want := perBillion * math.Pow(10, -0.02)
	if math.Abs(entries[2].Freq-want) > 1e-6 {
		t.Fatalf("expected third bin frequency %v, got %v", want, entries[2].Freq)
	}
}

func TestExtractEntriesLimit(t *testing.T) {
	data := encodeTestBins(t, []interface{}{
		[]interface{}{"hello", "world", "again"},
		[]interface{}{"more", "words"},
	})
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq/data/small_en.msgpack": data,
	})

	entries, err := ExtractEntries(wheelPath, "en", "small", 2)
	if err != nil {
		t.Fatalf("ExtractEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if _, err := ExtractEntries(wheelPath, "en", "large", 2); err == nil {
		t.Fatalf("expected error for missing large list")
	}
}

func TestExtractEntriesRejectsUnknownFormat(t *testing.T) {
	data := encodeTestBins(t, []interface{}{
		map[string]interface{}{"format": "zipf"},
		[]interface{}{"the"},
	})
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq/data/large_en.msgpack": data,
	})
	if _, err := ExtractEntries(wheelPath, "en", "large", 10); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestListLanguages(t *testing.T) {
	files := map[string][]byte{
		"wordfreq/data/large_en.msgpack.gz":         []byte("x"),
		"wordfreq/data/large_pt-br.msgpack.gz":      []byte("x"),
		"wordfreq/data/small_zh-cn.msgpack.gz":      []byte("x"),
		"wordfreq/data/_chinese_mapping.msgpack.gz": []byte("x"),
		"wordfreq/data/jieba_zh.txt":                []byte("x"),
	}
	wheelPath := writeTestWheel(t, files)

	types, err := ListLanguageTypes(wheelPath)
	if err != nil {
		t.Fatalf("ListLanguageTypes failed: %v", err)
	}
	langs := LanguagesFromTypes(types)
	expected := []string{"en", "pt-br", "zh-cn"}
	if len(langs) != len(expected) {
		t.Fatalf("expected %d langs, got %d", len(expected), len(langs))
	}
	for i, lang := range expected {
		if langs[i] != lang {
			t.Fatalf("expected %q at index %d, got %q", lang, i, langs[i])
		}
	}
	if listType, ok := SelectListType(types["zh-cn"]); !ok || listType != "small" {
		t.Fatalf("expected small fallback for zh-cn, got %q", listType)
	}
}

func TestPickWheel(t *testing.T) {
	files := []pypiFile{
		{Filename: "wordfreq-3.1.1.tar.gz", Packagetype: "sdist"},
		{Filename: "wordfreq-3.1.1-cp311-linux.whl", Packagetype: "bdist_wheel"},
		{Filename: "wordfreq-3.1.1-py3-none-any.whl", Packagetype: "bdist_wheel"},
	}
	got, ok := pickWheel(files)
	if !ok || got.Filename != "wordfreq-3.1.1-py3-none-any.whl" {
		t.Fatalf("unexpected wheel choice: %+v", got)
	}
	if _, ok := pickWheel(files[:1]); ok {
		t.Fatalf("expected no wheel among sdists")
	}
}

func encodeTestBins(t *testing.T, value interface{}) []byte {
	t.Helper()
	out, err := msgp.AppendIntf(nil, value)
	if err != nil {
		t.Fatalf("failed to encode msgpack: %v", err)
	}
	return out
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func writeTestWheel(t *testing.T, files map[string][]byte) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "wordfreq-*.whl")
	if err != nil {
		t.Fatalf("failed to create temp wheel: %v", err)
	}
	defer func() {
		_ = tmpFile.Close()
	}()

	zw := zip.NewWriter(tmpFile)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry: %v", err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("failed to write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return tmpFile.Name()
}
