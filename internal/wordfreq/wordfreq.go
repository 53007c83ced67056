// Package wordfreq extracts frequency-ranked corpora from the wordfreq dataset.
package wordfreq

import (
	"archive/zip"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/tinylib/msgp/msgp"

	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/wordlist"
)

const pypiEndpoint = "https://pypi.org/pypi/wordfreq/json"

// perBillion scales wordfreq proportions to occurrences per billion words.
const perBillion = 1e9

// Wheel describes a cached wordfreq wheel.
type Wheel struct {
	Version  string
	Path     string
	Filename string
	Cached   bool
}

type pypiFile struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Packagetype string `json:"packagetype"`
}

type pypiResponse struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	URLs []pypiFile `json:"urls"`
}

// DownloadLatestWheel fetches the latest wordfreq wheel into cacheDir,
// reusing a cached copy when the file is already there.
func DownloadLatestWheel(ctx context.Context, cacheDir string) (Wheel, error) {
	if cacheDir == "" {
		return Wheel{}, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return Wheel{}, fmt.Errorf("failed to create cache dir: %w", err)
	}

	var payload pypiResponse
	if err := getJSON(ctx, pypiEndpoint, &payload); err != nil {
		return Wheel{}, err
	}
	if payload.Info.Version == "" {
		return Wheel{}, fmt.Errorf("missing version in pypi response")
	}
	file, ok := pickWheel(payload.URLs)
	if !ok {
		return Wheel{}, fmt.Errorf("no suitable wordfreq wheel found")
	}

	wheel := Wheel{Version: payload.Info.Version, Path: filepath.Join(cacheDir, file.Filename), Filename: file.Filename}
	if _, err := os.Stat(wheel.Path); err == nil {
		wheel.Cached = true
		return wheel, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Wheel{}, fmt.Errorf("failed to stat cached wheel: %w", err)
	}
	if err := downloadFile(ctx, file.URL, wheel.Path); err != nil {
		return Wheel{}, err
	}
	return wheel, nil
}

func getJSON(ctx context.Context, url string, out any) error {
	resp, err := httpRequest(ctx, url)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected pypi status: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode pypi response: %w", err)
	}
	return nil
}

func downloadFile(ctx context.Context, url, destPath string) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), "wordfreq-*.whl")
	if err != nil {
		return fmt.Errorf("failed to create temp wheel: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	resp, err := httpRequest(ctx, url)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected wheel status: %s", resp.Status)
	}
	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return fmt.Errorf("failed to download wheel: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp wheel: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to move wheel into cache: %w", err)
	}
	return nil
}

func httpRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func pickWheel(files []pypiFile) (pypiFile, bool) {
	var fallback *pypiFile
	for i, f := range files {
		if f.Packagetype != "bdist_wheel" {
			continue
		}
		if strings.HasSuffix(f.Filename, "py3-none-any.whl") {
			return f, true
		}
		if fallback == nil {
			fallback = &files[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return pypiFile{}, false
}

// ExtractEntries reads the frequency list for lang/listType from the wheel and
// returns up to limit alphabetic words, most frequent first. Frequencies are
// occurrences per billion words.
func ExtractEntries(wheelPath, lang, listType string, limit int) ([]model.Entry, error) {
	if wheelPath == "" {
		return nil, fmt.Errorf("wheel path is required")
	}
	lang = strings.ToLower(lang)
	if lang == "" {
		return nil, fmt.Errorf("unsupported language")
	}
	if listType == "" {
		return nil, fmt.Errorf("word list type is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	decoded, err := readEntries(wheelPath, lang, listType)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(decoded, func(i, j int) bool {
		return decoded[i].Freq > decoded[j].Freq
	})

	keep := wordlist.FilterForLang(lang)
	seen := make(map[string]struct{})
	entries := make([]model.Entry, 0, min(limit, len(decoded)))
	for _, entry := range decoded {
		if _, ok := seen[entry.Word]; ok {
			continue
		}
		if !isAlpha(entry.Word) || utf8.RuneCountInString(entry.Word) > 20 {
			continue
		}
		if !keep(entry.Word) {
			continue
		}
		seen[entry.Word] = struct{}{}
		entries = append(entries, entry)
		if len(entries) >= limit {
			break
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no words found for %s/%s", lang, listType)
	}
	return entries, nil
}

func readEntries(wheelPath, lang, listType string) ([]model.Entry, error) {
	reader, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	dataFile := selectDataFile(reader.File, lang, listType)
	if dataFile == nil {
		return nil, fmt.Errorf("no data file found for %s/%s", lang, listType)
	}
	rc, err := dataFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer func() {
		_ = rc.Close()
	}()

	var src io.Reader = rc
	if strings.HasSuffix(dataFile.Name, ".gz") {
		gz, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer func() {
			_ = gz.Close()
		}()
		src = gz
	}
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	root, _, err := msgp.ReadIntfBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode msgpack: %w", err)
	}
	return entriesFromBins(root)
}

// entriesFromBins decodes the "cB" layout: a header map followed by one list
// of words per centibel bin, bin i holding words with frequency 10^(-i/100).
func entriesFromBins(root interface{}) ([]model.Entry, error) {
	items, ok := root.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unsupported msgpack root type %T", root)
	}
	bins := items
	if len(items) > 0 {
		if header, ok := items[0].(map[string]interface{}); ok {
			if format, _ := header["format"].(string); format != "cB" {
				return nil, fmt.Errorf("unsupported wordfreq format %q", format)
			}
			bins = items[1:]
		}
	}
	var entries []model.Entry
	for i, bin := range bins {
		words, ok := toStringSlice(bin)
		if !ok {
			return nil, fmt.Errorf("unsupported bin %d of type %T", i, bin)
		}
		freq := perBillion * math.Pow(10, -float64(i)/100)
		for _, word := range words {
			entries = append(entries, model.Entry{Word: word, Freq: freq})
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("wordfreq data contained no entries")
	}
	return entries, nil
}

func toStringSlice(v interface{}) ([]string, bool) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case string:
			out = append(out, s)
		case []byte:
			if !utf8.Valid(s) {
				return nil, false
			}
			out = append(out, string(s))
		default:
			return nil, false
		}
	}
	return out, true
}

func selectDataFile(files []*zip.File, lang, listType string) *zip.File {
	for _, file := range files {
		fileLang, fileType := parseLanguageAndType(file.Name)
		if fileLang == lang && fileType == strings.ToLower(listType) {
			return file
		}
	}
	return nil
}

// LanguageTypes maps language codes to available list types.
type LanguageTypes map[string]map[string]struct{}

// ListLanguageTypes returns available languages and list types in the wheel.
func ListLanguageTypes(wheelPath string) (LanguageTypes, error) {
	if wheelPath == "" {
		return nil, fmt.Errorf("wheel path is required")
	}
	reader, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	langs := make(LanguageTypes)
	for _, file := range reader.File {
		lang, listType := parseLanguageAndType(file.Name)
		if lang == "" || listType == "" {
			continue
		}
		if _, ok := langs[lang]; !ok {
			langs[lang] = make(map[string]struct{})
		}
		langs[lang][listType] = struct{}{}
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("no languages found in wordfreq wheel")
	}
	return langs, nil
}

// LanguagesFromTypes returns sorted language codes from the map.
func LanguagesFromTypes(types LanguageTypes) []string {
	out := make([]string, 0, len(types))
	for lang := range types {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// SelectListType prefers the large list and falls back to the small one.
func SelectListType(available map[string]struct{}) (string, bool) {
	for _, candidate := range []string{"large", "small"} {
		if _, ok := available[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

func parseLanguageAndType(name string) (string, string) {
	name = strings.ToLower(name)
	if !strings.HasPrefix(name, "wordfreq/data/") {
		return "", ""
	}
	base := strings.TrimPrefix(name, "wordfreq/data/")
	if !strings.HasSuffix(base, ".msgpack.gz") && !strings.HasSuffix(base, ".msgpack") {
		return "", ""
	}
	base = strings.TrimSuffix(strings.TrimSuffix(base, ".gz"), ".msgpack")
	for _, listType := range []string{"large", "small"} {
		if lang, ok := strings.CutPrefix(base, listType+"_"); ok && lang != "" {
			return lang, listType
		}
	}
	return "", ""
}

func isAlpha(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return word != ""
}
