// Package wordlist loads frequency lists from text files.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/orthostat/internal/model"
)

// LoadEntries reads a frequency list from path. See ParseEntries for the format.
func LoadEntries(path string) ([]model.Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return ParseEntries(file)
}

// ParseEntries reads one entry per line. A line is either "word freq",
// "freq word" (tab or space separated) or a bare word. Bare words get a
// Zipf weight of 1/rank, so plain frequency-ordered lists still work.
// Blank lines and lines starting with '#' are skipped.
func ParseEntries(r io.Reader) ([]model.Entry, error) {
	var entries []model.Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch len(fields) {
		case 1:
			rank := len(entries) + 1
			entries = append(entries, model.Entry{Word: fields[0], Freq: 1 / float64(rank)})
		case 2:
			entry, err := parsePair(fields[0], fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			entries = append(entries, entry)
		default:
			return nil, fmt.Errorf("line %d: expected word and frequency, got %d fields", lineNo, len(fields))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return entries, nil
}

func parsePair(a, b string) (model.Entry, error) {
	if freq, err := strconv.ParseFloat(b, 64); err == nil {
		return checkFreq(model.Entry{Word: a, Freq: freq})
	}
	if freq, err := strconv.ParseFloat(a, 64); err == nil {
		return checkFreq(model.Entry{Word: b, Freq: freq})
	}
	return model.Entry{}, fmt.Errorf("no numeric frequency in %q %q", a, b)
}

func checkFreq(e model.Entry) (model.Entry, error) {
	if e.Freq < 0 {
		return model.Entry{}, fmt.Errorf("negative frequency for %q", e.Word)
	}
	return e, nil
}

// WriteEntries writes entries as "word<TAB>freq" lines.
func WriteEntries(w io.Writer, entries []model.Entry) error {
	writer := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(writer, "%s\t%s\n", e.Word, strconv.FormatFloat(e.Freq, 'g', -1, 64)); err != nil {
			return fmt.Errorf("failed to write word list: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush word list: %w", err)
	}
	return nil
}
