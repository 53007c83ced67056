package corpus

import (
	"context"
	"fmt"
	"sync"

	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/store"
	"github.com/verte-zerg/orthostat/internal/wordfreq"
	"github.com/verte-zerg/orthostat/internal/wordlist"
)

// Provider supplies the corpus to estimators.
type Provider interface {
	Corpus(ctx context.Context) (*Corpus, error)
}

// LoadFunc fetches raw entries from some source.
type LoadFunc func(ctx context.Context) ([]model.Entry, error)

// Lazy loads its corpus on first use and serves the same value afterwards.
// It is safe for concurrent use.
type Lazy struct {
	load   LoadFunc
	once   sync.Once
	corpus *Corpus
	err    error
}

// NewLazy returns a provider backed by load.
func NewLazy(load LoadFunc) *Lazy {
	return &Lazy{load: load}
}

// Corpus implements Provider. A failed load is not retried.
func (l *Lazy) Corpus(ctx context.Context) (*Corpus, error) {
	l.once.Do(func() {
		entries, err := l.load(ctx)
		if err != nil {
			l.err = err
			return
		}
		l.corpus = New(entries)
		if l.corpus.Len() == 0 {
			l.err = fmt.Errorf("corpus is empty")
		}
	})
	return l.corpus, l.err
}

// FileSource loads a frequency list file, keeping words that pass the
// language filter.
func FileSource(path, lang string) LoadFunc {
	return func(context.Context) ([]model.Entry, error) {
		entries, err := wordlist.LoadEntries(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load corpus %s: %w", path, err)
		}
		return filterEntries(entries, lang), nil
	}
}

// WordfreqSource downloads (or reuses) the wordfreq wheel in cacheDir and
// extracts up to size entries for lang.
func WordfreqSource(cacheDir, lang string, size int) LoadFunc {
	return func(ctx context.Context) ([]model.Entry, error) {
		wheel, err := wordfreq.DownloadLatestWheel(ctx, cacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to download wordfreq wheel: %w", err)
		}
		types, err := wordfreq.ListLanguageTypes(wheel.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to list languages: %w", err)
		}
		listType, ok := wordfreq.SelectListType(types[lang])
		if !ok {
			return nil, fmt.Errorf("no word list available for %s", lang)
		}
		return wordfreq.ExtractEntries(wheel.Path, lang, listType, size)
	}
}

// StoreSource loads a corpus previously imported into the store.
func StoreSource(st *store.Store, name string) LoadFunc {
	return func(ctx context.Context) ([]model.Entry, error) {
		entries, err := st.LoadCorpus(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load corpus %q: %w", name, err)
		}
		return entries, nil
	}
}

func filterEntries(entries []model.Entry, lang string) []model.Entry {
	return wordlist.Filter(entries, func(e model.Entry) string { return e.Word }, wordlist.FilterForLang(lang))
}
