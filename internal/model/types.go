// Package model defines shared data structures.
package model

import "time"

// Entry is one corpus row: a word and its frequency weight.
type Entry struct {
	Freq float64
	Word string
}

// AnalysisConfig defines the corpus windows and sweep settings.
type AnalysisConfig struct {
	IgnoreN    int
	ConsiderN  int
	AssumeOneN int
	TopN       int
	Workers    int
	CacheSize  int
}

// CorpusInfo summarizes a corpus imported into the store.
type CorpusInfo struct {
	Name       string
	Source     string
	Entries    int
	TotalFreq  float64
	ImportedAt time.Time
}

// RunRecord describes a completed sweep run.
type RunRecord struct {
	ID         string
	Kind       string
	Corpus     string
	RulesPath  string
	Baseline   float64
	StartedAt  time.Time
	EndedAt    time.Time
	Candidates int
}

// RunResult is one ranked candidate of a sweep run.
type RunResult struct {
	Rank        int
	Candidate   string
	Score       float64
	FailureRate float64
	Words       []string
}

// ReportConfig selects which stored runs a report covers.
type ReportConfig struct {
	Kind  string
	Last  int
	RunID string
	Limit int
}
