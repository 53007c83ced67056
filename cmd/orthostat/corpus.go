package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/orthostat/internal/config"
	"github.com/verte-zerg/orthostat/internal/corpus"
	"github.com/verte-zerg/orthostat/internal/stats"
)

func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage imported corpora",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import NAME",
		Short: "Import a corpus from --corpus-file or wordfreq (--lang, --size)",
		Args:  cobra.ExactArgs(1),
		RunE:  withEnv(runCorpusImportCmd),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List imported corpora",
		Args:  cobra.NoArgs,
		RunE:  runCorpusListCmd,
	})
	return cmd
}

func runCorpusImportCmd(cmd *cobra.Command, args []string, e *env) error {
	name := args[0]
	source := corpusFile
	load := corpus.FileSource(corpusFile, corpusLang)
	if corpusFile == "" {
		if corpusSize <= 0 {
			return fmt.Errorf("--size must be > 0")
		}
		source = fmt.Sprintf("wordfreq:%s:%d", corpusLang, corpusSize)
		load = corpus.WordfreqSource(config.DefaultWordfreqCacheDir(), corpusLang, corpusSize)
		logErrf("Fetching wordfreq %s list...\n", corpusLang)
	}
	ctx := cmd.Context()
	c, err := corpus.NewLazy(load).Corpus(ctx)
	if err != nil {
		return err
	}
	st, err := e.store()
	if err != nil {
		return err
	}
	if err := st.ImportCorpus(ctx, name, source, c.Entries()); err != nil {
		return fmt.Errorf("failed to import corpus: %w", err)
	}
	e.logger.Info("corpus imported", zap.String("name", name), zap.String("source", source), zap.Int("entries", c.Len()))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words into %q\n", c.Len(), name)
	return err
}

func runCorpusListCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	infos, err := st.ListCorpora(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list corpora: %w", err)
	}
	return stats.RenderCorpora(cmd.OutOrStdout(), infos, time.Now())
}
