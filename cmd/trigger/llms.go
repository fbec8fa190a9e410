package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hn-digest/trigger/internal/llmstxt"
	"github.com/hn-digest/trigger/internal/logging"
	"github.com/spf13/cobra"
)

type llmsOptions struct {
	dir     string
	out     string
	add     string
	dryRun  bool
	quiet   bool
	verbose int
}

// newLlmsCmd maintains llms.txt from the published digests. It needs no
// GitHub configuration, so it replaces the root pre-run.
func newLlmsCmd() *cobra.Command {
	o := &llmsOptions{}
	cmd := &cobra.Command{
		Use:   "llms",
		Short: "Regenerate llms.txt from digest files, or add a single digest to it",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(logging.New(o.level(), "text"))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.add != "" {
				return o.runAdd()
			}
			return o.runGenerate(cmd)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.dir, "dir", "digests", "directory scanned recursively for digest *.md files")
	f.StringVar(&o.out, "out", "llms.txt", "llms.txt path")
	f.StringVar(&o.add, "add", "", "add a single digest file to an existing llms.txt")
	f.BoolVarP(&o.dryRun, "dry-run", "n", false, "print the result instead of writing")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "only log warnings and errors")
	f.CountVarP(&o.verbose, "verbose", "v", "increase verbosity")
	return cmd
}

func (o *llmsOptions) level() string {
	l := slog.LevelInfo
	if o.quiet {
		l = slog.LevelWarn
	}
	l -= slog.Level(4 * o.verbose)
	if l < slog.LevelDebug {
		l = slog.LevelDebug
	}
	return l.String()
}

func (o *llmsOptions) runAdd() error {
	if _, err := os.Stat(o.add); err != nil {
		return fmt.Errorf("digest not found: %w", err)
	}
	d, err := llmstxt.ParseFile(o.add)
	if err != nil {
		return err
	}
	if o.dryRun {
		slog.Info("would add", "date", d.Date, "time", d.Time, "topics", d.Topics)
		return nil
	}

	content, err := os.ReadFile(o.out)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s not found, run without --add first", o.out)
	}
	if err != nil {
		return err
	}
	updated, err := llmstxt.Insert(string(content), *d)
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.out, []byte(updated), 0o644); err != nil {
		return err
	}
	slog.Info("added digest", "date", d.Date, "time", d.Time, "out", o.out)
	return nil
}

func (o *llmsOptions) runGenerate(cmd *cobra.Command) error {
	digests, err := llmstxt.Scan(o.dir)
	if err != nil {
		return err
	}
	if len(digests) == 0 {
		return fmt.Errorf("no digests found in %s", o.dir)
	}
	out := llmstxt.Generate(digests)
	if o.dryRun {
		_, err := fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	if err := os.WriteFile(o.out, []byte(out), 0o644); err != nil {
		return err
	}
	slog.Info("wrote llms.txt", "out", o.out, "digests", len(digests))
	return nil
}
