package main

import (
	"fmt"
	"io"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/userkv/pkg/adapters/fs"
	"github.com/aretw0/userkv/pkg/core"
)

func newLoadCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "load <glob>...",
		Short: "Load user records",
		Long: `Load user records from every file matching the given patterns.
Patterns support ** to match across directories. Each line holds an id
followed by field/value pairs; lines without a pair are skipped.

With --watch, files matching the patterns are loaded again whenever they are
created or written, until interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expand(args)
			if err != nil {
				return fail("expanding patterns", err)
			}

			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			reports := make([]core.LoadReport, 0, len(files))
			for _, path := range files {
				report, err := svc.LoadUsers(cmd.Context(), path)
				if err != nil {
					return fail("loading users", err)
				}
				reports = append(reports, report)
			}
			if err := a.render(reports, func(w io.Writer) error {
				for _, r := range reports {
					if err := printReport(w, r); err != nil {
						return err
					}
				}
				return nil
			}); err != nil {
				return err
			}

			if watch {
				return a.watch(cmd, svc, args)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload files when they change")
	return cmd
}

// expand resolves every pattern to the files it matches. A pattern that
// matches nothing is an error.
func expand(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", p)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

func printReport(w io.Writer, r core.LoadReport) error {
	_, err := fmt.Fprintf(w, "%s: %d stored, %d skipped\n", r.Source, r.Stored, r.Skipped)
	return err
}

// watch reloads changed files until the command context ends. Reloads run
// one at a time on this goroutine.
func (a *app) watch(cmd *cobra.Command, svc *core.Service, patterns []string) error {
	ctx := cmd.Context()
	events, err := fs.Watch(ctx, fs.WatchConfig{
		Patterns: patterns,
		Logger:   a.logger,
	})
	if err != nil {
		return fail("watching files", err)
	}

	a.logger.Info("watching for changes", "patterns", patterns)
	for e := range events {
		a.logger.Debug("change detected", "event", e.String())
		report, err := svc.LoadUsers(ctx, e.Path)
		if err != nil {
			a.logger.Error("reload failed", "path", e.Path, "error", err)
			continue
		}
		a.logger.Info("reloaded", "path", e.Path, "stored", report.Stored, "skipped", report.Skipped)
		if a.format == formatText || a.format == "" {
			if err := printReport(a.stdout, report); err != nil {
				return err
			}
		}
	}
	return nil
}
