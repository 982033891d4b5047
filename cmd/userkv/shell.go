package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const historyFile = ".userkv_history"

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively over one connection",
		Long: `Start a prompt that accepts the other userkv commands without the program
name, e.g. "user 1" or "top -n 5". The connection is opened once with the
flags given to shell. Type "exit" or press Ctrl-D to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			a.inShell = true
			defer func() {
				a.inShell = false
				a.svc = nil
				_ = svc.Close()
			}()

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)

			history := historyPath()
			if history != "" {
				if f, err := os.Open(history); err == nil {
					_, _ = line.ReadHistory(f)
					f.Close()
				}
			}

			ctx := cmd.Context()
			for ctx.Err() == nil {
				input, err := line.Prompt("userkv> ")
				if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return fail("reading input", err)
				}
				if strings.TrimSpace(input) == "" {
					continue
				}
				line.AppendHistory(input)

				if quit := a.runShellLine(ctx, input); quit {
					break
				}
			}

			if history != "" {
				var buf bytes.Buffer
				if _, err := line.WriteHistory(&buf); err == nil {
					if err := atomic.WriteFile(history, &buf); err != nil {
						a.logger.Debug("history not saved", "path", history, "error", err)
					}
				}
			}
			return nil
		},
	}
}

// runShellLine executes one prompt line against a fresh command tree that
// shares the open service. It reports whether the shell should exit.
func (a *app) runShellLine(ctx context.Context, input string) bool {
	args, err := shellquote.Split(input)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error parsing input: %v\n", err)
		return false
	}
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "exit", "quit":
		return true
	case "shell":
		fmt.Fprintln(a.stderr, "Error: already in a shell")
		return false
	}

	sub := a.clone()
	sub.inShell = true
	root := newRootCmd(sub)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		a.printError(err)
	}
	return false
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}
