package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/archview/pkg/errors"
	"github.com/matzehuels/archview/pkg/store"
)

// watchDebounce batches the burst of events an editor produces on save.
const watchDebounce = 300 * time.Millisecond

// validateCommand creates the validate command that checks a data root.
func (c *CLI) validateCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the catalog files under the data root",
		Long: `Check systems.json, connections.json and every journeys/**/*.journey.json
against the schema and report dangling references.

With --watch the check re-runs whenever a file under the data root changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := c.config().Store.DataRoot
			if !watch {
				return c.runValidate(cmd.Context(), root)
			}
			return c.watchValidate(cmd.Context(), root)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-run the check when files change")
	return cmd
}

// runValidate checks root once and prints the report. It returns an error
// when any file failed to load.
func (c *CLI) runValidate(ctx context.Context, root string) error {
	report := store.Check(ctx, root)
	printReport(report)
	if report.Missing {
		return errs.New(errs.ErrCodeNotFound, "data root %s does not exist", root)
	}
	if !report.OK() {
		return errs.New(errs.ErrCodeInvalidInput, "catalog at %s is invalid", root)
	}
	return nil
}

func printReport(r store.Report) {
	if r.Missing {
		printError("Data root %s does not exist", r.Root)
		printNextStep("Create a sample catalog", appName+" seed --data "+r.Root)
		return
	}

	printInfo("Checking %s", r.Root)
	for _, f := range r.Files {
		if f.Err != nil {
			printError("%s: %s", f.Name, errs.UserMessage(f.Err))
			continue
		}
		printSuccess("%s %s", f.Name, StyleDim.Render(countLabel(f.Count)))
	}
	for _, w := range r.Warnings {
		printWarning("%s", w)
	}
}

func countLabel(n int) string {
	if n == 1 {
		return "(1 record)"
	}
	return fmt.Sprintf("(%d records)", n)
}

// watchValidate runs the check, then again after every debounced batch of
// changes under root until ctx is canceled.
func (c *CLI) watchValidate(ctx context.Context, root string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "create file watcher")
	}
	defer w.Close()

	if err := addWatchTree(w, root); err != nil {
		return err
	}

	run := func() {
		if err := c.runValidate(ctx, root); err != nil {
			c.Logger.Warn("validation failed", "error", errs.UserMessage(err))
		}
		printDetail("watching %s (ctrl+c to stop)", root)
	}
	run()
	return c.watchLoop(ctx, w, watchDebounce, run)
}

// addWatchTree watches root and every directory below it. fsnotify is not
// recursive, so new directories are added as they appear.
func addWatchTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// watchLoop calls run once per burst of filesystem events.
func (c *CLI) watchLoop(ctx context.Context, w *fsnotify.Watcher, debounce time.Duration, run func()) error {
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addWatchTree(w, event.Name); err != nil {
						c.Logger.Warn("cannot watch directory", "path", event.Name, "error", err)
					}
				}
			}
			c.Logger.Debug("file changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			run()
		}
	}
}
