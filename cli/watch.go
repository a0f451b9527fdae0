package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/finstmt/finstmt/loader"
	"github.com/finstmt/finstmt/output"
	"github.com/finstmt/finstmt/report"
)

type WatchCmd struct {
	Definition string `help:"Report definition filename." arg:"" type:"existingfile"`
	Facts      string `help:"CSV fact table filename." arg:"" type:"existingfile"`

	periodFlags
}

func (cmd *WatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: ctx.Stderr}).With().Timestamp().Logger()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	definitionFile, err := filepath.Abs(cmd.Definition)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	factsFile, err := filepath.Abs(cmd.Facts)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, file := range []string{definitionFile, factsFile} {
		if err := watcher.Add(file); err != nil {
			return fmt.Errorf("failed to watch %s: %w", file, err)
		}
	}

	// One renderer for the whole session so parsed formulas are reused
	// across re-renders.
	renderer := report.NewRenderer()
	ldr := loader.New()

	render := func() {
		started := time.Now()

		def, err := ldr.LoadDefinition(definitionFile)
		if err != nil {
			logger.Error().Err(err).Msg("failed to load definition")
			return
		}
		facts, err := ldr.LoadFacts(factsFile)
		if err != nil {
			logger.Error().Err(err).Msg("failed to load facts")
			return
		}

		statement, err := renderer.RenderStatement(runCtx, def, facts, cmd.options(facts))
		if err != nil {
			logger.Error().Err(err).Str("report", def.ReportID).Msg("render failed")
			return
		}

		if err := (&output.TableRenderer{}).Render(ctx.Stdout, statement); err != nil {
			logger.Error().Err(err).Msg("failed to write statement")
			return
		}

		logger.Info().
			Str("report", statement.Metadata.ReportID).
			Int("rows", len(statement.Rows)).
			Dur("took", time.Since(started)).
			Msg("rendered")
	}

	printInfof(ctx.Stdout, "Watching %s", pathStyle.Render(definitionFile))
	printInfof(ctx.Stdout, "Watching %s", pathStyle.Render(factsFile))

	render()

	// Debounce timer - editors often write files in multiple steps
	const debounceDelay = 100 * time.Millisecond
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-runCtx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// React to write/create/remove/rename events
			// (Remove/Rename are common in atomic saves)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("change detected")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				// Re-add in case the file was replaced by an atomic save.
				_ = watcher.Add(definitionFile)
				_ = watcher.Add(factsFile)
				render()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("file watcher error")
		}
	}
}
