package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	finstmterrors "github.com/finstmt/finstmt/errors"
	"github.com/finstmt/finstmt/facttable"
	"github.com/finstmt/finstmt/loader"
	"github.com/finstmt/finstmt/output"
	"github.com/finstmt/finstmt/period"
	"github.com/finstmt/finstmt/report"
	"github.com/finstmt/finstmt/telemetry"
)

// periodFlags selects the reporting periods; shared by render and watch.
type periodFlags struct {
	Years   []int `help:"Comparison years; defaults to the two most recent years in the facts."`
	Periods []int `help:"Periods within the selected years; defaults to all."`
	LTM     bool  `help:"Render a rolling last-twelve-months window." name:"ltm"`
	Window  int   `help:"Rolling window length in periods." default:"12"`
}

// options derives the period options, defaulting the comparison years to the
// two most recent years present in the facts.
func (f periodFlags) options(facts *facttable.Table) period.Options {
	if f.LTM {
		return period.Options{LTM: true, Window: f.Window}
	}

	years := f.Years
	if len(years) == 0 {
		years = facts.Years()
		if len(years) > 2 {
			years = years[len(years)-2:]
		}
	}

	periods := period.AllPeriods()
	if len(f.Periods) > 0 {
		periods = period.PeriodList(f.Periods...)
	}

	return period.Options{Years: years, Periods: periods}
}

type RenderCmd struct {
	Definition FileOrStdin `help:"Report definition filename (use '-' for stdin)." arg:""`
	Facts      string      `help:"CSV fact table filename." arg:"" type:"existingfile"`

	periodFlags

	JSON   bool   `help:"Emit the computed statement as JSON."`
	Output string `help:"Write the rendered statement to a file instead of stdout." short:"o" type:"path"`
	Force  bool   `help:"Overwrite the output file without confirmation." short:"f"`
}

func (cmd *RenderCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx := context.Background()

	var collector telemetry.Collector

	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		defer func() {
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr)
		}()
	}

	ldr := loader.New()

	def, err := cmd.Definition.LoadDefinition(ldr)
	if err != nil {
		return err
	}

	facts, err := ldr.LoadFacts(cmd.Facts)
	if err != nil {
		return err
	}

	statement, err := report.NewRenderer().RenderStatement(runCtx, def, facts, cmd.options(facts))
	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, finstmterrors.NewTextFormatter().Format(err))
		printError(ctx.Stderr, "render failed")
		return fmt.Errorf("render failed")
	}

	var buf bytes.Buffer
	if cmd.JSON {
		encoded, err := json.MarshalIndent(statement, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode statement: %w", err)
		}
		buf.Write(encoded)
		buf.WriteByte('\n')
	} else {
		renderer := &output.TableRenderer{}
		if cmd.Output == "" {
			renderer = output.NewTableRenderer()
		}
		if err := renderer.Render(&buf, statement); err != nil {
			return err
		}
	}

	if cmd.Output == "" {
		_, err := ctx.Stdout.Write(buf.Bytes())
		return err
	}

	outputFile, err := filepath.Abs(cmd.Output)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if _, err := os.Stat(outputFile); err == nil && !cmd.Force {
		confirmed, err := promptYesNo(fmt.Sprintf("File %q already exists. Overwrite it?", outputFile))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !confirmed {
			return fmt.Errorf("file already exists: %s", outputFile)
		}
	}

	if err := os.WriteFile(outputFile, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Wrote statement to %s", pathStyle.Render(outputFile)))

	return nil
}
