package cli

import (
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"

	finstmterrors "github.com/finstmt/finstmt/errors"
	"github.com/finstmt/finstmt/loader"
	"github.com/finstmt/finstmt/report"
	"github.com/finstmt/finstmt/telemetry"
)

type CheckCmd struct {
	Definition FileOrStdin `help:"Report definition filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.Definition.EnsureContents(); err != nil {
		return err
	}

	var collector telemetry.Collector
	var checkTimer telemetry.Timer

	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		checkTimer = collector.Start(fmt.Sprintf("check %s", filepath.Base(cmd.Definition.Filename)))

		defer func() {
			checkTimer.End()
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr)
		}()
	}

	// Load without validation so decode errors and structural errors report
	// separately.
	def, err := cmd.Definition.LoadDefinition(loader.New())
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return fmt.Errorf("definition could not be loaded")
	}

	if err := report.Validate(def); err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, finstmterrors.NewTextFormatter().Format(err))
		printError(ctx.Stderr, "definition is invalid")
		return fmt.Errorf("definition is invalid")
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Definition %q is valid (%d variables, %d layout rows)",
		def.ReportID, len(def.Variables), len(def.Layout)))

	return nil
}
