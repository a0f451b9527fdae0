package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Check  CheckCmd  `cmd:"" help:"Validate a report definition."`
	Render RenderCmd `cmd:"" help:"Render a statement from a definition and fact data."`
	Watch  WatchCmd  `cmd:"" help:"Re-render a statement whenever its inputs change."`
}
