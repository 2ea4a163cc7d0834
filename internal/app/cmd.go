package app

// Command selects the process mode.
type Command string

const (
	// CommandServe runs the API server.
	CommandServe Command = "serve"
	// CommandWorker runs the background worker.
	CommandWorker Command = "worker"
	// CommandMigrate applies pending database migrations.
	CommandMigrate Command = "migrate"
	// CommandHealthcheck probes the /health endpoint.
	// Used as the Docker healthcheck in distroless images.
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand picks the subcommand from the CLI arguments.
// No arguments, or an unknown command, means serve.
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "worker":
		return CommandWorker
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
