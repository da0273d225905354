// Package main is the entry point for the rv command-line tool.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"github.com/spf13/pflag"

	"go.rv.dev/rv/cmd/rv/commands"
	"go.rv.dev/rv/internal/adapters/logger"
	"go.rv.dev/rv/internal/app"
	_ "go.rv.dev/rv/internal/wiring"
)

// componentProvider returns the resolved application components.
type componentProvider func(context.Context) (*app.Components, error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, err
	}))
}

func run(ctx context.Context, args []string, stderr io.Writer, provider componentProvider) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, err := provider(ctx)
	if err != nil {
		// The logger isn't available yet if the dependency graph itself
		// failed to build.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}

	if l, ok := components.Logger.(*logger.Logger); ok {
		l.SetJSON(peekJSONFlag(args))
	}

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return 1
	}
	return 0
}

// peekJSONFlag scans args for the global --json flag ahead of cobra's own
// parsing, so the logger can be put into JSON mode before any command runs.
// Unknown flags and positional args are ignored; a malformed --json value
// simply leaves JSON mode off.
func peekJSONFlag(args []string) bool {
	fs := pflag.NewFlagSet("rv-json-peek", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist = pflag.ParseErrorsWhitelist{UnknownFlags: true}
	fs.Usage = func() {}

	asJSON := fs.Bool("json", false, "")
	_ = fs.Parse(args)
	return *asJSON
}
