package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/canvas-graph/internal/config"
	"github.com/Sternrassler/canvas-graph/pkg/logging"
	"github.com/Sternrassler/canvas-graph/pkg/metrics"
)

var version = "dev"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath  string
	server      string
	apiToken    string
	verbose     int
	pretty      bool
	timeout     time.Duration
	rate        float64
	perPage     int
	metricsFile string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &globalOptions{}
	rootCmd := newRootCommand(opts)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)

	if opts.metricsFile != "" {
		if mErr := metrics.WriteTextfile(opts.metricsFile); mErr != nil {
			fmt.Fprintf(stderr, "Error: %v\n", mErr)
		}
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return mapErrorToExitCode(err)
	}
	return exitOK
}

func newRootCommand(opts *globalOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Read courses and enrollments from a Canvas LMS instance",
		Long: `canvas-graph reads courses and their enrollments from the Canvas REST API
and writes them as newline-delimited JSON.

Servers and their tokens are configured in a YAML file (default
~/.config/canvas-graph/config.yaml, or $CANVAS_GRAPH_CONFIG):

  default_server: school
  servers:
    school:
      host_url: https://canvas.example.edu
      token_eval: pass show canvas/school

The token is taken from --api-token, then $CANVAS_API_TOKEN, then the
output of the server's token_eval shell command.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Setup(logging.Config{
				Level:  logging.LevelFromVerbosity(opts.verbose),
				Pretty: opts.pretty,
				Output: cmd.ErrOrStderr(),
			})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file path (default: $CANVAS_GRAPH_CONFIG or ~/.config/canvas-graph/config.yaml)")
	flags.StringVarP(&opts.server, "server", "s", config.DefaultServerName, "Configured server to use")
	flags.StringVarP(&opts.apiToken, "api-token", "a", "", "Canvas API token (overrides $CANVAS_API_TOKEN and token_eval)")
	flags.CountVarP(&opts.verbose, "verbose", "v", "Increase log verbosity (-v warn, -vv info, -vvv debug, -vvvv trace)")
	flags.BoolVar(&opts.pretty, "pretty", false, "Human-readable console logs instead of JSON")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Per-request HTTP timeout (0 disables)")
	flags.Float64Var(&opts.rate, "rate", 0, "Client-side request pacing in requests per second (0 disables)")
	flags.IntVar(&opts.perPage, "per-page", 0, "per_page sent with list requests (0 keeps the server default)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file on exit")

	rootCmd.AddCommand(newCoursesCommand(opts))
	rootCmd.AddCommand(newEnrollmentsCommand(opts))

	return rootCmd
}
