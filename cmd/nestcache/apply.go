package main

import (
	"github.com/aretw0/nestcache/internal/cli"
	"github.com/spf13/cobra"
)

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <script.yaml>...",
		Short: "Apply operation scripts to a fresh cache and print the result",
		Long: `Runs each script, in order, against one in-memory cache session and prints
the resulting tree to stdout. Logs and metrics go to stderr.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			logLevel, _ := cmd.Flags().GetString("log-level")
			output, _ := cmd.Flags().GetString("output")
			metrics, _ := cmd.Flags().GetBool("metrics")
			sessionID, _ := cmd.Flags().GetString("session")

			ctx := cli.WithInterrupt(cmd.Context())
			defer ctx.Stop()

			err := cli.Apply(ctx, cli.ApplyOptions{
				ConfigPath: configPath,
				Scripts:    args,
				SessionID:  sessionID,
				LogLevel:   logLevel,
				Output:     output,
				Metrics:    metrics,
				Stdout:     cmd.OutOrStdout(),
				Stderr:     cmd.ErrOrStderr(),
			})
			return ctx.Annotate(err)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output format: tree, json, yaml, markdown (overrides config)")
	cmd.Flags().Bool("metrics", false, "Dump Prometheus metrics to stderr after applying")
	cmd.Flags().String("session", "", "Session ID (a random one is generated if empty)")
	return cmd
}
