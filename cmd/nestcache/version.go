package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/nestcache"
	"github.com/aretw0/nestcache/internal/presentation"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of nestcache",
		Run: func(cmd *cobra.Command, args []string) {
			version := strings.TrimSpace(nestcache.Version)
			if short, _ := cmd.Flags().GetBool("short"); short {
				fmt.Fprintln(cmd.OutOrStdout(), version)
				return
			}
			presentation.PrintBanner(cmd.OutOrStdout(), version)
		},
	}
	cmd.Flags().Bool("short", false, "Print only the version")
	return cmd
}
