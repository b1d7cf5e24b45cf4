package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vgmimport/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the manifest, archives, and output directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("Configuration", colorize)
			if ctx.configExists {
				lines = append(lines, renderStatusLine("Config file", statusInfo, ctx.configPath, colorize))
			} else {
				lines = append(lines, renderStatusLine("Config file", statusWarn, ctx.configPath+" not found; defaults used", colorize))
			}
			lines = append(lines, renderStatusLine("Max games", statusInfo, maxGamesLabel(cfg.Import.MaxGames), colorize))
			lines = append(lines, "")

			results := preflight.RunAll(cfg)
			lines = append(lines, renderSectionHeader("Preflight", colorize)...)
			lines = append(lines, checkLines(results, colorize)...)
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}
}

func maxGamesLabel(n int) string {
	if n == 0 {
		return "all"
	}
	return fmt.Sprintf("%d", n)
}
