package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/MacroCompare/internal/application/comparison"
	"github.com/turtacn/MacroCompare/internal/intelligence/vba"
)

// NewFeaturesCmd creates the features command.
func NewFeaturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features FILE",
		Short: "Print the structural features of a VBA macro",
		Long:  "Extract the structural feature vector and heuristic purpose summary of one macro. Use - to read from standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			code, err := readSource(cmd, args[0], cliCtx.Config.Engine.MaxInputBytes)
			if err != nil {
				return err
			}

			engine, err := cliCtx.Engine()
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.CommandContext(cmd.Context())
			defer cancel()

			report, err := engine.Features(ctx, code)
			if err != nil {
				return err
			}
			return PrintResult(cmd, report, formatFeaturesText(report))
		},
	}
}

// formatFeaturesText lists the features in their canonical order followed
// by the compact summary.
func formatFeaturesText(r *comparison.FeatureReport) string {
	rows := make([][]string, 0, len(r.Features))
	seen := make(map[string]bool, len(vba.FeatureNames))
	for _, name := range vba.FeatureNames {
		if v, ok := r.Features[name]; ok {
			rows = append(rows, []string{name, strconv.FormatFloat(v, 'f', -1, 64)})
			seen[name] = true
		}
	}
	var extra []string
	for name := range r.Features {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		rows = append(rows, []string{name, strconv.FormatFloat(r.Features[name], 'f', -1, 64)})
	}

	var sb strings.Builder
	sb.WriteString(FormatTable([]string{"FEATURE", "VALUE"}, rows))
	fmt.Fprintf(&sb, "\nSummary: %s\n", r.Compact)
	return sb.String()
}

//Personal.AI order the ending
