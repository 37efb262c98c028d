package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/MacroCompare/internal/application/comparison"
)

// NewExplainCmd creates the explain command.
func NewExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain FILE",
		Short: "Describe what a VBA macro does",
		Long:  "Ask the language model for a short description of one macro. Use - to read from standard input.",
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

			result, err := engine.Explain(ctx, code)
			if err != nil {
				return err
			}
			return PrintResult(cmd, result, formatExplainText(result))
		},
	}
}

func formatExplainText(r *comparison.ExplainResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Summary: %s\n\n", r.Summary)
	sb.WriteString(r.Explanation)
	sb.WriteString("\n")
	return sb.String()
}

//Personal.AI order the ending
