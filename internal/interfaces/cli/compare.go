package cli

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/MacroCompare/internal/application/comparison"
	"github.com/turtacn/MacroCompare/pkg/errors"
)

// stdinArg stands for standard input in file arguments.
const stdinArg = "-"

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare FILE1 FILE2",
		Short: "Score the similarity of two VBA macros",
		Long: "Compare two VBA macro files and report syntax, logical and overall similarity.\n" +
			"Use - for one of the files to read it from standard input.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == stdinArg && args[1] == stdinArg {
				return errors.InvalidParam("only one of the files may be read from stdin")
			}

			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			limit := cliCtx.Config.Engine.MaxInputBytes
			code1, err := readSource(cmd, args[0], limit)
			if err != nil {
				return err
			}
			code2, err := readSource(cmd, args[1], limit)
			if err != nil {
				return err
			}

			engine, err := cliCtx.Engine()
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.CommandContext(cmd.Context())
			defer cancel()

			result, err := engine.Compare(ctx, code1, code2)
			if err != nil {
				return err
			}
			return PrintResult(cmd, result, formatCompareText(result, cliCtx.Verbose))
		},
	}
	return cmd
}

// formatCompareText renders the score block and the analysis; verbose mode
// adds the common elements and differences.
func formatCompareText(r *comparison.ComparisonResult, verbose bool) string {
	if verbose {
		return comparison.FormatReport(r)
	}
	var sb strings.Builder
	sb.WriteString(comparison.FormatSummary(r))
	if r.DetailedAnalysis != "" {
		sb.WriteString("\nAnalysis:\n")
		sb.WriteString(r.DetailedAnalysis)
		sb.WriteString("\n")
	}
	return sb.String()
}

// readSource reads a macro from path, or from the command's stdin for "-".
// limit ≤ 0 disables the size check.
func readSource(cmd *cobra.Command, path string, limit int64) (string, error) {
	var r io.Reader
	if path == stdinArg {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeNotFound, "cannot open macro file").WithDetail(path)
		}
		defer f.Close()
		r = f
	}

	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "cannot read macro").WithDetail(path)
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", errors.Newf(errors.ErrCodeInputTooLarge, "macro exceeds %d bytes", limit).WithDetail(path)
	}
	return string(data), nil
}

//Personal.AI order the ending
