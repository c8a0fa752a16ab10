package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	dxfDir     string
	jsonOutput bool
	timeout    string
)

var projectCmd = &cobra.Command{
	Use:   "project <script>",
	Short: "Evaluate a projection script and print the resulting polylines",
	Long: `Evaluate a planproj script and print every polyline it projects.
Vertices are printed in the plane-local coordinates of each polyline.

Examples:
  planproj project examples/bracket.planproj
  planproj project --json examples/bracket.planproj
  planproj project --dxf out/ examples/bracket.planproj`,
	Args: cobra.ExactArgs(1),
	RunE: runProject,
}

func init() {
	rootCmd.AddCommand(projectCmd)

	projectCmd.Flags().StringVar(&dxfDir, "dxf", "",
		"write each polyline to <dir>/<name>.dxf")
	projectCmd.Flags().BoolVar(&jsonOutput, "json", false,
		"print the result as JSON")
	projectCmd.Flags().StringVar(&timeout, "timeout", "",
		"evaluation time limit (overrides PLANPROJ_EVAL_TIMEOUT)")
}

func runProject(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	c := cfg
	if timeout != "" {
		if c.EvalTimeout, err = parseDuration(timeout); err != nil {
			return err
		}
	}

	app := NewApp(c)
	result := app.Evaluate(string(source))

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printResult(out, result)
	}

	if len(result.Errors) > 0 {
		return errors.New("evaluation failed")
	}

	if dxfDir != "" {
		if err := os.MkdirAll(dxfDir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dxfDir, err)
		}
		paths, err := app.ExportDXF(dxfDir, result)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", p)
		}
	}
	return nil
}

func printResult(w io.Writer, result EvalResult) {
	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "error: %s\n", e.Message)
		}
	}
	for _, p := range result.Polylines {
		state := "open"
		if p.Closed {
			state = "closed"
		}
		fmt.Fprintf(w, "%s: %d vertices, %s, normal (%g, %g, %g), elevation %g, length %g\n",
			p.Name, len(p.Vertices), state, p.Normal[0], p.Normal[1], p.Normal[2], p.Elevation, p.Length)
		for i, v := range p.Vertices {
			if v.Bulge != 0 {
				fmt.Fprintf(w, "  %d: (%g, %g) bulge %g\n", i, v.X, v.Y, v.Bulge)
			} else {
				fmt.Fprintf(w, "  %d: (%g, %g)\n", i, v.X, v.Y)
			}
		}
	}
}
