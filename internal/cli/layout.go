package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archview/pkg/catalog"
	"github.com/matzehuels/archview/pkg/pipeline"
)

// layoutCommand creates the layout command for computing a view's layout.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		env    string
		asJSON bool
		req    pipeline.Request
	)

	cmd := &cobra.Command{
		Use:   "layout <journey>",
		Short: "Compute the layout of a journey",
		Long: `Compute the layout of a journey and print a summary of the visible systems.

<journey> is a journey id or path, or "all" for the consolidated view of
every journey. The layered Graphviz layout is used when available; otherwise
systems are placed on a grid.

With --json (or -o) the layout is written as JSON instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Journey = args[0]
			req.Env = catalog.Env(env)
			if asJSON && output == "" {
				output = "-"
			}
			return c.runLayout(cmd.Context(), req, output, false)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the layout as JSON to this file (- for stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().StringSliceVarP(&req.Layers, "layer", "l", nil, "only show connections tagged with these layers")
	cmd.Flags().StringVarP(&env, "env", "e", "", "environment for health colours: dev, stage, prod (default prod)")

	return cmd
}

// runLayout computes the view described by req. An empty output prints a
// summary table; "-" writes JSON to stdout; anything else is a file path.
func (c *CLI) runLayout(ctx context.Context, req pipeline.Request, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	view, err := runner.View(ctx, req)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" {
		printView(view, envOrDefault(req.Env))
		printStats(len(view.Systems), len(view.Connections), view.Layout.Strategy, false)
		return nil
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if output == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(view.Systems), len(view.Connections), view.Layout.Strategy, false)
	printNewline()
	printNextStep("Render", appName+" render "+req.Journey)
	return nil
}

func envOrDefault(env catalog.Env) catalog.Env {
	if env == "" {
		return catalog.DefaultEnv
	}
	return env
}
