package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archview/pkg/catalog"
	"github.com/matzehuels/archview/pkg/pipeline"
)

// renderCommand creates the render command for drawing a journey as SVG.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		env     string
		noCache bool
		req     pipeline.Request
	)

	cmd := &cobra.Command{
		Use:   "render <journey>",
		Short: "Render a journey as an SVG diagram",
		Long: `Render a journey as an SVG diagram coloured by the health of each system and
connection in the chosen environment.

The default engine draws the computed layout, so the diagram matches the
positions reported by 'layout'. --engine graphviz lets Graphviz draw the
graph itself.

Rendered diagrams are cached locally; the cache key covers the catalog
content, so edits always produce a fresh diagram.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Journey = args[0]
			req.Env = catalog.Env(env)
			return c.runRender(cmd.Context(), req, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <journey>.svg, - for stdout)")
	cmd.Flags().StringVarP(&env, "env", "e", "", "environment for health colours: dev, stage, prod (default prod)")
	cmd.Flags().StringSliceVarP(&req.Layers, "layer", "l", nil, "only show connections tagged with these layers")
	cmd.Flags().StringSliceVar(&req.Highlight, "highlight", nil, "system ids to emphasise")
	cmd.Flags().StringVar(&req.Engine, "engine", pipeline.DefaultEngine, "render engine: layout, graphviz")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, req pipeline.Request, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	svg, cached, err := runner.RenderWithCacheInfo(ctx, req)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	c.Logger.Debug("render finished", "cached", cached, "bytes", len(svg))

	if output == "-" {
		_, err := stdout.Write(svg)
		return err
	}
	if output == "" {
		output = outputName(req.Journey)
	}
	if err := os.WriteFile(output, svg, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	prog.done("rendered diagram", "journey", req.Journey, "cached", cached)

	printSuccess("Rendered %s", req.Journey)
	printFile(output)
	return nil
}

// outputName derives a file name from a journey id or path:
// "commerce/checkout/guest" becomes "commerce-checkout-guest.svg".
func outputName(journey string) string {
	name := strings.TrimSuffix(strings.TrimPrefix(journey, "journeys/"), catalog.JourneyFileSuffix)
	name = strings.NewReplacer("/", "-", "\\", "-", " ", "-").Replace(strings.Trim(name, "/"))
	if name == "" {
		name = catalog.AllJourneyID
	}
	return name + ".svg"
}
