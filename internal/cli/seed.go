package cli

import (
	"context"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/archview/pkg/errors"
	"github.com/matzehuels/archview/pkg/store"
)

// seedCommand creates the seed command that installs the sample catalog.
func (c *CLI) seedCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Install the sample e-commerce catalog",
		Long: `Install a sample catalog of seven systems, six connections and three journeys
into the configured store. An existing catalog is only replaced with --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSeed(cmd.Context(), force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing catalog")
	return cmd
}

func (c *CLI) runSeed(ctx context.Context, force bool) error {
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	imp, ok := s.(store.Importer)
	if !ok {
		return errs.New(errs.ErrCodeUnsupported, "store backend %q cannot be seeded", c.config().Store.Backend)
	}

	existing, err := s.Systems(ctx)
	if err != nil && !force {
		return err
	}
	if len(existing) > 0 && !force {
		return errs.New(errs.ErrCodeInvalidInput, "store already holds %d systems; use --force to replace them", len(existing))
	}

	prog := newProgress(c.Logger)
	sample := store.Sample()
	if err := imp.Import(ctx, sample); err != nil {
		return err
	}
	prog.done("seeded catalog", "backend", c.config().Store.Backend)

	printSuccess("Seeded sample catalog")
	printDetail("%d systems, %d connections, %d journeys", len(sample.Systems), len(sample.Connections), len(sample.Journeys))
	if fs, ok := s.(*store.FileStore); ok {
		printFile(fs.Root())
	}
	printNewline()
	printNextStep("Browse journeys", appName+" journeys --pick")
	return nil
}
