package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archview/pkg/catalog"
	"github.com/matzehuels/archview/pkg/pipeline"
)

// journeysCommand creates the journeys command that lists or picks journeys.
func (c *CLI) journeysCommand() *cobra.Command {
	var (
		pick  bool
		query string
	)

	cmd := &cobra.Command{
		Use:   "journeys",
		Short: "List journeys grouped by domain",
		Long: `List the journeys in the catalog, grouped by the first segment of their id.

With --pick an interactive list opens; the chosen journey is laid out and
summarised.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pick {
				return c.runPickJourney(cmd.Context(), query)
			}
			return c.runListJourneys(cmd.Context(), query)
		},
	}

	cmd.Flags().BoolVarP(&pick, "pick", "p", false, "choose a journey interactively")
	cmd.Flags().StringVarP(&query, "query", "q", "", "only show journeys whose name or tags match")
	return cmd
}

func (c *CLI) loadJourneyItems(ctx context.Context, query string) ([]catalog.JourneyListItem, error) {
	s, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	entries, err := s.Journeys(ctx)
	if err != nil {
		return nil, err
	}
	snap := pipeline.Snapshot{Journeys: entries}
	items := make([]catalog.JourneyListItem, 0, len(entries))
	for _, item := range snap.ListItems() {
		if catalog.MatchJourney(item, query) {
			items = append(items, item)
		}
	}
	return items, nil
}

func (c *CLI) runListJourneys(ctx context.Context, query string) error {
	items, err := c.loadJourneyItems(ctx, query)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		printInfo("No journeys found")
		return nil
	}

	for _, g := range catalog.GroupJourneys(items) {
		fmt.Fprintln(stdout, StyleTitle.Render(g.Name))
		for _, j := range g.Journeys {
			line := fmt.Sprintf("  %s %s", StyleValue.Render(j.DisplayName()), StyleDim.Render(j.ID))
			if len(j.Tags) > 0 {
				line += " " + StyleHighlight.Render("#"+strings.Join(j.Tags, " #"))
			}
			fmt.Fprintln(stdout, line)
		}
	}
	printNewline()
	printNextStep("Render one", appName+" render "+items[0].ID)
	return nil
}

func (c *CLI) runPickJourney(ctx context.Context, query string) error {
	items, err := c.loadJourneyItems(ctx, query)
	if err != nil {
		return err
	}

	model := NewJourneyListModel(items)
	model.Filter = query
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	picked := final.(JourneyListModel).Selected
	if picked == nil {
		return nil
	}

	return c.runLayout(ctx, pipeline.Request{Journey: picked.ID}, "", false)
}

// printView summarises a laid-out view: the journey header, one row per
// system with its health and position, and the dangling connections.
func printView(v *pipeline.ViewResult, env catalog.Env) {
	if v.Journey != nil {
		fmt.Fprintln(stdout, StyleTitle.Render(v.Journey.DisplayName()))
		if v.Journey.Description != "" {
			printDetail("%s", v.Journey.Description)
		}
		for _, o := range v.Journey.Owners {
			printKeyValue("owner", strings.TrimSpace(o.Name+" "+o.Email))
		}
	}
	if len(v.Layers) > 0 {
		printKeyValue("layers", strings.Join(v.Layers, ", "))
	}

	rows := make([][]string, 0, len(v.Systems))
	for _, s := range v.Systems {
		n, _ := v.Layout.Node(s.ID)
		rows = append(rows, []string{
			s.ID,
			s.DisplayName(),
			healthBadge(s.Status.Get(env)),
			fmt.Sprintf("%.0f, %.0f", n.X, n.Y),
		})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("System", "Name", "Health ("+string(env)+")", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Fprintln(stdout, t.Render())

	for _, e := range v.Layout.Edges {
		if len(e.Points) == 0 {
			printWarning("connection %s (%s → %s) has an unknown endpoint", e.ID, e.From, e.To)
		}
	}
}
