package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/simunit/modules/driver"
)

func newRunCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "run [DECK_PATH...]",
		Short: "Set up every unit from the input decks and evolve the simulation",
		Long: `Loads the input decks, sets up every unit and evolves the simulation until
the driver's tlim or nlim is reached. DECK_PATH is a deck file or a directory
of deck files; decks may also come from the "decks" settings list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.config(args)
			if err != nil {
				return err
			}
			if err := cfg.RequireDecks(); err != nil {
				return usageError(err)
			}

			sum, err := s.newApp(cmd, cfg).Run(cmd.Context())
			if err != nil {
				return err
			}
			writeSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
}

// writeSummary prints how the evolution ended.
func writeSummary(w io.Writer, sum driver.Summary) {
	fmt.Fprintln(w, TitleStyle.Render("Evolution summary"))
	row := func(label, value string) {
		fmt.Fprintln(w, labelStyle.Render(label)+value)
	}
	row("cycles", fmt.Sprint(sum.Cycles))
	row("time", fmt.Sprintf("%g", sum.Time))
	row("tasks", fmt.Sprint(sum.Tasks))
	if sum.Last == nil {
		return
	}
	row("last tasks", strings.Join(sum.Last.Tasks, ", "))
	for _, name := range slices.Sorted(maps.Keys(sum.Last.Values)) {
		row(name, fmt.Sprintf("%g", sum.Last.Values[name]))
	}
}
