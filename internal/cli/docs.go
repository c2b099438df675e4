package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vk/simunit/internal/docs"
)

func newDocsCommand(s *settings) *cobra.Command {
	var (
		unitName string
		render   bool
		style    string
		width    int
	)
	cmd := &cobra.Command{
		Use:   "docs [DECK_PATH...]",
		Short: "Print the runtime parameter reference as a markdown table",
		Long: `Sets up every unit, from the given decks or from defaults, and prints the
runtime parameters as a markdown table, one section per input block.
With --render the table is formatted for the terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.setUpApp(cmd, args)
			if err != nil {
				return err
			}
			md, err := a.ParameterDocs(unitName)
			if err != nil {
				return usageError(err)
			}
			if render {
				md, err = docs.Render(md, docs.RenderOptions{Style: style, Width: width})
				if err != nil {
					return err
				}
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		},
	}
	cmd.Flags().StringVar(&unitName, "unit", "", "only document the blocks of this unit")
	cmd.Flags().BoolVar(&render, "render", false, "render the markdown for the terminal")
	cmd.Flags().StringVar(&style, "style", "", "glamour style for --render (dark, light, notty, ...); empty picks one from the terminal")
	cmd.Flags().IntVar(&width, "width", 100, "word wrap width for --render, 0 disables wrapping")
	return cmd
}
