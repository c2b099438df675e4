package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [DECK_PATH...]",
		Short: "Check the input decks, unit dependencies and dispatch tables without evolving",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.setUpApp(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✔ valid:"),
				fmt.Sprintf("%d units, %d parameters", a.Registry().Len(), a.Params().Len()))
			return nil
		},
	}
}
