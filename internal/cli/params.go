package cli

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newParamsCommand(s *settings) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "params [DECK_PATH...]",
		Short: "Print every resolved runtime parameter as a deck",
		Long: `Sets up every unit and prints the resolved value of every runtime
parameter, defaults included. The output is itself a valid input deck.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var marshal func(any) ([]byte, error)
			switch format {
			case "yaml":
				marshal = yaml.Marshal
			case "toml":
				marshal = toml.Marshal
			default:
				return usageError(fmt.Errorf("invalid format %q: must be 'yaml' or 'toml'", format))
			}

			a, err := s.setUpApp(cmd, args)
			if err != nil {
				return err
			}
			resolved, err := a.ResolvedParameters()
			if err != nil {
				return err
			}
			out, err := marshal(resolved)
			if err != nil {
				return fmt.Errorf("encoding parameters as %s: %w", format, err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: 'yaml' or 'toml'")
	return cmd
}
