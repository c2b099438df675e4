package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/simunit/internal/unit"
)

func parseKind(name string) (unit.Kind, error) {
	kind, ok := unit.ParseKind(name)
	if !ok {
		names := make([]string, 0, len(unit.Kinds()))
		for _, k := range unit.Kinds() {
			names = append(names, k.String())
		}
		return "", usageError(fmt.Errorf("unknown callback kind %q, expected one of: %s", name, strings.Join(names, ", ")))
	}
	return kind, nil
}

func newOrderCommand(s *settings) *cobra.Command {
	var kindName string
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Print the callback execution order of every unit callback kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := s.config(nil)
			if err != nil {
				return err
			}
			orders, err := s.newApp(cmd, cfg).ExecutionOrders()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, o := range orders {
				if kindName != "" && o.Kind.String() != kindName {
					continue
				}
				fmt.Fprintf(out, "%s %s\n", TitleStyle.Render(o.Kind.String()+":"), strings.Join(o.Units, " -> "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kindName, "kind", "", "only print this callback kind")
	cmd.PreRunE = func(*cobra.Command, []string) error {
		if kindName == "" {
			return nil
		}
		_, err := parseKind(kindName)
		return err
	}
	return cmd
}

func newGraphCommand(s *settings) *cobra.Command {
	var kindName string
	cmd := &cobra.Command{
		Use:   "graph --kind KIND",
		Short: "Write the DOT dependency graph of one callback kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := parseKind(kindName)
			if err != nil {
				return err
			}
			cfg, err := s.config(nil)
			if err != nil {
				return err
			}
			return s.newApp(cmd, cfg).WriteCallbackGraph(cmd.OutOrStdout(), kind)
		},
	}
	cmd.Flags().StringVar(&kindName, "kind", "", "callback kind to draw")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
