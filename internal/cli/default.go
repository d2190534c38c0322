package cli

import (
	"github.com/spf13/cobra"

	"github.com/serviceplanpro/brandcolour/internal/colour"
)

func newDefaultCmd() *cobra.Command {
	out := &outputFlags{}
	cmd := &cobra.Command{
		Use:   "default",
		Short: "Print the default widget colour scheme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rendered, err := out.render(cmd, colour.DefaultScheme())
			if err != nil {
				return err
			}
			return out.write(cmd, rendered)
		},
	}
	out.register(cmd.Flags())
	return cmd
}
