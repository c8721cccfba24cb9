package cli

import (
	"fmt"

	"github.com/email-classifier/internal/domain"
	"github.com/email-classifier/internal/endpoint"
	"github.com/spf13/cobra"
)

func NewHealthCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe the classification service",
		Long:  `Probe the health endpoint once. Exits non-zero when the service is unavailable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, false)
			if err != nil {
				return err
			}
			defer a.Close()
			a.startController(nil)

			availability := a.controller.CheckHealth(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", a.controller.Endpoints().URL(endpoint.OpHealth), availability)

			if availability != domain.AvailabilityAvailable {
				return fmt.Errorf("classification service is %s", availability)
			}
			return nil
		},
	}

	return cmd
}

func NewEndpointsCommand(root *rootOptions) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "Show the detected environment and resolved endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root, false)
			if err != nil {
				return err
			}
			defer a.Close()
			a.startController(nil)

			return renderEndpoints(cmd.OutOrStdout(), a.controller.Environment(), a.controller.Endpoints(), asYAML)
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print as YAML")

	return cmd
}
