package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/schadensbericht/portal/internal/api/metrics"
	"github.com/schadensbericht/portal/internal/core/domain"
)

// bootstrapCmd represents the bootstrap command
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the initial admin account",
	Long: `Ensures the credential store schema exists and creates the well-known
admin account if it is missing. Running it again is a no-op. Usage:

	portal bootstrap
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.close(closeCtx)
		}()

		created, err := a.provisioning.BootstrapAdmin(ctx)
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		if created {
			metrics.UsersProvisionedTotal.WithLabelValues(domain.RoleAdmin.String(), "bootstrap").Inc()
			cmd.Printf("admin account %q created\n", a.cfg.Bootstrap.AdminUsername)
			return nil
		}
		cmd.Printf("admin account %q already exists\n", a.cfg.Bootstrap.AdminUsername)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}
