package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/anchor/internal/app"
	"github.com/trebuchet-org/anchor/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// commands that run without a project
var standaloneCommands = []string{"version", "help", "completion"}

// NewRootCmd creates the root command for the CLI
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "anchor",
		Short: "Deterministic CREATE2 deployments through a singleton factory",
		Long: `Anchor deploys contracts at addresses that depend only on the factory, the salt
and the contract bytecode, so the same build lands at the same address on
every supported chain. Missing factories are bootstrapped from a pre-signed
transaction, and contracts already at their address are reused, never redeployed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if slices.Contains(standaloneCommands, cmd.Name()) {
				return nil
			}

			projectRoot, err := cmd.Flags().GetString("project-root")
			if err != nil {
				return err
			}
			if projectRoot == "" {
				if projectRoot, err = config.FindProjectRoot(); err != nil {
					return err
				}
			}

			// Set up viper
			v := config.SetupViper(projectRoot, cmd)
			if isNonInteractive() {
				v.Set("non_interactive", true)
			}

			// Initialize app with DI
			appInstance, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			// Store app in context
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			cancel := func() {}
			if appInstance.Config.Timeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
			}
			cmd.PostRun = func(cmd *cobra.Command, args []string) {
				cancel()
				appInstance.Close()
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts and spinners")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network from anchor.toml to use (e.g., mainnet, sepolia)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Abort the command after this duration (default 10m)")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding deployment records (default deployments)")
	rootCmd.PersistentFlags().String("project-root", "", "Project directory containing anchor.toml (default: search upwards)")

	// Add command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	// Main commands
	for _, cmd := range []*cobra.Command{
		NewDeployCmd(),
		NewFactoryCmd(),
		NewVerifyCmd(),
		NewAddressCmd(),
	} {
		cmd.GroupID = "main"
		rootCmd.AddCommand(cmd)
	}

	// Management commands
	for _, cmd := range []*cobra.Command{
		NewShowCmd(),
		NewResetCmd(),
		NewChainsCmd(),
	} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// isNonInteractive reports whether the environment rules out prompts
func isNonInteractive() bool {
	return os.Getenv("CI") == "true" || os.Getenv("NO_COLOR") != ""
}
