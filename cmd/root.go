package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/threatsmith/povforge-cli/internal/config"
	"github.com/threatsmith/povforge-cli/internal/observability"
)

// contextKey scopes values stored on the command context.
type contextKey string

// configKey indexes the validated configuration placed on the context by the
// root command's PersistentPreRunE.
const configKey contextKey = "config"

// getConfigFromContext retrieves the validated configuration stored by the
// root command for use in subcommand RunE functions.
func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration missing from command context")
	}
	return cfg, nil
}

var cfgFile string

// NewRootCommand assembles the povforge command tree. Each call returns a
// pristine tree so command executions never share Cobra state.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "povforge",
		Short: "povforge generates SIEM proof-of-value content from dataset schemas.",
		Long: `povforge turns vendor dataset schemas and threat scenarios into ready-to-demo
SIEM content: XQL correlation rules, response playbooks, alert layouts, and
monitoring dashboards. Schemas for common vendors are built in; additional
schema files can be registered per run.`,
		// Version is dynamically set at build time. See cmd/version.go.
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Runs before every command, setting up config and logging.
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(v); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				// Fall back to a basic logger so the failure is visible.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "povforge"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting povforge", zap.String("version", Version))

			// Subcommands read the validated config back off the context.
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newSchemasCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the povforge command tree with the given context. It is the
// entry point used by main.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
		return err
	}
	return nil
}

// initializeConfig layers the config file and POVFORGE_* environment
// variables onto v. A missing config file is not an error; defaults and
// environment variables still apply.
func initializeConfig(v *viper.Viper) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("POVFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}
