package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/isaacphi/cmdstream/internal/appState"
	"github.com/isaacphi/cmdstream/internal/config"
	"github.com/isaacphi/cmdstream/internal/ui/cli/chat"
	configCmd "github.com/isaacphi/cmdstream/internal/ui/cli/config"
	"github.com/isaacphi/cmdstream/internal/ui/cli/document"
	"github.com/isaacphi/cmdstream/internal/ui/cli/stream"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	logLevel string
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:   "cmdstream",
	Short: "Extract agent commands from streamed LLM output",
	Long: `cmdstream reads LLM output that encodes agent actions as JSON commands,
such as {"say": {"text": "Hello"}}, and runs each command as soon as its
closing brace arrives.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtimeOverrides collects the configuration flags set on the command line.
// Subcommands declare the flags that apply to them; any that were not
// changed leave the configured value alone.
func runtimeOverrides(flags *pflag.FlagSet) (*config.RuntimeOverrides, error) {
	overrides := &config.RuntimeOverrides{}

	if flags.Changed("log-level") {
		v, err := flags.GetString("log-level")
		if err != nil {
			return nil, err
		}
		overrides.LogLevel = &v
	}
	if flags.Changed("log-file") {
		v, err := flags.GetString("log-file")
		if err != nil {
			return nil, err
		}
		overrides.LogFile = &v
	}
	if flags.Changed("model") {
		v, err := flags.GetString("model")
		if err != nil {
			return nil, err
		}
		overrides.ActiveModel = &v
	}
	if flags.Changed("max-tokens") {
		v, err := flags.GetInt("max-tokens")
		if err != nil {
			return nil, err
		}
		overrides.MaxTokens = &v
	}
	if flags.Changed("temperature") {
		v, err := flags.GetFloat64("temperature")
		if err != nil {
			return nil, err
		}
		overrides.Temperature = &v
	}
	if flags.Changed("chunk-size") {
		v, err := flags.GetInt("chunk-size")
		if err != nil {
			return nil, err
		}
		overrides.ChunkSize = &v
	}
	if flags.Changed("show-partial") {
		v, err := flags.GetBool("show-partial")
		if err != nil {
			return nil, err
		}
		overrides.ShowPartial = &v
	}

	return overrides, nil
}

func init() {
	// Add global flags for logging
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set logging level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		overrides, err := runtimeOverrides(cmd.Flags())
		if err != nil {
			return err
		}
		return appState.Initialize(overrides)
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return appState.Cleanup()
	}

	// Remove "completions" command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		configCmd.ConfigCmd,
		document.ParseCmd,
		document.ExpandCmd,
		stream.StreamCmd,
		chat.ChatCmd,
	)
}
