package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/isaacphi/cmdstream/internal/agent"
	"github.com/isaacphi/cmdstream/internal/appState"
	"github.com/isaacphi/cmdstream/internal/llm"
	"github.com/isaacphi/cmdstream/internal/prompt"
	"github.com/isaacphi/cmdstream/internal/shared"
	"github.com/spf13/cobra"
)

var (
	useTUI bool

	ChatCmd = &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Ask a model and run the commands in its reply",
		Long: `Send a prompt to the active model and run each command in the reply as it
streams in. The prompt is read from stdin when no argument is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appState.Get()

			model, ok := app.Config.GetActiveModel()
			if !ok {
				return fmt.Errorf("active model %q not found in configuration", app.Config.ActiveModel)
			}

			content := strings.Join(args, " ")
			if len(args) == 0 {
				var err error
				content, err = shared.ReadInput(nil, cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(content) == "" {
				return errors.New("prompt is empty")
			}

			system, err := prompt.NewManager().SystemMessage(agent.Builtins)
			if err != nil {
				return fmt.Errorf("failed to build system message: %w", err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			app.Logger.Debug("sending prompt", "provider", model.Provider, "model", model.Name)

			source := llm.GenerateContentStream(ctx, llm.GenerateContentOptions{
				Model:         model,
				SystemMessage: system,
				Content:       content,
			})
			return shared.RunStream(ctx, source, shared.RunOptions{
				Title:  fmt.Sprintf("%s (%s)", model.Name, app.Config.ActiveModel),
				Config: app.Config,
				Logger: app.Logger,
				Out:    cmd.OutOrStdout(),
				ErrOut: cmd.ErrOrStderr(),
				TUI:    useTUI,
			})
		},
	}
)

func init() {
	ChatCmd.Flags().String("model", "", "Model to use, by its key in the configuration")
	ChatCmd.Flags().Int("max-tokens", 0, "Override the model's maximum tokens")
	ChatCmd.Flags().Float64("temperature", 0, "Override the model's temperature")
	ChatCmd.Flags().Bool("show-partial", false, "Print the command still being streamed")
	ChatCmd.Flags().BoolVar(&useTUI, "tui", false, "Show the reply in a terminal UI")
}
