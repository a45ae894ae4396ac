package stream

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/isaacphi/cmdstream/internal/appState"
	"github.com/isaacphi/cmdstream/internal/llm"
	"github.com/isaacphi/cmdstream/internal/shared"
	"github.com/spf13/cobra"
)

var (
	useTUI bool
	follow bool
	idle   time.Duration

	StreamCmd = &cobra.Command{
		Use:   "stream [file]",
		Short: "Replay a recorded reply as a stream and run its commands",
		Long: `Read a recorded model reply from file or stdin, feed it to the parser in
small chunks as if it were arriving from a model, and run every command as
soon as it is complete. With --follow the file keeps being read as it grows,
until it is renamed or stays unchanged for --idle.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appState.Get()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			title := "stdin"
			if len(args) > 0 && args[0] != "-" {
				title = filepath.Base(args[0])
			}

			app.Logger.Debug("replaying reply", "input", title, "chunkSize", app.Config.Parser.ChunkSize, "follow", follow)

			var source llm.LLMStream
			if follow {
				if len(args) == 0 || args[0] == "-" {
					return errors.New("--follow needs a file argument")
				}
				var err error
				source, err = llm.FollowStream(ctx, args[0], app.Config.Parser.ChunkSize, idle)
				if err != nil {
					return err
				}
			} else {
				input, err := shared.OpenInput(args, cmd.InOrStdin())
				if err != nil {
					return err
				}
				defer input.Close()
				source = llm.ReaderStream(ctx, input, app.Config.Parser.ChunkSize)
			}

			if err := shared.RunStream(ctx, source, shared.RunOptions{
				Title:  title,
				Config: app.Config,
				Logger: app.Logger,
				Out:    cmd.OutOrStdout(),
				ErrOut: cmd.ErrOrStderr(),
				TUI:    useTUI,
			}); err != nil {
				return fmt.Errorf("stream %s: %w", title, err)
			}
			return nil
		},
	}
)

func init() {
	StreamCmd.Flags().Int("chunk-size", llm.DefaultChunkSize, "Bytes per chunk")
	StreamCmd.Flags().Bool("show-partial", false, "Print the command still being streamed")
	StreamCmd.Flags().BoolVar(&useTUI, "tui", false, "Show the stream in a terminal UI")
	StreamCmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep reading the file as it grows")
	StreamCmd.Flags().DurationVar(&idle, "idle", 5*time.Second, "With --follow, stop after the file is unchanged this long (0 waits until interrupted)")
}
