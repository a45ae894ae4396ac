package document

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/isaacphi/cmdstream/internal/command"
	"github.com/isaacphi/cmdstream/internal/shared"
	"github.com/spf13/cobra"
)

var (
	ParseCmd = &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a whole LLM reply into commands",
		Long: `Parse a complete reply, read from file or stdin, and print the commands it
holds as JSON. Raw text blocks are expanded first. A command cut off at the
end of the reply is reported separately as "partial".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := shared.ReadInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return writeParsed(cmd.OutOrStdout(), text)
		},
	}

	ExpandCmd = &cobra.Command{
		Use:   "expand [file]",
		Short: "Rewrite raw text blocks as JSON strings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := shared.ReadInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), command.ExpandRaw(text))
			return err
		},
	}
)

type parseResult struct {
	Complete []command.Command `json:"complete"`
	Partial  *command.Command  `json:"partial"`
}

func writeParsed(w io.Writer, text string) error {
	complete, partial := command.ParseDocument(text)
	if complete == nil {
		complete = []command.Command{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(parseResult{Complete: complete, Partial: partial}); err != nil {
		return fmt.Errorf("failed to encode commands: %w", err)
	}
	return nil
}
