package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/isaacphi/cmdstream/internal/config"
	"github.com/isaacphi/cmdstream/internal/events"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// GenerateContentOptions describes one request to a model.
type GenerateContentOptions struct {
	Model         config.Model
	SystemMessage string
	Content       string

	// Client overrides the provider client built from Model.
	Client llms.Model
}

func createLLMClient(ctx context.Context, modelCfg config.Model) (llms.Model, error) {
	var llm llms.Model
	var err error

	switch modelCfg.Provider {
	case "openai":
		opts := []openai.Option{openai.WithModel(modelCfg.Name)}
		if modelCfg.APIKey != "" {
			opts = append(opts, openai.WithToken(modelCfg.APIKey))
		}
		llm, err = openai.New(opts...)
	case "anthropic":
		opts := []anthropic.Option{anthropic.WithModel(modelCfg.Name)}
		if modelCfg.APIKey != "" {
			opts = append(opts, anthropic.WithToken(modelCfg.APIKey))
		}
		llm, err = anthropic.New(opts...)
	case "googleai":
		genaiKey := modelCfg.APIKey
		if genaiKey == "" {
			genaiKey = os.Getenv("GEMINI_API_KEY")
		}
		llm, err = googleai.New(
			ctx,
			googleai.WithDefaultModel(modelCfg.Name),
			googleai.WithAPIKey(genaiKey),
		)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", modelCfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", modelCfg.Provider, err)
	}

	return llm, nil
}

func buildMessages(opts GenerateContentOptions) []llms.MessageContent {
	var msgs []llms.MessageContent
	if opts.SystemMessage != "" {
		msgs = append(msgs, llms.TextParts(schema.ChatMessageTypeSystem, opts.SystemMessage))
	}
	return append(msgs, llms.TextParts(schema.ChatMessageTypeHuman, opts.Content))
}

// GenerateContentStream sends the request and streams the reply as
// TextEvents, followed by a MessageCompleteEvent. Failures arrive as an
// events.ErrorEvent. Both channels close when the reply is over.
func GenerateContentStream(ctx context.Context, opts GenerateContentOptions) LLMStream {
	eventsChan := make(chan events.Event)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(eventsChan)

		client := opts.Client
		if client == nil {
			var err error
			client, err = createLLMClient(ctx, opts.Model)
			if err != nil {
				send(ctx, eventsChan, &events.ErrorEvent{Error: err})
				return
			}
		}

		var streamed strings.Builder
		callOpts := []llms.CallOption{
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				streamed.Write(chunk)
				if !send(ctx, eventsChan, &TextEvent{Content: string(chunk)}) {
					return ctx.Err()
				}
				return nil
			}),
		}
		if opts.Model.Temperature > 0 {
			callOpts = append(callOpts, llms.WithTemperature(opts.Model.Temperature))
		}
		if opts.Model.MaxTokens > 0 {
			callOpts = append(callOpts, llms.WithMaxTokens(opts.Model.MaxTokens))
		}

		resp, err := client.GenerateContent(ctx, buildMessages(opts), callOpts...)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return
			}
			send(ctx, eventsChan, &events.ErrorEvent{Error: fmt.Errorf("streaming message failed: %w", err)})
			return
		}

		if len(resp.Choices) == 0 {
			send(ctx, eventsChan, &events.ErrorEvent{Error: fmt.Errorf("no response choices returned")})
			return
		}

		content := resp.Choices[0].Content
		if content == "" {
			content = streamed.String()
		}
		send(ctx, eventsChan, &MessageCompleteEvent{Content: content})
	}()

	return LLMStream{Events: eventsChan, Done: done}
}
