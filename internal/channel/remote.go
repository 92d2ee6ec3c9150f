package channel

import (
	"context"
	"fmt"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/trace"
)

const remoteSystemPrompt = "You are a crypto market analyst assistant for a Hyperliquid whale " +
	"monitoring service. Answer questions about whale deposits, perpetual positions and " +
	"market activity concisely. If asked about live on-chain data you do not have, say so " +
	"instead of guessing."

// RemoteGateway routes messages to a hosted chat-completion API. It is the
// resolver's last resort when local channels fail or the caller prefers it.
type RemoteGateway struct {
	tracer     trace.Tracer
	client     openai.Client
	model      string
	baseURL    string
	configured bool
}

func NewRemoteGateway(tracer trace.Tracer, apiKey, baseURL, model string) *RemoteGateway {
	return &RemoteGateway{
		tracer:     tracer,
		client:     openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL)),
		model:      model,
		baseURL:    baseURL,
		configured: apiKey != "",
	}
}

func (g *RemoteGateway) ID() domain.ChannelID { return domain.ChannelRemote }

func (g *RemoteGateway) Configured() bool { return g.configured }

func (g *RemoteGateway) Status(ctx context.Context) domain.ChannelStatus {
	return domain.ChannelStatus{
		Channel:    domain.ChannelRemote,
		Configured: g.configured,
		Reachable:  g.configured,
		Endpoint:   g.baseURL,
	}
}

func (g *RemoteGateway) Respond(ctx context.Context, message string) (string, error) {
	ctx, span := g.tracer.Start(ctx, "remote-gateway.respond")
	defer span.End()

	if !g.configured {
		return "", fmt.Errorf("remote gateway API key not configured")
	}

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(remoteSystemPrompt),
			openai.UserMessage(message),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
