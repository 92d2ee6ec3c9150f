package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// LocalAgent forwards messages to a locally hosted agent mailbox over HTTP.
// The mailbox owns its own reasoning; this client only carries the message
// and relays the reply.
type LocalAgent struct {
	tracer       trace.Tracer
	baseURL      string
	agentAddress string
	client       *http.Client
}

func NewLocalAgent(tracer trace.Tracer, baseURL, agentAddress string) *LocalAgent {
	return &LocalAgent{
		tracer:       tracer,
		baseURL:      strings.TrimRight(baseURL, "/"),
		agentAddress: agentAddress,
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *LocalAgent) ID() domain.ChannelID { return domain.ChannelLocal }

func (a *LocalAgent) Configured() bool { return a.baseURL != "" }

type mailboxSendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type mailboxSendResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (a *LocalAgent) Respond(ctx context.Context, message string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "local-agent.respond")
	defer span.End()

	if !a.Configured() {
		return "", fmt.Errorf("mailbox URL not configured")
	}

	body, err := json.Marshal(mailboxSendRequest{
		To:      a.agentAddress,
		Message: message,
		Type:    "query",
	})
	if err != nil {
		return "", fmt.Errorf("encoding mailbox request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building mailbox request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling mailbox: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mailbox returned status %d", resp.StatusCode)
	}

	var out mailboxSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding mailbox response: %w", err)
	}
	if !out.Success {
		if out.Error != "" {
			return "", fmt.Errorf("mailbox rejected message: %s", out.Error)
		}
		return "", fmt.Errorf("mailbox rejected message")
	}
	return out.Response, nil
}

// Status probes the mailbox /status endpoint. Any 200 counts as reachable.
func (a *LocalAgent) Status(ctx context.Context) domain.ChannelStatus {
	ctx, span := a.tracer.Start(ctx, "local-agent.status")
	defer span.End()

	status := domain.ChannelStatus{
		Channel:    domain.ChannelLocal,
		Configured: a.Configured(),
		Endpoint:   a.baseURL,
	}
	if !status.Configured {
		return status
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/status", nil)
	if err != nil {
		return status
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return status
	}
	defer resp.Body.Close()

	status.Reachable = resp.StatusCode == http.StatusOK
	return status
}
