package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"
	"github.com/xyd945/hyperliquid-whale-agent/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type fakeChannel struct {
	id         domain.ChannelID
	configured bool
	reply      string
	err        error

	calls int
}

func (c *fakeChannel) ID() domain.ChannelID { return c.id }
func (c *fakeChannel) Configured() bool     { return c.configured }

func (c *fakeChannel) Respond(ctx context.Context, message string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func newChatRouter(preferLocalDefault bool, channels ...service.Responder) (*gin.Engine, trace.Tracer) {
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	resolver := service.NewResolver(tracer, channels, time.Second)
	h := New(tracer, resolver, nil, nil, preferLocalDefault, 10_000_000, 15)

	r := gin.New()
	r.POST("/chat", h.PostChat)
	r.GET("/chat", h.GetChatStatus)
	return r, tracer
}

func postChat(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostChatSuccess(t *testing.T) {
	local := &fakeChannel{id: domain.ChannelLocal, configured: true, reply: "2 whales in the last 15 minutes"}
	r, _ := newChatRouter(true, local)

	w := postChat(t, r, `{"message":"any whales?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success  bool   `json:"success"`
		Response string `json:"response"`
		Source   string `json:"source"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success || resp.Response != "2 whales in the last 15 minutes" || resp.Source != "local" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPostChatEmptyMessage(t *testing.T) {
	local := &fakeChannel{id: domain.ChannelLocal, configured: true, reply: "never"}
	r, _ := newChatRouter(true, local)

	for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{}`, `not json`} {
		w := postChat(t, r, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
	}
	if local.calls != 0 {
		t.Fatalf("no channel should be attempted on validation failure, got %d calls", local.calls)
	}
}

func TestPostChatNoChannelAvailable(t *testing.T) {
	local := &fakeChannel{id: domain.ChannelLocal, configured: true, err: errors.New("mailbox down")}
	remote := &fakeChannel{id: domain.ChannelRemote, configured: true, err: errors.New("api down")}
	r, _ := newChatRouter(true, local, remote)

	w := postChat(t, r, `{"message":"hello"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Success || resp.Error == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPostChatPreferenceOverride(t *testing.T) {
	local := &fakeChannel{id: domain.ChannelLocal, configured: true, reply: "from local"}
	remote := &fakeChannel{id: domain.ChannelRemote, configured: true, reply: "from remote"}
	r, _ := newChatRouter(true, local, remote)

	w := postChat(t, r, `{"message":"hello","preferLocal":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if local.calls != 0 || remote.calls != 1 {
		t.Fatalf("preferLocal=false should route to remote first: local=%d remote=%d", local.calls, remote.calls)
	}
}

func TestPostChatFallback(t *testing.T) {
	local := &fakeChannel{id: domain.ChannelLocal, configured: true, err: errors.New("down")}
	mock := &fakeChannel{id: domain.ChannelMock, configured: true, reply: "from mock"}
	r, _ := newChatRouter(true, local, mock)

	w := postChat(t, r, `{"message":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Source string `json:"source"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Source != "mock" {
		t.Fatalf("expected mock fallback, got %+v", resp)
	}
}

func TestGetChatStatus(t *testing.T) {
	local := &fakeChannel{id: domain.ChannelLocal, configured: true}
	remote := &fakeChannel{id: domain.ChannelRemote, configured: false}
	r, _ := newChatRouter(true, local, remote)

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Channels []struct {
			Channel    string `json:"channel"`
			Configured bool   `json:"configured"`
		} `json:"channels"`
		PreferLocal bool `json:"preferLocal"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Channels) != 2 || !resp.PreferLocal {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Channels[0].Channel != "local" || !resp.Channels[0].Configured {
		t.Fatalf("unexpected local status: %+v", resp.Channels[0])
	}
	if resp.Channels[1].Channel != "remote" || resp.Channels[1].Configured {
		t.Fatalf("unexpected remote status: %+v", resp.Channels[1])
	}
}
