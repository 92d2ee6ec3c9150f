package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const blockscoutRequestTimeout = 15 * time.Second

// BlockscoutProvider reads address transactions from the Blockscout REST v2 API.
type BlockscoutProvider struct {
	tracer  trace.Tracer
	baseURL string
	client  *http.Client
}

func NewBlockscoutProvider(tracer trace.Tracer, baseURL string) *BlockscoutProvider {
	return &BlockscoutProvider{
		tracer:  tracer,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: blockscoutRequestTimeout},
	}
}

type blockscoutAddress struct {
	Hash string `json:"hash"`
}

type blockscoutTokenTransfer struct {
	Token struct {
		Address string `json:"address"`
	} `json:"token"`
	Total struct {
		Value string `json:"value"`
	} `json:"total"`
	From blockscoutAddress `json:"from"`
	To   blockscoutAddress `json:"to"`
}

type blockscoutTransaction struct {
	Hash           string                    `json:"hash"`
	Value          string                    `json:"value"`
	Timestamp      string                    `json:"timestamp"`
	From           blockscoutAddress         `json:"from"`
	To             blockscoutAddress         `json:"to"`
	TokenTransfers []blockscoutTokenTransfer `json:"token_transfers"`
}

type blockscoutTransactionsResponse struct {
	Items []blockscoutTransaction `json:"items"`
}

// AddressTransactions returns the most recent transactions touching the given
// address, newest first. Entries with an unparseable timestamp are dropped.
func (p *BlockscoutProvider) AddressTransactions(ctx context.Context, address string) ([]domain.BridgeTransaction, error) {
	ctx, span := p.tracer.Start(ctx, "blockscout.address-transactions")
	defer span.End()
	span.SetAttributes(attribute.String("address", address))

	url := fmt.Sprintf("%s/api/v2/addresses/%s/transactions", p.baseURL, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build blockscout request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blockscout request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blockscout returned status %d", resp.StatusCode)
	}

	var payload blockscoutTransactionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode blockscout response: %w", err)
	}

	out := make([]domain.BridgeTransaction, 0, len(payload.Items))
	for _, item := range payload.Items {
		ts, err := time.Parse(time.RFC3339, item.Timestamp)
		if err != nil {
			continue
		}
		tx := domain.BridgeTransaction{
			Hash:      item.Hash,
			From:      item.From.Hash,
			To:        item.To.Hash,
			ValueWei:  item.Value,
			Timestamp: ts.UTC(),
		}
		for _, tt := range item.TokenTransfers {
			tx.TokenTransfers = append(tx.TokenTransfers, domain.TokenTransfer{
				TokenAddress: tt.Token.Address,
				From:         tt.From.Hash,
				To:           tt.To.Hash,
				RawAmount:    tt.Total.Value,
			})
		}
		out = append(out, tx)
	}
	return out, nil
}
