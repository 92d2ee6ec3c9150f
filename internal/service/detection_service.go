package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxLookbackMinutes   = 1440
	maxScannedTxs        = 50
	defaultWhaleCacheTTL = 30 * time.Second
)

// BridgeTransactionSource fetches raw transactions for an address.
type BridgeTransactionSource interface {
	AddressTransactions(ctx context.Context, address string) ([]domain.BridgeTransaction, error)
}

// DetectionService filters bridge deposits down to whale-sized events.
type DetectionService struct {
	tracer   trace.Tracer
	source   BridgeTransactionSource
	bridge   common.Address
	tokens   map[string]domain.TokenInfo
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewDetectionService wires the detector. cache may be nil to disable the
// read-through result cache.
func NewDetectionService(
	tracer trace.Tracer,
	source BridgeTransactionSource,
	bridgeContract string,
	tokens map[string]domain.TokenInfo,
	cache *redis.Client,
	cacheTTL time.Duration,
) *DetectionService {
	if cacheTTL <= 0 {
		cacheTTL = defaultWhaleCacheTTL
	}
	return &DetectionService{
		tracer:   tracer,
		source:   source,
		bridge:   common.HexToAddress(bridgeContract),
		tokens:   tokens,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Detect returns deposits into the bridge worth at least thresholdUSD within
// the lookback window, largest first. A failing source yields an empty slice
// together with domain.ErrDataSourceUnavailable so callers can degrade.
func (s *DetectionService) Detect(ctx context.Context, thresholdUSD float64, lookbackMinutes int) ([]domain.DepositEvent, error) {
	ctx, span := s.tracer.Start(ctx, "detection-service.detect")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("threshold_usd", thresholdUSD),
		attribute.Int("lookback_minutes", lookbackMinutes),
	)

	if thresholdUSD <= 0 {
		return nil, fmt.Errorf("%w: threshold must be positive", domain.ErrValidation)
	}
	if lookbackMinutes <= 0 || lookbackMinutes > maxLookbackMinutes {
		return nil, fmt.Errorf("%w: lookback must be between 1 and %d minutes", domain.ErrValidation, maxLookbackMinutes)
	}

	if cached, ok := s.cachedDeposits(ctx, thresholdUSD, lookbackMinutes); ok {
		return cached, nil
	}

	txs, err := s.source.AddressTransactions(ctx, s.bridge.Hex())
	if err != nil {
		log.Printf("whale detection: bridge transaction fetch failed: %v", err)
		return []domain.DepositEvent{}, fmt.Errorf("%w: %v", domain.ErrDataSourceUnavailable, err)
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackMinutes) * time.Minute)
	deposits := make([]domain.DepositEvent, 0)
	scanned := 0
	for _, tx := range txs {
		if scanned >= maxScannedTxs {
			break
		}
		if tx.Timestamp.Before(cutoff) {
			continue
		}
		scanned++

		for _, event := range s.decodeDeposits(tx) {
			if event.AmountUSD >= thresholdUSD {
				deposits = append(deposits, event)
			}
		}
	}

	sort.SliceStable(deposits, func(i, j int) bool {
		if deposits[i].AmountUSD != deposits[j].AmountUSD {
			return deposits[i].AmountUSD > deposits[j].AmountUSD
		}
		return deposits[i].TxHash < deposits[j].TxHash
	})

	s.storeDeposits(ctx, thresholdUSD, lookbackMinutes, deposits)
	span.SetAttributes(attribute.Int("deposit_count", len(deposits)))
	return deposits, nil
}

// decodeDeposits extracts deposit events from one transaction: ERC-20
// transfers into the bridge for tokens we can price, or the native value
// when the transaction itself targets the bridge.
func (s *DetectionService) decodeDeposits(tx domain.BridgeTransaction) []domain.DepositEvent {
	var events []domain.DepositEvent

	for _, tt := range tx.TokenTransfers {
		if !s.isBridge(tt.To) {
			continue
		}
		info, ok := domain.TokenByAddress(s.tokens, tt.TokenAddress)
		if !ok {
			continue
		}
		amount, ok := rawAmountToUnits(tt.RawAmount, info.Decimals)
		if !ok || amount == 0 {
			continue
		}
		events = append(events, domain.DepositEvent{
			Wallet:    tt.From,
			Amount:    amount,
			Token:     info.Symbol,
			TxHash:    tx.Hash,
			Timestamp: tx.Timestamp,
			AmountUSD: amount * info.USDRate,
		})
	}
	if len(events) > 0 {
		return events
	}

	if !s.isBridge(tx.To) || tx.ValueWei == "" || tx.ValueWei == "0" {
		return nil
	}
	eth, ok := domain.TokenByAddress(s.tokens, domain.NativeTokenAddress)
	if !ok {
		return nil
	}
	amount, ok := rawAmountToUnits(tx.ValueWei, eth.Decimals)
	if !ok || amount == 0 {
		return nil
	}
	return []domain.DepositEvent{{
		Wallet:    tx.From,
		Amount:    amount,
		Token:     eth.Symbol,
		TxHash:    tx.Hash,
		Timestamp: tx.Timestamp,
		AmountUSD: amount * eth.USDRate,
	}}
}

func (s *DetectionService) isBridge(address string) bool {
	if !common.IsHexAddress(address) {
		return false
	}
	return common.HexToAddress(address) == s.bridge
}

// rawAmountToUnits converts a decimal or 0x-prefixed integer string to token
// units using the token's decimals.
func rawAmountToUnits(raw string, decimals int) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	base := 10
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		raw = raw[2:]
		base = 16
	}
	value, ok := new(big.Int).SetString(raw, base)
	if !ok || value.Sign() < 0 {
		return 0, false
	}
	units, _ := new(big.Float).Quo(
		new(big.Float).SetInt(value),
		big.NewFloat(math.Pow10(decimals)),
	).Float64()
	return units, true
}

func (s *DetectionService) whaleCacheKey(thresholdUSD float64, lookbackMinutes int) string {
	return fmt.Sprintf("whales:%.2f:%d", thresholdUSD, lookbackMinutes)
}

func (s *DetectionService) cachedDeposits(ctx context.Context, thresholdUSD float64, lookbackMinutes int) ([]domain.DepositEvent, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.whaleCacheKey(thresholdUSD, lookbackMinutes)).Result()
	if err != nil {
		return nil, false
	}
	var deposits []domain.DepositEvent
	if err := json.Unmarshal([]byte(raw), &deposits); err != nil {
		return nil, false
	}
	return deposits, true
}

func (s *DetectionService) storeDeposits(ctx context.Context, thresholdUSD float64, lookbackMinutes int, deposits []domain.DepositEvent) {
	if s.cache == nil {
		return
	}
	encoded, err := json.Marshal(deposits)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.whaleCacheKey(thresholdUSD, lookbackMinutes), encoded, s.cacheTTL).Err(); err != nil {
		log.Printf("whale detection: cache store failed: %v", err)
	}
}
