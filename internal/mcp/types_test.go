package mcp

import (
	"testing"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"
)

func TestNormalizeThreshold(t *testing.T) {
	got, err := normalizeThreshold(0)
	if err != nil || got != defaultThresholdUSD {
		t.Fatalf("expected default threshold, got %v err=%v", got, err)
	}

	got, err = normalizeThreshold(5_000_000)
	if err != nil || got != 5_000_000 {
		t.Fatalf("expected passthrough, got %v err=%v", got, err)
	}

	if _, err := normalizeThreshold(-1); err == nil {
		t.Fatal("expected error for negative threshold")
	}
}

func TestNormalizeLookback(t *testing.T) {
	got, err := normalizeLookback(0)
	if err != nil || got != defaultLookbackMinutes {
		t.Fatalf("expected default lookback, got %d err=%v", got, err)
	}

	got, err = normalizeLookback(1440)
	if err != nil || got != 1440 {
		t.Fatalf("expected passthrough at max, got %d err=%v", got, err)
	}

	if _, err := normalizeLookback(1441); err == nil {
		t.Fatal("expected error above max lookback")
	}
	if _, err := normalizeLookback(-5); err == nil {
		t.Fatal("expected error for negative lookback")
	}
}

func TestNormalizeWallet(t *testing.T) {
	got, err := normalizeWallet("  0x2222222222222222222222222222222222222222  ")
	if err != nil || got != "0x2222222222222222222222222222222222222222" {
		t.Fatalf("expected trimmed address, got %q err=%v", got, err)
	}

	if _, err := normalizeWallet(""); err == nil {
		t.Fatal("expected error for empty address")
	}
	if _, err := normalizeWallet("0x1234"); err == nil {
		t.Fatal("expected error for short address")
	}
	if _, err := normalizeWallet("not-an-address"); err == nil {
		t.Fatal("expected error for malformed address")
	}
}

func TestResolvePreference(t *testing.T) {
	if resolvePreference(nil) != domain.PreferLocal {
		t.Fatal("nil preference should default to local")
	}

	local := true
	if resolvePreference(&local) != domain.PreferLocal {
		t.Fatal("true should prefer local")
	}

	remote := false
	if resolvePreference(&remote) != domain.PreferRemote {
		t.Fatal("false should prefer remote")
	}
}
