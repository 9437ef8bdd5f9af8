// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"sync"
	"sync/atomic"
	"testing"
)

func testSignals() Signals {
	return Signals{
		ScreenWidth:         1920,
		ScreenHeight:        1080,
		ColorDepth:          24,
		PixelDepth:          24,
		Timezone:            "Europe/Berlin",
		Language:            "en-US",
		Languages:           []string{"en-US", "en"},
		Platform:            "MacIntel",
		HardwareConcurrency: 8,
		DeviceMemory:        8,
	}
}

func TestFingerprint(t *testing.T) {
	withGraphics := testSignals()
	withGraphics.GraphicsRenderer = "ANGLE (Apple, Apple M1, OpenGL 4.1)"
	withGraphics.GraphicsVendor = "Google Inc. (Apple)"

	tests := []struct {
		name     string
		signals  Signals
		expected Token
	}{
		{
			name:     "without graphics signals",
			signals:  testSignals(),
			expected: "8acd2abb7696006112d1985c69c13c094476bc60c75f57c952e2e8dea50ac3dc",
		},
		{
			name:     "with graphics signals",
			signals:  withGraphics,
			expected: "440644318a5c3f8684bc4b3b23054edcc1a70b11faaa21c5607b863da9640fb9",
		},
		{
			name:     "no signals at all",
			signals:  Signals{},
			expected: "0e324ae6a5ccd65b5f036bef3677653e45c0a9cea96f66aa015bf7008b29e5bd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fingerprint(tt.signals)
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
			if len(got) != 64 {
				t.Errorf("Expected 64 hex chars, got %d", len(got))
			}
		})
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint(testSignals())
	b := Fingerprint(testSignals())
	if a != b {
		t.Errorf("Same signals produced different tokens: %s vs %s", a, b)
	}

	changed := testSignals()
	changed.Timezone = "America/New_York"
	if Fingerprint(changed) == a {
		t.Error("Different timezone should produce a different token")
	}
}

func TestResolverAccountWins(t *testing.T) {
	collected := false
	r := NewResolver(
		func() (string, bool) { return "user-42", true },
		func() Signals { collected = true; return testSignals() },
	)

	if got := r.Resolve(); got != "user-42" {
		t.Errorf("Expected account token, got %s", got)
	}
	if r.Source() != SourceAccount {
		t.Errorf("Expected source %s, got %s", SourceAccount, r.Source())
	}
	if collected {
		t.Error("Device signals should not be collected when a session exists")
	}
}

func TestResolverFallsBackToDevice(t *testing.T) {
	tests := []struct {
		name    string
		account AccountFunc
	}{
		{"no account func", nil},
		{"no session", func() (string, bool) { return "", false }},
		{"blank account id", func() (string, bool) { return "   ", true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.account, testSignals)
			if got := r.Resolve(); got != Fingerprint(testSignals()) {
				t.Errorf("Expected device fingerprint, got %s", got)
			}
			if r.Source() != SourceDevice {
				t.Errorf("Expected source %s, got %s", SourceDevice, r.Source())
			}
		})
	}
}

func TestResolverWithoutSignals(t *testing.T) {
	r := NewResolver(nil, nil)
	if got := r.Resolve(); got != Fingerprint(Signals{}) {
		t.Errorf("Expected fingerprint of empty signals, got %s", got)
	}
}

func TestResolverCachesForSession(t *testing.T) {
	var calls atomic.Int32
	r := NewResolver(nil, func() Signals {
		calls.Add(1)
		return testSignals()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Resolve()
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("Expected signals to be collected once, got %d", calls.Load())
	}
}

func TestLocalSignals(t *testing.T) {
	t.Setenv("COLUMNS", "120")
	t.Setenv("LINES", "40")
	t.Setenv("TZ", "UTC")
	t.Setenv("LC_ALL", "en_US.UTF-8")
	t.Setenv("LANGUAGE", "en_US:en")

	s := LocalSignals()
	if s.ScreenWidth != 120 || s.ScreenHeight != 40 {
		t.Errorf("Expected 120x40, got %dx%d", s.ScreenWidth, s.ScreenHeight)
	}
	if s.Timezone != "UTC" {
		t.Errorf("Expected UTC, got %s", s.Timezone)
	}
	if s.Language != "en_US.UTF-8" {
		t.Errorf("Expected locale en_US.UTF-8, got %s", s.Language)
	}
	if len(s.Languages) != 2 {
		t.Errorf("Expected 2 languages, got %v", s.Languages)
	}
	if s.HardwareConcurrency < 1 {
		t.Errorf("Expected positive concurrency hint, got %d", s.HardwareConcurrency)
	}
	if s.GraphicsRenderer != "" || s.GraphicsVendor != "" {
		t.Error("Local signals should not include graphics")
	}
}

func TestKeySeparatesSources(t *testing.T) {
	tests := []struct {
		source Source
		token  Token
		want   string
	}{
		{SourceAccount, "account-42", "account:account-42"},
		{SourceDevice, "account-42", "device:account-42"},
		{SourceDevice, "account:account-42", "device:account:account-42"},
	}
	for _, tt := range tests {
		if got := Key(tt.source, tt.token); got != tt.want {
			t.Errorf("Key(%s, %s) = %s, want %s", tt.source, tt.token, got, tt.want)
		}
	}

	if Key(SourceDevice, "account-42") == Key(SourceAccount, "account-42") {
		t.Error("A device token must not share a key with the account of the same name")
	}
}

func TestSourceValid(t *testing.T) {
	for _, s := range []Source{SourceAccount, SourceDevice} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []Source{"", "admin", "Account"} {
		if s.Valid() {
			t.Errorf("%q should not be valid", s)
		}
	}
}
