// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
)

// Token identifies a voter. It is either an account id or a device fingerprint.
type Token string

// Source records how a Token was derived.
type Source string

const (
	SourceAccount Source = "account"
	SourceDevice  Source = "device"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s == SourceAccount || s == SourceDevice
}

// Key is the stored form of a token. The source prefix keeps a posted device
// token from ever matching an account id.
func Key(source Source, token Token) string {
	return string(source) + ":" + string(token)
}

// componentDelimiter joins fingerprint components before hashing.
const componentDelimiter = "|"

// Signals are the client environment attributes hashed into a device fingerprint.
// GraphicsRenderer and GraphicsVendor are optional and are left out of
// the fingerprint when the client could not read them.
type Signals struct {
	ScreenWidth         int
	ScreenHeight        int
	ColorDepth          int
	PixelDepth          int
	Timezone            string
	Language            string
	Languages           []string
	Platform            string
	HardwareConcurrency int
	DeviceMemory        float64
	GraphicsRenderer    string
	GraphicsVendor      string
}

// components returns the fixed, ordered fingerprint input list.
func (s Signals) components() []string {
	components := []string{
		strconv.Itoa(s.ScreenWidth) + "x" + strconv.Itoa(s.ScreenHeight),
		strconv.Itoa(s.ColorDepth),
		strconv.Itoa(s.PixelDepth),
		s.Timezone,
		s.Language,
		strings.Join(s.Languages, ","),
		s.Platform,
		strconv.Itoa(s.HardwareConcurrency),
		strconv.FormatFloat(s.DeviceMemory, 'f', -1, 64),
	}

	if s.GraphicsRenderer != "" || s.GraphicsVendor != "" {
		components = append(components, s.GraphicsRenderer, s.GraphicsVendor)
	}

	return components
}

// Fingerprint hashes the signals into a 64 character hex token.
// Devices with identical signals collide; this is a heuristic, not authentication.
func Fingerprint(s Signals) Token {
	sum := sha256.Sum256([]byte(strings.Join(s.components(), componentDelimiter)))
	return Token(hex.EncodeToString(sum[:]))
}

// AccountFunc reports the authenticated account id, if any.
type AccountFunc func() (accountID string, ok bool)

// SignalsFunc collects the device signals. It must not fail; unavailable
// signals are left at their zero value.
type SignalsFunc func() Signals

// Resolver derives an identity token once and caches it for the session.
type Resolver struct {
	account AccountFunc
	signals SignalsFunc

	once   sync.Once
	token  Token
	source Source
}

// NewResolver creates a resolver. Either function may be nil.
func NewResolver(account AccountFunc, signals SignalsFunc) *Resolver {
	return &Resolver{account: account, signals: signals}
}

// Resolve returns the session's identity token. The account id wins when a
// session exists; otherwise the device fingerprint is used.
func (r *Resolver) Resolve() Token {
	r.once.Do(r.resolve)
	return r.token
}

// Source reports how the token returned by Resolve was derived.
func (r *Resolver) Source() Source {
	r.once.Do(r.resolve)
	return r.source
}

func (r *Resolver) resolve() {
	if r.account != nil {
		if accountID, ok := r.account(); ok && strings.TrimSpace(accountID) != "" {
			r.token = Token(strings.TrimSpace(accountID))
			r.source = SourceAccount
			return
		}
	}

	var s Signals
	if r.signals != nil {
		s = r.signals()
	}
	r.token = Fingerprint(s)
	r.source = SourceDevice
}
