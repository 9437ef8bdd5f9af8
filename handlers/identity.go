// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/identity"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

// IdentityTokenHeader carries a device token on read requests.
const IdentityTokenHeader = "X-Identity-Token"

type IdentityHandler struct {
	sessions *auth.SessionVerifier
}

func NewIdentityHandler(sessions *auth.SessionVerifier) *IdentityHandler {
	return &IdentityHandler{sessions: sessions}
}

// requestIdentity picks the identity for a request. A valid session wins over
// the posted device token. Returns auth.ErrInvalidSession for a bad session.
func requestIdentity(r *http.Request, sessions *auth.SessionVerifier, posted string) (identity.Token, identity.Source, error) {
	accountID, err := sessions.FromRequest(r)
	switch {
	case err == nil:
		return identity.Token(accountID), identity.SourceAccount, nil
	case errors.Is(err, auth.ErrNoSession):
		return identity.Token(strings.TrimSpace(posted)), identity.SourceDevice, nil
	default:
		return "", "", err
	}
}

// Resolve handles POST /identity
func (h *IdentityHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	token, source, err := requestIdentity(r, h.sessions, "")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session")
		return
	}

	if source == identity.SourceDevice {
		var req models.ResolveIdentityRequest
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		token = identity.Fingerprint(identity.Signals{
			ScreenWidth:         req.ScreenWidth,
			ScreenHeight:        req.ScreenHeight,
			ColorDepth:          req.ColorDepth,
			PixelDepth:          req.PixelDepth,
			Timezone:            req.Timezone,
			Language:            req.Language,
			Languages:           req.Languages,
			Platform:            req.Platform,
			HardwareConcurrency: req.HardwareConcurrency,
			DeviceMemory:        req.DeviceMemory,
			GraphicsRenderer:    req.GraphicsRenderer,
			GraphicsVendor:      req.GraphicsVendor,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResolveIdentityResponse{
		IdentityToken: string(token),
		Source:        string(source),
	})
}
