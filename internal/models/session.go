package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the server-side store for what the browser used to keep locally.
type Session struct {
	ID          string                     `json:"id"`
	Token       string                     `json:"fomo_token,omitempty"`
	User        *User                      `json:"fomo_user,omitempty"`
	CollegeName string                     `json:"collegeName,omitempty"`
	Drafts      map[string]json.RawMessage `json:"drafts,omitempty"`
	CreatedAt   time.Time                  `json:"createdAt"`
	UpdatedAt   time.Time                  `json:"updatedAt"`
}

// BearerToken exposes the stored CMS token. A nil session has no token.
func (s *Session) BearerToken() (string, bool) {
	if s == nil {
		return "", false
	}
	token := strings.TrimSpace(s.Token)
	return token, token != ""
}

// Authenticated reports whether the session carries a CMS token.
func (s *Session) Authenticated() bool {
	_, ok := s.BearerToken()
	return ok
}

// Draft returns the raw draft stored under name.
func (s *Session) Draft(name string) (json.RawMessage, bool) {
	if s == nil || s.Drafts == nil {
		return nil, false
	}
	raw, ok := s.Drafts[name]
	return raw, ok
}

// SetDraft stores raw under name. A nil raw removes the draft.
func (s *Session) SetDraft(name string, raw json.RawMessage) {
	if raw == nil {
		delete(s.Drafts, name)
		return
	}
	if s.Drafts == nil {
		s.Drafts = make(map[string]json.RawMessage)
	}
	s.Drafts[name] = raw
}

// SessionClaims are carried by the signed session cookie.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionInput is posted by the login page once the CMS has issued a token.
type SessionInput struct {
	JWT  string `json:"jwt" validate:"required"`
	User *User  `json:"user,omitempty"`
}
