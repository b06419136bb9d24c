package cms

import "strings"

// TokenSource supplies the bearer token attached to every CMS call. A false
// second return means the caller is not authenticated and no request is sent.
type TokenSource interface {
	BearerToken() (string, bool)
}

// StaticToken is a TokenSource over a fixed token string.
type StaticToken string

// BearerToken implements TokenSource.
func (t StaticToken) BearerToken() (string, bool) {
	token := strings.TrimSpace(string(t))
	return token, token != ""
}

func tokenFrom(src TokenSource) (string, bool) {
	if src == nil {
		return "", false
	}
	token, ok := src.BearerToken()
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}
