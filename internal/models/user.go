package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// User is the authenticated CMS account returned by users/me.
type User struct {
	ID         int64  `json:"id"`
	DocumentID string `json:"documentId,omitempty"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`
}

// Viewer summarises the visitor for the home page header.
type Viewer struct {
	Username     string `json:"username"`
	Abbreviation string `json:"abbreviation"`
	UserType     string `json:"userType"`
	LoggedIn     bool   `json:"loggedIn"`
}

const (
	defaultViewerName    = "User"
	defaultAbbreviation  = "U"
	viewerTypeCollege    = "college"
	abbreviationRuneSize = 2
)

var upper = cases.Upper(language.Und)

// NewViewer builds the header summary. A nil user yields the anonymous viewer.
func NewViewer(u *User) Viewer {
	v := Viewer{
		Username:     defaultViewerName,
		Abbreviation: defaultAbbreviation,
		UserType:     viewerTypeCollege,
	}
	if u == nil {
		return v
	}
	v.LoggedIn = true
	name := strings.TrimSpace(u.Username)
	if name == "" {
		return v
	}
	v.Username = name
	runes := []rune(name)
	if len(runes) > abbreviationRuneSize {
		runes = runes[:abbreviationRuneSize]
	}
	v.Abbreviation = upper.String(string(runes))
	return v
}
