package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Media is an uploaded file as the CMS describes it.
type Media struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name,omitempty"`
	URL     string          `json:"url"`
	Mime    string          `json:"mime,omitempty"`
	Size    float64         `json:"size,omitempty"`
	Formats json.RawMessage `json:"formats,omitempty"`
}

// StudentProfile is the CMS record for a student.
type StudentProfile struct {
	ID             int64           `json:"id,omitempty"`
	DocumentID     string          `json:"documentId,omitempty"`
	StudentID      string          `json:"studentId"`
	Name           string          `json:"name"`
	Email          string          `json:"email,omitempty"`
	About          string          `json:"about,omitempty"`
	College        string          `json:"college,omitempty"`
	Course         string          `json:"course,omitempty"`
	Department     string          `json:"department,omitempty"`
	GraduationYear FlexString      `json:"graduationYear,omitempty"`
	Year           FlexString      `json:"year,omitempty"`
	Location       string          `json:"location,omitempty"`
	Skills         []string        `json:"skills,omitempty"`
	Interests      []string        `json:"interests,omitempty"`
	AvatarURL      string          `json:"avatarUrl,omitempty"`
	ProfilePic     *Media          `json:"profilePic,omitempty"`
	BackgroundImg  *Media          `json:"backgroundImg,omitempty"`
	Followers      json.RawMessage `json:"followers,omitempty"`
	Following      json.RawMessage `json:"following,omitempty"`
	User           json.RawMessage `json:"user,omitempty"`
	Projects       json.RawMessage `json:"projects,omitempty"`
	Clubs          json.RawMessage `json:"clubs,omitempty"`
	Internships    json.RawMessage `json:"internships,omitempty"`
	CreatedAt      *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time      `json:"updatedAt,omitempty"`
}

// Complete reports whether the student has filled the fields shown on their card.
func (p StudentProfile) Complete() bool {
	return p.Name != "" &&
		p.College != "" &&
		p.Course != "" &&
		p.GraduationYear != "" &&
		p.About != ""
}

// StudentProfileInput is the write payload for student profiles. Empty fields
// are omitted so updates leave them untouched.
type StudentProfileInput struct {
	StudentID       string   `json:"studentId,omitempty" validate:"required"`
	Name            string   `json:"name,omitempty" validate:"required"`
	Email           string   `json:"email,omitempty" validate:"omitempty,email"`
	About           string   `json:"about,omitempty"`
	College         string   `json:"college,omitempty"`
	Course          string   `json:"course,omitempty"`
	GraduationYear  string   `json:"graduationYear,omitempty"`
	Location        string   `json:"location,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	Interests       []string `json:"interests,omitempty"`
	ProfilePic      *int64   `json:"profilePic,omitempty"`
	BackgroundImage *int64   `json:"backgroundImage,omitempty"`
}

// Normalize trims text fields and drops blank skills and interests.
func (in StudentProfileInput) Normalize() StudentProfileInput {
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.College = strings.TrimSpace(in.College)
	in.Course = strings.TrimSpace(in.Course)
	in.GraduationYear = strings.TrimSpace(in.GraduationYear)
	in.Location = strings.TrimSpace(in.Location)
	in.About = strings.TrimSpace(in.About)
	in.Skills = compact(in.Skills)
	in.Interests = compact(in.Interests)
	return in
}

func compact(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
