package models

import (
	"fmt"
	"strings"
	"time"
)

// CollegeProfile is the CMS record describing a college account.
type CollegeProfile struct {
	ID                int64      `json:"id,omitempty"`
	DocumentID        string     `json:"documentId,omitempty"`
	CollegeName       string     `json:"collegeName"`
	Description       string     `json:"description"`
	Ranking           FlexString `json:"ranking"`
	Location          string     `json:"location"`
	NumberOfStudents  FlexString `json:"numberOfStudents"`
	EstablishmentDate string     `json:"establishmentDate"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
	PublishedAt       *time.Time `json:"publishedAt,omitempty"`
}

// CollegeProfileInput is the write payload for college profiles.
type CollegeProfileInput struct {
	CollegeName       string `json:"collegeName" validate:"required"`
	Description       string `json:"description" validate:"required"`
	Ranking           string `json:"ranking"`
	Location          string `json:"location" validate:"required"`
	NumberOfStudents  string `json:"numberOfStudents" validate:"required"`
	EstablishmentDate string `json:"establishmentDate" validate:"required"`
}

// Input returns the editable fields of the profile as a write payload.
func (p CollegeProfile) Input() CollegeProfileInput {
	return CollegeProfileInput{
		CollegeName:       p.CollegeName,
		Description:       p.Description,
		Ranking:           p.Ranking.String(),
		Location:          p.Location,
		NumberOfStudents:  p.NumberOfStudents.String(),
		EstablishmentDate: p.EstablishmentDate,
	}
}

// Complete reports whether every field the dashboard relies on is filled in.
func (p CollegeProfile) Complete() bool {
	return p.CollegeName != "" &&
		p.Description != "" &&
		p.Location != "" &&
		p.NumberOfStudents != "" &&
		p.EstablishmentDate != ""
}

// Apply sets form fields by their JSON names. Unknown names are rejected.
func (p *CollegeProfile) Apply(fields map[string]string) error {
	for name, value := range fields {
		switch name {
		case "collegeName":
			p.CollegeName = value
		case "description":
			p.Description = value
		case "ranking":
			p.Ranking = FlexString(value)
		case "location":
			p.Location = value
		case "numberOfStudents":
			p.NumberOfStudents = FlexString(value)
		case "establishmentDate":
			p.EstablishmentDate = value
		default:
			return fmt.Errorf("unknown college profile field %q", name)
		}
	}
	return nil
}

// Normalize trims surrounding whitespace from every field.
func (in CollegeProfileInput) Normalize() CollegeProfileInput {
	in.CollegeName = strings.TrimSpace(in.CollegeName)
	in.Description = strings.TrimSpace(in.Description)
	in.Ranking = strings.TrimSpace(in.Ranking)
	in.Location = strings.TrimSpace(in.Location)
	in.NumberOfStudents = strings.TrimSpace(in.NumberOfStudents)
	in.EstablishmentDate = strings.TrimSpace(in.EstablishmentDate)
	return in
}
