package models

import "strconv"

// Student is the row shown in a college's student listing.
type Student struct {
	ID             string   `json:"id"`
	DocumentID     string   `json:"documentId"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Department     string   `json:"department"`
	Year           string   `json:"year"`
	Status         string   `json:"status"`
	Course         string   `json:"course"`
	GraduationYear string   `json:"graduationYear"`
	Skills         []string `json:"skills"`
	AvatarURL      *string  `json:"avatarUrl"`
}

const (
	defaultStudentName  = "Unknown Student"
	defaultStudentEmail = "No email"
	studentStatusActive = "Active"
)

// NewStudent projects a CMS student profile onto a listing row. assetURL
// resolves relative media references and may be nil.
func NewStudent(p StudentProfile, assetURL func(string) string) Student {
	s := Student{
		ID:             strconv.FormatInt(p.ID, 10),
		DocumentID:     p.StudentID,
		Name:           orDefault(p.Name, defaultStudentName),
		Email:          orDefault(p.Email, defaultStudentEmail),
		Department:     orDefault(p.Department, p.Course),
		Year:           orDefault(p.Year.String(), p.GraduationYear.String()),
		Status:         studentStatusActive,
		Course:         p.Course,
		GraduationYear: p.GraduationYear.String(),
		Skills:         p.Skills,
	}
	if s.Skills == nil {
		s.Skills = []string{}
	}

	avatar := p.AvatarURL
	if avatar == "" && p.ProfilePic != nil && p.ProfilePic.URL != "" {
		avatar = p.ProfilePic.URL
		if assetURL != nil {
			avatar = assetURL(avatar)
		}
	}
	if avatar != "" {
		s.AvatarURL = &avatar
	}
	return s
}

// NewStudents projects every profile in order.
func NewStudents(profiles []StudentProfile, assetURL func(string) string) []Student {
	out := make([]Student, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, NewStudent(p, assetURL))
	}
	return out
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
