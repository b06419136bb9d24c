package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/pkg/cms"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
	"github.com/fomo-campus/fomo-portal/pkg/export"
)

const (
	directoryPrefix = "college:"
	allDirectories  = directoryPrefix + "*"

	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// directoryKey scopes a cached listing to one college and one CMS token, so a
// hit is only served to the token whose CMS call filled it.
func directoryKey(collegeName string, src cms.TokenSource) string {
	token, _ := src.BearerToken()
	sum := sha256.Sum256([]byte(token))
	return directoryPrefix + collegeName + ":" + hex.EncodeToString(sum[:8])
}

// directoryPattern matches every cached listing of collegeName.
func directoryPattern(collegeName string) string {
	return directoryPrefix + globEscaper.Replace(collegeName) + ":*"
}

type collegeResolver interface {
	Current(ctx context.Context, session *models.Session) (*models.CollegeProfile, error)
}

type studentLister interface {
	ListByCollege(ctx context.Context, src cms.TokenSource, collegeName string) ([]models.StudentProfile, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered roster download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// DirectoryService lists the students of the session college.
type DirectoryService struct {
	students studentLister
	colleges collegeResolver
	cache    *CacheService
	assetURL func(string) string
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time
}

// DirectoryConfig tunes DirectoryService.
type DirectoryConfig struct {
	CacheTTL time.Duration
	AssetURL func(string) string
}

// NewDirectoryService constructs DirectoryService.
func NewDirectoryService(students studentLister, colleges collegeResolver, cache *CacheService, cfg DirectoryConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &DirectoryService{
		students: students,
		colleges: colleges,
		cache:    cache,
		assetURL: cfg.AssetURL,
		csv:      csv,
		pdf:      pdf,
		logger:   logger,
		ttl:      cfg.CacheTTL,
		now:      time.Now,
	}
}

// CollegeName returns the college the session belongs to, resolving and
// remembering it when the session does not carry one.
func (s *DirectoryService) CollegeName(ctx context.Context, session *models.Session) (string, error) {
	if !session.Authenticated() {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "authentication token missing")
	}
	if session.CollegeName != "" {
		return session.CollegeName, nil
	}
	profile, err := s.colleges.Current(ctx, session)
	if err != nil {
		return "", err
	}
	if profile.CollegeName == "" {
		return "", appErrors.Clone(appErrors.ErrNotFound, "college profile has no name")
	}
	session.CollegeName = profile.CollegeName
	return profile.CollegeName, nil
}

// StudentListing is the student page of one college.
type StudentListing struct {
	College  string           `json:"college"`
	Students []models.Student `json:"students"`
	Cached   bool             `json:"-"`
}

// ListStudents returns the listing projection for the session college.
func (s *DirectoryService) ListStudents(ctx context.Context, session *models.Session) (*StudentListing, error) {
	college, err := s.CollegeName(ctx, session)
	if err != nil {
		return nil, err
	}

	key := directoryKey(college, session)
	var cached []models.Student
	if s.cache.Get(ctx, key, &cached) {
		return &StudentListing{College: college, Students: cached, Cached: true}, nil
	}

	profiles, err := s.students.ListByCollege(ctx, session, college)
	if err != nil {
		return nil, err
	}
	students := models.NewStudents(profiles, s.assetURL)
	s.cache.Set(ctx, key, students, s.ttl)
	return &StudentListing{College: college, Students: students}, nil
}

// Export renders the session college's roster as csv or pdf.
func (s *DirectoryService) Export(ctx context.Context, session *models.Session, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	listing, err := s.ListStudents(ctx, session)
	if err != nil {
		return nil, err
	}
	college := listing.College
	dataset := rosterDataset(listing.Students)
	base := fmt.Sprintf("students-%s-%s", slug(college), s.now().UTC().Format("20060102"))

	var body []byte
	file := &ExportFile{}
	switch format {
	case ExportFormatPDF:
		body, err = s.pdf.Render(dataset, "Students of "+college)
		file.Filename = base + ".pdf"
		file.ContentType = "application/pdf"
	default:
		body, err = s.csv.Render(dataset)
		file.Filename = base + ".csv"
		file.ContentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		s.logger.Error("render roster", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	file.Body = body
	return file, nil
}

func rosterDataset(students []models.Student) export.Dataset {
	dataset := export.Dataset{
		Columns: []export.Column{
			{Key: "name", Title: "Name", Width: 2},
			{Key: "email", Title: "Email", Width: 2.5},
			{Key: "department", Title: "Department", Width: 1.5},
			{Key: "year", Title: "Year"},
			{Key: "status", Title: "Status"},
			{Key: "skills", Title: "Skills", Width: 2.5},
		},
		Rows: make([]map[string]string, 0, len(students)),
	}
	for _, st := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"name":       st.Name,
			"email":      st.Email,
			"department": st.Department,
			"year":       st.Year,
			"status":     st.Status,
			"skills":     strings.Join(st.Skills, ", "),
		})
	}
	return dataset
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "college"
	}
	return out
}
