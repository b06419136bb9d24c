package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/pkg/cms"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	ttls     map[string]time.Duration
	saveErr  error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: map[string]models.Session{}, ttls: map[string]time.Duration{}}
}

func (m *mockSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	return &s, nil
}

func (m *mockSessionStore) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = *session
	m.ttls[session.ID] = ttl
	return nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

type mockUsers struct {
	user   *models.User
	err    error
	calls  int
	tokens []string
}

func (m *mockUsers) Me(ctx context.Context, src cms.TokenSource) (*models.User, error) {
	m.calls++
	token, _ := src.BearerToken()
	m.tokens = append(m.tokens, token)
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

type mockCollegeRepo struct {
	byUser     map[int64]*models.CollegeProfile
	byOwner    map[string]*models.CollegeProfile
	created    []models.CollegeProfileInput
	updated    map[string]models.CollegeProfileInput
	deleted    []string
	createErr  error
	findErr    error
	findCalls  int
	ownerCalls int
}

func (m *mockCollegeRepo) FindForUser(ctx context.Context, src cms.TokenSource, userID int64) (*models.CollegeProfile, error) {
	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	if p, ok := m.byUser[userID]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "college-profiles not found")
}

func (m *mockCollegeRepo) FindByOwnerDocumentID(ctx context.Context, src cms.TokenSource, documentID string) (*models.CollegeProfile, error) {
	m.ownerCalls++
	if p, ok := m.byOwner[documentID]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "college-profiles not found")
}

func (m *mockCollegeRepo) Create(ctx context.Context, src cms.TokenSource, in models.CollegeProfileInput) (*models.CollegeProfile, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, in)
	return &models.CollegeProfile{ID: int64(len(m.created)), DocumentID: "new", CollegeName: in.CollegeName}, nil
}

func (m *mockCollegeRepo) Update(ctx context.Context, src cms.TokenSource, documentID string, in models.CollegeProfileInput) (*models.CollegeProfile, error) {
	if m.updated == nil {
		m.updated = map[string]models.CollegeProfileInput{}
	}
	m.updated[documentID] = in
	return &models.CollegeProfile{DocumentID: documentID, CollegeName: in.CollegeName, Description: in.Description}, nil
}

func (m *mockCollegeRepo) Delete(ctx context.Context, src cms.TokenSource, documentID string) error {
	m.deleted = append(m.deleted, documentID)
	return nil
}

type mockStudentRepo struct {
	byStudentID map[string]*models.StudentProfile
	byCollege   map[string][]models.StudentProfile
	listCalls   int
	created     []models.StudentProfileInput
	updated     map[string]models.StudentProfileInput
	err         error
}

func (m *mockStudentRepo) FindByStudentID(ctx context.Context, src cms.TokenSource, studentID string) (*models.StudentProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.byStudentID[studentID]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student-profiles not found")
}

func (m *mockStudentRepo) ListByCollege(ctx context.Context, src cms.TokenSource, collegeName string) ([]models.StudentProfile, error) {
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.byCollege[collegeName], nil
}

func (m *mockStudentRepo) Create(ctx context.Context, src cms.TokenSource, in models.StudentProfileInput) (*models.StudentProfile, error) {
	m.created = append(m.created, in)
	return &models.StudentProfile{ID: 1, DocumentID: "p1", StudentID: in.StudentID, Name: in.Name, College: in.College}, nil
}

func (m *mockStudentRepo) Update(ctx context.Context, src cms.TokenSource, documentID string, in models.StudentProfileInput) (*models.StudentProfile, error) {
	if m.updated == nil {
		m.updated = map[string]models.StudentProfileInput{}
	}
	m.updated[documentID] = in
	return &models.StudentProfile{DocumentID: documentID, Name: in.Name}, nil
}

type mockMedia struct {
	media *models.Media
	names []string
}

func (m *mockMedia) Upload(ctx context.Context, src cms.TokenSource, file cms.File) (*models.Media, error) {
	m.names = append(m.names, file.Name)
	return m.media, nil
}

type memoryCache struct {
	values      map[string]interface{}
	invalidated []string
	getErr      error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]interface{}{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	students, ok := v.([]models.Student)
	target, okDest := dest.(*[]models.Student)
	if !ok || !okDest {
		return errors.New("unexpected cache type")
	}
	*target = students
	return nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.values[key] = value
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	return nil
}
