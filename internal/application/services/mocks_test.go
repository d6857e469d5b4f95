package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/nexuscrm/fieldstudio/internal/domain/models"
	appErrors "github.com/nexuscrm/fieldstudio/pkg/errors"
	"github.com/stretchr/testify/mock"
)

// memDocuments is an in-memory DocumentRepository.
type memDocuments struct {
	mu   sync.Mutex
	docs map[string]*models.Document
	revs int
}

func newMemDocuments() *memDocuments {
	return &memDocuments{docs: map[string]*models.Document{}}
}

func (m *memDocuments) Get(_ context.Context, path string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[path]
	if !ok {
		return nil, appErrors.NewNotFoundError("Metadata", path)
	}
	c := *doc
	return &c, nil
}

func (m *memDocuments) List(_ context.Context, prefix string) ([]*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Document
	for p, doc := range m.docs {
		if strings.HasPrefix(p, prefix) {
			c := *doc
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *memDocuments) Create(_ context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.Path]; ok {
		return appErrors.NewConflictError("Metadata", "path", doc.Path)
	}
	m.store(doc)
	return nil
}

func (m *memDocuments) Put(_ context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(doc)
	return nil
}

func (m *memDocuments) store(doc *models.Document) {
	m.revs++
	doc.Revision = strings.Repeat("r", m.revs)
	c := *doc
	m.docs[doc.Path] = &c
}

func (m *memDocuments) content(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.docs[path]; ok {
		return string(doc.Content)
	}
	return ""
}

// MockObjectRepository is a mock implementation of ports.ObjectRepository
type MockObjectRepository struct {
	mock.Mock
}

func (m *MockObjectRepository) List(ctx context.Context) ([]models.ObjectRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ObjectRecord), args.Error(1)
}

func (m *MockObjectRepository) Get(ctx context.Context, apiName string) (*models.ObjectRecord, error) {
	args := m.Called(ctx, apiName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ObjectRecord), args.Error(1)
}

func (m *MockObjectRepository) Upsert(ctx context.Context, obj models.ObjectRecord) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

// MockSettingRepository is a mock implementation of ports.SettingRepository
type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) ListEnabled(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSettingRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSettingRepository) Upsert(ctx context.Context, code string, enabled bool) error {
	args := m.Called(ctx, code, enabled)
	return args.Error(0)
}

// knownObjects makes objects resolvable by name; every other name is not found.
func knownObjects(names ...string) *MockObjectRepository {
	repo := new(MockObjectRepository)
	for _, n := range names {
		repo.On("Get", mock.Anything, n).Return(&models.ObjectRecord{APIName: n, Label: n}, nil).Maybe()
	}
	repo.On("Get", mock.Anything, mock.Anything).Return(nil, appErrors.NewNotFoundError("Object", "")).Maybe()
	return repo
}
