package lifecycle_test

import (
	"grievgo/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock implementing storage.Storage for lifecycle tests.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) IncrementMisuseStrikes(email string) (int, error) {
	args := m.Called(email)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) CreateGrievance(g *models.Grievance) error {
	args := m.Called(g)
	return args.Error(0)
}

func (m *MockStorage) SaveGrievance(g *models.Grievance) error {
	args := m.Called(g)
	return args.Error(0)
}

func (m *MockStorage) GetGrievanceByID(id string) (*models.Grievance, error) {
	args := m.Called(id)
	if g := args.Get(0); g != nil {
		return g.(*models.Grievance), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) GetGrievancesByEmail(email string) ([]models.Grievance, error) {
	args := m.Called(email)
	if gs := args.Get(0); gs != nil {
		return gs.([]models.Grievance), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) GetGrievancesByOrganization(org string) ([]models.Grievance, error) {
	args := m.Called(org)
	if gs := args.Get(0); gs != nil {
		return gs.([]models.Grievance), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) ListGrievances() ([]models.Grievance, error) {
	args := m.Called()
	if gs := args.Get(0); gs != nil {
		return gs.([]models.Grievance), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) AppendHistory(entry *models.HistoryEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockStorage) NextGrievanceSeq() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) PublishGrievanceEvent(ev models.GrievanceEvent) error {
	args := m.Called(ev)
	return args.Error(0)
}
