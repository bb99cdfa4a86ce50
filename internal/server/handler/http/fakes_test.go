package http

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atinyakov/SchoolClinic/internal/models"
	"github.com/atinyakov/SchoolClinic/internal/view"
)

type mockClinic struct {
	students  []models.Student
	items     []models.InventoryItem
	recent    []models.RecentRequest
	dispensed []models.DispenseRequest
	err       error
	dispense  func(req models.DispenseRequest) (models.HistoryEntry, error)
}

func (m *mockClinic) Dashboard(ctx context.Context) (models.Dashboard, error) {
	return models.Dashboard{
		StudentCount: len(m.students),
		ItemCount:    len(m.items),
		Recent:       m.recent,
	}, m.err
}

func (m *mockClinic) Students(ctx context.Context, query string) ([]models.Student, error) {
	return m.students, m.err
}

func (m *mockClinic) Student(ctx context.Context, id int) (models.Student, bool, error) {
	for _, s := range m.students {
		if s.ID == id {
			return s, true, m.err
		}
	}
	return models.Student{}, false, m.err
}

func (m *mockClinic) Inventory(ctx context.Context) ([]models.InventoryItem, error) {
	return m.items, m.err
}

func (m *mockClinic) Dispense(ctx context.Context, req models.DispenseRequest) (models.HistoryEntry, error) {
	m.dispensed = append(m.dispensed, req)
	if m.dispense != nil {
		return m.dispense(req)
	}
	return models.HistoryEntry{MedicineName: "Band-aid", Quantity: req.Quantity, Reason: req.Reason}, nil
}

type mockAuth struct {
	loginFunc  func(username, password string) error
	signupFunc func(username, password, confirm string) error
	logouts    int
}

func (m *mockAuth) Login(ctx context.Context, username, password string) error {
	if m.loginFunc == nil {
		return nil
	}
	return m.loginFunc(username, password)
}

func (m *mockAuth) Signup(ctx context.Context, username, password, confirmPassword string) error {
	if m.signupFunc == nil {
		return nil
	}
	return m.signupFunc(username, password, confirmPassword)
}

func (m *mockAuth) Logout(ctx context.Context) error {
	m.logouts++
	return nil
}

func seededClinic() *mockClinic {
	return &mockClinic{
		students: []models.Student{
			{ID: 1, Name: "John Doe", YearCourse: "Grade 10 - A", History: []models.HistoryEntry{}},
			{ID: 2, Name: "Jane Smith", YearCourse: "Grade 11 - STEM", History: []models.HistoryEntry{
				{Date: "3/4/2025", MedicineName: "Ibuprofen", Quantity: 2, Reason: "Headache"},
			}},
		},
		items: []models.InventoryItem{
			{ID: 101, Name: "Paracetamol", Stock: 50},
			{ID: 104, Name: "Band-aid", Stock: 5},
		},
	}
}

func newViews(t *testing.T) *view.Renderer {
	t.Helper()
	v, err := view.New()
	require.NoError(t, err)
	return v
}

type staticIdentity string

func (s staticIdentity) User() (string, bool) { return string(s), s != "" }
