package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/SchoolClinic/internal/metrics"
	"github.com/atinyakov/SchoolClinic/internal/models"
)

// recentLimit is how many requests the dashboard lists.
const recentLimit = 5

// ClinicRepository defines the persistence operations needed by ClinicService.
type ClinicRepository interface {
	// Students returns the whole students collection.
	Students(ctx context.Context) ([]models.Student, error)
	// Inventory returns the whole inventory collection.
	Inventory(ctx context.Context) ([]models.InventoryItem, error)
	// SaveDispense overwrites students and inventory as one unit.
	SaveDispense(ctx context.Context, students []models.Student, items []models.InventoryItem) error
}

// ClinicService serves the catalog views and performs dispensing.
type ClinicService struct {
	repo ClinicRepository
	now  func() time.Time
	log  *zap.Logger
	// mu makes each dispense a single read-modify-write.
	mu sync.Mutex
}

// NewClinicService constructs a ClinicService. now stamps history entries;
// nil means time.Now.
func NewClinicService(repo ClinicRepository, now func() time.Time, log *zap.Logger) *ClinicService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ClinicService{repo: repo, now: now, log: log}
}

// Dashboard counts students, items and low-stock items and lists the most
// recent requests across all students, newest first.
func (s *ClinicService) Dashboard(ctx context.Context) (models.Dashboard, error) {
	students, err := s.repo.Students(ctx)
	if err != nil {
		return models.Dashboard{}, err
	}
	items, err := s.repo.Inventory(ctx)
	if err != nil {
		return models.Dashboard{}, err
	}

	d := models.Dashboard{
		StudentCount: len(students),
		ItemCount:    len(items),
	}
	for _, it := range items {
		if it.Low() {
			d.LowStockCount++
		}
	}

	var recent []models.RecentRequest
	for _, st := range students {
		for _, h := range st.History {
			recent = append(recent, models.RecentRequest{StudentName: st.Name, HistoryEntry: h})
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return historyDate(recent[i].Date).After(historyDate(recent[j].Date))
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	d.Recent = recent
	return d, nil
}

// historyDate parses an entry date. Unparseable dates sort as the oldest.
func historyDate(s string) time.Time {
	t, err := time.Parse(models.HistoryDateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Students returns the students whose name contains query, ignoring case.
// An empty query matches everyone.
func (s *ClinicService) Students(ctx context.Context, query string) ([]models.Student, error) {
	students, err := s.repo.Students(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return students, nil
	}
	q := strings.ToLower(query)
	filtered := make([]models.Student, 0, len(students))
	for _, st := range students {
		if strings.Contains(strings.ToLower(st.Name), q) {
			filtered = append(filtered, st)
		}
	}
	return filtered, nil
}

// Student looks a student up by id. ok is false when no student has that id.
func (s *ClinicService) Student(ctx context.Context, id int) (models.Student, bool, error) {
	students, err := s.repo.Students(ctx)
	if err != nil {
		return models.Student{}, false, err
	}
	i := findStudent(students, id)
	if i < 0 {
		return models.Student{}, false, nil
	}
	return students[i], true, nil
}

// Inventory returns every stocked medicine.
func (s *ClinicService) Inventory(ctx context.Context) ([]models.InventoryItem, error) {
	return s.repo.Inventory(ctx)
}

// Dispense gives req.Quantity units of a medicine to a student: it lowers the
// item's stock, appends a history entry to the student and persists both
// collections together. Every check happens before anything is changed.
func (s *ClinicService) Dispense(ctx context.Context, req models.DispenseRequest) (models.HistoryEntry, error) {
	if req.Quantity <= 0 {
		metrics.RecordDispense("invalid")
		return models.HistoryEntry{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.repo.Students(ctx)
	if err != nil {
		return models.HistoryEntry{}, err
	}
	items, err := s.repo.Inventory(ctx)
	if err != nil {
		return models.HistoryEntry{}, err
	}

	si := findStudent(students, req.StudentID)
	if si < 0 {
		metrics.RecordDispense("invalid")
		return models.HistoryEntry{}, fmt.Errorf("student %d: %w", req.StudentID, ErrStudentNotFound)
	}
	ii := findItem(items, req.MedicineID)
	if ii < 0 {
		metrics.RecordDispense("invalid")
		return models.HistoryEntry{}, fmt.Errorf("medicine %d: %w", req.MedicineID, ErrMedicineNotFound)
	}
	if items[ii].Stock < req.Quantity {
		metrics.RecordDispense("insufficient_stock")
		return models.HistoryEntry{}, ErrInsufficientStock
	}

	items[ii].Stock -= req.Quantity
	entry := models.HistoryEntry{
		Date:         s.now().Format(models.HistoryDateLayout),
		MedicineName: items[ii].Name,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
	}
	students[si].History = append(students[si].History, entry)

	if err := s.repo.SaveDispense(ctx, students, items); err != nil {
		metrics.RecordDispense("error")
		return models.HistoryEntry{}, fmt.Errorf("dispense: %w", err)
	}

	metrics.RecordDispense("ok")
	metrics.ObserveInventory(items)
	s.log.Info("medicine dispensed",
		zap.Int("student_id", req.StudentID),
		zap.String("medicine", entry.MedicineName),
		zap.Int("quantity", req.Quantity),
		zap.Int("stock_left", items[ii].Stock),
	)
	return entry, nil
}

func findStudent(students []models.Student, id int) int {
	for i := range students {
		if students[i].ID == id {
			return i
		}
	}
	return -1
}

func findItem(items []models.InventoryItem, id int) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
