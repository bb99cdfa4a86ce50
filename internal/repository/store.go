// Package repository exposes the clinic's named collections on top of a
// storage.KV. Every read returns the whole collection and every save
// overwrites it.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atinyakov/SchoolClinic/internal/models"
	"github.com/atinyakov/SchoolClinic/internal/storage"
)

// Keys under which the collections are persisted.
const (
	KeyUsers        = "users"
	KeyStudents     = "students"
	KeyInventory    = "inventory"
	KeyLoggedInUser = "loggedInUser"
)

// ErrDuplicateID is returned when a save would store two records with the same id.
var ErrDuplicateID = errors.New("duplicate id")

// Store reads and writes the clinic collections.
type Store struct {
	kv storage.KV
}

// NewStore creates a Store backed by kv.
func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// SeedStudents returns the students written on first run.
func SeedStudents() []models.Student {
	return []models.Student{
		{ID: 1, Name: "John Doe", YearCourse: "Grade 10 - A", History: []models.HistoryEntry{}},
		{ID: 2, Name: "Jane Smith", YearCourse: "Grade 11 - STEM", History: []models.HistoryEntry{}},
		{ID: 3, Name: "Peter Jones", YearCourse: "Grade 12 - HUMSS", History: []models.HistoryEntry{}},
	}
}

// SeedInventory returns the inventory written on first run.
func SeedInventory() []models.InventoryItem {
	return []models.InventoryItem{
		{ID: 1, Name: "Paracetamol", Stock: 50},
		{ID: 2, Name: "Ibuprofen", Stock: 25},
		{ID: 3, Name: "Betadine", Stock: 10},
		{ID: 4, Name: "Band-aid", Stock: 5},
	}
}

// Init writes the seed value of every collection that is not stored yet.
// Existing collections are left untouched.
func (s *Store) Init(ctx context.Context) error {
	seeds := map[string]any{
		KeyUsers:     []models.Account{},
		KeyStudents:  SeedStudents(),
		KeyInventory: SeedInventory(),
	}

	missing := make(map[string][]byte)
	for key, seed := range seeds {
		_, err := s.kv.Get(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("check %s: %w", key, err)
		}
		b, err := json.Marshal(seed)
		if err != nil {
			return fmt.Errorf("encode seed %s: %w", key, err)
		}
		missing[key] = b
	}
	if len(missing) == 0 {
		return nil
	}
	if err := s.kv.PutMany(ctx, missing); err != nil {
		return fmt.Errorf("seed collections: %w", err)
	}
	return nil
}

// Accounts returns every account in signup order.
func (s *Store) Accounts(ctx context.Context) ([]models.Account, error) {
	accounts := []models.Account{}
	if err := s.load(ctx, KeyUsers, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// SaveAccounts overwrites the accounts collection.
func (s *Store) SaveAccounts(ctx context.Context, accounts []models.Account) error {
	seen := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		if _, dup := seen[a.Username]; dup {
			return fmt.Errorf("account %q: %w", a.Username, ErrDuplicateID)
		}
		seen[a.Username] = struct{}{}
	}
	return s.save(ctx, KeyUsers, accounts)
}

// Students returns every student in stored order.
func (s *Store) Students(ctx context.Context) ([]models.Student, error) {
	students := []models.Student{}
	if err := s.load(ctx, KeyStudents, &students); err != nil {
		return nil, err
	}
	for i := range students {
		if students[i].History == nil {
			students[i].History = []models.HistoryEntry{}
		}
	}
	return students, nil
}

// SaveStudents overwrites the students collection.
func (s *Store) SaveStudents(ctx context.Context, students []models.Student) error {
	if err := checkStudentIDs(students); err != nil {
		return err
	}
	return s.save(ctx, KeyStudents, students)
}

// Inventory returns every inventory item in stored order.
func (s *Store) Inventory(ctx context.Context) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	if err := s.load(ctx, KeyInventory, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveInventory overwrites the inventory collection.
func (s *Store) SaveInventory(ctx context.Context, items []models.InventoryItem) error {
	if err := checkItemIDs(items); err != nil {
		return err
	}
	return s.save(ctx, KeyInventory, items)
}

// SaveDispense overwrites students and inventory together. Either both
// collections are stored or neither is.
func (s *Store) SaveDispense(ctx context.Context, students []models.Student, items []models.InventoryItem) error {
	if err := checkStudentIDs(students); err != nil {
		return err
	}
	if err := checkItemIDs(items); err != nil {
		return err
	}
	sb, err := json.Marshal(students)
	if err != nil {
		return fmt.Errorf("encode students: %w", err)
	}
	ib, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	if err := s.kv.PutMany(ctx, map[string][]byte{KeyStudents: sb, KeyInventory: ib}); err != nil {
		return fmt.Errorf("save dispense: %w", err)
	}
	return nil
}

// LoggedInUser returns the persisted session identity, if any.
func (s *Store) LoggedInUser(ctx context.Context) (string, bool, error) {
	var user string
	b, err := s.kv.Get(ctx, KeyLoggedInUser)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s: %w", KeyLoggedInUser, err)
	}
	if err := json.Unmarshal(b, &user); err != nil {
		return "", false, fmt.Errorf("decode %s: %w", KeyLoggedInUser, err)
	}
	return user, user != "", nil
}

// SetLoggedInUser persists the session identity.
func (s *Store) SetLoggedInUser(ctx context.Context, username string) error {
	return s.save(ctx, KeyLoggedInUser, username)
}

// ClearLoggedInUser removes the persisted session identity.
func (s *Store) ClearLoggedInUser(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyLoggedInUser); err != nil {
		return fmt.Errorf("clear %s: %w", KeyLoggedInUser, err)
	}
	return nil
}

// load decodes key into dst. A missing key leaves dst unchanged.
func (s *Store) load(ctx context.Context, key string, dst any) error {
	b, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, b); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func checkStudentIDs(students []models.Student) error {
	seen := make(map[int]struct{}, len(students))
	for _, st := range students {
		if _, dup := seen[st.ID]; dup {
			return fmt.Errorf("student %d: %w", st.ID, ErrDuplicateID)
		}
		seen[st.ID] = struct{}{}
	}
	return nil
}

func checkItemIDs(items []models.InventoryItem) error {
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("inventory item %d: %w", it.ID, ErrDuplicateID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}
