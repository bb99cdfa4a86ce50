package session

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	user     string
	loadErr  error
	setErr   error
	clearErr error
	cleared  bool
}

func (f *fakeStore) LoggedInUser(ctx context.Context) (string, bool, error) {
	return f.user, f.user != "", f.loadErr
}

func (f *fakeStore) SetLoggedInUser(ctx context.Context, username string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.user = username
	return nil
}

func (f *fakeStore) ClearLoggedInUser(ctx context.Context) error {
	f.cleared = true
	if f.clearErr != nil {
		return f.clearErr
	}
	f.user = ""
	return nil
}

func TestLoad_RestoresPersistedUser(t *testing.T) {
	s, err := Load(context.Background(), &fakeStore{user: "nurse"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if user, ok := s.User(); !ok || user != "nurse" {
		t.Errorf("User() = %q, %v; want %q, true", user, ok, "nurse")
	}
}

func TestLoad_Error(t *testing.T) {
	if _, err := Load(context.Background(), &fakeStore{loadErr: errors.New("io")}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSet_PersistsThenUpdates(t *testing.T) {
	store := &fakeStore{}
	s, _ := Load(context.Background(), store)

	if err := s.Set(context.Background(), "admin"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if store.user != "admin" {
		t.Errorf("store user = %q; want %q", store.user, "admin")
	}
	if user, ok := s.User(); !ok || user != "admin" {
		t.Errorf("User() = %q, %v", user, ok)
	}
}

func TestSet_FailureKeepsPreviousIdentity(t *testing.T) {
	store := &fakeStore{}
	s, _ := Load(context.Background(), store)
	store.setErr = errors.New("quota exceeded")

	if err := s.Set(context.Background(), "admin"); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := s.User(); ok {
		t.Error("session should stay logged out after a failed write")
	}
}

func TestClear(t *testing.T) {
	store := &fakeStore{user: "nurse"}
	s, _ := Load(context.Background(), store)

	if err := s.Clear(context.Background()); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if !store.cleared {
		t.Error("expected store to be cleared")
	}
	if _, ok := s.User(); ok {
		t.Error("expected no user after Clear")
	}
}

func TestClear_StoreErrorStillLogsOutInMemory(t *testing.T) {
	store := &fakeStore{user: "nurse", clearErr: errors.New("io")}
	s, _ := Load(context.Background(), store)

	if err := s.Clear(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := s.User(); ok {
		t.Error("expected in-memory session cleared even when persistence fails")
	}
}
