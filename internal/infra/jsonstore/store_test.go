package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := New(filepath.Join(t.TempDir(), "tempo.json"))
	if _, err := store.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return store
}

func TestStore_Contract(t *testing.T) {
	testutil.RepositoryContract(t, func(t *testing.T) domain.Repository {
		return newTestStore(t)
	})
}

func TestStore_Initialize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "tempo.json")

	store := New(path)
	if store.IsInitialized() {
		t.Fatal("IsInitialized() = true before Initialize")
	}

	// Initialize should create the file
	created, err := store.Initialize()
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if !created {
		t.Error("Initialize() created = false, want true")
	}

	// File should exist with the current version
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("store file not created: %v", err)
	}
	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		t.Fatalf("store file is not JSON: %v", err)
	}
	if data.Meta.Version != schemaVersion {
		t.Errorf("version = %d, want %d", data.Meta.Version, schemaVersion)
	}

	// Initialize again should be idempotent
	created, err = store.Initialize()
	if err != nil {
		t.Fatalf("Initialize() second call error = %v", err)
	}
	if created {
		t.Error("Initialize() second call created = true, want false")
	}
}

func TestStore_NotInitialized(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "tempo.json"))

	_, err := store.ListTasks(context.Background(), domain.TaskFilter{})
	if !errors.Is(err, domain.ErrNotInitialized) {
		t.Errorf("ListTasks() error = %v, want ErrNotInitialized", err)
	}
}

func TestStore_NewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempo.json")
	if err := os.WriteFile(path, []byte(`{"meta":{"version":99}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := New(path).ListTasks(context.Background(), domain.TaskFilter{})
	if err == nil {
		t.Fatal("ListTasks() error = nil, want version error")
	}
}

func TestStore_MissingID(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveTask(context.Background(), &domain.Task{Title: "no id"})
	if !errors.Is(err, domain.ErrMissingID) {
		t.Errorf("SaveTask() error = %v, want ErrMissingID", err)
	}
}

func TestStore_SavedCopyIsIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	task := &domain.Task{ID: "t1", Title: "Original", Type: domain.TaskTypeRegular, Priority: domain.PriorityMedium}
	if err := store.SaveTask(ctx, task); err != nil {
		t.Fatal(err)
	}

	task.Title = "Mutated after save"

	got, err := store.GetTask(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Original" {
		t.Errorf("Title = %q, want %q", got.Title, "Original")
	}
}

func TestStore_ConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempo.json")
	if _, err := New(path).Initialize(); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// Separate Store values share only the file, like separate processes
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := New(path)
			session := &domain.TimeSession{ID: domain.NewID(), TaskID: "t1", StartTime: now.Add(time.Duration(i) * time.Minute)}
			if err := s.SaveSession(context.Background(), session); err != nil {
				t.Errorf("SaveSession() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	sessions, err := New(path).ListSessions(context.Background(), domain.SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 20 {
		t.Errorf("len(sessions) = %d, want 20 (lost update)", len(sessions))
	}
}
