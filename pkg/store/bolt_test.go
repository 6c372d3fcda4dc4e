package store

import (
	"path/filepath"
	"testing"

	"github.com/cragtrack/cragtrack/pkg/logger"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func openTestGateway(t *testing.T) Gateway {
	t.Helper()

	g, err := Open(Config{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
	}, logger.Noop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = g.Close()
	})

	return g
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	g := openTestGateway(t)

	want := record{Name: "alpha", Count: 3}
	if err := g.Save("rec", want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var got record
	found, err := g.Load("rec", &got)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !found {
		t.Fatal("Load() found = false, want true")
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoadAbsentKey(t *testing.T) {
	t.Parallel()

	g := openTestGateway(t)

	var got record
	found, err := g.Load("missing", &got)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if found {
		t.Error("Load() found = true, want false")
	}
}

func TestDeleteRecord(t *testing.T) {
	t.Parallel()

	g := openTestGateway(t)

	if err := g.Save("rec", record{Name: "gone"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := g.Delete("rec"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var got record
	found, err := g.Load("rec", &got)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if found {
		t.Error("record still present after Delete()")
	}

	// Deleting an absent key succeeds.
	if err := g.Delete("rec"); err != nil {
		t.Errorf("Delete() of absent key error = %v", err)
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	t.Parallel()

	g := openTestGateway(t)

	if err := g.Save("", record{}); err != ErrEmptyKey {
		t.Errorf("Save(\"\") error = %v, want ErrEmptyKey", err)
	}
	var got record
	if _, err := g.Load("", &got); err != ErrEmptyKey {
		t.Errorf("Load(\"\") error = %v, want ErrEmptyKey", err)
	}
	if err := g.Delete(""); err != ErrEmptyKey {
		t.Errorf("Delete(\"\") error = %v, want ErrEmptyKey", err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	t.Parallel()

	g := openTestGateway(t)

	if err := g.Save("rec", record{Name: "first"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := g.Save("rec", record{Name: "second"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var got record
	if _, err := g.Load("rec", &got); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Name != "second" {
		t.Errorf("Name = %q, want %q", got.Name, "second")
	}
}

func TestRecordsSurviveReopen(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	g, err := Open(Config{DBPath: dbPath}, logger.Noop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := g.Save("rec", record{Name: "durable", Count: 7}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(Config{DBPath: dbPath}, logger.Noop())
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer reopened.Close() // nolint:errcheck

	var got record
	found, err := reopened.Load("rec", &got)
	if err != nil || !found {
		t.Fatalf("Load() after reopen = found=%v, err=%v", found, err)
	}
	if got.Name != "durable" || got.Count != 7 {
		t.Errorf("Load() = %+v, want durable/7", got)
	}
}
