package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) (*SQLiteKV, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "testdesk-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}

	store := NewSQLiteKV(filepath.Join(tmpDir, "test.db"))
	if err := store.Open(); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("open database: %v", err)
	}

	if err := store.Migrate(); err != nil {
		store.Close()
		os.RemoveAll(tmpDir)
		t.Fatalf("migrate database: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func TestSQLiteKV_OpenRequiresPath(t *testing.T) {
	if err := NewSQLiteKV("").Open(); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSQLiteKV_Migrate(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	for _, table := range []string{"kv", "schema_migrations"} {
		var count int
		err := store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
		if err != nil {
			t.Errorf("table %s should exist: %v", table, err)
		}
	}

	var version int
	if err := store.DB().QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		t.Fatalf("read version: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("schema version = %d, want %d", version, len(migrations))
	}

	// Running again is a no-op.
	if err := store.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestSQLiteKV_Contract(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	testKVContract(t, store)
}

func TestSQLiteKV_PersistsAcrossReopen(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "reopen.db")
	ctx := context.Background()

	kv, err := Open(Options{Driver: DriverSQLite, Path: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := kv.Set(ctx, KeyTesters, []byte(`["T1"]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	kv.Close()

	kv, err = Open(Options{Driver: DriverSQLite, Path: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer kv.Close()

	got, ok, err := kv.Get(ctx, KeyTesters)
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if string(got) != `["T1"]` {
		t.Errorf("value = %s", got)
	}
}

func TestSQLiteKV_ClosedStore(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	store.Close()

	if _, _, err := store.Get(context.Background(), "k"); err != ErrClosed {
		t.Errorf("get on closed store err = %v", err)
	}
	if err := store.Ping(context.Background()); err != ErrClosed {
		t.Errorf("ping on closed store err = %v", err)
	}
}
