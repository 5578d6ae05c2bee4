package shared

import (
	"testing"
)

func TestRunMigrations(t *testing.T) {
	t.Run("applies all migrations to a fresh database", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("RunMigrations failed: %v", err)
		}

		tables := []string{"listeners", "listeners_sequence", "credentials", "taste_tracks", "taste_artists", "recommendations", "recommendations_sequence"}
		for _, table := range tables {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			if err != nil {
				t.Errorf("expected table %s to exist: %v", table, err)
			}
		}
	})

	t.Run("seeds sequence counters", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("RunMigrations failed: %v", err)
		}

		var value int
		if err := db.QueryRow("SELECT value FROM listeners_sequence WHERE id = 1").Scan(&value); err != nil {
			t.Fatalf("expected seeded listeners_sequence row: %v", err)
		}
		if value != 0 {
			t.Errorf("expected initial sequence value 0, got %d", value)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second run failed: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to count migrations: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 applied migration, got %d", count)
		}
	})
}

func TestRollbackMigration(t *testing.T) {
	t.Run("rolls back the latest migration", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("RunMigrations failed: %v", err)
		}
		if err := RollbackMigration(db); err != nil {
			t.Fatalf("RollbackMigration failed: %v", err)
		}

		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='listeners'").Scan(&name)
		if err == nil {
			t.Error("expected listeners table to be dropped")
		}
	})

	t.Run("errors when nothing to roll back", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := createMigrationsTable(db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error with no applied migrations, got nil")
		}
	})
}

func TestRemoveComments(t *testing.T) {
	input := "SELECT 1 -- trailing comment\n-- full line comment\nFROM t"
	got := removeComments(input)
	want := "SELECT 1\nFROM t"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
