package database

import "testing"

func TestMigrationsFS_ContainsInitMigration(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("failed to read embedded migrations: %v", err)
	}

	var hasUp, hasDown bool
	for _, e := range entries {
		switch e.Name() {
		case "000001_init.up.sql":
			hasUp = true
		case "000001_init.down.sql":
			hasDown = true
		}
	}

	if !hasUp {
		t.Error("missing 000001_init.up.sql")
	}
	if !hasDown {
		t.Error("missing 000001_init.down.sql")
	}
}

func TestNewMigrator_InvalidURL_ReturnsError(t *testing.T) {
	_, err := NewMigrator("not-a-valid-url")
	if err == nil {
		t.Fatal("expected error for invalid database URL")
	}
}
