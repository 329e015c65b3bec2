package database_test

import (
	"path/filepath"
	"testing"

	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/database"
	"task-tracker/backend/internal/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			Path:         filepath.Join(t.TempDir(), "todo.db"),
			MaxOpenConns: 5,
			MaxIdleConns: 2,
		},
	}
}

func TestOpenAndMigrate(t *testing.T) {
	cfg := testConfig(t)

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	for _, table := range []string{"users", "todos"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %q to exist", table)
		}
	}

	user := models.User{Username: "alice", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}

	todo := models.Todo{UserID: user.ID, Title: "task", Category: models.CategoryWork}
	if err := db.Create(&todo).Error; err != nil {
		t.Fatalf("Failed to insert todo: %v", err)
	}
	if todo.CreatedAt.IsZero() {
		t.Error("Expected created_at to be assigned on insert")
	}
}

func TestMigrateAddsMissingColumns(t *testing.T) {
	cfg := testConfig(t)

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// A database from before the category column existed gains it on
	// migration.
	db.Exec(`CREATE TABLE todos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		due_date TEXT,
		is_done NUMERIC NOT NULL DEFAULT 0,
		created_at DATETIME
	)`)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if !db.Migrator().HasColumn(&models.Todo{}, "category") {
		t.Error("Expected migration to add the category column")
	}
}
