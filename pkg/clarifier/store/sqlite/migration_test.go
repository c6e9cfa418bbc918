package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/cognicore/clarifier/pkg/clarifier/store"
)

// TestSchemaCreationIdempotent tests that running initSchema multiple times is safe
func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Open database: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := initSchema(ctx, db); err != nil {
			t.Fatalf("initSchema iteration %d: %v", i, err)
		}
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	if err != nil {
		t.Fatalf("Count tables: %v", err)
	}

	expected := 2 // descriptions, runs
	if count != expected {
		t.Errorf("Expected %d tables, got %d", expected, count)
	}
}

// TestReopenPreservesData tests that reopening a database keeps imported rows
func TestReopenPreservesData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if _, err := st.ImportDescriptions(ctx, []store.Description{
		{Source: "webisa", Term: "apple", Text: "fruit", Freq: 10},
	}); err != nil {
		t.Fatalf("ImportDescriptions: %v", err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	got, err := st.Descriptions(ctx, "webisa", "apple", 5)
	if err != nil {
		t.Fatalf("Descriptions: %v", err)
	}
	if len(got) != 1 || got[0].Text != "fruit" {
		t.Errorf("after reopen got %+v", got)
	}
}
