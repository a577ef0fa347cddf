package migration

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestUpStatementsInVersionOrder(t *testing.T) {
	statements, err := UpStatements()
	if err != nil {
		t.Fatalf("up statements: %v", err)
	}
	if len(statements) == 0 {
		t.Fatalf("expected embedded statements")
	}
	if !strings.Contains(statements[0], "invoices") {
		t.Fatalf("expected invoices table first, got %q", statements[0])
	}
	for _, stmt := range statements {
		if strings.HasPrefix(strings.ToUpper(stmt), "DROP") {
			t.Fatalf("down migration leaked into up statements: %q", stmt)
		}
	}
}

func TestApplySchemaIsIdempotent(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migration_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := ApplySchema(conn); err != nil {
			t.Fatalf("apply schema (run %d): %v", i+1, err)
		}
	}

	for _, table := range []string{"invoices", "subscription_mrr_snapshots", "usage_charges", "lifetime_usages"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
}
