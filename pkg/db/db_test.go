package db

import (
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestDialectRejectsUnknownType(t *testing.T) {
	if _, err := Dialect(Config{Type: "oracle"}); err == nil {
		t.Fatal("expected an error for an unsupported database type")
	}
	for _, typ := range []string{"mysql", "postgres", "sqlite"} {
		if _, err := Dialect(Config{Type: typ}); err != nil {
			t.Fatalf("expected %s to resolve, got %v", typ, err)
		}
	}
}

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm sentinel", gorm.ErrDuplicatedKey, true},
		{"postgres", errors.New(`ERROR: duplicate key value violates unique constraint "ux_snapshot_period" (SQLSTATE 23505)`), true},
		{"mysql", errors.New("Error 1062 (23000): Duplicate entry"), true},
		{"sqlite", errors.New("constraint failed: UNIQUE constraint failed: financial_snapshots.org_id (2067)"), true},
		{"unrelated", errors.New("connection refused"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsDuplicateKeyErr(c.err); got != c.want {
				t.Fatalf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestNewTestIsIsolated(t *testing.T) {
	first, err := NewTest()
	if err != nil {
		t.Fatalf("new test db: %v", err)
	}
	second, err := NewTest()
	if err != nil {
		t.Fatalf("second test db: %v", err)
	}

	if err := first.Exec(`CREATE TABLE probe (id INTEGER PRIMARY KEY)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	var count int64
	if err := second.Raw(`SELECT COUNT(*) FROM sqlite_master WHERE name = 'probe'`).Scan(&count).Error; err != nil {
		t.Fatalf("inspect second db: %v", err)
	}
	if count != 0 {
		t.Fatal("expected each test database to be isolated")
	}
}
