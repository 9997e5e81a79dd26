package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestNewRejectsInvalidConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		connStr string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"bad url escape", "postgres://retro@localhost/%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.connStr)
			if !errors.Is(err, ErrInvalidConnectionString) {
				t.Errorf("New(%q) error = %v, want ErrInvalidConnectionString", tt.connStr, err)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"unique violation", &pq.Error{Code: "23505"}, true},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{"foreign key violation", &pq.Error{Code: "23503"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.expected {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNullableInt(t *testing.T) {
	if v := nullableInt(nil); v.Valid {
		t.Errorf("nullableInt(nil) = %+v, want invalid", v)
	}

	five := 5
	v := nullableInt(&five)
	if !v.Valid || v.Int64 != 5 {
		t.Errorf("nullableInt(5) = %+v", v)
	}
	if p := intPtr(v); p == nil || *p != 5 {
		t.Errorf("intPtr() = %v, want 5", p)
	}
}
