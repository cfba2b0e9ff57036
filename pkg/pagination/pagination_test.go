package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		page        int
		perPage     int
		wantPage    int
		wantPerPage int
	}{
		{"defaults", 0, 0, 1, DefaultPerPage},
		{"negative page", -3, 10, 1, 10},
		{"clamped to max", 2, 500, 2, MaxPerPage},
		{"in range", 3, 50, 3, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPerPage, p.PerPage)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, New(1, 20).Offset())
	assert.Equal(t, 40, New(3, 20).Offset())
}

func TestNewResult(t *testing.T) {
	p := New(1, 20)
	r := NewResult([]string{"a", "b"}, 41, p)
	assert.Equal(t, int64(41), r.Total)
	assert.Equal(t, 3, r.TotalPages)

	r = NewResult([]string{}, 40, p)
	assert.Equal(t, 2, r.TotalPages)
}

func TestSortOption(t *testing.T) {
	allowed := map[string]string{"numero": "numero", "created_at": "created_at"}

	t.Run("parses direction prefixes", func(t *testing.T) {
		s := NewSortOption(allowed).Parse("-created_at,numero")
		assert.Equal(t, "created_at DESC, numero ASC", s.SQL())
	})

	t.Run("drops unknown fields", func(t *testing.T) {
		s := NewSortOption(allowed).Parse("password,-numero")
		assert.Equal(t, "numero DESC", s.SQL())
	})

	t.Run("empty when nothing matches", func(t *testing.T) {
		s := NewSortOption(allowed).Parse("drop table findings")
		assert.True(t, s.IsEmpty())
		assert.Equal(t, "", s.SQL())
	})
}
