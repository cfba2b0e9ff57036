package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestNullString(t *testing.T) {
	assert.False(t, nullString("").Valid)

	ns := nullString("dato")
	assert.True(t, ns.Valid)
	assert.Equal(t, "dato", ns.String)

	assert.Equal(t, "dato", nullStringValue(ns))
	assert.Equal(t, "", nullStringValue(nullString("")))
}

func TestErrorClassification(t *testing.T) {
	unique := &pq.Error{Code: "23505"}
	foreign := &pq.Error{Code: "23503"}

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(foreign))
	assert.True(t, isForeignKeyViolation(foreign))
	assert.False(t, isForeignKeyViolation(unique))

	// Wrapped driver errors still classify.
	assert.True(t, isUniqueViolation(fmt.Errorf("failed to create tag: %w", unique)))
	assert.True(t, isForeignKeyViolation(fmt.Errorf("failed to create tag: %w", foreign)))

	assert.False(t, isUniqueViolation(errors.New("connection reset")))
	assert.False(t, isForeignKeyViolation(nil))
}
