package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestConstraintClassifiers(t *testing.T) {
	unique := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", Message: "duplicate key"})
	check := &pgconn.PgError{Code: "23514", ConstraintName: "chk_profiles_points"}
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(check))
	assert.True(t, IsCheckViolation(check))
	assert.True(t, IsForeignKeyViolation(fk))

	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsCheckViolation(gorm.ErrCheckConstraintViolated))
	assert.False(t, IsUniqueViolation(errors.New("connection reset")))
}
