// Package testutil builds throwaway sqlite databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"anoa.com/portalsekolah/internal/bootstrap"
	"anoa.com/portalsekolah/internal/entity"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a per-test in-memory database with the full schema.
// A single connection serializes transactions the way row locks do on postgres.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	return db
}

// NewRedis starts an in-process redis server and a client for it, both closed with the test.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// CreateProfile inserts a user with the given role and starting balance.
func CreateProfile(t *testing.T, db *gorm.DB, role entity.Role, points int, classID *uint) *entity.Profile {
	t.Helper()

	id := uuid.New()
	user := &entity.User{
		ID:           id,
		Email:        fmt.Sprintf("%s@sekolah.test", id.String()[:8]),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)

	profile := &entity.Profile{
		ID:       id,
		FullName: fmt.Sprintf("%s %s", role, id.String()[:4]),
		Role:     role,
		Points:   points,
		ClassID:  classID,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func CreateProduct(t *testing.T, db *gorm.DB, name string, price, stock int) *entity.Product {
	t.Helper()

	p := &entity.Product{Name: name, Price: price, Stock: stock}
	require.NoError(t, db.Create(p).Error)
	return p
}

func CreateClass(t *testing.T, db *gorm.DB, name string, teacherID *uuid.UUID) *entity.Class {
	t.Helper()

	c := &entity.Class{Name: name, TeacherID: teacherID}
	require.NoError(t, db.Create(c).Error)
	return c
}

func ReloadProfile(t *testing.T, db *gorm.DB, id uuid.UUID) entity.Profile {
	t.Helper()

	var p entity.Profile
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p
}

func ReloadProduct(t *testing.T, db *gorm.DB, id uint) entity.Product {
	t.Helper()

	var p entity.Product
	require.NoError(t, db.First(&p, id).Error)
	return p
}

func LedgerFor(t *testing.T, db *gorm.DB, userID uuid.UUID) []entity.PointHistory {
	t.Helper()

	var entries []entity.PointHistory
	require.NoError(t, db.Where("user_id = ?", userID).Order("id asc").Find(&entries).Error)
	return entries
}
