package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"pedigree-tracker/internal/adapters/storage/migrations"
	"pedigree-tracker/internal/adapters/storage/sqlite"
	"pedigree-tracker/internal/adapters/storage/storagetest"
	"pedigree-tracker/internal/domain/animals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "pedigree.db"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	n, err := migrations.Up(context.Background(), sqlDB, migrations.SQLite)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	return sqlite.NewStore(db)
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) animals.Repository { return openStore(t) })
}

func TestMigrations_AreIdempotent(t *testing.T) {
	ctx := context.Background()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "pedigree.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	_, err = migrations.Up(ctx, sqlDB, migrations.SQLite)
	require.NoError(t, err)

	n, err := migrations.Up(ctx, sqlDB, migrations.SQLite)
	require.NoError(t, err)
	assert.Zero(t, n)

	v, err := migrations.Version(ctx, sqlDB, migrations.SQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestStore_ServiceRejectsCycle(t *testing.T) {
	ctx := context.Background()
	svc := animals.NewService(openStore(t))

	typ, err := svc.CreateAnimalType(ctx, animals.CreateAnimalTypeInput{Name: "Sheep"})
	require.NoError(t, err)
	a, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "A", Gender: "female", TypeID: typ.ID})
	require.NoError(t, err)
	b, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "B", Gender: "female", TypeID: typ.ID, MotherID: a.ID})
	require.NoError(t, err)

	_, err = svc.UpdateAnimal(ctx, a.ID, animals.AnimalPatch{MotherID: animals.Set(b.ID)})
	require.ErrorIs(t, err, animals.ErrParentageConflict)

	got, err := svc.GetAnimal(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.MotherID)

	root, err := svc.Pedigree(ctx, b.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, root.Mother)
	assert.Equal(t, "A", root.Mother.Identifier)
	assert.Equal(t, "Sheep", root.AnimalType)
}
