// Package storagetest tiene la suite de contrato que todo animals.Repository debe pasar.
// Cada adapter la corre desde su _test.go con su propia fábrica de stores vacíos.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"pedigree-tracker/internal/domain/animals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory devuelve un store vacío y migrado. Se llama una vez por subtest.
type Factory func(t *testing.T) animals.Repository

// segundos enteros: Postgres guarda microsegundos y SQLite texto
var ts = time.Date(2026, 1, 10, 8, 30, 0, 0, time.UTC)

// Run corre la suite completa contra newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("animal types CRUD", func(t *testing.T) { testAnimalTypes(t, newRepo(t)) })
	t.Run("animal round trip", func(t *testing.T) { testAnimalRoundTrip(t, newRepo(t)) })
	t.Run("animal update and clear", func(t *testing.T) { testAnimalUpdate(t, newRepo(t)) })
	t.Run("constraints", func(t *testing.T) { testConstraints(t, newRepo(t)) })
	t.Run("list and find by parent", func(t *testing.T) { testListing(t, newRepo(t)) })
	t.Run("rollback", func(t *testing.T) { testRollback(t, newRepo(t)) })
}

func update(t *testing.T, repo animals.Repository, fn func(tx animals.Tx) error) error {
	t.Helper()
	return repo.Update(context.Background(), fn)
}

func view(t *testing.T, repo animals.Repository, fn func(tx animals.Tx) error) {
	t.Helper()
	require.NoError(t, repo.View(context.Background(), fn))
}

func newType(id, name string) animals.AnimalType {
	return animals.AnimalType{ID: id, Name: name, CreatedAt: ts, UpdatedAt: ts}
}

func newAnimal(id, identifier, typeID string) animals.Animal {
	return animals.Animal{
		ID:         id,
		Identifier: identifier,
		Gender:     animals.GenderUnknown,
		IsActive:   true,
		TypeID:     typeID,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
}

func mustCreate(t *testing.T, repo animals.Repository, types []animals.AnimalType, items ...animals.Animal) {
	t.Helper()
	require.NoError(t, update(t, repo, func(tx animals.Tx) error {
		ctx := context.Background()
		for _, at := range types {
			if err := tx.CreateAnimalType(ctx, at); err != nil {
				return err
			}
		}
		for _, a := range items {
			if err := tx.CreateAnimal(ctx, a); err != nil {
				return err
			}
		}
		return nil
	}))
}

func testAnimalTypes(t *testing.T, repo animals.Repository) {
	ctx := context.Background()
	mustCreate(t, repo, []animals.AnimalType{newType("t-sheep", "Sheep"), newType("t-cattle", "Cattle")})

	view(t, repo, func(tx animals.Tx) error {
		got, err := tx.GetAnimalType(ctx, "t-sheep")
		require.NoError(t, err)
		assert.Equal(t, "Sheep", got.Name)
		assert.True(t, ts.Equal(got.CreatedAt), "created_at %s", got.CreatedAt)

		byName, err := tx.GetAnimalTypeByName(ctx, "Cattle")
		require.NoError(t, err)
		assert.Equal(t, "t-cattle", byName.ID)

		_, err = tx.GetAnimalTypeByName(ctx, "cattle")
		assert.ErrorIs(t, err, animals.ErrNotFound, "name lookup is exact")

		list, err := tx.ListAnimalTypes(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Cattle", list[0].Name)

		_, err = tx.GetAnimalType(ctx, "missing")
		assert.ErrorIs(t, err, animals.ErrNotFound)
		return nil
	})

	err := update(t, repo, func(tx animals.Tx) error {
		return tx.CreateAnimalType(ctx, newType("t-other", "Sheep"))
	})
	assert.ErrorIs(t, err, animals.ErrDuplicate)

	later := ts.Add(time.Hour)
	require.NoError(t, update(t, repo, func(tx animals.Tx) error {
		at := newType("t-sheep", "Ovine")
		at.Description = "renamed"
		at.UpdatedAt = later
		return tx.UpdateAnimalType(ctx, at)
	}))
	view(t, repo, func(tx animals.Tx) error {
		got, err := tx.GetAnimalType(ctx, "t-sheep")
		require.NoError(t, err)
		assert.Equal(t, "Ovine", got.Name)
		assert.Equal(t, "renamed", got.Description)
		assert.True(t, later.Equal(got.UpdatedAt))
		assert.True(t, ts.Equal(got.CreatedAt), "update must not touch created_at")
		return nil
	})

	err = update(t, repo, func(tx animals.Tx) error {
		return tx.UpdateAnimalType(ctx, newType("missing", "X"))
	})
	assert.ErrorIs(t, err, animals.ErrNotFound)

	require.NoError(t, update(t, repo, func(tx animals.Tx) error {
		return tx.DeleteAnimalType(ctx, "t-sheep")
	}))
	err = update(t, repo, func(tx animals.Tx) error {
		return tx.DeleteAnimalType(ctx, "t-sheep")
	})
	assert.ErrorIs(t, err, animals.ErrNotFound)
}

func testAnimalRoundTrip(t *testing.T, repo animals.Repository) {
	ctx := context.Background()

	dob := time.Date(2022, 4, 3, 0, 0, 0, 0, time.UTC)
	mother := newAnimal("a-mother", "M001", "t1")
	mother.Gender = animals.GenderFemale

	full := animals.Animal{
		ID:          "a-full",
		Identifier:  "C001",
		Name:        "Bessie",
		Gender:      animals.GenderFemale,
		DateOfBirth: &dob,
		Description: "first calf",
		Notes:       "tagged left ear",
		ExternalID:  "EXT-9",
		Metadata:    animals.Metadata{"breed": "Angus", "color": "black"},
		IsActive:    false,
		TypeID:      "t1",
		MotherID:    mother.ID,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	empty := newAnimal("a-empty", "E001", "t1")
	empty.Metadata = animals.Metadata{}
	mustCreate(t, repo, []animals.AnimalType{newType("t1", "Cattle")}, mother, full, empty)

	view(t, repo, func(tx animals.Tx) error {
		got, err := tx.GetAnimal(ctx, full.ID)
		require.NoError(t, err)
		assertSameAnimal(t, full, got)

		byIdent, err := tx.GetAnimalByIdentifier(ctx, "C001")
		require.NoError(t, err)
		assert.Equal(t, full.ID, byIdent.ID)

		bare, err := tx.GetAnimal(ctx, mother.ID)
		require.NoError(t, err)
		assert.Nil(t, bare.DateOfBirth)
		assert.Nil(t, bare.Metadata)
		assert.Empty(t, bare.MotherID)
		assert.Empty(t, bare.FatherID)

		// objeto vacío no es lo mismo que sin metadata
		e, err := tx.GetAnimal(ctx, empty.ID)
		require.NoError(t, err)
		require.NotNil(t, e.Metadata)
		assert.Empty(t, e.Metadata)

		n, err := tx.CountAnimalsByType(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		_, err = tx.GetAnimal(ctx, "missing")
		assert.ErrorIs(t, err, animals.ErrNotFound)
		_, err = tx.GetAnimalByIdentifier(ctx, "missing")
		assert.ErrorIs(t, err, animals.ErrNotFound)
		return nil
	})
}

func testAnimalUpdate(t *testing.T, repo animals.Repository) {
	ctx := context.Background()

	m := newAnimal("m", "M", "t1")
	f := newAnimal("f", "F", "t1")
	c := newAnimal("c", "C", "t1")
	c.MotherID, c.FatherID = m.ID, f.ID
	dob := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	c.DateOfBirth = &dob
	c.Metadata = animals.Metadata{"k": "v"}
	mustCreate(t, repo, []animals.AnimalType{newType("t1", "Cattle"), newType("t2", "Horses")}, m, f, c)

	// limpiar punteros y valores cero deben persistir
	next := c
	next.MotherID = ""
	next.DateOfBirth = nil
	next.Metadata = nil
	next.IsActive = false
	next.Name = ""
	next.TypeID = "t2"
	next.UpdatedAt = ts.Add(time.Minute)
	require.NoError(t, update(t, repo, func(tx animals.Tx) error {
		return tx.UpdateAnimal(ctx, next)
	}))

	view(t, repo, func(tx animals.Tx) error {
		got, err := tx.GetAnimal(ctx, c.ID)
		require.NoError(t, err)
		assertSameAnimal(t, next, got)
		return nil
	})

	err := update(t, repo, func(tx animals.Tx) error {
		return tx.UpdateAnimal(ctx, newAnimal("missing", "X", "t1"))
	})
	assert.ErrorIs(t, err, animals.ErrNotFound)

	err = update(t, repo, func(tx animals.Tx) error {
		return tx.DeleteAnimal(ctx, "missing")
	})
	assert.ErrorIs(t, err, animals.ErrNotFound)
}

func testConstraints(t *testing.T, repo animals.Repository) {
	ctx := context.Background()

	m := newAnimal("m", "M", "t1")
	c := newAnimal("c", "C", "t1")
	c.MotherID = m.ID
	mustCreate(t, repo, []animals.AnimalType{newType("t1", "Cattle")}, m, c)

	write := func(fn func(tx animals.Tx) error) error { return update(t, repo, fn) }

	err := write(func(tx animals.Tx) error {
		return tx.CreateAnimal(ctx, newAnimal("x", "C", "t1"))
	})
	assert.ErrorIs(t, err, animals.ErrDuplicate, "identifier")

	orphan := newAnimal("x", "X", "t1")
	orphan.FatherID = "nobody"
	err = write(func(tx animals.Tx) error { return tx.CreateAnimal(ctx, orphan) })
	assertMissingReference(t, err)

	err = write(func(tx animals.Tx) error { return tx.CreateAnimal(ctx, newAnimal("x", "X", "no-type")) })
	assertMissingReference(t, err)

	self := m
	self.FatherID = m.ID
	err = write(func(tx animals.Tx) error { return tx.UpdateAnimal(ctx, self) })
	assert.ErrorIs(t, err, animals.ErrParentageConflict)

	err = write(func(tx animals.Tx) error { return tx.DeleteAnimal(ctx, m.ID) })
	assert.ErrorIs(t, err, animals.ErrHasDependents, "parent still referenced")

	err = write(func(tx animals.Tx) error { return tx.DeleteAnimalType(ctx, "t1") })
	assert.ErrorIs(t, err, animals.ErrHasDependents, "type still referenced")

	// hijo primero, después la madre y el tipo
	require.NoError(t, write(func(tx animals.Tx) error {
		for _, id := range []string{c.ID, m.ID} {
			if err := tx.DeleteAnimal(ctx, id); err != nil {
				return err
			}
		}
		return tx.DeleteAnimalType(ctx, "t1")
	}))
}

func testListing(t *testing.T, repo animals.Repository) {
	ctx := context.Background()

	p := newAnimal("p", "P100", "t1")
	items := []animals.Animal{p}
	for _, spec := range []struct {
		id, ident, name, typ string
		active               bool
		mother, father       string
	}{
		{"b", "B200", "Daisy", "t1", true, "p", ""},
		{"a", "A300", "Bruno_x", "t1", false, "", "p"},
		{"h", "H400", "Thunder", "t2", true, "", ""},
	} {
		a := newAnimal(spec.id, spec.ident, spec.typ)
		a.Name = spec.name
		a.IsActive = spec.active
		a.MotherID, a.FatherID = spec.mother, spec.father
		items = append(items, a)
	}
	mustCreate(t, repo, []animals.AnimalType{newType("t1", "Cattle"), newType("t2", "Horses")}, items...)

	idents := func(list []animals.Animal) []string {
		out := make([]string, 0, len(list))
		for _, a := range list {
			out = append(out, a.Identifier)
		}
		return out
	}
	active := true

	view(t, repo, func(tx animals.Tx) error {
		cases := []struct {
			name   string
			filter animals.ListFilter
			want   []string
		}{
			{"all ordered by identifier", animals.ListFilter{}, []string{"A300", "B200", "H400", "P100"}},
			{"by type", animals.ListFilter{TypeID: "t2"}, []string{"H400"}},
			{"active only", animals.ListFilter{Active: &active}, []string{"B200", "H400", "P100"}},
			{"search name case-insensitive", animals.ListFilter{Search: "daISY"}, []string{"B200"}},
			{"search identifier", animals.ListFilter{Search: "h4"}, []string{"H400"}},
			{"search underscore is literal", animals.ListFilter{Search: "o_x"}, []string{"A300"}},
			{"limit", animals.ListFilter{Limit: 2}, []string{"A300", "B200"}},
			{"combined", animals.ListFilter{TypeID: "t1", Active: &active, Limit: 1}, []string{"B200"}},
		}
		for _, tc := range cases {
			list, err := tx.ListAnimals(ctx, tc.filter)
			require.NoError(t, err, tc.name)
			assert.Equal(t, tc.want, idents(list), tc.name)
		}

		children, err := tx.FindAnimalsByParent(ctx, "p")
		require.NoError(t, err)
		assert.Equal(t, []string{"A300", "B200"}, idents(children))

		none, err := tx.FindAnimalsByParent(ctx, "h")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
		return nil
	})
}

func testRollback(t *testing.T, repo animals.Repository) {
	ctx := context.Background()
	mustCreate(t, repo, []animals.AnimalType{newType("t1", "Cattle")})

	boom := errors.New("boom")
	err := update(t, repo, func(tx animals.Tx) error {
		if err := tx.CreateAnimal(ctx, newAnimal("a", "A", "t1")); err != nil {
			return err
		}
		if err := tx.DeleteAnimalType(ctx, "t1"); !errors.Is(err, animals.ErrHasDependents) {
			return errors.Join(errors.New("expected has dependents"), err)
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	view(t, repo, func(tx animals.Tx) error {
		_, err := tx.GetAnimal(ctx, "a")
		assert.ErrorIs(t, err, animals.ErrNotFound, "rolled back insert must be gone")
		_, err = tx.GetAnimalType(ctx, "t1")
		assert.NoError(t, err)
		return nil
	})
}

func assertSameAnimal(t *testing.T, want, got animals.Animal) {
	t.Helper()

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Identifier, got.Identifier)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Gender, got.Gender)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Notes, got.Notes)
	assert.Equal(t, want.ExternalID, got.ExternalID)
	assert.Equal(t, want.Metadata, got.Metadata)
	assert.Equal(t, want.IsActive, got.IsActive)
	assert.Equal(t, want.TypeID, got.TypeID)
	assert.Equal(t, want.MotherID, got.MotherID)
	assert.Equal(t, want.FatherID, got.FatherID)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at want %s got %s", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updated_at want %s got %s", want.UpdatedAt, got.UpdatedAt)

	if want.DateOfBirth == nil {
		assert.Nil(t, got.DateOfBirth)
		return
	}
	require.NotNil(t, got.DateOfBirth)
	assert.Equal(t, want.DateOfBirth.Format(time.DateOnly), got.DateOfBirth.Format(time.DateOnly))
}

func assertMissingReference(t *testing.T, err error) {
	t.Helper()
	require.ErrorIs(t, err, animals.ErrNotFound)

	var nf *animals.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.True(t, nf.Reference)
}
