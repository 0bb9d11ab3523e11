package animals_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"pedigree-tracker/internal/adapters/storage/memory"
	"pedigree-tracker/internal/domain/animals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }

func newService(t *testing.T, opts ...animals.Option) (*animals.Service, animals.AnimalType) {
	t.Helper()
	opts = append([]animals.Option{animals.WithClock(clock)}, opts...)
	svc := animals.NewService(memory.NewStore(), opts...)

	typ, err := svc.CreateAnimalType(context.Background(), animals.CreateAnimalTypeInput{
		Name:        " Cattle ",
		Description: "Bovine animals",
	})
	require.NoError(t, err)
	return svc, typ
}

func ptr[T any](v T) *T { return &v }

func TestCreateAnimalType(t *testing.T) {
	ctx := context.Background()
	svc, typ := newService(t)

	assert.NotEmpty(t, typ.ID)
	assert.Equal(t, "Cattle", typ.Name)
	assert.Equal(t, clock(), typ.CreatedAt)

	_, err := svc.CreateAnimalType(ctx, animals.CreateAnimalTypeInput{Name: "Cattle"})
	assert.ErrorIs(t, err, animals.ErrDuplicate)

	_, err = svc.CreateAnimalType(ctx, animals.CreateAnimalTypeInput{Name: "  "})
	var ve *animals.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)

	_, err = svc.CreateAnimalType(ctx, animals.CreateAnimalTypeInput{Name: strings.Repeat("n", 51)})
	assert.ErrorIs(t, err, animals.ErrInvalidInput)
}

func TestUpdateAnimalType(t *testing.T) {
	ctx := context.Background()
	svc, typ := newService(t)

	sheep, err := svc.CreateAnimalType(ctx, animals.CreateAnimalTypeInput{Name: "Sheep"})
	require.NoError(t, err)

	got, err := svc.UpdateAnimalType(ctx, typ.ID, animals.UpdateAnimalTypeInput{Description: ptr("Cows")})
	require.NoError(t, err)
	assert.Equal(t, "Cattle", got.Name)
	assert.Equal(t, "Cows", got.Description)

	// renombrar a sí mismo no es duplicado
	_, err = svc.UpdateAnimalType(ctx, typ.ID, animals.UpdateAnimalTypeInput{Name: ptr("Cattle")})
	require.NoError(t, err)

	_, err = svc.UpdateAnimalType(ctx, sheep.ID, animals.UpdateAnimalTypeInput{Name: ptr("Cattle")})
	assert.ErrorIs(t, err, animals.ErrDuplicate)

	_, err = svc.UpdateAnimalType(ctx, "missing", animals.UpdateAnimalTypeInput{})
	var nf *animals.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "animal type", nf.Entity)
	assert.False(t, nf.Reference)
}

func TestDeleteAnimalType_BlockedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	svc, typ := newService(t)

	a, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "C001", Gender: "male", TypeID: typ.ID})
	require.NoError(t, err)

	err = svc.DeleteAnimalType(ctx, typ.ID)
	require.ErrorIs(t, err, animals.ErrHasDependents)
	assert.Contains(t, err.Error(), "1 animal(s)")

	require.NoError(t, svc.DeleteAnimal(ctx, a.ID))
	require.NoError(t, svc.DeleteAnimalType(ctx, typ.ID))

	_, err = svc.GetAnimalType(ctx, typ.ID)
	assert.ErrorIs(t, err, animals.ErrNotFound)
}

func TestSeedDefaultTypes(t *testing.T) {
	ctx := context.Background()
	svc := animals.NewService(memory.NewStore())

	n, err := svc.SeedDefaultTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	n, err = svc.SeedDefaultTypes(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	types, err := svc.ListAnimalTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 6)
	// orden por nombre
	assert.Equal(t, "Cattle", types[0].Name)
	assert.Equal(t, "Sheep", types[5].Name)

	// un store con tipos propios no se toca
	svc2, _ := newService(t)
	n, err = svc2.SeedDefaultTypes(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateAnimal_Defaults(t *testing.T) {
	ctx := context.Background()
	svc, typ := newService(t)

	a, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{
		Identifier:  " C001 ",
		Name:        "Bessie",
		Gender:      "FEMALE",
		DateOfBirth: date(2023, 5, 10),
		TypeID:      typ.ID,
		Metadata:    animals.Metadata{"breed": "Angus"},
	})
	require.NoError(t, err)

	assert.Equal(t, "C001", a.Identifier)
	assert.Equal(t, animals.GenderFemale, a.Gender)
	assert.True(t, a.IsActive)
	assert.Equal(t, clock(), a.CreatedAt)
	assert.Equal(t, 3, animals.Age(a.DateOfBirth, svc.Now()))

	got, err := svc.GetAnimal(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	inactive, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{
		Identifier: "C002", Gender: "male", TypeID: typ.ID, IsActive: ptr(false),
	})
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)
}

func TestCreateAnimal_Validation(t *testing.T) {
	ctx := context.Background()
	svc, typ := newService(t)

	parent, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "P1", Gender: "female", TypeID: typ.ID})
	require.NoError(t, err)

	tests := []struct {
		name      string
		in        animals.CreateAnimalInput
		wantField string
		wantRef   string
	}{
		{
			name:      "missing identifier",
			in:        animals.CreateAnimalInput{Gender: "male", TypeID: typ.ID},
			wantField: "identifier",
		},
		{
			name:      "identifier too long",
			in:        animals.CreateAnimalInput{Identifier: strings.Repeat("x", 51), Gender: "male", TypeID: typ.ID},
			wantField: "identifier",
		},
		{
			name:      "missing gender",
			in:        animals.CreateAnimalInput{Identifier: "X1", TypeID: typ.ID},
			wantField: "gender",
		},
		{
			name:      "bad gender",
			in:        animals.CreateAnimalInput{Identifier: "X1", Gender: "hermaphrodite", TypeID: typ.ID},
			wantField: "gender",
		},
		{
			name:      "missing type",
			in:        animals.CreateAnimalInput{Identifier: "X1", Gender: "male"},
			wantField: "animal_type_id",
		},
		{
			name:      "metadata too large",
			in:        animals.CreateAnimalInput{Identifier: "X1", Gender: "male", TypeID: typ.ID, Metadata: animals.Metadata{"x": strings.Repeat("y", animals.MaxMetadataBytes)}},
			wantField: "metadata",
		},
		{
			name:    "unknown type",
			in:      animals.CreateAnimalInput{Identifier: "X1", Gender: "male", TypeID: "nope"},
			wantRef: "animal type",
		},
		{
			name:    "unknown mother",
			in:      animals.CreateAnimalInput{Identifier: "X1", Gender: "male", TypeID: typ.ID, MotherID: "nope", FatherID: parent.ID},
			wantRef: "mother",
		},
		{
			name:    "unknown father",
			in:      animals.CreateAnimalInput{Identifier: "X1", Gender: "male", TypeID: typ.ID, MotherID: parent.ID, FatherID: "nope"},
			wantRef: "father",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAnimal(ctx, tt.in)
			require.Error(t, err)

			if tt.wantField != "" {
				var ve *animals.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.wantField, ve.Field)
				return
			}

			var nf *animals.NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.wantRef, nf.Entity)
			assert.True(t, nf.Reference)
		})
	}

	list, err := svc.ListAnimals(ctx, animals.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1, "failed creates must not persist anything")
}

func TestCreateAnimal_DuplicateIdentifierKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	svc, typ := newService(t)

	_, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "DUP", Gender: "male", TypeID: typ.ID})
	require.NoError(t, err)

	_, err = svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "DUP", Gender: "female", TypeID: typ.ID})
	assert.ErrorIs(t, err, animals.ErrDuplicate)

	list, err := svc.ListAnimals(ctx, animals.ListFilter{Search: "dup"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, animals.GenderMale, list[0].Gender)
}

func TestUpdateAnimal_RejectsCycleAndLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	svc, typ := newService(t)

	a, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "A", Gender: "female", TypeID: typ.ID})
	require.NoError(t, err)
	b, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "B", Gender: "female", TypeID: typ.ID, MotherID: a.ID})
	require.NoError(t, err)

	_, err = svc.UpdateAnimal(ctx, a.ID, animals.AnimalPatch{
		Name:     ptr("renamed"),
		MotherID: animals.Set(b.ID),
	})
	require.ErrorIs(t, err, animals.ErrParentageConflict)

	got, err := svc.GetAnimal(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.MotherID)
	assert.Empty(t, got.Name, "rejected update must not apply other fields")

	_, err = svc.UpdateAnimal(ctx, a.ID, animals.AnimalPatch{FatherID: animals.Set(a.ID)})
	assert.ErrorIs(t, err, animals.ErrParentageConflict)
}

func TestUpdateAnimal_Patch(t *testing.T) {
	ctx := context.Background()
	svc, typ := newService(t)

	sheep, err := svc.CreateAnimalType(ctx, animals.CreateAnimalTypeInput{Name: "Sheep"})
	require.NoError(t, err)
	mother, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "M", Gender: "female", TypeID: typ.ID})
	require.NoError(t, err)
	a, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{
		Identifier:  "A",
		Name:        "Alpha",
		Gender:      "male",
		DateOfBirth: date(2020, 1, 1),
		Notes:       "calm",
		Metadata:    animals.Metadata{"k": "v"},
		TypeID:      typ.ID,
		MotherID:    mother.ID,
	})
	require.NoError(t, err)

	// sólo cambia lo enviado
	got, err := svc.UpdateAnimal(ctx, a.ID, animals.AnimalPatch{Notes: ptr("nervous"), TypeID: ptr(sheep.ID)})
	require.NoError(t, err)
	assert.Equal(t, "nervous", got.Notes)
	assert.Equal(t, sheep.ID, got.TypeID)
	assert.Equal(t, "Alpha", got.Name)
	assert.Equal(t, mother.ID, got.MotherID)
	assert.Equal(t, date(2020, 1, 1), got.DateOfBirth)

	// null limpia
	got, err = svc.UpdateAnimal(ctx, a.ID, animals.AnimalPatch{
		MotherID:    animals.Clear[string](),
		DateOfBirth: animals.Clear[time.Time](),
		Metadata:    animals.Clear[animals.Metadata](),
	})
	require.NoError(t, err)
	assert.Empty(t, got.MotherID)
	assert.Nil(t, got.DateOfBirth)
	assert.Nil(t, got.Metadata)

	stored, err := svc.GetAnimal(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)

	_, err = svc.UpdateAnimal(ctx, a.ID, animals.AnimalPatch{Gender: ptr("other")})
	assert.ErrorIs(t, err, animals.ErrInvalidInput)

	_, err = svc.UpdateAnimal(ctx, a.ID, animals.AnimalPatch{Identifier: ptr("M")})
	assert.ErrorIs(t, err, animals.ErrDuplicate)

	_, err = svc.UpdateAnimal(ctx, "missing", animals.AnimalPatch{})
	assert.ErrorIs(t, err, animals.ErrNotFound)
}

func TestDeleteAnimal_BlockedWhileParent(t *testing.T) {
	ctx := context.Background()
	svc, typ := newService(t)

	m, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "M", Gender: "female", TypeID: typ.ID})
	require.NoError(t, err)
	c, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "C", Gender: "male", TypeID: typ.ID, MotherID: m.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteAnimal(ctx, m.ID), animals.ErrHasDependents)
	require.NoError(t, svc.DeleteAnimal(ctx, c.ID))
	require.NoError(t, svc.DeleteAnimal(ctx, m.ID))
	assert.ErrorIs(t, svc.DeleteAnimal(ctx, m.ID), animals.ErrNotFound)
}

func TestGetAnimalDetail(t *testing.T) {
	ctx := context.Background()
	svc, typ := newService(t)

	m, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "M", Gender: "female", TypeID: typ.ID})
	require.NoError(t, err)
	c, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "C", Gender: "male", TypeID: typ.ID, MotherID: m.ID})
	require.NoError(t, err)

	d, err := svc.GetAnimalDetail(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, d.Type)
	assert.Equal(t, "Cattle", d.Type.Name)
	require.NotNil(t, d.Mother)
	assert.Equal(t, "M", d.Mother.Identifier)
	assert.Nil(t, d.Father)
}

func TestListAnimals_Filters(t *testing.T) {
	ctx := context.Background()
	svc, typ := newService(t)

	horses, err := svc.CreateAnimalType(ctx, animals.CreateAnimalTypeInput{Name: "Horses"})
	require.NoError(t, err)

	for _, in := range []animals.CreateAnimalInput{
		{Identifier: "C3", Name: "Daisy", Gender: "female", TypeID: typ.ID},
		{Identifier: "C1", Name: "Bruno", Gender: "male", TypeID: typ.ID, IsActive: ptr(false)},
		{Identifier: "H1", Name: "Thunder", Gender: "male", TypeID: horses.ID},
	} {
		_, err := svc.CreateAnimal(ctx, in)
		require.NoError(t, err)
	}

	ids := func(f animals.ListFilter) []string {
		list, err := svc.ListAnimals(ctx, f)
		require.NoError(t, err)
		out := []string{}
		for _, a := range list {
			out = append(out, a.Identifier)
		}
		return out
	}

	assert.Equal(t, []string{"C1", "C3", "H1"}, ids(animals.ListFilter{}))
	assert.Equal(t, []string{"H1"}, ids(animals.ListFilter{TypeID: horses.ID}))
	assert.Equal(t, []string{"C3", "H1"}, ids(animals.ListFilter{Active: ptr(true)}))
	assert.Equal(t, []string{"C3"}, ids(animals.ListFilter{Search: "dAi"}))
	assert.Equal(t, []string{"H1"}, ids(animals.ListFilter{Search: "h1"}))
	assert.Equal(t, []string{"C1", "C3"}, ids(animals.ListFilter{Limit: 2}))

	_, err = svc.ListAnimals(ctx, animals.ListFilter{Limit: -1})
	assert.ErrorIs(t, err, animals.ErrInvalidInput)
}

// ---------------------------------------------------------------------------
// métricas y reintentos
// ---------------------------------------------------------------------------

type recordingMetrics struct {
	mu        sync.Mutex
	rejected  []string
	traversed map[string]int
}

func (m *recordingMetrics) ParentageRejected(role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected = append(m.rejected, role)
}

func (m *recordingMetrics) TraversalVisited(kind string, nodes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.traversed == nil {
		m.traversed = map[string]int{}
	}
	m.traversed[kind] = nodes
}

func TestService_ReportsMetrics(t *testing.T) {
	ctx := context.Background()
	rec := &recordingMetrics{}
	svc, typ := newService(t, animals.WithMetrics(rec))

	a, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "A", Gender: "female", TypeID: typ.ID})
	require.NoError(t, err)
	b, err := svc.CreateAnimal(ctx, animals.CreateAnimalInput{Identifier: "B", Gender: "male", TypeID: typ.ID, MotherID: a.ID})
	require.NoError(t, err)

	_, err = svc.UpdateAnimal(ctx, a.ID, animals.AnimalPatch{FatherID: animals.Set(b.ID)})
	require.ErrorIs(t, err, animals.ErrParentageConflict)
	assert.Equal(t, []string{"father"}, rec.rejected)

	_, err = svc.Pedigree(ctx, b.ID, 3)
	require.NoError(t, err)
	_, err = svc.Descendants(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.traversed["pedigree"])
	assert.Equal(t, 1, rec.traversed["descendants"])
}

// flakyRepo devuelve ErrTxConflict en los primeros conflicts Update.
type flakyRepo struct {
	animals.Repository
	conflicts int
	calls     int
}

func (r *flakyRepo) Update(ctx context.Context, fn func(tx animals.Tx) error) error {
	r.calls++
	if r.calls <= r.conflicts {
		return animals.ErrTxConflict
	}
	return r.Repository.Update(ctx, fn)
}

func TestService_RetriesTxConflict(t *testing.T) {
	ctx := context.Background()

	repo := &flakyRepo{Repository: memory.NewStore(), conflicts: 2}
	svc := animals.NewService(repo)

	typ, err := svc.CreateAnimalType(ctx, animals.CreateAnimalTypeInput{Name: "Goats"})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)

	_, err = svc.GetAnimalType(ctx, typ.ID)
	require.NoError(t, err)

	repo.calls, repo.conflicts = 0, 10
	_, err = svc.CreateAnimalType(ctx, animals.CreateAnimalTypeInput{Name: "Pigs"})
	assert.True(t, errors.Is(err, animals.ErrTxConflict))
	assert.Equal(t, 3, repo.calls)
}
