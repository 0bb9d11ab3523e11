package memory_test

import (
	"context"
	"testing"

	"pedigree-tracker/internal/adapters/storage/memory"
	"pedigree-tracker/internal/adapters/storage/storagetest"
	"pedigree-tracker/internal/domain/animals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(*testing.T) animals.Repository { return memory.NewStore() })
}

func TestView_IsReadOnly(t *testing.T) {
	s := memory.NewStore()

	err := s.View(context.Background(), func(tx animals.Tx) error {
		return tx.CreateAnimalType(context.Background(), animals.AnimalType{ID: "t1", Name: "Cattle"})
	})
	require.Error(t, err)

	require.NoError(t, s.View(context.Background(), func(tx animals.Tx) error {
		list, err := tx.ListAnimalTypes(context.Background())
		assert.Empty(t, list)
		return err
	}))
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	require.NoError(t, s.Update(ctx, func(tx animals.Tx) error {
		if err := tx.CreateAnimalType(ctx, animals.AnimalType{ID: "t1", Name: "Cattle"}); err != nil {
			return err
		}
		return tx.CreateAnimal(ctx, animals.Animal{
			ID: "a1", Identifier: "A1", Gender: animals.GenderMale, TypeID: "t1",
			Metadata: animals.Metadata{
				"k":    "v",
				"herd": map[string]any{"pen": "north"},
				"tags": []any{"a", map[string]any{"vaccinated": true}},
			},
		})
	}))

	require.NoError(t, s.View(ctx, func(tx animals.Tx) error {
		a, err := tx.GetAnimal(ctx, "a1")
		require.NoError(t, err)
		a.Metadata["k"] = "mutated"
		a.Metadata["herd"].(map[string]any)["pen"] = "south"
		tags := a.Metadata["tags"].([]any)
		tags[0] = "z"
		tags[1].(map[string]any)["vaccinated"] = false
		return nil
	}))

	require.NoError(t, s.View(ctx, func(tx animals.Tx) error {
		a, err := tx.GetAnimal(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "v", a.Metadata["k"])
		assert.Equal(t, map[string]any{"pen": "north"}, a.Metadata["herd"])
		assert.Equal(t, []any{"a", map[string]any{"vaccinated": true}}, a.Metadata["tags"])
		return nil
	}))
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := memory.NewStore()
	called := false
	err := s.Update(ctx, func(animals.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
