package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"pedigree-tracker/internal/domain/animals"
)

var errReadOnly = errors.New("memory: write in read-only transaction")

type state struct {
	types   map[string]animals.AnimalType
	animals map[string]animals.Animal
}

func (s *state) clone() *state {
	return &state{
		types:   maps.Clone(s.types),
		animals: maps.Clone(s.animals),
	}
}

// Store es un animals.Repository en memoria. Update trabaja sobre una copia del
// estado y la publica sólo si fn no falla: rollback = descartar la copia.
// Un único escritor a la vez; lectores concurrentes sobre el snapshot vigente.
type Store struct {
	mu    sync.RWMutex
	state *state
}

func NewStore() *Store {
	return &Store{
		state: &state{
			types:   make(map[string]animals.AnimalType),
			animals: make(map[string]animals.Animal),
		},
	}
}

var _ animals.Repository = (*Store)(nil)

func (s *Store) View(ctx context.Context, fn func(tx animals.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&tx{st: s.state, readOnly: true})
}

func (s *Store) Update(ctx context.Context, fn func(tx animals.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(&tx{st: next}); err != nil {
		return err
	}
	s.state = next
	return nil
}

type tx struct {
	st       *state
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

// ---------------------------------------------------------------------------
// Animal types
// ---------------------------------------------------------------------------

func (t *tx) GetAnimalType(_ context.Context, id string) (animals.AnimalType, error) {
	at, ok := t.st.types[id]
	if !ok {
		return animals.AnimalType{}, fmt.Errorf("animal type %s: %w", id, animals.ErrNotFound)
	}
	return at, nil
}

func (t *tx) GetAnimalTypeByName(_ context.Context, name string) (animals.AnimalType, error) {
	for _, at := range t.st.types {
		if at.Name == name {
			return at, nil
		}
	}
	return animals.AnimalType{}, fmt.Errorf("animal type %q: %w", name, animals.ErrNotFound)
}

func (t *tx) ListAnimalTypes(_ context.Context) ([]animals.AnimalType, error) {
	out := make([]animals.AnimalType, 0, len(t.st.types))
	for _, at := range t.st.types {
		out = append(out, at)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (t *tx) CountAnimalsByType(_ context.Context, typeID string) (int, error) {
	n := 0
	for _, a := range t.st.animals {
		if a.TypeID == typeID {
			n++
		}
	}
	return n, nil
}

func (t *tx) CreateAnimalType(ctx context.Context, at animals.AnimalType) error {
	if err := t.writable(); err != nil {
		return err
	}
	if strings.TrimSpace(at.ID) == "" {
		return errors.New("animal type id required")
	}
	if _, exists := t.st.types[at.ID]; exists {
		return fmt.Errorf("%w: animal type %s", animals.ErrDuplicate, at.ID)
	}
	if err := t.typeNameFree(at); err != nil {
		return err
	}
	t.st.types[at.ID] = at
	return nil
}

func (t *tx) UpdateAnimalType(_ context.Context, at animals.AnimalType) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, exists := t.st.types[at.ID]; !exists {
		return fmt.Errorf("animal type %s: %w", at.ID, animals.ErrNotFound)
	}
	if err := t.typeNameFree(at); err != nil {
		return err
	}
	t.st.types[at.ID] = at
	return nil
}

func (t *tx) DeleteAnimalType(ctx context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, exists := t.st.types[id]; !exists {
		return fmt.Errorf("animal type %s: %w", id, animals.ErrNotFound)
	}
	// equivalente a la FK animals.type_id
	if n, _ := t.CountAnimalsByType(ctx, id); n > 0 {
		return fmt.Errorf("%w: animal type %s is referenced by %d animal(s)", animals.ErrHasDependents, id, n)
	}
	delete(t.st.types, id)
	return nil
}

func (t *tx) typeNameFree(at animals.AnimalType) error {
	for _, other := range t.st.types {
		if other.ID != at.ID && other.Name == at.Name {
			return fmt.Errorf("%w: animal type with name %q", animals.ErrDuplicate, at.Name)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Animals
// ---------------------------------------------------------------------------

func (t *tx) GetAnimal(_ context.Context, id string) (animals.Animal, error) {
	a, ok := t.st.animals[id]
	if !ok {
		return animals.Animal{}, fmt.Errorf("animal %s: %w", id, animals.ErrNotFound)
	}
	return cloneAnimal(a), nil
}

func (t *tx) GetAnimalByIdentifier(_ context.Context, identifier string) (animals.Animal, error) {
	for _, a := range t.st.animals {
		if a.Identifier == identifier {
			return cloneAnimal(a), nil
		}
	}
	return animals.Animal{}, fmt.Errorf("animal %q: %w", identifier, animals.ErrNotFound)
}

func (t *tx) ListAnimals(_ context.Context, f animals.ListFilter) ([]animals.Animal, error) {
	search := strings.ToLower(f.Search)

	out := make([]animals.Animal, 0)
	for _, a := range t.st.animals {
		if f.TypeID != "" && a.TypeID != f.TypeID {
			continue
		}
		if f.Active != nil && a.IsActive != *f.Active {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Name), search) &&
			!strings.Contains(strings.ToLower(a.Identifier), search) {
			continue
		}
		out = append(out, cloneAnimal(a))
	}

	sortAnimals(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (t *tx) FindAnimalsByParent(_ context.Context, parentID string) ([]animals.Animal, error) {
	out := make([]animals.Animal, 0)
	if parentID == "" {
		return out, nil
	}
	for _, a := range t.st.animals {
		if a.MotherID == parentID || a.FatherID == parentID {
			out = append(out, cloneAnimal(a))
		}
	}
	sortAnimals(out)
	return out, nil
}

func (t *tx) CreateAnimal(_ context.Context, a animals.Animal) error {
	if err := t.writable(); err != nil {
		return err
	}
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := t.st.animals[a.ID]; exists {
		return fmt.Errorf("%w: animal %s", animals.ErrDuplicate, a.ID)
	}
	if err := t.checkAnimal(a); err != nil {
		return err
	}
	t.st.animals[a.ID] = cloneAnimal(a)
	return nil
}

func (t *tx) UpdateAnimal(_ context.Context, a animals.Animal) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, exists := t.st.animals[a.ID]; !exists {
		return fmt.Errorf("animal %s: %w", a.ID, animals.ErrNotFound)
	}
	if err := t.checkAnimal(a); err != nil {
		return err
	}
	t.st.animals[a.ID] = cloneAnimal(a)
	return nil
}

func (t *tx) DeleteAnimal(_ context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, exists := t.st.animals[id]; !exists {
		return fmt.Errorf("animal %s: %w", id, animals.ErrNotFound)
	}
	for _, a := range t.st.animals {
		if a.MotherID == id || a.FatherID == id {
			return fmt.Errorf("%w: animal %s is a parent of %s", animals.ErrHasDependents, id, a.ID)
		}
	}
	delete(t.st.animals, id)
	return nil
}

// checkAnimal replica las constraints del esquema SQL: identifier único y FKs.
func (t *tx) checkAnimal(a animals.Animal) error {
	if a.MotherID == a.ID || a.FatherID == a.ID {
		return fmt.Errorf("%w: animal %s references itself as parent", animals.ErrParentageConflict, a.ID)
	}
	for _, other := range t.st.animals {
		if other.ID != a.ID && other.Identifier == a.Identifier {
			return fmt.Errorf("%w: animal with identifier %q", animals.ErrDuplicate, a.Identifier)
		}
	}
	if _, ok := t.st.types[a.TypeID]; !ok {
		return animals.MissingReference("animal type", a.TypeID)
	}
	if a.MotherID != "" {
		if _, ok := t.st.animals[a.MotherID]; !ok {
			return animals.MissingReference("mother", a.MotherID)
		}
	}
	if a.FatherID != "" {
		if _, ok := t.st.animals[a.FatherID]; !ok {
			return animals.MissingReference("father", a.FatherID)
		}
	}
	return nil
}

func sortAnimals(items []animals.Animal) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Identifier != items[j].Identifier {
			return items[i].Identifier < items[j].Identifier
		}
		return items[i].ID < items[j].ID
	})
}

// cloneAnimal corta el aliasing de DateOfBirth y Metadata entre el estado y el caller.
func cloneAnimal(a animals.Animal) animals.Animal {
	if a.DateOfBirth != nil {
		d := time.Date(a.DateOfBirth.Year(), a.DateOfBirth.Month(), a.DateOfBirth.Day(), 0, 0, 0, 0, time.UTC)
		a.DateOfBirth = &d
	}
	if a.Metadata != nil {
		a.Metadata = animals.Metadata(cloneValue(map[string]any(a.Metadata)).(map[string]any))
	}
	return a
}

// cloneValue copia en profundidad objetos y arrays JSON; los escalares se comparten.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case animals.Metadata:
		return animals.Metadata(cloneValue(map[string]any(t)).(map[string]any))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
