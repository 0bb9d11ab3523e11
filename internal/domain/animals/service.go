package animals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pedigree-tracker/internal/platform/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// maxTxAttempts acota los reintentos ante ErrTxConflict (serialization failure en Postgres).
const maxTxAttempts = 3

// Metrics recibe eventos del dominio. El adapter de Prometheus lo implementa.
type Metrics interface {
	ParentageRejected(role string)
	TraversalVisited(kind string, nodes int)
}

type noopMetrics struct{}

func (noopMetrics) ParentageRejected(string)     {}
func (noopMetrics) TraversalVisited(string, int) {}

type Service struct {
	repo     Repository
	now      func() time.Time
	newID    func() string
	validate *validator.Validate
	metrics  Metrics
	log      logger.Logger
}

type Option func(*Service)

func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock fija el reloj (tests de edad y timestamps).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		now:      time.Now,
		newID:    uuid.NewString,
		validate: newValidator(),
		metrics:  noopMetrics{},
		log:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now expone el reloj del servicio (age / is_adult en las respuestas).
func (s *Service) Now() time.Time { return s.now() }

func (s *Service) view(ctx context.Context, fn func(tx Tx) error) error {
	return s.repo.View(ctx, fn)
}

// update corre fn en una transacción de escritura y reintenta si el store
// reporta conflicto de serialización. fn debe poder ejecutarse más de una vez.
func (s *Service) update(ctx context.Context, fn func(tx Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.repo.Update(ctx, fn)
		if !errors.Is(err, ErrTxConflict) {
			return err
		}
		s.log.Warn("transaction conflict", map[string]any{"attempt": attempt})
	}
	return err
}

// ---------------------------------------------------------------------------
// Animal types
// ---------------------------------------------------------------------------

type CreateAnimalTypeInput struct {
	Name        string
	Description string
}

// UpdateAnimalTypeInput: nil = no tocar.
type UpdateAnimalTypeInput struct {
	Name        *string
	Description *string
}

func (s *Service) CreateAnimalType(ctx context.Context, in CreateAnimalTypeInput) (AnimalType, error) {
	now := s.now()
	t := AnimalType{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.validateAnimalType(t); err != nil {
		return AnimalType{}, err
	}

	err := s.update(ctx, func(tx Tx) error {
		if err := checkTypeNameFree(ctx, tx, t.Name, ""); err != nil {
			return err
		}
		t.ID = s.newID()
		return tx.CreateAnimalType(ctx, t)
	})
	if err != nil {
		return AnimalType{}, err
	}

	s.log.Info("animal type created", map[string]any{"type_id": t.ID, "name": t.Name})
	return t, nil
}

func (s *Service) GetAnimalType(ctx context.Context, id string) (AnimalType, error) {
	var t AnimalType
	err := s.view(ctx, func(tx Tx) error {
		var err error
		t, err = getType(ctx, tx, id)
		return err
	})
	return t, err
}

func (s *Service) ListAnimalTypes(ctx context.Context) ([]AnimalType, error) {
	var out []AnimalType
	err := s.view(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListAnimalTypes(ctx)
		return err
	})
	return out, err
}

func (s *Service) UpdateAnimalType(ctx context.Context, id string, in UpdateAnimalTypeInput) (AnimalType, error) {
	var t AnimalType
	err := s.update(ctx, func(tx Tx) error {
		cur, err := getType(ctx, tx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			cur.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			cur.Description = strings.TrimSpace(*in.Description)
		}
		if err := s.validateAnimalType(cur); err != nil {
			return err
		}
		if err := checkTypeNameFree(ctx, tx, cur.Name, cur.ID); err != nil {
			return err
		}

		cur.UpdatedAt = s.now()
		if err := tx.UpdateAnimalType(ctx, cur); err != nil {
			return err
		}
		t = cur
		return nil
	})
	if err != nil {
		return AnimalType{}, err
	}
	return t, nil
}

// DeleteAnimalType falla con ErrHasDependents si algún animal usa el tipo.
func (s *Service) DeleteAnimalType(ctx context.Context, id string) error {
	err := s.update(ctx, func(tx Tx) error {
		t, err := getType(ctx, tx, id)
		if err != nil {
			return err
		}

		n, err := tx.CountAnimalsByType(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: cannot delete animal type %q, %d animal(s) reference it", ErrHasDependents, t.Name, n)
		}
		return tx.DeleteAnimalType(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("animal type deleted", map[string]any{"type_id": id})
	return nil
}

// defaultTypes se cargan en un store vacío (PEDIGREE_CREATE_DEFAULT_DATA / comando seed).
var defaultTypes = []CreateAnimalTypeInput{
	{Name: "Cattle", Description: "Bovine animals"},
	{Name: "Sheep", Description: "Ovine animals"},
	{Name: "Goats", Description: "Caprine animals"},
	{Name: "Horses", Description: "Equine animals"},
	{Name: "Pigs", Description: "Porcine animals"},
	{Name: "Chickens", Description: "Poultry birds"},
}

// SeedDefaultTypes crea los tipos por defecto sólo si no existe ninguno.
// Devuelve cuántos creó.
func (s *Service) SeedDefaultTypes(ctx context.Context) (int, error) {
	created := 0
	err := s.update(ctx, func(tx Tx) error {
		created = 0

		existing, err := tx.ListAnimalTypes(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}

		now := s.now()
		for _, in := range defaultTypes {
			t := AnimalType{
				ID:          s.newID(),
				Name:        in.Name,
				Description: in.Description,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.CreateAnimalType(ctx, t); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if created > 0 {
		s.log.Info("default animal types created", map[string]any{"count": created})
	}
	return created, nil
}

func getType(ctx context.Context, tx Tx, id string) (AnimalType, error) {
	t, err := tx.GetAnimalType(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AnimalType{}, notFound("animal type", id)
		}
		return AnimalType{}, err
	}
	return t, nil
}

func checkTypeNameFree(ctx context.Context, tx Tx, name, selfID string) error {
	other, err := tx.GetAnimalTypeByName(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != selfID:
		return fmt.Errorf("%w: animal type with name %q", ErrDuplicate, name)
	default:
		return nil
	}
}

// ---------------------------------------------------------------------------
// Animals
// ---------------------------------------------------------------------------

type CreateAnimalInput struct {
	Identifier  string
	Name        string
	Gender      string // case-insensitive
	DateOfBirth *time.Time
	Description string
	Notes       string
	ExternalID  string
	Metadata    Metadata
	IsActive    *bool // nil = true
	TypeID      string
	MotherID    string
	FatherID    string
}

// Clearable distingue "no enviado" (Present=false) de "enviar null" (Present=true, Value=nil).
type Clearable[T any] struct {
	Present bool
	Value   *T
}

func Set[T any](v T) Clearable[T] { return Clearable[T]{Present: true, Value: &v} }

func Clear[T any]() Clearable[T] { return Clearable[T]{Present: true} }

// AnimalPatch: punteros nil = no tocar.
type AnimalPatch struct {
	Identifier  *string
	Name        *string
	Gender      *string
	DateOfBirth Clearable[time.Time]
	Description *string
	Notes       *string
	ExternalID  *string
	Metadata    Clearable[Metadata]
	IsActive    *bool
	TypeID      *string
	MotherID    Clearable[string]
	FatherID    Clearable[string]
}

func (p AnimalPatch) apply(a *Animal) {
	if p.Identifier != nil {
		a.Identifier = strings.TrimSpace(*p.Identifier)
	}
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Gender != nil {
		a.Gender = normalizeGender(*p.Gender)
	}
	if p.DateOfBirth.Present {
		a.DateOfBirth = p.DateOfBirth.Value
	}
	if p.Description != nil {
		a.Description = strings.TrimSpace(*p.Description)
	}
	if p.Notes != nil {
		a.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.ExternalID != nil {
		a.ExternalID = strings.TrimSpace(*p.ExternalID)
	}
	if p.Metadata.Present {
		a.Metadata = nil
		if p.Metadata.Value != nil {
			a.Metadata = *p.Metadata.Value
		}
	}
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}
	if p.TypeID != nil {
		a.TypeID = strings.TrimSpace(*p.TypeID)
	}
	if p.MotherID.Present {
		a.MotherID = derefTrim(p.MotherID.Value)
	}
	if p.FatherID.Present {
		a.FatherID = derefTrim(p.FatherID.Value)
	}
}

func (s *Service) CreateAnimal(ctx context.Context, in CreateAnimalInput) (Animal, error) {
	now := s.now()
	a := Animal{
		Identifier:  strings.TrimSpace(in.Identifier),
		Name:        strings.TrimSpace(in.Name),
		Gender:      normalizeGender(in.Gender),
		DateOfBirth: in.DateOfBirth,
		Description: strings.TrimSpace(in.Description),
		Notes:       strings.TrimSpace(in.Notes),
		ExternalID:  strings.TrimSpace(in.ExternalID),
		Metadata:    in.Metadata,
		IsActive:    true,
		TypeID:      strings.TrimSpace(in.TypeID),
		MotherID:    strings.TrimSpace(in.MotherID),
		FatherID:    strings.TrimSpace(in.FatherID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	if err := s.checkFields(a); err != nil {
		return Animal{}, err
	}

	err := s.update(ctx, func(tx Tx) error {
		// alta: sin id todavía, el chequeo de ciclos no tiene descendientes que recorrer
		a.ID = ""
		if err := s.checkRefs(ctx, tx, a, RoleMother, RoleFather); err != nil {
			return err
		}
		a.ID = s.newID()
		return tx.CreateAnimal(ctx, a)
	})
	if err != nil {
		return Animal{}, err
	}

	s.log.Info("animal created", map[string]any{"animal_id": a.ID, "identifier": a.Identifier})
	return a, nil
}

func (s *Service) GetAnimal(ctx context.Context, id string) (Animal, error) {
	var a Animal
	err := s.view(ctx, func(tx Tx) error {
		var err error
		a, err = getAnimal(ctx, tx, id)
		return err
	})
	return a, err
}

// AnimalDetail es un animal con sus relaciones resueltas (?include=relations).
type AnimalDetail struct {
	Animal Animal
	Type   *AnimalType
	Mother *Animal
	Father *Animal
}

func (s *Service) GetAnimalDetail(ctx context.Context, id string) (AnimalDetail, error) {
	var d AnimalDetail
	err := s.view(ctx, func(tx Tx) error {
		a, err := getAnimal(ctx, tx, id)
		if err != nil {
			return err
		}
		d = AnimalDetail{Animal: a}

		if t, err := tx.GetAnimalType(ctx, a.TypeID); err == nil {
			d.Type = &t
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if d.Mother, err = optionalAnimal(ctx, tx, a.MotherID); err != nil {
			return err
		}
		if d.Father, err = optionalAnimal(ctx, tx, a.FatherID); err != nil {
			return err
		}
		return nil
	})
	return d, err
}

func (s *Service) ListAnimals(ctx context.Context, f ListFilter) ([]Animal, error) {
	f.TypeID = strings.TrimSpace(f.TypeID)
	f.Search = strings.TrimSpace(f.Search)
	if f.Limit < 0 {
		return nil, invalid("limit", "must not be negative")
	}

	var out []Animal
	err := s.view(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListAnimals(ctx, f)
		return err
	})
	return out, err
}

func (s *Service) UpdateAnimal(ctx context.Context, id string, p AnimalPatch) (Animal, error) {
	var out Animal
	err := s.update(ctx, func(tx Tx) error {
		cur, err := getAnimal(ctx, tx, id)
		if err != nil {
			return err
		}

		next := cur
		p.apply(&next)
		if err := s.checkFields(next); err != nil {
			return err
		}

		var roles []Role
		if p.MotherID.Present {
			roles = append(roles, RoleMother)
		}
		if p.FatherID.Present {
			roles = append(roles, RoleFather)
		}
		if err := s.checkRefs(ctx, tx, next, roles...); err != nil {
			return err
		}

		next.UpdatedAt = s.now()
		if err := tx.UpdateAnimal(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return Animal{}, err
	}
	return out, nil
}

// DeleteAnimal falla con ErrHasDependents si el animal es progenitor de otro.
func (s *Service) DeleteAnimal(ctx context.Context, id string) error {
	err := s.update(ctx, func(tx Tx) error {
		if _, err := getAnimal(ctx, tx, id); err != nil {
			return err
		}

		children, err := tx.FindAnimalsByParent(ctx, id)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return fmt.Errorf("%w: animal is the parent of %d other animal(s)", ErrHasDependents, len(children))
		}
		return tx.DeleteAnimal(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("animal deleted", map[string]any{"animal_id": id})
	return nil
}

// checkFields valida lo que no depende del store.
func (s *Service) checkFields(a Animal) error {
	if err := s.validateAnimal(a); err != nil {
		return err
	}
	if _, err := a.Metadata.Encode(); err != nil {
		return err
	}
	return nil
}

// checkRefs valida referencias contra el store: tipo, identifier único y,
// para cada rol indicado, existencia del progenitor + reglas de parentesco.
func (s *Service) checkRefs(ctx context.Context, tx Tx, a Animal, roles ...Role) error {
	if _, err := tx.GetAnimalType(ctx, a.TypeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return referenceNotFound("animal type", a.TypeID)
		}
		return err
	}

	other, err := tx.GetAnimalByIdentifier(ctx, a.Identifier)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	case other.ID != a.ID:
		return fmt.Errorf("%w: animal with identifier %q", ErrDuplicate, a.Identifier)
	}

	for _, role := range roles {
		pid := a.ParentID(role)
		if pid == "" {
			continue
		}

		if err := CheckParentage(ctx, tx, a.ID, pid, role); err != nil {
			if errors.Is(err, ErrParentageConflict) {
				s.metrics.ParentageRejected(string(role))
				s.log.Warn("parentage rejected", map[string]any{
					"animal_id": a.ID,
					"parent_id": pid,
					"role":      string(role),
				})
			}
			return err
		}

		if _, err := tx.GetAnimal(ctx, pid); err != nil {
			if errors.Is(err, ErrNotFound) {
				return referenceNotFound(string(role), pid)
			}
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Traversals
// ---------------------------------------------------------------------------

// Pedigree arma el árbol de ancestros; generations se acota a [1, MaxGenerations].
func (s *Service) Pedigree(ctx context.Context, id string, generations int) (*PedigreeNode, error) {
	var root *PedigreeNode
	err := s.view(ctx, func(tx Tx) error {
		var err error
		root, err = BuildPedigree(ctx, tx, id, generations)
		return err
	})
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, notFound("animal", id)
	}

	s.metrics.TraversalVisited("pedigree", root.Size())
	return root, nil
}

func (s *Service) Offspring(ctx context.Context, id string) ([]Offspring, error) {
	var out []Offspring
	err := s.view(ctx, func(tx Tx) error {
		var err error
		out, err = DirectOffspring(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, animalErr(err, id)
	}

	s.metrics.TraversalVisited("offspring", len(out))
	return out, nil
}

func (s *Service) Ancestors(ctx context.Context, id string) ([]Animal, error) {
	var out []Animal
	err := s.view(ctx, func(tx Tx) error {
		var err error
		out, err = Ancestors(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, animalErr(err, id)
	}

	s.metrics.TraversalVisited("ancestors", len(out))
	return out, nil
}

func (s *Service) Descendants(ctx context.Context, id string) ([]Animal, error) {
	var out []Animal
	err := s.view(ctx, func(tx Tx) error {
		var err error
		out, err = Descendants(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, animalErr(err, id)
	}

	s.metrics.TraversalVisited("descendants", len(out))
	return out, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func getAnimal(ctx context.Context, tx Tx, id string) (Animal, error) {
	a, err := tx.GetAnimal(ctx, id)
	if err != nil {
		return Animal{}, animalErr(err, id)
	}
	return a, nil
}

func optionalAnimal(ctx context.Context, tx Tx, id string) (*Animal, error) {
	if id == "" {
		return nil, nil
	}
	a, err := tx.GetAnimal(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// animalErr normaliza el ErrNotFound del store a NotFoundError{animal}.
func animalErr(err error, id string) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	if errors.Is(err, ErrNotFound) {
		return notFound("animal", id)
	}
	return err
}

func normalizeGender(s string) Gender {
	if g, ok := ParseGender(s); ok {
		return g
	}
	// se deja el valor crudo para que la validación informe el error
	return Gender(strings.TrimSpace(s))
}

func derefTrim(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
