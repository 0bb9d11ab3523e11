package animals

import "context"

// Repository es el Entity Store. Cada llamada del Service usa exactamente una transacción:
// View para lecturas, Update para escrituras. Si fn devuelve error, Update hace rollback
// y el estado previo queda intacto.
type Repository interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
}

// Tx expone las operaciones del store dentro de una transacción.
// Todas devuelven errores del dominio (ErrNotFound, ErrDuplicate, ErrHasDependents).
type Tx interface {
	GetAnimalType(ctx context.Context, id string) (AnimalType, error)
	GetAnimalTypeByName(ctx context.Context, name string) (AnimalType, error)
	ListAnimalTypes(ctx context.Context) ([]AnimalType, error)
	CountAnimalsByType(ctx context.Context, typeID string) (int, error)
	CreateAnimalType(ctx context.Context, t AnimalType) error
	UpdateAnimalType(ctx context.Context, t AnimalType) error
	DeleteAnimalType(ctx context.Context, id string) error

	GetAnimal(ctx context.Context, id string) (Animal, error)
	GetAnimalByIdentifier(ctx context.Context, identifier string) (Animal, error)
	ListAnimals(ctx context.Context, filter ListFilter) ([]Animal, error)
	// FindAnimalsByParent: hijos directos (mother_id = parentID OR father_id = parentID).
	FindAnimalsByParent(ctx context.Context, parentID string) ([]Animal, error)
	CreateAnimal(ctx context.Context, a Animal) error
	UpdateAnimal(ctx context.Context, a Animal) error
	DeleteAnimal(ctx context.Context, id string) error
}
