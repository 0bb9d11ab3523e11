package animals

import (
	"strings"
	"time"
)

// Gender define el sexo del animal.
// @Enum male, female, unknown
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Genders devuelve los valores válidos en orden estable (útil para mensajes de error).
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderUnknown}
}

// ParseGender normaliza la entrada (case-insensitive). No hay default: vacío es inválido.
func ParseGender(s string) (Gender, bool) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case GenderMale, GenderFemale, GenderUnknown:
		return g, true
	default:
		return "", false
	}
}

// Role identifica el tipo de arista padre -> hijo.
type Role string

const (
	RoleMother Role = "mother"
	RoleFather Role = "father"
)

// AnimalType agrupa animales (Cattle, Sheep, Horses...).
type AnimalType struct {
	ID          string
	Name        string
	Description string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Animal es un individuo del registro con sus punteros a madre y padre.
// MotherID / FatherID vacíos = sin progenitor registrado.
type Animal struct {
	ID         string
	Identifier string // tag / caravana, único global

	Name        string
	Gender      Gender
	DateOfBirth *time.Time

	Description string
	Notes       string
	ExternalID  string
	Metadata    Metadata

	IsActive bool

	TypeID   string
	MotherID string
	FatherID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParentID devuelve el puntero correspondiente al rol.
func (a Animal) ParentID(role Role) string {
	if role == RoleMother {
		return a.MotherID
	}
	return a.FatherID
}

// Offspring es un hijo directo etiquetado con la arista que lo une al animal consultado.
type Offspring struct {
	Animal       Animal
	Relationship Role
}

// ListFilter aplica sobre ListAnimals. Campos vacíos = sin filtro.
type ListFilter struct {
	TypeID string
	Active *bool
	Search string // substring case-insensitive sobre name o identifier
	Limit  int
}
