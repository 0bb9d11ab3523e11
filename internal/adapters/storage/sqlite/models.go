package sqlite

import (
	"time"

	"pedigree-tracker/internal/domain/animals"
)

// Los timestamps los fija el Service; gorm no debe pisarlos.
type animalTypeModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	Description string
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (animalTypeModel) TableName() string { return "animal_types" }

type animalModel struct {
	ID           string `gorm:"primaryKey"`
	Identifier   string
	Name         string
	Gender       string
	DateOfBirth  *string // YYYY-MM-DD
	Description  string
	Notes        string
	ExternalID   string
	MetadataJSON *string `gorm:"column:metadata_json"`
	IsActive     bool
	TypeID       string
	MotherID     *string
	FatherID     *string
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}

func (animalModel) TableName() string { return "animals" }

const dateLayout = "2006-01-02"

func toTypeModel(t animals.AnimalType) animalTypeModel {
	return animalTypeModel{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func (m animalTypeModel) toDomain() animals.AnimalType {
	return animals.AnimalType{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toAnimalModel(a animals.Animal) (animalModel, error) {
	meta, err := a.Metadata.Encode()
	if err != nil {
		return animalModel{}, err
	}

	m := animalModel{
		ID:           a.ID,
		Identifier:   a.Identifier,
		Name:         a.Name,
		Gender:       string(a.Gender),
		Description:  a.Description,
		Notes:        a.Notes,
		ExternalID:   a.ExternalID,
		MetadataJSON: optional(meta),
		IsActive:     a.IsActive,
		TypeID:       a.TypeID,
		MotherID:     optional(a.MotherID),
		FatherID:     optional(a.FatherID),
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
	}
	if a.DateOfBirth != nil {
		d := a.DateOfBirth.Format(dateLayout)
		m.DateOfBirth = &d
	}
	return m, nil
}

func (m animalModel) toDomain() (animals.Animal, error) {
	a := animals.Animal{
		ID:          m.ID,
		Identifier:  m.Identifier,
		Name:        m.Name,
		Gender:      animals.Gender(m.Gender),
		Description: m.Description,
		Notes:       m.Notes,
		ExternalID:  m.ExternalID,
		IsActive:    m.IsActive,
		TypeID:      m.TypeID,
		MotherID:    deref(m.MotherID),
		FatherID:    deref(m.FatherID),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	if m.DateOfBirth != nil && *m.DateOfBirth != "" {
		d, err := time.Parse(dateLayout, *m.DateOfBirth)
		if err != nil {
			return animals.Animal{}, err
		}
		a.DateOfBirth = &d
	}

	meta, err := animals.ParseMetadata(deref(m.MetadataJSON))
	if err != nil {
		return animals.Animal{}, err
	}
	a.Metadata = meta
	return a, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
