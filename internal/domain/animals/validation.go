package animals

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Reglas declarativas sobre el estado final de la entidad (alta o update).
// Los límites de longitud vienen del esquema: identifier 50, name 100, external_id 50.
type animalRules struct {
	Identifier string `name:"identifier" validate:"required,max=50"`
	Name       string `name:"name" validate:"max=100"`
	Gender     string `name:"gender" validate:"required,oneof=male female unknown"`
	ExternalID string `name:"external_id" validate:"max=50"`
	TypeID     string `name:"animal_type_id" validate:"required"`
}

type animalTypeRules struct {
	Name string `name:"name" validate:"required,max=50"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Mensajes con el nombre de campo de la API, no el de Go.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("name"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

func (s *Service) validateAnimal(a Animal) error {
	return s.validateStruct(animalRules{
		Identifier: a.Identifier,
		Name:       a.Name,
		Gender:     string(a.Gender),
		ExternalID: a.ExternalID,
		TypeID:     a.TypeID,
	})
}

func (s *Service) validateAnimalType(t AnimalType) error {
	return s.validateStruct(animalTypeRules{Name: t.Name})
}

func (s *Service) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("", err.Error())
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return invalid(fe.Field(), "is required")
	case "max":
		return invalid(fe.Field(), fmt.Sprintf("must be at most %s characters", fe.Param()))
	case "oneof":
		vals := make([]string, 0, 3)
		for _, g := range Genders() {
			vals = append(vals, string(g))
		}
		return invalid(fe.Field(), "must be one of "+strings.Join(vals, ", "))
	default:
		return invalid(fe.Field(), "is invalid")
	}
}
