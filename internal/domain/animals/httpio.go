package animals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor traduce errores del dominio a (status, código estable).
func statusFor(err error) (int, string) {
	var nf *NotFoundError
	switch {
	case errors.As(err, &nf) && nf.Reference:
		// id inválido en el body, no en la ruta
		return http.StatusBadRequest, "invalid_reference"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, ErrParentageConflict):
		return http.StatusConflict, "parentage_conflict"
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, ErrHasDependents):
		return http.StatusConflict, "has_dependents"
	case errors.Is(err, ErrTxConflict):
		return http.StatusServiceUnavailable, "tx_conflict"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "canceled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", map[string]any{
			"request_id": chimw.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"error":      err.Error(),
		})
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}

	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// rawFields es el body decodificado a nivel de campo: permite distinguir
// "no enviado" de "null" en PATCH.
type rawFields map[string]json.RawMessage

func decodeFields(r *http.Request) (rawFields, error) {
	var f rawFields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		return nil, invalid("", "invalid json")
	}
	if f == nil {
		return nil, invalid("", "request body must be a JSON object")
	}
	return f, nil
}

func isNull(v json.RawMessage) bool {
	return strings.TrimSpace(string(v)) == "null"
}

// text: null se trata como "" (limpia el campo).
func (f rawFields) text(key string) (*string, error) {
	v, ok := f[key]
	if !ok {
		return nil, nil
	}
	s := ""
	if !isNull(v) {
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, invalid(key, "must be a string")
		}
	}
	return &s, nil
}

func (f rawFields) boolean(key string) (*bool, error) {
	v, ok := f[key]
	if !ok {
		return nil, nil
	}
	var b bool
	if isNull(v) || json.Unmarshal(v, &b) != nil {
		return nil, invalid(key, "must be a boolean")
	}
	return &b, nil
}

// ref: id de otra entidad. null o "" limpian.
func (f rawFields) ref(key string) (Clearable[string], error) {
	s, err := f.text(key)
	if err != nil || s == nil {
		return Clearable[string]{}, err
	}
	if strings.TrimSpace(*s) == "" {
		return Clear[string](), nil
	}
	return Set(*s), nil
}

func (f rawFields) date(key string) (Clearable[time.Time], error) {
	s, err := f.text(key)
	if err != nil || s == nil {
		return Clearable[time.Time]{}, err
	}
	if strings.TrimSpace(*s) == "" {
		return Clear[time.Time](), nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*s))
	if err != nil {
		return Clearable[time.Time]{}, invalid(key, "must be YYYY-MM-DD")
	}
	return Set(t), nil
}

func (f rawFields) metadata(key string) (Clearable[Metadata], error) {
	v, ok := f[key]
	if !ok {
		return Clearable[Metadata]{}, nil
	}
	if isNull(v) {
		return Clear[Metadata](), nil
	}
	m, err := ParseMetadata(string(v))
	if err != nil {
		return Clearable[Metadata]{}, err
	}
	return Set(m), nil
}

func (f rawFields) createAnimalInput() (CreateAnimalInput, error) {
	p, err := f.animalPatch()
	if err != nil {
		return CreateAnimalInput{}, err
	}

	in := CreateAnimalInput{
		Identifier:  deref(p.Identifier),
		Name:        deref(p.Name),
		Gender:      deref(p.Gender),
		DateOfBirth: p.DateOfBirth.Value,
		Description: deref(p.Description),
		Notes:       deref(p.Notes),
		ExternalID:  deref(p.ExternalID),
		IsActive:    p.IsActive,
		TypeID:      deref(p.TypeID),
		MotherID:    deref(p.MotherID.Value),
		FatherID:    deref(p.FatherID.Value),
	}
	if p.Metadata.Value != nil {
		in.Metadata = *p.Metadata.Value
	}
	return in, nil
}

func (f rawFields) animalPatch() (AnimalPatch, error) {
	var (
		p   AnimalPatch
		err error
	)

	texts := []struct {
		key string
		dst **string
	}{
		{"identifier", &p.Identifier},
		{"name", &p.Name},
		{"gender", &p.Gender},
		{"description", &p.Description},
		{"notes", &p.Notes},
		{"external_id", &p.ExternalID},
		{"animal_type_id", &p.TypeID},
	}
	for _, t := range texts {
		if *t.dst, err = f.text(t.key); err != nil {
			return AnimalPatch{}, err
		}
	}

	if p.IsActive, err = f.boolean("is_active"); err != nil {
		return AnimalPatch{}, err
	}
	if p.DateOfBirth, err = f.date("date_of_birth"); err != nil {
		return AnimalPatch{}, err
	}
	if p.Metadata, err = f.metadata("metadata"); err != nil {
		return AnimalPatch{}, err
	}
	if p.MotherID, err = f.ref("mother_id"); err != nil {
		return AnimalPatch{}, err
	}
	if p.FatherID, err = f.ref("father_id"); err != nil {
		return AnimalPatch{}, err
	}
	return p, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
