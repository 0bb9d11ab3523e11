package animals

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"pedigree-tracker/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /animal-types y /animals sobre r (el router los cuelga de /api/v1).
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	if log == nil {
		log = logger.NewNop()
	}
	h := &api{svc: svc, log: log}

	r.Route("/animal-types", func(tr chi.Router) {
		tr.Get("/", h.listAnimalTypes)
		tr.Post("/", h.createAnimalType)

		tr.Get("/{typeID}", h.getAnimalType)
		tr.Put("/{typeID}", h.updateAnimalType)
		tr.Patch("/{typeID}", h.updateAnimalType)
		tr.Delete("/{typeID}", h.deleteAnimalType)
	})

	r.Route("/animals", func(ar chi.Router) {
		ar.Get("/", h.listAnimals)
		ar.Post("/", h.createAnimal)

		ar.Get("/{animalID}", h.getAnimal)
		// PUT y PATCH comparten semántica: sólo se tocan los campos presentes.
		ar.Put("/{animalID}", h.updateAnimal)
		ar.Patch("/{animalID}", h.updateAnimal)
		ar.Delete("/{animalID}", h.deleteAnimal)

		// Genealogía
		ar.Get("/{animalID}/pedigree", h.getPedigree)
		ar.Get("/{animalID}/offspring", h.listOffspring)
		ar.Get("/{animalID}/ancestors", h.listAncestors)
		ar.Get("/{animalID}/descendants", h.listDescendants)
	})
}

type api struct {
	svc *Service
	log logger.Logger
}

const dateLayout = "2006-01-02"

type animalResponse struct {
	ID           string    `json:"id"`
	Identifier   string    `json:"identifier"`
	Name         string    `json:"name"`
	Gender       Gender    `json:"gender"`
	DateOfBirth  *string   `json:"date_of_birth"` // YYYY-MM-DD
	Age          int       `json:"age"`
	IsAdult      bool      `json:"is_adult"`
	Description  string    `json:"description"`
	Notes        string    `json:"notes"`
	ExternalID   string    `json:"external_id"`
	Metadata     Metadata  `json:"metadata"`
	IsActive     bool      `json:"is_active"`
	AnimalTypeID string    `json:"animal_type_id"`
	MotherID     *string   `json:"mother_id"`
	FatherID     *string   `json:"father_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Sólo con ?include=relations
	AnimalType *animalTypeResponse `json:"animal_type,omitempty"`
	Mother     *animalResponse     `json:"mother,omitempty"`
	Father     *animalResponse     `json:"father,omitempty"`
}

type offspringResponse struct {
	animalResponse
	Relationship Role `json:"relationship"`
}

type pedigreeResponse struct {
	ID          string            `json:"id"`
	Identifier  string            `json:"identifier"`
	Name        string            `json:"name"`
	Gender      Gender            `json:"gender"`
	DateOfBirth *string           `json:"date_of_birth"`
	AnimalType  *string           `json:"animal_type"`
	Mother      *pedigreeResponse `json:"mother"`
	Father      *pedigreeResponse `json:"father"`
}

// createAnimal godoc
// @Summary      Create an animal
// @Tags         animals
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "identifier, gender, animal_type_id are required; mother_id/father_id optional"
// @Success      201   {object}  animalResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /animals [post]
func (h *api) createAnimal(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	in, err := f.createAnimalInput()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.svc.CreateAnimal(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toAnimalResponse(a))
}

// listAnimals godoc
// @Summary      List animals
// @Tags         animals
// @Produce      json
// @Param        type_id  query     string  false  "filter by animal type"
// @Param        active   query     bool    false  "filter by is_active"
// @Param        search   query     string  false  "substring of name or identifier"
// @Param        limit    query     int     false  "max results"
// @Success      200      {array}   animalResponse
// @Failure      400      {object}  errorResponse
// @Router       /animals [get]
func (h *api) listAnimals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		TypeID: q.Get("type_id"),
		Search: q.Get("search"),
	}

	if v := strings.TrimSpace(q.Get("active")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, r, invalid("active", "must be true or false"))
			return
		}
		filter.Active = &b
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, r, invalid("limit", "must be an integer"))
			return
		}
		filter.Limit = n
	}

	items, err := h.svc.ListAnimals(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]animalResponse, 0, len(items))
	for _, a := range items {
		out = append(out, h.toAnimalResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// getAnimal godoc
// @Summary      Get an animal
// @Tags         animals
// @Produce      json
// @Param        animalID  path      string  true   "animal id"
// @Param        include   query     string  false  "relations: embed type, mother and father"
// @Success      200       {object}  animalResponse
// @Failure      404       {object}  errorResponse
// @Router       /animals/{animalID} [get]
func (h *api) getAnimal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "animalID")

	if r.URL.Query().Get("include") != "relations" {
		a, err := h.svc.GetAnimal(r.Context(), id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.toAnimalResponse(a))
		return
	}

	d, err := h.svc.GetAnimalDetail(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := h.toAnimalResponse(d.Animal)
	if d.Type != nil {
		t := toAnimalTypeResponse(*d.Type)
		resp.AnimalType = &t
	}
	if d.Mother != nil {
		m := h.toAnimalResponse(*d.Mother)
		resp.Mother = &m
	}
	if d.Father != nil {
		f := h.toAnimalResponse(*d.Father)
		resp.Father = &f
	}
	writeJSON(w, http.StatusOK, resp)
}

// updateAnimal godoc
// @Summary      Update an animal
// @Description  Only fields present in the body change. mother_id / father_id / date_of_birth / metadata accept null to clear.
// @Tags         animals
// @Accept       json
// @Produce      json
// @Param        animalID  path      string  true  "animal id"
// @Param        body      body      object  true  "fields to change"
// @Success      200       {object}  animalResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Router       /animals/{animalID} [patch]
func (h *api) updateAnimal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "animalID")

	f, err := decodeFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	patch, err := f.animalPatch()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.svc.UpdateAnimal(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toAnimalResponse(a))
}

// deleteAnimal godoc
// @Summary      Delete an animal
// @Tags         animals
// @Param        animalID  path  string  true  "animal id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /animals/{animalID} [delete]
func (h *api) deleteAnimal(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAnimal(r.Context(), chi.URLParam(r, "animalID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getPedigree godoc
// @Summary      Pedigree tree
// @Tags         lineage
// @Produce      json
// @Param        animalID     path      string  true   "animal id"
// @Param        generations  query     int     false  "generations to include (default 3, max 5)"
// @Success      200          {object}  pedigreeResponse
// @Failure      400          {object}  errorResponse
// @Failure      404          {object}  errorResponse
// @Router       /animals/{animalID}/pedigree [get]
func (h *api) getPedigree(w http.ResponseWriter, r *http.Request) {
	generations := DefaultGenerations
	if v := strings.TrimSpace(r.URL.Query().Get("generations")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, r, invalid("generations", "must be an integer"))
			return
		}
		generations = n
	}

	root, err := h.svc.Pedigree(r.Context(), chi.URLParam(r, "animalID"), generations)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPedigreeResponse(root))
}

// listOffspring godoc
// @Summary      Direct offspring
// @Tags         lineage
// @Produce      json
// @Param        animalID  path      string  true  "animal id"
// @Success      200       {array}   offspringResponse
// @Failure      404       {object}  errorResponse
// @Router       /animals/{animalID}/offspring [get]
func (h *api) listOffspring(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Offspring(r.Context(), chi.URLParam(r, "animalID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]offspringResponse, 0, len(items))
	for _, o := range items {
		out = append(out, offspringResponse{
			animalResponse: h.toAnimalResponse(o.Animal),
			Relationship:   o.Relationship,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// listAncestors godoc
// @Summary      All ancestors (BFS order)
// @Tags         lineage
// @Produce      json
// @Param        animalID  path      string  true  "animal id"
// @Success      200       {array}   animalResponse
// @Failure      404       {object}  errorResponse
// @Router       /animals/{animalID}/ancestors [get]
func (h *api) listAncestors(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Ancestors(r.Context(), chi.URLParam(r, "animalID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toAnimalResponses(items))
}

// listDescendants godoc
// @Summary      All descendants (BFS order)
// @Tags         lineage
// @Produce      json
// @Param        animalID  path      string  true  "animal id"
// @Success      200       {array}   animalResponse
// @Failure      404       {object}  errorResponse
// @Router       /animals/{animalID}/descendants [get]
func (h *api) listDescendants(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Descendants(r.Context(), chi.URLParam(r, "animalID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toAnimalResponses(items))
}

func (h *api) toAnimalResponse(a Animal) animalResponse {
	age := Age(a.DateOfBirth, h.svc.Now())
	return animalResponse{
		ID:           a.ID,
		Identifier:   a.Identifier,
		Name:         a.Name,
		Gender:       a.Gender,
		DateOfBirth:  formatDate(a.DateOfBirth),
		Age:          age,
		IsAdult:      IsAdult(age),
		Description:  a.Description,
		Notes:        a.Notes,
		ExternalID:   a.ExternalID,
		Metadata:     a.Metadata,
		IsActive:     a.IsActive,
		AnimalTypeID: a.TypeID,
		MotherID:     optional(a.MotherID),
		FatherID:     optional(a.FatherID),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (h *api) toAnimalResponses(items []Animal) []animalResponse {
	out := make([]animalResponse, 0, len(items))
	for _, a := range items {
		out = append(out, h.toAnimalResponse(a))
	}
	return out
}

func toPedigreeResponse(n *PedigreeNode) *pedigreeResponse {
	if n == nil {
		return nil
	}
	return &pedigreeResponse{
		ID:          n.ID,
		Identifier:  n.Identifier,
		Name:        n.Name,
		Gender:      n.Gender,
		DateOfBirth: formatDate(n.DateOfBirth),
		AnimalType:  optional(n.AnimalType),
		Mother:      toPedigreeResponse(n.Mother),
		Father:      toPedigreeResponse(n.Father),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
