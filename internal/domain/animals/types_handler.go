package animals

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type animalTypeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toAnimalTypeResponse(t AnimalType) animalTypeResponse {
	return animalTypeResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// createAnimalType godoc
// @Summary      Create an animal type
// @Tags         animal-types
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "name (required), description"
// @Success      201   {object}  animalTypeResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /animal-types [post]
func (h *api) createAnimalType(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	name, err := f.text("name")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	desc, err := f.text("description")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	t, err := h.svc.CreateAnimalType(r.Context(), CreateAnimalTypeInput{
		Name:        deref(name),
		Description: deref(desc),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAnimalTypeResponse(t))
}

// listAnimalTypes godoc
// @Summary      List animal types
// @Tags         animal-types
// @Produce      json
// @Success      200  {array}  animalTypeResponse
// @Router       /animal-types [get]
func (h *api) listAnimalTypes(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListAnimalTypes(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]animalTypeResponse, 0, len(items))
	for _, t := range items {
		out = append(out, toAnimalTypeResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// getAnimalType godoc
// @Summary      Get an animal type
// @Tags         animal-types
// @Produce      json
// @Param        typeID  path      string  true  "animal type id"
// @Success      200     {object}  animalTypeResponse
// @Failure      404     {object}  errorResponse
// @Router       /animal-types/{typeID} [get]
func (h *api) getAnimalType(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetAnimalType(r.Context(), chi.URLParam(r, "typeID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnimalTypeResponse(t))
}

// updateAnimalType godoc
// @Summary      Update an animal type
// @Tags         animal-types
// @Accept       json
// @Produce      json
// @Param        typeID  path      string  true  "animal type id"
// @Param        body    body      object  true  "name, description"
// @Success      200     {object}  animalTypeResponse
// @Failure      400     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Failure      409     {object}  errorResponse
// @Router       /animal-types/{typeID} [patch]
func (h *api) updateAnimalType(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var in UpdateAnimalTypeInput
	if in.Name, err = f.text("name"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if in.Description, err = f.text("description"); err != nil {
		h.writeError(w, r, err)
		return
	}

	t, err := h.svc.UpdateAnimalType(r.Context(), chi.URLParam(r, "typeID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnimalTypeResponse(t))
}

// deleteAnimalType godoc
// @Summary      Delete an animal type
// @Description  Fails with 409 while animals still reference the type.
// @Tags         animal-types
// @Param        typeID  path  string  true  "animal type id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /animal-types/{typeID} [delete]
func (h *api) deleteAnimalType(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAnimalType(r.Context(), chi.URLParam(r, "typeID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
