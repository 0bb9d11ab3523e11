package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pedigree-tracker/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{
		Clock: func() time.Time { return fixedNow },
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_PedigreeScenario(t *testing.T) {
	ts := newServer(t)

	// 1) Tipo + tres generaciones por línea paterna
	typeID := createType(t, ts.URL, "Cattle")

	gp := createAnimal(t, ts.URL, map[string]any{
		"identifier":     "GP001",
		"name":           "Grandpa",
		"gender":         "MALE",
		"date_of_birth":  "2020-05-01",
		"animal_type_id": typeID,
	})
	f := createAnimal(t, ts.URL, map[string]any{
		"identifier":     "F001",
		"gender":         "male",
		"date_of_birth":  "2023-03-10",
		"animal_type_id": typeID,
		"father_id":      gp,
	})
	c := createAnimal(t, ts.URL, map[string]any{
		"identifier":     "C001",
		"gender":         "female",
		"date_of_birth":  "2025-01-01",
		"animal_type_id": typeID,
		"father_id":      f,
		"metadata":       map[string]any{"breed": "Angus", "weight_kg": 312.5},
	})

	// 2) Detalle: edad derivada y metadata como objeto
	{
		st, body := doReq(t, ts.URL, http.MethodGet, "/api/v1/animals/"+gp, nil)
		require.Equal(t, http.StatusOK, st, string(body))

		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "male", got["gender"])
		assert.EqualValues(t, 6, got["age"])
		assert.Equal(t, true, got["is_adult"])
		assert.Nil(t, got["mother_id"])
	}
	{
		st, body := doReq(t, ts.URL, http.MethodGet, "/api/v1/animals/"+c+"?include=relations", nil)
		require.Equal(t, http.StatusOK, st, string(body))

		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		assert.EqualValues(t, 1, got["age"])
		assert.Equal(t, false, got["is_adult"])
		assert.Equal(t, map[string]any{"breed": "Angus", "weight_kg": 312.5}, got["metadata"])
		require.IsType(t, map[string]any{}, got["father"])
		assert.Equal(t, "F001", got["father"].(map[string]any)["identifier"])
		assert.Equal(t, "Cattle", got["animal_type"].(map[string]any)["name"])
		_, hasMother := got["mother"]
		assert.False(t, hasMother)
	}

	// 3) Pedigree con 3 y 2 generaciones
	{
		st, body := doReq(t, ts.URL, http.MethodGet, "/api/v1/animals/"+c+"/pedigree?generations=3", nil)
		require.Equal(t, http.StatusOK, st, string(body))

		var tree pedigreeNode
		require.NoError(t, json.Unmarshal(body, &tree))
		assert.Equal(t, "C001", tree.Identifier)
		assert.Equal(t, "Cattle", tree.AnimalType)
		assert.Nil(t, tree.Mother)
		require.NotNil(t, tree.Father)
		assert.Equal(t, "F001", tree.Father.Identifier)
		require.NotNil(t, tree.Father.Father)
		assert.Equal(t, "GP001", tree.Father.Father.Identifier)
		assert.Nil(t, tree.Father.Father.Father)
	}
	{
		st, body := doReq(t, ts.URL, http.MethodGet, "/api/v1/animals/"+c+"/pedigree?generations=2", nil)
		require.Equal(t, http.StatusOK, st, string(body))

		var tree pedigreeNode
		require.NoError(t, json.Unmarshal(body, &tree))
		require.NotNil(t, tree.Father)
		assert.Nil(t, tree.Father.Father)
	}
	{
		st, body := doReq(t, ts.URL, http.MethodGet, "/api/v1/animals/"+c+"/pedigree?generations=abc", nil)
		assert.Equal(t, http.StatusBadRequest, st, string(body))
		assertErrorCode(t, body, "invalid_input")
	}

	// 4) Offspring / ancestors / descendants
	{
		st, body := doReq(t, ts.URL, http.MethodGet, "/api/v1/animals/"+f+"/offspring", nil)
		require.Equal(t, http.StatusOK, st, string(body))

		var items []map[string]any
		require.NoError(t, json.Unmarshal(body, &items))
		require.Len(t, items, 1)
		assert.Equal(t, "C001", items[0]["identifier"])
		assert.Equal(t, "father", items[0]["relationship"])
	}
	assert.Equal(t, []string{"F001", "GP001"}, identifiers(t, ts.URL, "/api/v1/animals/"+c+"/ancestors"))
	assert.Equal(t, []string{"F001", "C001"}, identifiers(t, ts.URL, "/api/v1/animals/"+gp+"/descendants"))
	assert.Empty(t, identifiers(t, ts.URL, "/api/v1/animals/"+gp+"/ancestors"))

	// 5) Ciclo: GP001.father = C001 debe rechazarse y no persistir
	{
		st, body := doReq(t, ts.URL, http.MethodPatch, "/api/v1/animals/"+gp, map[string]any{"father_id": c})
		assert.Equal(t, http.StatusConflict, st, string(body))
		assertErrorCode(t, body, "parentage_conflict")

		st, body = doReq(t, ts.URL, http.MethodGet, "/api/v1/animals/"+gp, nil)
		require.Equal(t, http.StatusOK, st)
		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Nil(t, got["father_id"])
	}

	// 6) Self-parent
	{
		st, body := doReq(t, ts.URL, http.MethodPut, "/api/v1/animals/"+f, map[string]any{"mother_id": f})
		assert.Equal(t, http.StatusConflict, st, string(body))
		assertErrorCode(t, body, "parentage_conflict")
	}

	// 7) Guardas de borrado
	{
		st, body := doReq(t, ts.URL, http.MethodDelete, "/api/v1/animals/"+f, nil)
		assert.Equal(t, http.StatusConflict, st, string(body))
		assertErrorCode(t, body, "has_dependents")

		st, body = doReq(t, ts.URL, http.MethodDelete, "/api/v1/animal-types/"+typeID, nil)
		assert.Equal(t, http.StatusConflict, st, string(body))
		assertErrorCode(t, body, "has_dependents")

		st, _ = doReq(t, ts.URL, http.MethodDelete, "/api/v1/animals/"+c, nil)
		assert.Equal(t, http.StatusNoContent, st)

		st, _ = doReq(t, ts.URL, http.MethodDelete, "/api/v1/animals/"+f, nil)
		assert.Equal(t, http.StatusNoContent, st)
	}

	// 8) Clearing de padre vía null
	{
		st, body := doReq(t, ts.URL, http.MethodPatch, "/api/v1/animals/"+gp, map[string]any{"father_id": nil, "name": "Old Grandpa"})
		require.Equal(t, http.StatusOK, st, string(body))
	}
}

func TestHTTP_ValidationAndReferences(t *testing.T) {
	ts := newServer(t)
	typeID := createType(t, ts.URL, "Sheep")

	createAnimal(t, ts.URL, map[string]any{
		"identifier":     "S-1",
		"gender":         "female",
		"animal_type_id": typeID,
	})

	cases := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{
			name:   "duplicate identifier",
			body:   map[string]any{"identifier": "S-1", "gender": "male", "animal_type_id": typeID},
			status: http.StatusConflict,
			code:   "duplicate",
		},
		{
			name:   "missing identifier",
			body:   map[string]any{"gender": "male", "animal_type_id": typeID},
			status: http.StatusBadRequest,
			code:   "invalid_input",
		},
		{
			name:   "bad gender",
			body:   map[string]any{"identifier": "S-2", "gender": "other", "animal_type_id": typeID},
			status: http.StatusBadRequest,
			code:   "invalid_input",
		},
		{
			name:   "bad date",
			body:   map[string]any{"identifier": "S-2", "gender": "male", "animal_type_id": typeID, "date_of_birth": "01/02/2020"},
			status: http.StatusBadRequest,
			code:   "invalid_input",
		},
		{
			name:   "unknown type",
			body:   map[string]any{"identifier": "S-2", "gender": "male", "animal_type_id": "nope"},
			status: http.StatusBadRequest,
			code:   "invalid_reference",
		},
		{
			name:   "unknown mother",
			body:   map[string]any{"identifier": "S-2", "gender": "male", "animal_type_id": typeID, "mother_id": "ghost"},
			status: http.StatusBadRequest,
			code:   "invalid_reference",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, http.MethodPost, "/api/v1/animals", tc.body)
			assert.Equal(t, tc.status, st, string(body))
			assertErrorCode(t, body, tc.code)
		})
	}

	st, body := doReq(t, ts.URL, http.MethodGet, "/api/v1/animals/missing", nil)
	assert.Equal(t, http.StatusNotFound, st)
	assertErrorCode(t, body, "not_found")

	st, body = doReq(t, ts.URL, http.MethodPost, "/api/v1/animal-types", map[string]any{"name": "Sheep"})
	assert.Equal(t, http.StatusConflict, st, string(body))
}

func TestHTTP_ListFilters(t *testing.T) {
	ts := newServer(t)
	cattle := createType(t, ts.URL, "Cattle")
	goats := createType(t, ts.URL, "Goats")

	createAnimal(t, ts.URL, map[string]any{"identifier": "C-1", "name": "Bessie", "gender": "female", "animal_type_id": cattle})
	createAnimal(t, ts.URL, map[string]any{"identifier": "C-2", "name": "Bruno", "gender": "male", "animal_type_id": cattle, "is_active": false})
	createAnimal(t, ts.URL, map[string]any{"identifier": "G-1", "name": "Billy", "gender": "male", "animal_type_id": goats})

	assert.Equal(t, []string{"C-1", "C-2"}, identifiers(t, ts.URL, "/api/v1/animals?type_id="+cattle))
	assert.Equal(t, []string{"C-1", "G-1"}, identifiers(t, ts.URL, "/api/v1/animals?active=true"))
	assert.Equal(t, []string{"C-2"}, identifiers(t, ts.URL, "/api/v1/animals?search=BRU"))
	assert.Equal(t, []string{"C-1"}, identifiers(t, ts.URL, "/api/v1/animals?limit=1"))

	st, _ := doReq(t, ts.URL, http.MethodGet, "/api/v1/animals?active=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, st)
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, st)
	assert.Equal(t, "ok", string(body))

	_, _ = doReq(t, ts.URL, http.MethodGet, "/api/v1/animal-types", nil)

	st, body = doReq(t, ts.URL, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), `pedigree_http_requests_total{method="GET",route="/api/v1/animal-types`)
}

type pedigreeNode struct {
	Identifier string        `json:"identifier"`
	AnimalType string        `json:"animal_type"`
	Mother     *pedigreeNode `json:"mother"`
	Father     *pedigreeNode `json:"father"`
}

func createType(t *testing.T, baseURL, name string) string {
	t.Helper()
	st, body := doReq(t, baseURL, http.MethodPost, "/api/v1/animal-types", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, st, string(body))
	return decodeID(t, body)
}

func createAnimal(t *testing.T, baseURL string, payload map[string]any) string {
	t.Helper()
	st, body := doReq(t, baseURL, http.MethodPost, "/api/v1/animals", payload)
	require.Equal(t, http.StatusCreated, st, string(body))
	return decodeID(t, body)
}

func identifiers(t *testing.T, baseURL, path string) []string {
	t.Helper()
	st, body := doReq(t, baseURL, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, st, string(body))

	var items []struct {
		Identifier string `json:"identifier"`
	}
	require.NoError(t, json.Unmarshal(body, &items))

	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Identifier)
	}
	return out
}

func decodeID(t *testing.T, body []byte) string {
	t.Helper()
	var v struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &v))
	require.NotEmpty(t, v.ID)
	return v.ID
}

func assertErrorCode(t *testing.T, body []byte, code string) {
	t.Helper()
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	assert.Equal(t, code, e.Error)
	assert.NotEmpty(t, e.Message)
}

func doReq(t *testing.T, baseURL, method, path string, payload any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, r)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}
