package form

import (
	"bytes"
	"encoding/json"
	"formintake/core"
	"formintake/form"
	"formintake/stores/memory"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) (*chi.Mux, *form.Controller) {
	t.Helper()

	previewer := form.NewMemoryPreviewer()
	controller := form.NewController(memory.NewStore(), "submissions", form.DataURLEncoder{}, previewer, nil)

	r := chi.NewRouter()
	r.Get("/api/form", HandleGetSession(controller))
	r.Post("/api/form/field", HandleSetField(controller))
	r.Post("/api/form/hobby", HandleToggleHobby(controller))
	r.Post("/api/form/agree", HandleSetAgree(controller))
	r.Put("/api/form/profile", HandleSetProfile(controller))
	r.Get("/api/form/preview", HandlePreview(controller, previewer))
	r.Post("/api/form/submit", HandleSubmit(controller))
	r.Post("/api/form/reset", HandleReset(controller))
	return r, controller
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetField(t *testing.T) {
	r, controller := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/form/field", `{"field":"name","value":"Ana"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana", controller.State().Name)
}

func TestSetField_Unknown(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/form/field", `{"field":"bogus","value":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetField_BadBody(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/form/field", `{"field":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleHobby(t *testing.T) {
	r, controller := testRouter(t)

	doJSON(t, r, http.MethodPost, "/api/form/hobby", `{"hobby":"coding","checked":true}`)
	doJSON(t, r, http.MethodPost, "/api/form/hobby", `{"hobby":"coding","checked":true}`)
	assert.Equal(t, []string{"coding"}, controller.State().Hobbies)

	doJSON(t, r, http.MethodPost, "/api/form/hobby", `{"hobby":"coding","checked":false}`)
	assert.Empty(t, controller.State().Hobbies)
}

func TestSubmit_ValidationErrors(t *testing.T) {
	r, controller := testRouter(t)

	doJSON(t, r, http.MethodPost, "/api/form/field", `{"field":"name","value":"Ana"}`)
	doJSON(t, r, http.MethodPost, "/api/form/field", `{"field":"email","value":"bad"}`)

	w := doJSON(t, r, http.MethodPost, "/api/form/submit", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "agree")

	assert.Empty(t, controller.Records())
	assert.Equal(t, "Ana", controller.State().Name)
}

func TestSubmit_Success(t *testing.T) {
	r, controller := testRouter(t)

	doJSON(t, r, http.MethodPost, "/api/form/field", `{"field":"name","value":"Ana"}`)
	doJSON(t, r, http.MethodPost, "/api/form/field", `{"field":"email","value":"ana@x.com"}`)
	doJSON(t, r, http.MethodPost, "/api/form/field", `{"field":"gender","value":"female"}`)
	doJSON(t, r, http.MethodPost, "/api/form/agree", `{"agree":true}`)

	w := doJSON(t, r, http.MethodPost, "/api/form/submit", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var record core.SubmissionRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "Ana", record.Name)
	assert.Nil(t, record.ProfileURL)
	assert.NotEmpty(t, record.Timestamp)

	// The session is reset after a successful submit.
	assert.Equal(t, core.FormState{}, controller.State())
	require.Len(t, controller.Records(), 1)
}

func TestProfileUploadAndPreview(t *testing.T) {
	r, controller := testRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/form/profile", bytes.NewReader([]byte{1, 2, 3}))
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("X-File-Name", "me.png")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	state := controller.State()
	require.NotNil(t, state.Profile)
	assert.Equal(t, "me.png", state.Profile.Name)

	pw := httptest.NewRecorder()
	r.ServeHTTP(pw, httptest.NewRequest(http.MethodGet, "/api/form/preview", nil))
	require.Equal(t, http.StatusOK, pw.Code)
	assert.Equal(t, "image/png", pw.Header().Get("Content-Type"))
	assert.Equal(t, []byte{1, 2, 3}, pw.Body.Bytes())

	// An empty body clears the selection and the preview falls back to 404.
	cw := httptest.NewRecorder()
	r.ServeHTTP(cw, httptest.NewRequest(http.MethodPut, "/api/form/profile", nil))
	require.Equal(t, http.StatusOK, cw.Code)

	nw := httptest.NewRecorder()
	r.ServeHTTP(nw, httptest.NewRequest(http.MethodGet, "/api/form/preview", nil))
	assert.Equal(t, http.StatusNotFound, nw.Code)
	assert.Nil(t, controller.State().Profile)
}

func TestGetSession(t *testing.T) {
	r, _ := testRouter(t)

	doJSON(t, r, http.MethodPost, "/api/form/field", `{"field":"bio","value":"hello"}`)

	w := doJSON(t, r, http.MethodGet, "/api/form", "")
	require.Equal(t, http.StatusOK, w.Code)

	var view struct {
		State   core.FormState    `json:"state"`
		Errors  map[string]string `json:"errors"`
		Preview *core.PreviewHandle
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "hello", view.State.Bio)
	assert.Empty(t, view.Errors)
	assert.Nil(t, view.Preview)
}

func TestReset(t *testing.T) {
	r, controller := testRouter(t)

	doJSON(t, r, http.MethodPost, "/api/form/field", `{"field":"name","value":"Ana"}`)
	w := doJSON(t, r, http.MethodPost, "/api/form/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, core.FormState{}, controller.State())
}
