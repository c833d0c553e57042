package form

import (
	"encoding/json"
	"errors"
	"formintake/core"
	"formintake/form"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// sessionView is what GET /api/form returns: the editable state, the last
// validation result, and the preview URL (null means placeholder).
type sessionView struct {
	State   core.FormState        `json:"state"`
	Errors  core.ValidationResult `json:"errors"`
	Preview *core.PreviewHandle   `json:"preview"`
}

func HandleGetSession(c *form.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, sessionView{
			State:   c.State(),
			Errors:  c.Errors(),
			Preview: c.Preview(),
		})
	}
}

func HandleSetField(c *form.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Field string `json:"field"`
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid request body"})
			return
		}

		if err := c.SetField(body.Field, body.Value); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}
		render.JSON(w, r, c.State())
	}
}

func HandleToggleHobby(c *form.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Hobby   string `json:"hobby"`
			Checked bool   `json:"checked"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Hobby == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid request body"})
			return
		}

		c.ToggleHobby(body.Hobby, body.Checked)
		render.JSON(w, r, c.State())
	}
}

func HandleSetAgree(c *form.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Agree bool `json:"agree"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid request body"})
			return
		}

		c.SetAgree(body.Agree)
		render.JSON(w, r, c.State())
	}
}

// HandleSetProfile replaces the profile image with the raw request body. An
// empty body clears the selection. The MIME type comes from Content-Type and
// the original file name from the X-File-Name header.
func HandleSetProfile(c *form.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			logrus.WithError(err).Error("Failed to read profile upload")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to read request body"})
			return
		}
		defer r.Body.Close()

		if len(body) == 0 {
			c.SelectProfile(nil)
			render.JSON(w, r, sessionView{State: c.State(), Errors: c.Errors(), Preview: nil})
			return
		}

		c.SelectProfile(&core.ProfileImage{
			Name: r.Header.Get("X-File-Name"),
			MIME: r.Header.Get("Content-Type"),
			Data: body,
		})
		render.JSON(w, r, sessionView{State: c.State(), Errors: c.Errors(), Preview: c.Preview()})
	}
}

// HandlePreview serves the bytes behind the current preview handle. With no
// image selected it returns 404 and the client shows its placeholder.
func HandlePreview(c *form.Controller, previewer *form.MemoryPreviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := c.Preview()
		if handle == nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "No preview available"})
			return
		}

		mime, data, ok := previewer.Get(handle.Token)
		if !ok {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Preview expired"})
			return
		}

		w.Header().Set("Content-Type", mime)
		w.Write(data)
	}
}

func HandleSubmit(c *form.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := c.Submit(r.Context())
		if err != nil {
			switch {
			case errors.Is(err, form.ErrValidation):
				render.Status(r, http.StatusUnprocessableEntity)
				render.JSON(w, r, map[string]interface{}{"errors": c.Errors()})
			case errors.Is(err, form.ErrSubmitInProgress):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, map[string]string{"error": err.Error()})
			default:
				logrus.WithError(err).Error("Submission failed")
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, map[string]string{"error": "Submission failed"})
			}
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, record)
	}
}

func HandleReset(c *form.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.Reset()
		render.JSON(w, r, c.State())
	}
}
