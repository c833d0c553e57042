package entries

import (
	"formintake/core"
	"formintake/form"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// HandleList returns the submission log, newest first.
func HandleList(c *form.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := c.Records()
		if records == nil {
			records = []core.SubmissionRecord{}
		}
		render.JSON(w, r, records)
	}
}

// HandleDelete removes the record with the given timestamp. Deleting an
// unknown timestamp succeeds without touching the log.
func HandleDelete(c *form.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timestamp := chi.URLParam(r, "timestamp")
		if timestamp == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Timestamp is required"})
			return
		}

		if err := c.Delete(r.Context(), timestamp); err != nil {
			logrus.WithFields(logrus.Fields{
				"error":     err,
				"timestamp": timestamp,
			}).Error("Failed to delete submission")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to delete submission"})
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, map[string]string{"status": "deleted"})
	}
}

// HandleCopy returns the textual rendering of one record, the same text the
// clipboard action uses.
func HandleCopy(c *form.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timestamp := chi.URLParam(r, "timestamp")

		text, ok := c.FormatRecord(timestamp)
		if !ok {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Submission not found"})
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(text))
	}
}
