// Package intake is the standalone form endpoint: a static page posting
// three text fields, each post appended to a flat JSON file. It shares no
// storage or state with the form session API.
package intake

import (
	"embed"
	"fmt"
	"formintake/core"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

//go:embed static/form.html
var static embed.FS

const ackPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Thanks</title></head>
<body>
  <h1>Thank you, %s!</h1>
  <p>Your message has been received.</p>
  <p><a href="/">Back to the form</a></p>
</body>
</html>`

// HandlePage serves the static form page.
func HandlePage() http.HandlerFunc {
	page, err := static.ReadFile("static/form.html")
	if err != nil {
		panic(err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	}
}

// HandleSubmit accepts the posted fields, appends them to the entry log and
// responds with a static acknowledgment. Whatever was posted is accepted;
// validation is the browser form's problem, not ours. The echoed name is
// stripped of any markup before it goes back out.
func HandleSubmit(log core.EntryLog) http.HandlerFunc {
	sanitize := bluemonday.StrictPolicy()

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		entry := core.FormEntry{
			Name:        r.PostFormValue("name"),
			Email:       r.PostFormValue("email"),
			Message:     r.PostFormValue("message"),
			SubmittedAt: time.Now(),
		}

		if err := log.Append(r.Context(), entry); err != nil {
			logrus.WithError(err).Error("Failed to append form entry")
			http.Error(w, "Failed to store submission", http.StatusInternalServerError)
			return
		}

		name := sanitize.Sanitize(entry.Name)
		if name == "" {
			name = "friend"
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, ackPage, name)
	}
}
