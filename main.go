package main

import (
	"context"
	"flag"
	"formintake/core"
	"formintake/form"
	"formintake/handlers/api/entries"
	apiform "formintake/handlers/api/form"
	"formintake/handlers/intake"
	appMiddleware "formintake/middleware"
	"formintake/stores"
	"formintake/stores/jsonfile"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func setupRouter(controller *form.Controller, previewer *form.MemoryPreviewer, entryLog core.EntryLog) *chi.Mux {
	r := chi.NewRouter()
	r.Use(appMiddleware.RequestLogger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "X-File-Name", "Origin"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/form", func(r chi.Router) {
			r.Get("/", apiform.HandleGetSession(controller))
			r.Post("/field", apiform.HandleSetField(controller))
			r.Post("/hobby", apiform.HandleToggleHobby(controller))
			r.Post("/agree", apiform.HandleSetAgree(controller))
			r.Put("/profile", apiform.HandleSetProfile(controller))
			r.Get("/preview", apiform.HandlePreview(controller, previewer))
			r.Post("/submit", apiform.HandleSubmit(controller))
			r.Post("/reset", apiform.HandleReset(controller))
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", entries.HandleList(controller))
			r.Route("/{timestamp}", func(r chi.Router) {
				r.Delete("/", entries.HandleDelete(controller))
				r.Get("/copy", entries.HandleCopy(controller))
			})
		})
	})

	// The standalone form endpoint. Unrelated to the session API above; it
	// appends to its own flat file.
	r.Get("/", intake.HandlePage())
	r.Post("/submit", intake.HandleSubmit(entryLog))

	return r
}

func waitForShutdown() {
	exit := make(chan struct{})
	signalC := make(chan os.Signal, 1)

	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range signalC {
			switch s {
			case os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	logrus.Info("Shutting down")
	os.Exit(0)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3003", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	store := stores.GetStore()

	snapshotKey := os.Getenv("SNAPSHOT_KEY")
	if snapshotKey == "" {
		snapshotKey = "submissions"
	}

	previewer := form.NewMemoryPreviewer()
	controller := form.NewController(store, snapshotKey, form.DataURLEncoder{}, previewer, nil)
	if err := controller.Load(context.Background()); err != nil {
		logrus.WithError(err).Fatal("Failed to load submission log")
	}

	formLogPath := os.Getenv("FORM_LOG_PATH")
	if formLogPath == "" {
		formLogPath = "./data/form-entries.json"
	}
	entryLog := jsonfile.NewEntryLog(formLogPath)

	r := setupRouter(controller, previewer, entryLog)

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := http.ListenAndServe(*listenAddress, r); err != nil {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	waitForShutdown()
}
