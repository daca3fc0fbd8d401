package main

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tvshowcase/jobs"
	"tvshowcase/middleware"
	"tvshowcase/models"
	"tvshowcase/repository"
	"tvshowcase/sample"
)

const serviceName = "catalog"

// App represents the application with its dependencies
type App struct {
	catalog  *repository.CatalogRepository
	resetJob *jobs.CatalogResetJob
	log      *zap.Logger
}

// newRouter wires every endpoint and the middleware stack
func newRouter(app *App, cfg Config, reg *prometheus.Registry) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.NewMetrics(reg).Middleware(serviceName))

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/ready", app.readyHandler).Methods(http.MethodGet)
	r.Handle("/metrics", middleware.MetricsAuth(cfg.MetricsToken)(
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	)).Methods(http.MethodGet)

	// Public API used by the TV client
	r.HandleFunc("/get_categories", app.categoriesHandler(false)).Methods(http.MethodGet)
	r.HandleFunc("/get_shuffled_categories", app.categoriesHandler(true)).Methods(http.MethodGet)
	r.HandleFunc("/get_videos_by_category", app.videosByCategoryHandler(false)).Methods(http.MethodGet)
	r.HandleFunc("/get_shuffled_videos_by_category", app.videosByCategoryHandler(true)).Methods(http.MethodGet)
	r.HandleFunc("/get_videos_by_category_and_duplicate_to_new_category",
		app.duplicateCategoryHandler(false)).Methods(http.MethodGet)
	r.HandleFunc("/get_shuffled_videos_by_category_and_duplicate_to_new_category",
		app.duplicateCategoryHandler(true)).Methods(http.MethodGet)
	r.HandleFunc("/get_all_videos", app.allVideosHandler).Methods(http.MethodGet)
	r.HandleFunc("/get_video_by_id", app.getVideoByIDHandler).Methods(http.MethodGet)
	r.HandleFunc("/rent_video", app.rentedHandler(true)).Methods(http.MethodPost)
	r.HandleFunc("/un_rent_video", app.rentedHandler(false)).Methods(http.MethodPost)

	// Admin endpoints, not meant for clients
	admin := middleware.BearerToken(cfg.AdminToken)
	r.Handle("/create", admin(http.HandlerFunc(app.createHandler))).Methods(http.MethodGet)
	r.Handle("/clear", admin(http.HandlerFunc(app.clearHandler))).Methods(http.MethodGet)
	r.Handle("/is_database_created", admin(http.HandlerFunc(app.statusHandler))).Methods(http.MethodGet)
	r.Handle("/find_largest_movie_id", admin(http.HandlerFunc(app.nextIDHandler))).Methods(http.MethodGet)
	r.Handle("/reset", admin(http.HandlerFunc(app.resetHandler))).Methods(http.MethodPost)
	r.Handle("/rename_category", admin(http.HandlerFunc(app.renameCategoryHandler))).Methods(http.MethodPost)

	var h http.Handler = r
	h = cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	})(h)
	h = middleware.Recoverer(app.log)(h)
	h = middleware.Logging(app.log)(h)
	h = middleware.RequestID(h)
	return h
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		zap.L().Warn("failed to write response", zap.Error(err))
	}
}

func (app *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.catalog.Ping(r.Context()); err != nil {
		app.log.Warn("ready check failed", zap.Error(err))
		middleware.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (app *App) categoriesHandler(shuffled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := app.catalog.ListCategories(r.Context())
		if err != nil {
			app.writeStoreError(w, r, err)
			return
		}
		if shuffled {
			shuffle(categories)
		}
		middleware.WriteJSON(w, http.StatusOK, categories)
	}
}

func (app *App) videosByCategoryHandler(shuffled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, ok := requireParam(w, r, "category")
		if !ok {
			return
		}

		videos, err := app.catalog.ListVideosByCategory(r.Context(), category)
		if err != nil {
			app.writeStoreError(w, r, err)
			return
		}
		if shuffled {
			shuffle(videos)
		}
		middleware.WriteJSON(w, http.StatusOK, videos)
	}
}

// duplicateCategoryHandler copies category `from` into `to`, duplicates one
// video inside `from`, and returns the videos of `from`
func (app *App) duplicateCategoryHandler(shuffled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, ok := requireParam(w, r, "from")
		if !ok {
			return
		}
		to, ok := requireParam(w, r, "to")
		if !ok {
			return
		}

		copies, dup, err := app.catalog.DuplicateCategoryAndVideo(r.Context(), from, to)
		if err != nil {
			app.writeStoreError(w, r, err)
			return
		}

		fields := []zap.Field{zap.String("from", from), zap.String("to", to), zap.Int("copied", len(copies))}
		if dup != nil {
			fields = append(fields, zap.Int64("duplicated_video", dup.ID))
		}
		app.log.Info("category duplicated", fields...)

		videos, err := app.catalog.ListVideosByCategory(r.Context(), from)
		if err != nil {
			app.writeStoreError(w, r, err)
			return
		}
		if shuffled {
			shuffle(videos)
		}
		middleware.WriteJSON(w, http.StatusOK, videos)
	}
}

func (app *App) allVideosHandler(w http.ResponseWriter, r *http.Request) {
	videos, err := app.catalog.ListVideos(r.Context())
	if err != nil {
		app.writeStoreError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, videos)
}

func (app *App) getVideoByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}

	video, err := app.catalog.GetVideo(r.Context(), id)
	if err != nil {
		app.writeStoreError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, video)
}

func (app *App) rentedHandler(rented bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireID(w, r)
		if !ok {
			return
		}

		video, err := app.catalog.SetRented(r.Context(), id, rented)
		if err != nil {
			app.writeStoreError(w, r, err)
			return
		}
		middleware.WriteJSON(w, http.StatusOK, video)
	}
}

func (app *App) createHandler(w http.ResponseWriter, r *http.Request) {
	catalog, err := sample.Catalog()
	if err != nil {
		app.writeStoreError(w, r, err)
		return
	}

	created, err := app.catalog.Seed(r.Context(), catalog)
	if errors.Is(err, repository.ErrAlreadySeeded) {
		// an existing database only needs its id counter refreshed
		if _, err := app.catalog.LoadNextID(r.Context()); err != nil {
			app.writeStoreError(w, r, err)
			return
		}
		app.writeStoreError(w, r, repository.ErrAlreadySeeded)
		return
	}
	if err != nil {
		app.writeStoreError(w, r, err)
		return
	}

	app.log.Info("catalog created", zap.Int("videos", created))
	app.writeStatus(w, r, "Database Created")
}

func (app *App) clearHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.catalog.Clear(r.Context()); err != nil {
		app.writeStoreError(w, r, err)
		return
	}
	app.log.Info("catalog cleared")
	app.writeStatus(w, r, "Database Cleared")
}

func (app *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	status, err := app.catalog.Status(r.Context())
	if err != nil {
		app.writeStoreError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, status)
}

func (app *App) nextIDHandler(w http.ResponseWriter, r *http.Request) {
	next, err := app.catalog.LoadNextID(r.Context())
	if err != nil {
		app.writeStoreError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int64{"next_id": next})
}

func (app *App) resetHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := app.resetJob.Run(r.Context()); err != nil {
		app.writeStoreError(w, r, err)
		return
	}
	app.writeStatus(w, r, "Database Reset")
}

func (app *App) renameCategoryHandler(w http.ResponseWriter, r *http.Request) {
	from, ok := requireParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := requireParam(w, r, "to")
	if !ok {
		return
	}

	if err := app.catalog.RenameCategory(r.Context(), from, to); err != nil {
		app.writeStoreError(w, r, err)
		return
	}
	app.log.Info("category renamed", zap.String("from", from), zap.String("to", to))
	app.writeStatus(w, r, "Category Renamed")
}

func (app *App) writeStatus(w http.ResponseWriter, r *http.Request, message string) {
	status, err := app.catalog.Status(r.Context())
	if err != nil {
		app.writeStoreError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, models.AdminResponse{Message: message, Status: status})
}

// writeStoreError maps repository errors onto HTTP statuses
func (app *App) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		middleware.WriteError(w, r, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrAlreadySeeded):
		middleware.WriteError(w, r, http.StatusConflict, err.Error(), nil)
	default:
		app.log.Error("catalog request failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFrom(r.Context())),
		)
		middleware.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

// requireParam returns the raw parameter value; blank values are rejected
func requireParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := r.FormValue(name)
	if strings.TrimSpace(value) == "" {
		middleware.WriteError(w, r, http.StatusBadRequest, name+" is required", nil)
		return "", false
	}
	return value, true
}

func requireID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw, ok := requireParam(w, r, "id")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "Invalid video ID", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

// shuffle permutes items uniformly in place
func shuffle[T any](items []T) {
	rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}
