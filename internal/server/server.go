package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"

	"github.com/meltforce/irontrack/internal/analytics"
	"github.com/meltforce/irontrack/internal/mcp"
	"github.com/meltforce/irontrack/internal/models"
	"github.com/meltforce/irontrack/internal/session"
	"github.com/meltforce/irontrack/internal/storage"
)

// Store is the durable side of the persistence gateway as the HTTP
// layer consumes it. *storage.DB satisfies it; tests substitute fakes.
type Store interface {
	ListExercises(ctx context.Context, userID int) ([]models.Exercise, error)
	CreateExercise(ctx context.Context, userID int, ex models.Exercise) (bool, error)
	ListWorkouts(ctx context.Context, userID, limit int) ([]models.Workout, error)
	InsertCompletedWorkout(ctx context.Context, userID int, w models.Workout) (bool, error)
	GetProfile(ctx context.Context, userID int) (models.Profile, error)
	UpdateProfile(ctx context.Context, userID int, p models.Profile) error
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    Store
	sessions *session.Manager
	analyzer *analytics.Analyzer
	log      *slog.Logger
	apiKey   string
	ts       *local.Client
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, sessions *session.Manager, analyzer *analytics.Analyzer, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		sessions: sessions,
		analyzer: analyzer,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale enables WhoIs-based identity resolution. Without it the
// dev identity (user 1) applies.
func (s *Server) SetTailscale(lc *local.Client) {
	s.ts = lc
}

// SetMCP mounts the MCP transport at /mcp, behind the same identity
// resolution as the REST API. The resolved user id is re-keyed into the
// MCP context so tool handlers see the right scope.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Mount("/mcp", s.identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := mcp.WithUserID(r.Context(), userIDFromContext(r))
		h.ServeHTTP(w, r.WithContext(ctx))
	})))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}
		r.Use(s.identity)

		r.Get("/me", s.handleMe)

		r.Get("/exercises", s.handleListExercises)
		r.Post("/exercises", s.handleCreateExercise)

		r.Get("/workouts", s.handleListWorkouts)
		r.Get("/workouts/last-performances", s.handleLastPerformances)

		r.Get("/analytics/muscle-distribution", s.handleMuscleDistribution)
		r.Get("/analytics/weekly-volume", s.handleWeeklyVolume)
		r.Get("/analytics/exercise-history/{exerciseID}", s.handleExerciseHistory)

		r.Get("/stats", s.handleStats)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handleUpdateProfile)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/", s.handleStartSession)
			r.Delete("/", s.handleDiscardSession)
			r.Post("/finish", s.handleFinishSession)

			r.Post("/exercises", s.handleSessionAddExercise)
			r.Delete("/exercises/{instanceID}", s.handleSessionRemoveExercise)
			r.Post("/exercises/{instanceID}/sets", s.handleSessionAddSet)
			r.Patch("/exercises/{instanceID}/sets/{setID}", s.handleSessionUpdateSet)
			r.Post("/exercises/{instanceID}/sets/{setID}/toggle", s.handleSessionToggleSet)
			r.Delete("/exercises/{instanceID}/sets/{setID}", s.handleSessionRemoveSet)
		})
	})
}
