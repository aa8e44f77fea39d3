package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RegisterRoutes sets up all the API endpoints and middleware for the application.
func (s *Server) RegisterRoutes(r *chi.Mux) {
	// --- Global Middleware (Applied to ALL routes) ---
	r.Use(middleware.Logger)    // Logs incoming requests
	r.Use(middleware.Recoverer) // Recovers from panics and returns a 500 error

	// --- REST API Group with CORS ---
	// All routes defined within this group are prefixed with "/api/v1".
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			// In production, you would tighten this to your frontend's domain.
			AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", s.config.FrontendURL},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300, // How long the browser can cache preflight results
		}))

		// Auth routes
		r.Post("/members/register", s.handleRegisterMember)
		r.Post("/members/login", s.handleLoginMember)

		// Public data routes. Live race state and league standings are
		// the club noticeboard; no login needed to read them.
		r.Get("/races/{raceID}/state", s.handleGetRaceState)
		r.Get("/leagues/{leagueID}/standings", s.handleGetLeagueStandings)

		// --- Authenticated REST Routes ---
		// Every route inside this group passes through authMiddleware,
		// which checks for a valid JWT.
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// Member Routes
			r.Get("/members/me", s.handleGetMyProfile)
			r.Patch("/members/me", s.handleUpdateMyProfile)

			// Boat Type and Boat Routes
			r.Get("/boat-types", s.handleGetBoatTypes)
			r.Post("/boat-types", s.handleCreateBoatType)
			r.Put("/boat-types/{boatTypeID}", s.handleUpdateBoatType)
			r.Get("/boats", s.handleGetBoats)
			r.Post("/boats", s.handleCreateBoat)
			r.Put("/boats/{boatID}", s.handleUpdateBoat)

			// League Routes
			r.Get("/leagues", s.handleGetLeagues)
			r.Post("/leagues", s.handleCreateLeague)
			r.Put("/leagues/{leagueID}", s.handleUpdateLeague)

			// Race Routes
			r.Get("/races", s.handleGetRaces)
			r.Post("/races", s.handleCreateRace)
			r.Get("/races/{raceID}", s.handleGetRace)

			// Entry Routes
			r.Get("/races/{raceID}/entries", s.handleGetRaceEntries)
			r.Post("/races/{raceID}/entries", s.handleAddRaceEntry)
			r.Delete("/races/{raceID}/entries/{entryID}", s.handleDeleteRaceEntry)

			// Timing Event Routes. Race-box devices POST here with a
			// query token, hence the header-or-query auth fallback.
			r.Post("/races/{raceID}/events", s.handleIngestEvent)

			// Result Set Routes
			r.Get("/races/{raceID}/resultsets", s.handleGetRaceResultSets)
			r.Get("/races/{raceID}/resultsets/{source}", s.handleGetOrCreateResultSet)
			r.Post("/resultsets/{resultSetID}/preview", s.handlePreviewResultSet)
			r.Post("/resultsets/{resultSetID}/save", s.handleSaveResultSet)
			r.Post("/resultsets/{resultSetID}/publish", s.handlePublishResultSet)
			r.Post("/resultsets/{resultSetID}/unpublish", s.handleUnpublishResultSet)
		})
	})
}
