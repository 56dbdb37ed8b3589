package http

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/frontend"
	"github.com/secmon-lab/tablero/pkg/usecase"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"github.com/secmon-lab/tablero/pkg/utils/safe"
)

type Server struct {
	router   *chi.Mux
	uc       *usecase.UseCases
	authUC   AuthUseCase
	hub      *Hub
	staticFS fs.FS
}

type Options func(*Server)

// WithAuth protects the API with the given authentication. Without it every
// request runs as an anonymous user.
func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithHub sets the realtime hub served on the websocket route
func WithHub(hub *Hub) Options {
	return func(s *Server) {
		s.hub = hub
	}
}

// WithStaticFS replaces the embedded single page app
func WithStaticFS(fsys fs.FS) Options {
	return func(s *Server) {
		s.staticFS = fsys
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authUC == nil {
		s.authUC = usecase.NewNoAuthnUseCase("anonymous", "", "Anonymous")
	}
	if s.hub == nil {
		s.hub = NewHub()
	}
	if s.staticFS == nil {
		staticFS, err := fs.Sub(frontend.StaticFiles, "dist")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to bind dist dir for static")
		}
		s.staticFS = staticFS
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authLoginHandler(s.authUC))
			r.Post("/logout", authLogoutHandler(s.authUC))
			r.With(authMiddleware(s.authUC)).Get("/me", authMeHandler())
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))

			r.Get("/config", configHandler(uc))

			r.Route("/kanban", func(r chi.Router) {
				r.Get("/board", kanbanBoardHandler(uc.Kanban))
				r.Get("/ws", s.hub.ServeHTTP)
				r.Get("/tickets", listTicketsHandler(uc.Kanban))
				r.Post("/tickets", createTicketHandler(uc.Kanban))
				r.Get("/tickets/{id}", getTicketHandler(uc.Kanban))
				r.Put("/tickets/{id}", updateTicketHandler(uc.Kanban))
				r.Delete("/tickets/{id}", deleteTicketHandler(uc.Kanban))
				r.Post("/tickets/{id}/move", moveTicketHandler(uc.Kanban))
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/items", listItemsHandler(uc.Calendar))
				r.Post("/items", createItemHandler(uc.Calendar))
				r.Get("/items/{id}", getItemHandler(uc.Calendar))
				r.Put("/items/{id}", saveItemHandler(uc.Calendar))
				r.Delete("/items/{id}", deleteItemHandler(uc.Calendar))
				r.Post("/items/{id}/reschedule", rescheduleItemHandler(uc.Calendar))
				r.Post("/items/{id}/progress", toggleProgressHandler(uc.Calendar))
				r.Get("/month", monthHandler(uc.Calendar))
				r.Get("/week", weekHandler(uc.Calendar))
				r.Get("/draft", draftHandler(uc.Calendar))
				r.Get("/summary", summaryHandler(uc.Calendar))
			})

			r.Get("/materials", listMaterialsHandler(uc.Material))
			r.Post("/materials", uploadMaterialHandler(uc.Material))
			r.Delete("/materials/{id}", deleteMaterialHandler(uc.Material))

			r.Get("/cv", getCVHandler(uc.Material))
			r.Post("/cv", uploadCVHandler(uc.Material))
			r.Delete("/cv", deleteCVHandler(uc.Material))

			r.Get("/talks", listSlidesHandler(uc.Material))
			r.Post("/talks/{key}/slides", uploadSlidesHandler(uc.Material))
			r.Delete("/talks/{key}/slides", deleteSlidesHandler(uc.Material))

			r.Get("/analytics", analyticsHandler(uc.Analytics))
			r.Post("/chat", chatHandler(uc.Chat))
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Error: "not found"})
		})
	})

	// Static file serving for SPA (catch-all, must be last)
	r.Get("/*", spaHandler(s.staticFS))

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hub returns the realtime hub that pushes changes and notices to browsers
func (s *Server) Hub() *Hub {
	return s.hub
}

// accessLogger binds a request scoped logger to the context and writes one
// access line per request once the handler returns
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(logging.With(r.Context(), logger)))

		level := slog.LevelInfo
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(r.Context(), level, "access",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// spaHandler serves the built frontend. Paths that are not files fall back to
// index.html so client side routes survive a reload.
func spaHandler(staticFS fs.FS) http.HandlerFunc {
	fileServer := http.FileServer(http.FS(staticFS))

	return func(w http.ResponseWriter, r *http.Request) {
		urlPath := strings.TrimPrefix(r.URL.Path, "/")
		if urlPath == "" {
			urlPath = "index.html"
		}

		file, err := staticFS.Open(urlPath)
		if err == nil {
			safe.Close(r.Context(), file)
			fileServer.ServeHTTP(w, r)
			return
		}

		// Unknown paths are client side routes such as /calendar or /kanban
		indexFile, err := staticFS.Open("index.html")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer safe.Close(r.Context(), indexFile)
		w.Header().Set("Content-Type", "text/html")
		safe.Copy(r.Context(), w, indexFile)
	}
}
