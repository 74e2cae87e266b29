package server

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// recoveryMiddleware recovers from panics and provides a generic error
// message to the client.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Panic recovered: %s\n", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// NewRouter assembles the REST routes with recovery, CORS and access
// logging applied. The browser client runs on a different origin, so CORS
// stays wide open like the original deployment.
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/habits", h.ListHabits).Methods(http.MethodGet)
	r.HandleFunc("/habits", h.CreateHabit).Methods(http.MethodPost)
	r.HandleFunc("/habits/{id}", h.UpdateHabit).Methods(http.MethodPut)
	r.HandleFunc("/habits/{id}", h.DeleteHabit).Methods(http.MethodDelete)
	r.HandleFunc("/habits/{id}/check", h.CheckHabit).Methods(http.MethodPost)
	r.HandleFunc("/chat", h.Chat).Methods(http.MethodPost)
	r.HandleFunc("/quote", h.Quote).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	corsOrigins := handlers.AllowedOrigins([]string{"*"})
	corsMethods := handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"})
	corsHeaders := handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "X-Client-Date"})

	corsRouter := handlers.CORS(corsOrigins, corsMethods, corsHeaders)(recoveryMiddleware(r))

	return handlers.LoggingHandler(os.Stdout, corsRouter)
}

// Start runs the HTTP server on the given address. It blocks until the
// server stops.
func Start(addr string, h *Handler) error {
	server := &http.Server{
		Handler:      NewRouter(h),
		Addr:         addr,
		WriteTimeout: 90 * time.Second, // chat upstreams can be slow
		ReadTimeout:  15 * time.Second,
	}

	log.Printf("habit tracker listening on %s", addr)
	return server.ListenAndServe()
}
