package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Tamanna-Joshi/habit-tracker/chat"
	"github.com/Tamanna-Joshi/habit-tracker/habits"
	"github.com/Tamanna-Joshi/habit-tracker/models"
	"github.com/Tamanna-Joshi/habit-tracker/quotes"
	"github.com/Tamanna-Joshi/habit-tracker/storage"
	"github.com/gorilla/mux"
)

// clientDateHeader lets the browser pass its local calendar day so
// "checked today" agrees with the user's clock rather than the server's.
const clientDateHeader = "X-Client-Date"

// Handler carries the engine and the upstream gateways the REST surface
// talks to.
type Handler struct {
	engine    *habits.Engine
	assistant *chat.Client
	quotes    *quotes.Client
}

// NewHandler creates the HTTP handler set.
func NewHandler(engine *habits.Engine, assistant *chat.Client, q *quotes.Client) *Handler {
	return &Handler{engine: engine, assistant: assistant, quotes: q}
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeEngineError maps engine and storage error kinds onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrHabitNotFound):
		writeError(w, http.StatusNotFound, "Habit not found")
	case errors.Is(err, storage.ErrInvalidHabit):
		writeError(w, http.StatusBadRequest, "Habit name is required")
	case errors.Is(err, habits.ErrBadDate):
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// clientDate returns the caller's calendar day, falling back to the
// server's local date when the header is absent. Validation of the value
// itself is the engine's job.
func clientDate(r *http.Request) string {
	if day := r.Header.Get(clientDateHeader); day != "" {
		return day
	}
	return time.Now().Format(habits.DateLayout)
}

// ListHabits handles GET /habits.
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	list, err := h.engine.ListHabits(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateHabit handles POST /habits.
func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Reward string `json:"reward"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	habit, err := h.engine.CreateHabit(r.Context(), req.Name, req.Reward)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, habit)
}

// UpdateHabit handles PUT /habits/{id}. Only fields present in the body
// are changed; absent fields keep their value.
func (h *Handler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	var patch models.HabitPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	habit, err := h.engine.UpdateHabit(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

// DeleteHabit handles DELETE /habits/{id}.
func (h *Handler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteHabit(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Habit deleted"})
}

type alreadyCheckedResponse struct {
	Message string `json:"message"`
	Points  int    `json:"points"`
	Streak  int    `json:"streak"`
}

// CheckHabit handles POST /habits/{id}/check. A duplicate same-day
// check-in answers 409 with the unchanged counters so the client can still
// render current state.
func (h *Handler) CheckHabit(w http.ResponseWriter, r *http.Request) {
	habit, err := h.engine.CheckIn(r.Context(), mux.Vars(r)["id"], clientDate(r))
	if errors.Is(err, habits.ErrAlreadyChecked) {
		writeJSON(w, http.StatusConflict, alreadyCheckedResponse{
			Message: "Habit already checked today",
			Points:  habit.Points,
			Streak:  habit.Streak,
		})
		return
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles POST /chat. Upstream failures degrade to a canned reply;
// the chat surface never errors out at the HTTP level.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	reply, err := h.assistant.Ask(r.Context(), req.Message)
	if err != nil {
		log.Printf("assistant unavailable: %v", err)
		reply = chat.FallbackReply
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

// Quote handles GET /quote, serving the cached quote of the caller's day.
// Provider failures fall back to a static message rather than blocking the
// rest of the application.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.quotes.Daily(r.Context(), clientDate(r))
	if err != nil {
		log.Printf("quote provider unavailable: %v", err)
		q = &quotes.Fallback
	}
	writeJSON(w, http.StatusOK, q)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
