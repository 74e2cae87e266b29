package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tamanna-Joshi/habit-tracker/models"
)

var (
	// ErrHabitNotFound is returned for any operation on an id that does not
	// exist (including ids that were never valid object ids).
	ErrHabitNotFound = errors.New("habit not found")

	// ErrInvalidHabit is returned when a create or edit would leave the
	// habit without a name.
	ErrInvalidHabit = errors.New("habit name is required")

	// ErrCheckInConflict is returned by SwapCheckIn when the habit's
	// last_done changed between read and write. Callers re-read and retry.
	ErrCheckInConflict = errors.New("habit changed concurrently")
)

// CheckInUpdate is the new progress state committed by a check-in.
type CheckInUpdate struct {
	Points   int
	Streak   int
	LastDone string
}

// StorageInterface defines the set of methods that any habit storage
// backend needs to implement. The store is the only synchronization
// boundary in the engine: SwapCheckIn must be atomic per habit.
type StorageInterface interface {
	// Disconnects from the storage backend.
	Disconnect() error
	// Returns all habits in insertion order.
	ListHabits(ctx context.Context) ([]models.Habit, error)
	// Finds a single habit by id.
	FindHabit(ctx context.Context, id string) (*models.Habit, error)
	// Adds a new habit, assigning its id. Points, streak and last_done
	// start at their zero values regardless of what the caller passed.
	AddHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error)
	// Applies a partial update to a habit and returns the result.
	UpdateHabit(ctx context.Context, id string, patch models.HabitPatch) (*models.Habit, error)
	// Deletes a habit by id.
	DeleteHabit(ctx context.Context, id string) error
	// Commits a check-in iff the habit's last_done still equals prev.
	// Returns the updated habit, or ErrCheckInConflict when it does not.
	SwapCheckIn(ctx context.Context, id string, prev string, next CheckInUpdate) (*models.Habit, error)
}

// NewStorage creates a new StorageInterface with a MongoDB backend,
// using the provided URI to connect to the MongoDB server.
func NewStorage(dbName, uri string) (StorageInterface, error) {
	storage := NewMongoStorage()
	err := storage.Connect(dbName, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return storage, nil
}
