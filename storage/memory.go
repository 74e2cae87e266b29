package storage

import (
	"context"
	"sync"

	"github.com/Tamanna-Joshi/habit-tracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStorage holds all habit state in memory behind a single mutex.
// It backs the service when no MongoDB URI is configured and is the store
// the engine tests run against. Ids are ObjectID hex strings so the wire
// shape is identical to the MongoDB backend.
type MemoryStorage struct {
	mu     sync.RWMutex
	habits map[string]models.Habit
	order  []string
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		habits: make(map[string]models.Habit),
	}
}

// Disconnect is a no-op for the in-memory backend.
func (s *MemoryStorage) Disconnect() error {
	return nil
}

// ListHabits returns all habits in insertion order.
func (s *MemoryStorage) ListHabits(ctx context.Context) ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	habits := make([]models.Habit, 0, len(s.order))
	for _, id := range s.order {
		habits = append(habits, s.habits[id])
	}
	return habits, nil
}

// FindHabit finds a single habit by id.
func (s *MemoryStorage) FindHabit(ctx context.Context, id string) (*models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	habit, ok := s.habits[id]
	if !ok {
		return nil, ErrHabitNotFound
	}
	return &habit, nil
}

// AddHabit adds a new habit, assigning a fresh id and zeroed progress.
func (s *MemoryStorage) AddHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	if habit.Name == "" {
		return nil, ErrInvalidHabit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	habit.ID = primitive.NewObjectID()
	habit.Points = 0
	habit.Streak = 0
	habit.LastDone = ""

	id := habit.ID.Hex()
	s.habits[id] = *habit
	s.order = append(s.order, id)
	return habit, nil
}

// UpdateHabit applies a partial update; nil patch fields are left untouched.
func (s *MemoryStorage) UpdateHabit(ctx context.Context, id string, patch models.HabitPatch) (*models.Habit, error) {
	if patch.Name != nil && *patch.Name == "" {
		return nil, ErrInvalidHabit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	habit, ok := s.habits[id]
	if !ok {
		return nil, ErrHabitNotFound
	}

	if patch.Name != nil {
		habit.Name = *patch.Name
	}
	if patch.Reward != nil {
		habit.Reward = *patch.Reward
	}

	s.habits[id] = habit
	return &habit, nil
}

// DeleteHabit removes a habit. Unknown ids report ErrHabitNotFound.
func (s *MemoryStorage) DeleteHabit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[id]; !ok {
		return ErrHabitNotFound
	}
	delete(s.habits, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SwapCheckIn commits a check-in iff last_done still equals prev. The whole
// compare-and-set runs under the store mutex, so racing check-ins for the
// same habit serialize here.
func (s *MemoryStorage) SwapCheckIn(ctx context.Context, id string, prev string, next CheckInUpdate) (*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habit, ok := s.habits[id]
	if !ok {
		return nil, ErrHabitNotFound
	}
	if habit.LastDone != prev {
		return nil, ErrCheckInConflict
	}

	habit.Points = next.Points
	habit.Streak = next.Streak
	habit.LastDone = next.LastDone
	s.habits[id] = habit
	return &habit, nil
}
