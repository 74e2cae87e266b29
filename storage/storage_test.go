package storage

import (
	"context"
	"testing"

	"github.com/Tamanna-Joshi/habit-tracker/models"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string {
	return &s
}

func addTestHabit(t *testing.T, store StorageInterface, name, reward string) *models.Habit {
	t.Helper()
	habit, err := store.AddHabit(context.Background(), &models.Habit{Name: name, Reward: reward})
	if err != nil {
		t.Fatalf("Failed to add habit: %v", err)
	}
	return habit
}

func TestAddHabit(t *testing.T) {
	store := NewMemoryStorage()

	habit := addTestHabit(t, store, "Run", "Ice cream")

	assert.NotEmpty(t, habit.ID.Hex())
	assert.Equal(t, "Run", habit.Name)
	assert.Equal(t, "Ice cream", habit.Reward)
	assert.Equal(t, 0, habit.Points)
	assert.Equal(t, 0, habit.Streak)
	assert.Equal(t, "", habit.LastDone)

	// Counters are always zeroed, even if the caller supplied values.
	seeded, err := store.AddHabit(context.Background(), &models.Habit{Name: "Read", Points: 99, Streak: 5, LastDone: "2024-01-01"})
	assert.NoError(t, err)
	assert.Equal(t, 0, seeded.Points)
	assert.Equal(t, 0, seeded.Streak)
	assert.Equal(t, "", seeded.LastDone)

	// A habit without a name is rejected.
	_, err = store.AddHabit(context.Background(), &models.Habit{Reward: "candy"})
	assert.ErrorIs(t, err, ErrInvalidHabit)
}

func TestListHabitsInsertionOrder(t *testing.T) {
	store := NewMemoryStorage()

	names := []string{"Run", "Read", "Sleep early"}
	for _, name := range names {
		addTestHabit(t, store, name, "")
	}

	habits, err := store.ListHabits(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, len(names), len(habits))
	for i, name := range names {
		assert.Equal(t, name, habits[i].Name)
	}
}

func TestFindHabit(t *testing.T) {
	store := NewMemoryStorage()
	habit := addTestHabit(t, store, "Run", "")

	found, err := store.FindHabit(context.Background(), habit.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, habit.Name, found.Name)

	_, err = store.FindHabit(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestUpdateHabitPartial(t *testing.T) {
	store := NewMemoryStorage()
	habit := addTestHabit(t, store, "Run", "Ice cream")
	id := habit.ID.Hex()

	// Patching only the reward leaves the name alone.
	updated, err := store.UpdateHabit(context.Background(), id, models.HabitPatch{Reward: strPtr("Cake")})
	assert.NoError(t, err)
	assert.Equal(t, "Run", updated.Name)
	assert.Equal(t, "Cake", updated.Reward)

	// Patching only the name leaves the reward alone.
	updated, err = store.UpdateHabit(context.Background(), id, models.HabitPatch{Name: strPtr("Jog")})
	assert.NoError(t, err)
	assert.Equal(t, "Jog", updated.Name)
	assert.Equal(t, "Cake", updated.Reward)

	// An explicit empty reward clears it.
	updated, err = store.UpdateHabit(context.Background(), id, models.HabitPatch{Reward: strPtr("")})
	assert.NoError(t, err)
	assert.Equal(t, "Jog", updated.Name)
	assert.Equal(t, "", updated.Reward)

	// An empty patch is a no-op, not an error.
	updated, err = store.UpdateHabit(context.Background(), id, models.HabitPatch{})
	assert.NoError(t, err)
	assert.Equal(t, "Jog", updated.Name)

	// An explicit empty name is invalid.
	_, err = store.UpdateHabit(context.Background(), id, models.HabitPatch{Name: strPtr("")})
	assert.ErrorIs(t, err, ErrInvalidHabit)

	_, err = store.UpdateHabit(context.Background(), "missing", models.HabitPatch{Name: strPtr("X")})
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestDeleteHabit(t *testing.T) {
	store := NewMemoryStorage()
	habit := addTestHabit(t, store, "Run", "")
	id := habit.ID.Hex()

	assert.NoError(t, store.DeleteHabit(context.Background(), id))

	// Every subsequent operation on the id reports not found.
	_, err := store.FindHabit(context.Background(), id)
	assert.ErrorIs(t, err, ErrHabitNotFound)
	_, err = store.UpdateHabit(context.Background(), id, models.HabitPatch{Name: strPtr("X")})
	assert.ErrorIs(t, err, ErrHabitNotFound)
	_, err = store.SwapCheckIn(context.Background(), id, "", CheckInUpdate{Points: 1, Streak: 1, LastDone: "2024-01-01"})
	assert.ErrorIs(t, err, ErrHabitNotFound)
	assert.ErrorIs(t, store.DeleteHabit(context.Background(), id), ErrHabitNotFound)

	habits, err := store.ListHabits(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, len(habits))
}

func TestSwapCheckIn(t *testing.T) {
	store := NewMemoryStorage()
	habit := addTestHabit(t, store, "Run", "")
	id := habit.ID.Hex()

	updated, err := store.SwapCheckIn(context.Background(), id, "", CheckInUpdate{Points: 1, Streak: 1, LastDone: "2024-01-01"})
	assert.NoError(t, err)
	assert.Equal(t, 1, updated.Points)
	assert.Equal(t, 1, updated.Streak)
	assert.Equal(t, "2024-01-01", updated.LastDone)

	// A second swap against the stale prev value loses the race.
	_, err = store.SwapCheckIn(context.Background(), id, "", CheckInUpdate{Points: 2, Streak: 2, LastDone: "2024-01-01"})
	assert.ErrorIs(t, err, ErrCheckInConflict)

	// State is unchanged after the conflict.
	found, err := store.FindHabit(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, 1, found.Points)
	assert.Equal(t, 1, found.Streak)
}
