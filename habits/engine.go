package habits

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Tamanna-Joshi/habit-tracker/models"
	"github.com/Tamanna-Joshi/habit-tracker/queue"
	"github.com/Tamanna-Joshi/habit-tracker/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar-day format used everywhere in the engine.
const DateLayout = "2006-01-02"

var (
	// ErrAlreadyChecked is returned when a habit was already completed on
	// the requested day. The habit is left untouched.
	ErrAlreadyChecked = errors.New("habit already checked today")

	// ErrBadDate is returned when the provided day is not a YYYY-MM-DD
	// date, or lies before the habit's last completion.
	ErrBadDate = errors.New("invalid check-in date")
)

// swapRetries bounds the optimistic-concurrency loop. A conflict means a
// racing check-in landed first, which the next read resolves, so two passes
// are normally enough.
const swapRetries = 3

// Advance computes the progress a check-in on the given day produces from
// the habit's current state. It never mutates the habit.
//
// The rules: a completion one day after the previous one extends the streak
// by one; any gap, or a first-ever completion, starts a new streak of
// length one. Every successful check-in is worth a single point.
func Advance(h models.Habit, today string) (storage.CheckInUpdate, error) {
	day, err := time.Parse(DateLayout, today)
	if err != nil {
		return storage.CheckInUpdate{}, ErrBadDate
	}

	if h.CheckedOn(today) {
		return storage.CheckInUpdate{}, ErrAlreadyChecked
	}

	if h.LastDone != "" {
		last, err := time.Parse(DateLayout, h.LastDone)
		if err == nil && day.Before(last) {
			// last_done never moves backward.
			return storage.CheckInUpdate{}, ErrBadDate
		}
	}

	next := storage.CheckInUpdate{
		Points:   h.Points + 1,
		Streak:   1,
		LastDone: today,
	}
	yesterday := day.AddDate(0, 0, -1).Format(DateLayout)
	if h.LastDone == yesterday {
		next.Streak = h.Streak + 1
	}
	return next, nil
}

// Engine implements the habit state and reward rules on top of a storage
// backend. All habit mutations flow through it.
type Engine struct {
	store  storage.StorageInterface
	events *queue.Queue
}

// NewEngine creates an engine backed by the given store. The event queue
// may be nil, in which case check-ins are not announced.
func NewEngine(store storage.StorageInterface, events *queue.Queue) *Engine {
	return &Engine{store: store, events: events}
}

// ListHabits returns all habits in insertion order.
func (e *Engine) ListHabits(ctx context.Context) ([]models.Habit, error) {
	return e.store.ListHabits(ctx)
}

// FindHabit returns a single habit by id.
func (e *Engine) FindHabit(ctx context.Context, id string) (*models.Habit, error) {
	return e.store.FindHabit(ctx, id)
}

// CreateHabit registers a new habit with zeroed progress. The reward is
// optional free text, not enforced by the engine.
func (e *Engine) CreateHabit(ctx context.Context, name, reward string) (*models.Habit, error) {
	return e.store.AddHabit(ctx, &models.Habit{Name: name, Reward: reward})
}

// UpdateHabit applies a partial edit. Progress counters are not editable
// through this path.
func (e *Engine) UpdateHabit(ctx context.Context, id string, patch models.HabitPatch) (*models.Habit, error) {
	return e.store.UpdateHabit(ctx, id, patch)
}

// DeleteHabit removes a habit permanently.
func (e *Engine) DeleteHabit(ctx context.Context, id string) error {
	return e.store.DeleteHabit(ctx, id)
}

// CheckIn marks the habit complete for the given day and returns the
// updated habit. The day is an explicit input so the logic is deterministic
// under test and across time zones.
//
// Exactly-once accounting: the new state is committed through the store's
// conditional swap, keyed on the last_done value the engine read. When two
// check-ins race, one swap loses, re-reads, and finds the habit already
// checked. In that case (and for plain duplicate requests) the unchanged
// habit is returned alongside ErrAlreadyChecked.
func (e *Engine) CheckIn(ctx context.Context, id, today string) (*models.Habit, error) {
	var err error
	for attempt := 0; attempt < swapRetries; attempt++ {
		var habit *models.Habit
		habit, err = e.store.FindHabit(ctx, id)
		if err != nil {
			return nil, err
		}

		var next storage.CheckInUpdate
		next, err = Advance(*habit, today)
		if errors.Is(err, ErrAlreadyChecked) {
			return habit, ErrAlreadyChecked
		}
		if err != nil {
			return nil, err
		}

		var updated *models.Habit
		updated, err = e.store.SwapCheckIn(ctx, id, habit.LastDone, next)
		if errors.Is(err, storage.ErrCheckInConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		e.announce(updated, today)
		return updated, nil
	}
	return nil, err
}

// announce publishes a check-in event, best effort. A broker hiccup must
// never fail the check-in itself.
func (e *Engine) announce(h *models.Habit, day string) {
	if e.events == nil {
		return
	}
	ev := &models.CheckInEvent{
		ID:      primitive.NewObjectID().Hex(),
		HabitID: h.ID.Hex(),
		Name:    h.Name,
		Date:    day,
		Streak:  h.Streak,
		Points:  h.Points,
	}
	if err := queue.PublishCheckIn(ev, e.events); err != nil {
		log.Printf("failed to publish check-in event for habit %s: %v", ev.HabitID, err)
	}
}
