package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Habit is the single persistent entity of the tracker. Points, Streak and
// LastDone are owned by the check-in engine; no other code path mutates them.
type Habit struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Reward   string             `bson:"reward" json:"reward"`
	Points   int                `bson:"points" json:"points"`
	Streak   int                `bson:"streak" json:"streak"`
	LastDone string             `bson:"last_done" json:"last_done,omitempty"`
}

// CheckedOn reports whether the habit has already been completed on the
// given calendar day (YYYY-MM-DD). A habit with no completions yet is never
// considered checked.
func (h *Habit) CheckedOn(day string) bool {
	return h.LastDone != "" && h.LastDone == day
}

// HabitPatch is a partial update to a habit. A nil field means "leave
// unchanged"; a pointer to an empty string is an explicit value. The
// distinction matters for Reward, where clearing is a legitimate edit.
type HabitPatch struct {
	Name   *string `json:"name,omitempty"`
	Reward *string `json:"reward,omitempty"`
}

// Empty reports whether the patch carries no fields at all.
func (p HabitPatch) Empty() bool {
	return p.Name == nil && p.Reward == nil
}

// CheckInEvent is published to the event queue after a successful check-in.
// ID is unique per event and is what consumers deduplicate on.
type CheckInEvent struct {
	ID      string `json:"id"`
	HabitID string `json:"habit_id"`
	Name    string `json:"name"`
	Date    string `json:"date"`
	Streak  int    `json:"streak"`
	Points  int    `json:"points"`
}
