package models

import (
	"time"

	"github.com/julianstephens/orbitflow/internal/calendar"
)

type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type Todo struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"owner_id"`
	Text      string        `json:"text"`
	Completed bool          `json:"completed"`
	DueDate   *calendar.Day `json:"due_date,omitempty"`
	Subtasks  []Subtask     `json:"subtasks"`
	CreatedAt time.Time     `json:"created_at"`
}

// SubtaskIndex returns the position of the subtask with id, or -1.
func (t *Todo) SubtaskIndex(id string) int {
	for i, st := range t.Subtasks {
		if st.ID == id {
			return i
		}
	}
	return -1
}

// Overdue reports whether the todo is open and its due date is before today.
func (t *Todo) Overdue(today calendar.Day) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(today)
}

// Progress returns how many subtasks are done out of the total.
func (t *Todo) Progress() (done, total int) {
	for _, st := range t.Subtasks {
		if st.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}
