// Package validation checks habits, todos and bookmarks before they are
// written, and audits stored habits for inconsistencies.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/models"
)

const (
	MaxNameLength        = 200
	MaxDescriptionLength = 2000
	MinPasswordLength    = 8
)

var urlPattern = regexp.MustCompile(`^https?://\S+$`)

// ConflictType represents the kind of inconsistency found in stored habits.
type ConflictType string

const (
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictEmptyFrequency     ConflictType = "empty_frequency"
	ConflictStrayFrequency     ConflictType = "stray_frequency"
	ConflictUnknownHabitType   ConflictType = "unknown_habit_type"
	ConflictFutureCompletion   ConflictType = "future_completion"
)

// Conflict is a single inconsistency in the stored habits.
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // habit names involved
	HabitIDs    []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator validates records before writes and audits stored habits.
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

func checkText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.InvalidInputf("%s cannot be empty", field)
	}
	if utf8.RuneCountInString(value) > max {
		return "", errors.InvalidInputf("%s is longer than %d characters", field, max)
	}
	return value, nil
}

// Habit validates h for create or update and returns it with the name trimmed.
// Weekly habits need at least one weekday; other types must not carry one.
func (v *Validator) Habit(h models.Habit) (models.Habit, error) {
	name, err := checkText("habit name", h.Name, MaxNameLength)
	if err != nil {
		return h, err
	}
	h.Name = name

	if !h.Type.Valid() {
		return h, errors.InvalidInputf("unknown habit type %q (use daily, morning or weekly)", h.Type)
	}
	if h.Type == models.HabitWeekly && h.Frequency.IsEmpty() {
		return h, errors.InvalidInputf("weekly habit %q needs at least one weekday", h.Name)
	}
	if h.Type != models.HabitWeekly && !h.Frequency.IsEmpty() {
		return h, errors.InvalidInputf("only weekly habits take weekdays, %q is %s", h.Name, h.Type)
	}
	return h, nil
}

// Todo validates t and returns it with text and subtask text trimmed.
func (v *Validator) Todo(t models.Todo) (models.Todo, error) {
	text, err := checkText("todo text", t.Text, MaxNameLength)
	if err != nil {
		return t, err
	}
	t.Text = text
	for i := range t.Subtasks {
		st, err := v.Subtask(t.Subtasks[i].Text)
		if err != nil {
			return t, err
		}
		t.Subtasks[i].Text = st
	}
	return t, nil
}

// Subtask validates subtask text and returns it trimmed.
func (v *Validator) Subtask(text string) (string, error) {
	return checkText("subtask text", text, MaxNameLength)
}

// Bookmark validates b and fills in the derived lower-case title.
func (v *Validator) Bookmark(b models.Bookmark) (models.Bookmark, error) {
	title, err := checkText("bookmark title", b.Title, MaxNameLength)
	if err != nil {
		return b, err
	}
	b.Title = title
	b.TitleLower = strings.ToLower(title)

	b.URL = strings.TrimSpace(b.URL)
	if !urlPattern.MatchString(b.URL) {
		return b, errors.InvalidInputf("bookmark URL must start with http:// or https://, got %q", b.URL)
	}

	b.Description = strings.TrimSpace(b.Description)
	if utf8.RuneCountInString(b.Description) > MaxDescriptionLength {
		return b, errors.InvalidInputf("bookmark description is longer than %d characters", MaxDescriptionLength)
	}
	return b, nil
}

// Credentials validates an email and password pair for registration and
// returns the normalized email.
func (v *Validator) Credentials(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errors.InvalidInputf("invalid email address %q", email)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", errors.InvalidInputf("password must be at least %d characters", MinPasswordLength)
	}
	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		return "", errors.InvalidInputf("password must be at most 72 bytes")
	}
	return email, nil
}

// AuditHabits reports inconsistencies in stored habits: duplicate names,
// weekly habits with no weekdays (never due), weekdays on non-weekly habits,
// unknown types, and completions dated after today.
func (v *Validator) AuditHabits(habits []models.Habit, today calendar.Day) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	byName := make(map[string][]models.Habit)
	for _, h := range habits {
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if key == "" {
			continue
		}
		byName[key] = append(byName[key], h)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		group := byName[name]
		if len(group) < 2 {
			continue
		}
		ids := make([]string, len(group))
		for i, h := range group {
			ids[i] = h.ID
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateHabitName,
			Description: fmt.Sprintf("Duplicate habit name: %q (IDs: %v)", group[0].Name, ids),
			Items:       []string{group[0].Name},
			HabitIDs:    ids,
		})
	}

	todayKey := today.Key()
	for _, h := range habits {
		switch {
		case !h.Type.Valid():
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnknownHabitType,
				Description: fmt.Sprintf("Habit %q has unknown type %q", h.Name, h.Type),
				Items:       []string{h.Name},
				HabitIDs:    []string{h.ID},
			})
		case h.Type == models.HabitWeekly && h.Frequency.IsEmpty():
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictEmptyFrequency,
				Description: fmt.Sprintf("Weekly habit %q has no weekdays and is never due", h.Name),
				Items:       []string{h.Name},
				HabitIDs:    []string{h.ID},
			})
		case h.Type != models.HabitWeekly && !h.Frequency.IsEmpty():
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictStrayFrequency,
				Description: fmt.Sprintf("Habit %q is %s but has weekdays %s", h.Name, h.Type, h.Frequency),
				Items:       []string{h.Name},
				HabitIDs:    []string{h.ID},
			})
		}

		var future []string
		for _, key := range h.Completions.Keys() {
			if key > todayKey {
				future = append(future, key)
			}
		}
		if len(future) > 0 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictFutureCompletion,
				Description: fmt.Sprintf("Habit %q has completions after today: %s", h.Name, strings.Join(future, ", ")),
				Items:       []string{h.Name},
				HabitIDs:    []string{h.ID},
			})
		}
	}

	return result
}
