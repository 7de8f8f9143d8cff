package service

// Tip is one habit-building tip shown by `habit tips` and the TUI help pane.
type Tip struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HabitTips are the seven Atomic Habits tips.
var HabitTips = []Tip{
	{"Make it Obvious", "Design your environment so the cues for the habits you want are visible and prominent."},
	{"Make it Attractive", "Pair a habit you need to do with one you want to do (temptation bundling)."},
	{"Make it Easy", "Cut the friction of starting. Two-Minute Rule: make it so small you can do it in two minutes or less."},
	{"Make it Satisfying", "Reward yourself right after the habit and track it so you can see your progress."},
	{"Break Bad Habits", "Invert the laws: make it invisible, unattractive, difficult and unsatisfying."},
	{"Identity-Based Habits", "Focus on who you want to become, not what you want to achieve. 'I am a reader' beats 'I want to read a book.'"},
	{"Habit Stacking", "After [CURRENT HABIT], I will [NEW HABIT]. Anchor the new habit to one you already do."},
}
