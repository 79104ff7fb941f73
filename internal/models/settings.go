package models

import "regexp"

var reminderPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type Settings struct {
	DailyCardLimit int    `json:"daily_card_limit"`
	NewCardLimit   int    `json:"new_card_limit"`
	ReminderTime   string `json:"reminder_time"`
	UserName       string `json:"user_name"`
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		DailyCardLimit: 20,
		NewCardLimit:   10,
		ReminderTime:   "19:00",
		UserName:       "Learner",
	}
}

// SettingsUpdate is a partial update; nil fields are left untouched.
type SettingsUpdate struct {
	DailyCardLimit *int
	NewCardLimit   *int
	ReminderTime   *string
	UserName       *string
}

// ValidReminderTime reports whether s is a 24-hour HH:MM time.
func ValidReminderTime(s string) bool {
	return reminderPattern.MatchString(s)
}
