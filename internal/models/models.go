package models

import "time"

// Default goals used when a user has not set their own.
const (
	DefaultStepGoal  = 10000
	DefaultWaterGoal = 3.0
	DefaultSleepGoal = 7.0
)

// User represents an account in the system
type User struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	PasswordHash  string      `json:"-"`
	CurrentStreak int         `json:"currentStreak"`
	Preferences   Preferences `json:"preferences"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Preferences holds per-user settings consumed by insights and reminders
type Preferences struct {
	FocusArea        string  `json:"focusArea,omitempty" yaml:"focusArea,omitempty"`
	ReminderTime     *string `json:"reminderTime,omitempty" yaml:"reminderTime,omitempty"`
	RemindersEnabled bool    `json:"remindersEnabled" yaml:"remindersEnabled"`
	DarkMode         bool    `json:"darkMode" yaml:"darkMode"`
	StepGoal         int     `json:"stepGoal,omitempty" yaml:"stepGoal,omitempty"`
	WaterGoal        float64 `json:"waterGoal,omitempty" yaml:"waterGoal,omitempty"`
	SleepGoal        float64 `json:"sleepGoal,omitempty" yaml:"sleepGoal,omitempty"`
}

// Goals returns the step, water and sleep goals with defaults applied.
func (p Preferences) Goals() (steps int, water, sleep float64) {
	steps, water, sleep = p.StepGoal, p.WaterGoal, p.SleepGoal
	if steps <= 0 {
		steps = DefaultStepGoal
	}
	if water <= 0 {
		water = DefaultWaterGoal
	}
	if sleep <= 0 {
		sleep = DefaultSleepGoal
	}
	return steps, water, sleep
}

// Entry is one user's check-in for one calendar day
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Date      time.Time `json:"date"`
	Mood      int       `json:"mood"`
	Sleep     float64   `json:"sleep"`
	Steps     int       `json:"steps"`
	Water     float64   `json:"water"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EntryRequest is the payload for creating or updating an entry.
// ID is an optional client-generated UUIDv7 for offline-first clients.
type EntryRequest struct {
	ID    *string  `json:"id"`
	Date  string   `json:"date" binding:"required"`
	Mood  *int     `json:"mood" binding:"required,min=1,max=5"`
	Sleep *float64 `json:"sleep" binding:"required,min=0,max=24"`
	Steps *int     `json:"steps" binding:"required,min=0,max=200000"`
	Water *float64 `json:"water" binding:"required,min=0,max=15"`
	Notes *string  `json:"notes" binding:"omitempty,max=1000"`
}

// EntryFilter selects a page of a user's entries
type EntryFilter struct {
	From  *time.Time
	To    *time.Time
	Page  int
	Limit int
}

// EntryPage is a paginated list of entries
type EntryPage struct {
	Items []Entry `json:"items"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Total int64   `json:"total"`
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UpdateMeRequest carries profile changes. Email and password are not
// updatable through this request.
type UpdateMeRequest struct {
	Name        *string                   `json:"name" binding:"omitempty,min=1,max=100"`
	Preferences *UpdatePreferencesRequest `json:"preferences"`
}

// UpdatePreferencesRequest uses NullableString so reminderTime can be cleared
// with an explicit null.
type UpdatePreferencesRequest struct {
	FocusArea        *string        `json:"focusArea" binding:"omitempty,oneof=sleep steps water mood streak"`
	ReminderTime     NullableString `json:"reminderTime"`
	RemindersEnabled *bool          `json:"remindersEnabled"`
	DarkMode         *bool          `json:"darkMode"`
	StepGoal         *int           `json:"stepGoal" binding:"omitempty,min=1,max=100000"`
	WaterGoal        *float64       `json:"waterGoal" binding:"omitempty,min=0.5,max=15"`
	SleepGoal        *float64       `json:"sleepGoal" binding:"omitempty,min=1,max=24"`
}
