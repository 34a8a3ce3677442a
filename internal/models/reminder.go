package models

import "time"

// DefaultReminderTime is used when scheduling without a stored or requested time.
const DefaultReminderTime = "09:00"

// Reminder dispatch outcomes recorded on the schedule.
const (
	ReminderStatusSent             = "sent"
	ReminderStatusAlreadyCheckedIn = "already_checked_in"
	ReminderStatusFailed           = "failed"
)

// ReminderSchedule is the durable daily reminder for one user.
// ReminderTime is HH:mm in UTC.
type ReminderSchedule struct {
	UserID       string     `json:"userId"`
	ReminderTime string     `json:"reminderTime"`
	NextFireAt   time.Time  `json:"nextFireAt"`
	LastFiredAt  *time.Time `json:"lastFiredAt,omitempty"`
	LastStatus   string     `json:"lastStatus,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ReminderRequest updates the reminder settings. At least one field is required.
type ReminderRequest struct {
	ReminderTime     *string `json:"reminderTime" binding:"omitempty,hhmm"`
	RemindersEnabled *bool   `json:"remindersEnabled"`
}

// ReminderResult is returned after scheduling or cancelling
type ReminderResult struct {
	Scheduled  bool       `json:"scheduled"`
	Time       string     `json:"time,omitempty"`
	NextFireAt *time.Time `json:"nextFireAt,omitempty"`
}

// ReminderStatus reports the current schedule
type ReminderStatus struct {
	Scheduled   bool       `json:"scheduled"`
	Time        string     `json:"time,omitempty"`
	NextFireAt  *time.Time `json:"nextFireAt,omitempty"`
	LastFiredAt *time.Time `json:"lastFiredAt,omitempty"`
}
