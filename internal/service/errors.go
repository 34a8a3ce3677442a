package service

import "errors"

var (
	ErrEntryNotFound      = errors.New("entry not found")
	ErrEntryConflict      = errors.New("an entry already exists for this date")
	ErrEditWindowExceeded = errors.New("entries older than 7 days cannot be modified")
	ErrInvalidRange       = errors.New("invalid date range")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrDeviceNotFound     = errors.New("device not found")
	ErrUnsupportedFormat  = errors.New("unsupported export format")
	ErrInvalidReminder    = errors.New("reminderTime or remindersEnabled is required")
	ErrInvalidClock       = errors.New("reminderTime must be HH:mm")
	ErrNotImplemented     = errors.New("not implemented")
)
