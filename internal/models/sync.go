package models

import (
	"encoding/json"
	"time"
)

// DataVersion is stamped on sync payloads and export documents.
const DataVersion = "1.0"

// Device is a client registered for sync
type Device struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Platform  string    `json:"platform"`
	LastSync  time.Time `json:"lastSync"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterDeviceRequest represents the device registration request
type RegisterDeviceRequest struct {
	DeviceName string `json:"deviceName" binding:"omitempty,max=100"`
	Platform   string `json:"platform" binding:"omitempty,max=50"`
}

// RegisterDeviceResponse is returned after a device is registered
type RegisterDeviceResponse struct {
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
	Platform   string `json:"platform"`
	Message    string `json:"message"`
}

// RemoveDeviceResponse reports whether a device row was deleted
type RemoveDeviceResponse struct {
	Removed bool   `json:"removed"`
	Message string `json:"message"`
}

// SyncData is the pull-sync payload: entries changed since the client's last sync.
type SyncData struct {
	User        User      `json:"user"`
	Entries     []Entry   `json:"entries"`
	SyncedAt    time.Time `json:"syncedAt"`
	DataVersion string    `json:"dataVersion"`
}

// SyncStatus summarizes a user's sync state
type SyncStatus struct {
	UserID           string    `json:"userId"`
	LastSyncedAt     time.Time `json:"lastSyncedAt"`
	TotalDataPoints  int64     `json:"totalDataPoints"`
	DevicesConnected int64     `json:"devicesConnected"`
	SyncStatus       string    `json:"syncStatus"`
}

// ExportFormat names an export encoding
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatJSON ExportFormat = "json"
	ExportFormatYAML ExportFormat = "yaml"
)

// ExportUser is the user section of an export document
type ExportUser struct {
	Name        string      `json:"name" yaml:"name"`
	Email       string      `json:"email" yaml:"email"`
	Preferences Preferences `json:"preferences" yaml:"preferences"`
}

// ExportEntry is one entry in an export document
type ExportEntry struct {
	Date  string  `json:"date" yaml:"date"`
	Mood  int     `json:"mood" yaml:"mood"`
	Sleep float64 `json:"sleep" yaml:"sleep"`
	Steps int     `json:"steps" yaml:"steps"`
	Water float64 `json:"water" yaml:"water"`
	Notes string  `json:"notes" yaml:"notes"`
}

// ExportDocument is the full-account export rendered as json or yaml
type ExportDocument struct {
	Version    string        `json:"version" yaml:"version"`
	ExportedAt time.Time     `json:"exportedAt" yaml:"exportedAt"`
	User       ExportUser    `json:"user" yaml:"user"`
	Entries    []ExportEntry `json:"entries" yaml:"entries"`
}

// IdempotencyKey represents a stored idempotency key record
type IdempotencyKey struct {
	Key          string          `json:"key"`
	Route        string          `json:"route"`
	UserID       string          `json:"userId"`
	ResponseBody json.RawMessage `json:"responseBody"`
	StatusCode   int             `json:"statusCode"`
	CreatedAt    time.Time       `json:"createdAt"`
}
