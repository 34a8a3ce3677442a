package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"gopkg.in/yaml.v3"

	"github.com/JonnyWalker81/pulse/backend/internal/analytics"
	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/repository"
)

// utf8BOM makes spreadsheet apps detect the CSV encoding.
const utf8BOM = "\ufeff"

var csvHeader = []string{"date", "mood", "sleep", "steps", "water", "notes"}

var notesReplacer = strings.NewReplacer("\n", " ", "\r", " ", ",", " ", `"`, " ")

// ExportFile is a rendered export ready to be written as a download.
type ExportFile struct {
	ContentType string
	Filename    string
	Body        []byte
}

type exportService struct {
	userRepo  repository.UserRepository
	entryRepo repository.EntryRepository
	now       func() time.Time
}

// NewExportService creates a new export service
func NewExportService(userRepo repository.UserRepository, entryRepo repository.EntryRepository) ExportService {
	return &exportService{
		userRepo:  userRepo,
		entryRepo: entryRepo,
		now:       time.Now,
	}
}

// Export renders every entry of the user, newest first.
func (s *exportService) Export(ctx context.Context, userID string, format models.ExportFormat) (*ExportFile, error) {
	switch format {
	case models.ExportFormatCSV, models.ExportFormatJSON, models.ExportFormatYAML:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	var (
		user    *models.User
		entries []models.Entry
	)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		user, err = s.userRepo.GetByID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		entries, err = s.entryRepo.ListUpdatedSince(ctx, userID, nil)
		return err
	})
	if err := p.Wait(); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load export data: %w", err)
	}

	now := s.now().UTC()
	base := "wellness_export_" + analytics.FormatDay(now)

	switch format {
	case models.ExportFormatCSV:
		body, err := renderCSV(entries)
		if err != nil {
			return nil, err
		}
		return &ExportFile{ContentType: "text/csv; charset=utf-8", Filename: base + ".csv", Body: body}, nil

	case models.ExportFormatJSON:
		body, err := json.MarshalIndent(exportDocument(user, entries, now), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json export: %w", err)
		}
		return &ExportFile{ContentType: "application/json", Filename: base + ".json", Body: body}, nil

	default:
		body, err := yaml.Marshal(exportDocument(user, entries, now))
		if err != nil {
			return nil, fmt.Errorf("failed to encode yaml export: %w", err)
		}
		return &ExportFile{ContentType: "application/yaml", Filename: base + ".yaml", Body: body}, nil
	}
}

func renderCSV(entries []models.Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, e := range entries {
		err := w.Write([]string{
			analytics.FormatDay(e.Date),
			strconv.Itoa(e.Mood),
			strconv.FormatFloat(e.Sleep, 'f', -1, 64),
			strconv.Itoa(e.Steps),
			strconv.FormatFloat(e.Water, 'f', -1, 64),
			SanitizeNotes(e.Notes),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv export: %w", err)
	}
	return buf.Bytes(), nil
}

// SanitizeNotes replaces newlines, carriage returns, commas and double quotes with spaces.
func SanitizeNotes(notes string) string {
	return notesReplacer.Replace(notes)
}

func exportDocument(user *models.User, entries []models.Entry, now time.Time) models.ExportDocument {
	doc := models.ExportDocument{
		Version:    models.DataVersion,
		ExportedAt: now,
		User: models.ExportUser{
			Name:        user.Name,
			Email:       user.Email,
			Preferences: user.Preferences,
		},
		Entries: make([]models.ExportEntry, 0, len(entries)),
	}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, models.ExportEntry{
			Date:  analytics.FormatDay(e.Date),
			Mood:  e.Mood,
			Sleep: e.Sleep,
			Steps: e.Steps,
			Water: e.Water,
			Notes: e.Notes,
		})
	}
	return doc
}
