package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
)

func newTestReminderService(users *mockUserRepository, schedules *mockReminderRepository) *reminderService {
	return &reminderService{userRepo: users, reminderRepo: schedules, now: fixedNow}
}

func TestReminderService_Update(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		stored     *string
		req        models.ReminderRequest
		wantErr    error
		wantTime   string
		wantNext   time.Time
		wantActive bool
	}{
		{name: "empty request", req: models.ReminderRequest{}, wantErr: ErrInvalidReminder},
		{name: "bad clock", req: models.ReminderRequest{ReminderTime: ptr("25:00")}, wantErr: ErrInvalidClock},
		{
			name:       "explicit time later today",
			req:        models.ReminderRequest{ReminderTime: ptr("18:30")},
			wantTime:   "18:30",
			wantNext:   time.Date(2025, 3, 15, 18, 30, 0, 0, time.UTC),
			wantActive: true,
		},
		{
			name:       "enable uses stored time",
			stored:     ptr("07:00"),
			req:        models.ReminderRequest{RemindersEnabled: ptr(true)},
			wantTime:   "07:00",
			wantNext:   time.Date(2025, 3, 16, 7, 0, 0, 0, time.UTC),
			wantActive: true,
		},
		{
			name:       "enable without stored time defaults to 09:00",
			req:        models.ReminderRequest{RemindersEnabled: ptr(true)},
			wantTime:   "09:00",
			wantNext:   time.Date(2025, 3, 16, 9, 0, 0, 0, time.UTC),
			wantActive: true,
		},
		{name: "disable cancels", stored: ptr("07:00"), req: models.ReminderRequest{RemindersEnabled: ptr(false)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := testUser("u1")
			user.Preferences.ReminderTime = tt.stored
			users := newMockUserRepository(user)
			schedules := newMockReminderRepository()
			schedules.schedules["u1"] = &models.ReminderSchedule{UserID: "u1", ReminderTime: "06:00", NextFireAt: testNow}
			svc := newTestReminderService(users, schedules)

			res, err := svc.Update(ctx, "u1", &tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Update = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Update: %v", err)
			}

			if res.Scheduled != tt.wantActive || res.Time != tt.wantTime {
				t.Errorf("result = %+v", res)
			}
			if users.users["u1"].Preferences.RemindersEnabled != tt.wantActive {
				t.Errorf("remindersEnabled = %v, want %v", users.users["u1"].Preferences.RemindersEnabled, tt.wantActive)
			}

			s, ok := schedules.schedules["u1"]
			if !tt.wantActive {
				if ok {
					t.Error("schedule should be removed")
				}
				return
			}
			if !ok || s.ReminderTime != tt.wantTime || !s.NextFireAt.Equal(tt.wantNext) {
				t.Errorf("schedule = %+v, want %s at %v", s, tt.wantTime, tt.wantNext)
			}
			if !res.NextFireAt.Equal(tt.wantNext) {
				t.Errorf("nextFireAt = %v", res.NextFireAt)
			}
		})
	}
}

func TestReminderService_StatusAndCancel(t *testing.T) {
	ctx := context.Background()
	user := testUser("u1")
	user.Preferences.RemindersEnabled = true
	users := newMockUserRepository(user)
	schedules := newMockReminderRepository()
	svc := newTestReminderService(users, schedules)

	status, err := svc.Status(ctx, "u1")
	if err != nil || status.Scheduled {
		t.Fatalf("Status before scheduling = %+v, %v", status, err)
	}

	if _, err := svc.Update(ctx, "u1", &models.ReminderRequest{ReminderTime: ptr("20:00")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	fired := testNow.Add(-time.Hour)
	schedules.schedules["u1"].LastFiredAt = &fired

	status, err = svc.Status(ctx, "u1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Scheduled || status.Time != "20:00" || status.LastFiredAt == nil || !status.LastFiredAt.Equal(fired) {
		t.Errorf("status = %+v", status)
	}

	cancelled, err := svc.Cancel(ctx, "u1")
	if err != nil || !cancelled {
		t.Fatalf("Cancel = %v, %v", cancelled, err)
	}
	if users.users["u1"].Preferences.RemindersEnabled {
		t.Error("cancel should turn reminders off")
	}
	cancelled, err = svc.Cancel(ctx, "u1")
	if err != nil || cancelled {
		t.Errorf("second Cancel = %v, %v, want false", cancelled, err)
	}
}

func TestReminderService_Reconcile(t *testing.T) {
	ctx := context.Background()
	schedules := newMockReminderRepository()
	svc := newTestReminderService(newMockUserRepository(), schedules)

	user := testUser("u1")
	user.Preferences.RemindersEnabled = true
	user.Preferences.ReminderTime = ptr("11:15")
	if err := svc.Reconcile(ctx, user); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if s := schedules.schedules["u1"]; s == nil || s.ReminderTime != "11:15" {
		t.Fatalf("schedule = %+v", s)
	}

	user.Preferences.RemindersEnabled = false
	if err := svc.Reconcile(ctx, user); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if _, ok := schedules.schedules["u1"]; ok {
		t.Error("disabled reminders should remove the schedule")
	}
}
