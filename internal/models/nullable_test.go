package models

import (
	"encoding/json"
	"testing"
)

func TestNullableStringDecode(t *testing.T) {
	tests := map[string]struct {
		body string
		want NullableString
		ptr  *string
	}{
		"clock":  {body: `{"reminderTime":"07:30"}`, want: NullableString{Value: "07:30", Valid: true, Set: true}, ptr: strPtr("07:30")},
		"null":   {body: `{"reminderTime":null}`, want: NullableString{Set: true}},
		"absent": {body: `{"focusArea":"sleep"}`, want: NullableString{}},
		"empty":  {body: `{"reminderTime":""}`, want: NullableString{Valid: true, Set: true}, ptr: strPtr("")},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var req UpdatePreferencesRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("decode %s: %v", tt.body, err)
			}
			if req.ReminderTime != tt.want {
				t.Errorf("ReminderTime = %+v, want %+v", req.ReminderTime, tt.want)
			}
			got := req.ReminderTime.ToPtr()
			if (got == nil) != (tt.ptr == nil) || (got != nil && *got != *tt.ptr) {
				t.Errorf("ToPtr() = %v, want %v", got, tt.ptr)
			}
		})
	}
}

func TestNullableStringEncode(t *testing.T) {
	for ns, want := range map[NullableString]string{
		{Value: "21:00", Valid: true, Set: true}: `"21:00"`,
		{Set: true}:                              "null",
	} {
		b, err := json.Marshal(ns)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != want {
			t.Errorf("Marshal(%+v) = %s, want %s", ns, b, want)
		}
	}
}

func strPtr(s string) *string { return &s }

func TestNullableString_Apply(t *testing.T) {
	existing := "08:00"

	dst := &existing
	NullableString{}.Apply(&dst)
	if dst == nil || *dst != "08:00" {
		t.Errorf("absent field should leave the value alone, got %v", dst)
	}

	NullableString{Value: "21:15", Valid: true, Set: true}.Apply(&dst)
	if dst == nil || *dst != "21:15" {
		t.Errorf("value should overwrite, got %v", dst)
	}

	NullableString{Set: true}.Apply(&dst)
	if dst != nil {
		t.Errorf("explicit null should clear, got %q", *dst)
	}
}

func TestUpdatePreferencesRequest_ReminderTime(t *testing.T) {
	var cleared UpdatePreferencesRequest
	if err := json.Unmarshal([]byte(`{"reminderTime": null}`), &cleared); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !cleared.ReminderTime.Set || cleared.ReminderTime.Valid {
		t.Errorf("expected set and null, got %+v", cleared.ReminderTime)
	}

	var untouched UpdatePreferencesRequest
	if err := json.Unmarshal([]byte(`{"darkMode": true}`), &untouched); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if untouched.ReminderTime.Set {
		t.Error("expected ReminderTime.Set to be false when field is absent")
	}
	if untouched.DarkMode == nil || !*untouched.DarkMode {
		t.Error("expected darkMode to be parsed")
	}
}

func TestPreferencesGoalsDefaults(t *testing.T) {
	steps, water, sleep := Preferences{}.Goals()
	if steps != DefaultStepGoal || water != DefaultWaterGoal || sleep != DefaultSleepGoal {
		t.Errorf("defaults = %d %v %v", steps, water, sleep)
	}

	steps, water, sleep = Preferences{StepGoal: 8000, WaterGoal: 2, SleepGoal: 8}.Goals()
	if steps != 8000 || water != 2 || sleep != 8 {
		t.Errorf("custom goals = %d %v %v", steps, water, sleep)
	}
}
