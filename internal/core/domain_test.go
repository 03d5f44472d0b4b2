package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{NewDate(2025, 2, 30), true},     // normalised to 2025-03-02
		{NewDate(2025, 13, 1), true},     // normalised to 2026-01-01
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateAddMonths(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		n     int
		want  Date
	}{
		{"same year", NewDate(2024, 1, 1), 1, NewDate(2024, 2, 1)},
		{"into next year", NewDate(2024, 1, 1), 12, NewDate(2025, 1, 1)},
		{"wraps december", NewDate(2024, 11, 15), 2, NewDate(2025, 1, 15)},
		{"several years", NewDate(2024, 3, 10), 27, NewDate(2026, 6, 10)},
		{"clamps to short month", NewDate(2024, 1, 31), 1, NewDate(2024, 2, 29)},
		{"clamps non leap", NewDate(2025, 1, 31), 1, NewDate(2025, 2, 28)},
		{"backwards", NewDate(2024, 1, 15), -1, NewDate(2023, 12, 15)},
		{"backwards full year", NewDate(2024, 1, 15), -12, NewDate(2023, 1, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.start.AddMonths(tt.n); !got.Equal(tt.want) {
				t.Errorf("AddMonths(%d) = %s, want %s", tt.n, got, tt.want)
			}
		})
	}
}

func TestDateDaysUntil(t *testing.T) {
	if got := NewDate(2024, 1, 1).DaysUntil(NewDate(2024, 7, 1)); got != 182 {
		t.Fatalf("DaysUntil = %d, want 182", got)
	}
	if got := NewDate(2024, 1, 1).DaysUntil(NewDate(2025, 1, 1)); got != 366 {
		t.Fatalf("DaysUntil = %d, want 366", got)
	}
	if got := NewDate(2024, 1, 2).DaysUntil(NewDate(2024, 1, 1)); got != -1 {
		t.Fatalf("DaysUntil = %d, want -1", got)
	}
}

func TestDateJSON(t *testing.T) {
	var v struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"2024-06-01"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.D.Equal(NewDate(2024, 6, 1)) {
		t.Fatalf("got %s", v.D)
	}
	b, err := json.Marshal(v)
	if err != nil || string(b) != `{"d":"2024-06-01"}` {
		t.Fatalf("marshal = %s, %v", b, err)
	}
	if err := json.Unmarshal([]byte(`{"d":"06/01/2024"}`), &v); err == nil {
		t.Fatal("expected error for non ISO date")
	}
}

func TestMinMaxDate(t *testing.T) {
	a, b := NewDate(2024, 1, 1), NewDate(2024, 2, 1)
	if !MinDate(a, b).Equal(a) || !MinDate(b, a).Equal(a) {
		t.Fatal("MinDate")
	}
	if !MaxDate(a, b).Equal(b) || !MaxDate(b, a).Equal(b) {
		t.Fatal("MaxDate")
	}
}

func TestNewRecord(t *testing.T) {
	r1, r2 := NewRecord(), NewRecord()
	if r1.ID == r2.ID {
		t.Fatal("expected distinct ids")
	}
	if r1.CreatedAt.IsZero() || r1.UpdatedAt.IsZero() || r1.IsDeleted() {
		t.Fatalf("unexpected record %+v", r1)
	}
}

func TestInvalid(t *testing.T) {
	err := Invalid("period %d out of range", 0)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err.Error() != "validation failed: period 0 out of range" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
