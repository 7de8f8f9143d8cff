package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/julianstephens/orbitflow/internal/errors"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "valid date", input: "2024-03-15", want: "2024-03-15"},
		{name: "surrounding whitespace", input: " 2024-03-15 ", want: "2024-03-15"},
		{name: "leap day", input: "2024-02-29", want: "2024-02-29"},
		{name: "not a leap year", input: "2023-02-29", wantErr: true},
		{name: "month out of range", input: "2024-13-01", wantErr: true},
		{name: "wrong layout", input: "03/15/2024", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDay(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDay(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if got.Key() != tt.want {
				t.Errorf("ParseDay(%q) = %s, want %s", tt.input, got.Key(), tt.want)
			}
		})
	}
}

func TestFromTime(t *testing.T) {
	if _, err := FromTime(time.Time{}); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("FromTime(zero) error = %v, want ErrInvalidInput", err)
	}

	// Late evening in New York is already the next day in UTC; the day must
	// follow the time's own location.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	ts := time.Date(2024, 3, 15, 23, 30, 0, 0, loc)
	d, err := FromTime(ts)
	if err != nil {
		t.Fatalf("FromTime() error = %v", err)
	}
	if d.Key() != "2024-03-15" {
		t.Errorf("FromTime() = %s, want 2024-03-15", d.Key())
	}
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{day: "2024-03-11", want: "2024-03-11"}, // Monday
		{day: "2024-03-13", want: "2024-03-11"}, // Wednesday
		{day: "2024-03-16", want: "2024-03-11"}, // Saturday
		{day: "2024-03-17", want: "2024-03-11"}, // Sunday goes back six days
		{day: "2024-03-01", want: "2024-02-26"}, // crosses a month boundary
		{day: "2025-01-01", want: "2024-12-30"}, // crosses a year boundary
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			d, err := ParseDay(tt.day)
			if err != nil {
				t.Fatal(err)
			}
			if got := d.StartOfWeek().Key(); got != tt.want {
				t.Errorf("StartOfWeek(%s) = %s, want %s", tt.day, got, tt.want)
			}
		})
	}
}

func TestWeekAlwaysContainsDay(t *testing.T) {
	start := Date(2024, 1, 1)
	for i := 0; i < 400; i++ {
		d := start.AddDays(i)
		week := d.Week()

		if len(week) != 7 {
			t.Fatalf("week of %s has %d days", d, len(week))
		}
		if week[0].Weekday() != time.Monday {
			t.Errorf("week of %s starts on %s", d, week[0].Weekday())
		}
		found := false
		for j, wd := range week {
			if wd.Equal(d) {
				found = true
			}
			if j > 0 && !wd.Equal(week[j-1].AddDays(1)) {
				t.Errorf("week of %s is not consecutive at index %d", d, j)
			}
		}
		if !found {
			t.Errorf("week of %s does not contain the day", d)
		}
	}
}

func TestMonthDays(t *testing.T) {
	tests := []struct {
		day  Day
		want int
	}{
		{day: Date(2024, time.February, 10), want: 29},
		{day: Date(2023, time.February, 10), want: 28},
		{day: Date(2024, time.April, 30), want: 30},
		{day: Date(2024, time.December, 31), want: 31},
	}

	for _, tt := range tests {
		t.Run(tt.day.Key(), func(t *testing.T) {
			days := tt.day.MonthDays()
			if len(days) != tt.want {
				t.Fatalf("MonthDays() returned %d days, want %d", len(days), tt.want)
			}
			if days[0].Key() != tt.day.StartOfMonth().Key() {
				t.Errorf("first day = %s, want %s", days[0], tt.day.StartOfMonth())
			}
		})
	}
}

func TestRange(t *testing.T) {
	end := Date(2024, time.March, 2)
	days := Range(end, 3)
	want := []string{"2024-02-29", "2024-03-01", "2024-03-02"}

	if len(days) != len(want) {
		t.Fatalf("Range() returned %d days, want %d", len(days), len(want))
	}
	for i, d := range days {
		if d.Key() != want[i] {
			t.Errorf("Range()[%d] = %s, want %s", i, d, want[i])
		}
	}

	if Range(end, 0) != nil {
		t.Error("Range with n=0 should be nil")
	}
}

func TestDayJSON(t *testing.T) {
	type payload struct {
		Due Day `json:"due"`
	}

	b, err := json.Marshal(payload{Due: Date(2024, time.May, 4)})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `{"due":"2024-05-04"}` {
		t.Errorf("Marshal() = %s", b)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"due":"2024-05-04"}`), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if p.Due.Key() != "2024-05-04" {
		t.Errorf("Unmarshal() = %s", p.Due)
	}

	if err := json.Unmarshal([]byte(`{"due":"tomorrow"}`), &p); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: ""},
		{name: "Local returns local", timezone: "Local"},
		{name: "valid timezone UTC", timezone: "UTC"},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestResolveDay(t *testing.T) {
	d, err := ResolveDay("2024-06-01", "UTC")
	if err != nil || d.Key() != "2024-06-01" {
		t.Errorf("ResolveDay(explicit) = %s, %v", d, err)
	}

	today, err := ResolveDay("", "UTC")
	if err != nil {
		t.Fatalf("ResolveDay(empty) error = %v", err)
	}
	if today.Key() != time.Now().UTC().Format("2006-01-02") {
		// Allow a midnight rollover between the two calls
		if today.Key() != time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02") {
			t.Errorf("ResolveDay(empty) = %s, want today", today)
		}
	}

	if _, err := ResolveDay("", "Nowhere/City"); err == nil {
		t.Error("expected error for invalid timezone")
	}
}
