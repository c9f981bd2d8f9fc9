package notify

import (
	"testing"
	"time"

	"github.com/gideonapp/engage/internal/models"
	"github.com/google/uuid"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func allEnabledSettings() *models.NotificationSettings {
	s := models.DefaultSettings(uuid.New(), models.FamilyHannah)
	s.MiddayEnabled = true
	s.EveningEnabled = true
	return s
}

func TestEligibleDailyCategories(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC) // a Wednesday

	tests := []struct {
		name    string
		cat     models.Category
		mutate  func(*models.NotificationSettings)
		want    bool
		wantErr bool
	}{
		{
			name:   "morning never sent is eligible",
			cat:    models.CategoryMorning,
			mutate: func(s *models.NotificationSettings) {},
			want:   true,
		},
		{
			name: "morning already sent today is ineligible",
			cat:  models.CategoryMorning,
			mutate: func(s *models.NotificationSettings) {
				s.LastMorningSent = timePtr(now.Add(-2 * time.Hour))
			},
			want: false,
		},
		{
			name: "morning sent yesterday is eligible again",
			cat:  models.CategoryMorning,
			mutate: func(s *models.NotificationSettings) {
				s.LastMorningSent = timePtr(now.Add(-24 * time.Hour))
			},
			want: true,
		},
		{
			name: "disabled category is ineligible regardless of stamps",
			cat:  models.CategoryMidday,
			mutate: func(s *models.NotificationSettings) {
				s.MiddayEnabled = false
			},
			want: false,
		},
		{
			name: "evening independent of morning stamp",
			cat:  models.CategoryEvening,
			mutate: func(s *models.NotificationSettings) {
				s.LastMorningSent = timePtr(now.Add(-time.Hour))
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := allEnabledSettings()
			tt.mutate(s)
			got, err := Eligible(s, tt.cat, nil, models.DefaultEngagementConfig(), now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Eligible() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEligibleSuggestions(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		frequency models.SuggestionFrequency
		lastSent  *time.Time
		want      bool
		wantErr   bool
	}{
		{
			name:      "never sent is always eligible",
			frequency: models.FrequencyWeekly,
			lastSent:  nil,
			want:      true,
		},
		{
			name:      "daily cadence eligible after one day",
			frequency: models.FrequencyDaily,
			lastSent:  timePtr(now.AddDate(0, 0, -1)),
			want:      true,
		},
		{
			name:      "daily cadence blocked same day",
			frequency: models.FrequencyDaily,
			lastSent:  timePtr(now.Add(-3 * time.Hour)),
			want:      false,
		},
		{
			name:      "every three days blocked at two",
			frequency: models.FrequencyEvery3Days,
			lastSent:  timePtr(now.AddDate(0, 0, -2)),
			want:      false,
		},
		{
			name:      "every three days eligible at three",
			frequency: models.FrequencyEvery3Days,
			lastSent:  timePtr(now.AddDate(0, 0, -3)),
			want:      true,
		},
		{
			name:      "weekly blocked at six days",
			frequency: models.FrequencyWeekly,
			lastSent:  timePtr(now.AddDate(0, 0, -6)),
			want:      false,
		},
		{
			name:      "weekly eligible at seven days",
			frequency: models.FrequencyWeekly,
			lastSent:  timePtr(now.AddDate(0, 0, -7)),
			want:      true,
		},
		{
			name:      "malformed frequency fails closed with error",
			frequency: models.SuggestionFrequency("hourly"),
			lastSent:  nil,
			want:      false,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := allEnabledSettings()
			s.SuggestionFrequency = tt.frequency
			s.LastSuggestionSent = tt.lastSent
			got, err := Eligible(s, models.CategorySuggestion, nil, models.DefaultEngagementConfig(), now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Eligible() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEligibleWeeklySummary(t *testing.T) {
	t.Parallel()

	sunday := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		day      models.WeeklySummaryDay
		now      time.Time
		lastSent *time.Time
		want     bool
		wantErr  bool
	}{
		{
			name: "sunday setting fires on sunday",
			day:  models.WeeklySundayEvening,
			now:  sunday,
			want: true,
		},
		{
			name: "sunday setting silent on monday",
			day:  models.WeeklySundayEvening,
			now:  monday,
			want: false,
		},
		{
			name: "monday setting fires on monday",
			day:  models.WeeklyMondayMorning,
			now:  monday,
			want: true,
		},
		{
			name:     "already sent on the matching day is ineligible",
			day:      models.WeeklySundayEvening,
			now:      sunday,
			lastSent: timePtr(sunday.Add(-4 * time.Hour)),
			want:     false,
		},
		{
			name:     "stamp from previous week does not block",
			day:      models.WeeklySundayEvening,
			now:      sunday,
			lastSent: timePtr(sunday.AddDate(0, 0, -7)),
			want:     true,
		},
		{
			name:    "malformed day fails closed with error",
			day:     models.WeeklySummaryDay("friday_noon"),
			now:     sunday,
			want:    false,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := allEnabledSettings()
			s.WeeklySummaryDay = tt.day
			s.LastWeeklySent = tt.lastSent
			got, err := Eligible(s, models.CategoryWeeklySummary, nil, models.DefaultEngagementConfig(), tt.now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Eligible() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEligibleMonthlyReport(t *testing.T) {
	t.Parallel()

	firstOfMonth := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		now        time.Time
		lastActive *time.Time
		lastSent   *time.Time
		want       bool
	}{
		{
			name:       "first of month with recent activity",
			now:        firstOfMonth,
			lastActive: timePtr(firstOfMonth.AddDate(0, 0, -5)),
			want:       true,
		},
		{
			name:       "mid month is never eligible",
			now:        time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC),
			lastActive: timePtr(firstOfMonth),
			want:       false,
		},
		{
			name: "no tracker means no report",
			now:  firstOfMonth,
			want: false,
		},
		{
			name:       "activity outside the window suppresses the report",
			now:        firstOfMonth,
			lastActive: timePtr(firstOfMonth.AddDate(0, 0, -45)),
			want:       false,
		},
		{
			name:       "activity exactly at the window boundary still fires",
			now:        firstOfMonth,
			lastActive: timePtr(firstOfMonth.AddDate(0, 0, -30)),
			want:       true,
		},
		{
			name:       "already sent today is ineligible",
			now:        firstOfMonth,
			lastActive: timePtr(firstOfMonth.AddDate(0, 0, -5)),
			lastSent:   timePtr(firstOfMonth.Add(-2 * time.Hour)),
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := allEnabledSettings()
			s.LastMonthlySent = tt.lastSent
			got, err := Eligible(s, models.CategoryMonthlyReport, tt.lastActive, models.DefaultEngagementConfig(), tt.now)
			if err != nil {
				t.Fatalf("Eligible() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEligibleUnknownCategory(t *testing.T) {
	t.Parallel()

	s := allEnabledSettings()
	got, err := Eligible(s, models.Category("push_all"), nil, models.DefaultEngagementConfig(), time.Now().UTC())
	if err == nil {
		t.Fatal("expected error for unknown category")
	}
	if got {
		t.Error("unknown category must fail closed")
	}
}
