package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gideonapp/engage/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("activity_kind", validateActivityKind); err != nil {
		panic(fmt.Sprintf("failed to register activity_kind validator: %v", err))
	}
	if err := Validate.RegisterValidation("suggestion_frequency", validateSuggestionFrequency); err != nil {
		panic(fmt.Sprintf("failed to register suggestion_frequency validator: %v", err))
	}
	if err := Validate.RegisterValidation("weekly_summary_day", validateWeeklySummaryDay); err != nil {
		panic(fmt.Sprintf("failed to register weekly_summary_day validator: %v", err))
	}
	if err := Validate.RegisterValidation("notification_family", validateFamily); err != nil {
		panic(fmt.Sprintf("failed to register notification_family validator: %v", err))
	}
}

func validateActivityKind(fl validator.FieldLevel) bool {
	return ValidateActivityKind(fl.Field().String()) == nil
}

func validateSuggestionFrequency(fl validator.FieldLevel) bool {
	return ValidateSuggestionFrequency(fl.Field().String()) == nil
}

func validateWeeklySummaryDay(fl validator.FieldLevel) bool {
	return ValidateWeeklySummaryDay(fl.Field().String()) == nil
}

func validateFamily(fl validator.FieldLevel) bool {
	return ValidateFamily(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateActivityKind validates an ActivityKind string value
func ValidateActivityKind(value string) error {
	switch models.ActivityKind(value) {
	case models.ActivityDeepStudy, models.ActivityQuickAsk, models.ActivityChat:
		return nil
	default:
		return fmt.Errorf("invalid activity kind: %s (must be 'deep_study', 'quick_ask', or 'chat')", value)
	}
}

// ValidateSuggestionFrequency validates a SuggestionFrequency string value
func ValidateSuggestionFrequency(value string) error {
	switch models.SuggestionFrequency(value) {
	case models.FrequencyDaily, models.FrequencyEvery3Days, models.FrequencyWeekly:
		return nil
	default:
		return fmt.Errorf("invalid suggestion frequency: %s (must be 'daily', 'every_3_days', or 'weekly')", value)
	}
}

// ValidateWeeklySummaryDay validates a WeeklySummaryDay string value
func ValidateWeeklySummaryDay(value string) error {
	switch models.WeeklySummaryDay(value) {
	case models.WeeklySundayEvening, models.WeeklyMondayMorning:
		return nil
	default:
		return fmt.Errorf("invalid weekly summary day: %s (must be 'sunday_evening' or 'monday_morning')", value)
	}
}

// ValidateFamily validates a notification Family string value
func ValidateFamily(value string) error {
	for _, f := range models.Families {
		if models.Family(value) == f {
			return nil
		}
	}
	return fmt.Errorf("invalid notification family: %s", value)
}

// ValidateCategory validates a notification Category string value
func ValidateCategory(value string) error {
	switch models.Category(value) {
	case models.CategoryMorning, models.CategoryMidday, models.CategoryEvening,
		models.CategorySuggestion, models.CategoryWeeklySummary, models.CategoryMonthlyReport:
		return nil
	default:
		return fmt.Errorf("invalid notification category: %s", value)
	}
}
