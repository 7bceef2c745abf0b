package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("habit_icon", validateHabitIcon); err != nil {
		panic(fmt.Sprintf("failed to register habit_icon validator: %v", err))
	}
	if err := Validate.RegisterValidation("iana_tz", validateTimezone); err != nil {
		panic(fmt.Sprintf("failed to register iana_tz validator: %v", err))
	}
}

// validateTimezone accepts "Local" and any zone time.LoadLocation knows.
// The stock timezone tag rejects "Local".
func validateTimezone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "Local" {
		return true
	}
	if value == "" {
		return false
	}
	_, err := time.LoadLocation(value)
	return err == nil
}

// validateHabitIcon accepts opaque symbol tokens such as "star.fill":
// non-empty, at most 64 characters, no whitespace or control characters.
func validateHabitIcon(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" || len(value) > 64 {
		return false
	}
	for _, r := range value {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// Struct validates s and flattens validator errors into a single message.
func Struct(s interface{}) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

// SanitizeText trims whitespace and removes control characters except
// newline and tab.
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

// SanitizeName is SanitizeText for single-line names: newlines and tabs are
// dropped as well and inner whitespace runs collapse to one space.
func SanitizeName(name string) string {
	return strings.Join(strings.Fields(SanitizeText(name)), " ")
}
