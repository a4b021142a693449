// Package validate holds the per-type schema checks every submission
// passes before it reaches the orchestrator. Validation is not
// fail-fast: the full list of violated constraints comes back in one
// pass so the frontend can show them all at once.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// Australian mobile or landline: leading 0 or +61/61, then an area
	// digit in {2,3,4,7,8}, then 8 more digits. Separators are stripped
	// before matching.
	phonePattern    = regexp.MustCompile(`^(?:0|\+?61)[23478]\d{8}$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phoneSeparators.Replace(strings.TrimSpace(phone)))
}

// Validates a payload against the schema for the given submission type.
func Validate(submissionType string, payload map[string]interface{}) Result {
	var errs []string

	switch submissionType {
	case "residential-quote":
		errs = append(errs, checkName(payload, "fullName")...)
		errs = append(errs, checkRequired(payload, "suburb")...)
		errs = append(errs, checkRequired(payload, "serviceType")...)
		errs = append(errs, checkContact(payload, false)...)
	case "commercial-quote":
		errs = append(errs, checkName(payload, "fullName")...)
		errs = append(errs, checkRequired(payload, "businessName")...)
		errs = append(errs, checkContact(payload, false)...)
	case "airbnb-quote":
		errs = append(errs, checkName(payload, "fullName")...)
		errs = append(errs, checkRequired(payload, "propertyAddress")...)
		errs = append(errs, checkContact(payload, false)...)
	case "job-application":
		errs = append(errs, checkName(payload, "fullName")...)
		errs = append(errs, checkRequired(payload, "position")...)
		errs = append(errs, checkContact(payload, true)...)
	case "feedback":
		errs = append(errs, checkName(payload, "fullName")...)
		errs = append(errs, checkRequired(payload, "message")...)
		errs = append(errs, checkRating(payload)...)
		errs = append(errs, checkContact(payload, false)...)
	default:
		errs = append(errs, fmt.Sprintf("unknown submission type: %s", submissionType))
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func stringField(payload map[string]interface{}, field string) string {
	if v, ok := payload[field].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func checkName(payload map[string]interface{}, field string) []string {
	if len(stringField(payload, field)) < 2 {
		return []string{fmt.Sprintf("%s must be at least 2 characters", field)}
	}
	return nil
}

func checkRequired(payload map[string]interface{}, field string) []string {
	if stringField(payload, field) == "" {
		return []string{fmt.Sprintf("%s is required", field)}
	}
	return nil
}

// Contact rules: any phone or email that is present must be
// well-formed, and the submission must be reachable through at least
// one channel. Job applications need both so HR can always call back.
func checkContact(payload map[string]interface{}, requireBoth bool) []string {
	var errs []string

	email := stringField(payload, "email")
	phone := stringField(payload, "phone")

	if email != "" && !IsValidEmail(email) {
		errs = append(errs, "email format is invalid")
	}
	if phone != "" && !IsValidPhone(phone) {
		errs = append(errs, "phone must be a valid Australian number")
	}

	if requireBoth {
		if email == "" {
			errs = append(errs, "email is required")
		}
		if phone == "" {
			errs = append(errs, "phone is required")
		}
	} else if email == "" && phone == "" {
		errs = append(errs, "either a phone number or an email address is required")
	}

	return errs
}

func checkRating(payload map[string]interface{}) []string {
	v, ok := payload["rating"]
	if !ok {
		return []string{"rating is required"}
	}

	// JSON numbers decode as float64
	rating, ok := v.(float64)
	if !ok || rating != float64(int(rating)) || rating < 1 || rating > 5 {
		return []string{"rating must be a whole number between 1 and 5"}
	}
	return nil
}
