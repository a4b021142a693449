package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPhoneFormats(t *testing.T) {
	valid := []string{
		"0412345678",
		"0412 345 678",
		"04-1234-5678",
		"+61412345678",
		"61412345678",
		"+61 412 345 678",
		"0298765432",
		"(02) 9876 5432",
		"0387654321",
		"0756781234",
		"0887654321",
	}
	for _, phone := range valid {
		assert.True(t, IsValidPhone(phone), "expected valid: %s", phone)
	}

	invalid := []string{
		"",
		"123",
		"0512345678",  // area digit 5 is not allocated
		"041234567",   // one digit short
		"04123456789", // one digit long
		"+1 555 0100",
		"not a phone",
	}
	for _, phone := range invalid {
		assert.False(t, IsValidPhone(phone), "expected invalid: %s", phone)
	}
}

func TestValidEmailFormats(t *testing.T) {
	assert.True(t, IsValidEmail("jo@example.com"))
	assert.True(t, IsValidEmail("jo.smith+tag@mail.example.org"))
	assert.False(t, IsValidEmail("bad-email"))
	assert.False(t, IsValidEmail("jo@nodot"))
	assert.False(t, IsValidEmail("jo sm@example.com"))
}

func TestResidentialQuoteCollectsAllErrors(t *testing.T) {
	result := Validate("residential-quote", map[string]interface{}{
		"fullName": "Jo",
		"email":    "bad-email",
		"phone":    "123",
	})

	require.False(t, result.Valid)

	// Email and phone formats are both reported in one pass; fullName
	// passes at exactly 2 characters.
	assert.Contains(t, result.Errors, "email format is invalid")
	assert.Contains(t, result.Errors, "phone must be a valid Australian number")
	for _, err := range result.Errors {
		assert.NotContains(t, err, "fullName")
	}
	assert.Contains(t, result.Errors, "suburb is required")
	assert.Contains(t, result.Errors, "serviceType is required")
}

func TestResidentialQuoteValid(t *testing.T) {
	result := Validate("residential-quote", map[string]interface{}{
		"fullName":    "Jo Smith",
		"email":       "jo@example.com",
		"suburb":      "Bondi",
		"serviceType": "deep-clean",
	})

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestContactReachability(t *testing.T) {
	// No phone and no email at all
	result := Validate("residential-quote", map[string]interface{}{
		"fullName":    "Jo Smith",
		"suburb":      "Bondi",
		"serviceType": "regular",
	})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors, "either a phone number or an email address is required")

	// Phone alone is enough
	result = Validate("residential-quote", map[string]interface{}{
		"fullName":    "Jo Smith",
		"phone":       "0412345678",
		"suburb":      "Bondi",
		"serviceType": "regular",
	})
	assert.True(t, result.Valid)
}

func TestJobApplicationRequiresBothContacts(t *testing.T) {
	result := Validate("job-application", map[string]interface{}{
		"fullName": "Jo Smith",
		"position": "cleaner",
		"email":    "jo@example.com",
	})

	require.False(t, result.Valid)
	assert.Contains(t, result.Errors, "phone is required")

	result = Validate("job-application", map[string]interface{}{
		"fullName": "Jo Smith",
		"position": "cleaner",
		"email":    "jo@example.com",
		"phone":    "0412 345 678",
	})
	assert.True(t, result.Valid)
}

func TestFeedbackRating(t *testing.T) {
	base := map[string]interface{}{
		"fullName": "Jo Smith",
		"message":  "Great service",
		"email":    "jo@example.com",
	}

	result := Validate("feedback", base)
	assert.Contains(t, result.Errors, "rating is required")

	for _, rating := range []interface{}{float64(0), float64(6), float64(3.5), "5"} {
		payload := map[string]interface{}{"rating": rating}
		for k, v := range base {
			payload[k] = v
		}
		result = Validate("feedback", payload)
		assert.Contains(t, result.Errors, "rating must be a whole number between 1 and 5", "rating %v", rating)
	}

	payload := map[string]interface{}{"rating": float64(5)}
	for k, v := range base {
		payload[k] = v
	}
	result = Validate("feedback", payload)
	assert.True(t, result.Valid, "errors: %v", result.Errors)
}

func TestUnknownType(t *testing.T) {
	result := Validate("mystery", map[string]interface{}{})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "unknown submission type")
}
