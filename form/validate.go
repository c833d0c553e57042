package form

import (
	"formintake/core"
	"strconv"
	"strings"
)

// Validate checks a form state and returns the field → message map. Every
// rule runs on every call; an empty result means the form is submittable.
// Bio, hobbies and the profile image are never validated.
func Validate(state core.FormState) core.ValidationResult {
	result := core.ValidationResult{}

	if strings.TrimSpace(state.Name) == "" {
		result["name"] = "Name is required"
	}

	email := strings.TrimSpace(state.Email)
	if email == "" {
		result["email"] = "Email is required"
	} else if !validEmail(email) {
		result["email"] = "Email is invalid"
	}

	if age := strings.TrimSpace(state.Age); age != "" {
		n, err := strconv.ParseFloat(age, 64)
		if err != nil || n <= 0 {
			result["age"] = "Age must be a number greater than 0"
		}
	}

	if !core.ValidGender(state.Gender) {
		result["gender"] = "Gender is required"
	}

	if !state.Agree {
		result["agree"] = "You must accept the terms"
	}

	return result
}

// validEmail accepts the basic local@domain.tld shape: no whitespace,
// exactly one @, and at least one dot after it with characters on both
// sides.
func validEmail(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	at := strings.Index(s, "@")
	if at <= 0 || at != strings.LastIndex(s, "@") {
		return false
	}
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
