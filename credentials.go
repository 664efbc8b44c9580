package goAuthClient

import "strings"

// Local credential validation. These checks run before any network call; a
// message return means the request never leaves the device.

const minPasswordLength = 8

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validateLogin(email, password string) string {
	if blank(email) {
		return "email is required"
	}
	if blank(password) {
		return "password is required"
	}
	return ""
}

func validateRegistration(in RegisterInput) string {
	if blank(in.Name) {
		return "name is required"
	}
	if blank(in.Email) {
		return "email is required"
	}
	if blank(in.Role) {
		return "role is required"
	}
	if blank(in.Password) {
		return "password is required"
	}
	if len(in.Password) < minPasswordLength {
		return "password must be at least 8 characters"
	}
	if in.Password != in.ConfirmPassword {
		return "passwords do not match"
	}
	return ""
}

func validateProfile(p ProfilePatch) string {
	if blank(p.FirstName) {
		return "first name is required"
	}
	if blank(p.LastName) {
		return "last name is required"
	}
	if blank(p.Email) {
		return "email is required"
	}
	return ""
}
