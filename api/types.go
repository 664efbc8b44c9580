package api

// User is the backend's profile representation.
type User struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Specialization string `json:"specialization,omitempty"`
}

// AuthResponse is the login/register/exchange success envelope.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the registration payload. The password confirmation is
// a client-side check and is deliberately absent.
type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	LicenseNumber  string `json:"licenseNumber,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// ProfileRequest is the profile update payload.
type ProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// ExchangeRequest carries a provider identity assertion to the backend.
// Optional fields are omitted when the provider withheld them.
type ExchangeRequest struct {
	ProviderToken  string `json:"providerToken"`
	SubjectID      string `json:"subjectId,omitempty"`
	Email          string `json:"email,omitempty"`
	FullName       string `json:"fullName,omitempty"`
	Role           string `json:"role,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

type resetRequestBody struct {
	Email string `json:"email"`
}

// ResetRequestResponse always reports success (the backend never discloses
// whether the email exists). ResetCode is echoed only by non-production
// backends for test convenience.
type ResetRequestResponse struct {
	Success   bool   `json:"success"`
	ResetCode string `json:"resetCode,omitempty"`
}

type resetConfirmBody struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
