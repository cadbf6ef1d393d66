package entity

import "strings"

// Patient is a registered clinic patient.
// ID and RegistrationDate are fixed at registration; every other field may be updated.
type Patient struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Age              int    `json:"age"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	RegistrationDate string `json:"registration_date"`
}

func (p Patient) Clone() Patient { return p }

// Validate checks the registration invariants and returns a field -> message map,
// or nil when the record is valid. Email uniqueness is a collection concern and is
// checked by the caller.
func (p Patient) Validate() map[string]string {
	problems := map[string]string{}
	if strings.TrimSpace(p.Name) == "" {
		problems["name"] = "is required"
	}
	if !IsValidAgeRange(p.Age) {
		problems["age"] = "must be between 1 and 120"
	}
	if !IsValidPhone(p.Phone) {
		problems["phone"] = "must contain at least 10 digits"
	}
	if !IsValidEmail(p.Email) {
		problems["email"] = "must be a valid email"
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}
