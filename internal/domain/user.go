package domain

// Doctor is a physician account managed by administrators.
type Doctor struct {
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Active bool   `json:"active"`
}
