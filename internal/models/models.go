// Package models provides canonical type definitions for Pardot API entities.
// These types are shared by the low-level and high-level client paths.
package models

// Prospect represents a Pardot prospect (a contact/lead record).
// The API returns many more fields; these are the ones every caller of
// this tool relies on.
type Prospect struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Company   string `json:"company,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// TokenResponse is the Salesforce token endpoint response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
	TokenType   string `json:"token_type,omitempty"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}
