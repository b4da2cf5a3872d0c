package types

import (
	"github.com/go-playground/validator/v10"
)

// DiscoverRequest is the transport body for a contact discovery run
type DiscoverRequest struct {
	URLs []string `json:"urls" validate:"required,min=1,dive,required,url"`
	Save bool     `json:"save,omitempty"`
}

// DiscoverResponse is returned for a finished discovery run
type DiscoverResponse struct {
	Success  bool                `json:"success"`
	Contacts []NormalizedContact `json:"contacts"`
	Total    int                 `json:"total"`
	RunID    string              `json:"run_id,omitempty"`
}

// Validate validates the DiscoverRequest using the validator.
func (r *DiscoverRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
