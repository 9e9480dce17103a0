package composeresponse

import "smartshop-search/internal/models"

// Envelope is the uniform body of every chat search response.
type Envelope struct {
	Success        bool             `json:"success"`
	Message        string           `json:"message"`
	Products       []models.Product `json:"products"`
	FiltersApplied *Filters         `json:"filtersApplied,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// Filters echoes the normalized intent. A nil field means no filter applied.
type Filters struct {
	Search   *string  `json:"search"`
	MaxPrice *float64 `json:"max_price"`
}
