package composeresponse

import (
	"fmt"

	apperrors "smartshop-search/internal/common/errors"
	"smartshop-search/internal/models"
)

const (
	MessageNoMatch    = "No product matches your search. Try different terms."
	MessageTechnical  = "technical error, please retry"
	MessageValidation = "message is required and must be a string"
)

// Success builds the envelope for a completed search. The message depends
// only on the number of rows.
func Success(rows []models.Product, intent models.SearchIntent) Envelope {
	products := make([]models.Product, len(rows))
	copy(products, rows)

	return Envelope{
		Success:        true,
		Message:        successMessage(len(products)),
		Products:       products,
		FiltersApplied: echoFilters(intent),
	}
}

// Failure builds the envelope for a request that could not be served.
// detail is copied verbatim into the error field; callers pass "" when raw
// detail must not leave the process.
func Failure(kind apperrors.ErrorCode, detail string) Envelope {
	message := MessageTechnical
	if kind == apperrors.ErrCodeValidation {
		message = MessageValidation
	}

	return Envelope{
		Success:  false,
		Message:  message,
		Products: []models.Product{},
		Error:    detail,
	}
}

func successMessage(n int) string {
	if n == 0 {
		return MessageNoMatch
	}
	return fmt.Sprintf("I found %d product(s) matching your search.", n)
}

func echoFilters(intent models.SearchIntent) *Filters {
	f := &Filters{}
	if intent.HasSearch() {
		search := intent.Search
		f.Search = &search
	}
	if intent.HasMaxPrice() {
		p := *intent.MaxPrice
		f.MaxPrice = &p
	}
	return f
}
