package composeresponse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "smartshop-search/internal/common/errors"
	"smartshop-search/internal/models"
)

func price(v float64) *float64 { return &v }

func TestSuccess_Messages(t *testing.T) {
	tests := []struct {
		name string
		rows []models.Product
		want string
	}{
		{"no rows", nil, "No product matches your search. Try different terms."},
		{"one row", []models.Product{{ID: 1}}, "I found 1 product(s) matching your search."},
		{"ten rows", make([]models.Product, 10), "I found 10 product(s) matching your search."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Success(tt.rows, models.NeutralIntent())
			assert.True(t, env.Success)
			assert.Equal(t, tt.want, env.Message)
			assert.Len(t, env.Products, len(tt.rows))
			assert.Empty(t, env.Error)
		})
	}
}

func TestSuccess_EchoesNormalizedIntent(t *testing.T) {
	env := Success(nil, models.NeutralIntent())
	body, err := json.Marshal(env)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"success": true,
		"message": "No product matches your search. Try different terms.",
		"products": [],
		"filtersApplied": {"search": null, "max_price": null}
	}`, string(body))

	env = Success([]models.Product{{ID: 7, Name: "Sneaker", Description: "Blanche", Price: 79.9}},
		models.SearchIntent{Search: "chaussures de sport", MaxPrice: price(100)})
	body, err = json.Marshal(env)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"success": true,
		"message": "I found 1 product(s) matching your search.",
		"products": [{"id": 7, "name": "Sneaker", "description": "Blanche", "price": 79.9}],
		"filtersApplied": {"search": "chaussures de sport", "max_price": 100}
	}`, string(body))
}

func TestSuccess_ZeroPriceIsEchoed(t *testing.T) {
	env := Success(nil, models.SearchIntent{MaxPrice: price(0)})
	require.NotNil(t, env.FiltersApplied.MaxPrice)
	assert.Equal(t, 0.0, *env.FiltersApplied.MaxPrice)
	assert.Nil(t, env.FiltersApplied.Search)
}

func TestSuccess_DoesNotAliasRows(t *testing.T) {
	rows := []models.Product{{ID: 1, Name: "A"}}
	env := Success(rows, models.NeutralIntent())
	rows[0].Name = "changed"
	assert.Equal(t, "A", env.Products[0].Name)
}

func TestFailure(t *testing.T) {
	env := Failure(apperrors.ErrCodeStoreUnavailable, "dial tcp: connection refused")
	body, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"message": "technical error, please retry",
		"products": [],
		"error": "dial tcp: connection refused"
	}`, string(body))

	env = Failure(apperrors.ErrCodeStoreError, "")
	body, err = json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": false, "message": "technical error, please retry", "products": []}`, string(body))

	env = Failure(apperrors.ErrCodeValidation, "")
	assert.Equal(t, MessageValidation, env.Message)
	assert.NotNil(t, env.Products)
}
