package datasetservice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blockmarketai/marketplace/internal/domain"
)

func validInput() domain.DatasetInput {
	return domain.DatasetInput{
		Title:       "Hourly electricity prices",
		Description: "Hourly day-ahead electricity prices for the Nordic region, 2019-2024.",
		Category:    "Finance",
		Price:       0.5,
		Currency:    domain.CurrencyETH,
	}
}

func TestValidateInput_Valid(t *testing.T) {
	assert.Empty(t, validateInput(validInput()))
}

func TestValidateInput_Title(t *testing.T) {
	input := validInput()
	input.Title = "ab"
	assert.Contains(t, validateInput(input), "Title must be between 3 and 100 characters")

	input.Title = "EEG"
	assert.Empty(t, validateInput(input), "a 3-character title is valid")
}

func TestValidateInput_Description(t *testing.T) {
	input := validInput()
	input.Description = "too short"
	assert.Contains(t, validateInput(input), "Description must be between 10 and 2000 characters")

	input.Description = "ten chars!"
	assert.Empty(t, validateInput(input), "a 10-character description is valid")

	input.Description = strings.Repeat("a", 1500)
	assert.Empty(t, validateInput(input), "descriptions up to 2000 characters are valid")

	input.Description = strings.Repeat("a", 2001)
	assert.Contains(t, validateInput(input), "Description must be between 10 and 2000 characters")
}

func TestValidateInput_Category(t *testing.T) {
	input := validInput()
	input.Category = "Astrology"
	assert.Contains(t, validateInput(input), "Invalid category")
}

func TestValidateInput_PriceBounds(t *testing.T) {
	input := validInput()
	input.Price = -1
	assert.Contains(t, validateInput(input), "Price must be between 0 and 1000")

	input.Price = 1000.01
	assert.Contains(t, validateInput(input), "Price must be between 0 and 1000")

	input.Price = 0
	assert.Empty(t, validateInput(input))
}

func TestValidateInput_Currency(t *testing.T) {
	input := validInput()
	input.Currency = "BTC"
	assert.Contains(t, validateInput(input), "Currency must be ETH or USD")
}

func TestValidateUpdate(t *testing.T) {
	badTitle := "ab"
	goodPrice := 10.0
	errs := validateUpdate(domain.DatasetUpdate{Title: &badTitle, Price: &goodPrice})
	assert.Equal(t, []string{"Title must be between 3 and 100 characters"}, errs)
}
