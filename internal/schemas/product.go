package schemas

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	minDescriptionWords = 10
	maxDescriptionWords = 1000
)

// ProductInput is a validated product record as submitted by the admin form.
type ProductInput struct {
	Name        string `json:"name" validate:"min=4,max=100"`
	Company     string `json:"company" validate:"min=4,max=100"`
	Featured    bool   `json:"featured"`
	Price       int    `json:"price" validate:"gte=0"`
	Description string `json:"description" validate:"description_words"`
}

func (p *ProductInput) decode(raw Input, found *issues) {
	p.Name, _ = raw.value("name")
	p.Company, _ = raw.value("company")
	p.Description, _ = raw.value("description")

	featured, _ := raw.value("featured")
	p.Featured = coerceBool(featured)

	price, _ := raw.value("price")
	value, ok := coerceInt(price)
	if !ok {
		found.coercionFailed("price", "price must be a whole number")
		return
	}
	p.Price = value
}

func (*ProductInput) messages() map[string]string {
	return map[string]string{
		"name.min":                      "name must be at least 4 characters",
		"name.max":                      "name must be less than 100 characters",
		"company.min":                   "company name must be at least 4 characters",
		"company.max":                   "company name must be less than 100 characters",
		"price.gte":                     "price must be a positive number",
		"description.description_words": "description must be between 10 and 1000 words",
	}
}

// coerceBool treats checkbox values such as "on" as true.
func coerceBool(raw string) bool {
	v := strings.TrimSpace(raw)
	if v == "" {
		return false
	}
	if parsed, err := strconv.ParseBool(v); err == nil {
		return parsed
	}
	return true
}

// coerceInt accepts whole numbers that fit the integer price column.
func coerceInt(raw string) (int, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, true
	}
	if parsed, err := strconv.ParseInt(v, 10, 32); err == nil {
		return int(parsed), true
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func validateDescriptionWords(fl validator.FieldLevel) bool {
	words := len(strings.Split(fl.Field().String(), " "))
	return words >= minDescriptionWords && words <= maxDescriptionWords
}
