package domain

import "github.com/shopspring/decimal"

// AmountScale and MaxAmount mirror the NUMERIC(14, 2) money columns.
const AmountScale = 2

var MaxAmount = decimal.RequireFromString("999999999999.99")

// ValidateAmount rejects amounts the money columns cannot store exactly.
func ValidateAmount(field string, amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return &ValidationError{Field: field, Message: field + " must be greater than 0"}
	case !amount.Round(AmountScale).Equal(amount):
		return &ValidationError{Field: field, Message: field + " must have at most 2 decimal places"}
	case amount.GreaterThan(MaxAmount):
		return &ValidationError{Field: field, Message: field + " must not exceed " + MaxAmount.String()}
	}
	return nil
}
