package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidAccountName = fmt.Errorf("%w: invalid account name", ErrValidation)
	ErrInvalidCurrency    = fmt.Errorf("%w: invalid currency code", ErrValidation)
	ErrAmountTooLarge     = fmt.Errorf("%w: amount exceeds maximum allowed", ErrValidation)
	ErrAmountPrecision    = fmt.Errorf("%w: amount has more than two decimal places", ErrValidation)
	ErrInvalidFee         = fmt.Errorf("%w: fee must be zero or positive", ErrValidation)
	ErrMissingField       = fmt.Errorf("%w: required field missing", ErrValidation)
	ErrFieldTooLong       = fmt.Errorf("%w: field too long", ErrValidation)
)

// Validation constants
const (
	MaxAccountNameLength        = 100
	MaxAccountDescriptionLength = 200
	MaxDescriptionLength        = 200
	MaxCategoryLength           = 100
	MaxNotesLength              = 500
	MaxReferenceLength          = 100
	MaxReceiptRefLength         = 250
	MaxReasonLength             = 1000
	MaxAmount                   = "9999999999999999.99" // decimal(18,2)
	AmountPlaces                = 2
)

// Supported currency labels. Currency is a label only, never converted.
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "NGN": true, "CAD": true,
	"AUD": true, "JPY": true, "CHF": true, "CNY": true, "INR": true,
}

var maxAmount = decimal.RequireFromString(MaxAmount)

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if utf8.RuneCountInString(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// NormalizeCurrency upper-cases and validates a currency label.
func NormalizeCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return "", fmt.Errorf("%w: %q is not a supported currency", ErrInvalidCurrency, currency)
	}

	return currency, nil
}

// ValidateAmount validates a movement amount: positive, at most two
// fractional digits and within the storage precision.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return validateMoney(amount)
}

// ValidateFee validates a transfer fee, which may be zero.
func ValidateFee(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return ErrInvalidFee
	}

	return validateMoney(fee)
}

// ValidateBalance validates an initial balance, which may be negative
// (credit cards and loans open with debt).
func ValidateBalance(balance decimal.Decimal) error {
	return validateMoney(balance.Abs())
}

func validateMoney(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(AmountPlaces)) {
		return ErrAmountPrecision
	}

	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateText checks an optional free-text field against its limit.
func ValidateText(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrFieldTooLong, field, limit)
	}
	return nil
}

// ValidateRequired checks a required free-text field.
func ValidateRequired(field, value string, limit int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return ValidateText(field, value, limit)
}

// ValidatePage normalizes a 1-indexed page request.
func ValidatePage(page, size, defaultSize, maxSize int) (int, int) {
	if page < 1 {
		page = 1
	}

	if size <= 0 {
		size = defaultSize
	}

	if size > maxSize {
		size = maxSize
	}

	return page, size
}
