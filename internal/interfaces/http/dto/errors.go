package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Checkout rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeNoValidMethod is used when no shipping or payment method applies
	ErrCodeNoValidMethod = "ERR_NO_VALID_METHOD"
	// ErrCodeMethodNotValid is used when a selected method fails its criteria
	ErrCodeMethodNotValid = "ERR_METHOD_NOT_VALID"
	// ErrCodeCountryNotShipped is used when the shop does not deliver to a country
	ErrCodeCountryNotShipped = "ERR_COUNTRY_NOT_SHIPPED"
	// ErrCodeProductNotBuyable is used for inactive products and variant parents
	ErrCodeProductNotBuyable = "ERR_PRODUCT_NOT_BUYABLE"
	// ErrCodeVoucherNotUsable is used when a voucher cannot be redeemed
	ErrCodeVoucherNotUsable = "ERR_VOUCHER_NOT_USABLE"
	// ErrCodeEmptyCart is used when checking out without items
	ErrCodeEmptyCart = "ERR_EMPTY_CART"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeMissingIdentity = "ERR_MISSING_IDENTITY"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Checkout rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeNoValidMethod:     http.StatusUnprocessableEntity,
	ErrCodeMethodNotValid:    http.StatusUnprocessableEntity,
	ErrCodeCountryNotShipped: http.StatusUnprocessableEntity,
	ErrCodeProductNotBuyable: http.StatusUnprocessableEntity,
	ErrCodeVoucherNotUsable:  http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:         http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeMissingIdentity: http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Domain validation codes (ERR_INVALID_*) without an entry are client
// errors; every other unknown code is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "ERR_INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps the codes of domain errors to API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"NO_VALID_METHOD":      ErrCodeNoValidMethod,
	"METHOD_NOT_VALID":     ErrCodeMethodNotValid,
	"COUNTRY_NOT_SHIPPED":  ErrCodeCountryNotShipped,
	"PRODUCT_NOT_BUYABLE":  ErrCodeProductNotBuyable,
	"VOUCHER_NOT_USABLE":   ErrCodeVoucherNotUsable,
	"EMPTY_CART":           ErrCodeEmptyCart,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Already normalized codes are returned as-is; other domain codes get the
// ERR_ prefix.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	if code == "" || strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
