package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNoInput is returned when neither an image nor a barcode was submitted
	ErrNoInput = errors.New("please upload a photo or enter a barcode")

	// ErrUnsupportedFile is returned for uploads that are not PNG or JPEG images
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrNoBarcode is returned when no barcode could be decoded from the image
	ErrNoBarcode = errors.New("no barcode found in the image")

	// ErrMultipleBarcodes is returned when the image contains more than one barcode
	ErrMultipleBarcodes = errors.New("multiple barcodes found in the image")

	// ErrProductNotFound is returned when the product database has no match for a barcode
	ErrProductNotFound = errors.New("product not found")

	// ErrProductAPIFailure is returned when the product database request fails
	ErrProductAPIFailure = errors.New("failed to fetch product")

	// ErrReasoningUnavailable is returned when the reasoning service errored,
	// timed out or returned text that is not a JSON object
	ErrReasoningUnavailable = errors.New("AI insights not available")

	// ErrMappingFailed is returned when a well-formed reasoning response does not
	// match the expected schema (unknown category, missing keys)
	ErrMappingFailed = errors.New("error while mapping AI response")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

// IsInputError reports whether err is a user-facing input problem.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrUnsupportedFile) ||
		errors.Is(err, ErrNoBarcode) ||
		errors.Is(err, ErrMultipleBarcodes)
}

// IsNotFound reports whether err means the barcode could not be resolved to a product.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrProductAPIFailure)
}

// LookupError records the barcode a product lookup failed for
type LookupError struct {
	Barcode string
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("product %s: %v", e.Barcode, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// FailedBarcode returns the barcode carried by a LookupError in err's chain.
func FailedBarcode(err error) string {
	var lookup *LookupError
	if errors.As(err, &lookup) {
		return lookup.Barcode
	}
	return ""
}
