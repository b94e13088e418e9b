package domain

import "errors"

var (
	// ErrNotFound signals a missing product.
	ErrNotFound = errors.New("product not found")
	// ErrInvalidProduct signals a product that fails validation.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrExtractionFailed signals a completion API failure during attribute extraction.
	ErrExtractionFailed = errors.New("attribute extraction failed")
)
