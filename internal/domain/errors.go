package domain

import "errors"

var (
	// ErrFoodNotFound is returned when a food is not in the catalog or not visible to the caller
	ErrFoodNotFound = errors.New("food not found")

	// ErrEntryNotFound is returned when a diary entry does not exist
	ErrEntryNotFound = errors.New("diary entry not found")

	// ErrForbidden is returned when a caller modifies a record it does not own
	ErrForbidden = errors.New("operation not permitted for this owner")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrExternalUnavailable is returned when an external nutrition database request fails
	ErrExternalUnavailable = errors.New("external nutrition database request failed")

	// ErrClassifierUnavailable is returned when no image classifier is configured or it fails
	ErrClassifierUnavailable = errors.New("image classifier unavailable")

	// ErrDuplicateBarcode is returned when a barcode is already taken in the same scope
	ErrDuplicateBarcode = errors.New("barcode already exists")
)
