package legacy

import "errors"

var (
	// ErrUnsupportedProduct reports a filename carrying no known product token.
	ErrUnsupportedProduct = errors.New("unsupported product")
	// ErrAmbiguousProduct reports a filename carrying tokens of more than one product.
	ErrAmbiguousProduct = errors.New("ambiguous product")
	// ErrDateTokenNotFound reports a missing YYYYMMDD/YYYYMM token or start time.
	ErrDateTokenNotFound = errors.New("date token not found")
	// ErrHemisphereTokenNotFound reports a missing or contradictory hemisphere token.
	ErrHemisphereTokenNotFound = errors.New("hemisphere token not found")
	// ErrVersionTokenNotFound reports a versioned product filename without a version.
	ErrVersionTokenNotFound = errors.New("version token not found")
)
