package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUnsupportedLanguage = fmt.Errorf("%w: unsupported language", ErrInvalidArgument)
	ErrInvalidConfig       = errors.New("invalid configuration")
)
