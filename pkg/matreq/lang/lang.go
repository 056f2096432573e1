package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/cognicore/matreq/pkg/matreq/internalerr"
)

// Code is one of the operator languages the engine understands.
type Code string

const (
	English  Code = "en"
	Hindi    Code = "hi"
	Kannada  Code = "kn"
	Tamil    Code = "ta"
	Telugu   Code = "te"
	Marathi  Code = "mr"
	Gujarati Code = "gu"
	Punjabi  Code = "pa"
)

// Default is assumed when the caller declares no language.
const Default = English

var supported = []Code{English, Hindi, Kannada, Tamil, Telugu, Marathi, Gujarati, Punjabi}

// Supported returns the supported codes in a stable order.
func Supported() []Code {
	out := make([]Code, len(supported))
	copy(out, supported)
	return out
}

// IsSupported reports whether c is one of the supported codes.
func IsSupported(c Code) bool {
	for _, s := range supported {
		if s == c {
			return true
		}
	}
	return false
}

// Parse turns a declared language into a Code. An empty value means English.
// Full BCP 47 tags are reduced to their base language, so "hi-IN" is Hindi.
func Parse(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Default, nil
	}
	if c := Code(strings.ToLower(s)); IsSupported(c) {
		return c, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", internalerr.ErrUnsupportedLanguage, s)
	}
	base, _ := tag.Base()
	c := Code(base.String())
	if !IsSupported(c) {
		return "", fmt.Errorf("%w: %q", internalerr.ErrUnsupportedLanguage, s)
	}
	return c, nil
}

// Tag returns the x/text language tag for c.
func (c Code) Tag() language.Tag {
	return language.Make(string(c))
}

func (c Code) String() string {
	return string(c)
}
