package vault

import (
	"encoding/json"
	"fmt"
	"io"
)

// Secret is a thin wrapper around a byte slice intended to hold sensitive
// material (passwords, tokens in transit). It implements redaction helpers so
// accidental formatting or JSON marshaling does not reveal data.
type Secret []byte

// String redacts the secret for fmt.Print* convenience.
func (s Secret) String() string { return "[SECRET]" }

// Format implements fmt.Formatter to ensure `%v`, `%#v` and friends are redacted.
func (s Secret) Format(f fmt.State, _ rune) {
	if _, err := io.WriteString(f, "[SECRET]"); err != nil {
		_ = err // intentionally ignore write error when formatting secrets for logs
	}
}

// Bytes returns a copy of the underlying bytes. Callers are responsible for
// zeroing sensitive copies when done.
func (s Secret) Bytes() []byte {
	out := make([]byte, len(s))
	copy(out, s)

	return out
}

// Reveal returns the secret as a string for the one call site that must hand
// it to a backend or a form fill. Callers must not retain the result.
func (s Secret) Reveal() string { return string(s) }

// Zero overwrites the underlying byte slice with zeros.
func (s *Secret) Zero() {
	if s == nil || *s == nil {
		return
	}

	for i := range *s {
		(*s)[i] = 0
	}

	*s = nil
}

// MarshalJSON redacts secrets in JSON marshaling.
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal("[SECRET]") }

// MarshalText redacts secrets for text encoding.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[SECRET]"), nil }

// SecretFromString creates a Secret from a string input. Callers should zero
// any intermediate []byte they create from user input.
func SecretFromString(in string) Secret { return Secret([]byte(in)) }
