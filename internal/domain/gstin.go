package domain

import (
	"fmt"
	"strings"
)

const gstinLength = 15

// NormalizeGSTIN returns the lookup key form of a GSTIN: trimmed and uppercased.
func NormalizeGSTIN(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidateGSTIN expects an already normalized value.
func ValidateGSTIN(gstin string) error {
	if gstin == "" {
		return fmt.Errorf("%w: gstin is required", ErrInvalidGSTIN)
	}
	if len(gstin) != gstinLength {
		return fmt.Errorf("%w: expected %d characters, got %d", ErrInvalidGSTIN, gstinLength, len(gstin))
	}
	for _, r := range gstin {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidGSTIN, r)
		}
	}

	return nil
}
