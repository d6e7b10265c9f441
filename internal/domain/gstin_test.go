package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGSTIN(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "29AABCT1332L1Z5", NormalizeGSTIN("29aabct1332l1z5 "))
	assert.Equal(t, "29AABCT1332L1Z5", NormalizeGSTIN("\t29AABCT1332L1Z5\n"))
	assert.Equal(t, "", NormalizeGSTIN("   "))
}

func TestValidateGSTIN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		gstin   string
		wantErr string
	}{
		{name: "valid", gstin: "29AABCT1332L1Z5"},
		{name: "empty", gstin: "", wantErr: "gstin is required"},
		{name: "too short", gstin: "29AABCT1332", wantErr: "expected 15 characters"},
		{name: "symbols", gstin: "29AABCT1332L1Z-", wantErr: "unexpected character"},
		{name: "lowercase is not normalized", gstin: "29aabct1332l1z5", wantErr: "unexpected character"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateGSTIN(tc.gstin)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidGSTIN)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
