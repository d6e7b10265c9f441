package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGSTIN = "29AABCT1332L1Z5"

func TestNormalizeResultFallsBackToSnakeCase(t *testing.T) {
	t.Parallel()

	result := NormalizeResult(testGSTIN, []byte(`{"legal_name":"ACME PVT LTD"}`))

	require.NotNil(t, result.LegalName)
	assert.Equal(t, "ACME PVT LTD", *result.LegalName)
	assert.Equal(t, testGSTIN, result.GSTIN)
}

func TestNormalizeResultWithoutRecognizedFields(t *testing.T) {
	t.Parallel()

	result := NormalizeResult(testGSTIN, []byte(`{"unrelated":"value"}`))

	assert.Nil(t, result.LegalName)
	assert.Nil(t, result.TradeName)
	assert.Nil(t, result.RegistrationDate)
	assert.Nil(t, result.Address)
	assert.Nil(t, result.BusinessType)
	assert.Nil(t, result.TaxpayerType)
	assert.Equal(t, StatusUnknown, result.Status)
	assert.Equal(t, map[string]any{"unrelated": "value"}, result.Raw)
}

func TestNormalizeResultPrefersEarlierCandidates(t *testing.T) {
	t.Parallel()

	result := NormalizeResult(testGSTIN, []byte(`{"legalName":"First","legal_name":"Second","lgnm":"Third"}`))

	require.NotNil(t, result.LegalName)
	assert.Equal(t, "First", *result.LegalName)
}

func TestNormalizeResultSkipsEmptyValues(t *testing.T) {
	t.Parallel()

	result := NormalizeResult(testGSTIN, []byte(`{"legalName":"  ","legal_name":null,"lgnm":"ACME"}`))

	require.NotNil(t, result.LegalName)
	assert.Equal(t, "ACME", *result.LegalName)
}

func TestNormalizeResultGSTPortalShape(t *testing.T) {
	t.Parallel()

	payload := `{
		"data": {
			"gstin": "29AABCT1332L1Z5",
			"lgnm": "TATA CONSULTANCY SERVICES LIMITED",
			"tradeNam": "TCS",
			"sts": "Active",
			"rgdt": "01/07/2017",
			"ctb": "Public Limited Company",
			"dty": "Regular",
			"pradr": {"adr": {"bno": "No 42", "st": "Residency Road", "loc": "Bengaluru", "pncd": 560025}}
		}
	}`

	result := NormalizeResult(testGSTIN, []byte(payload))

	require.NotNil(t, result.LegalName)
	assert.Equal(t, "TATA CONSULTANCY SERVICES LIMITED", *result.LegalName)
	require.NotNil(t, result.TradeName)
	assert.Equal(t, "TCS", *result.TradeName)
	assert.Equal(t, "Active", result.Status)
	require.NotNil(t, result.RegistrationDate)
	assert.Equal(t, "01/07/2017", *result.RegistrationDate)
	require.NotNil(t, result.Address)
	assert.Equal(t, "No 42, Residency Road, Bengaluru, 560025", *result.Address)
	require.NotNil(t, result.BusinessType)
	assert.Equal(t, "Public Limited Company", *result.BusinessType)
	require.NotNil(t, result.TaxpayerType)
	assert.Equal(t, "Regular", *result.TaxpayerType)
}

func TestNormalizeResultBooleanStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Active", NormalizeResult(testGSTIN, []byte(`{"isActive":true}`)).Status)
	assert.Equal(t, "Inactive", NormalizeResult(testGSTIN, []byte(`{"isActive":false}`)).Status)
	assert.Equal(t, "Cancelled", NormalizeResult(testGSTIN, []byte(`{"status":"Cancelled","isActive":true}`)).Status)
}

func TestNormalizeResultUsesPayloadGSTIN(t *testing.T) {
	t.Parallel()

	result := NormalizeResult(testGSTIN, []byte(`{"gstin":"27AAACR5055K1Z7"}`))
	assert.Equal(t, "27AAACR5055K1Z7", result.GSTIN)
}

func TestNormalizeResultNeverFailsOnMalformedPayload(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{"", "not json", "[1,2,3]", "null"} {
		result := NormalizeResult(testGSTIN, []byte(payload))
		assert.Equal(t, testGSTIN, result.GSTIN)
		assert.Equal(t, StatusUnknown, result.Status)
		assert.NotNil(t, result.Raw)
	}

	wrapped := NormalizeResult(testGSTIN, []byte(`[1,2]`))
	assert.Equal(t, map[string]any{"payload": []any{float64(1), float64(2)}}, wrapped.Raw)
}

func TestVerificationResultSerializesAbsentFieldsAsNull(t *testing.T) {
	t.Parallel()

	encoded, err := json.Marshal(NormalizeResult(testGSTIN, []byte(`{}`)))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	for _, field := range []string{"legalName", "tradeName", "registrationDate", "address", "businessType", "taxpayerType"} {
		value, ok := decoded[field]
		assert.True(t, ok, field)
		assert.Nil(t, value, field)
	}
	assert.Equal(t, "Unknown", decoded["status"])
	assert.Equal(t, map[string]any{}, decoded["raw"])
}
