package domain

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Candidate source fields per output field, tried in order. Covers camelCase,
// snake_case, the hyphenated KnowYourGST names and the GST portal abbreviations.
var (
	legalNameFields        = []string{"legalName", "legal_name", "legalname", "legal", "entity_name", "legal-name", "lgnm", "data.lgnm"}
	tradeNameFields        = []string{"tradeName", "tradename", "businessName", "business_name", "trade-name", "tradeNam", "data.tradeNam"}
	statusFields           = []string{"status", "ACTIVE", "isActive", "registration_status", "sts", "data.sts"}
	registrationDateFields = []string{"registrationDate", "reg_date", "registration_on", "registration-date", "rgdt", "data.rgdt"}
	addressFields          = []string{"address", "registered_address", "addr", "adress", "pradr.adr", "data.pradr.adr"}
	businessTypeFields     = []string{"businessType", "type", "entity_type", "ctb", "data.ctb"}
	taxpayerTypeFields     = []string{"taxpayerType", "taxpayer_type", "dty", "data.dty"}
)

// NormalizeResult maps an arbitrary provider payload onto VerificationResult.
// Missing or malformed fields become nil; it never fails.
func NormalizeResult(gstin string, payload []byte) VerificationResult {
	if !gjson.ValidBytes(payload) {
		payload = nil
	}

	result := VerificationResult{
		GSTIN:            gstin,
		LegalName:        lookupString(payload, legalNameFields),
		TradeName:        lookupString(payload, tradeNameFields),
		Status:           lookupStatus(payload),
		RegistrationDate: lookupString(payload, registrationDateFields),
		Address:          lookupAddress(payload),
		BusinessType:     lookupString(payload, businessTypeFields),
		TaxpayerType:     lookupString(payload, taxpayerTypeFields),
		Raw:              rawMap(payload),
	}
	if value := scalarString(gjson.GetBytes(payload, "gstin")); value != "" {
		result.GSTIN = value
	}

	return result
}

func lookupString(payload []byte, paths []string) *string {
	for _, path := range paths {
		if value := scalarString(gjson.GetBytes(payload, path)); value != "" {
			return &value
		}
	}
	return nil
}

func lookupStatus(payload []byte) string {
	for _, path := range statusFields {
		result := gjson.GetBytes(payload, path)
		switch result.Type {
		case gjson.True:
			return "Active"
		case gjson.False:
			return "Inactive"
		}
		if value := scalarString(result); value != "" {
			return value
		}
	}
	return StatusUnknown
}

func lookupAddress(payload []byte) *string {
	for _, path := range addressFields {
		result := gjson.GetBytes(payload, path)
		if result.IsObject() || result.IsArray() {
			if value := strings.Join(flattenLeaves(result, nil), ", "); value != "" {
				return &value
			}
			continue
		}
		if value := scalarString(result); value != "" {
			return &value
		}
	}
	return nil
}

func scalarString(result gjson.Result) string {
	switch result.Type {
	case gjson.String:
		return strings.TrimSpace(result.Str)
	case gjson.Number:
		if result.Num == 0 {
			return ""
		}
		return result.Raw
	default:
		return ""
	}
}

func flattenLeaves(result gjson.Result, out []string) []string {
	result.ForEach(func(_, value gjson.Result) bool {
		if value.IsObject() || value.IsArray() {
			out = flattenLeaves(value, out)
			return true
		}
		if leaf := scalarString(value); leaf != "" {
			out = append(out, leaf)
		}
		return true
	})
	return out
}

func rawMap(payload []byte) map[string]any {
	if len(payload) == 0 {
		return map[string]any{}
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return map[string]any{}
	}
	if object, ok := decoded.(map[string]any); ok {
		return object
	}
	return map[string]any{"payload": decoded}
}
