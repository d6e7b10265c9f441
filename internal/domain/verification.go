package domain

const StatusUnknown = "Unknown"

type VerificationSource string

const (
	SourceCache    VerificationSource = "cache"
	SourceProvider VerificationSource = "provider"
)

// VerificationResult is the stable output schema. Optional fields are nil when the
// provider payload carried no usable value; they are always serialized.
type VerificationResult struct {
	GSTIN            string         `json:"gstin"`
	LegalName        *string        `json:"legalName"`
	TradeName        *string        `json:"tradeName"`
	Status           string         `json:"status"`
	RegistrationDate *string        `json:"registrationDate"`
	Address          *string        `json:"address"`
	BusinessType     *string        `json:"businessType"`
	TaxpayerType     *string        `json:"taxpayerType"`
	Raw              map[string]any `json:"raw"`
}

// ProviderResponse is what the rotator hands back on success.
type ProviderResponse struct {
	Credential Credential
	Payload    []byte
}
