package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bnema/gstin-gateway/internal/application"
	"github.com/bnema/gstin-gateway/internal/domain"
)

const (
	msgInvalidBody   = "Missing or invalid gstin in body"
	msgMissingParam  = "Missing gstin param"
	msgInvalidParam  = "Invalid gstin param"
	msgVerifyFailed  = "Failed to verify GSTIN"
	maxVerifyBodyLen = 64 << 10
)

// VerificationService is the slice of the application the HTTP surface needs.
type VerificationService interface {
	Verify(ctx context.Context, gstin string) (application.Verification, error)
	KeyStates() application.KeyStateReport
	CredentialCount() int
}

type Handler struct {
	service VerificationService
}

func NewHandler(service VerificationService) *Handler {
	return &Handler{service: service}
}

type verifyRequest struct {
	GSTIN any `json:"gstin"`
}

// VerifyResponse is the success body of both verify routes. KeyUsed carries the
// masked prefix of the credential that answered, or null for cache hits.
type VerifyResponse struct {
	Success   bool                      `json:"success"`
	Source    domain.VerificationSource `json:"source"`
	FromCache bool                      `json:"fromCache"`
	KeyUsed   *string                   `json:"keyUsed"`
	Data      domain.VerificationResult `json:"data"`
}

// KeyStateResponse is the /internal/key-state body. Times are epoch milliseconds;
// a zero CooldownUntil means the key has never cooled.
type KeyStateResponse struct {
	Now  int64          `json:"now"`
	Keys []KeyStateItem `json:"keys"`
}

type KeyStateItem struct {
	Prefix        string  `json:"prefix"`
	Label         string  `json:"label"`
	Cooled        bool    `json:"cooled"`
	CooldownUntil int64   `json:"cooldownUntil"`
	LastError     *string `json:"lastError"`
}

type healthResponse struct {
	Status      string `json:"status"`
	Credentials int    `json:"credentials"`
}

func (h *Handler) handleVerifyBody(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxVerifyBodyLen)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, msgInvalidBody, "")
		return
	}

	gstin, ok := req.GSTIN.(string)
	if !ok || gstin == "" {
		respondWithError(w, http.StatusBadRequest, msgInvalidBody, "")
		return
	}

	h.verify(w, r, gstin, msgInvalidBody)
}

func (h *Handler) handleVerifyParam(w http.ResponseWriter, r *http.Request) {
	gstin := chi.URLParam(r, "gstin")
	if gstin == "" {
		respondWithError(w, http.StatusBadRequest, msgMissingParam, "")
		return
	}

	h.verify(w, r, gstin, msgInvalidParam)
}

// verify is shared by the body and path variants of the endpoint. invalidMsg is
// the caller's wording for a malformed GSTIN.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request, gstin string, invalidMsg string) {
	verification, err := h.service.Verify(r.Context(), gstin)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidGSTIN) {
			respondWithError(w, http.StatusBadRequest, invalidMsg, err.Error())
			return
		}
		// The service has already logged the full error.
		respondWithError(w, http.StatusBadGateway, msgVerifyFailed, failureDetails(err))
		return
	}

	respondWithJSON(w, http.StatusOK, NewVerifyResponse(verification))
}

// failureDetails keeps attempt counts and provider bodies out of responses.
func failureDetails(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoCredentialsConfigured):
		return domain.ErrNoCredentialsConfigured.Error()
	case errors.Is(err, domain.ErrAllCredentialsExhausted):
		return domain.ErrAllCredentialsExhausted.Error()
	default:
		return ""
	}
}

func NewVerifyResponse(verification application.Verification) VerifyResponse {
	var keyUsed *string
	if verification.Credential != nil {
		prefix := verification.Credential.Prefix()
		keyUsed = &prefix
	}

	return VerifyResponse{
		Success:   true,
		Source:    verification.Source,
		FromCache: verification.FromCache(),
		KeyUsed:   keyUsed,
		Data:      verification.Result,
	}
}

func (h *Handler) handleKeyState(w http.ResponseWriter, _ *http.Request) {
	report := h.service.KeyStates()

	resp := KeyStateResponse{Now: report.Now.UnixMilli(), Keys: make([]KeyStateItem, 0, len(report.Keys))}
	for _, key := range report.Keys {
		var until int64
		if !key.CooldownUntil.IsZero() {
			until = key.CooldownUntil.UnixMilli()
		}
		resp.Keys = append(resp.Keys, KeyStateItem{
			Prefix:        key.Prefix,
			Label:         key.Label,
			Cooled:        key.Cooled,
			CooldownUntil: until,
			LastError:     key.LastError,
		})
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// Report converts the wire form back into the application view.
func (r KeyStateResponse) Report() application.KeyStateReport {
	report := application.KeyStateReport{Now: time.UnixMilli(r.Now), Keys: make([]application.KeyState, 0, len(r.Keys))}
	for _, item := range r.Keys {
		key := application.KeyState{
			Prefix:    item.Prefix,
			Label:     item.Label,
			Cooled:    item.Cooled,
			LastError: item.LastError,
		}
		if item.CooldownUntil > 0 {
			key.CooldownUntil = time.UnixMilli(item.CooldownUntil)
		}
		report.Keys = append(report.Keys, key)
	}
	return report
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, healthResponse{Status: "ok", Credentials: h.service.CredentialCount()})
}
