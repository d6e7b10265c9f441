package domain

import (
	"net/http"
	"strconv"
)

type FailureKind string

const (
	FailureHTTPStatus FailureKind = "http_status"
	FailureRejected   FailureKind = "rejected"
	FailureNetwork    FailureKind = "network"
	FailureTimeout    FailureKind = "timeout"
)

// FailureReason records why a credential failed. Tag is the compact form shown in
// diagnostics; Detail is free text for logs.
type FailureReason struct {
	Kind       FailureKind
	StatusCode int
	Detail     string
}

func (r FailureReason) Tag() string {
	switch r.Kind {
	case FailureHTTPStatus:
		return "status_" + strconv.Itoa(r.StatusCode)
	case FailureRejected:
		if isClientError(r.StatusCode) {
			return "4xx_" + strconv.Itoa(r.StatusCode)
		}
		if r.StatusCode > 0 {
			return "retryable_" + strconv.Itoa(r.StatusCode)
		}
		return "retryable_network"
	case FailureTimeout:
		return "retryable_timeout"
	case FailureNetwork:
		return "retryable_network"
	default:
		return "cooldown"
	}
}

type CooldownDecision struct {
	Cool   bool
	Reason FailureReason
}

var coolingStatuses = map[int]struct{}{
	http.StatusUnauthorized:        {},
	http.StatusForbidden:           {},
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

// DecideCooldown maps one attempt outcome to a cooldown decision. Anything that
// points at the credential itself being rejected or throttled takes it out of
// rotation; other non-2xx statuses are treated as request-specific.
func DecideCooldown(outcome Outcome) CooldownDecision {
	switch outcome.Kind {
	case OutcomeSuccess:
		return CooldownDecision{}
	case OutcomeNonSuccessStatus:
		_, cool := coolingStatuses[outcome.StatusCode]
		return CooldownDecision{
			Cool:   cool,
			Reason: FailureReason{Kind: FailureHTTPStatus, StatusCode: outcome.StatusCode, Detail: outcome.Detail},
		}
	case OutcomeRejected:
		return CooldownDecision{
			Cool:   true,
			Reason: FailureReason{Kind: FailureRejected, StatusCode: outcome.StatusCode, Detail: outcome.Detail},
		}
	case OutcomeTimeout:
		return CooldownDecision{Cool: true, Reason: FailureReason{Kind: FailureTimeout, Detail: outcome.Detail}}
	default:
		return CooldownDecision{Cool: true, Reason: FailureReason{Kind: FailureNetwork, Detail: outcome.Detail}}
	}
}

func isClientError(statusCode int) bool {
	return statusCode >= 400 && statusCode < 500 && statusCode != http.StatusTooManyRequests
}
