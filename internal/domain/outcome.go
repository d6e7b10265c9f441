package domain

import "fmt"

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	// OutcomeNonSuccessStatus is a provider response with a non-2xx status.
	OutcomeNonSuccessStatus
	// OutcomeRejected is a transport-level failure that still carries an HTTP status,
	// e.g. a strict-status client refusing a non-2xx response or an undecodable body.
	OutcomeRejected
	OutcomeNetworkError
	OutcomeTimeout
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNonSuccessStatus:
		return "non_success_status"
	case OutcomeRejected:
		return "rejected"
	case OutcomeNetworkError:
		return "network_error"
	case OutcomeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of one provider call with one credential.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Payload    []byte
	Detail     string
}

func Success(statusCode int, payload []byte) Outcome {
	return Outcome{Kind: OutcomeSuccess, StatusCode: statusCode, Payload: payload}
}

func NonSuccessStatus(statusCode int, detail string) Outcome {
	return Outcome{Kind: OutcomeNonSuccessStatus, StatusCode: statusCode, Detail: detail}
}

func Rejected(statusCode int, detail string) Outcome {
	return Outcome{Kind: OutcomeRejected, StatusCode: statusCode, Detail: detail}
}

func NetworkError(detail string) Outcome {
	return Outcome{Kind: OutcomeNetworkError, Detail: detail}
}

func Timeout(detail string) Outcome {
	return Outcome{Kind: OutcomeTimeout, Detail: detail}
}

func (o Outcome) IsSuccess() bool {
	return o.Kind == OutcomeSuccess
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return fmt.Sprintf("success (status %d)", o.StatusCode)
	case OutcomeNonSuccessStatus:
		return withDetail(fmt.Sprintf("non-2xx status %d", o.StatusCode), o.Detail)
	case OutcomeRejected:
		return withDetail(fmt.Sprintf("request failed with status %d", o.StatusCode), o.Detail)
	case OutcomeNetworkError:
		return withDetail("network error", o.Detail)
	case OutcomeTimeout:
		return withDetail("timeout", o.Detail)
	default:
		return o.Kind.String()
	}
}

func withDetail(base string, detail string) string {
	if detail == "" {
		return base
	}
	return base + ": " + detail
}
