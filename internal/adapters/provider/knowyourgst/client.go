package knowyourgst

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/gstin-gateway/internal/domain"
)

const (
	DefaultBaseURL   = "https://www.knowyourgst.com/developers/gstincall/"
	DefaultAuthParam = "passthrough"
	DefaultTimeout   = 15 * time.Second

	maxResponseBytes = 1 << 20
	maxDetailBytes   = 256
)

type AuthScheme string

const (
	AuthQuery  AuthScheme = "query"
	AuthHeader AuthScheme = "header"
)

func ParseAuthScheme(value string) (AuthScheme, error) {
	switch scheme := AuthScheme(strings.ToLower(strings.TrimSpace(value))); scheme {
	case "", AuthQuery:
		return AuthQuery, nil
	case AuthHeader:
		return AuthHeader, nil
	default:
		return "", fmt.Errorf("unsupported provider auth scheme %q", value)
	}
}

type Config struct {
	BaseURL        string
	AuthScheme     AuthScheme
	AuthParam      string
	StrictStatus   bool
	RequestTimeout time.Duration
	HTTPClient     *http.Client
}

// Client performs one KnowYourGST lookup per call. It never retries.
type Client struct {
	endpoint   *url.URL
	scheme     AuthScheme
	param      string
	strict     bool
	timeout    time.Duration
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	endpoint, err := parseEndpoint(baseURL)
	if err != nil {
		return nil, err
	}

	scheme := cfg.AuthScheme
	if scheme == "" {
		scheme = AuthQuery
	}
	if scheme != AuthQuery && scheme != AuthHeader {
		return nil, fmt.Errorf("unsupported provider auth scheme %q", scheme)
	}

	param := strings.TrimSpace(cfg.AuthParam)
	if param == "" {
		param = DefaultAuthParam
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		endpoint:   endpoint,
		scheme:     scheme,
		param:      param,
		strict:     cfg.StrictStatus,
		timeout:    timeout,
		httpClient: httpClient,
	}, nil
}

func (c *Client) Call(ctx context.Context, credential domain.Credential, gstin string) domain.Outcome {
	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, c.requestURL(credential, gstin), nil)
	if err != nil {
		return domain.NetworkError(fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.scheme == AuthHeader {
		req.Header.Set(c.param, credential.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportOutcome(requestCtx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportOutcome(requestCtx, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail := responseDetail(body)
		if c.strict {
			return domain.Rejected(resp.StatusCode, detail)
		}
		return domain.NonSuccessStatus(resp.StatusCode, detail)
	}

	if !json.Valid(body) {
		return domain.Rejected(resp.StatusCode, "response body is not valid JSON")
	}

	return domain.Success(resp.StatusCode, body)
}

func (c *Client) requestURL(credential domain.Credential, gstin string) string {
	endpoint := *c.endpoint
	values := endpoint.Query()
	if c.scheme == AuthQuery {
		values.Set(c.param, credential.Token)
	}
	values.Set("gstin", gstin)
	endpoint.RawQuery = values.Encode()
	return endpoint.String()
}

// transportOutcome drops the request URL from url.Error so a query credential
// never reaches logs.
func transportOutcome(ctx context.Context, err error) domain.Outcome {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.Timeout(err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.Timeout(err.Error())
	}
	return domain.NetworkError(err.Error())
}

func responseDetail(body []byte) string {
	detail := strings.TrimSpace(string(body))
	if len(detail) > maxDetailBytes {
		detail = detail[:maxDetailBytes]
	}
	return detail
}

func parseEndpoint(baseURL string) (*url.URL, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse provider base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("provider base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("provider base url host is required")
	}
	return parsed, nil
}
