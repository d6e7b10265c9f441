package application

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/gstin-gateway/internal/domain"
	portmocks "github.com/bnema/gstin-gateway/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testGSTIN = "29AABCT1332L1Z5"

var (
	keyA = domain.Credential{Token: "key-aaaaaaaa-1", Label: "a"}
	keyB = domain.Credential{Token: "key-bbbbbbbb-2", Label: "b"}
	keyC = domain.Credential{Token: "key-cccccccc-3", Label: "c"}
)

func TestRotatorAttemptOrderPrefersFreshCredentials(t *testing.T) {
	t.Parallel()

	clock := &manualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	pool := domain.NewCredentialPool([]domain.Credential{keyA, keyB, keyC})
	pool.MarkCooldown(keyA, clock.Now(), domain.FailureReason{Kind: domain.FailureHTTPStatus, StatusCode: 429}, time.Minute)

	client := portmocks.NewMockProviderClient(t)
	var attempted []string
	client.EXPECT().Call(mock.Anything, mock.Anything, testGSTIN).
		Run(func(_ context.Context, credential domain.Credential, _ string) {
			attempted = append(attempted, credential.Label)
		}).
		Return(domain.NonSuccessStatus(500, "")).
		Times(3)

	rotator := NewRotator(pool, client, clock, time.Minute, nil)
	assert.Equal(t, []domain.Credential{keyB, keyC, keyA}, rotator.AttemptOrder(clock.Now()))

	_, err := rotator.Verify(context.Background(), testGSTIN)
	require.ErrorIs(t, err, domain.ErrAllCredentialsExhausted)
	assert.Equal(t, []string{"b", "c", "a"}, attempted)
}

func TestRotatorStopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	pool := domain.NewCredentialPool([]domain.Credential{keyA, keyB, keyC})
	client := portmocks.NewMockProviderClient(t)
	client.EXPECT().Call(mock.Anything, keyA, testGSTIN).Return(domain.Success(200, []byte(`{"lgnm":"ACME"}`))).Once()

	rotator := NewRotator(pool, client, nil, time.Minute, nil)
	response, err := rotator.Verify(context.Background(), testGSTIN)

	require.NoError(t, err)
	assert.Equal(t, keyA, response.Credential)
	assert.JSONEq(t, `{"lgnm":"ACME"}`, string(response.Payload))
	client.AssertNumberOfCalls(t, "Call", 1)
}

func TestRotatorFailsOverToNextCredential(t *testing.T) {
	t.Parallel()

	clock := &manualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	pool := domain.NewCredentialPool([]domain.Credential{keyA, keyB})
	client := portmocks.NewMockProviderClient(t)
	client.EXPECT().Call(mock.Anything, keyA, testGSTIN).Return(domain.NonSuccessStatus(403, "forbidden")).Once()
	client.EXPECT().Call(mock.Anything, keyB, testGSTIN).Return(domain.Success(200, []byte(`{}`))).Once()

	rotator := NewRotator(pool, client, clock, 5*time.Minute, nil)
	response, err := rotator.Verify(context.Background(), testGSTIN)

	require.NoError(t, err)
	assert.Equal(t, keyB, response.Credential)
	assert.True(t, pool.IsCooling(keyA, clock.Now()))
	assert.False(t, pool.IsCooling(keyB, clock.Now()))
}

func TestRotatorExhaustionCoolsEveryCredential(t *testing.T) {
	t.Parallel()

	clock := &manualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	pool := domain.NewCredentialPool([]domain.Credential{keyA, keyB, keyC})
	client := portmocks.NewMockProviderClient(t)
	client.EXPECT().Call(mock.Anything, mock.Anything, testGSTIN).Return(domain.NonSuccessStatus(500, "")).Times(3)

	rotator := NewRotator(pool, client, clock, time.Minute, nil)
	_, err := rotator.Verify(context.Background(), testGSTIN)

	var exhausted *domain.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, domain.OutcomeNonSuccessStatus, exhausted.Last.Kind)
	assert.Equal(t, 500, exhausted.Last.StatusCode)

	for _, credential := range []domain.Credential{keyA, keyB, keyC} {
		assert.True(t, pool.IsCooling(credential, clock.Now()), credential.Label)
	}
}

func TestRotatorNonCoolingStatusContinuesWithoutCooldown(t *testing.T) {
	t.Parallel()

	clock := &manualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	pool := domain.NewCredentialPool([]domain.Credential{keyA, keyB})
	client := portmocks.NewMockProviderClient(t)
	client.EXPECT().Call(mock.Anything, mock.Anything, testGSTIN).Return(domain.NonSuccessStatus(404, "not found")).Times(2)

	rotator := NewRotator(pool, client, clock, time.Minute, nil)
	_, err := rotator.Verify(context.Background(), testGSTIN)

	require.ErrorIs(t, err, domain.ErrAllCredentialsExhausted)
	assert.False(t, pool.IsCooling(keyA, clock.Now()))
	assert.False(t, pool.IsCooling(keyB, clock.Now()))
}

func TestRotatorSingleKeyRateLimitedThenRecovers(t *testing.T) {
	t.Parallel()

	clock := &manualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	pool := domain.NewCredentialPool([]domain.Credential{keyA})
	client := portmocks.NewMockProviderClient(t)
	client.EXPECT().Call(mock.Anything, keyA, testGSTIN).Return(domain.NonSuccessStatus(429, "")).Once()
	client.EXPECT().Call(mock.Anything, keyA, testGSTIN).Return(domain.Success(200, []byte(`{"status":"Active"}`))).Once()

	rotator := NewRotator(pool, client, clock, 5*time.Minute, nil)

	_, err := rotator.Verify(context.Background(), testGSTIN)
	require.ErrorIs(t, err, domain.ErrAllCredentialsExhausted)
	require.True(t, pool.IsCooling(keyA, clock.Now()))

	clock.Advance(time.Minute)
	response, err := rotator.Verify(context.Background(), testGSTIN)
	require.NoError(t, err)
	assert.Equal(t, keyA, response.Credential)
}

func TestRotatorWithoutCredentials(t *testing.T) {
	t.Parallel()

	client := portmocks.NewMockProviderClient(t)
	rotator := NewRotator(domain.NewCredentialPool(nil), client, nil, time.Minute, nil)

	_, err := rotator.Verify(context.Background(), testGSTIN)
	require.ErrorIs(t, err, domain.ErrNoCredentialsConfigured)
}

func TestRotatorReportsToObserver(t *testing.T) {
	t.Parallel()

	pool := domain.NewCredentialPool([]domain.Credential{keyA, keyB})
	client := portmocks.NewMockProviderClient(t)
	client.EXPECT().Call(mock.Anything, keyA, testGSTIN).Return(domain.Timeout("deadline exceeded")).Once()
	client.EXPECT().Call(mock.Anything, keyB, testGSTIN).Return(domain.Success(200, []byte(`{}`))).Once()

	observer := &recordingObserver{}
	rotator := NewRotator(pool, client, nil, time.Minute, observer)
	_, err := rotator.Verify(context.Background(), testGSTIN)

	require.NoError(t, err)
	assert.Equal(t, []domain.OutcomeKind{domain.OutcomeTimeout, domain.OutcomeSuccess}, observer.attempts)
	assert.Equal(t, []string{"retryable_timeout"}, observer.cooldowns)
}

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time {
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type recordingObserver struct {
	attempts      []domain.OutcomeKind
	cooldowns     []string
	cacheLookups  []bool
	verifications []domain.VerificationSource
}

func (o *recordingObserver) AttemptFinished(outcome domain.Outcome) {
	o.attempts = append(o.attempts, outcome.Kind)
}

func (o *recordingObserver) CooldownMarked(reason domain.FailureReason) {
	o.cooldowns = append(o.cooldowns, reason.Tag())
}

func (o *recordingObserver) CacheLookup(hit bool) {
	o.cacheLookups = append(o.cacheLookups, hit)
}

func (o *recordingObserver) VerificationFinished(source domain.VerificationSource, _ error) {
	o.verifications = append(o.verifications, source)
}
