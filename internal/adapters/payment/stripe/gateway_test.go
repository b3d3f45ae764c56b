package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	stripego "github.com/stripe/stripe-go/v74"
)

// --- Mock Stripe checkout sessions ---
type MockSessionAPI struct {
	mock.Mock
}

func (m *MockSessionAPI) New(params *stripego.CheckoutSessionParams) (*stripego.CheckoutSession, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripego.CheckoutSession), args.Error(1)
}

func (m *MockSessionAPI) Get(id string, params *stripego.CheckoutSessionParams) (*stripego.CheckoutSession, error) {
	args := m.Called(id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripego.CheckoutSession), args.Error(1)
}

func awaitingIntent(t *testing.T, amount string, recurrence domain.Recurrence, donorID string) domain.AwaitingPayment {
	t.Helper()
	selecting, err := domain.NewIntent(domain.Offer{Amount: decimal.RequireFromString(amount), Recurrence: recurrence, PackReference: "license"})
	require.NoError(t, err)
	choosing, err := selecting.ChooseRecipient("R1")
	require.NoError(t, err)
	if donorID == "" {
		return choosing.ProceedAnonymously()
	}
	awaiting, err := choosing.ProceedIdentified(donorID)
	require.NoError(t, err)
	return awaiting
}

type GatewayTestSuite struct {
	suite.Suite
	sessions *MockSessionAPI
	gateway  *Gateway
}

func (suite *GatewayTestSuite) SetupTest() {
	suite.sessions = new(MockSessionAPI)
	suite.gateway = &Gateway{
		sessions: suite.sessions,
		cfg: Config{
			Currency:   "eur",
			SuccessURL: "https://donate.example/complete?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:  "https://donate.example/donate",
		},
	}
}

func (suite *GatewayTestSuite) TestCreateSession_OneTimeAnonymous() {
	var captured *stripego.CheckoutSessionParams
	suite.sessions.On("New", mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(0).(*stripego.CheckoutSessionParams) }).
		Return(&stripego.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/cs_test_1"}, nil).Once()

	handle, err := suite.gateway.CreateSession(context.Background(), awaitingIntent(suite.T(), "25.00", domain.OneTime, ""))
	suite.Require().NoError(err)
	suite.Equal("cs_test_1", handle.SessionID)
	suite.Equal("https://checkout.stripe.com/c/cs_test_1", handle.RedirectURL)

	suite.Require().NotNil(captured)
	suite.Equal(string(stripego.CheckoutSessionModePayment), *captured.Mode)
	suite.Require().Len(captured.LineItems, 1)
	price := captured.LineItems[0].PriceData
	suite.Equal(int64(2500), *price.UnitAmount)
	suite.Equal("eur", *price.Currency)
	suite.Nil(price.Recurring)
	suite.Nil(captured.ClientReferenceID)
	suite.Equal("R1", captured.Metadata[metaRecipientID])
	suite.Equal("true", captured.Metadata[metaIsAnonymous])
	suite.NotContains(captured.Metadata, metaDonorID)
	suite.Equal("25.00", captured.Metadata[metaAmount])
	suite.Equal("license", captured.Metadata[metaPackReference])
	suite.sessions.AssertExpectations(suite.T())
}

func (suite *GatewayTestSuite) TestCreateSession_AnnualSubscription() {
	var captured *stripego.CheckoutSessionParams
	suite.sessions.On("New", mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(0).(*stripego.CheckoutSessionParams) }).
		Return(&stripego.CheckoutSession{ID: "cs_test_2", URL: "https://checkout.stripe.com/c/cs_test_2"}, nil).Once()

	_, err := suite.gateway.CreateSession(context.Background(), awaitingIntent(suite.T(), "120", domain.Annual, "google:42"))
	suite.Require().NoError(err)

	suite.Equal(string(stripego.CheckoutSessionModeSubscription), *captured.Mode)
	suite.Require().NotNil(captured.LineItems[0].PriceData.Recurring)
	suite.Equal("year", *captured.LineItems[0].PriceData.Recurring.Interval)
	suite.Equal(int64(12000), *captured.LineItems[0].PriceData.UnitAmount)
	suite.Equal("google:42", *captured.ClientReferenceID)
	suite.Equal("google:42", captured.Metadata[metaDonorID])
	suite.Equal("false", captured.Metadata[metaIsAnonymous])
	suite.Equal("annual", captured.Metadata[metaRecurrence])
}

func (suite *GatewayTestSuite) TestCreateSession_ErrorsAreClassified() {
	suite.sessions.On("New", mock.Anything).
		Return(nil, &stripego.Error{HTTPStatusCode: http.StatusServiceUnavailable, Msg: "try again"}).Once()
	_, err := suite.gateway.CreateSession(context.Background(), awaitingIntent(suite.T(), "10", domain.OneTime, ""))
	suite.ErrorIs(err, apperrors.ErrGatewayUnavailable)

	suite.sessions.On("New", mock.Anything).
		Return(nil, &stripego.Error{HTTPStatusCode: http.StatusBadRequest, Code: stripego.ErrorCodeAmountTooSmall, Msg: "too small"}).Once()
	_, err = suite.gateway.CreateSession(context.Background(), awaitingIntent(suite.T(), "0.10", domain.OneTime, ""))
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (suite *GatewayTestSuite) TestResolveSession_Paid() {
	suite.sessions.On("Get", "cs_paid", mock.Anything).Return(&stripego.CheckoutSession{
		ID:            "cs_paid",
		PaymentStatus: stripego.CheckoutSessionPaymentStatusPaid,
		AmountTotal:   5000,
		Currency:      stripego.CurrencyEUR,
		PaymentIntent: &stripego.PaymentIntent{ID: "pi_123"},
		Metadata:      intentMetadata(awaitingIntent(suite.T(), "50", domain.Monthly, "google:7")),
	}, nil).Once()

	payment, err := suite.gateway.ResolveSession(context.Background(), "cs_paid")
	suite.Require().NoError(err)
	suite.Equal("cs_paid", payment.SessionID)
	suite.Equal("pi_123", payment.PaymentTransactionID)
	suite.True(payment.Amount.Equal(decimal.NewFromInt(50)))
	suite.Equal("eur", payment.Currency)
	suite.Equal(domain.PaymentPaid, payment.Status)

	intent, err := domain.RestoreIntent(payment.Intent)
	suite.Require().NoError(err)
	awaiting, ok := intent.(domain.AwaitingPayment)
	suite.Require().True(ok)
	suite.Equal("R1", awaiting.RecipientID())
	suite.Equal(domain.Monthly, awaiting.Offer().Recurrence)
	suite.Equal("google:7", *awaiting.Identity().DonorID())
}

func (suite *GatewayTestSuite) TestResolveSession_Failures() {
	suite.sessions.On("Get", "cs_open", mock.Anything).Return(&stripego.CheckoutSession{
		ID:            "cs_open",
		PaymentStatus: stripego.CheckoutSessionPaymentStatusUnpaid,
	}, nil).Once()
	_, err := suite.gateway.ResolveSession(context.Background(), "cs_open")
	suite.ErrorIs(err, apperrors.ErrSessionNotCompleted)

	suite.sessions.On("Get", "cs_missing", mock.Anything).
		Return(nil, &stripego.Error{HTTPStatusCode: http.StatusNotFound}).Once()
	_, err = suite.gateway.ResolveSession(context.Background(), "cs_missing")
	suite.ErrorIs(err, apperrors.ErrSessionNotFound)

	suite.sessions.On("Get", "cs_broken", mock.Anything).Return(&stripego.CheckoutSession{
		ID:            "cs_broken",
		PaymentStatus: stripego.CheckoutSessionPaymentStatusPaid,
		Metadata:      map[string]string{metaRecipientID: "R1"},
	}, nil).Once()
	_, err = suite.gateway.ResolveSession(context.Background(), "cs_broken")
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.NotErrorIs(err, apperrors.ErrForeignSession)

	suite.sessions.On("Get", "cs_shop", mock.Anything).Return(&stripego.CheckoutSession{
		ID:            "cs_shop",
		PaymentStatus: stripego.CheckoutSessionPaymentStatusPaid,
		Metadata:      map[string]string{"orderId": "A-1"},
	}, nil).Once()
	_, err = suite.gateway.ResolveSession(context.Background(), "cs_shop")
	suite.ErrorIs(err, apperrors.ErrForeignSession)
}

func TestGatewayTestSuite(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}

// signPayload builds a Stripe-Signature header the way Stripe does.
func signPayload(payload []byte, secret string) string {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "." + string(payload)))
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType, sessionID string) []byte {
	return versionedEventPayload(stripego.APIVersion, eventType, sessionID)
}

func versionedEventPayload(apiVersion, eventType, sessionID string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","api_version":%q,"type":%q,"data":{"object":{"id":%q,"object":"checkout.session"}}}`,
		apiVersion, eventType, sessionID))
}

func TestWebhookVerifier(t *testing.T) {
	const secret = "whsec_test"
	verifier := NewWebhookVerifier(secret)

	payload := eventPayload(eventCheckoutCompleted, "cs_done")
	sessionID, ok, err := verifier.VerifyCompletion(payload, signPayload(payload, secret))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cs_done", sessionID)

	async := eventPayload(eventAsyncPaymentSucceeded, "cs_async")
	sessionID, ok, err = verifier.VerifyCompletion(async, signPayload(async, secret))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cs_async", sessionID)

	expired := eventPayload("checkout.session.expired", "cs_old")
	_, ok, err = verifier.VerifyCompletion(expired, signPayload(expired, secret))
	require.NoError(t, err)
	assert.False(t, ok, "authentic events that are not completions are ignored")

	_, _, err = verifier.VerifyCompletion(payload, signPayload(payload, "whsec_other"))
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, _, err = NewWebhookVerifier("").VerifyCompletion(payload, signPayload(payload, secret))
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestWebhookVerifier_AcceptsOtherEndpointAPIVersions(t *testing.T) {
	const secret = "whsec_test"
	verifier := NewWebhookVerifier(secret)

	for _, version := range []string{"2024-06-20", "2020-08-27"} {
		payload := versionedEventPayload(version, eventCheckoutCompleted, "cs_"+version)
		sessionID, ok, err := verifier.VerifyCompletion(payload, signPayload(payload, secret))
		require.NoError(t, err, version)
		assert.True(t, ok)
		assert.Equal(t, "cs_"+version, sessionID)
	}

	// the version is ignored, the signature is not
	payload := versionedEventPayload("2024-06-20", eventCheckoutCompleted, "cs_forged")
	_, _, err := verifier.VerifyCompletion(payload, signPayload(payload, "whsec_other"))
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
