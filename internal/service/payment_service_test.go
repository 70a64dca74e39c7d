package service

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPaymentService() *PaymentService {
	svc := NewPaymentService(PaymentConfig{
		MerchantCode: "TESTMERCH",
		SecretKey:    "test-secret-key",
		GatewayURL:   "https://gateway.example.com/pay",
		ReturnURL:    "https://shop.example.com/payment-result",
	})
	svc.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	}
	return svc
}

func TestCreatePaymentURLIsDeterministic(t *testing.T) {
	svc := testPaymentService()

	first, err := svc.CreatePaymentURL(125.50, "203.0.113.7")
	require.NoError(t, err)
	second, err := svc.CreatePaymentURL(125.50, "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	parsed, err := url.Parse(first)
	require.NoError(t, err)
	query := parsed.Query()

	assert.Equal(t, "TESTMERCH", query.Get("vnp_TmnCode"))
	assert.Equal(t, "12550", query.Get("vnp_Amount"))
	assert.Equal(t, "20240315103000", query.Get("vnp_CreateDate"))
	assert.Equal(t, "203.0.113.7", query.Get("vnp_IpAddr"))
	assert.NotEmpty(t, query.Get("vnp_SecureHash"))
}

func TestCreatePaymentURLRejectsNonPositiveAmount(t *testing.T) {
	svc := testPaymentService()

	_, err := svc.CreatePaymentURL(0, "203.0.113.7")
	require.Error(t, err)
	_, err = svc.CreatePaymentURL(-10, "203.0.113.7")
	require.Error(t, err)
}

func TestVerifyCallbackRoundTrip(t *testing.T) {
	svc := testPaymentService()

	paymentURL, err := svc.CreatePaymentURL(99.99, "203.0.113.7")
	require.NoError(t, err)

	parsed, err := url.Parse(paymentURL)
	require.NoError(t, err)

	// Simulate the gateway echoing the signed params back with its outcome.
	callback := parsed.Query()
	result, err := svc.VerifyCallback(callback)
	require.NoError(t, err)
	assert.False(t, result.Success) // no vnp_ResponseCode in the outbound set
}

func TestVerifyCallbackAcceptsGatewayResponse(t *testing.T) {
	svc := testPaymentService()

	callback := url.Values{}
	callback.Set("vnp_TxnRef", "20240315103000")
	callback.Set("vnp_Amount", "9999")
	callback.Set("vnp_ResponseCode", "00")
	callback.Set("vnp_SecureHash", svc.sign(callback))

	result, err := svc.VerifyCallback(callback)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "00", result.ResponseCode)
	assert.Equal(t, "20240315103000", result.TxnRef)
}

func TestVerifyCallbackDeclinedPaymentIsNotAnError(t *testing.T) {
	svc := testPaymentService()

	callback := url.Values{}
	callback.Set("vnp_TxnRef", "ref-1")
	callback.Set("vnp_ResponseCode", "24") // customer cancelled
	callback.Set("vnp_SecureHash", svc.sign(callback))

	result, err := svc.VerifyCallback(callback)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "24", result.ResponseCode)
}

func TestVerifyCallbackRejectsTampering(t *testing.T) {
	svc := testPaymentService()

	callback := url.Values{}
	callback.Set("vnp_TxnRef", "ref-1")
	callback.Set("vnp_Amount", "9999")
	callback.Set("vnp_ResponseCode", "00")
	callback.Set("vnp_SecureHash", svc.sign(callback))

	// Flip the amount after signing.
	callback.Set("vnp_Amount", "1")
	_, err := svc.VerifyCallback(callback)
	require.Error(t, err)

	// Missing hash entirely.
	callback.Del("vnp_SecureHash")
	_, err = svc.VerifyCallback(callback)
	require.Error(t, err)
}
