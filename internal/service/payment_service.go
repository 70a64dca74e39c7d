package service

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// PaymentConfig carries the gateway merchant credentials and endpoints.
type PaymentConfig struct {
	MerchantCode string
	SecretKey    string
	GatewayURL   string
	ReturnURL    string
}

// PaymentService builds signed payment-gateway URLs and verifies callback
// signatures. The scheme: parameters sorted by key, URL-encoded into a
// canonical query, HMAC-SHA512 with the merchant secret, hash appended as
// vnp_SecureHash.
type PaymentService struct {
	cfg PaymentConfig
	now func() time.Time
}

func NewPaymentService(cfg PaymentConfig) *PaymentService {
	return &PaymentService{cfg: cfg, now: time.Now}
}

func (s *PaymentService) sign(params url.Values) string {
	// url.Values.Encode sorts by key, giving the canonical signing string.
	mac := hmac.New(sha512.New, []byte(s.cfg.SecretKey))
	mac.Write([]byte(params.Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreatePaymentURL returns the redirect URL for a payment of amount (major
// currency units) from clientIP. The gateway expects the amount multiplied
// by 100.
func (s *PaymentService) CreatePaymentURL(amount float64, clientIP string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("payment amount must be positive")
	}

	stamp := s.now().Format("20060102150405")
	params := url.Values{}
	params.Set("vnp_Version", "2.1.0")
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", s.cfg.MerchantCode)
	params.Set("vnp_Locale", "vn")
	params.Set("vnp_CurrCode", "VND")
	params.Set("vnp_TxnRef", stamp)
	params.Set("vnp_OrderInfo", "Thanh_toan_don_hang")
	params.Set("vnp_OrderType", "billpayment")
	params.Set("vnp_Amount", strconv.FormatInt(int64(amount*100), 10))
	params.Set("vnp_ReturnUrl", s.cfg.ReturnURL)
	params.Set("vnp_IpAddr", clientIP)
	params.Set("vnp_CreateDate", stamp)

	params.Set("vnp_SecureHash", s.sign(params))
	return s.cfg.GatewayURL + "?" + params.Encode(), nil
}

// PaymentResult is the verified outcome of a gateway callback.
type PaymentResult struct {
	Success      bool              `json:"success"`
	ResponseCode string            `json:"response_code"`
	TxnRef       string            `json:"txn_ref"`
	Params       map[string]string `json:"params"`
}

// VerifyCallback recomputes the signature over the callback parameters
// (minus the hash fields) and checks the gateway response code. A bad
// signature is an error; a non-"00" code is a failed payment, not an error.
func (s *PaymentService) VerifyCallback(query url.Values) (*PaymentResult, error) {
	received := query.Get("vnp_SecureHash")
	if received == "" {
		return nil, fmt.Errorf("callback is missing vnp_SecureHash")
	}

	signed := url.Values{}
	for key, values := range query {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		for _, v := range values {
			signed.Add(key, v)
		}
	}

	expected := s.sign(signed)
	if !hmac.Equal([]byte(expected), []byte(received)) {
		return nil, fmt.Errorf("callback signature mismatch")
	}

	params := make(map[string]string, len(signed))
	for key := range signed {
		params[key] = signed.Get(key)
	}

	code := query.Get("vnp_ResponseCode")
	return &PaymentResult{
		Success:      code == "00",
		ResponseCode: code,
		TxnRef:       query.Get("vnp_TxnRef"),
		Params:       params,
	}, nil
}
