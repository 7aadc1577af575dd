package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargeSuccess(t *testing.T) {
	var got ChargeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/charges", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(ChargeResult{ChargeRef: "ch_123", Status: "captured"})
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, "sk_test")
	res, err := g.Charge(ChargeRequest{Amount: 17.50, Currency: "USD", PaymentToken: "tok_abc"})

	require.NoError(t, err)
	assert.Equal(t, "ch_123", res.ChargeRef)
	assert.Equal(t, "captured", res.Status)
	assert.Equal(t, 17.50, got.Amount)
	assert.Equal(t, "tok_abc", got.PaymentToken)
}

func TestChargeDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{"code": "card_declined", "reason": "insufficient funds"})
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, "sk_test")
	_, err := g.Charge(ChargeRequest{Amount: 10, Currency: "USD", PaymentToken: "tok_bad"})

	var declined *DeclinedError
	require.ErrorAs(t, err, &declined)
	assert.Equal(t, "card_declined", declined.Code)
}

func TestChargeUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, "sk_test")
	_, err := g.Charge(ChargeRequest{Amount: 10, Currency: "USD", PaymentToken: "tok_x"})
	require.Error(t, err)

	var declined *DeclinedError
	assert.False(t, errors.As(err, &declined))
}

func TestRefund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/charges/ch_123/refund", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, "sk_test")
	assert.NoError(t, g.Refund("ch_123"))
}
