package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "payment")

// Gateway is the boundary to the external payment provider. The order
// service only depends on this interface.
type Gateway interface {
	Charge(req ChargeRequest) (ChargeResult, error)
	Refund(chargeRef string) error
}

type ChargeRequest struct {
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	PaymentToken string  `json:"payment_token"`
	Description  string  `json:"description,omitempty"`
}

type ChargeResult struct {
	ChargeRef string `json:"charge_ref"`
	Status    string `json:"status"`
}

// DeclinedError reports a charge the provider refused, as opposed to a
// transport failure talking to it.
type DeclinedError struct {
	Code   string
	Reason string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("payment declined (%s): %s", e.Code, e.Reason)
}

type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type declineBody struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

func (g *HTTPGateway) Charge(req ChargeRequest) (ChargeResult, error) {
	var result ChargeResult

	body, err := json.Marshal(req)
	if err != nil {
		return result, errors.Wrap(err, "marshal charge request")
	}

	httpReq, err := http.NewRequest(http.MethodPost, g.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return result, errors.Wrap(err, "build charge request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	// provider-side retries must not double-charge
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return result, errors.Wrap(err, "charge request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return result, errors.Wrap(err, "decode charge response")
		}
		return result, nil
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity:
		var decline declineBody
		if err := json.NewDecoder(resp.Body).Decode(&decline); err != nil {
			decline = declineBody{Code: "unknown", Reason: "decline body unreadable"}
		}
		log.WithField("code", decline.Code).Info("charge declined")
		return result, &DeclinedError{Code: decline.Code, Reason: decline.Reason}
	default:
		return result, errors.Errorf("charge: unexpected status %d", resp.StatusCode)
	}
}

func (g *HTTPGateway) Refund(chargeRef string) error {
	url := fmt.Sprintf("%s/v1/charges/%s/refund", g.baseURL, chargeRef)
	httpReq, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return errors.Wrap(err, "build refund request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, "refund request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("refund: unexpected status %d", resp.StatusCode)
	}
	return nil
}
