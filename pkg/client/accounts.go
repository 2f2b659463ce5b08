package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "buslane/pkg/errors"
)

// AccountsClient talks to the external accounts service. Identity and
// ownership live there; this side only asks "which carrier owns this
// vehicle" and treats refusals as opaque.
type AccountsClient struct {
	http *HTTPClient
}

type carrierResponse struct {
	CarrierID string `json:"carrier_id"`
}

func NewAccountsClient(baseURL string, timeout time.Duration) *AccountsClient {
	return &AccountsClient{
		http: NewHTTPClient(baseURL, timeout),
	}
}

// ResolveCarrier returns the carrier account id for an authenticated
// request token. Authorization failures propagate unchanged as Forbidden.
func (c *AccountsClient) ResolveCarrier(ctx context.Context, token string) (string, error) {
	resp, err := c.http.Get(ctx, "/api/v1/accounts/carrier?token="+token)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeUnavailable, "accounts service unreachable", http.StatusServiceUnavailable)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var body carrierResponse
		if err := DecodeJSON(resp, &body); err != nil {
			return "", apperrors.Internal("failed to decode accounts response", err)
		}
		return body.CarrierID, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		_ = resp.Body.Close()
		return "", apperrors.Forbidden("Access denied")
	default:
		_ = resp.Body.Close()
		return "", apperrors.Internal(fmt.Sprintf("accounts service returned %d", resp.StatusCode), nil)
	}
}
