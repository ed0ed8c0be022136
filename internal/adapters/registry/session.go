package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"go.trai.ch/parcel/internal/core/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a session token.
// Rejected credentials fail with ErrLoginFailed.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	payload, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, domain.Fail(domain.ErrLoginFailed, "failed to encode credentials", "cause", err.Error())
	}

	endpoint := c.endpoint("sessions")
	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, err
	})
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized, http.StatusForbidden:
		msg := serverMessage(resp)
		return nil, domain.Fail(domain.ErrLoginFailed, "registry rejected the credentials", "email", email, "message", msg)
	default:
		return nil, statusError(resp, "failed to log in", "email", email)
	}

	var body loginResponse
	if err := decodeJSON(resp, &body); err != nil {
		return nil, err
	}
	if body.Token == "" {
		return nil, domain.Fail(domain.ErrRegistryParseFailed, "registry returned an empty token")
	}
	return domain.NewSession(email, body.Token, c.baseURL), nil
}
