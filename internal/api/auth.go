package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/simplydispatch/driverslog/internal/domain"
)

// ErrInvalidCredentials is returned by Login when the server answers
// with the "invalid" code. It wraps domain.ErrValidation so the caller
// surfaces it as a correct-your-input alert, not a retryable failure.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrValidation)

type authResponse struct {
	Data *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		APIKey  string `json:"apikey"`
	} `json:"data"`
}

// Login exchanges credentials for an apikey and stores it on the client
// for subsequent calls. The credentials travel as query parameters — a
// quirk of the remote contract, preserved as-is.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("password", password)

	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/", q), nil, &resp); err != nil {
		return "", fmt.Errorf("api.Client.Login: %w: %w", domain.ErrRemote, err)
	}
	if resp.Data == nil {
		return "", fmt.Errorf("api.Client.Login: %w: missing data envelope", domain.ErrRemote)
	}

	switch kindOf(resp.Data.Code) {
	case ResultSuccess:
		c.apiKey = resp.Data.APIKey
		return resp.Data.APIKey, nil
	case ResultInvalid:
		return "", fmt.Errorf("api.Client.Login: %w", ErrInvalidCredentials)
	default:
		return "", fmt.Errorf("api.Client.Login: %w: %s", domain.ErrRemote, resp.Data.Message)
	}
}

// Register creates a new driver account.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}

	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/register.php", nil), body, &resp); err != nil {
		return fmt.Errorf("api.Client.Register: %w: %w", domain.ErrRemote, err)
	}
	if resp.Data == nil {
		return fmt.Errorf("api.Client.Register: %w: missing data envelope", domain.ErrRemote)
	}
	if kindOf(resp.Data.Code) != ResultSuccess {
		return fmt.Errorf("api.Client.Register: %w: %s", domain.ErrValidation, resp.Data.Message)
	}
	return nil
}

// ValidateUser checks that the client's apikey is still accepted.
func (c *Client) ValidateUser(ctx context.Context) error {
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/validate_user.php", nil), nil, &resp); err != nil {
		return fmt.Errorf("api.Client.ValidateUser: %w: %w", domain.ErrRemote, err)
	}
	if resp.Data == nil || kindOf(resp.Data.Code) != ResultSuccess {
		return fmt.Errorf("api.Client.ValidateUser: %w: apikey rejected", domain.ErrState)
	}
	return nil
}

// UpdatePassword changes the account password for the current apikey.
func (c *Client) UpdatePassword(ctx context.Context, password string) error {
	body := map[string]string{"password": password}

	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/update_password.php", nil), body, &resp); err != nil {
		return fmt.Errorf("api.Client.UpdatePassword: %w: %w", domain.ErrRemote, err)
	}
	if resp.Data == nil {
		return fmt.Errorf("api.Client.UpdatePassword: %w: missing data envelope", domain.ErrRemote)
	}
	if kindOf(resp.Data.Code) != ResultSuccess {
		return fmt.Errorf("api.Client.UpdatePassword: %w: %s", domain.ErrValidation, resp.Data.Message)
	}
	return nil
}
