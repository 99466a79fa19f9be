package signing

import (
	"context"
	"net/http"

	"github.com/kelsos/atom-tasks/internal/client"
	apperrors "github.com/kelsos/atom-tasks/internal/errors"
	"github.com/kelsos/atom-tasks/internal/logger"
	"github.com/kelsos/atom-tasks/internal/models"
)

// Plain exposes the verbs that are never signed
type Plain interface {
	Get(ctx context.Context, endpoint string, params map[string]string, headers http.Header, result interface{}) error
	Delete(ctx context.Context, endpoint string, headers http.Header, result interface{}) error
}

// Client signs POST/PUT/PATCH bodies before handing them to the gateway
type Client struct {
	gateway client.Gateway
	signer  *Signer
}

// NewClient creates a signing client on top of gateway
func NewClient(gateway client.Gateway, signer *Signer) *Client {
	return &Client{gateway: gateway, signer: signer}
}

// HTTP returns the unsigned GET/DELETE accessor
func (c *Client) HTTP() Plain {
	return c.gateway
}

// PostSigned signs data and POSTs the envelope
func (c *Client) PostSigned(ctx context.Context, endpoint string, data interface{}, headers http.Header, result interface{}) error {
	envelope, err := c.envelope(endpoint, data)
	if err != nil {
		return err
	}
	return c.gateway.Post(ctx, endpoint, envelope, headers, result)
}

// PutSigned signs data and PUTs the envelope
func (c *Client) PutSigned(ctx context.Context, endpoint string, data interface{}, headers http.Header, result interface{}) error {
	envelope, err := c.envelope(endpoint, data)
	if err != nil {
		return err
	}
	return c.gateway.Put(ctx, endpoint, envelope, headers, result)
}

// PatchSigned signs data and PATCHes the envelope
func (c *Client) PatchSigned(ctx context.Context, endpoint string, data interface{}, headers http.Header, result interface{}) error {
	envelope, err := c.envelope(endpoint, data)
	if err != nil {
		return err
	}
	return c.gateway.Patch(ctx, endpoint, envelope, headers, result)
}

// envelope reports signing failures through the regular error return so
// callers see one error channel for every failure.
func (c *Client) envelope(endpoint string, data interface{}) (*models.SignedEnvelope, error) {
	token, err := c.signer.Sign(data)
	if err != nil {
		logger.Error("Failed to sign request body for %s: %v", endpoint, err)
		return nil, apperrors.NewOperationError("sign "+endpoint, apperrors.KindSigning, "could not sign request", err)
	}
	return &models.SignedEnvelope{SignedToken: token}, nil
}
