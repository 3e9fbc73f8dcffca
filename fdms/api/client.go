package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/openfiscal/go-fdms-bridge/fdms/model"
	"github.com/openfiscal/go-fdms-bridge/fdms/util"
)

// Client is the authenticated channel to the fiscal device endpoint. When a
// client certificate is configured the exchange is mutually authenticated;
// without one results must not be treated as remotely trust-bearing.
type Client struct {
	rest               *resty.Client
	deviceModelName    string
	deviceModelVersion string
	mutualTLS          bool
}

type Option func(*Client)

// WithCertificate enables mutual TLS with the device client certificate.
func WithCertificate(cert tls.Certificate) Option {
	return func(c *Client) {
		c.rest.SetCertificates(cert)
		c.mutualTLS = true
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.rest.SetTimeout(d)
	}
}

func New(baseURL, deviceModelName, deviceModelVersion string, opts ...Option) *Client {
	restyClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)

	c := &Client{
		rest:               restyClient,
		deviceModelName:    deviceModelName,
		deviceModelVersion: deviceModelVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) DeviceModelName() string    { return c.deviceModelName }
func (c *Client) DeviceModelVersion() string { return c.deviceModelVersion }

// MutualTLS reports whether a client certificate is configured.
func (c *Client) MutualTLS() bool { return c.mutualTLS }

// SubmitReceipt posts one receipt to /Device/v1/{deviceId}/SubmitReceipt and
// decodes the acceptance body. Any non-2xx status or connection failure comes
// back as a *RequestError.
func (c *Client) SubmitReceipt(ctx context.Context, deviceID int, body *model.SubmitReceiptRequest) (*model.SubmitReceiptResponse, error) {
	result := &model.SubmitReceiptResponse{}

	r := c.rest.R()
	if util.HttpTraceEnabled() {
		r.EnableTrace()
	}

	resp, err := r.
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("DeviceModelName", c.deviceModelName).
		SetHeader("DeviceModelVersion", c.deviceModelVersion).
		SetBody(body).
		SetResult(result).
		Post(fmt.Sprintf("/Device/v1/%d/SubmitReceipt", deviceID))

	if err != nil {
		return nil, &RequestError{StatusCode: 0, Err: err}
	}
	if resp.IsError() {
		respBody := resp.String()
		var errorMap map[string]any
		if respBody != "" {
			_ = json.Unmarshal([]byte(respBody), &errorMap)
		}
		return nil, &RequestError{
			StatusCode:   resp.StatusCode(),
			Body:         respBody,
			ErrorDetails: errorMap,
		}
	}

	return result, nil
}
