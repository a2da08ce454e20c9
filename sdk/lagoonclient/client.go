package lagoonclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

type client struct {
	httpClient *http.Client
	config     Config
}

// NewHTTPClient returns a new HTTP Client
func NewHTTPClient(timeout time.Duration, insecureSkipVerifyTLS bool) *http.Client {
	transport := http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: insecureSkipVerifyTLS}, // nolint
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: &transport,
	}
}

// New returns a client from a config struct
func New(c Config) Interface {
	cli := new(client)
	cli.config = c.withDefaults()
	cli.httpClient = NewHTTPClient(cli.config.Timeout, cli.config.InsecureSkipVerifyTLS)
	return cli
}

// NewWithHTTPClient returns a client using the given http client.
func NewWithHTTPClient(c Config, h *http.Client) Interface {
	cli := new(client)
	cli.config = c.withDefaults()
	cli.httpClient = h
	return cli
}

func (c *client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *client) Config() Config {
	return c.config
}
