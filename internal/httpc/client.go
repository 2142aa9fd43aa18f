// Package httpc provides HTTP clients with sensible defaults.
// Use this instead of http.DefaultClient to ensure timeouts are set.
package httpc

import (
	"net"
	"net/http"
	"time"
)

// Default timeouts for HTTP operations.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultConnectTimeout  = 10 * time.Second
	DefaultKeepAlive       = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
)

// Client is a shared HTTP client for downloads (Telegram files and the like).
var Client = NewClient(DefaultTimeout)

// NewTransport returns the transport shared by every client built here.
// The connect timeout never exceeds the overall timeout.
func NewTransport(timeout time.Duration) *http.Transport {
	connect := DefaultConnectTimeout
	if timeout > 0 && timeout < connect {
		connect = timeout
	}
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connect,
			KeepAlive: DefaultKeepAlive,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		TLSHandshakeTimeout:   connect,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// NewClient creates a new HTTP client whose Timeout bounds the whole
// exchange: dial, request write, and reading the response body.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(timeout),
	}
}
