package http

import (
	"net"
	"net/http"
	"time"
)

const (
	defaultUserAgent        = "ba-assistant"
	defaultMaxResponseBytes = 8 << 20
)

type TransportFunc func(http.RoundTripper) http.RoundTripper

type httpConfig struct {
	connClientTimeout     time.Duration
	requestTimeout        time.Duration
	clientKeepAlive       time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
	userAgent             string
	maxResponseBytes      int64
	transports            []TransportFunc
}

func defaultHTTPConfig() *httpConfig {
	return &httpConfig{
		connClientTimeout:     30 * time.Second,
		requestTimeout:        120 * time.Second,
		clientKeepAlive:       90 * time.Second,
		responseHeaderTimeout: 110 * time.Second,
		idleConnTimeout:       90 * time.Second,
		userAgent:             defaultUserAgent,
		maxResponseBytes:      defaultMaxResponseBytes,
	}
}

func buildConfig(opts ...HttpOpts) *httpConfig {
	cfg := defaultHTTPConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// newClient builds the client; custom transports wrap the base one in the
// order they were given, so the last option is outermost.
func newClient(cfg *httpConfig) *http.Client {
	dialer := net.Dialer{
		Timeout:   cfg.connClientTimeout,
		KeepAlive: cfg.clientKeepAlive,
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.responseHeaderTimeout,
		IdleConnTimeout:       cfg.idleConnTimeout,
	}
	for _, wrap := range cfg.transports {
		transport = wrap(transport)
	}

	return &http.Client{
		Timeout:   cfg.requestTimeout,
		Transport: transport,
	}
}
