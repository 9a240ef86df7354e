package http

import "time"

// HttpOpts tune the client behind a Connector.
type HttpOpts func(*httpConfig)

func WithConnClientTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.connClientTimeout = timeout
	}
}

// WithRequestTimeout bounds the whole exchange. Drafting calls need minutes.
func WithRequestTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.requestTimeout = timeout
	}
}

func WithClientKeepAlive(keepAlive time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.clientKeepAlive = keepAlive
	}
}

func WithResponseHeaderTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.responseHeaderTimeout = timeout
	}
}

func WithIdleConnTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.idleConnTimeout = timeout
	}
}

// WithUserAgent sets the User-Agent of every request.
func WithUserAgent(ua string) HttpOpts {
	return func(c *httpConfig) {
		c.userAgent = ua
	}
}

// WithMaxResponseBytes caps how much of a response body is read. Larger
// bodies fail with ErrResponseTooLarge.
func WithMaxResponseBytes(n int64) HttpOpts {
	return func(c *httpConfig) {
		c.maxResponseBytes = n
	}
}

func WithTransport(transport TransportFunc) HttpOpts {
	return func(c *httpConfig) {
		c.transports = append(c.transports, transport)
	}
}
