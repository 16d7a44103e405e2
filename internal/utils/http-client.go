package utils

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"
)

// reservedHeaders are set per request by the transfer code; a user value
// would break range handling or the identity encoding.
var reservedHeaders = map[string]struct{}{
	"Range":           {},
	"Accept-Encoding": {},
}

type HTTPClientConfig struct {
	Timeout        time.Duration
	KATimeout      time.Duration
	ProxyURL       string
	ProxyUsername  string
	ProxyPassword  string
	Headers        map[string]string
	HighThreadMode bool // advanced socket options for high concurrency
}

// Client is safe for concurrent use; its configuration is fixed at construction.
type Client struct {
	client  *http.Client
	headers map[string]string
}

// NewHTTPClient builds the shared client. Timeout bounds the dial, the TLS
// handshake and the wait for response headers; a body that keeps flowing is
// never cut off.
func NewHTTPClient(cfg HTTPClientConfig) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Minute
	}
	if cfg.KATimeout == 0 {
		cfg.KATimeout = 90 * time.Second
	}
	for k := range cfg.Headers {
		if _, reserved := reservedHeaders[http.CanonicalHeaderKey(k)]; reserved {
			return nil, fmt.Errorf("header %q is managed by paraget and cannot be set", k)
		}
	}
	dialer := &net.Dialer{
		Timeout:   cfg.Timeout,
		KeepAlive: 30 * time.Second,
	}
	if cfg.HighThreadMode {
		dialer.Control = func(network, address string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) {
				sockErr = setSocketOptions(fd)
			}); err != nil {
				return err
			}
			return sockErr
		}
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.Timeout,
		ResponseHeaderTimeout: cfg.Timeout,
		IdleConnTimeout:       cfg.KATimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		DisableCompression:    true, // byte ranges must address the identity encoding
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		if cfg.ProxyUsername != "" {
			if cfg.ProxyPassword != "" {
				proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
			} else {
				proxyURL.User = url.User(cfg.ProxyUsername)
			}
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &Client{
		client:  &http.Client{Transport: transport},
		headers: headers,
	}, nil
}

// Do applies the configured extra headers without overriding ones already on
// the request, so Range and User-Agent set by callers win.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	for k, v := range c.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return c.client.Do(req)
}
