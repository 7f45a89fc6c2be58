package egress

import (
	"net"
	"net/http"
	"time"
)

// TransportConfig holds connection settings shared by every egress transport.
type TransportConfig struct {
	DialTimeout         time.Duration
	TLSHandshakeTimeout time.Duration
	IdleConnTimeout     time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

// DefaultTransportConfig returns conservative connection settings.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		DialTimeout:         10 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
	}
}

// NewTransport builds an HTTP transport bound to the selected egress path.
// Direct selections get a transport that ignores proxy environment variables,
// so the pool is the only source of egress routing.
func NewTransport(sel Selection, cfg TransportConfig) (*http.Transport, error) {
	if cfg.DialTimeout <= 0 {
		cfg = DefaultTransportConfig()
	}

	t := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		ForceAttemptHTTP2:   true,
	}

	if sel.Direct {
		return t, nil
	}

	proxyURL, err := sel.Descriptor.URL()
	if err != nil {
		return nil, err
	}
	t.Proxy = http.ProxyURL(proxyURL)

	return t, nil
}
