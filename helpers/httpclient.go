package helpers

import (
	"net"
	"net/http"
	"time"

	"github.com/routepool/routepool/models"
)

const (
	defaultDialTimeout         = 30 * time.Second
	defaultIdleConnTimeout     = 5 * time.Second
	defaultMaxIdleConnsPerHost = 200
)

// CreateHTTPClient builds the shared outbound client used for probes,
// metric scrapes and provisioner calls. TLS is only configured when both a
// cert and a key are present.
func CreateHTTPClient(tlsCerts *models.TLSCerts, timeout time.Duration) (*http.Client, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: defaultDialTimeout,
		}).DialContext,
		IdleConnTimeout:     defaultIdleConnTimeout,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
	}

	tlsConfig, err := tlsCerts.CreateClientConfig()
	if err != nil {
		return nil, err
	}
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}
