package router

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/lager/v3"

	"github.com/routepool/routepool/models"
)

// hop-by-hop headers are stripped before forwarding either direction.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// ProxyHandler is the inbound traffic surface: it answers the reserved
// health path locally and proxies everything else to a backend chosen by
// the router, retrying transport failures against other candidates.
type ProxyHandler struct {
	logger         lager.Logger
	router         *Router
	transport      http.RoundTripper
	healthPath     string
	attemptTimeout time.Duration
}

func NewProxyHandler(logger lager.Logger, router *Router, transport http.RoundTripper, healthPath string, attemptTimeout time.Duration) *ProxyHandler {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &ProxyHandler{
		logger:         logger.Session("proxy"),
		router:         router,
		transport:      transport,
		healthPath:     healthPath,
		attemptTimeout: attemptTimeout,
	}
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == h.healthPath {
		// answered locally, independent of backend state
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	_ = r.Body.Close()

	clientKey := ClientKey(r)
	exclude := map[string]bool{}
	maxAttempts := h.router.MaxRetries() + 1

	for attempt := 0; attempt < maxAttempts; attempt++ {
		endpoint, err := h.router.Select(clientKey, exclude)
		if err != nil {
			if attempt == 0 && errors.Is(err, models.ErrNoHealthyBackend) {
				h.logger.Error("no-healthy-backend", err)
				writeProxyError(w, http.StatusServiceUnavailable, "no healthy backend available")
				return
			}
			break
		}

		resp, err := h.forward(r, endpoint, body)
		if err != nil {
			// transport failure: exclude this endpoint for the rest of the
			// request and try the next candidate
			h.logger.Info("attempt-failed", lager.Data{
				"endpointId": endpoint.Id,
				"attempt":    attempt,
				"error":      err.Error(),
			})
			exclude[endpoint.Id] = true
			continue
		}

		h.writeResponse(w, resp)
		return
	}

	writeProxyError(w, http.StatusBadGateway, "upstream unavailable")
}

func (h *ProxyHandler) forward(r *http.Request, endpoint *models.BackendEndpoint, body []byte) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.attemptTimeout)
	defer cancel()

	target := *r.URL
	target.Scheme = "http"
	target.Host = net.JoinHostPort(endpoint.Address, strconv.Itoa(endpoint.Port))

	outbound, err := http.NewRequestWithContext(ctx, r.Method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	outbound.Header = r.Header.Clone()
	for _, header := range hopHeaders {
		outbound.Header.Del(header)
	}
	if clientIP, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		prior := outbound.Header.Get("X-Forwarded-For")
		if prior != "" {
			clientIP = prior + ", " + clientIP
		}
		outbound.Header.Set("X-Forwarded-For", clientIP)
	}

	h.router.RequestStarted(endpoint.Id)
	resp, err := h.transport.RoundTrip(outbound)
	if err != nil {
		h.router.RequestFinished(endpoint.Id, true)
		return nil, err
	}
	h.router.RequestFinished(endpoint.Id, false)
	return resp, nil
}

func (h *ProxyHandler) writeResponse(w http.ResponseWriter, resp *http.Response) {
	defer func() { _ = resp.Body.Close() }()

	header := w.Header()
	for key, values := range resp.Header {
		if isHopHeader(key) {
			continue
		}
		for _, value := range values {
			header.Add(key, value)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Error("failed-copy-response-body", err)
	}
}

// ClientKey derives the affinity/rate-limit key for a request: the first
// X-Forwarded-For hop when present, otherwise the remote address host.
func ClientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeProxyError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}

func isHopHeader(key string) bool {
	for _, header := range hopHeaders {
		if http.CanonicalHeaderKey(key) == header {
			return true
		}
	}
	return false
}
