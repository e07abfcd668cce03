package router

import (
	"net/http"

	"code.cloudfoundry.org/lager/v3"
	"github.com/tedsuo/ifrit"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/routepool/routepool/healthendpoint"
	"github.com/routepool/routepool/helpers"
	"github.com/routepool/routepool/ratelimiter"
)

// NewServer assembles the inbound traffic listener: the proxy handler
// wrapped in rate limiting and request accounting, serving HTTP/1.1 and
// cleartext HTTP/2 on a single port.
func NewServer(logger lager.Logger, conf helpers.ServerConfig, proxy *ProxyHandler, limiter ratelimiter.Limiter, httpStatusCollector healthendpoint.HTTPStatusCollector) (ifrit.Runner, error) {
	var handler http.Handler = proxy

	if limiter != nil {
		mw := ratelimiter.NewRateLimiterMiddleware(ClientKey, limiter, logger.Session("rate-limiter"))
		handler = mw.CheckRateLimit(handler)
	}

	statusMiddleware := healthendpoint.NewHTTPStatusCollectMiddleware(httpStatusCollector)
	handler = statusMiddleware.Collect(handler)

	handler = h2c.NewHandler(handler, &http2.Server{})

	return helpers.NewHTTPServer(logger, conf, handler)
}
