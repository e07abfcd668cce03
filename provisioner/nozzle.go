package provisioner

import (
	"crypto/tls"
	"net/http"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	backoff "github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/routepool/routepool/models"
)

const (
	EventInstanceReady    = "instance_ready"
	EventInstanceRemoved  = "instance_removed"
	EventInstanceDraining = "instance_draining"
)

// Event is one asynchronous pool-membership notification from the
// provisioner's event stream.
type Event struct {
	Type       string                  `json:"type"`
	PoolId     string                  `json:"pool_id"`
	Endpoint   *models.BackendEndpoint `json:"endpoint,omitempty"`
	EndpointId string                  `json:"endpoint_id,omitempty"`
}

// PoolEventHandler consumes membership events; the registry implements it.
type PoolEventHandler interface {
	AddEndpoint(poolId string, endpoint models.BackendEndpoint) error
	MarkDraining(poolId string, endpointId string)
}

// EventNozzle subscribes to the provisioner's websocket event stream and
// applies each event to the registry. The connection is re-established with
// exponential backoff after any read or dial failure.
type EventNozzle struct {
	logger           lager.Logger
	clock            clock.Clock
	eventsURL        string
	handshakeTimeout time.Duration
	dialer           websocket.Dialer
	handler          PoolEventHandler

	lock     sync.Mutex
	wsConn   *websocket.Conn
	doneChan chan bool
	stopped  bool
}

func NewEventNozzle(logger lager.Logger, clk clock.Clock, eventsURL string, tlsConfig *tls.Config, handshakeTimeout time.Duration, handler PoolEventHandler) *EventNozzle {
	return &EventNozzle{
		logger:           logger.Session("event-nozzle"),
		clock:            clk,
		eventsURL:        eventsURL,
		handshakeTimeout: handshakeTimeout,
		dialer: websocket.Dialer{
			TLSClientConfig:  tlsConfig,
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		handler:  handler,
		doneChan: make(chan bool),
	}
}

func (n *EventNozzle) Start() {
	go n.streamEvents()
	n.logger.Info("started")
}

func (n *EventNozzle) Stop() {
	n.lock.Lock()
	n.stopped = true
	if n.wsConn != nil {
		_ = n.wsConn.Close()
	}
	n.lock.Unlock()
	close(n.doneChan)
	n.logger.Info("stopped")
}

func (n *EventNozzle) streamEvents() {
	retry := backoff.NewExponentialBackOff()
	retry.MaxElapsedTime = 0

	for {
		select {
		case <-n.doneChan:
			return
		default:
		}

		conn, _, err := n.dialer.Dial(n.eventsURL, nil)
		if err != nil {
			wait := retry.NextBackOff()
			n.logger.Error("failed-to-connect-event-stream", err, lager.Data{"url": n.eventsURL, "retryIn": wait.String()})
			select {
			case <-n.doneChan:
				return
			case <-n.clock.NewTimer(wait).C():
			}
			continue
		}
		retry.Reset()

		n.lock.Lock()
		if n.stopped {
			n.lock.Unlock()
			_ = conn.Close()
			return
		}
		n.wsConn = conn
		n.lock.Unlock()
		n.logger.Info("event-stream-connected", lager.Data{"url": n.eventsURL})

		n.readLoop(conn)
	}
}

func (n *EventNozzle) readLoop(conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()
	for {
		var event Event
		if err := conn.ReadJSON(&event); err != nil {
			select {
			case <-n.doneChan:
			default:
				n.logger.Error("event-stream-read-failed", err)
			}
			return
		}
		n.apply(event)
	}
}

func (n *EventNozzle) apply(event Event) {
	switch event.Type {
	case EventInstanceReady:
		if event.Endpoint == nil {
			n.logger.Error("event-missing-endpoint", nil, lager.Data{"event": event})
			return
		}
		if err := n.handler.AddEndpoint(event.PoolId, *event.Endpoint); err != nil {
			n.logger.Error("failed-to-add-endpoint", err, lager.Data{"event": event})
		}
	case EventInstanceRemoved, EventInstanceDraining:
		n.handler.MarkDraining(event.PoolId, event.EndpointId)
	default:
		n.logger.Info("unknown-event-type", lager.Data{"type": event.Type})
	}
}
