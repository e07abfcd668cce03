package provisioner_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3/lagertest"
	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/routepool/routepool/models"
	"github.com/routepool/routepool/provisioner"
)

type recordingHandler struct {
	lock     sync.Mutex
	added    []models.BackendEndpoint
	draining []string
}

func (h *recordingHandler) AddEndpoint(poolId string, endpoint models.BackendEndpoint) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.added = append(h.added, endpoint)
	return nil
}

func (h *recordingHandler) MarkDraining(poolId string, endpointId string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.draining = append(h.draining, endpointId)
}

func (h *recordingHandler) addedIds() []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	ids := []string{}
	for _, endpoint := range h.added {
		ids = append(ids, endpoint.Id)
	}
	return ids
}

func (h *recordingHandler) drainingIds() []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	return append([]string{}, h.draining...)
}

var _ = Describe("EventNozzle", func() {
	var (
		upgrader websocket.Upgrader
		server   *httptest.Server
		conns    chan *websocket.Conn
		handler  *recordingHandler
		nozzle   *provisioner.EventNozzle
	)

	BeforeEach(func() {
		conns = make(chan *websocket.Conn, 4)
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			conns <- conn
		}))
		handler = &recordingHandler{}
		wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
		nozzle = provisioner.NewEventNozzle(lagertest.NewTestLogger("nozzle"), clock.NewClock(),
			wsURL, nil, time.Second, handler)
		nozzle.Start()
	})

	AfterEach(func() {
		nozzle.Stop()
		server.Close()
	})

	It("applies instance_ready events to the handler", func() {
		var conn *websocket.Conn
		Eventually(conns).Should(Receive(&conn))

		Expect(conn.WriteJSON(provisioner.Event{
			Type:   provisioner.EventInstanceReady,
			PoolId: "web",
			Endpoint: &models.BackendEndpoint{
				Id: "a", Address: "10.0.0.1", Port: 8080,
			},
		})).To(Succeed())

		Eventually(handler.addedIds).Should(Equal([]string{"a"}))
	})

	It("marks instances draining on removal events", func() {
		var conn *websocket.Conn
		Eventually(conns).Should(Receive(&conn))

		Expect(conn.WriteJSON(provisioner.Event{
			Type: provisioner.EventInstanceRemoved, PoolId: "web", EndpointId: "a",
		})).To(Succeed())
		Expect(conn.WriteJSON(provisioner.Event{
			Type: provisioner.EventInstanceDraining, PoolId: "web", EndpointId: "b",
		})).To(Succeed())

		Eventually(handler.drainingIds).Should(Equal([]string{"a", "b"}))
	})

	It("ignores events of an unknown type", func() {
		var conn *websocket.Conn
		Eventually(conns).Should(Receive(&conn))

		Expect(conn.WriteJSON(provisioner.Event{Type: "instance_rebooted", PoolId: "web"})).To(Succeed())
		Consistently(handler.addedIds).Should(BeEmpty())
	})

	It("reconnects after the stream drops", func() {
		var conn *websocket.Conn
		Eventually(conns).Should(Receive(&conn))
		Expect(conn.Close()).To(Succeed())

		Eventually(conns, 5*time.Second).Should(Receive(&conn))
		Expect(conn.WriteJSON(provisioner.Event{
			Type:   provisioner.EventInstanceReady,
			PoolId: "web",
			Endpoint: &models.BackendEndpoint{
				Id: "after-reconnect", Address: "10.0.0.2", Port: 8080,
			},
		})).To(Succeed())

		Eventually(handler.addedIds).Should(ContainElement("after-reconnect"))
	})
})
