package scalingengine

import (
	"sync/atomic"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
)

// Controller drives the scaling engine on a fixed tick interval,
// independent of the health-probe interval. Exactly one evaluation pass
// runs at a time: a tick that fires while the previous pass is still
// executing is skipped, not queued.
type Controller struct {
	logger   lager.Logger
	clock    clock.Clock
	interval time.Duration
	engine   *ScalingEngine
	doneChan chan bool
	busy     int32
}

func NewController(logger lager.Logger, clk clock.Clock, interval time.Duration, engine *ScalingEngine) *Controller {
	return &Controller{
		logger:   logger.Session("controller"),
		clock:    clk,
		interval: interval,
		engine:   engine,
		doneChan: make(chan bool),
	}
}

func (c *Controller) Start() {
	go c.run()
	c.logger.Info("started")
}

func (c *Controller) Stop() {
	close(c.doneChan)
	c.logger.Info("stopped")
}

func (c *Controller) run() {
	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.doneChan:
			return
		case <-ticker.C():
			if !atomic.CompareAndSwapInt32(&c.busy, 0, 1) {
				c.logger.Info("tick-skipped-previous-still-running")
				continue
			}
			go func() {
				defer atomic.StoreInt32(&c.busy, 0)
				for _, poolId := range c.engine.PoolIds() {
					c.engine.Evaluate(poolId)
				}
			}()
		}
	}
}
