package pruner

import (
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"

	"github.com/routepool/routepool/db"
)

// DecisionDBPruner deletes scaling decisions older than the retention
// cutoff from the audit database on a fixed interval.
type DecisionDBPruner struct {
	logger     lager.Logger
	decisionDB db.DecisionDB
	interval   time.Duration
	cutoffDays int
	clock      clock.Clock
	doneChan   chan bool
}

func NewDecisionDBPruner(logger lager.Logger, decisionDB db.DecisionDB, interval time.Duration, cutoffDays int, clk clock.Clock) *DecisionDBPruner {
	return &DecisionDBPruner{
		logger:     logger.Session("decision-db-pruner"),
		decisionDB: decisionDB,
		interval:   interval,
		cutoffDays: cutoffDays,
		clock:      clk,
		doneChan:   make(chan bool),
	}
}

func (p *DecisionDBPruner) Start() {
	go p.startPrune()
	p.logger.Info("started", lager.Data{"interval": p.interval.String()})
}

func (p *DecisionDBPruner) Stop() {
	close(p.doneChan)
	p.logger.Info("stopped")
}

func (p *DecisionDBPruner) startPrune() {
	ticker := p.clock.NewTicker(p.interval)
	for {
		p.PruneOldDecisions()
		select {
		case <-p.doneChan:
			ticker.Stop()
			return
		case <-ticker.C():
		}
	}
}

func (p *DecisionDBPruner) PruneOldDecisions() {
	cutoff := p.clock.Now().AddDate(0, 0, -p.cutoffDays).UnixNano()
	p.logger.Debug("pruning-decisions", lager.Data{"cutoffDays": p.cutoffDays})

	err := p.decisionDB.PruneDecisions(cutoff)
	if err != nil {
		p.logger.Error("prune-decisiondb", err)
	}
}
