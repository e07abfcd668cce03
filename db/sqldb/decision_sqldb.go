package sqldb

import (
	"time"

	"code.cloudfoundry.org/lager/v3"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/routepool/routepool/db"
	"github.com/routepool/routepool/models"
)

type DecisionSQLDB struct {
	dbConfig db.DatabaseConfig
	logger   lager.Logger
	sqldb    *sqlx.DB
}

func NewDecisionSQLDB(dbConfig db.DatabaseConfig, logger lager.Logger) (*DecisionSQLDB, error) {
	database, err := db.GetConnection(dbConfig.URL)
	if err != nil {
		return nil, err
	}

	sqldb, err := sqlx.Open(database.DriverName, database.DataSourceName)
	if err != nil {
		logger.Error("open-decision-db", err, lager.Data{"dbConfig": dbConfig})
		return nil, err
	}

	err = sqldb.Ping()
	if err != nil {
		_ = sqldb.Close()
		logger.Error("ping-decision-db", err, lager.Data{"dbConfig": dbConfig})
		return nil, err
	}

	sqldb.SetConnMaxLifetime(dbConfig.ConnectionMaxLifetime)
	sqldb.SetMaxIdleConns(dbConfig.MaxIdleConnections)
	sqldb.SetMaxOpenConns(dbConfig.MaxOpenConnections)
	sqldb.SetConnMaxIdleTime(dbConfig.ConnectionMaxIdleTime)

	return &DecisionSQLDB{
		dbConfig: dbConfig,
		logger:   logger,
		sqldb:    sqldb,
	}, nil
}

func (sdb *DecisionSQLDB) Close() error {
	err := sdb.sqldb.Close()
	if err != nil {
		sdb.logger.Error("close-decision-db", err, lager.Data{"dbConfig": sdb.dbConfig})
		return err
	}
	return nil
}

func (sdb *DecisionSQLDB) SaveDecision(decision *models.ScalingDecision) error {
	query := sdb.sqldb.Rebind("INSERT INTO scalingdecision" +
		"(id, poolid, timestamp, action, oldsize, targetsize, reason, status, error) " +
		" VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)")
	_, err := sdb.sqldb.Exec(query, decision.Id, decision.PoolId, decision.Timestamp, decision.Action,
		decision.OldSize, decision.TargetSize, decision.Reason, decision.Status, decision.Error)

	if err != nil {
		sdb.logger.Error("save-decision", err, lager.Data{"query": query, "decision": decision})
	}
	return err
}

func (sdb *DecisionSQLDB) RetrieveDecisions(poolId string, start int64, end int64, orderType db.OrderType) ([]*models.ScalingDecision, error) {
	orderStr := db.ASCSTR
	if orderType == db.DESC {
		orderStr = db.DESCSTR
	}
	if end < 0 {
		end = time.Now().UnixNano()
	}

	query := sdb.sqldb.Rebind("SELECT id, poolid, timestamp, action, oldsize, targetsize, reason, status, error FROM scalingdecision WHERE" +
		" poolid = ?" +
		" AND timestamp >= ?" +
		" AND timestamp <= ?" +
		" ORDER BY timestamp " + orderStr)

	rows, err := sdb.sqldb.Query(query, poolId, start, end)
	if err != nil {
		sdb.logger.Error("retrieve-decisions", err, lager.Data{"query": query, "poolId": poolId})
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	decisions := []*models.ScalingDecision{}
	for rows.Next() {
		decision := &models.ScalingDecision{}
		err = rows.Scan(&decision.Id, &decision.PoolId, &decision.Timestamp, &decision.Action,
			&decision.OldSize, &decision.TargetSize, &decision.Reason, &decision.Status, &decision.Error)
		if err != nil {
			sdb.logger.Error("scan-decision", err)
			return nil, err
		}
		decisions = append(decisions, decision)
	}
	return decisions, rows.Err()
}

func (sdb *DecisionSQLDB) PruneDecisions(before int64) error {
	query := sdb.sqldb.Rebind("DELETE FROM scalingdecision WHERE timestamp <= ?")
	_, err := sdb.sqldb.Exec(query, before)
	if err != nil {
		sdb.logger.Error("prune-decisions", err, lager.Data{"query": query, "before": before})
	}
	return err
}

func (sdb *DecisionSQLDB) Ping() error {
	return sdb.sqldb.Ping()
}
