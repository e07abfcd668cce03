package db

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/routepool/routepool/models"
)

const (
	PostgresDriverName = "postgres"
	MysqlDriverName    = "mysql"
)

type OrderType uint8

const (
	DESC OrderType = iota
	ASC
)

const (
	DESCSTR string = "DESC"
	ASCSTR  string = "ASC"
)

type DatabaseConfig struct {
	URL                   string        `yaml:"url" json:"url"`
	MaxOpenConnections    int           `yaml:"max_open_connections" json:"max_open_connections"`
	MaxIdleConnections    int           `yaml:"max_idle_connections" json:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `yaml:"connection_max_lifetime" json:"connection_max_lifetime"`
	ConnectionMaxIdleTime time.Duration `yaml:"connection_max_idletime" json:"connection_max_idletime"`
}

type Database struct {
	DriverName     string
	DataSourceName string
}

// GetConnection derives driver and DSN from a database URL. Postgres URLs
// pass through unchanged; mysql URLs use the driver's DSN form
// (user:pass@tcp(host:port)/db).
func GetConnection(dbURL string) (*Database, error) {
	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		return &Database{DriverName: PostgresDriverName, DataSourceName: dbURL}, nil
	case strings.Contains(dbURL, "@tcp("):
		return &Database{DriverName: MysqlDriverName, DataSourceName: dbURL}, nil
	default:
		return nil, fmt.Errorf("unsupported database url: %s", dbURL)
	}
}

// DecisionDB persists the scaling-decision audit history.
type DecisionDB interface {
	SaveDecision(decision *models.ScalingDecision) error
	RetrieveDecisions(poolId string, start int64, end int64, orderType OrderType) ([]*models.ScalingDecision, error)
	PruneDecisions(before int64) error
	Ping() error
	io.Closer
}
