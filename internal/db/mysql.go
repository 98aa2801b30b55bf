package db

import (
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmehdipour/content-gateway/internal/config"
	"github.com/jmoiron/sqlx"
)

// NewMySQLConnection opens the jokes/contents store pool.
// The DSN should carry parseTime=true; migrate also needs multiStatements=true.
func NewMySQLConnection(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	return openPool("mysql", cfg, 5*time.Second)
}
