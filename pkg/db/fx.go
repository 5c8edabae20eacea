package db

import (
	"github.com/carlosvidal/aquabill/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module wires the gorm database handle for the application.
var Module = fx.Module("db",
	fx.Provide(NewDB),
)

func NewDB(cfg config.Config) (*gorm.DB, error) {
	return Open(Config{
		Type:            cfg.DBType,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		SSLMode:         cfg.DBSSLMode,
		MaxIdleConn:     cfg.DBMaxIdleConn,
		MaxOpenConn:     cfg.DBMaxOpenConn,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
}
