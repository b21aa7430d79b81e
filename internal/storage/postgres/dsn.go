package postgres

import (
	"fmt"

	"github.com/y4d-ngo/beneficiary-portal/config"
)

// DSN returns cfg.DSN when set, otherwise builds a key/value connection string from the parts.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name,
	)
}
