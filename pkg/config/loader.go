package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the process environment using `env` struct tags.
// All bitecheck configuration comes in this way; there are no config files.
//
// Example:
//
//	type Config struct {
//	    KafkaBrokers     string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
//	    ReconcileInterval string `env:"RECONCILE_INTERVAL" envDefault:"10m"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
