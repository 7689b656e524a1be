// Package config loads and saves the coordinator daemon's JSON
// configuration file, grounded on the teacher's
// coordinator/internal/config.go.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/opencoinjoin/coordinator/internal/pool"
)

// CoordinatorConfig is the on-disk shape of the daemon's
// configuration. Beyond the teacher's Hostname/Database, it carries
// the chain parameters spec §9 treats as injected constants.
type CoordinatorConfig struct {
	Hostname string `json:"hostname"`
	Database string `json:"database"`
	KeyFile  string `json:"key_file"`

	MinParticipants     int   `json:"min_participants"`
	MaxParticipants     int   `json:"max_participants"`
	MaxPoolTransactions int   `json:"max_pool_transactions"`
	MinProtoVersion     int32 `json:"min_proto_version"`

	QueueTimeoutSeconds   int `json:"queue_timeout_seconds"`
	SigningTimeoutSeconds int `json:"signing_timeout_seconds"`
	AdvertExpirySeconds   int `json:"advert_expiry_seconds"`
}

func getConfigFile() (string, error) {
	if path := os.Getenv("COORDINATOR_CONFIG"); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".privatesend-coordinator.json"), nil
}

// NewServerConfig returns the default config and writes it to disk.
func NewServerConfig() (CoordinatorConfig, error) {
	config := CoordinatorConfig{
		Hostname:              "localhost:9999",
		Database:              "./coordinator.sqlite",
		KeyFile:               "./operator.key",
		MinParticipants:       3,
		MaxParticipants:       5,
		MaxPoolTransactions:   3,
		MinProtoVersion:       70208,
		QueueTimeoutSeconds:   30,
		SigningTimeoutSeconds: 15,
		AdvertExpirySeconds:   30,
	}
	if err := config.Save(); err != nil {
		return CoordinatorConfig{}, err
	}
	return config, nil
}

// LoadServerConfig loads the config from disk, creating defaults on
// first run.
func LoadServerConfig() (CoordinatorConfig, error) {
	configPath, err := getConfigFile()
	if err != nil {
		return CoordinatorConfig{}, err
	}

	file, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewServerConfig()
		}
		return CoordinatorConfig{}, err
	}
	defer file.Close()

	var conf CoordinatorConfig
	if err := json.NewDecoder(file).Decode(&conf); err != nil {
		return CoordinatorConfig{}, err
	}
	return conf, nil
}

// ToParams converts the on-disk configuration into pool.Params.
func (cfg CoordinatorConfig) ToParams() pool.Params {
	return pool.Params{
		MinParticipants:     cfg.MinParticipants,
		MaxParticipants:     cfg.MaxParticipants,
		MaxPoolTransactions: cfg.MaxPoolTransactions,
		MinProtoVersion:     cfg.MinProtoVersion,
		QueueTimeout:        time.Duration(cfg.QueueTimeoutSeconds) * time.Second,
		SigningTimeout:      time.Duration(cfg.SigningTimeoutSeconds) * time.Second,
		AdvertExpiry:        time.Duration(cfg.AdvertExpirySeconds) * time.Second,
	}
}

// Save writes cfg to its configured path.
func (cfg CoordinatorConfig) Save() error {
	configPath, err := getConfigFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "    ")
	return encoder.Encode(cfg)
}
