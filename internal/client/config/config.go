package config

import "time"

// Config holds runtime settings for the console.
type Config struct {
	ServerEndpointAddr string
	PersistencePolicy  string
	DBPath             string
	FetchTimeout       time.Duration
	FailurePolicy      string
	FetchRetries       uint64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.PersistencePolicy = "session-identifier"
	c.DBPath = "shiftdesk.db"
	c.FetchTimeout = 10 * time.Second
	c.FailurePolicy = "logout"
	c.FetchRetries = 3
}

// LoadConfig applies defaults, then JSON, then flags. Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
