package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/shiftdesk/internal/flagx"
	"github.com/dmitrijs2005/shiftdesk/internal/timex"
)

// JsonConfig is the on-disk form of Config. Absent keys leave the current
// value alone.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	PersistencePolicy  string         `json:"persistence_policy"`
	DBPath             string         `json:"db_path"`
	FetchTimeout       timex.Duration `json:"fetch_timeout"`
	FailurePolicy      string         `json:"failure_policy"`
	FetchRetries       *uint64        `json:"fetch_retries"`
}

// parseJson loads the file named by -c/-config, if any. Read or decode
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.PersistencePolicy, jc.PersistencePolicy)
	setString(&cfg.DBPath, jc.DBPath)
	if jc.FetchTimeout.Duration > 0 {
		cfg.FetchTimeout = jc.FetchTimeout.Duration
	}
	setString(&cfg.FailurePolicy, jc.FailurePolicy)
	if jc.FetchRetries != nil {
		cfg.FetchRetries = *jc.FetchRetries
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
