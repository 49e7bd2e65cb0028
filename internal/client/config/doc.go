// Package config loads runtime configuration for the shiftdesk console.
//
// Values come from built-in defaults, then an optional JSON file named by
// -c or -config, then command-line flags:
//
//	-a string   address:port of the backend gRPC endpoint
//	-p string   session persistence policy
//	            (durable-profile|session-profile|session-identifier)
//	-d string   SQLite file used by the durable-profile policy
//	-t int      remote profile fetch timeout (seconds)
//	-f string   fetch failure policy (logout|retry)
//	-r int      fetch retries under the retry policy
//
// Durations in JSON accept strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "persistence_policy": "durable-profile",
//	  "fetch_timeout": "5s"
//	}
package config
