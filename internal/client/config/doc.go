// Package config loads runtime configuration for the acadcart client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, if present, and the process
//     environment (ACADCART_BACKEND_URL, ACADCART_GRPC_HEALTH_ADDR).
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-b string   base URL of the acadcart service
//	-t int      request timeout (seconds)
//	-p string   liveness probe transport: http or grpc
//	-g string   host:port of the gRPC health service
//	-d string   path of the local session database
//	-m string   listen address for the client metrics endpoint
//
// # JSON schema
//
// Durations use timex.Duration, so "2s" and integer nanoseconds both work:
//
//	{
//	  "backend_url": "https://backend.acadcart.com",
//	  "request_timeout": "5s",
//	  "probe_attempts": 3,
//	  "probe_backoff": "2s",
//	  "probe_transport": "http",
//	  "grpc_health_addr": "",
//	  "database_path": "session.db",
//	  "metrics_addr": ""
//	}
package config
