// Package influxdb provides InfluxDB connectivity for pixeld.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, telemetry writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series telemetry for:
//   - Per-operation points (name, source, outcome)
//   - Animation tick aggregates (strips animated per tick)
//   - Periodic registry gauges (strip and animation counts)
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "lumastack",
//	    Bucket: "pixeld",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.RecordOperation("fill", "http", "ok")
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This keeps per-operation recording off the control path.
package influxdb
