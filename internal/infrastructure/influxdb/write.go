package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordOperation writes a point for a completed control operation.
//
// Every dispatched operation produces one point tagged by operation
// name, source surface and outcome. The write is non-blocking; points
// are batched and sent asynchronously.
//
// Parameters:
//   - op: Operation name (e.g., "fill", "init_neopixels")
//   - source: Surface the request arrived on ("http", "mqtt", "startup")
//   - outcome: "ok" or "error"
func (c *Client) RecordOperation(op string, source string, outcome string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"operations",
		map[string]string{
			"op":      op,
			"source":  source,
			"outcome": outcome,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordTick writes an aggregate point for one animation scheduler tick.
//
// Only ticks that actually advanced at least one strip are recorded, so
// the measurement reflects animation load rather than timer frequency.
//
// Parameters:
//   - stripsAnimated: Number of strips advanced on this tick
func (c *Client) RecordTick(stripsAnimated int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"ticks",
		nil,
		map[string]interface{}{
			"strips_animated": stripsAnimated,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteRegistryGauges writes a snapshot of registry sizes.
//
// Called periodically so dashboards can graph how many strips and
// animations the daemon currently manages.
//
// Parameters:
//   - strips: Number of registered strips
//   - animations: Number of registered animations
func (c *Client) WriteRegistryGauges(strips int, animations int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"registry",
		nil,
		map[string]interface{}{
			"strips_total":     strips,
			"animations_total": animations,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
