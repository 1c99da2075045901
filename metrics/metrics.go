// This file is part of ScopeTrace.
//
// ScopeTrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ScopeTrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ScopeTrace.  If not, see <https://www.gnu.org/licenses/>.

// Package metrics collects per-session frame statistics. The collector is
// explicit state owned by the session; there are no package-level counters
// and independent sessions do not share figures.
package metrics

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/scopetrace/scopetrace/geometry"
	"github.com/scopetrace/scopetrace/logger"
)

// cadence of the periodic throughput log line.
const logInterval = time.Second

// per-frame sample counts retained for the session summary. at typical
// frame rates this covers well over an hour of play.
const maxRetained = 1 << 18

// Collector accumulates frame statistics for one session.
type Collector struct {
	lastLog   time.Time
	frames    int
	allFrames int

	// per-frame sample pair counts
	pairs []float64

	// most recent scene composition, for the periodic log line
	walls    int
	entities int
	samples  int
}

// NewCollector is the preferred method of initialisation for the Collector
// type.
func NewCollector() *Collector {
	return &Collector{
		lastLog: time.Now(),
		pairs:   make([]float64, 0, 4096),
	}
}

// Frame records one processed scene and the number of sample pairs it
// synthesized to. Once per second a throughput line is logged.
func (c *Collector) Frame(scene *geometry.Scene, pairs int) {
	c.frames++
	c.allFrames++
	c.walls = len(scene.Walls)
	c.entities = len(scene.Entities)
	c.samples = pairs

	if len(c.pairs) < maxRetained {
		c.pairs = append(c.pairs, float64(pairs))
	}

	now := time.Now()
	if elapsed := now.Sub(c.lastLog); elapsed >= logInterval {
		fps := float64(c.frames) / elapsed.Seconds()
		logger.Logf("metrics", "%.1f fps | walls %d | entities %d | samples %d", fps, c.walls, c.entities, c.samples)
		c.frames = 0
		c.lastLog = now
	}
}

// Frames processed over the lifetime of the collector.
func (c *Collector) Frames() int {
	return c.allFrames
}

// Summary describes the session. Mean and quantiles of the per-frame sample
// pair counts tell us what the effective refresh rate has been doing: at a
// fixed sample rate the refresh of a frame of n pairs is rate/n Hz.
func (c *Collector) Summary() string {
	if len(c.pairs) == 0 {
		return "no frames processed"
	}

	sorted := make([]float64, len(c.pairs))
	copy(sorted, c.pairs)
	sort.Float64s(sorted)

	return fmt.Sprintf("%d frames | sample pairs per frame: mean %.0f, median %.0f, p95 %.0f",
		c.allFrames,
		stat.Mean(sorted, nil),
		stat.Quantile(0.5, stat.Empirical, sorted, nil),
		stat.Quantile(0.95, stat.Empirical, sorted, nil),
	)
}
