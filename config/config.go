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

// Package config gathers runtime settings from the environment. Values are
// read from SCOPETRACE_* environment variables, optionally seeded from a
// .env file, and can be overridden by command line flags at the call site.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/scopetrace/scopetrace/curated"
	"github.com/scopetrace/scopetrace/logger"
)

// ConfigError is returned when the environment cannot be parsed.
const ConfigError = "config error: %v"

// Settings for a renderer session.
type Settings struct {
	// where the engine connects. a bare path or unix:// prefix selects a
	// unix domain socket, tcp://host:port a tcp listener.
	Endpoint string `env:"ENDPOINT" envDefault:"/tmp/scopetrace.sock"`

	// pixel dimensions of the engine's framebuffer
	ViewWidth  int `env:"VIEW_WIDTH" envDefault:"320"`
	ViewHeight int `env:"VIEW_HEIGHT" envDefault:"200"`

	// audio output
	SampleRate int     `env:"SAMPLE_RATE" envDefault:"44100"`
	Device     string  `env:"DEVICE"`
	Amplitude  float64 `env:"AMPLITUDE" envDefault:"1.0"`

	// sample pairs per unit of normalised beam travel
	Density float64 `env:"DENSITY" envDefault:"200"`

	// largest frame payload accepted from the engine
	MaxPayload uint32 `env:"MAX_PAYLOAD" envDefault:"1048576"`

	// reorder path segments to shorten blanking travel
	Reorder bool `env:"REORDER"`

	// mirror synthesized audio to a wav file. empty disables capture
	WAVCapture string `env:"WAV_CAPTURE"`
}

// Load settings from the environment. A .env file in the working directory
// is read first if present; real environment variables win over it.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err == nil {
		logger.Log("config", "settings seeded from .env file")
	}

	set := &Settings{}
	if err := env.ParseWithOptions(set, env.Options{Prefix: "SCOPETRACE_"}); err != nil {
		return nil, curated.Errorf(ConfigError, err)
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}

	return set, nil
}

// Validate checks settings for values the pipeline cannot work with.
func (set *Settings) Validate() error {
	if set.ViewWidth <= 0 || set.ViewHeight <= 0 {
		return curated.Errorf(ConfigError, "view dimensions must be positive")
	}
	if set.SampleRate <= 0 {
		return curated.Errorf(ConfigError, "sample rate must be positive")
	}
	if set.Density <= 0 {
		return curated.Errorf(ConfigError, "density must be positive")
	}
	if set.Amplitude < 0 || set.Amplitude > 1 {
		return curated.Errorf(ConfigError, "amplitude must be between 0 and 1")
	}
	if set.MaxPayload == 0 {
		return curated.Errorf(ConfigError, "max payload must be positive")
	}
	return nil
}
