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

package config_test

import (
	"testing"

	"github.com/scopetrace/scopetrace/config"
	"github.com/scopetrace/scopetrace/curated"
	"github.com/scopetrace/scopetrace/test"
)

func TestDefaults(t *testing.T) {
	set, err := config.Load()
	test.ExpectedSuccess(t, err)
	test.Equate(t, set.Endpoint, "/tmp/scopetrace.sock")
	test.Equate(t, set.ViewWidth, 320)
	test.Equate(t, set.ViewHeight, 200)
	test.Equate(t, set.SampleRate, 44100)
	test.Equate(t, set.Density, 200.0)
	test.Equate(t, set.Amplitude, 1.0)
	test.Equate(t, set.MaxPayload, 1048576)
	test.ExpectedFailure(t, set.Reorder)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("SCOPETRACE_ENDPOINT", "tcp://127.0.0.1:9909")
	t.Setenv("SCOPETRACE_SAMPLE_RATE", "96000")
	t.Setenv("SCOPETRACE_REORDER", "true")

	set, err := config.Load()
	test.ExpectedSuccess(t, err)
	test.Equate(t, set.Endpoint, "tcp://127.0.0.1:9909")
	test.Equate(t, set.SampleRate, 96000)
	test.ExpectedSuccess(t, set.Reorder)
}

func TestValidation(t *testing.T) {
	tests := []func(*config.Settings){
		func(s *config.Settings) { s.ViewWidth = 0 },
		func(s *config.Settings) { s.SampleRate = -1 },
		func(s *config.Settings) { s.Density = 0 },
		func(s *config.Settings) { s.Amplitude = 1.5 },
		func(s *config.Settings) { s.MaxPayload = 0 },
	}

	for _, mangle := range tests {
		set, err := config.Load()
		test.ExpectedSuccess(t, err)
		mangle(set)
		err = set.Validate()
		test.ExpectedFailure(t, err)
		test.ExpectedSuccess(t, curated.Is(err, config.ConfigError))
	}
}
