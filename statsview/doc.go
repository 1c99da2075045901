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

// Package statsview serves runtime statistics over HTTP while a session is
// running. It is compiled in only when the statsview build constraint is
// given; without it Launch() is a stub and Available() reports false, which
// the -stats flag of the RUN mode uses to explain itself.
//
// With the constraint, graphs are served at
//
//	localhost:12320/debug/statsview
//
// and the usual Go pprof endpoints at
//
//	localhost:12320/debug/pprof/
//
// The heavy lifting is done by "github.com/go-echarts/statsview".
package statsview
