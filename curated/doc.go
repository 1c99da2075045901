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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. It takes a
// formatting pattern and placeholder values, like fmt.Errorf(), and returns
// an error. The difference is that the pattern string is retained and acts
// as the identity of the error.
//
// The Is() function checks whether an error was created with a specific
// pattern:
//
//	e := curated.Errorf("connection error: %v", err)
//
//	if curated.Is(e, "connection error: %v") {
//		...
//	}
//
// The Has() function is similar but checks for the pattern anywhere in the
// error chain, which is useful when a curated error has been wrapped inside
// another curated error. Packages in this project export the patterns they
// raise (for example, transport.ConnError) so that callers can distinguish
// fatal from recoverable conditions without string matching.
//
// The IsAny() function answers whether the error is curated at all. We can
// think of the difference between curated and uncurated errors as being the
// difference between 'expected' and 'unexpected' failures.
package curated
