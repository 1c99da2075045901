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

package curated_test

import (
	"errors"
	"testing"

	"github.com/scopetrace/scopetrace/curated"
	"github.com/scopetrace/scopetrace/test"
)

const testPattern = "test error: %s"
const wrapPattern = "wrapped: %v"

func TestIdentity(t *testing.T) {
	e := curated.Errorf(testPattern, "detail")

	test.ExpectedSuccess(t, curated.IsAny(e))
	test.ExpectedSuccess(t, curated.Is(e, testPattern))
	test.ExpectedFailure(t, curated.Is(e, wrapPattern))

	// plain errors are never curated
	p := errors.New("plain")
	test.ExpectedFailure(t, curated.IsAny(p))
	test.ExpectedFailure(t, curated.Is(p, testPattern))
	test.ExpectedFailure(t, curated.Has(p, testPattern))
}

func TestChain(t *testing.T) {
	e := curated.Errorf(testPattern, "detail")
	f := curated.Errorf(wrapPattern, e)

	// Is() only matches the outermost pattern, Has() searches the chain
	test.ExpectedFailure(t, curated.Is(f, testPattern))
	test.ExpectedSuccess(t, curated.Has(f, testPattern))
	test.ExpectedSuccess(t, curated.Has(f, wrapPattern))
}

func TestNormalisation(t *testing.T) {
	// adjacent duplicate message parts should be removed
	e := curated.Errorf("transport: %v", curated.Errorf("transport: %v", errors.New("read failed")))
	test.Equate(t, e.Error(), "transport: read failed")
}

func TestNil(t *testing.T) {
	test.ExpectedFailure(t, curated.IsAny(nil))
	test.ExpectedFailure(t, curated.Is(nil, testPattern))
	test.ExpectedFailure(t, curated.Has(nil, testPattern))
}
