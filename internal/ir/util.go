// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package ir

import "regexp"

func mustRegexp(pattern string) *regexp.Regexp {
	return regexp.MustCompile(pattern)
}
