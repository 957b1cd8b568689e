// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package ir

import "strings"

// Mark is a stream-assigned token of the form ":N" naming a blob or
// commit for later cross-reference.
type Mark string

// Valid reports whether m looks like a well-formed mark token.
func (m Mark) Valid() bool {
	return len(m) > 1 && m[0] == ':'
}

// IsMarkRef reports whether a fileop's ref field names a mark as opposed
// to the literal "inline".
func IsMarkRef(ref string) bool {
	return strings.HasPrefix(ref, ":")
}
