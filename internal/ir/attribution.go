// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package ir

import (
	"fmt"
	"strings"
)

var attributionRE = mustRegexp(`([^<]*\s*)<([^>]*)>+(\s*.*)`)

// Attribution is the (name, email, date) triple carried by fast-import
// "author"/"committer" lines.
type Attribution struct {
	Name  string
	Email string
	When  Date
}

// ParseAttribution parses a fast-import "author"/"committer" payload of
// the form "Name <email> <date>".
func ParseAttribution(line string) (Attribution, error) {
	var a Attribution
	m := attributionRE.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return a, fmt.Errorf("malformed attribution line %q", line)
	}
	name := strings.TrimSpace(m[1])
	email := strings.TrimSpace(m[2])
	datestamp := strings.TrimSpace(m[3])
	when, err := ParseDate(datestamp)
	if err != nil {
		return a, fmt.Errorf("malformed attribution date %q in %q: %v", datestamp, line, err)
	}
	if name == "(no author)" {
		name = "no-author" // cvs2svn leaves this placeholder when no author was recorded
	}
	a.Name = name
	a.Email = email
	a.When = when
	return a, nil
}

func (a Attribution) String() string {
	return fmt.Sprintf("%s <%s> %s", a.Name, a.Email, a.When)
}

// IsEmpty reports whether this is the zero Attribution (no committer/author
// seen yet).
func (a Attribution) IsEmpty() bool {
	return a.Name == "" && a.Email == ""
}
