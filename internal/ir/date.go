// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package ir

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RFC1123ZNoComma handles a date form occasionally seen from mail-derived
// importers: the comma after the weekday is dropped.
const RFC1123ZNoComma = "Mon 02 Jan 2006 15:04:05 -0700"

var zoneOffsetRE = mustRegexp(`^([-+]?[0-9]{2})([0-9]{2})$`)
var gitDateRE = mustRegexp(`^[0-9]+\s*[+-][0-9]+$`)

// Date wraps a parsed timestamp together with the zone string as the
// stream wrote it. The zone text is kept verbatim for round-tripping but
// never used for arithmetic - all Before/After/Equal comparisons go
// through the underlying time.Time, which is always normalized to
// absolute time.
type Date struct {
	when    time.Time
	rawZone string // verbatim "+HHMM"/"-HHMM" text, or the parsed offset formatted as -0700 if parsed from RFC-822
}

// ParseDate accepts either "<unix-seconds> <+-HHMM>" (the fast-import
// native form) or an RFC-822/RFC-1123 date.
func ParseDate(text string) (Date, error) {
	var d Date
	text = strings.TrimSpace(text)
	if text == "" {
		return d, errors.New("empty date")
	}
	if gitDateRE.MatchString(text) {
		fields := strings.Fields(text)
		secs, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return d, fmt.Errorf("bad unix timestamp %q: %v", fields[0], err)
		}
		loc, err := locationFromZoneOffset(fields[1])
		if err != nil {
			return d, err
		}
		d.when = time.Unix(secs, 0).In(loc)
		d.rawZone = fields[1]
		return d, nil
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, RFC1123ZNoComma, time.RFC3339} {
		if t, err := time.Parse(layout, text); err == nil {
			d.when = t.Truncate(time.Second)
			d.rawZone = t.Format("-0700")
			return d, nil
		}
	}
	return d, fmt.Errorf("not a recognizable date: %q", text)
}

func locationFromZoneOffset(offset string) (*time.Location, error) {
	m := zoneOffsetRE.FindStringSubmatch(offset)
	if m == nil {
		return nil, fmt.Errorf("ill-formed timezone offset %q", offset)
	}
	hours, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	if hours < -14 || hours > 14 || mins > 59 {
		return nil, fmt.Errorf("dubious zone offset %q", offset)
	}
	sign := 1
	if strings.HasPrefix(m[1], "-") {
		sign = -1
	}
	tzoff := sign * ((abs(hours) * 60) + mins) * 60
	return time.FixedZone(offset, tzoff), nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Unix returns the Unix-seconds part used when emitting the native form.
func (d Date) Unix() int64 { return d.when.Unix() }

// Zone returns the verbatim zone string as parsed (e.g. "+0000").
func (d Date) Zone() string {
	if d.rawZone != "" {
		return d.rawZone
	}
	return d.when.Format("-0700")
}

// String renders the native "<unix-seconds> <+-HHMM>" form fast-import
// itself uses.
func (d Date) String() string {
	return fmt.Sprintf("%d %s", d.Unix(), d.Zone())
}

// RFC1123Z renders the date the way an RFC-822 header envelope needs it.
func (d Date) RFC1123Z() string {
	return d.when.Format(time.RFC1123Z)
}

// Time exposes the underlying absolute instant for ordering comparisons.
func (d Date) Time() time.Time { return d.when }

// IsZero reports whether this Date was never successfully parsed.
func (d Date) IsZero() bool { return d.when.IsZero() }
