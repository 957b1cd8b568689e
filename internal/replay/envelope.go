// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package replay

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mfleetwo/rcs-fast-import/internal/ir"
)

// buildComment returns the text handed to the RCS check-in command as
// the revision log message. In plain mode it is the raw commit payload;
// in round-trip mode (the default) it is an RFC-822-headered envelope
// carrying everything a git commit has that RCS has no field for -
// committer/author attribution, extension properties, and the mark/
// parent bookkeeping needed to reconstruct the original graph.
func buildComment(c *ir.Commit, plain bool) string {
	if plain {
		return c.Comment
	}
	var b strings.Builder
	attributionHeader(&b, c.Committer, "Committer")
	if len(c.Authors) > 0 {
		attributionHeader(&b, c.Authors[0], "Author")
		for i, coauthor := range c.Authors[1:] {
			attributionHeader(&b, coauthor, fmt.Sprintf("Author%d", i+2))
		}
	}
	var flagProps []string
	for _, name := range c.PropertyOrder() {
		prop := c.Properties[name]
		if prop.Flag {
			flagProps = append(flagProps, name)
			continue
		}
		fmt.Fprintf(&b, "Property-%s: %s\n", titleCase(name), escapeHeaderValue(prop.Value))
	}
	if len(flagProps) > 0 {
		sort.Strings(flagProps)
		fmt.Fprintf(&b, "Empty-Properties: %s\n", strings.Join(flagProps, ","))
	}
	fmt.Fprintf(&b, "Mark: %s\n", c.Mark)
	if len(c.Parents) > 0 {
		marks := make([]string, len(c.Parents))
		for i, m := range c.Parents {
			marks[i] = string(m)
		}
		fmt.Fprintf(&b, "Parents: %s\n", strings.Join(marks, " "))
	}
	b.WriteString("\n")
	b.WriteString(c.Comment)
	return b.String()
}

// attributionHeader writes the "<Hdr>: name <email>" / "<Hdr>-Date: ..."
// pair for one attribution.
func attributionHeader(b *strings.Builder, a ir.Attribution, hdr string) {
	fmt.Fprintf(b, "%s: %s <%s>\n", hdr, a.Name, a.Email)
	fmt.Fprintf(b, "%s-Date: %s\n", hdr, a.When.RFC1123Z())
}

func titleCase(name string) string {
	parts := strings.Split(name, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "-")
}

// escapeHeaderValue keeps a property value on one header line by
// backslash-escaping the characters that would otherwise break it.
func escapeHeaderValue(value string) string {
	value = strings.ReplaceAll(value, "\n", `\n`)
	value = strings.ReplaceAll(value, "\r", `\r`)
	value = strings.ReplaceAll(value, "\t", `\t`)
	return value
}
