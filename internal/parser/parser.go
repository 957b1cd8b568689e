// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

// Package parser implements the fast-import event parser: top-level
// dispatch on blob/commit/reset/tag/passthrough, the commit sub-loop, and
// fileop line parsing. It trims away everything a general-purpose
// fast-import reader needs to support git/Subversion/bzr idiosyncrasies
// (no original-oid, no #legacy-id, no bzr branch-nick sniffing) since
// this importer only ever targets an RCS tree.
package parser

import (
	"os"
	"strconv"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/mfleetwo/rcs-fast-import/internal/ir"
	"github.com/mfleetwo/rcs-fast-import/internal/lex"
	"github.com/mfleetwo/rcs-fast-import/internal/scratch"
	"github.com/mfleetwo/rcs-fast-import/internal/xlog"
)

var log = xlog.Component("parser")

// Parser holds the lexer/repository/scratch-space triple for one parse
// run. It has no other mutable state beyond the process-wide verbosity
// setting, so nothing here needs to survive across separate runs.
type Parser struct {
	lx     *lex.Reader
	repo   *ir.Repository
	sp     *scratch.Space
	source string
}

// Parse reads a fast-import stream from r, using sp for blob/inline
// spill files, and returns the assembled event graph. Fatal conditions
// are reported as *ir.ImportError via Go's normal error return - the
// internal panic/recover machinery is an implementation detail that
// never crosses this function's boundary.
func Parse(r *lex.Reader, source string, sp *scratch.Space) (repo *ir.Repository, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if ie, ok := rec.(*ir.ImportError); ok {
				err = ie
				return
			}
			panic(rec)
		}
	}()
	p := &Parser{lx: r, repo: ir.NewRepository(), sp: sp, source: source}
	p.repo.ScratchDir = sp.ScratchDir
	p.run()
	return p.repo, nil
}

func (p *Parser) run() {
	for {
		line, ok := p.lx.ReadLine()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "blob"):
			p.parseBlob()
		case strings.HasPrefix(line, "commit "):
			p.parseCommit(line)
		case strings.HasPrefix(line, "reset "):
			p.parseReset(line)
		case strings.HasPrefix(line, "tag "):
			p.parseTag(line)
		default:
			log.WithField("line", p.lx.Line).Debug("passthrough")
			p.repo.AddEvent(&ir.Passthrough{Text: line, Line: p.lx.Line})
		}
	}
}

// requireLine reads the next line and fails if the stream ends first.
func (p *Parser) requireLine(context string) string {
	line, ok := p.lx.ReadLine()
	if !ok {
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "unexpected EOF while expecting %s", context)
	}
	return line
}

func (p *Parser) parseBlob() {
	markLine := p.requireLine("mark after blob")
	if !strings.HasPrefix(markLine, "mark ") {
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "missing mark after blob")
	}
	mark := ir.Mark(strings.TrimSpace(markLine[5:]))

	dataLine := p.requireLine("data after blob mark")
	if !strings.HasPrefix(dataLine, "data") {
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "missing data after blob mark")
	}
	payload, err := p.lx.ReadData(dataLine)
	if err != nil {
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "%v", err)
	}
	spill := p.sp.BlobSpillPath(mark)
	if err := os.WriteFile(spill, payload, 0644); err != nil {
		ir.Throw(ir.ClassIO, "cannot write blob spill file %s: %v", spill, err)
	}
	p.repo.AddEvent(ir.NewBlob(mark, spill))
	log.WithField("mark", mark).Debug("blob")
}

func (p *Parser) parseCommit(header string) {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "malformed commit header %q", header)
	}
	commitLine := p.lx.Line
	c := ir.NewCommit()
	c.Branch = fields[1]
	c.Line = commitLine

commitLoop:
	for {
		line, ok := p.lx.ReadLine()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			// Workaround for exporters (e.g. bzr-fast-export) that tack an
			// extra newline onto the end of a data object.
			continue
		}
		switch {
		case strings.HasPrefix(line, "mark "):
			c.Mark = ir.Mark(strings.TrimSpace(line[5:]))
		case strings.HasPrefix(line, "author "):
			a, err := ir.ParseAttribution(line[len("author "):])
			if err != nil {
				ir.ThrowAt(ir.ClassParse, p.lx.Line, "in author field: %v", err)
			}
			c.Authors = append(c.Authors, a)
		case strings.HasPrefix(line, "committer "):
			a, err := ir.ParseAttribution(line[len("committer "):])
			if err != nil {
				ir.ThrowAt(ir.ClassParse, p.lx.Line, "in committer field: %v", err)
			}
			c.Committer = a
		case strings.HasPrefix(line, "property"):
			p.parseProperty(line, c)
		case strings.HasPrefix(line, "data"):
			payload, err := p.lx.ReadData(line)
			if err != nil {
				ir.ThrowAt(ir.ClassParse, p.lx.Line, "%v", err)
			}
			c.Comment = string(payload)
		case strings.HasPrefix(line, "from "):
			c.Parents = append(c.Parents, ir.Mark(strings.TrimSpace(line[len("from "):])))
		case strings.HasPrefix(line, "merge "):
			c.Parents = append(c.Parents, ir.Mark(strings.TrimSpace(line[len("merge "):])))
		case strings.HasPrefix(line, "M "):
			c.FileOps = append(c.FileOps, p.parseModify(line, c))
		case strings.HasPrefix(line, "D "):
			c.FileOps = append(c.FileOps, p.parseSimplePath(line, ir.OpDelete))
		case strings.HasPrefix(line, "R "):
			c.FileOps = append(c.FileOps, p.parseSourceDest(line, ir.OpRename))
		case strings.HasPrefix(line, "C "):
			c.FileOps = append(c.FileOps, p.parseSourceDest(line, ir.OpCopy))
		case line == "deleteall" || line == "filedeleteall":
			c.FileOps = append(c.FileOps, &ir.FileOp{Kind: ir.OpDeleteAll, Line: p.lx.Line})
		default:
			p.lx.PushBack(line)
			break commitLoop
		}
	}

	if c.Mark == "" {
		ir.ThrowAt(ir.ClassSemantic, commitLine, "commit is missing a required mark")
	}
	if c.Committer.IsEmpty() {
		ir.ThrowAt(ir.ClassSemantic, commitLine, "commit is missing a required committer")
	}
	p.repo.AddEvent(c)
	log.WithField("mark", c.Mark).WithField("branch", c.Branch).Debug("commit")
}

func (p *Parser) parseProperty(line string, c *ir.Commit) {
	rest := strings.TrimPrefix(line, "property")
	rest = strings.TrimPrefix(rest, " ")
	sep := strings.IndexByte(rest, ' ')
	if sep < 0 {
		if rest == "" {
			ir.ThrowAt(ir.ClassParse, p.lx.Line, "malformed property line %q", line)
		}
		c.Properties[rest] = ir.Property{Flag: true}
		return
	}
	name := rest[:sep]
	rest = rest[sep+1:]
	lenTok := rest
	inline := ""
	if sep2 := strings.IndexByte(rest, ' '); sep2 >= 0 {
		lenTok = rest[:sep2]
		inline = rest[sep2+1:]
	}
	length, err := strconv.Atoi(lenTok)
	if err != nil {
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "bad property length in %q", line)
	}
	var value string
	switch {
	case len(inline) == length:
		value = inline
	case len(inline) < length:
		deficit := length - len(inline) - 1 // the newline ReadLine stripped counts toward length
		if deficit < 0 {
			ir.ThrowAt(ir.ClassParse, p.lx.Line, "mismatched property length in %q", line)
		}
		more, err := p.lx.ReadN(deficit)
		if err != nil {
			ir.ThrowAt(ir.ClassParse, p.lx.Line, "short property value: %v", err)
		}
		value = inline + "\n" + string(more)
	default:
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "mismatched property length in %q", line)
	}
	c.Properties[name] = ir.Property{Value: value}
}

func (p *Parser) parseModify(line string, c *ir.Commit) *ir.FileOp {
	parts := strings.SplitN(line, " ", 4)
	if len(parts) != 4 {
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "malformed M line %q", line)
	}
	mode, ref, path := parts[1], parts[2], parts[3]
	switch mode {
	case ir.ModeRegular, ir.ModeExecutable, ir.ModeSymlink, ir.ModeGitlink:
	default:
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "unrecognized file mode %q in %q", mode, line)
	}
	op := &ir.FileOp{Kind: ir.OpModify, Mode: mode, Ref: ref, Path: path, Line: p.lx.Line}
	if ref == "inline" {
		dataLine := p.requireLine("data after inline M op")
		payload, err := p.lx.ReadData(dataLine)
		if err != nil {
			ir.ThrowAt(ir.ClassParse, p.lx.Line, "%v", err)
		}
		spill := p.sp.NextInlinePath(c.Mark)
		if err := os.WriteFile(spill, payload, 0644); err != nil {
			ir.Throw(ir.ClassIO, "cannot write inline spill file %s: %v", spill, err)
		}
		op.Inline = payload
		op.Blob = ir.NewBlob(ir.Mark(""), spill)
	} else if ir.IsMarkRef(ref) {
		blob := p.repo.MarkToBlob(ir.Mark(ref))
		if blob == nil && mode != ir.ModeGitlink {
			ir.ThrowAt(ir.ClassSemantic, p.lx.Line, "ref %s could not be resolved", ref)
		}
		if blob != nil {
			blob.NoteFirstPath(path)
			op.Blob = blob
		}
	} else if mode != ir.ModeGitlink {
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "unknown content source %q in %q", ref, line)
	}
	return op
}

func (p *Parser) parseSimplePath(line string, kind ir.FileOpKind) *ir.FileOp {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) != 2 || parts[1] == "" {
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "malformed %c line %q", byte(kind), line)
	}
	return &ir.FileOp{Kind: kind, Path: parts[1], Line: p.lx.Line}
}

// parseSourceDest tokenizes R/C lines with shell-quoting rules, matching
// git-fast-import's own grammar for these two ops.
func (p *Parser) parseSourceDest(line string, kind ir.FileOpKind) *ir.FileOp {
	tokens, err := shellquote.Split(line)
	if err != nil {
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "bad quoting in %q: %v", line, err)
	}
	if len(tokens) != 3 {
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "malformed %c line %q", byte(kind), line)
	}
	return &ir.FileOp{Kind: kind, Source: tokens[1], Path: tokens[2], Line: p.lx.Line}
}

func (p *Parser) parseReset(header string) {
	line := p.lx.Line
	ref := strings.TrimSpace(header[len("reset "):])
	r := &ir.Reset{Ref: ref, Line: line}
	next, ok := p.lx.ReadLine()
	if ok && strings.HasPrefix(next, "from ") {
		r.Committish = ir.Mark(strings.TrimSpace(next[len("from "):]))
	} else if ok {
		p.lx.PushBack(next)
	}
	p.repo.AddEvent(r)
}

func (p *Parser) parseTag(header string) {
	line := p.lx.Line
	name := strings.TrimSpace(header[len("tag "):])
	fromLine := p.requireLine("from after tag")
	if !strings.HasPrefix(fromLine, "from ") {
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "missing 'from' field in tag %q", name)
	}
	committish := ir.Mark(strings.TrimSpace(fromLine[len("from "):]))

	var tagger *ir.Attribution
	next, ok := p.lx.ReadLine()
	if ok && strings.HasPrefix(next, "tagger ") {
		a, err := ir.ParseAttribution(next[len("tagger "):])
		if err != nil {
			ir.ThrowAt(ir.ClassParse, p.lx.Line, "in tagger field: %v", err)
		}
		tagger = &a
	} else {
		log.WithField("line", p.lx.Line).Warn("missing tagger field after from field in tag " + name)
		if ok {
			p.lx.PushBack(next)
		}
	}

	dataLine := p.requireLine("data in tag")
	payload, err := p.lx.ReadData(dataLine)
	if err != nil {
		ir.ThrowAt(ir.ClassParse, p.lx.Line, "%v", err)
	}
	p.repo.AddEvent(&ir.Tag{Name: name, Committish: committish, Tagger: tagger, Comment: string(payload), Line: line})
}
