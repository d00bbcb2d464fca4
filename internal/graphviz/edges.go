// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphviz

import (
	"fmt"
	"strings"
)

// Edge is one labeled edge statement read back from a description.
type Edge struct {
	From  string
	To    string
	Label string
}

// ParseEdges reads the edge statements of a description produced by
// Describe, in order. It understands only that output shape: quoted node
// IDs and a single quoted label attribute.
func ParseEdges(desc string) ([]Edge, error) {
	body := strings.TrimSpace(desc)
	if !strings.HasPrefix(body, "digraph") {
		return nil, fmt.Errorf("not a digraph description")
	}
	open := strings.IndexByte(body, '{')
	if open < 0 || !strings.HasSuffix(body, "}") {
		return nil, fmt.Errorf("missing graph braces")
	}
	body = body[open+1 : len(body)-1]

	p := &edgeParser{s: body}
	edges := []Edge{}
	for {
		p.skipSpace()
		if p.done() {
			return edges, nil
		}
		e, err := p.edge()
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", len(edges)+1, err)
		}
		edges = append(edges, e)
	}
}

type edgeParser struct {
	s   string
	pos int
}

func (p *edgeParser) done() bool { return p.pos >= len(p.s) }

func (p *edgeParser) skipSpace() {
	for !p.done() && strings.IndexByte(" \t\r\n", p.s[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *edgeParser) expect(tok string) error {
	p.skipSpace()
	if !strings.HasPrefix(p.s[p.pos:], tok) {
		return fmt.Errorf("expected %q at offset %d", tok, p.pos)
	}
	p.pos += len(tok)
	return nil
}

func (p *edgeParser) quoted() (string, error) {
	if err := p.expect(`"`); err != nil {
		return "", err
	}
	var b strings.Builder
	for !p.done() {
		c := p.s[p.pos]
		p.pos++
		switch c {
		case '"':
			return b.String(), nil
		case '\\':
			if p.done() {
				return "", fmt.Errorf("dangling escape")
			}
			next := p.s[p.pos]
			p.pos++
			if next == 'n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(next)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *edgeParser) edge() (Edge, error) {
	var e Edge
	var err error
	if e.From, err = p.quoted(); err != nil {
		return e, err
	}
	if err = p.expect("->"); err != nil {
		return e, err
	}
	if e.To, err = p.quoted(); err != nil {
		return e, err
	}
	if err = p.expect("["); err != nil {
		return e, err
	}
	if err = p.expect("label="); err != nil {
		return e, err
	}
	if e.Label, err = p.quoted(); err != nil {
		return e, err
	}
	if err = p.expect("]"); err != nil {
		return e, err
	}
	if err = p.expect(";"); err != nil {
		return e, err
	}
	return e, nil
}
