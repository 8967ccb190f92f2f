package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Reader: canonical s-expression text -> arena tree
//
// This reads the tree's own notation (the inverse of Format). It is not a
// source-language parser.
// ---------------------------------------------------------------------------

// Parse reads every form in src into a new arena. A single top-level list
// becomes the root; anything else is wrapped in (do ...).
func Parse(file, src string) (*Arena, NodeID, error) {
	a := NewArena()
	root, err := a.Read(file, src)
	if err != nil {
		return nil, 0, err
	}
	return a, root, nil
}

// MustParse is like Parse but panics on error. For tests and fixtures.
func MustParse(src string) (*Arena, NodeID) {
	a, root, err := Parse("", src)
	if err != nil {
		panic(err)
	}
	return a, root
}

// Read parses src into the arena and returns the root node.
func (a *Arena) Read(file, src string) (NodeID, error) {
	r := &reader{arena: a, src: src, pos: Position{File: file, Line: 1, Column: 1}}
	var forms []Value
	start := r.pos
	for {
		r.skipSpace()
		if r.eof() {
			break
		}
		v, err := r.readValue()
		if err != nil {
			return 0, err
		}
		forms = append(forms, v)
	}
	if len(forms) == 1 && forms[0].IsNode() {
		return forms[0].Node, nil
	}
	return a.New(TagDo, start, forms...), nil
}

type reader struct {
	arena *Arena
	src   string
	off   int
	pos   Position
}

func (r *reader) eof() bool { return r.off >= len(r.src) }

func (r *reader) peek() byte { return r.src[r.off] }

func (r *reader) advance() byte {
	c := r.src[r.off]
	r.off++
	if c == '\n' {
		r.pos.Line++
		r.pos.Column = 1
	} else {
		r.pos.Column++
	}
	return c
}

func (r *reader) errorf(pos Position, format string, args ...any) error {
	return fmt.Errorf("%s: %s", pos, fmt.Sprintf(format, args...))
}

func (r *reader) skipSpace() {
	for !r.eof() {
		c := r.peek()
		switch {
		case c == ';':
			for !r.eof() && r.peek() != '\n' {
				r.advance()
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',':
			r.advance()
		default:
			return
		}
	}
}

func (r *reader) readValue() (Value, error) {
	pos := r.pos
	switch c := r.peek(); c {
	case '(':
		return r.readList()
	case ')':
		return Nil, r.errorf(pos, "unexpected ')'")
	case '"':
		return r.readString()
	default:
		return r.readAtom(), nil
	}
}

func (r *reader) readList() (Value, error) {
	pos := r.pos
	r.advance() // (
	var elems []Value
	for {
		r.skipSpace()
		if r.eof() {
			return Nil, r.errorf(pos, "unterminated list")
		}
		if r.peek() == ')' {
			r.advance()
			break
		}
		v, err := r.readValue()
		if err != nil {
			return Nil, err
		}
		elems = append(elems, v)
	}

	tag := TagList
	if len(elems) > 0 && elems[0].IsSymbol() {
		if t, ok := LookupTag(elems[0].Text); ok {
			tag = t
			elems = elems[1:]
		}
	}
	return Ref(r.arena.New(tag, pos, elems...)), nil
}

func (r *reader) readString() (Value, error) {
	pos := r.pos
	start := r.off
	r.advance() // opening quote
	for {
		if r.eof() {
			return Nil, r.errorf(pos, "unterminated string")
		}
		c := r.advance()
		if c == '\\' && !r.eof() {
			r.advance()
			continue
		}
		if c == '"' {
			break
		}
	}
	s, err := strconv.Unquote(r.src[start:r.off])
	if err != nil {
		return Nil, r.errorf(pos, "bad string literal: %v", err)
	}
	return Str(s), nil
}

func (r *reader) readAtom() Value {
	start := r.off
	for !r.eof() {
		c := r.peek()
		if c == '(' || c == ')' || c == '"' || c == ';' || c == ',' || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		r.advance()
	}
	text := r.src[start:r.off]
	if text == "_" {
		return Nil
	}
	if isInteger(text) {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Int(i)
		}
	}
	return Sym(text)
}

func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
