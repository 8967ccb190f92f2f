package ast

import (
	"strconv"
	"strings"
)

// Format renders the subtree rooted at id in canonical s-expression text.
//
//	nil operand   _
//	symbol        name
//	string        "quoted"
//	integer       42
//	node          (tag operand...)
//
// An untagged list whose first element is a symbol spelled like a tag is
// written as (list ...), so Read gives back the same tree.
func (a *Arena) Format(id NodeID) string {
	var sb strings.Builder
	a.format(&sb, id)
	return sb.String()
}

// FormatValue renders a single operand.
func (a *Arena) FormatValue(v Value) string {
	var sb strings.Builder
	a.formatValue(&sb, v)
	return sb.String()
}

func (a *Arena) format(sb *strings.Builder, id NodeID) {
	n := a.Node(id)
	sb.WriteByte('(')
	first := true
	if n.Tag != TagList {
		sb.WriteString(n.Tag.String())
		first = false
	} else if len(n.Args) > 0 && n.Args[0].IsSymbol() {
		if _, ok := LookupTag(n.Args[0].Text); ok {
			sb.WriteString("list")
			first = false
		}
	}
	for _, v := range n.Args {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		a.formatValue(sb, v)
	}
	sb.WriteByte(')')
}

func (a *Arena) formatValue(sb *strings.Builder, v Value) {
	switch v.Kind {
	case KindNil:
		sb.WriteByte('_')
	case KindSymbol:
		sb.WriteString(v.Text)
	case KindString:
		sb.WriteString(strconv.Quote(v.Text))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case KindNode:
		a.format(sb, v.Node)
	}
}
