package ast

// ---------------------------------------------------------------------------
// Frozen tag bytes for tree nodes.
//
// IMPORTANT: These tags are FROZEN. Snapshots and fingerprints encode the
// tag byte directly, so a tag must never change meaning. Adding new tags is
// fine; renumbering existing ones invalidates every stored snapshot.
// ---------------------------------------------------------------------------

// Tag is the operation of a node (element 0 of the s-expression).
type Tag byte

const (
	// TagList is an untagged sequence: argument lists, parameter lists,
	// statement bodies, variable lists.
	TagList Tag = 0x00

	// Structure
	TagDo   Tag = 0x01
	TagLet  Tag = 0x02
	TagSexp Tag = 0x03 // already lowered; normalization passes never enter it
	TagSub  Tag = 0x04 // primitive subtraction, only emitted inside sexp

	// Bindings and calls
	TagAssign   Tag = 0x08
	TagCall     Tag = 0x09
	TagCallm    Tag = 0x0A
	TagIndex    Tag = 0x0B
	TagDestruct Tag = 0x0C

	// Functions
	TagDefm       Tag = 0x10
	TagDefun      Tag = 0x11
	TagLambda     Tag = 0x12
	TagProc       Tag = 0x13
	TagReturn     Tag = 0x14
	TagPreturn    Tag = 0x15
	TagYield      Tag = 0x16
	TagStackframe Tag = 0x17

	// Classes
	TagClass  Tag = 0x20
	TagModule Tag = 0x21

	// Surface forms
	TagRange   Tag = 0x28
	TagConcat  Tag = 0x29
	TagArray   Tag = 0x2A
	TagHash    Tag = 0x2B
	TagPair    Tag = 0x2C
	TagIf      Tag = 0x2D
	TagWhile   Tag = 0x2E
	TagAnd     Tag = 0x2F
	TagOr      Tag = 0x30
	TagNot     Tag = 0x31
	TagTernalt Tag = 0x32

	// Operators. Each is rewritten to a method call named after the operator.
	TagPlus       Tag = 0x40
	TagMinus      Tag = 0x41
	TagStar       Tag = 0x42
	TagSlash      Tag = 0x43
	TagPercent    Tag = 0x44
	TagPower      Tag = 0x45
	TagEq         Tag = 0x46
	TagNe         Tag = 0x47
	TagLt         Tag = 0x48
	TagGt         Tag = 0x49
	TagLe         Tag = 0x4A
	TagGe         Tag = 0x4B
	TagCmp        Tag = 0x4C
	TagCaseEq     Tag = 0x4D
	TagShl        Tag = 0x4E
	TagShr        Tag = 0x4F
	TagBitAnd     Tag = 0x50
	TagBitOr      Tag = 0x51
	TagBitXor     Tag = 0x52
	TagBang       Tag = 0x53
	TagMatch      Tag = 0x54
	TagElement    Tag = 0x55
	TagNegate     Tag = 0x56
	TagComplement Tag = 0x57
)

// tagNames is the textual spelling of every tag. The reader and printer use
// it in both directions.
var tagNames = map[Tag]string{
	TagList: "list",

	TagDo:   "do",
	TagLet:  "let",
	TagSexp: "sexp",
	TagSub:  "sub",

	TagAssign:   "assign",
	TagCall:     "call",
	TagCallm:    "callm",
	TagIndex:    "index",
	TagDestruct: "destruct",

	TagDefm:       "defm",
	TagDefun:      "defun",
	TagLambda:     "lambda",
	TagProc:       "proc",
	TagReturn:     "return",
	TagPreturn:    "preturn",
	TagYield:      "yield",
	TagStackframe: "stackframe",

	TagClass:  "class",
	TagModule: "module",

	TagRange:   "range",
	TagConcat:  "concat",
	TagArray:   "array",
	TagHash:    "hash",
	TagPair:    "pair",
	TagIf:      "if",
	TagWhile:   "while",
	TagAnd:     "and",
	TagOr:      "or",
	TagNot:     "not",
	TagTernalt: "ternalt",

	TagPlus:       "+",
	TagMinus:      "-",
	TagStar:       "*",
	TagSlash:      "/",
	TagPercent:    "%",
	TagPower:      "**",
	TagEq:         "==",
	TagNe:         "!=",
	TagLt:         "<",
	TagGt:         ">",
	TagLe:         "<=",
	TagGe:         ">=",
	TagCmp:        "<=>",
	TagCaseEq:     "===",
	TagShl:        "<<",
	TagShr:        ">>",
	TagBitAnd:     "&",
	TagBitOr:      "|",
	TagBitXor:     "^",
	TagBang:       "!",
	TagMatch:      "=~",
	TagElement:    "[]",
	TagNegate:     "-@",
	TagComplement: "~",
}

var tagsByName = func() map[string]Tag {
	m := make(map[string]Tag, len(tagNames))
	for tag, name := range tagNames {
		m[name] = tag
	}
	return m
}()

// String returns the textual spelling of the tag.
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "tag?"
}

// LookupTag returns the tag spelled name.
func LookupTag(name string) (Tag, bool) {
	t, ok := tagsByName[name]
	return t, ok
}

// IsOperator reports whether t is an infix/prefix operator tag.
func (t Tag) IsOperator() bool {
	return t >= TagPlus && t <= TagComplement
}

// Method returns the method name an operator tag desugars to. It is the
// empty string for non-operator tags.
func (t Tag) Method() string {
	if !t.IsOperator() {
		return ""
	}
	return tagNames[t]
}

// IsFunction reports whether t opens a new function body: a method, a
// hoisted function, or a closure literal.
func (t Tag) IsFunction() bool {
	switch t {
	case TagDefm, TagDefun, TagLambda, TagProc:
		return true
	}
	return false
}

// IsClosure reports whether t is a lambda or proc literal.
func (t Tag) IsClosure() bool {
	return t == TagLambda || t == TagProc
}

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []Tag{
	TagList, TagDo, TagLet, TagSexp, TagSub,
	TagAssign, TagCall, TagCallm, TagIndex, TagDestruct,
	TagDefm, TagDefun, TagLambda, TagProc, TagReturn, TagPreturn,
	TagYield, TagStackframe,
	TagClass, TagModule,
	TagRange, TagConcat, TagArray, TagHash, TagPair, TagIf, TagWhile,
	TagAnd, TagOr, TagNot, TagTernalt,
	TagPlus, TagMinus, TagStar, TagSlash, TagPercent, TagPower,
	TagEq, TagNe, TagLt, TagGt, TagLe, TagGe, TagCmp, TagCaseEq,
	TagShl, TagShr, TagBitAnd, TagBitOr, TagBitXor, TagBang, TagMatch,
	TagElement, TagNegate, TagComplement,
}
