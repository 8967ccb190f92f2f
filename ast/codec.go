package ast

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical mode so equal arenas encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ast: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// snapshot is the wire shape of an arena. Node i of Nodes is NodeID i+1.
type snapshot struct {
	Version byte           `cbor:"1,keyasint"`
	Root    NodeID         `cbor:"2,keyasint"`
	Nodes   []snapshotNode `cbor:"3,keyasint"`
}

type snapshotNode struct {
	Tag    Tag                 `cbor:"1,keyasint"`
	Args   []snapshotValue     `cbor:"2,keyasint,omitempty"`
	File   string              `cbor:"3,keyasint,omitempty"`
	Line   int                 `cbor:"4,keyasint,omitempty"`
	Column int                 `cbor:"5,keyasint,omitempty"`
	Extra  map[string][]string `cbor:"6,keyasint,omitempty"`
}

type snapshotValue struct {
	Kind Kind   `cbor:"1,keyasint"`
	Text string `cbor:"2,keyasint,omitempty"`
	Int  int64  `cbor:"3,keyasint,omitempty"`
	Node NodeID `cbor:"4,keyasint,omitempty"`
}

// MarshalSnapshot serializes the whole arena and its root to CBOR bytes.
// Only string-list annotations (the kind the passes attach) are kept.
func MarshalSnapshot(a *Arena, root NodeID) ([]byte, error) {
	snap := snapshot{
		Version: FormatVersion,
		Root:    root,
		Nodes:   make([]snapshotNode, 0, a.Len()),
	}
	for _, n := range a.nodes[1:] {
		sn := snapshotNode{
			Tag:    n.Tag,
			File:   n.Pos.File,
			Line:   n.Pos.Line,
			Column: n.Pos.Column,
		}
		for _, v := range n.Args {
			sn.Args = append(sn.Args, snapshotValue{Kind: v.Kind, Text: v.Text, Int: v.Int, Node: v.Node})
		}
		for k, v := range n.Extra {
			if list, ok := v.([]string); ok {
				if sn.Extra == nil {
					sn.Extra = make(map[string][]string)
				}
				sn.Extra[k] = list
			}
		}
		snap.Nodes = append(snap.Nodes, sn)
	}
	return cborEncMode.Marshal(snap)
}

// UnmarshalSnapshot rebuilds an arena from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Arena, NodeID, error) {
	var snap snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, 0, fmt.Errorf("ast: unmarshal snapshot: %w", err)
	}
	if snap.Version != FormatVersion {
		return nil, 0, fmt.Errorf("ast: snapshot version %d, want %d", snap.Version, FormatVersion)
	}

	a := NewArena()
	for _, sn := range snap.Nodes {
		args := make([]Value, len(sn.Args))
		for i, sv := range sn.Args {
			args[i] = Value{Kind: sv.Kind, Text: sv.Text, Int: sv.Int, Node: sv.Node}
		}
		id := a.New(sn.Tag, Position{File: sn.File, Line: sn.Line, Column: sn.Column}, args...)
		for k, v := range sn.Extra {
			a.Node(id).Annotate(k, v)
		}
	}
	for _, n := range a.nodes[1:] {
		for _, v := range n.Args {
			if v.IsNode() && !a.Valid(v.Node) {
				return nil, 0, fmt.Errorf("ast: snapshot references missing node %d", v.Node)
			}
		}
	}
	if !a.Valid(snap.Root) {
		return nil, 0, fmt.Errorf("ast: snapshot root %d out of range", snap.Root)
	}
	return a, snap.Root, nil
}
