// Package expr models the parts of a query expression tree the bridge cares
// about: which table columns an expression reads.
//
// The node set is closed. Column references are leaves; aggregates and window
// functions are opaque to the walker because their arguments are evaluated in
// a different context than the output list; Opaque marks anything whose column
// usage cannot be determined at all.
package expr

import (
	"fmt"
	"sort"

	bridgeerrors "pxfbridge/cli/internal/errors"
)

// Node is an expression tree node.
type Node interface {
	node()
}

// ColumnRef reads one column of the scanned table.
type ColumnRef struct {
	// Ordinal is the 1-based attribute number; values <= 0 are system columns.
	Ordinal int
}

// Aggregate is an aggregate call such as sum(x).
type Aggregate struct {
	Name string
	Args []Node
}

// WindowFunc is a window function call such as row_number() over (...).
type WindowFunc struct {
	Name string
	Args []Node
}

// Func is any other operator or function application.
type Func struct {
	Name string
	Args []Node
}

// Const is a literal.
type Const struct {
	Value string
}

// Opaque is an expression whose column references are unknown, such as a sub-plan.
type Opaque struct {
	Description string
}

func (*ColumnRef) node()  {}
func (*Aggregate) node()  {}
func (*WindowFunc) node() {}
func (*Func) node()       {}
func (*Const) node()      {}
func (*Opaque) node()     {}

// Col is shorthand for a column reference.
func Col(ordinal int) *ColumnRef { return &ColumnRef{Ordinal: ordinal} }

// Call is shorthand for a function application.
func Call(name string, args ...Node) *Func { return &Func{Name: name, Args: args} }

// Visitor receives nodes during Walk. Returning false skips the node's children.
type Visitor func(n Node) (descend bool, err error)

// Walk visits n depth-first. Children of aggregates and window functions are
// never visited.
func Walk(n Node, v Visitor) error {
	if n == nil {
		return nil
	}
	descend, err := v(n)
	if err != nil || !descend {
		return err
	}
	switch t := n.(type) {
	case *Func:
		for _, arg := range t.Args {
			if err := Walk(arg, v); err != nil {
				return err
			}
		}
	case *ColumnRef, *Const, *Aggregate, *WindowFunc, *Opaque:
	default:
		return bridgeerrors.Newf(bridgeerrors.UnsupportedExpression, "unknown expression node %T", n)
	}
	return nil
}

// ColumnRefs returns the distinct positive ordinals referenced by nodes, sorted.
// Opaque nodes make the result unusable and yield an UnsupportedExpression error.
func ColumnRefs(nodes ...Node) ([]int, error) {
	seen := make(map[int]struct{})
	visit := func(n Node) (bool, error) {
		switch t := n.(type) {
		case *ColumnRef:
			if t.Ordinal > 0 {
				seen[t.Ordinal] = struct{}{}
			}
			return false, nil
		case *Aggregate, *WindowFunc:
			return false, nil
		case *Opaque:
			return false, bridgeerrors.New(bridgeerrors.UnsupportedExpression,
				fmt.Sprintf("cannot classify column references of %q", t.Description))
		}
		return true, nil
	}
	for _, n := range nodes {
		if err := Walk(n, visit); err != nil {
			return nil, err
		}
	}
	out := make([]int, 0, len(seen))
	for ord := range seen {
		out = append(out, ord)
	}
	sort.Ints(out)
	return out, nil
}
