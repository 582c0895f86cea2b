package interp

import (
	"eidos.dev/eidos/pkg/ast"
	"eidos.dev/eidos/pkg/term"
	"eidos.dev/eidos/pkg/value"
)

// execStmt runs one statement node. Its return value is only meaningful for
// ast.ExprStmt (the expression's value, for the enclosing block's "last
// statement" bookkeeping); every other statement kind returns nil. An error
// is either a *signal unwinding a loop/block or an ordinary diagnostic.
func (ip *Interp) execStmt(n *ast.Node) (*value.Value, error) {
	switch n.Kind {
	case ast.Block:
		return ip.execBlock(n)
	case ast.ExprStmt:
		return ip.eval(n.Children[0])
	case ast.IfStmt:
		return nil, ip.execIf(n)
	case ast.WhileStmt:
		return nil, ip.execWhile(n)
	case ast.DoWhileStmt:
		return nil, ip.execDoWhile(n)
	case ast.ForStmt:
		return nil, ip.execFor(n)
	case ast.BreakStmt:
		return nil, breakSignal
	case ast.NextStmt:
		return nil, nextSignal
	case ast.ReturnStmt:
		if len(n.Children) == 0 {
			return nil, returnSignal(nil)
		}
		v, err := ip.eval(n.Children[0])
		if err != nil {
			return nil, err
		}
		return nil, returnSignal(v)
	default:
		return nil, ip.stream.Raisef(term.InternalInvariant, "execStmt: unhandled statement kind %v", n.Kind)
	}
}

// conditionTrue coerces an if/while/do-while/ternary condition to a single
// logical value. The source spec is silent on "truthiness" for a
// multi-element condition; this core requires a singleton, raising
// TypeError otherwise, since broadcasting a vector condition over a branch
// choice has no well-defined semantics (there is exactly one branch to
// take, not one per element).
func (ip *Interp) conditionTrue(v *value.Value) (bool, error) {
	if v.Count() != 1 {
		return false, ip.stream.Raisef(term.TypeError,
			"if/while condition must be a singleton logical value, got length %d", v.Count())
	}
	b, err := v.AsLogicalAt(0)
	if err != nil {
		return false, ip.stream.Raisef(term.TypeError, "condition: %v", err)
	}
	return b, nil
}

func (ip *Interp) execIf(n *ast.Node) error {
	cond, err := ip.eval(n.Children[0])
	if err != nil {
		return err
	}
	b, err := ip.conditionTrue(cond)
	if err != nil {
		return err
	}
	if b {
		_, err := ip.execStmt(n.Children[1])
		return err
	}
	if len(n.Children) > 2 {
		_, err := ip.execStmt(n.Children[2])
		return err
	}
	return nil
}

// runLoopBody executes one iteration of a loop body, reporting whether the
// enclosing loop should stop (a break was seen, or an unhandled error/return
// signal propagates further up) and any error the caller must forward.
func (ip *Interp) runLoopBody(body *ast.Node) (stop bool, err error) {
	_, err = ip.execStmt(body)
	if err == nil {
		return false, nil
	}
	if sig, ok := asSignal(err); ok {
		switch sig.cause {
		case causeBreak:
			return true, nil
		case causeNext:
			return false, nil
		case causeReturn:
			return true, err
		}
	}
	return true, err
}

func (ip *Interp) execWhile(n *ast.Node) error {
	cond, body := n.Children[0], n.Children[1]
	for {
		c, err := ip.eval(cond)
		if err != nil {
			return err
		}
		b, err := ip.conditionTrue(c)
		if err != nil {
			return err
		}
		if !b {
			return nil
		}
		stop, err := ip.runLoopBody(body)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

func (ip *Interp) execDoWhile(n *ast.Node) error {
	body, cond := n.Children[0], n.Children[1]
	for {
		stop, err := ip.runLoopBody(body)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
		c, err := ip.eval(cond)
		if err != nil {
			return err
		}
		b, err := ip.conditionTrue(c)
		if err != nil {
			return err
		}
		if !b {
			return nil
		}
	}
}

// execFor iterates over the vector produced by the loop's iterable
// expression, binding the loop variable element-by-element with the
// symbol table's no-copy setter (spec §4.6: "using the no-copy setter for
// speed") since the induction variable is rebound wholesale every
// iteration and never aliased by anything the previous iteration's body
// could have retained a reference to.
func (ip *Interp) execFor(n *ast.Node) error {
	idNode, iterableNode, body := n.Children[0], n.Children[1], n.Children[2]
	iterable, err := ip.eval(iterableNode)
	if err != nil {
		return err
	}
	id := ip.names.Intern(idNode.Root.Text)
	for i := 0; i < iterable.Count(); i++ {
		elem, err := iterable.GetValueAtIndex(i, ip.values)
		if err != nil {
			return err
		}
		if err := ip.scope.SetValueForSymbolNoCopy(id, elem, ip.names, ip.stream); err != nil {
			return err
		}
		stop, err := ip.runLoopBody(body)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}
