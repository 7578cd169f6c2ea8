package ruc

import "fmt"

// Validate walks the whole tree verifying the structural
// well-formedness invariants of spec §4.9 / §8: every TBegin balances
// a TEnd, every TStructbeg balances a TStructend, every expression
// subtree ends in exactly one TExprend, and the tree as a whole ends
// in TEnd. It mirrors the original compiler's node_get_root /
// skip_operator walk (SPEC_FULL.md, grounded on
// original_source/libs/compiler/tree.c).
func (t *Tree) Validate() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed tree: %v", r)
		}
	}()
	i := 0
	for i < t.Len() && t.TagAt(i) != TEnd {
		next, err := t.skipOperator(i)
		if err != nil {
			return err
		}
		i = next
	}
	if i >= t.Len() || t.TagAt(i) != TEnd {
		return fmt.Errorf("tree does not terminate in TEnd")
	}
	return nil
}

// skipOperator consumes one statement-level node starting at i and
// returns the index right after it.
func (t *Tree) skipOperator(i int) (int, error) {
	if i >= t.Len() {
		return 0, fmt.Errorf("unexpected end of tree while reading an operator")
	}
	tag := t.TagAt(i)
	i++

	switch tag {
	case TFuncdef:
		i += 2 // ident-ref, body-offset
		return t.skipOperator(i)

	case TDeclid:
		i += 7 // ident-ref, elem-mode, dim, all, usual, proc-flag, user-flag
		return t.skipExpression(i, true)

	case TDeclarr:
		n := t.At(i)
		i++
		for j := 0; j < n; j++ {
			next, err := t.skipExpression(i, true)
			if err != nil {
				return 0, err
			}
			i = next
		}
		return t.skipOperator(i)

	case TStructbeg:
		i++ // size
		for i < t.Len() && t.TagAt(i) != TStructend {
			next, err := t.skipOperator(i)
			if err != nil {
				return 0, err
			}
			i = next
		}
		if i >= t.Len() {
			return 0, fmt.Errorf("unterminated struct body starting before offset %d", i)
		}
		return i + 1, nil

	case TBegin:
		for i < t.Len() && t.TagAt(i) != TEnd {
			next, err := t.skipOperator(i)
			if err != nil {
				return 0, err
			}
			i = next
		}
		if i >= t.Len() {
			return 0, fmt.Errorf("unterminated block starting before offset %d", i)
		}
		return i + 1, nil

	case TCreatedirectc:
		for i < t.Len() && t.TagAt(i) != TExitc {
			next, err := t.skipOperator(i)
			if err != nil {
				return 0, err
			}
			i = next
		}
		if i >= t.Len() {
			return 0, fmt.Errorf("unterminated thread block starting before offset %d", i)
		}
		return i + 1, nil

	case TPrintid, TGoto:
		return i + 1, nil // ident-ref

	case TLabel:
		i++ // ident-ref
		return t.skipOperator(i)

	case TIf:
		elseOffset := t.At(i)
		i++
		next, err := t.skipExpression(i, true)
		if err != nil {
			return 0, err
		}
		i = next
		next, err = t.skipOperator(i)
		if err != nil {
			return 0, err
		}
		i = next
		if elseOffset != 0 {
			next, err = t.skipOperator(elseOffset)
			if err != nil {
				return 0, err
			}
			i = next
		}
		return i, nil

	case TFor:
		varOff, condOff, incOff := t.At(i), t.At(i+1), t.At(i+2)
		bodyOff := t.At(i + 3)
		for _, off := range []int{varOff, condOff, incOff} {
			if off != 0 {
				if _, err := t.skipExpression(off, true); err != nil {
					return 0, err
				}
			}
		}
		return t.skipOperator(bodyOff)

	case TWhile, TSwitch, TCase:
		next, err := t.skipExpression(i, true)
		if err != nil {
			return 0, err
		}
		return t.skipOperator(next)

	case TDo:
		next, err := t.skipOperator(i)
		if err != nil {
			return 0, err
		}
		return t.skipExpression(next, true)

	case TDefault:
		return t.skipOperator(i)

	case TReturnval:
		i++ // type
		return t.skipExpression(i, true)

	case TReturnvoid, TBreak, TContinue, NOP:
		return i, nil

	case TGetid:
		return i + 1, nil

	case TPrintf:
		next, err := t.skipExpression(i, true)
		if err != nil {
			return 0, err
		}
		i = next
		n := t.At(i)
		i++
		for j := 0; j < n; j++ {
			next, err := t.skipExpression(i, true)
			if err != nil {
				return 0, err
			}
			i = next
		}
		return i, nil

	default:
		if tag.IsExpressionTag() {
			// An expression statement: a TExprend-terminated postfix run.
			return t.skipExpression(i-1, true)
		}
		return 0, fmt.Errorf("unknown operator tag %d at offset %d", tag, i-1)
	}
}

// skipExpression consumes one expression subtree starting at i. When
// inBlock is true, i is expected to be the start of a
// TExprend-terminated run of postfix nodes (a full expression); when
// false, i is the start of a single postfix node inside such a run.
func (t *Tree) skipExpression(i int, inBlock bool) (int, error) {
	if i >= t.Len() {
		return 0, fmt.Errorf("unexpected end of tree while reading an expression")
	}

	if t.TagAt(i) == NOP && !inBlock {
		return i + 1, nil
	}

	if t.TagAt(i).IsOperatorTag() {
		if !inBlock {
			return 0, fmt.Errorf("statement tag %d found where an expression was expected at %d", t.At(i), i)
		}
		return i, nil
	}

	if inBlock {
		for t.TagAt(i) != TExprend {
			next, err := t.skipExpression(i, false)
			if err != nil {
				return 0, err
			}
			i = next
		}
		return i + 1, nil
	}

	tag := t.TagAt(i)
	i++

	switch tag {
	case TBeginit, TStructinit:
		n := t.At(i)
		i++
		for j := 0; j < n; j++ {
			next, err := t.skipExpression(i, true)
			if err != nil {
				return 0, err
			}
			i = next
		}
		return i, nil

	case TPrint:
		return i + 1, nil

	case TCondexpr:
		return i, nil
	case TSelect:
		return i + 1, nil

	case TAddrtoval, TAddrtovald:
		return i, nil

	case TIdenttoval, TIdenttovald, TIdenttoaddr, TIdent:
		return i + 1, nil

	case TConst:
		return i + 1, nil
	case TConstd:
		return i + 2, nil

	case TString:
		n := t.At(i)
		i++
		return i + n, nil
	case TStringd:
		n := t.At(i)
		i++
		return i + n*2, nil

	// The index expression is not TExprend-terminated of its own: its
	// nodes follow as part of the enclosing run.
	case TSliceident:
		return i + 2, nil // ident-disp, elem-size

	case TSlice:
		return i + 1, nil // elem-size

	case TCall1:
		return i, nil
	case TCall2:
		return i + 1, nil

	case TExprend:
		if inBlock {
			return 0, fmt.Errorf("unexpected TExprend at %d", i-1)
		}
		return i - 1, nil

	default:
		if TokenTag(tag) >= firstLexemeTag {
			// A lexeme (operator) node: scan forward until the next
			// expression node or a statement boundary, as the
			// original compiler's is_lexeme branch does.
			for i < t.Len() && !t.TagAt(i).IsExpressionTag() {
				if t.TagAt(i).IsOperatorTag() {
					return i, nil
				}
				i++
			}
			return i, nil
		}
		return 0, fmt.Errorf("unknown expression tag %d at offset %d", tag, i-1)
	}
}
