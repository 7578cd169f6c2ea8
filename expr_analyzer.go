package ruc

import "math"

// Annotation records what "having an operand" currently means: a
// bare identifier not yet committed to a read or a write, a computed
// address sitting on top of the evaluation stack, or a plain value.
// Spec §9's redesign note asks for the operator/operand-type/
// annotation stacks to collapse into one; recursive-descent
// precedence climbing does that for free, since the Go call stack
// already holds exactly one operand record per pending level and
// there is never a separate parallel stack to keep in sync.
type Annotation int

const (
	AnnVal Annotation = iota
	AnnAddr
	AnnIdent
)

// operand is that single aggregate record: a mode, what kind of
// reference it currently is, and (for AnnIdent operands) enough to
// either patch the tentative TIdent node once we learn how it's used,
// or re-emit a fresh load of the same slot for a compound assignment.
type operand struct {
	mode      int
	ann       Annotation
	patchIdx  int // valid when ann == AnnIdent: index of the emitted TIdent node
	isIdent   bool
	identDisp int
}

// toVal materializes op into a plain value on top of the evaluation
// stack: a tentative TIdent node is patched in place to a load, a
// pending address has an explicit dereference appended after it, and
// an operand that's already a value is left untouched.
func (a *Analyzer) toVal(op *operand) {
	switch op.ann {
	case AnnIdent:
		tag := TIdenttoval
		if op.mode == LFloat {
			tag = TIdenttovald
		}
		a.tree.Set(op.patchIdx, int(tag))
		op.ann = AnnVal
	case AnnAddr:
		tag := TAddrtoval
		if op.mode == LFloat {
			tag = TAddrtovald
		}
		a.tree.EmitTag(tag)
		op.ann = AnnVal
	}
}

// toValForBinaryOperand materializes op the same way toVal does, then
// reserves a trailing NOP slot a binary combine can later patch into
// an int->float widening conversion once the other operand's type is
// known. Left unpatched, the NOP is a true no-op: the tree validator
// already has to special-case NOP inside an expression run for
// exactly this reason (see skipExpression), which is what grounds
// this as the placeholder mechanism rather than inventing a new one.
func (a *Analyzer) toValForBinaryOperand(op *operand) int {
	a.toVal(op)
	return a.tree.EmitTag(NOP)
}

// toAddr materializes op into an address on top of the evaluation
// stack, for use as an lvalue (assignment target, &, struct base).
func (a *Analyzer) toAddr(op *operand) error {
	switch op.ann {
	case AnnIdent:
		a.tree.Set(op.patchIdx, int(TIdenttoaddr))
		op.ann = AnnAddr
		return nil
	case AnnAddr:
		return nil
	default:
		return errNotLValue
	}
}

var errNotLValue = &notLValueError{}

type notLValueError struct{}

func (*notLValueError) Error() string { return "not an lvalue" }

// parseExpr parses one full expression and closes it with TExprend,
// the terminator every statement-level expression context (spec §4.8)
// expects. Nothing below this wraps its own TExprend: only a
// complete, statement-level expression does.
func (a *Analyzer) parseExpr() (operand, error) {
	op, err := a.parseAssignment()
	if err != nil {
		return op, err
	}
	a.tree.EmitTag(TExprend)
	return op, nil
}

func compoundBaseOp(assignOp TokenTag) TokenTag {
	switch assignOp {
	case TagPlusEq:
		return TagPlus
	case TagMinusEq:
		return TagMinus
	case TagStarEq:
		return TagStar
	case TagSlashEq:
		return TagSlash
	case TagPercentEq:
		return TagPercent
	case TagShlEq:
		return TagShl
	case TagShrEq:
		return TagShr
	case TagAmpEq:
		return TagAmp
	case TagPipeEq:
		return TagPipe
	case TagCaretEq:
		return TagCaret
	}
	return TagAssign
}

func (a *Analyzer) parseAssignment() (operand, error) {
	left, err := a.parseTernary()
	if err != nil {
		return left, err
	}
	if !a.cur.Tag.IsAssignOp() {
		return left, nil
	}
	opTok := a.cur
	a.advance()

	if err := a.toAddr(&left); err != nil {
		return left, a.report(ErrParseNotLValue, opTok.Span, "left side of assignment is not assignable")
	}

	if opTok.Tag != TagAssign {
		if !left.isIdent {
			return left, a.report(ErrParseTypeMismatch, opTok.Span,
				"compound assignment is only supported on a plain variable")
		}
		tag := TIdenttoval
		if left.mode == LFloat {
			tag = TIdenttovald
		}
		a.tree.EmitTag(tag)
		a.tree.EmitArg(left.identDisp)
	}

	right, err := a.parseAssignment()
	if err != nil {
		return right, err
	}
	a.toVal(&right)

	if left.mode != right.mode {
		if a.modes.IsNumeric(left.mode) && a.modes.IsNumeric(right.mode) && left.mode == LFloat {
			a.tree.EmitLexeme(TagConvFloat)
		} else if a.modes.IsNumeric(left.mode) && right.mode == LFloat {
			return left, a.report(ErrParseTypeMismatch, opTok.Span, "cannot implicitly narrow a float to an int")
		} else if left.mode != right.mode {
			return left, a.report(ErrParseTypeMismatch, opTok.Span, "incompatible types in assignment")
		}
	}

	if opTok.Tag != TagAssign {
		a.tree.EmitLexeme(compoundBaseOp(opTok.Tag))
	}
	a.tree.EmitLexeme(TagAssign)
	return operand{mode: left.mode, ann: AnnVal}, nil
}

func (a *Analyzer) parseTernary() (operand, error) {
	cond, err := a.parseLogicalOr()
	if err != nil {
		return cond, err
	}
	if !a.at(TagQuestion) {
		return cond, nil
	}
	a.advance()
	a.toVal(&cond)

	thenOp, err := a.parseAssignment()
	if err != nil {
		return thenOp, err
	}
	a.toVal(&thenOp)
	if _, err := a.expect(TagColon, "`:`"); err != nil {
		return thenOp, err
	}
	elseOp, err := a.parseAssignment()
	if err != nil {
		return elseOp, err
	}
	a.toVal(&elseOp)

	resultMode := thenOp.mode
	if thenOp.mode != elseOp.mode {
		a.report(ErrParseTypeMismatch, a.cur.Span, "conditional operator branches have different types")
	}
	a.tree.EmitTag(TCondexpr)
	return operand{mode: resultMode, ann: AnnVal}, nil
}

// combineBinary reduces left and an operator-supplied right-hand side
// into one operand, inserting an int->float widening conversion on
// whichever side needs it once both sides are known.
func (a *Analyzer) combineBinary(opTok Token, left operand, parseRHS func() (operand, error), allowFloat, boolResult bool) (operand, error) {
	leftSlot := a.toValForBinaryOperand(&left)
	right, err := parseRHS()
	if err != nil {
		return right, err
	}
	rightSlot := a.toValForBinaryOperand(&right)

	if !a.modes.IsNumeric(left.mode) || !a.modes.IsNumeric(right.mode) {
		return operand{mode: LInt, ann: AnnVal}, a.report(ErrParseTypeMismatch, opTok.Span, "operator requires numeric operands")
	}

	resultMode := LInt
	if left.mode == LFloat || right.mode == LFloat {
		if !allowFloat {
			return operand{mode: LInt, ann: AnnVal}, a.report(ErrParseTypeMismatch, opTok.Span, "operator does not accept floating-point operands")
		}
		if left.mode != LFloat {
			a.tree.Set(leftSlot, int(TagConvFloat))
		}
		if right.mode != LFloat {
			a.tree.Set(rightSlot, int(TagConvFloat))
		}
		resultMode = LFloat
	}

	a.tree.EmitLexeme(opTok.Tag)
	if boolResult {
		resultMode = LInt
	}
	return operand{mode: resultMode, ann: AnnVal}, nil
}

func (a *Analyzer) parseLogicalOr() (operand, error) {
	left, err := a.parseLogicalAnd()
	if err != nil {
		return left, err
	}
	for a.at(TagOrOr) {
		opTok := a.cur
		a.advance()
		left, err = a.combineBinary(opTok, left, a.parseLogicalAnd, false, true)
		if err != nil {
			return left, err
		}
	}
	return left, nil
}

func (a *Analyzer) parseLogicalAnd() (operand, error) {
	left, err := a.parseBitOr()
	if err != nil {
		return left, err
	}
	for a.at(TagAndAnd) {
		opTok := a.cur
		a.advance()
		left, err = a.combineBinary(opTok, left, a.parseBitOr, false, true)
		if err != nil {
			return left, err
		}
	}
	return left, nil
}

func (a *Analyzer) parseBitOr() (operand, error) {
	left, err := a.parseBitXor()
	if err != nil {
		return left, err
	}
	for a.at(TagPipe) {
		opTok := a.cur
		a.advance()
		left, err = a.combineBinary(opTok, left, a.parseBitXor, false, false)
		if err != nil {
			return left, err
		}
	}
	return left, nil
}

func (a *Analyzer) parseBitXor() (operand, error) {
	left, err := a.parseBitAnd()
	if err != nil {
		return left, err
	}
	for a.at(TagCaret) {
		opTok := a.cur
		a.advance()
		left, err = a.combineBinary(opTok, left, a.parseBitAnd, false, false)
		if err != nil {
			return left, err
		}
	}
	return left, nil
}

func (a *Analyzer) parseBitAnd() (operand, error) {
	left, err := a.parseEquality()
	if err != nil {
		return left, err
	}
	for a.at(TagAmp) {
		opTok := a.cur
		a.advance()
		left, err = a.combineBinary(opTok, left, a.parseEquality, false, false)
		if err != nil {
			return left, err
		}
	}
	return left, nil
}

func (a *Analyzer) parseEquality() (operand, error) {
	left, err := a.parseRelational()
	if err != nil {
		return left, err
	}
	for a.at(TagEq) || a.at(TagNe) {
		opTok := a.cur
		a.advance()
		left, err = a.combineBinary(opTok, left, a.parseRelational, true, true)
		if err != nil {
			return left, err
		}
	}
	return left, nil
}

func (a *Analyzer) parseRelational() (operand, error) {
	left, err := a.parseShift()
	if err != nil {
		return left, err
	}
	for a.at(TagLt) || a.at(TagGt) || a.at(TagLe) || a.at(TagGe) {
		opTok := a.cur
		a.advance()
		left, err = a.combineBinary(opTok, left, a.parseShift, true, true)
		if err != nil {
			return left, err
		}
	}
	return left, nil
}

func (a *Analyzer) parseShift() (operand, error) {
	left, err := a.parseAdditive()
	if err != nil {
		return left, err
	}
	for a.at(TagShl) || a.at(TagShr) {
		opTok := a.cur
		a.advance()
		left, err = a.combineBinary(opTok, left, a.parseAdditive, false, false)
		if err != nil {
			return left, err
		}
	}
	return left, nil
}

func (a *Analyzer) parseAdditive() (operand, error) {
	left, err := a.parseMultiplicative()
	if err != nil {
		return left, err
	}
	for a.at(TagPlus) || a.at(TagMinus) {
		opTok := a.cur
		a.advance()
		left, err = a.combineBinary(opTok, left, a.parseMultiplicative, true, false)
		if err != nil {
			return left, err
		}
	}
	return left, nil
}

func (a *Analyzer) parseMultiplicative() (operand, error) {
	left, err := a.parseUnary()
	if err != nil {
		return left, err
	}
	for a.at(TagStar) || a.at(TagSlash) || a.at(TagPercent) {
		opTok := a.cur
		a.advance()
		allowFloat := opTok.Tag != TagPercent
		left, err = a.combineBinary(opTok, left, a.parseUnary, allowFloat, false)
		if err != nil {
			return left, err
		}
	}
	return left, nil
}

func (a *Analyzer) parseUnary() (operand, error) {
	switch a.cur.Tag {
	case TagPlus, TagMinus:
		tag := TagUnaryPlus
		if a.cur.Tag == TagMinus {
			tag = TagUnaryMinus
		}
		a.advance()
		op, err := a.parseUnary()
		if err != nil {
			return op, err
		}
		a.toVal(&op)
		if !a.modes.IsNumeric(op.mode) {
			return op, a.report(ErrParseTypeMismatch, a.cur.Span, "unary +/- requires a numeric operand")
		}
		a.tree.EmitLexeme(tag)
		return operand{mode: op.mode, ann: AnnVal}, nil

	case TagBang:
		a.advance()
		op, err := a.parseUnary()
		if err != nil {
			return op, err
		}
		a.toVal(&op)
		a.tree.EmitLexeme(TagUnaryNot)
		return operand{mode: LInt, ann: AnnVal}, nil

	case TagTilde:
		a.advance()
		op, err := a.parseUnary()
		if err != nil {
			return op, err
		}
		a.toVal(&op)
		if op.mode != LInt && op.mode != LChar {
			return op, a.report(ErrParseTypeMismatch, a.cur.Span, "`~` requires an integer operand")
		}
		a.tree.EmitLexeme(TagUnaryBitNot)
		return operand{mode: LInt, ann: AnnVal}, nil

	case TagAmp:
		a.advance()
		op, err := a.parseUnary()
		if err != nil {
			return op, err
		}
		if err := a.toAddr(&op); err != nil {
			return op, a.report(ErrParseNotLValue, a.cur.Span, "cannot take the address of this expression")
		}
		ptrMode := a.modes.InstallPointer(op.mode)
		return operand{mode: ptrMode, ann: AnnVal}, nil

	case TagStar:
		a.advance()
		op, err := a.parseUnary()
		if err != nil {
			return op, err
		}
		if !a.modes.IsPointer(op.mode) {
			return op, a.report(ErrParseTypeMismatch, a.cur.Span, "`*` requires a pointer operand")
		}
		pointee := a.modes.PointeeMode(op.mode)
		a.toVal(&op)
		return operand{mode: pointee, ann: AnnAddr}, nil

	case TagInc, TagDec:
		tag := TagPreInc
		if a.cur.Tag == TagDec {
			tag = TagPreDec
		}
		a.advance()
		op, err := a.parseUnary()
		if err != nil {
			return op, err
		}
		if err := a.toAddr(&op); err != nil {
			return op, a.report(ErrParseNotLValue, a.cur.Span, "operand of ++/-- must be a variable")
		}
		a.tree.EmitLexeme(tag)
		return operand{mode: op.mode, ann: AnnVal}, nil

	default:
		return a.parsePostfix()
	}
}

func (a *Analyzer) parsePostfix() (operand, error) {
	op, err := a.parsePrimary()
	if err != nil {
		return op, err
	}
	for {
		switch a.cur.Tag {
		case TagDot, TagArrow:
			arrow := a.cur.Tag == TagArrow
			a.advance()
			nameTok, err := a.expect(TagIdent, "a field name")
			if err != nil {
				return op, err
			}
			if arrow {
				if !a.modes.IsPointer(op.mode) {
					return op, a.report(ErrParseTypeMismatch, nameTok.Span, "`->` requires a pointer operand")
				}
				a.toVal(&op)
				op.mode = a.modes.PointeeMode(op.mode)
				op.ann = AnnAddr
			} else if err := a.toAddr(&op); err != nil {
				return op, a.report(ErrParseNotLValue, nameTok.Span, "`.` requires an addressable struct")
			}
			if !a.modes.IsStruct(op.mode) {
				return op, a.report(ErrParseTypeMismatch, nameTok.Span, "field access on a non-struct value")
			}
			fieldMode, fieldDisp, ok := a.modes.FindField(op.mode, nameTok.ReprIndex)
			if !ok {
				return op, a.report(ErrParseUndeclared, nameTok.Span, "no such field `"+a.repr.spellingString(nameTok.ReprIndex)+"`")
			}
			a.tree.EmitTag(TSelect)
			a.tree.EmitArg(fieldDisp)
			op = operand{mode: fieldMode, ann: AnnAddr}

		case TagLBracket:
			a.advance()
			if !a.modes.IsArray(op.mode) && !a.modes.IsPointer(op.mode) {
				return op, a.report(ErrParseTypeMismatch, a.cur.Span, "subscript requires an array or pointer")
			}
			var elemMode int
			if a.modes.IsArray(op.mode) {
				elemMode = a.modes.ElementMode(op.mode)
			} else {
				elemMode = a.modes.PointeeMode(op.mode)
			}
			elemSize := a.modes.WordSize(elemMode)
			if err := a.toAddr(&op); err != nil {
				return op, a.report(ErrParseNotLValue, a.cur.Span, "subscript base is not addressable")
			}
			a.tree.EmitTag(TSlice)
			a.tree.EmitArg(elemSize)
			idxOp, err := a.parseAssignment()
			if err != nil {
				return idxOp, err
			}
			a.toVal(&idxOp)
			if _, err := a.expect(TagRBracket, "`]`"); err != nil {
				return idxOp, err
			}
			op = operand{mode: elemMode, ann: AnnAddr}

		case TagLParen:
			a.advance()
			if !a.modes.IsFunction(op.mode) {
				return op, a.report(ErrParseTypeMismatch, a.cur.Span, "call target is not a function")
			}
			calleeMode := op.mode
			argCount := 0
			if !a.at(TagRParen) {
				for {
					argOp, err := a.parseAssignment()
					if err != nil {
						return argOp, err
					}
					a.toVal(&argOp)
					argCount++
					if _, ok := a.accept(TagComma); !ok {
						break
					}
				}
			}
			if _, err := a.expect(TagRParen, "`)`"); err != nil {
				return op, err
			}
			if argCount != a.modes.ParamCount(calleeMode) {
				a.report(ErrParseTypeMismatch, a.cur.Span, "wrong number of arguments in call")
			}
			if argCount == 0 {
				a.tree.EmitTag(TCall1)
			} else {
				a.tree.EmitTag(TCall2)
				a.tree.EmitArg(argCount)
			}
			op = operand{mode: a.modes.ReturnMode(calleeMode), ann: AnnVal}

		case TagInc, TagDec:
			tag := TagPostInc
			if a.cur.Tag == TagDec {
				tag = TagPostDec
			}
			a.advance()
			if err := a.toAddr(&op); err != nil {
				return op, a.report(ErrParseNotLValue, a.cur.Span, "operand of ++/-- must be a variable")
			}
			a.tree.EmitLexeme(tag)
			op = operand{mode: op.mode, ann: AnnVal}

		default:
			return op, nil
		}
	}
}

// parseSliceChain handles the first `[` following a bare identifier,
// which the tree encodes with the ident-ref folded directly into
// TSliceident instead of a separate TIdent node (spec §4.8's table
// distinguishes TSliceident from TSlice for exactly this reason).
func (a *Analyzer) parseSliceChain(mode, disp int) (operand, error) {
	a.advance() // consume '['
	var elemMode int
	if a.modes.IsArray(mode) {
		elemMode = a.modes.ElementMode(mode)
	} else if a.modes.IsPointer(mode) {
		elemMode = a.modes.PointeeMode(mode)
	} else {
		return operand{}, a.report(ErrParseTypeMismatch, a.cur.Span, "subscript requires an array or pointer")
	}
	elemSize := a.modes.WordSize(elemMode)
	a.tree.EmitTag(TSliceident)
	a.tree.EmitArg(disp)
	a.tree.EmitArg(elemSize)

	idxOp, err := a.parseAssignment()
	if err != nil {
		return idxOp, err
	}
	a.toVal(&idxOp)
	if _, err := a.expect(TagRBracket, "`]`"); err != nil {
		return idxOp, err
	}
	return operand{mode: elemMode, ann: AnnAddr}, nil
}

func (a *Analyzer) parsePrimary() (operand, error) {
	switch a.cur.Tag {
	case TagIdent:
		tok := a.cur
		a.advance()
		identIdx, ok := a.idents.Resolve(tok.ReprIndex)
		if !ok {
			a.report(ErrParseUndeclared, tok.Span, "undeclared identifier `"+a.repr.spellingString(tok.ReprIndex)+"`")
			return operand{mode: LInt, ann: AnnVal}, nil
		}
		entry := a.idents.Entry(identIdx)
		if a.at(TagLBracket) {
			return a.parseSliceChain(entry.ModeIndex, entry.Displacement)
		}
		idx := a.tree.EmitTag(TIdent)
		a.tree.EmitArg(entry.Displacement)
		return operand{mode: entry.ModeIndex, ann: AnnIdent, patchIdx: idx, isIdent: true, identDisp: entry.Displacement}, nil

	case TagIntLit:
		tok := a.cur
		a.advance()
		a.tree.EmitTag(TConst)
		a.tree.EmitArg(int(tok.IntVal))
		return operand{mode: LInt, ann: AnnVal}, nil

	case TagCharLit:
		tok := a.cur
		a.advance()
		a.tree.EmitTag(TConst)
		a.tree.EmitArg(int(tok.CharVal))
		return operand{mode: LChar, ann: AnnVal}, nil

	case TagFloatLit:
		tok := a.cur
		a.advance()
		bits := math.Float64bits(tok.FloatVal)
		a.tree.EmitTag(TConstd)
		a.tree.EmitArg(int(int32(bits)))
		a.tree.EmitArg(int(int32(bits >> 32)))
		return operand{mode: LFloat, ann: AnnVal}, nil

	case TagStringLit:
		tok := a.cur
		a.advance()
		a.tree.EmitTag(TString)
		a.tree.EmitArg(len(tok.StrBytes))
		for _, b := range tok.StrBytes {
			a.tree.EmitArg(int(b))
		}
		return operand{mode: a.modes.InstallArray(LChar, len(tok.StrBytes)), ann: AnnAddr}, nil

	case TagLParen:
		a.advance()
		inner, err := a.parseAssignment()
		if err != nil {
			return inner, err
		}
		if _, err := a.expect(TagRParen, "`)`"); err != nil {
			return inner, err
		}
		return inner, nil

	default:
		return operand{mode: LInt, ann: AnnVal}, a.errExpected("an expression")
	}
}
