package ruc

// parseProgram consumes the whole source as a sequence of top-level
// declarations (spec §4.7): type definitions, global variables and
// function definitions, up to EOF, then closes the tree with the
// program-terminating TEnd.
func (a *Analyzer) parseProgram() {
	for !a.at(TagEOF) {
		if err := a.parseExternalDecl(); err != nil {
			a.syncToStatementBoundary()
		}
	}
	a.tree.EmitTag(TEnd)
}

func (a *Analyzer) parseExternalDecl() error {
	baseMode, err := a.parseTypeSpecifier()
	if err != nil {
		return err
	}
	if a.at(TagSemi) {
		// A bare `struct tag { ... };` with no variable declared.
		a.advance()
		return nil
	}

	for {
		mode, nameTok, err := a.parseDeclaratorHead(baseMode)
		if err != nil {
			return err
		}

		if a.at(TagLParen) {
			return a.parseFunctionDef(mode, nameTok)
		}

		if err := a.finishVarDecl(mode, nameTok, true, false); err != nil {
			return err
		}
		if _, ok := a.accept(TagComma); !ok {
			break
		}
	}
	_, err = a.expect(TagSemi, "`;`")
	return err
}

// parseTypeSpecifier parses int/float/char/void or a struct
// type (spec §4.7's declaration grammar).
func (a *Analyzer) parseTypeSpecifier() (int, error) {
	switch a.cur.Tag {
	case KwInt:
		a.advance()
		return LInt, nil
	case KwFloat:
		a.advance()
		return LFloat, nil
	case KwChar:
		a.advance()
		return LChar, nil
	case KwVoid:
		a.advance()
		return LVoid, nil
	case KwStruct:
		return a.parseStructSpecifier()
	default:
		return 0, a.errExpected("a type")
	}
}

func (a *Analyzer) parseStructSpecifier() (int, error) {
	a.advance() // `struct`
	tagTok, err := a.expect(TagIdent, "a struct tag")
	if err != nil {
		return 0, err
	}

	if !a.at(TagLBrace) {
		idx, ok := a.idents.Resolve(tagTok.ReprIndex)
		if !ok || a.idents.Entry(idx).Kind != KindStructTag {
			return 0, a.report(ErrParseUndeclared, tagTok.Span, "undeclared struct tag `"+a.repr.spellingString(tagTok.ReprIndex)+"`")
		}
		return a.idents.Entry(idx).ModeIndex, nil
	}

	a.advance() // `{`
	a.tree.EmitTag(TStructbeg)
	sizeSlot := a.tree.EmitArg(0)

	var fields []structField
	totalWords := 0
	for !a.at(TagRBrace) {
		fieldBase, err := a.parseTypeSpecifier()
		if err != nil {
			return 0, err
		}
		for {
			fieldMode, fieldNameTok, err := a.parseDeclaratorHead(fieldBase)
			if err != nil {
				return 0, err
			}
			words := a.modes.WordSize(fieldMode)
			fields = append(fields, structField{Mode: fieldMode, NameRepr: fieldNameTok.ReprIndex})
			a.tree.EmitTag(TDeclid)
			a.tree.EmitArg(totalWords)
			a.tree.EmitArg(fieldMode)
			a.tree.EmitArg(words)
			a.tree.EmitArg(0)
			a.tree.EmitArg(1)
			a.tree.EmitArg(0)
			a.tree.EmitArg(0)
			a.tree.EmitTag(TExprend)
			totalWords += words
			if _, ok := a.accept(TagComma); !ok {
				break
			}
		}
		if _, err := a.expect(TagSemi, "`;`"); err != nil {
			return 0, err
		}
	}
	if _, err := a.expect(TagRBrace, "`}`"); err != nil {
		return 0, err
	}
	a.tree.Set(sizeSlot, totalWords)
	a.tree.EmitTag(TStructend)

	mode := a.modes.InstallStruct(totalWords, fields)
	if _, err := a.idents.Declare(tagTok.ReprIndex, mode, KindStructTag, 0); err != nil {
		return 0, a.report(ErrParseRedeclaration, tagTok.Span, "struct tag `"+a.repr.spellingString(tagTok.ReprIndex)+"` already declared")
	}
	return mode, nil
}

// parseDeclaratorHead parses the pointer/array shape wrapped around a
// name (spec §4.7): `*p`, `a[10]`, `*a[4]`, and so on. It returns the
// fully derived mode and the name token, without consuming an
// initializer, a parameter list, or the terminating punctuation.
func (a *Analyzer) parseDeclaratorHead(baseMode int) (int, Token, error) {
	mode := baseMode
	for a.at(TagStar) {
		a.advance()
		mode = a.modes.InstallPointer(mode)
	}
	// `main` is a keyword in the manifest but still names a function.
	nameTok, ok := a.accept(KwMain)
	var err error
	if !ok {
		nameTok, err = a.expect(TagIdent, "a declarator name")
	}
	if err != nil {
		return 0, nameTok, err
	}
	for a.at(TagLBracket) {
		a.advance()
		if !a.at(TagIntLit) {
			return 0, nameTok, a.errExpected("a constant array size")
		}
		n := a.cur.IntVal
		a.advance()
		if _, err := a.expect(TagRBracket, "`]`"); err != nil {
			return 0, nameTok, err
		}
		mode = a.modes.InstallArray(mode, int(n))
	}
	return mode, nameTok, nil
}

// arrayDims unwraps mode's nested array layers into their declared
// element counts, innermost bracket first becoming the innermost
// wrap, so the returned slice reads in source declarator order:
// `a[2][3]` wraps as Array(Array(LInt,2),3) and unwraps to [2,3].
func arrayDims(modes *modeTab, mode int) []int {
	var dims []int
	for modes.IsArray(mode) {
		dims = append(dims, modes.ArrayCount(mode))
		mode = modes.ElementMode(mode)
	}
	for i, j := 0, len(dims)-1; i < j; i, j = i+1, j-1 {
		dims[i], dims[j] = dims[j], dims[i]
	}
	return dims
}

// finishVarDecl declares nameTok at mode, emits its TDeclarr wrapper
// (if mode is an array) or goes straight to TDeclid, followed by
// whatever initializer follows. isGlobal/isParam only affect the
// user-flag/proc-flag bookkeeping TDeclid carries for the code
// generator; scoping itself comes from identTab.InScope().
func (a *Analyzer) finishVarDecl(mode int, nameTok Token, isGlobal, isParam bool) error {
	words := a.declWords(mode, nameTok)
	identIdx, err := a.idents.Declare(nameTok.ReprIndex, mode, KindVar, words)
	if err != nil {
		return a.report(ErrParseRedeclaration, nameTok.Span, "`"+a.repr.spellingString(nameTok.ReprIndex)+"` is already declared in this scope")
	}
	disp := a.idents.Entry(identIdx).Displacement

	if dims := arrayDims(a.modes, mode); len(dims) > 0 {
		a.tree.EmitTag(TDeclarr)
		a.tree.EmitArg(len(dims))
		for _, d := range dims {
			a.tree.EmitTag(TConst)
			a.tree.EmitArg(d)
			a.tree.EmitTag(TExprend)
		}
	}

	hasInit := a.at(TagAssign)
	a.tree.EmitTag(TDeclid)
	a.tree.EmitArg(disp)
	a.tree.EmitArg(mode)
	a.tree.EmitArg(words)
	boolToInt := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}
	a.tree.EmitArg(boolToInt(hasInit))
	a.tree.EmitArg(1) // usual
	a.tree.EmitArg(boolToInt(isParam))
	a.tree.EmitArg(boolToInt(isGlobal))

	if hasInit {
		a.advance()
		if err := a.parseInitializer(mode); err != nil {
			return err
		}
	} else {
		a.tree.EmitTag(TExprend)
	}
	return nil
}

// declWords is nameTok's word count under mode. Array element counts
// are folded into mode itself by parseDeclaratorHead's InstallArray
// call, so WordSize already accounts for them; this is just a named
// seam for callers that declare storage from a resolved mode rather
// than walking a declarator.
func (a *Analyzer) declWords(mode int, nameTok Token) int {
	return a.modes.WordSize(mode)
}

// parseInitializer parses the right-hand side of a declarator's `=`:
// either a scalar expression, or a brace-enclosed list for an array
// or struct.
func (a *Analyzer) parseInitializer(mode int) error {
	if !a.at(TagLBrace) {
		op, err := a.parseAssignment()
		if err != nil {
			return err
		}
		a.toVal(&op)
		if op.mode != mode && !(a.modes.IsNumeric(op.mode) && a.modes.IsNumeric(mode)) {
			a.report(ErrParseTypeMismatch, a.cur.Span, "initializer type does not match the declared type")
		} else if op.mode != mode && mode == LFloat {
			a.tree.EmitLexeme(TagConvFloat)
		}
		a.tree.EmitTag(TExprend)
		return nil
	}

	a.advance() // `{`
	tag := TBeginit
	elemMode := mode
	if a.modes.IsStruct(mode) {
		tag = TStructinit
	} else if a.modes.IsArray(mode) {
		elemMode = a.modes.ElementMode(mode)
	}

	a.tree.EmitTag(tag)
	countSlot := a.tree.EmitArg(0)
	n := 0
	if !a.at(TagRBrace) {
		for {
			op, err := a.parseAssignment()
			if err != nil {
				return err
			}
			a.toVal(&op)
			if elemMode == LFloat && op.mode != LFloat {
				a.tree.EmitLexeme(TagConvFloat)
			}
			a.tree.EmitTag(TExprend)
			n++
			if _, ok := a.accept(TagComma); !ok {
				break
			}
		}
	}
	if _, err := a.expect(TagRBrace, "`}`"); err != nil {
		return err
	}
	a.tree.Set(countSlot, n)
	a.tree.EmitTag(TExprend)
	return nil
}

// parseFunctionDef parses a function's parameter list and body once
// parseExternalDecl has seen a declarator immediately followed by `(`.
func (a *Analyzer) parseFunctionDef(returnMode int, nameTok Token) error {
	a.advance() // `(`

	// Params are parsed before any scope is entered, so the function's
	// own name (declared right after) binds in the enclosing/global
	// scope and survives past this function's LeaveScope, instead of
	// being torn down as an overlay of a scope that's about to end.
	var paramModes []int
	type param struct {
		mode int
		tok  Token
	}
	var params []param
	if !a.at(TagRParen) {
		for {
			pm, err := a.parseTypeSpecifier()
			if err != nil {
				return err
			}
			pMode, pNameTok, err := a.parseDeclaratorHead(pm)
			if err != nil {
				return err
			}
			params = append(params, param{mode: pMode, tok: pNameTok})
			paramModes = append(paramModes, pMode)
			if _, ok := a.accept(TagComma); !ok {
				break
			}
		}
	}
	if _, err := a.expect(TagRParen, "`)`"); err != nil {
		return err
	}

	funcMode := a.modes.InstallFunction(returnMode, paramModes)
	identIdx, err := a.idents.Declare(nameTok.ReprIndex, funcMode, KindFunc, 1)
	if err != nil {
		return a.report(ErrParseRedeclaration, nameTok.Span, "function `"+a.repr.spellingString(nameTok.ReprIndex)+"` is already declared")
	}
	if a.repr.spellingString(nameTok.ReprIndex) == "main" {
		a.hadMain = true
	}

	a.idents.EnterScope()
	a.idents.BeginFunction()
	for _, p := range params {
		if _, err := a.idents.Declare(p.tok.ReprIndex, p.mode, KindParam, a.modes.WordSize(p.mode)); err != nil {
			a.report(ErrParseRedeclaration, p.tok.Span, "duplicate parameter name")
		}
	}

	a.labels = make(map[int]bool)
	a.gotos = make(map[int]Span)
	prevReturn := a.currentReturnMode
	a.currentReturnMode = returnMode

	funcdefIdx := a.tree.EmitTag(TFuncdef)
	a.tree.EmitArg(identIdx)
	bodySlot := a.tree.EmitArg(0)
	a.functions[identIdx] = funcdefIdx
	a.tree.Set(bodySlot, a.tree.Len())

	if err := a.parseBlock(); err != nil {
		a.idents.LeaveScope()
		return err
	}

	for repr, span := range a.gotos {
		if !a.labels[repr] {
			a.report(ErrParseLabelUndefined, span, "undefined label `"+a.repr.spellingString(repr)+"`")
		}
	}

	a.currentReturnMode = prevReturn
	a.idents.LeaveScope()
	return nil
}

func (a *Analyzer) parseBlock() error {
	if _, err := a.expect(TagLBrace, "`{`"); err != nil {
		return err
	}
	a.tree.EmitTag(TBegin)
	a.idents.EnterScope()

	for !a.at(TagRBrace) && !a.at(TagEOF) {
		if err := a.parseStatement(); err != nil {
			a.syncToStatementBoundary()
		}
	}

	a.idents.LeaveScope()
	if _, err := a.expect(TagRBrace, "`}`"); err != nil {
		return err
	}
	a.tree.EmitTag(TEnd)
	return nil
}

func (a *Analyzer) isTypeKeyword() bool {
	switch a.cur.Tag {
	case KwInt, KwFloat, KwChar, KwVoid, KwStruct:
		return true
	}
	return false
}

func (a *Analyzer) parseStatement() error {
	switch a.cur.Tag {
	case TagLBrace:
		return a.parseBlock()
	case KwIf:
		return a.parseIf()
	case KwWhile:
		return a.parseWhile()
	case KwDo:
		return a.parseDo()
	case KwFor:
		return a.parseFor()
	case KwSwitch:
		return a.parseSwitch()
	case KwCase:
		return a.parseCase()
	case KwDefault:
		return a.parseDefault()
	case KwBreak:
		return a.parseBreak()
	case KwContinue:
		return a.parseContinue()
	case KwReturn:
		return a.parseReturn()
	case KwGoto:
		return a.parseGoto()
	case KwPrintf:
		return a.parsePrintf()
	case KwPrintid:
		return a.parsePrintid()
	case KwGetid:
		return a.parseGetid()
	case KwPrint:
		return a.parsePrint()
	case KwThread:
		return a.parseThread()
	case KwSend:
		return a.parseSend()
	case TagSemi:
		a.advance()
		return nil
	case TagIdent:
		if a.peekNext().Tag == TagColon {
			return a.parseLabel()
		}
		_, err := a.parseExpr()
		if err != nil {
			return err
		}
		_, err = a.expect(TagSemi, "`;`")
		return err
	default:
		if a.isTypeKeyword() {
			return a.parseLocalDecl()
		}
		_, err := a.parseExpr()
		if err != nil {
			return err
		}
		_, err = a.expect(TagSemi, "`;`")
		return err
	}
}

func (a *Analyzer) parseLocalDecl() error {
	baseMode, err := a.parseTypeSpecifier()
	if err != nil {
		return err
	}
	if a.at(TagSemi) {
		a.advance()
		return nil
	}
	for {
		mode, nameTok, err := a.parseDeclaratorHead(baseMode)
		if err != nil {
			return err
		}
		if err := a.finishVarDecl(mode, nameTok, false, false); err != nil {
			return err
		}
		if _, ok := a.accept(TagComma); !ok {
			break
		}
	}
	_, err = a.expect(TagSemi, "`;`")
	return err
}

func (a *Analyzer) parseLabel() error {
	nameTok := a.cur
	a.advance() // ident
	a.advance() // `:`
	a.tree.EmitTag(TLabel)
	a.tree.EmitArg(nameTok.ReprIndex)
	if a.labels == nil {
		a.labels = make(map[int]bool)
	}
	a.labels[nameTok.ReprIndex] = true
	return a.parseStatement()
}

func (a *Analyzer) parseGoto() error {
	a.advance()
	nameTok, err := a.expect(TagIdent, "a label name")
	if err != nil {
		return err
	}
	if _, err := a.expect(TagSemi, "`;`"); err != nil {
		return err
	}
	a.tree.EmitTag(TGoto)
	a.tree.EmitArg(nameTok.ReprIndex)
	if a.gotos == nil {
		a.gotos = make(map[int]Span)
	}
	if !a.labels[nameTok.ReprIndex] {
		a.gotos[nameTok.ReprIndex] = nameTok.Span
	}
	return nil
}

func (a *Analyzer) parseIf() error {
	a.advance()
	if _, err := a.expect(TagLParen, "`(`"); err != nil {
		return err
	}
	a.tree.EmitTag(TIf)
	elseSlot := a.tree.EmitArg(0)

	cond, err := a.parseExpr()
	if err != nil {
		return err
	}
	a.toVal(&cond)
	if _, err := a.expect(TagRParen, "`)`"); err != nil {
		return err
	}

	if err := a.parseStatement(); err != nil {
		return err
	}

	if _, ok := a.accept(KwElse); ok {
		a.tree.Set(elseSlot, a.tree.Len())
		if err := a.parseStatement(); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) parseWhile() error {
	a.advance()
	if _, err := a.expect(TagLParen, "`(`"); err != nil {
		return err
	}
	a.tree.EmitTag(TWhile)
	cond, err := a.parseExpr()
	if err != nil {
		return err
	}
	a.toVal(&cond)
	if _, err := a.expect(TagRParen, "`)`"); err != nil {
		return err
	}
	a.loopDepth++
	err = a.parseStatement()
	a.loopDepth--
	return err
}

func (a *Analyzer) parseDo() error {
	a.advance()
	a.tree.EmitTag(TDo)
	a.loopDepth++
	err := a.parseStatement()
	a.loopDepth--
	if err != nil {
		return err
	}
	if _, err := a.expect(KwWhile, "`while`"); err != nil {
		return err
	}
	if _, err := a.expect(TagLParen, "`(`"); err != nil {
		return err
	}
	cond, err := a.parseExpr()
	if err != nil {
		return err
	}
	a.toVal(&cond)
	if _, err := a.expect(TagRParen, "`)`"); err != nil {
		return err
	}
	_, err = a.expect(TagSemi, "`;`")
	return err
}

// parseFor emits TFor's var/cond/inc clauses as expression subtrees
// *before* the TFor tag itself, since they're parsed (and therefore
// laid down in the flat tree) ahead of the loop header; their offsets
// point backward, unlike the body offset, which points forward to the
// statement parsed right after the header (spec §4.8).
func (a *Analyzer) parseFor() error {
	a.advance()
	if _, err := a.expect(TagLParen, "`(`"); err != nil {
		return err
	}
	a.idents.EnterScope()

	varOff := 0
	if !a.at(TagSemi) {
		varOff = a.tree.Len()
		if a.isTypeKeyword() {
			if err := a.parseLocalDecl(); err != nil {
				a.idents.LeaveScope()
				return err
			}
		} else {
			if _, err := a.parseExpr(); err != nil {
				a.idents.LeaveScope()
				return err
			}
			if _, err := a.expect(TagSemi, "`;`"); err != nil {
				a.idents.LeaveScope()
				return err
			}
		}
	} else {
		a.advance()
	}

	condOff := 0
	if !a.at(TagSemi) {
		condOff = a.tree.Len()
		cond, err := a.parseExpr()
		if err != nil {
			a.idents.LeaveScope()
			return err
		}
		a.toVal(&cond)
	}
	if _, err := a.expect(TagSemi, "`;`"); err != nil {
		a.idents.LeaveScope()
		return err
	}

	incOff := 0
	if !a.at(TagRParen) {
		incOff = a.tree.Len()
		if _, err := a.parseExpr(); err != nil {
			a.idents.LeaveScope()
			return err
		}
	}
	if _, err := a.expect(TagRParen, "`)`"); err != nil {
		a.idents.LeaveScope()
		return err
	}

	a.tree.EmitTag(TFor)
	a.tree.EmitArg(varOff)
	a.tree.EmitArg(condOff)
	a.tree.EmitArg(incOff)
	bodySlot := a.tree.EmitArg(0)
	a.tree.Set(bodySlot, a.tree.Len())

	a.loopDepth++
	err := a.parseStatement()
	a.loopDepth--
	a.idents.LeaveScope()
	return err
}

func (a *Analyzer) parseSwitch() error {
	a.advance()
	if _, err := a.expect(TagLParen, "`(`"); err != nil {
		return err
	}
	a.tree.EmitTag(TSwitch)
	cond, err := a.parseExpr()
	if err != nil {
		return err
	}
	a.toVal(&cond)
	if cond.mode != LInt && cond.mode != LChar {
		a.report(ErrParseTypeMismatch, a.cur.Span, "switch condition must be an integer")
	}
	if _, err := a.expect(TagRParen, "`)`"); err != nil {
		return err
	}
	a.switchDepth++
	err = a.parseStatement()
	a.switchDepth--
	return err
}

func (a *Analyzer) parseCase() error {
	if a.switchDepth == 0 {
		a.report(ErrParseCaseOutsideSwitch, a.cur.Span, "`case` outside a switch")
	}
	a.advance()
	a.tree.EmitTag(TCase)
	val, err := a.parseExpr()
	if err != nil {
		return err
	}
	a.toVal(&val)
	if _, err := a.expect(TagColon, "`:`"); err != nil {
		return err
	}
	return a.parseStatement()
}

func (a *Analyzer) parseDefault() error {
	if a.switchDepth == 0 {
		a.report(ErrParseCaseOutsideSwitch, a.cur.Span, "`default` outside a switch")
	}
	a.advance()
	if _, err := a.expect(TagColon, "`:`"); err != nil {
		return err
	}
	a.tree.EmitTag(TDefault)
	return a.parseStatement()
}

func (a *Analyzer) parseBreak() error {
	if a.loopDepth == 0 && a.switchDepth == 0 {
		a.report(ErrParseBreakOutsideLoop, a.cur.Span, "`break` outside a loop or switch")
	}
	a.advance()
	a.tree.EmitTag(TBreak)
	_, err := a.expect(TagSemi, "`;`")
	return err
}

func (a *Analyzer) parseContinue() error {
	if a.loopDepth == 0 {
		a.report(ErrParseBreakOutsideLoop, a.cur.Span, "`continue` outside a loop")
	}
	a.advance()
	a.tree.EmitTag(TContinue)
	_, err := a.expect(TagSemi, "`;`")
	return err
}

func (a *Analyzer) parseReturn() error {
	retSpan := a.cur.Span
	a.advance()
	if a.at(TagSemi) {
		a.advance()
		if a.currentReturnMode != LVoid {
			a.report(ErrParseTypeMismatch, retSpan, "missing return value in a non-void function")
		}
		a.tree.EmitTag(TReturnvoid)
		return nil
	}
	a.tree.EmitTag(TReturnval)
	a.tree.EmitArg(a.currentReturnMode)
	val, err := a.parseExpr()
	if err != nil {
		return err
	}
	a.toVal(&val)
	if val.mode != a.currentReturnMode && a.currentReturnMode != LVoid {
		a.report(ErrParseTypeMismatch, retSpan, "return value does not match the function's return type")
	}
	_, err = a.expect(TagSemi, "`;`")
	return err
}

func (a *Analyzer) parsePrintf() error {
	a.advance()
	if _, err := a.expect(TagLParen, "`(`"); err != nil {
		return err
	}
	a.tree.EmitTag(TPrintf)
	fmtOp, err := a.parseExpr()
	if err != nil {
		return err
	}
	a.toVal(&fmtOp)

	argCountSlot := a.tree.EmitArg(0)
	n := 0
	for {
		if _, ok := a.accept(TagComma); !ok {
			break
		}
		arg, err := a.parseExpr()
		if err != nil {
			return err
		}
		a.toVal(&arg)
		n++
	}
	a.tree.Set(argCountSlot, n)
	if _, err := a.expect(TagRParen, "`)`"); err != nil {
		return err
	}
	_, err = a.expect(TagSemi, "`;`")
	return err
}

func (a *Analyzer) parsePrintid() error {
	a.advance()
	if _, err := a.expect(TagLParen, "`(`"); err != nil {
		return err
	}
	nameTok, err := a.expect(TagIdent, "a variable name")
	if err != nil {
		return err
	}
	identIdx, ok := a.idents.Resolve(nameTok.ReprIndex)
	if !ok {
		a.report(ErrParseUndeclared, nameTok.Span, "undeclared identifier `"+a.repr.spellingString(nameTok.ReprIndex)+"`")
	} else {
		_ = a.idents.Entry(identIdx)
	}
	a.tree.EmitTag(TPrintid)
	a.tree.EmitArg(nameTok.ReprIndex)
	if _, err := a.expect(TagRParen, "`)`"); err != nil {
		return err
	}
	_, err = a.expect(TagSemi, "`;`")
	return err
}

func (a *Analyzer) parseGetid() error {
	a.advance()
	if _, err := a.expect(TagLParen, "`(`"); err != nil {
		return err
	}
	nameTok, err := a.expect(TagIdent, "a variable name")
	if err != nil {
		return err
	}
	if _, ok := a.idents.Resolve(nameTok.ReprIndex); !ok {
		a.report(ErrParseUndeclared, nameTok.Span, "undeclared identifier `"+a.repr.spellingString(nameTok.ReprIndex)+"`")
	}
	a.tree.EmitTag(TGetid)
	a.tree.EmitArg(nameTok.ReprIndex)
	if _, err := a.expect(TagRParen, "`)`"); err != nil {
		return err
	}
	_, err = a.expect(TagSemi, "`;`")
	return err
}

func (a *Analyzer) parsePrint() error {
	a.advance()
	if _, err := a.expect(TagLParen, "`(`"); err != nil {
		return err
	}
	val, err := a.parseAssignment()
	if err != nil {
		return err
	}
	a.toVal(&val)
	a.tree.EmitTag(TPrint)
	a.tree.EmitArg(val.mode)
	if _, err := a.expect(TagRParen, "`)`"); err != nil {
		return err
	}
	a.tree.EmitTag(TExprend)
	_, err = a.expect(TagSemi, "`;`")
	return err
}

// parseThread lowers `thread { ... }` to a TCreatedirectc/TExitc pair
// wrapping the block's statements directly, with no TBegin/TEnd of
// its own: the pair is a transparent grouping marker the code
// generator treats as "run this on a lightweight thread", not a
// scope (SPEC_FULL.md's supplemented-features item 3).
func (a *Analyzer) parseThread() error {
	a.advance()
	if _, err := a.expect(TagLBrace, "`{`"); err != nil {
		return err
	}
	a.tree.BeginDirect()
	a.idents.EnterScope()
	for !a.at(TagRBrace) && !a.at(TagEOF) {
		if err := a.parseStatement(); err != nil {
			a.syncToStatementBoundary()
		}
	}
	a.idents.LeaveScope()
	if _, err := a.expect(TagRBrace, "`}`"); err != nil {
		return err
	}
	a.tree.EndDirect()
	return nil
}

// parseSend lowers `send(expr);` to a plain expression statement
// whose operand must have the predefined message-info shape; the
// actual runtime call into t_msg_send is the out-of-scope code
// generator's job; the front end's only responsibility is checking
// the argument's type against the installed MsgSendMode's parameter.
func (a *Analyzer) parseSend() error {
	sendSpan := a.cur.Span
	a.advance()
	if _, err := a.expect(TagLParen, "`(`"); err != nil {
		return err
	}
	arg, err := a.parseExpr()
	if err != nil {
		return err
	}
	a.toVal(&arg)
	if arg.mode != a.modes.MessageInfoMode {
		a.report(ErrParseTypeMismatch, sendSpan, "`send` requires a message-info value")
	}
	if _, err := a.expect(TagRParen, "`)`"); err != nil {
		return err
	}
	_, err = a.expect(TagSemi, "`;`")
	return err
}
