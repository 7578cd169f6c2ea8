package ruc

import "bytes"

// Analyzer is the single owned context the whole front end runs
// through (spec §9's "global state becomes an owned context"
// redesign note): one value per compilation, passed by pointer, never
// a package-level variable.
type Analyzer struct {
	cfg    *Config
	repr   *reprTab
	modes  *modeTab
	idents *identTab
	tree   *Tree
	sink   DiagnosticSink
	lexer  *Lexer

	cur       Token
	ahead     *Token
	errorFlag bool

	functions map[int]int // function ident index -> TFuncdef node offset
	hadMain   bool

	// labels tracks, within the function currently being parsed, which
	// label reprs were defined (TLabel emitted) versus merely
	// referenced by a goto; checked at function end (spec §4.7).
	labels map[int]bool
	gotos  map[int]Span

	loopDepth         int
	switchDepth       int
	currentReturnMode int
}

func newAnalyzer(cfg *Config, repr *reprTab, modes *modeTab, idents *identTab, lexer *Lexer, sink DiagnosticSink) *Analyzer {
	a := &Analyzer{
		cfg:       cfg,
		repr:      repr,
		modes:     modes,
		idents:    idents,
		tree:      newTree(1024),
		sink:      sink,
		lexer:     lexer,
		functions: make(map[int]int),
	}
	a.advance()
	return a
}

// advance consumes the current lookahead token and returns it,
// fetching the next one from the lexer into cur. The very first call
// (made once by newAnalyzer) just primes cur and its return value is
// discarded.
func (a *Analyzer) advance() Token {
	old := a.cur
	if a.ahead != nil {
		a.cur = *a.ahead
		a.ahead = nil
	} else {
		a.cur = a.lexer.NextToken()
	}
	return old
}

// peekNext looks one token past cur, for the handful of constructs
// (a label's trailing `:`) that a single token of lookahead can't
// disambiguate.
func (a *Analyzer) peekNext() Token {
	if a.ahead == nil {
		t := a.lexer.NextToken()
		a.ahead = &t
	}
	return *a.ahead
}

func (a *Analyzer) at(tag TokenTag) bool {
	return a.cur.Tag == tag
}

func (a *Analyzer) accept(tag TokenTag) (Token, bool) {
	if a.cur.Tag == tag {
		return a.advance(), true
	}
	return Token{}, false
}

func (a *Analyzer) expect(tag TokenTag, what string) (Token, error) {
	if t, ok := a.accept(tag); ok {
		return t, nil
	}
	return Token{}, a.errExpected(what)
}

func (a *Analyzer) report(kind ErrorKind, span Span, msg string) error {
	a.errorFlag = true
	a.sink.Report(Diagnostic{Severity: SeverityError, Kind: kind, Span: span, Message: msg})
	return &syncError{span: span}
}

func (a *Analyzer) errExpected(what string) error {
	return a.report(ErrParseExpected, a.cur.Span, "expected "+what+", found `"+a.tokenText(a.cur)+"`")
}

func (a *Analyzer) tokenText(t Token) string {
	switch t.Tag {
	case TagEOF:
		return "end of input"
	case TagIdent:
		return a.repr.spellingString(t.ReprIndex)
	default:
		return "token"
	}
}

// syncToStatementBoundary recovers from a reported error by discarding
// tokens up to and including the next `;`, or up to (not including)
// the next `}`/EOF, matching spec §7's resynchronization policy.
func (a *Analyzer) syncToStatementBoundary() {
	for {
		switch a.cur.Tag {
		case TagSemi:
			a.advance()
			return
		case TagRBrace, TagEOF:
			return
		default:
			a.advance()
		}
	}
}

// AnalysisResult is the in-memory handoff spec §6 describes between
// the analyzer and the (out-of-scope) code generator.
type AnalysisResult struct {
	Tree               *Tree
	Functions          map[int]int
	Idents             *identTab
	Modes              *modeTab
	Reprs              *reprTab
	GlobalDisplacement int
	HadMain            bool
}

// Analyze runs the full front end over src end to end (SPEC_FULL.md
// §4.10's six steps): build the shared tables, lex and parse into the
// flat tree, validate its structure, and hand back everything the
// next stage needs. Diagnostics are reported to sink as they're
// found; Analyze itself only returns a non-nil error for conditions
// that make continuing meaningless (a failing source reader or a
// malformed keyword manifest).
//
// keywordManifest is the two-column "code spelling" text described in
// spec §6; an empty string falls back to the built-in manifest.
func Analyze(src []byte, file string, keywordManifest string, cfg *Config, sink DiagnosticSink) (*AnalysisResult, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if keywordManifest == "" {
		keywordManifest = defaultKeywordManifest
	}

	buf, err := newIOBuffer(bytes.NewReader(src), file)
	if err != nil {
		return nil, err
	}

	repr := newReprTab(cfg.GetInt("tables.repr_initial_capacity"))
	if err := LoadKeywords(repr, keywordManifest); err != nil {
		return nil, err
	}

	modes := newModeTab(cfg.GetInt("tables.mode_initial_capacity"))
	InstallPredefinedModes(modes, repr)

	idents := newIdentTab(cfg.GetInt("tables.ident_initial_capacity"))
	lexer := NewLexer(buf, repr, sink)

	a := newAnalyzer(cfg, repr, modes, idents, lexer, sink)
	a.parseProgram()

	if verr := a.tree.Validate(); verr != nil {
		sink.Report(Diagnostic{Severity: SeverityError, Kind: ErrTreeStructural, Message: verr.Error()})
	}
	if !a.hadMain {
		sink.Report(Diagnostic{Severity: SeverityError, Kind: ErrParseMissingMain, Message: "no `main` function declared"})
	}

	return &AnalysisResult{
		Tree:               a.tree,
		Functions:          a.functions,
		Idents:             idents,
		Modes:              modes,
		Reprs:              repr,
		GlobalDisplacement: idents.GlobalWords(),
		HadMain:            a.hadMain,
	}, nil
}
