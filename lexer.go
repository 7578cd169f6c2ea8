package ruc

import (
	"strconv"
)

// Lexer produces a token stream from an ioBuffer, interning
// identifiers and keywords into a shared reprTab as it goes (spec
// §4.5). It keeps no pushback state of its own: it looks at unread
// bytes (peekChar, and peekAt, which reads the buffer's data up to
// two bytes ahead) and decides when to consume them.
type Lexer struct {
	buf  *ioBuffer
	repr *reprTab
	sink DiagnosticSink

	errorFlag bool
}

func NewLexer(buf *ioBuffer, repr *reprTab, sink DiagnosticSink) *Lexer {
	return &Lexer{buf: buf, repr: repr, sink: sink}
}

func (l *Lexer) report(kind ErrorKind, start Location, msg string) {
	l.errorFlag = true
	l.sink.Report(Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Span:     NewSpan(start, l.buf.position()),
		Message:  msg,
	})
}

func isLetter(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetterOrDigit(c byte) bool {
	return isLetter(c) || isDigit(c)
}

// skipWhitespaceAndComments consumes whitespace, `//` line comments
// and `/* */` block comments (spec §4.5). It also serves as the
// resynchronization point a lexer error jumps to.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch c := l.buf.peekChar(); {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
			l.buf.advance()
		case c == '/' && l.peekAt(1) == '/':
			for l.buf.peekChar() != eof && l.buf.peekChar() != '\n' {
				l.buf.advance()
			}
		case c == '/' && l.peekAt(1) == '*':
			l.buf.advance()
			l.buf.advance()
			for {
				if l.buf.peekChar() == eof {
					return
				}
				if l.buf.peekChar() == '*' && l.peekAt(1) == '/' {
					l.buf.advance()
					l.buf.advance()
					break
				}
				l.buf.advance()
			}
		default:
			return
		}
	}
}

// peekAt looks ahead n bytes without consuming, for the two-byte
// lookahead `//`/`/*` and the maximal-munch operator matching need.
func (l *Lexer) peekAt(n int) byte {
	idx := l.buf.pos + n
	if idx >= len(l.buf.data) {
		return eof
	}
	return l.buf.data[idx]
}

// NextToken returns the next token in the stream, or a TagEOF token
// once the input is exhausted.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()
	start := l.buf.position()

	c := l.buf.peekChar()
	switch {
	case c == eof:
		return Token{Tag: TagEOF, Span: NewSpan(start, start)}
	case isLetter(c):
		return l.lexIdentOrKeyword(start)
	case isDigit(c):
		return l.lexNumber(start)
	case c == '"':
		return l.lexString(start)
	case c == '\'':
		return l.lexChar(start)
	default:
		return l.lexOperator(start)
	}
}

func (l *Lexer) lexIdentOrKeyword(start Location) Token {
	var b []byte
	for isLetterOrDigit(l.buf.peekChar()) {
		b = append(b, l.buf.advance())
	}
	idx := l.repr.intern(b)
	tag := TagIdent
	if l.repr.isKeyword(idx) {
		tag = l.repr.keywordTag(idx)
	}
	return Token{Tag: tag, Span: NewSpan(start, l.buf.position()), ReprIndex: idx}
}

func (l *Lexer) lexNumber(start Location) Token {
	var b []byte
	isFloat := false
	for isDigit(l.buf.peekChar()) {
		b = append(b, l.buf.advance())
	}
	if l.buf.peekChar() == '.' && isDigit(l.peekAt(1)) {
		isFloat = true
		b = append(b, l.buf.advance())
		for isDigit(l.buf.peekChar()) {
			b = append(b, l.buf.advance())
		}
	}
	if c := l.buf.peekChar(); c == 'e' || c == 'E' {
		la := l.peekAt(1)
		if isDigit(la) || ((la == '+' || la == '-') && isDigit(l.peekAt(2))) {
			isFloat = true
			b = append(b, l.buf.advance())
			if c := l.buf.peekChar(); c == '+' || c == '-' {
				b = append(b, l.buf.advance())
			}
			for isDigit(l.buf.peekChar()) {
				b = append(b, l.buf.advance())
			}
		}
	}

	if isFloat {
		v, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			l.report(ErrLexBadNumber, start, "malformed floating-point literal `"+string(b)+"`")
			return Token{Tag: TagFloatLit, Span: NewSpan(start, l.buf.position())}
		}
		return Token{Tag: TagFloatLit, Span: NewSpan(start, l.buf.position()), FloatVal: v}
	}

	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		l.report(ErrLexBadNumber, start, "malformed integer literal `"+string(b)+"`")
		return Token{Tag: TagIntLit, Span: NewSpan(start, l.buf.position())}
	}
	return Token{Tag: TagIntLit, Span: NewSpan(start, l.buf.position()), IntVal: v}
}

func (l *Lexer) decodeEscape(start Location) (byte, bool) {
	l.buf.advance() // consume '\'
	c := l.buf.advance()
	switch c {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\':
		return '\\', true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	default:
		l.report(ErrLexBadEscape, start, "unrecognized escape sequence")
		return c, false
	}
}

func (l *Lexer) lexString(start Location) Token {
	l.buf.advance() // opening quote
	var out []byte
	for {
		c := l.buf.peekChar()
		if c == eof || c == '\n' {
			l.report(ErrLexUnterminatedString, start, "unterminated string literal")
			return Token{Tag: TagStringLit, Span: NewSpan(start, l.buf.position()), StrBytes: out}
		}
		if c == '"' {
			l.buf.advance()
			break
		}
		if c == '\\' {
			if v, ok := l.decodeEscape(start); ok {
				out = append(out, v)
			}
			continue
		}
		out = append(out, l.buf.advance())
	}
	return Token{Tag: TagStringLit, Span: NewSpan(start, l.buf.position()), StrBytes: out}
}

func (l *Lexer) lexChar(start Location) Token {
	l.buf.advance() // opening quote
	var v byte
	if l.buf.peekChar() == '\\' {
		v, _ = l.decodeEscape(start)
	} else if l.buf.peekChar() != eof {
		v = l.buf.advance()
	}
	if l.buf.peekChar() != '\'' {
		l.report(ErrLexUnterminatedString, start, "unterminated character literal")
	} else {
		l.buf.advance()
	}
	return Token{Tag: TagCharLit, Span: NewSpan(start, l.buf.position()), CharVal: v}
}

// operatorTable lists every multi-character operator in longest-first
// order within each starting byte, so maximal munch (spec §4.5) falls
// out of a simple linear scan.
var operatorTable = []struct {
	spelling string
	tag      TokenTag
}{
	{"<<=", TagShlEq}, {">>=", TagShrEq},
	{"==", TagEq}, {"!=", TagNe}, {"<=", TagLe}, {">=", TagGe},
	{"&&", TagAndAnd}, {"||", TagOrOr}, {"<<", TagShl}, {">>", TagShr},
	{"++", TagInc}, {"--", TagDec}, {"->", TagArrow},
	{"+=", TagPlusEq}, {"-=", TagMinusEq}, {"*=", TagStarEq}, {"/=", TagSlashEq},
	{"%=", TagPercentEq}, {"&=", TagAmpEq}, {"|=", TagPipeEq}, {"^=", TagCaretEq},
	{"(", TagLParen}, {")", TagRParen}, {"{", TagLBrace}, {"}", TagRBrace},
	{"[", TagLBracket}, {"]", TagRBracket}, {";", TagSemi}, {",", TagComma},
	{".", TagDot}, {"?", TagQuestion}, {":", TagColon},
	{"=", TagAssign}, {"+", TagPlus}, {"-", TagMinus}, {"*", TagStar},
	{"/", TagSlash}, {"%", TagPercent}, {"&", TagAmp}, {"|", TagPipe},
	{"^", TagCaret}, {"~", TagTilde}, {"!", TagBang}, {"<", TagLt}, {">", TagGt},
}

func (l *Lexer) lexOperator(start Location) Token {
	for _, op := range operatorTable {
		if l.matches(op.spelling) {
			for range op.spelling {
				l.buf.advance()
			}
			return Token{Tag: op.tag, Span: NewSpan(start, l.buf.position())}
		}
	}

	bad := l.buf.advance()
	l.report(ErrLexBadChar, start, "unexpected character `"+string(bad)+"`")
	l.resync()
	return l.NextToken()
}

func (l *Lexer) matches(spelling string) bool {
	for i := 0; i < len(spelling); i++ {
		if l.peekAt(i) != spelling[i] {
			return false
		}
	}
	return true
}

// resync advances to the next whitespace so a lexer error can't cause
// a cascade of spurious follow-on errors (spec §4.5).
func (l *Lexer) resync() {
	for {
		c := l.buf.peekChar()
		if c == eof || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			return
		}
		l.buf.advance()
	}
}
