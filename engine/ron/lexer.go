package ron

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenLBrace
	tokenRBrace
	tokenComma
	tokenColon
	tokenHash
	tokenBang
	tokenIdent
	tokenNumber
	tokenString
	tokenChar
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of input"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenLBracket:
		return "'['"
	case tokenRBracket:
		return "']'"
	case tokenLBrace:
		return "'{'"
	case tokenRBrace:
		return "'}'"
	case tokenComma:
		return "','"
	case tokenColon:
		return "':'"
	case tokenHash:
		return "'#'"
	case tokenBang:
		return "'!'"
	case tokenIdent:
		return "identifier"
	case tokenNumber:
		return "number"
	case tokenString:
		return "string"
	case tokenChar:
		return "char"
	default:
		return "token(" + strconv.Itoa(int(k)) + ")"
	}
}

type token struct {
	kind tokenKind
	pos  Position
	// identifier name, number literal, or the unescaped string/char value
	text string
}

type lexer struct {
	src  []byte
	off  int
	line int
	col  int
}

func (lx *lexer) pos() Position {
	return Position{Line: lx.line, Column: lx.col, Offset: lx.off}
}

func (lx *lexer) peekRune(ahead int) rune {
	off := lx.off
	for i := 0; i < ahead; i++ {
		if off >= len(lx.src) {
			return -1
		}
		_, size := utf8.DecodeRune(lx.src[off:])
		off += size
	}
	if off >= len(lx.src) {
		return -1
	}
	r, _ := utf8.DecodeRune(lx.src[off:])
	return r
}

func (lx *lexer) advance() rune {
	r, size := utf8.DecodeRune(lx.src[lx.off:])
	lx.off += size
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r
}

func (lx *lexer) skipSpaceAndComments() error {
	for lx.off < len(lx.src) {
		r := lx.peekRune(0)
		switch {
		case unicode.IsSpace(r):
			lx.advance()
		case r == '/' && lx.peekRune(1) == '/':
			for lx.off < len(lx.src) && lx.peekRune(0) != '\n' {
				lx.advance()
			}
		case r == '/' && lx.peekRune(1) == '*':
			start := lx.pos()
			lx.advance()
			lx.advance()
			// block comments nest
			depth := 1
			for depth > 0 {
				if lx.off >= len(lx.src) {
					return errorf(start, "unclosed block comment")
				}
				switch {
				case lx.peekRune(0) == '*' && lx.peekRune(1) == '/':
					lx.advance()
					lx.advance()
					depth--
				case lx.peekRune(0) == '/' && lx.peekRune(1) == '*':
					lx.advance()
					lx.advance()
					depth++
				default:
					lx.advance()
				}
			}
		default:
			return nil
		}
	}
	return nil
}

func (lx *lexer) next() (token, error) {
	if err := lx.skipSpaceAndComments(); err != nil {
		return token{}, err
	}
	start := lx.pos()
	if lx.off >= len(lx.src) {
		return token{kind: tokenEOF, pos: start}, nil
	}

	r := lx.peekRune(0)
	punct := map[rune]tokenKind{
		'(': tokenLParen, ')': tokenRParen,
		'[': tokenLBracket, ']': tokenRBracket,
		'{': tokenLBrace, '}': tokenRBrace,
		',': tokenComma, ':': tokenColon,
		'#': tokenHash, '!': tokenBang,
	}
	if kind, ok := punct[r]; ok {
		lx.advance()
		return token{kind: kind, pos: start, text: string(r)}, nil
	}

	switch {
	case r == '"':
		s, err := lx.readString()
		return token{kind: tokenString, pos: start, text: s}, err
	case r == 'r' && (lx.peekRune(1) == '"' || lx.peekRune(1) == '#'):
		s, err := lx.readRawString()
		return token{kind: tokenString, pos: start, text: s}, err
	case r == '\'':
		s, err := lx.readChar()
		return token{kind: tokenChar, pos: start, text: s}, err
	case r == '-' || r == '+' || r == '.' || isDigit(r):
		return lx.readNumber(start)
	case isIdentStart(r):
		return token{kind: tokenIdent, pos: start, text: lx.readIdent()}, nil
	}
	return token{}, errorf(start, "unexpected character %q", r)
}

func (lx *lexer) readIdent() string {
	start := lx.off
	for lx.off < len(lx.src) && isIdentContinue(lx.peekRune(0)) {
		lx.advance()
	}
	return string(lx.src[start:lx.off])
}

func (lx *lexer) readNumber(start Position) (token, error) {
	begin := lx.off
	if r := lx.peekRune(0); r == '-' || r == '+' {
		lx.advance()
		// signed inf / NaN
		if isIdentStart(lx.peekRune(0)) {
			ident := lx.readIdent()
			if ident != "inf" && ident != "NaN" {
				return token{}, errorf(start, "invalid number %q", string(lx.src[begin:lx.off]))
			}
			return token{kind: tokenNumber, pos: start, text: string(lx.src[begin:lx.off])}, nil
		}
	}
	hex := lx.peekRune(0) == '0' && (lx.peekRune(1) == 'x' || lx.peekRune(1) == 'X')
	for lx.off < len(lx.src) {
		r := lx.peekRune(0)
		switch {
		case isDigit(r) || r == '_' || r == '.':
		case (r == '+' || r == '-') && !hex:
			// only valid right after an exponent marker
			prev := lx.src[lx.off-1]
			if prev != 'e' && prev != 'E' {
				goto done
			}
		case unicode.IsLetter(r):
		default:
			goto done
		}
		lx.advance()
	}
done:
	text := string(lx.src[begin:lx.off])
	if text == "-" || text == "+" || text == "." {
		return token{}, errorf(start, "invalid number %q", text)
	}
	return token{kind: tokenNumber, pos: start, text: text}, nil
}

func (lx *lexer) readString() (string, error) {
	start := lx.pos()
	lx.advance() // opening quote
	var sb strings.Builder
	for {
		if lx.off >= len(lx.src) {
			return "", errorf(start, "unterminated string")
		}
		r := lx.advance()
		switch r {
		case '"':
			return sb.String(), nil
		case '\\':
			esc, err := lx.readEscape()
			if err != nil {
				return "", err
			}
			if esc >= 0 {
				sb.WriteRune(esc)
			}
		default:
			sb.WriteRune(r)
		}
	}
}

func (lx *lexer) readRawString() (string, error) {
	start := lx.pos()
	lx.advance() // r
	hashes := 0
	for lx.peekRune(0) == '#' {
		lx.advance()
		hashes++
	}
	if lx.peekRune(0) != '"' {
		return "", errorf(start, "invalid raw string")
	}
	lx.advance()
	terminator := "\"" + strings.Repeat("#", hashes)
	begin := lx.off
	for {
		if lx.off >= len(lx.src) {
			return "", errorf(start, "unterminated raw string")
		}
		if strings.HasPrefix(string(lx.src[lx.off:]), terminator) {
			s := string(lx.src[begin:lx.off])
			for range terminator {
				lx.advance()
			}
			return s, nil
		}
		lx.advance()
	}
}

func (lx *lexer) readChar() (string, error) {
	start := lx.pos()
	lx.advance() // opening quote
	if lx.off >= len(lx.src) {
		return "", errorf(start, "unterminated char")
	}
	r := lx.advance()
	if r == '\\' {
		esc, err := lx.readEscape()
		if err != nil {
			return "", err
		}
		r = esc
	}
	if lx.peekRune(0) != '\'' {
		return "", errorf(start, "char literal must contain exactly one character")
	}
	lx.advance()
	return string(r), nil
}

// readEscape reads the escape sequence after a backslash. A line continuation
// returns -1.
func (lx *lexer) readEscape() (rune, error) {
	pos := lx.pos()
	if lx.off >= len(lx.src) {
		return 0, errorf(pos, "unterminated escape sequence")
	}
	r := lx.advance()
	switch r {
	case '\\', '"', '\'', '/':
		return r, nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case '0':
		return 0, nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case '\n':
		for unicode.IsSpace(lx.peekRune(0)) {
			lx.advance()
		}
		return -1, nil
	case 'x':
		digits := make([]rune, 0, 2)
		for i := 0; i < 2; i++ {
			digits = append(digits, lx.advance())
		}
		v, err := strconv.ParseUint(string(digits), 16, 8)
		if err != nil {
			return 0, errorf(pos, "invalid \\x escape")
		}
		return rune(v), nil
	case 'u':
		if lx.peekRune(0) != '{' {
			return 0, errorf(pos, "invalid \\u escape, expected '{'")
		}
		lx.advance()
		var digits []rune
		for lx.off < len(lx.src) && lx.peekRune(0) != '}' {
			digits = append(digits, lx.advance())
		}
		if lx.off >= len(lx.src) {
			return 0, errorf(pos, "unterminated \\u escape")
		}
		lx.advance()
		v, err := strconv.ParseUint(strings.ReplaceAll(string(digits), "_", ""), 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return 0, errorf(pos, "invalid unicode escape")
		}
		return rune(v), nil
	}
	return 0, errorf(pos, "unknown escape sequence \\%c", r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
