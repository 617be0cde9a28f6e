package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// Tokenize converts source text into the complete sequence of located tokens.
// The trailing EOF token is not included.
func Tokenize(src string) ([]Token, error) {
	lx := newLexer(src)
	var tokens []Token
	for {
		tok, err := lx.nextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == tokenEOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

type lexer struct {
	src    string
	pos    int
	line   int
	column int
}

func newLexer(src string) *lexer {
	return &lexer{
		src:    src,
		line:   1,
		column: 1,
	}
}

type runeState struct {
	pos    int
	line   int
	column int
}

func (lx *lexer) mark() runeState {
	return runeState{
		pos:    lx.pos,
		line:   lx.line,
		column: lx.column,
	}
}

func (lx *lexer) restore(state runeState) {
	lx.pos = state.pos
	lx.line = state.line
	lx.column = state.column
}

func (lx *lexer) readRune() (rune, runeState, error) {
	state := lx.mark()
	if lx.pos >= len(lx.src) {
		return 0, state, io.EOF
	}
	r, w := utf8.DecodeRuneInString(lx.src[lx.pos:])
	if r == utf8.RuneError && w == 1 {
		return 0, state, newError(positionFromState(state), fmt.Sprintf("invalid UTF-8 encoding at byte %d", lx.pos))
	}
	lx.pos += w
	if r == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return r, state, nil
}

func (lx *lexer) peekRune(offset int) rune {
	rest := lx.src[lx.pos:]
	for i := 0; i <= offset; i++ {
		if rest == "" {
			return -1
		}
		r, w := utf8.DecodeRuneInString(rest)
		if i == offset {
			return r
		}
		rest = rest[w:]
	}
	return -1
}

func (lx *lexer) skipWhitespace() error {
	for {
		r, state, err := lx.readRune()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !unicode.IsSpace(r) {
			lx.restore(state)
			return nil
		}
	}
}

func (lx *lexer) nextToken() (Token, error) {
	if err := lx.skipWhitespace(); err != nil {
		return Token{}, err
	}
	start := lx.mark()
	if lx.pos >= len(lx.src) {
		return Token{Type: tokenEOF, Pos: positionFromState(start)}, nil
	}

	r := lx.peekRune(0)
	if isDigit(r) || (r == '.' && isDigit(lx.peekRune(1))) {
		return lx.scanNumber(start)
	}

	for _, sym := range symbols {
		if strings.HasPrefix(lx.src[lx.pos:], sym.text) {
			lx.advance(len(sym.text))
			return Token{
				Type:   sym.typ,
				Lexeme: sym.text,
				Pos:    positionFromState(start),
			}, nil
		}
	}

	switch {
	case r == '"':
		return lx.scanString(start)
	case isIdentifierStart(r):
		return lx.scanIdentifier(start), nil
	}
	return Token{}, newError(positionFromState(start), fmt.Sprintf("Unknown token starting with '%c'", r))
}

func (lx *lexer) advance(n int) {
	end := lx.pos + n
	for lx.pos < end {
		if _, _, err := lx.readRune(); err != nil {
			return
		}
	}
}

// scanNumber consumes [0-9]*\.?[0-9]+.
func (lx *lexer) scanNumber(start runeState) (Token, error) {
	for isDigit(lx.peekRune(0)) {
		lx.advance(1)
	}
	if lx.peekRune(0) == '.' && isDigit(lx.peekRune(1)) {
		lx.advance(1)
		for isDigit(lx.peekRune(0)) {
			lx.advance(1)
		}
	}
	lexeme := lx.src[start.pos:lx.pos]
	value, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return Token{}, wrapError(positionFromState(start), fmt.Sprintf("invalid number %q", lexeme), err)
	}
	return Token{
		Type:   tokenNumber,
		Lexeme: lexeme,
		Value:  value,
		Pos:    positionFromState(start),
	}, nil
}

func (lx *lexer) scanString(start runeState) (Token, error) {
	pos := positionFromState(start)
	lx.advance(1) // opening quote
	var builder strings.Builder
	for {
		r, _, err := lx.readRune()
		if err == io.EOF {
			return Token{}, newIncompleteError(pos, "unterminated string literal")
		}
		if err != nil {
			return Token{}, err
		}
		if r == '"' {
			break
		}
		if r == '\n' {
			return Token{}, newError(pos, "newline in string literal")
		}
		if r != '\\' {
			builder.WriteRune(r)
			continue
		}
		esc, escState, err := lx.readRune()
		if err == io.EOF {
			return Token{}, newIncompleteError(pos, "unterminated escape sequence")
		}
		if err != nil {
			return Token{}, err
		}
		switch esc {
		case 'n':
			builder.WriteRune('\n')
		case 't':
			builder.WriteRune('\t')
		case 'r':
			builder.WriteRune('\r')
		case 'b':
			builder.WriteRune('\b')
		case 'f':
			builder.WriteRune('\f')
		case '\\', '"', '/':
			builder.WriteRune(esc)
		case 'u':
			if lx.pos+4 > len(lx.src) {
				return Token{}, newIncompleteError(pos, "unterminated escape sequence")
			}
			code, err := strconv.ParseUint(lx.src[lx.pos:lx.pos+4], 16, 16)
			if err != nil {
				return Token{}, wrapError(positionFromState(escState), "invalid unicode escape", err)
			}
			lx.advance(4)
			r := rune(code)
			if utf16.IsSurrogate(r) {
				if pair, ok := lx.lowSurrogate(r); ok {
					r = pair
				}
			}
			builder.WriteRune(r)
		default:
			return Token{}, newError(positionFromState(escState), fmt.Sprintf("invalid escape sequence '\\%c'", esc))
		}
	}
	return Token{
		Type:   tokenString,
		Lexeme: lx.src[start.pos:lx.pos],
		Value:  builder.String(),
		Pos:    pos,
	}, nil
}

// lowSurrogate consumes a \uXXXX escape that completes the surrogate pair
// started by high and returns the combined rune.
func (lx *lexer) lowSurrogate(high rune) (rune, bool) {
	rest := lx.src[lx.pos:]
	if len(rest) < 6 || rest[0] != '\\' || rest[1] != 'u' {
		return 0, false
	}
	code, err := strconv.ParseUint(rest[2:6], 16, 16)
	if err != nil {
		return 0, false
	}
	r := utf16.DecodeRune(high, rune(code))
	if r == utf8.RuneError {
		return 0, false
	}
	lx.advance(6)
	return r, true
}

func (lx *lexer) scanIdentifier(start runeState) Token {
	for isIdentifierPart(lx.peekRune(0)) {
		lx.advance(1)
	}
	lexeme := lx.src[start.pos:lx.pos]
	pos := positionFromState(start)
	if tt, ok := keywords[lexeme]; ok {
		return Token{Type: tt, Lexeme: lexeme, Pos: pos}
	}
	if lexeme == "true" || lexeme == "false" {
		return Token{Type: tokenBoolean, Lexeme: lexeme, Value: lexeme == "true", Pos: pos}
	}
	return Token{Type: tokenVariable, Lexeme: lexeme, Pos: pos}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || isDigit(r)
}

func positionFromState(state runeState) Position {
	return Position{
		Offset: state.pos,
		Line:   state.line,
		Column: state.column,
	}
}
