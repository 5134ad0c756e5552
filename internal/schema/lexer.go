package schema

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/termproto/pbedit/internal/schema/token"
)

// lexer tokenizes proto-IDL source. Shaped after a classic two-rune
// lookahead scanner: readRune keeps cur/next primed one rune ahead so the
// dispatcher in Next can make single-character decisions without
// buffering a whole line.
type lexer struct {
	r         *bufio.Reader
	cur       rune
	next      rune
	curRow    int
	curColumn int
	eof       bool
	err       error
}

func newLexer(r io.Reader) (*lexer, error) {
	lx := &lexer{r: bufio.NewReader(r), curRow: 1}
	if err := lx.readRune(); err != nil {
		return nil, err
	}
	if err := lx.readRune(); err != nil {
		return nil, err
	}
	lx.curColumn = 1
	return lx, nil
}

func (lx *lexer) readRune() error {
	if lx.isDone() {
		return lx.err
	}
	r, _, err := lx.r.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			lx.err = fmt.Errorf("schema: read rune: %w", err)
			return lx.err
		}
		lx.eof = true
	}
	if lx.cur == '\n' {
		lx.curRow++
		lx.curColumn = 1
	} else {
		lx.curColumn++
	}
	lx.cur = lx.next
	lx.next = r
	return nil
}

func (lx *lexer) hasNext() bool { return !lx.eof || lx.cur != 0 }
func (lx *lexer) isDone() bool  { return !lx.hasNext() || lx.err != nil }

func (lx *lexer) pos() token.Position {
	return token.Position{Row: lx.curRow, Column: lx.curColumn}
}

func (lx *lexer) skipWhitespaceAndComments() error {
	for {
		for isWhitespace(lx.cur) {
			if err := lx.readRune(); err != nil {
				return err
			}
		}
		if lx.cur == '/' && lx.next == '/' {
			for lx.hasNext() && lx.cur != '\n' {
				if err := lx.readRune(); err != nil {
					return err
				}
			}
			continue
		}
		if lx.cur == '/' && lx.next == '*' {
			if err := lx.readRune(); err != nil {
				return err
			}
			if err := lx.readRune(); err != nil {
				return err
			}
			for lx.hasNext() && !(lx.cur == '*' && lx.next == '/') {
				if err := lx.readRune(); err != nil {
					return err
				}
			}
			if err := lx.readRune(); err != nil {
				return err
			}
			if err := lx.readRune(); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

// leadingComment collects the text of comment lines immediately preceding
// the next token, so callers can attach doc comments to declarations.
// It is a thin variant of skipWhitespaceAndComments that remembers text.
func (lx *lexer) leadingComment() (string, error) {
	var lines []string
	for {
		for isWhitespace(lx.cur) {
			if err := lx.readRune(); err != nil {
				return "", err
			}
		}
		if lx.cur == '/' && lx.next == '/' {
			if err := lx.readRune(); err != nil {
				return "", err
			}
			if err := lx.readRune(); err != nil {
				return "", err
			}
			var sb strings.Builder
			for lx.hasNext() && lx.cur != '\n' {
				sb.WriteRune(lx.cur)
				if err := lx.readRune(); err != nil {
					return "", err
				}
			}
			lines = append(lines, strings.TrimSpace(sb.String()))
			continue
		}
		if lx.cur == '/' && lx.next == '*' {
			if err := lx.readRune(); err != nil {
				return "", err
			}
			if err := lx.readRune(); err != nil {
				return "", err
			}
			var sb strings.Builder
			for lx.hasNext() && !(lx.cur == '*' && lx.next == '/') {
				sb.WriteRune(lx.cur)
				if err := lx.readRune(); err != nil {
					return "", err
				}
			}
			if err := lx.readRune(); err != nil {
				return "", err
			}
			if err := lx.readRune(); err != nil {
				return "", err
			}
			lines = append(lines, strings.TrimSpace(sb.String()))
			continue
		}
		break
	}
	return strings.Join(lines, "\n"), nil
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// nextToken returns the next token, skipping insignificant whitespace and
// comments (use leadingComment first if the comment text matters).
func (lx *lexer) nextToken() (token.Token, error) {
	var tok token.Token
	if err := lx.skipWhitespaceAndComments(); err != nil {
		return tok, err
	}
	if lx.isDone() {
		tok.Kind = token.EOF
		return tok, nil
	}

	start := lx.pos()
	switch {
	case lx.cur == '{':
		tok = lx.single(token.LBRACE)
	case lx.cur == '}':
		tok = lx.single(token.RBRACE)
	case lx.cur == '[':
		tok = lx.single(token.LBRACK)
	case lx.cur == ']':
		tok = lx.single(token.RBRACK)
	case lx.cur == '<':
		tok = lx.single(token.LANGLE)
	case lx.cur == '>':
		tok = lx.single(token.RANGLE)
	case lx.cur == '(':
		tok = lx.single(token.LPAREN)
	case lx.cur == ')':
		tok = lx.single(token.RPAREN)
	case lx.cur == ';':
		tok = lx.single(token.SEMI)
	case lx.cur == ',':
		tok = lx.single(token.COMMA)
	case lx.cur == '=':
		tok = lx.single(token.EQUALS)
	case lx.cur == '.':
		tok = lx.single(token.DOT)
	case lx.cur == '"':
		return lx.scanString(start)
	case isDigit(lx.cur) || (lx.cur == '-' && isDigit(lx.next)):
		return lx.scanNumber(start)
	case isIdentStart(lx.cur):
		return lx.scanIdent(start)
	default:
		r := lx.cur
		if err := lx.readRune(); err != nil {
			return tok, err
		}
		return token.Token{Kind: token.ILLEGAL, Literal: string(r), Start: start, End: start}, nil
	}
	if err := lx.readRune(); err != nil {
		return tok, err
	}
	return tok, nil
}

func (lx *lexer) single(k token.Kind) token.Token {
	pos := lx.pos()
	return token.Token{Kind: k, Literal: string(lx.cur), Start: pos, End: pos}
}

func (lx *lexer) scanIdent(start token.Position) (token.Token, error) {
	var sb strings.Builder
	for lx.hasNext() && isIdentPart(lx.cur) {
		sb.WriteRune(lx.cur)
		if err := lx.readRune(); err != nil {
			return token.Token{}, err
		}
	}
	lit := sb.String()
	return token.Token{Kind: token.Lookup(lit), Literal: lit, Start: start, End: lx.pos()}, nil
}

func (lx *lexer) scanNumber(start token.Position) (token.Token, error) {
	var sb strings.Builder
	if lx.cur == '-' {
		sb.WriteRune(lx.cur)
		if err := lx.readRune(); err != nil {
			return token.Token{}, err
		}
	}
	for lx.hasNext() && isDigit(lx.cur) {
		sb.WriteRune(lx.cur)
		if err := lx.readRune(); err != nil {
			return token.Token{}, err
		}
	}
	return token.Token{Kind: token.INTNUM, Literal: sb.String(), Start: start, End: lx.pos()}, nil
}

func (lx *lexer) scanString(start token.Position) (token.Token, error) {
	if err := lx.readRune(); err != nil { // consume opening quote
		return token.Token{}, err
	}
	var sb strings.Builder
	for lx.hasNext() && lx.cur != '"' {
		sb.WriteRune(lx.cur)
		if err := lx.readRune(); err != nil {
			return token.Token{}, err
		}
	}
	if !lx.hasNext() {
		return token.Token{}, fmt.Errorf("schema: unterminated string literal starting at %s", start)
	}
	if err := lx.readRune(); err != nil { // consume closing quote
		return token.Token{}, err
	}
	return token.Token{Kind: token.STRING, Literal: sb.String(), Start: start, End: lx.pos()}, nil
}
