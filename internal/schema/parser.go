package schema

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/termproto/pbedit/internal/schema/token"
)

// Parse reads one proto-IDL file (and, recursively, anything it imports)
// and returns a merged Schema. roots is the repeatable proto-path search
// list consulted for import paths that are not found relative to the
// importing file's own directory, grounded on original_source/src/main.rs's
// proto_path handling.
func Parse(path string, roots []string) (*Schema, error) {
	s := newSchema()
	visited := map[string]bool{}
	if err := parseFile(s, path, roots, visited); err != nil {
		return nil, err
	}
	s.sortStable()
	if err := desugarMaps(s); err != nil {
		return nil, err
	}
	s.resolveEnumFields()
	return s, nil
}

func resolveImport(importPath, fromDir string, roots []string) (string, error) {
	if candidate, err := safeJoinWithin(fromDir, importPath); err == nil {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	for _, root := range roots {
		candidate, err := safeJoinWithin(root, importPath)
		if err != nil {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("schema: cannot resolve import %q (searched %q and %d proto_path roots)", importPath, fromDir, len(roots))
}

// safeJoinWithin joins importPath onto base and rejects any import
// statement (an untrusted string from inside a .proto file) that would
// resolve outside of base, whether via a literal ".." segment or via a
// symlink planted under base that points further out.
func safeJoinWithin(base, importPath string) (string, error) {
	if filepath.IsAbs(importPath) {
		return "", fmt.Errorf("schema: import path %q must be relative", importPath)
	}
	joined := filepath.Join(base, importPath)
	rel, err := filepath.Rel(base, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("schema: import path %q escapes its search root", importPath)
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(joined); err == nil {
		absBase, err = filepath.EvalSymlinks(absBase)
		if err != nil {
			return "", err
		}
		if resolved != absBase && !strings.HasPrefix(resolved, absBase+string(os.PathSeparator)) {
			return "", fmt.Errorf("schema: import path %q escapes its search root via symlink", importPath)
		}
	}
	return joined, nil
}

func parseFile(s *Schema, path string, roots []string, visited map[string]bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("schema: resolve path %q: %w", path, err)
	}
	if visited[abs] {
		return nil
	}
	visited[abs] = true

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("schema: open %q: %w", path, err)
	}
	defer f.Close()

	p, err := newFileParser(f)
	if err != nil {
		return fmt.Errorf("schema: init parser for %q: %w", path, err)
	}
	imports, err := p.parseFile(s)
	if err != nil {
		return fmt.Errorf("schema: parse %q: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, imp := range imports {
		resolved, err := resolveImport(imp, dir, roots)
		if err != nil {
			return err
		}
		if err := parseFile(s, resolved, roots, visited); err != nil {
			return err
		}
	}
	return nil
}

// fileParser is a hand-written recursive-descent parser over the lexer's
// token stream, in the same spirit as a classic two-token-lookahead
// scanner/parser pair: one token of lookahead (tok), advanced by next().
type fileParser struct {
	lx      *lexer
	tok     token.Token
	pending string // doc comment collected before the current token
}

func newFileParser(r io.Reader) (*fileParser, error) {
	lx, err := newLexer(r)
	if err != nil {
		return nil, err
	}
	p := &fileParser{lx: lx}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *fileParser) advance() error {
	comment, err := p.lx.leadingComment()
	if err != nil {
		return err
	}
	p.pending = comment
	tok, err := p.lx.nextToken()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *fileParser) expect(k token.Kind) (token.Token, error) {
	if p.tok.Kind != k {
		return token.Token{}, fmt.Errorf("schema: expected %s, got %s at %s", k, p.tok.Kind, p.tok.Start)
	}
	tok := p.tok
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

// parseFile consumes the whole token stream, registering messages/enums
// directly into s, and returns the list of import paths encountered.
func (p *fileParser) parseFile(s *Schema) ([]string, error) {
	var imports []string
	for p.tok.Kind != token.EOF {
		switch p.tok.Kind {
		case token.SYNTAX:
			if err := p.skipStatement(); err != nil {
				return nil, err
			}
		case token.PACKAGE:
			if err := p.skipStatement(); err != nil {
				return nil, err
			}
		case token.IMPORT:
			path, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			imports = append(imports, path)
		case token.MESSAGE:
			m, err := p.parseMessage(s)
			if err != nil {
				return nil, err
			}
			s.addMessage(m)
		case token.ENUM:
			e, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			s.addEnum(e)
		case token.SEMI:
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("schema: unexpected token %s at %s", p.tok.Kind, p.tok.Start)
		}
	}
	return imports, nil
}

func (p *fileParser) skipStatement() error {
	for p.tok.Kind != token.SEMI && p.tok.Kind != token.EOF {
		if err := p.advance(); err != nil {
			return err
		}
	}
	if p.tok.Kind == token.SEMI {
		return p.advance()
	}
	return nil
}

func (p *fileParser) parseImport() (string, error) {
	if _, err := p.expect(token.IMPORT); err != nil {
		return "", err
	}
	str, err := p.expect(token.STRING)
	if err != nil {
		return "", err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return "", err
	}
	return str.Literal, nil
}

func (p *fileParser) parseMessage(s *Schema) (*MessageDescriptor, error) {
	comment := p.pending
	if _, err := p.expect(token.MESSAGE); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	m := &MessageDescriptor{Name: name.Literal, Comment: comment}
	for p.tok.Kind != token.RBRACE {
		switch p.tok.Kind {
		case token.MESSAGE:
			// nested declarations are flattened into the schema's
			// top-level namespace, matching the original's flat
			// ProtoData.messages/enums vectors.
			nested, err := p.parseMessage(s)
			if err != nil {
				return nil, err
			}
			s.addMessage(nested)
		case token.ENUM:
			nestedEnum, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			s.addEnum(nestedEnum)
		case token.ONEOF:
			if err := p.parseOneof(m); err != nil {
				return nil, err
			}
		case token.SEMI:
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			f, err := p.parseField()
			if err != nil {
				return nil, err
			}
			m.Fields = append(m.Fields, f)
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *fileParser) parseOneof(owner *MessageDescriptor) error {
	if _, err := p.expect(token.ONEOF); err != nil {
		return err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}
	for p.tok.Kind != token.RBRACE {
		if p.tok.Kind == token.SEMI {
			if err := p.advance(); err != nil {
				return err
			}
			continue
		}
		f, err := p.parseField()
		if err != nil {
			return err
		}
		f.OneofName = name.Literal
		owner.Fields = append(owner.Fields, f)
	}
	_, err = p.expect(token.RBRACE)
	return err
}

func (p *fileParser) parseField() (FieldDescriptor, error) {
	comment := p.pending
	var f FieldDescriptor
	f.Comment = comment
	if p.tok.Kind == token.REPEATED {
		f.Repeated = true
		if err := p.advance(); err != nil {
			return f, err
		}
	} else if p.tok.Kind == token.OPTIONAL || p.tok.Kind == token.REQUIRED {
		if err := p.advance(); err != nil {
			return f, err
		}
	}

	if p.tok.Kind == token.MAP {
		if err := p.advance(); err != nil {
			return f, err
		}
		if _, err := p.expect(token.LANGLE); err != nil {
			return f, err
		}
		keyType, err := p.parseTypeName()
		if err != nil {
			return f, err
		}
		if _, err := p.expect(token.COMMA); err != nil {
			return f, err
		}
		valType, err := p.parseTypeName()
		if err != nil {
			return f, err
		}
		if _, err := p.expect(token.RANGLE); err != nil {
			return f, err
		}
		name, err := p.expect(token.IDENT)
		if err != nil {
			return f, err
		}
		if _, err := p.expect(token.EQUALS); err != nil {
			return f, err
		}
		num, err := p.expect(token.INTNUM)
		if err != nil {
			return f, err
		}
		n, err := strconv.ParseInt(num.Literal, 10, 32)
		if err != nil {
			return f, fmt.Errorf("schema: bad field number %q at %s: %w", num.Literal, num.Start, err)
		}
		if err := p.skipFieldOptions(); err != nil {
			return f, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return f, err
		}
		f.Name = name.Literal
		f.Number = int32(n)
		f.Repeated = true
		f.IsMap = true
		f.IsMessage = true
		f.TypeName = "" // filled by desugarMaps once the owner name is known
		f.mapKeyType, f.mapValType = keyType, valType
		return f, nil
	}

	typ, err := p.parseTypeName()
	if err != nil {
		return f, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return f, err
	}
	if _, err := p.expect(token.EQUALS); err != nil {
		return f, err
	}
	num, err := p.expect(token.INTNUM)
	if err != nil {
		return f, err
	}
	n, err := strconv.ParseInt(num.Literal, 10, 32)
	if err != nil {
		return f, fmt.Errorf("schema: bad field number %q at %s: %w", num.Literal, num.Start, err)
	}

	f.Name = name.Literal
	f.Number = int32(n)
	if kind, ok := scalarNames[typ]; ok {
		f.Scalar = kind
		f.TypeName = typ
	} else {
		f.TypeName = typ
		f.IsMessage = true // reclassified as an enum by Schema.resolveEnumFields once every declaration is known
	}
	if err := p.parseFieldOptions(&f); err != nil {
		return f, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return f, err
	}
	return f, nil
}

// parseTypeName accepts both bare identifiers and dotted package-qualified
// names (Foo.Bar), flattening to the last segment the way the rest of the
// schema package addresses types by simple name.
func (p *fileParser) parseTypeName() (string, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return "", err
	}
	out := name.Literal
	for p.tok.Kind == token.DOT {
		if err := p.advance(); err != nil {
			return "", err
		}
		seg, err := p.expect(token.IDENT)
		if err != nil {
			return "", err
		}
		out = seg.Literal
	}
	return out, nil
}

func (p *fileParser) skipFieldOptions() error {
	if p.tok.Kind != token.LBRACK {
		return nil
	}
	depth := 0
	for {
		switch p.tok.Kind {
		case token.LBRACK:
			depth++
		case token.RBRACK:
			depth--
		case token.EOF:
			return fmt.Errorf("schema: unterminated field options")
		}
		if err := p.advance(); err != nil {
			return err
		}
		if depth == 0 {
			return nil
		}
	}
}

// parseFieldOptions parses a field's bracketed option list
// (`[default = 7, deprecated = true]`), capturing only `default` since
// it is the one option FieldDescriptor has anywhere to hold; every
// other option's value is scanned past without interpretation.
func (p *fileParser) parseFieldOptions(f *FieldDescriptor) error {
	if p.tok.Kind != token.LBRACK {
		return nil
	}
	if err := p.advance(); err != nil {
		return err
	}
	for {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return err
		}
		if _, err := p.expect(token.EQUALS); err != nil {
			return err
		}
		if name.Literal == "default" {
			if err := p.parseDefaultValue(f); err != nil {
				return err
			}
		} else if err := p.skipOptionValue(); err != nil {
			return err
		}
		if p.tok.Kind == token.COMMA {
			if err := p.advance(); err != nil {
				return err
			}
			continue
		}
		break
	}
	_, err := p.expect(token.RBRACK)
	return err
}

// skipOptionValue advances past one option's value token: a bare
// string, identifier, or number literal in this grammar.
func (p *fileParser) skipOptionValue() error {
	switch p.tok.Kind {
	case token.STRING, token.IDENT, token.INTNUM:
		return p.advance()
	default:
		return fmt.Errorf("schema: unexpected token %s in field option at %s", p.tok.Kind, p.tok.Start)
	}
}

// parseDefaultValue reads the literal after `default =` and stores it
// typed to f's scalar kind. f.Scalar is ScalarInvalid here when the
// field's typename is still provisionally a message (enum vs message
// cannot be told apart with one token of lookahead); an identifier
// default in that case is stashed in f.defaultEnumName and resolved
// numerically once resolveEnumFields confirms the field is an enum.
func (p *fileParser) parseDefaultValue(f *FieldDescriptor) error {
	switch f.Scalar {
	case ScalarBool:
		ident, err := p.expect(token.IDENT)
		if err != nil {
			return err
		}
		f.DefaultValue.Bool = ident.Literal == "true"
	case ScalarString:
		lit, err := p.expect(token.STRING)
		if err != nil {
			return err
		}
		f.DefaultValue.Str = lit.Literal
	case ScalarBytes:
		lit, err := p.expect(token.STRING)
		if err != nil {
			return err
		}
		f.DefaultValue.Bytes = []byte(lit.Literal)
	case ScalarFloat, ScalarDouble:
		v, err := p.parseNumberLiteral()
		if err != nil {
			return err
		}
		f.DefaultValue.Float = v
	case ScalarUint32, ScalarUint64, ScalarFixed32, ScalarFixed64:
		v, err := p.parseNumberLiteral()
		if err != nil {
			return err
		}
		f.DefaultValue.Uint = uint64(v)
	case ScalarInvalid: // provisionally a message typename; may resolve to enum
		ident, err := p.expect(token.IDENT)
		if err != nil {
			return err
		}
		f.defaultEnumName = ident.Literal
	default: // signed integer kinds
		v, err := p.parseNumberLiteral()
		if err != nil {
			return err
		}
		f.DefaultValue.Int = int64(v)
	}
	return nil
}

// parseNumberLiteral reads an integer or decimal literal. The lexer
// never emits a single float token: "1.5" lexes as INTNUM(1) DOT
// INTNUM(5), so the fractional part is reassembled here.
func (p *fileParser) parseNumberLiteral() (float64, error) {
	whole, err := p.expect(token.INTNUM)
	if err != nil {
		return 0, err
	}
	lit := whole.Literal
	if p.tok.Kind == token.DOT {
		if err := p.advance(); err != nil {
			return 0, err
		}
		frac, err := p.expect(token.INTNUM)
		if err != nil {
			return 0, err
		}
		lit += "." + frac.Literal
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, fmt.Errorf("schema: bad default number %q at %s: %w", lit, whole.Start, err)
	}
	return v, nil
}

func (p *fileParser) parseEnum() (*EnumDescriptor, error) {
	comment := p.pending
	if _, err := p.expect(token.ENUM); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	e := &EnumDescriptor{Name: name.Literal, Comment: comment}
	for p.tok.Kind != token.RBRACE {
		if p.tok.Kind == token.SEMI {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		variantComment := p.pending
		vname, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQUALS); err != nil {
			return nil, err
		}
		num, err := p.expect(token.INTNUM)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(num.Literal, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("schema: bad enum value %q at %s: %w", num.Literal, num.Start, err)
		}
		if err := p.skipFieldOptions(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		e.Variants = append(e.Variants, EnumVariant{Name: vname.Literal, Number: int32(n), Comment: variantComment})
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return e, nil
}
