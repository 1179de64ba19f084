package ron

type nodeKind int

const (
	nodeBool nodeKind = iota
	nodeNumber
	nodeString
	nodeChar
	// bare identifier: unit struct or unit enum variant
	nodeIdent
	nodeUnit
	nodeNone
	nodeSome
	nodeList
	nodeMap
	nodeStruct
	nodeTuple
)

func (k nodeKind) String() string {
	switch k {
	case nodeBool:
		return "bool"
	case nodeNumber:
		return "number"
	case nodeString:
		return "string"
	case nodeChar:
		return "char"
	case nodeIdent:
		return "identifier"
	case nodeUnit:
		return "unit"
	case nodeNone:
		return "None"
	case nodeSome:
		return "Some"
	case nodeList:
		return "list"
	case nodeMap:
		return "map"
	case nodeStruct:
		return "struct"
	case nodeTuple:
		return "tuple"
	default:
		return "value"
	}
}

type field struct {
	name string
	pos  Position
	val  *node
}

type entry struct {
	key *node
	val *node
}

type node struct {
	kind nodeKind
	pos  Position
	// struct/tuple name (may be empty), identifier, number literal or string value
	text    string
	boolean bool
	items   []*node
	fields  []field
	entries []entry
}

type extensions struct {
	implicitSome bool
}

// maxDepth bounds how deeply values may nest.
const maxDepth = 128

// parser pulls tokens from the lexer on demand. A lexer error ends the
// token stream; parse reports it in place of whatever the parser saw.
type parser struct {
	lx    *lexer
	ahead []token
	err   error
	depth int
	ext   extensions
}

// parse reads a complete document: optional #![enable(...)] attributes
// followed by exactly one value.
func parse(src []byte) (*node, extensions, error) {
	p := &parser{lx: &lexer{src: src, line: 1, col: 1}}
	n, err := p.parseDocument()
	if p.err != nil {
		return nil, p.ext, p.err
	}
	if err != nil {
		return nil, p.ext, err
	}
	return n, p.ext, nil
}

func (p *parser) parseDocument() (*node, error) {
	if err := p.parseAttributes(); err != nil {
		return nil, err
	}
	n, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, errorf(tok.pos, "trailing characters after value")
	}
	return n, nil
}

func (p *parser) fill(n int) {
	for len(p.ahead) < n {
		if p.err != nil {
			p.ahead = append(p.ahead, token{kind: tokenEOF, pos: p.lx.pos()})
			continue
		}
		tok, err := p.lx.next()
		if err != nil {
			p.err = err
			continue
		}
		p.ahead = append(p.ahead, tok)
	}
}

func (p *parser) peek() token {
	return p.peekAt(0)
}

func (p *parser) peekAt(ahead int) token {
	p.fill(ahead + 1)
	return p.ahead[ahead]
}

func (p *parser) next() token {
	tok := p.peek()
	if tok.kind != tokenEOF {
		p.ahead = p.ahead[1:]
	}
	return tok
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, errorf(tok.pos, "expected %s, found %s", kind, describe(tok))
	}
	return tok, nil
}

func describe(tok token) string {
	switch tok.kind {
	case tokenIdent, tokenNumber:
		return tok.kind.String() + " `" + tok.text + "`"
	case tokenString:
		return "string"
	default:
		return tok.kind.String()
	}
}

func (p *parser) parseAttributes() error {
	for p.peek().kind == tokenHash {
		p.next()
		if _, err := p.expect(tokenBang); err != nil {
			return err
		}
		if _, err := p.expect(tokenLBracket); err != nil {
			return err
		}
		attr, err := p.expect(tokenIdent)
		if err != nil {
			return err
		}
		if attr.text != "enable" {
			return errorf(attr.pos, "unknown attribute `%s`", attr.text)
		}
		if _, err := p.expect(tokenLParen); err != nil {
			return err
		}
		for p.peek().kind != tokenRParen {
			ext, err := p.expect(tokenIdent)
			if err != nil {
				return err
			}
			switch ext.text {
			case "implicit_some":
				p.ext.implicitSome = true
			case "unwrap_newtypes", "unwrap_variant_newtypes", "explicit_struct_names":
				// accepted, no effect on decoding into Go values
			default:
				return errorf(ext.pos, "unknown extension `%s`", ext.text)
			}
			if p.peek().kind == tokenComma {
				p.next()
			}
		}
		p.next()
		if _, err := p.expect(tokenRBracket); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseValue() (*node, error) {
	tok := p.next()
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, errorf(tok.pos, "exceeded recursion limit of %d", maxDepth)
	}
	switch tok.kind {
	case tokenNumber:
		return &node{kind: nodeNumber, pos: tok.pos, text: tok.text}, nil
	case tokenString:
		return &node{kind: nodeString, pos: tok.pos, text: tok.text}, nil
	case tokenChar:
		return &node{kind: nodeChar, pos: tok.pos, text: tok.text}, nil
	case tokenLBracket:
		return p.parseList(tok)
	case tokenLBrace:
		return p.parseMap(tok)
	case tokenLParen:
		return p.parseParens(tok.pos, "")
	case tokenIdent:
		return p.parseIdent(tok)
	}
	return nil, errorf(tok.pos, "expected value, found %s", describe(tok))
}

func (p *parser) parseIdent(tok token) (*node, error) {
	switch tok.text {
	case "true", "false":
		return &node{kind: nodeBool, pos: tok.pos, boolean: tok.text == "true"}, nil
	case "inf", "NaN":
		return &node{kind: nodeNumber, pos: tok.pos, text: tok.text}, nil
	case "None":
		return &node{kind: nodeNone, pos: tok.pos}, nil
	case "Some":
		if _, err := p.expect(tokenLParen); err != nil {
			return nil, err
		}
		inner, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if p.peek().kind == tokenComma {
			p.next()
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return &node{kind: nodeSome, pos: tok.pos, items: []*node{inner}}, nil
	}
	if p.peek().kind == tokenLParen {
		p.next()
		return p.parseParens(tok.pos, tok.text)
	}
	return &node{kind: nodeIdent, pos: tok.pos, text: tok.text}, nil
}

func (p *parser) parseList(open token) (*node, error) {
	n := &node{kind: nodeList, pos: open.pos}
	for p.peek().kind != tokenRBracket {
		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		n.items = append(n.items, item)
		if p.peek().kind != tokenComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(tokenRBracket); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) parseMap(open token) (*node, error) {
	n := &node{kind: nodeMap, pos: open.pos}
	for p.peek().kind != tokenRBrace {
		key, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenColon); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		n.entries = append(n.entries, entry{key: key, val: val})
		if p.peek().kind != tokenComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(tokenRBrace); err != nil {
		return nil, err
	}
	return n, nil
}

// parseParens reads what follows '(': a struct with named fields when the
// first element is `ident:`, a tuple otherwise, or unit for "()".
func (p *parser) parseParens(pos Position, name string) (*node, error) {
	if p.peek().kind == tokenRParen {
		p.next()
		if name != "" {
			return &node{kind: nodeStruct, pos: pos, text: name}, nil
		}
		return &node{kind: nodeUnit, pos: pos}, nil
	}

	if p.peek().kind == tokenIdent && p.peekAt(1).kind == tokenColon {
		n := &node{kind: nodeStruct, pos: pos, text: name}
		for p.peek().kind != tokenRParen {
			key, err := p.expect(tokenIdent)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokenColon); err != nil {
				return nil, err
			}
			val, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			n.fields = append(n.fields, field{name: key.text, pos: key.pos, val: val})
			if p.peek().kind != tokenComma {
				break
			}
			p.next()
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return n, nil
	}

	n := &node{kind: nodeTuple, pos: pos, text: name}
	for p.peek().kind != tokenRParen {
		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		n.items = append(n.items, item)
		if p.peek().kind != tokenComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(tokenRParen); err != nil {
		return nil, err
	}
	return n, nil
}
