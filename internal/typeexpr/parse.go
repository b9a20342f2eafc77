package typeexpr

import (
	"fmt"
	"strings"
)

// ParseError reports a failure to compile a type expression. Offset is a
// byte offset into the input string; when the input was extracted from a
// larger document, the caller owns translating the offset back into
// document coordinates.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("type expression: %s (at offset %d)", e.Msg, e.Offset)
}

// Parse compiles a type expression into a Type tree.
//
// Grammar, loosely:
//
//	type    := ["either"] single ("or" single)*
//	single  := article? (completion | list | record | name)
//	completion := "normal completion containing" single
//	            | "abrupt completion" | "Completion Record"
//	list    := "List of" single
//	record  := "Record with fields" field (("," | "and") field)*
//	field   := "[[" name "]]" "(" type ")"
//
// Articles ("a", "an") are consumed and discarded wherever a single type
// begins. A bare name runs until a delimiter, so multi-word names like
// "ECMAScript language value" need no quoting.
func Parse(src string) (*Type, error) {
	p := &parser{src: src}
	t, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos != len(p.src) {
		return nil, &ParseError{Offset: p.pos, Msg: "unexpected text after type"}
	}
	return t, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// hasPhrase reports whether the input at the cursor begins with phrase
// followed by a word boundary.
func (p *parser) hasPhrase(phrase string) bool {
	rest := p.src[p.pos:]
	if !strings.HasPrefix(rest, phrase) {
		return false
	}
	if len(rest) == len(phrase) {
		return true
	}
	switch rest[len(phrase)] {
	case ' ', '\t', '\n', ',', ')':
		return true
	}
	return false
}

func (p *parser) consumePhrase(phrase string) {
	p.pos += len(phrase)
}

func (p *parser) parseUnion() (*Type, error) {
	p.skipSpaces()
	if p.hasPhrase("either") {
		p.consumePhrase("either")
	}
	first, err := p.parseSingle()
	if err != nil {
		return nil, err
	}
	members := []*Type{first}
	for {
		save := p.pos
		p.skipSpaces()
		if !p.hasPhrase("or") {
			p.pos = save
			break
		}
		p.consumePhrase("or")
		m, err := p.parseSingle()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if len(members) == 1 {
		return first, nil
	}
	return &Type{Kind: KindUnion, Members: members}, nil
}

func (p *parser) parseSingle() (*Type, error) {
	p.skipSpaces()
	if p.hasPhrase("an") {
		p.consumePhrase("an")
	} else if p.hasPhrase("a") {
		p.consumePhrase("a")
	}
	p.skipSpaces()

	switch {
	case p.hasPhrase("normal completion containing"):
		p.consumePhrase("normal completion containing")
		inner, err := p.parseSingle()
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindCompletion, Inner: inner}, nil

	case p.hasPhrase("abrupt completion"), p.hasPhrase("Completion Record"):
		if p.hasPhrase("abrupt completion") {
			p.consumePhrase("abrupt completion")
		} else {
			p.consumePhrase("Completion Record")
		}
		return &Type{Kind: KindCompletion}, nil

	case p.hasPhrase("List of"):
		p.consumePhrase("List of")
		el, err := p.parseSingle()
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindList, Element: el}, nil

	case p.hasPhrase("Record with fields"):
		p.consumePhrase("Record with fields")
		return p.parseFields()
	}

	return p.parseName()
}

// parseName consumes a bare type name up to a delimiter: a comma, a
// closing paren, or the standalone word "or".
func (p *parser) parseName() (*Type, error) {
	start := p.pos
	end := p.pos
	for end < len(p.src) {
		c := p.src[end]
		if c == ',' || c == ')' {
			break
		}
		if c == ' ' || c == '\t' || c == '\n' {
			save := p.pos
			p.pos = end
			p.skipSpaces()
			if p.hasPhrase("or") {
				p.pos = save
				break
			}
			end = p.pos
			p.pos = save
			continue
		}
		end++
	}
	name := strings.TrimRight(p.src[start:end], " \t\n")
	if name == "" {
		return nil, &ParseError{Offset: start, Msg: "expected a type"}
	}
	p.pos = start + len(name)
	return &Type{Kind: KindNamed, Name: name}, nil
}

func (p *parser) parseFields() (*Type, error) {
	var fields []Field
	for {
		p.skipSpaces()
		if !strings.HasPrefix(p.src[p.pos:], "[[") {
			return nil, &ParseError{Offset: p.pos, Msg: "expected [[ to begin a field name"}
		}
		p.pos += 2
		close := strings.Index(p.src[p.pos:], "]]")
		if close < 0 {
			return nil, &ParseError{Offset: p.pos, Msg: "unterminated field name"}
		}
		name := p.src[p.pos : p.pos+close]
		p.pos += close + 2

		p.skipSpaces()
		if p.peek() != '(' {
			return nil, &ParseError{Offset: p.pos, Msg: "expected ( before field type"}
		}
		p.pos++
		ft, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return nil, &ParseError{Offset: p.pos, Msg: "expected ) after field type"}
		}
		p.pos++
		fields = append(fields, Field{Name: name, Type: ft})

		save := p.pos
		p.skipSpaces()
		if p.peek() == ',' {
			p.pos++
			p.skipSpaces()
			if p.hasPhrase("and") {
				p.consumePhrase("and")
			}
			continue
		}
		if p.hasPhrase("and") {
			p.consumePhrase("and")
			continue
		}
		p.pos = save
		break
	}
	return &Type{Kind: KindRecord, Fields: fields}, nil
}
