// Package header compiles structured algorithm headers: the grammar
// over the header line itself plus the adjacent description list that
// together declare an operation's signature and metadata.
package header

import (
	"fmt"
	"strings"
)

// Placeholder text substituted by downstream consumers when the header
// grammar fails. The literal header content is still rendered; these
// stand in wherever a parsed name or parameter list is required.
const (
	PlaceholderName   = "UNKNOWN"
	PlaceholderParams = "UNPARSEABLE ARGUMENTS"
)

// ParseError reports a header grammar failure. Offset is a byte offset
// into the raw header source handed to ParseHeader.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("header: %s (at offset %d)", e.Msg, e.Offset)
}

// Param is one parsed formal parameter.
//
// TypeText is the raw annotation following the parameter's colon, empty
// when the parameter is unannotated; TypeOffset is its byte offset into
// the header source. Deleted marks parameters wrapped in removed-
// revision markup: rendered, but excluded from the compiled signature.
type Param struct {
	Name       string
	TypeText   string
	TypeOffset int
	Deleted    bool
}

// Header is a parsed header line.
type Header struct {
	Name     string
	Params   []Param
	Optional []Param

	ReturnText   string
	ReturnOffset int
}

// ParseHeader parses raw header source into name, required and optional
// parameter lists, and the trailing return annotation.
//
// The notation:
//
//	Name ( _a_: type, _b_ [ , _c_: type ] ): return type
//
// Optional parameters sit in a trailing bracket-delimited group, which
// may nest. Parameter names are underscore-delimited. Markup tags inside
// the source are skipped; <del> spans mark their parameters Deleted.
// Byte offsets always refer to the original source, tags included.
func ParseHeader(src string) (*Header, error) {
	p := &headerParser{src: src}
	return p.parse()
}

type headerParser struct {
	src      string
	pos      int
	delDepth int
}

// skipGaps advances over whitespace and markup tags, tracking how deep
// inside <del> spans the cursor is.
func (p *headerParser) skipGaps() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		if c == '<' {
			end := strings.IndexByte(p.src[p.pos:], '>')
			if end < 0 {
				return
			}
			tag := p.src[p.pos+1 : p.pos+end]
			switch {
			case strings.HasPrefix(tag, "del"):
				p.delDepth++
			case strings.HasPrefix(tag, "/del"):
				p.delDepth--
			}
			p.pos += end + 1
			continue
		}
		return
	}
}

func (p *headerParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *headerParser) parse() (*Header, error) {
	h := &Header{}
	p.skipGaps()

	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '(' || c == '<' {
			break
		}
		p.pos++
	}
	h.Name = p.src[start:p.pos]
	if h.Name == "" {
		return nil, &ParseError{Offset: p.pos, Msg: "expected an operation name"}
	}

	p.skipGaps()
	if p.pos >= len(p.src) {
		return h, nil
	}
	if p.peek() != '(' {
		return nil, &ParseError{Offset: p.pos, Msg: "expected ( to begin the parameter list"}
	}
	p.pos++

	if err := p.parseParams(h); err != nil {
		return nil, err
	}

	p.skipGaps()
	if p.pos >= len(p.src) {
		return h, nil
	}
	if p.peek() != ':' {
		return nil, &ParseError{Offset: p.pos, Msg: "expected : before the return type"}
	}
	p.pos++
	p.skipGaps()
	h.ReturnOffset = p.pos
	h.ReturnText = strings.TrimRight(p.src[p.pos:], " \t\n\r")
	if h.ReturnText == "" {
		return nil, &ParseError{Offset: p.pos, Msg: "expected a return type after :"}
	}
	p.pos = len(p.src)
	return h, nil
}

func (p *headerParser) parseParams(h *Header) error {
	optionalDepth := 0
	for {
		p.skipGaps()
		switch p.peek() {
		case 0:
			return &ParseError{Offset: p.pos, Msg: "unterminated parameter list"}
		case ')':
			if optionalDepth != 0 {
				return &ParseError{Offset: p.pos, Msg: "unclosed optional parameter group"}
			}
			p.pos++
			return nil
		case ']':
			if optionalDepth == 0 {
				return &ParseError{Offset: p.pos, Msg: "] without an optional group"}
			}
			optionalDepth--
			p.pos++
			continue
		case '[':
			optionalDepth++
			p.pos++
			p.skipGaps()
			if p.peek() == ',' {
				p.pos++
			}
			continue
		case ',':
			p.pos++
			continue
		}

		param, err := p.parseParam()
		if err != nil {
			return err
		}
		if optionalDepth > 0 {
			h.Optional = append(h.Optional, param)
		} else {
			h.Params = append(h.Params, param)
		}
	}
}

func (p *headerParser) parseParam() (Param, error) {
	param := Param{Deleted: p.delDepth > 0}
	if p.peek() != '_' {
		return param, &ParseError{Offset: p.pos, Msg: "expected a parameter name delimited by underscores"}
	}
	p.pos++
	end := strings.IndexByte(p.src[p.pos:], '_')
	if end < 0 {
		return param, &ParseError{Offset: p.pos, Msg: "unterminated parameter name"}
	}
	param.Name = p.src[p.pos : p.pos+end]
	p.pos += end + 1

	p.skipGaps()
	if p.peek() != ':' {
		return param, nil
	}
	p.pos++
	p.skipGaps()
	param.TypeOffset = p.pos
	text := p.scanTypeText()
	param.TypeText = strings.TrimRight(text, " \t\n\r")
	if param.TypeText == "" {
		return param, &ParseError{Offset: param.TypeOffset, Msg: "expected a type after :"}
	}
	return param, nil
}

// scanTypeText consumes an inline type annotation: everything up to the
// next comma, paren, or bracket at nesting depth zero. Record field
// names nest as [[ ]] pairs; a lone bracket at depth zero belongs to
// the surrounding optional-group notation, not the type.
func (p *headerParser) scanTypeText() string {
	start := p.pos
	parens, records := 0, 0
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '(':
			parens++
		case ')':
			if parens == 0 {
				return p.src[start:p.pos]
			}
			parens--
		case '[':
			if strings.HasPrefix(p.src[p.pos:], "[[") {
				records++
				p.pos += 2
				continue
			}
			if parens == 0 && records == 0 {
				return p.src[start:p.pos]
			}
		case ']':
			if records > 0 && strings.HasPrefix(p.src[p.pos:], "]]") {
				records--
				p.pos += 2
				continue
			}
			if parens == 0 && records == 0 {
				return p.src[start:p.pos]
			}
		case ',':
			if parens == 0 && records == 0 {
				return p.src[start:p.pos]
			}
		}
		p.pos++
	}
	return p.src[start:p.pos]
}
