package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// OperandKind classifies operands.
type OperandKind int

const (
	OperandNumber   OperandKind = iota
	OperandRegister             // v0 <--> vf, Value is the index.
	OperandKeyword              // i, [i], dt, st, k, f, b.
	OperandLabel                // Reference resolved by the assembler.
)

func (k OperandKind) String() string {
	switch k {
	case OperandNumber:
		return "number"
	case OperandRegister:
		return "register"
	case OperandKeyword:
		return "keyword"
	case OperandLabel:
		return "label"
	default:
		return fmt.Sprintf("<unknown operand kind %d>", int(k))
	}
}

var keywords = []string{"i", "[i]", "dt", "st", "k", "f", "b"}

// Operand of a statement.
type Operand struct {
	Kind  OperandKind
	Text  string // As written. Lower case for registers and keywords.
	Value int    // Number or register index.
}

func (o Operand) String() string { return o.Text }

// Statement is one source line with an instruction or a directive.
// A trailing label alone at the end of the input yields a statement without mnemonic.
type Statement struct {
	Line     int
	Labels   []string
	Mnemonic string // Lower case.
	Operands []Operand
	Comment  string
}

func (st Statement) String() string {
	out := ""
	for _, label := range st.Labels {
		out += label + string(labelChar) + "\n"
	}
	if st.Mnemonic == "" {
		return out
	}
	out += "\t" + st.Mnemonic
	paramStrs := make([]string, 0, len(st.Operands))
	for _, elem := range st.Operands {
		paramStrs = append(paramStrs, elem.String())
	}
	if len(paramStrs) > 0 {
		out += " " + strings.Join(paramStrs, string(separatorChar)+" ")
	}
	return out
}

// Error is a positioned syntax error.
type Error struct {
	Name string
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Name, e.Line, e.Msg)
}

type Parser struct {
	name string
	lex  *lexer

	Statements []*Statement
	labels     map[string]int // Line of definition.
}

func NewParser(name, input string) *Parser {
	return &Parser{
		name:   name,
		lex:    NewLexer(name, input),
		labels: map[string]int{},
	}
}

func (p *Parser) errorf(line int, format string, args ...any) error {
	return &Error{Name: p.name, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Parse consumes the whole input.
func (p *Parser) Parse() error {
	cur := &Statement{}
	needComma := false
	for {
		it := p.lex.nextItem()
		switch it.typ {
		case itemError:
			return p.errorf(it.line, "%s", it.val)

		case itemLabel:
			if cur.Mnemonic != "" {
				return p.errorf(it.line, "unexpected label %q after %q", it.val, cur.Mnemonic)
			}
			if !isLabelName(it.val) {
				return p.errorf(it.line, "invalid label name %q", it.val)
			}
			if line, ok := p.labels[it.val]; ok {
				return p.errorf(it.line, "duplicate label %q, first defined line %d", it.val, line)
			}
			p.labels[it.val] = it.line
			cur.Labels = append(cur.Labels, it.val)

		case itemIdentifier, itemNumber:
			if cur.Mnemonic == "" {
				if it.typ == itemNumber {
					return p.errorf(it.line, "unexpected number %q, expected an instruction", it.val)
				}
				cur.Mnemonic = strings.ToLower(it.val)
				cur.Line = it.line
				continue
			}
			if needComma {
				return p.errorf(it.line, "missing %q before %q", separatorChar, it.val)
			}
			operand, err := parseOperand(it)
			if err != nil {
				return p.errorf(it.line, "%s", err)
			}
			cur.Operands = append(cur.Operands, operand)
			needComma = true

		case itemComa:
			if !needComma {
				return p.errorf(it.line, "unexpected %q", separatorChar)
			}
			needComma = false

		case itemComment:
			cur.Comment = strings.TrimLeft(it.val, commentChars+" ")

		case itemNewline, itemEOF:
			if cur.Mnemonic != "" && !needComma && len(cur.Operands) > 0 {
				return p.errorf(it.line, "trailing %q", separatorChar)
			}
			if cur.Mnemonic != "" {
				p.Statements = append(p.Statements, cur)
				cur = &Statement{}
				needComma = false
			} else {
				// Comment or label only line, labels move to the next statement.
				cur.Comment = ""
			}
			if it.typ == itemEOF {
				if len(cur.Labels) > 0 {
					cur.Line = it.line
					p.Statements = append(p.Statements, cur)
				}
				return nil
			}
		}
	}
}

func isLabelName(s string) bool {
	if s == "" || strings.ContainsAny(s, "[]") || ('0' <= s[0] && s[0] <= '9') {
		return false
	}
	if _, ok := register(s); ok {
		return false
	}
	for _, elem := range keywords {
		if strings.EqualFold(s, elem) {
			return false
		}
	}
	return true
}

func register(s string) (int, bool) {
	if len(s) != 2 || (s[0] != 'v' && s[0] != 'V') {
		return 0, false
	}
	n, err := strconv.ParseUint(s[1:], 16, 4)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

func parseOperand(it item) (Operand, error) {
	if it.typ == itemNumber {
		n, err := ParseNumber(it.val)
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandNumber, Text: it.val, Value: n}, nil
	}
	low := strings.ToLower(it.val)
	if n, ok := register(low); ok {
		return Operand{Kind: OperandRegister, Text: low, Value: n}, nil
	}
	for _, elem := range keywords {
		if low == elem {
			return Operand{Kind: OperandKeyword, Text: low}, nil
		}
	}
	if !isLabelName(it.val) {
		return Operand{}, fmt.Errorf("invalid operand %q", it.val)
	}
	return Operand{Kind: OperandLabel, Text: it.val}, nil
}

// ParseNumber parses decimal, 0x hexadecimal and 0b binary literals.
// Underscores are ignored.
func ParseNumber(s string) (int, error) {
	digits, base := strings.ReplaceAll(strings.ToLower(s), "_", ""), 10
	switch {
	case strings.HasPrefix(digits, "0x"):
		digits, base = digits[2:], 16
	case strings.HasPrefix(digits, "0b"):
		digits, base = digits[2:], 2
	}
	n, err := strconv.ParseUint(digits, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return int(n), nil
}
