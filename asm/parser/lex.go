package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Character sets.
const (
	commentChars    = ";#"
	separatorChar   = ','
	labelChar       = ':'
	blankChars      = " \t\r"
	identifierChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_.[]"
)

type itemType int

const (
	itemError itemType = iota // Value is the error message.
	itemNewline
	itemIdentifier
	itemNumber
	itemComment
	itemLabel // Value without the colon.
	itemComa
	itemEOF
)

func (it itemType) String() string {
	switch it {
	case itemError:
		return "<error>"
	case itemNewline:
		return "<newline>"
	case itemIdentifier:
		return "<identifier>"
	case itemNumber:
		return "<number>"
	case itemComment:
		return "<comment>"
	case itemLabel:
		return "<label>"
	case itemComa:
		return "<coma>"
	case itemEOF:
		return "<eof>"
	default:
		return fmt.Sprintf("<unknown token %d>", it)
	}
}

type item struct {
	typ  itemType
	val  string
	line int // Line of the first character.
}

func (i item) String() string {
	switch i.typ {
	case itemEOF:
		return "EOF"
	case itemError:
		return i.val
	case itemNewline:
		return "newline"
	}
	return fmt.Sprintf("%s %q", i.typ, i.val)
}

// stateFn consumes input and returns the next state, nil once an item is ready.
type stateFn func(*lexer) stateFn

// lexer splits assembly source into items, one nextItem call at a time.
type lexer struct {
	name string
	src  string

	off       int // Read offset.
	line      int // Line at the read offset.
	start     int // Offset of the pending item.
	startLine int

	out item
}

// NewLexer creates a new scanner for the input string.
func NewLexer(name, input string) *lexer {
	return &lexer{
		name:      name,
		src:       input,
		line:      1,
		startLine: 1,
	}
}

func (l *lexer) done() bool { return l.off >= len(l.src) }

// cur returns the byte at the read offset, 0 at the end of the input.
func (l *lexer) cur() byte {
	if l.done() {
		return 0
	}
	return l.src[l.off]
}

// skip consumes the run of bytes from set.
func (l *lexer) skip(set string) {
	for !l.done() && strings.IndexByte(set, l.src[l.off]) >= 0 {
		if l.src[l.off] == '\n' {
			l.line++
		}
		l.off++
	}
}

// mark drops the pending text, the next item starts at the read offset.
func (l *lexer) mark() {
	l.start, l.startLine = l.off, l.line
}

func (l *lexer) produce(t itemType) stateFn {
	l.out = item{typ: t, val: l.src[l.start:l.off], line: l.startLine}
	l.mark()
	return nil
}

// fail yields an error item and drops the rest of the input.
func (l *lexer) fail(format string, args ...any) stateFn {
	l.out = item{typ: itemError, val: fmt.Sprintf(format, args...), line: l.startLine}
	l.off = len(l.src)
	l.mark()
	return nil
}

func lexText(l *lexer) stateFn {
	l.skip(blankChars)
	l.mark()
	c := l.cur()
	switch {
	case l.done():
		return l.produce(itemEOF)
	case c == '\n':
		// Blank lines collapse into a single newline item.
		l.skip(blankChars + "\n")
		if l.done() {
			return l.produce(itemEOF)
		}
		return l.produce(itemNewline)
	case c == separatorChar:
		l.off++
		return l.produce(itemComa)
	case '0' <= c && c <= '9':
		return lexNumber
	case strings.IndexByte(commentChars, c) >= 0:
		return lexComment
	case strings.IndexByte(identifierChars, c) >= 0:
		return lexIdentifier
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.off:])
	return l.fail("unexpected character %q", r)
}

func lexNumber(l *lexer) stateFn {
	digits := "0123456789_"
	if l.cur() == '0' && l.off+1 < len(l.src) {
		switch l.src[l.off+1] {
		case 'x', 'X':
			digits = "0123456789abcdefABCDEF_"
			l.off += 2
		case 'b', 'B':
			digits = "01_"
			l.off += 2
		}
	}
	l.skip(digits)
	if !l.done() && strings.IndexByte(identifierChars, l.cur()) >= 0 {
		return l.fail("bad number syntax: %q", l.src[l.start:l.off+1])
	}
	return l.produce(itemNumber)
}

func lexIdentifier(l *lexer) stateFn {
	l.skip(identifierChars)
	if l.cur() != labelChar {
		return l.produce(itemIdentifier)
	}
	name := l.src[l.start:l.off]
	l.off++
	l.produce(itemLabel)
	l.out.val = name
	return nil
}

// lexComment runs to the end of the line, the newline is left for the next item.
func lexComment(l *lexer) stateFn {
	if i := strings.IndexByte(l.src[l.off:], '\n'); i >= 0 {
		l.off += i
	} else {
		l.off = len(l.src)
	}
	l.produce(itemComment)
	l.out.val = strings.TrimSpace(l.out.val)
	return nil
}

// nextItem returns the next item from the input.
func (l *lexer) nextItem() item {
	for state := stateFn(lexText); state != nil; {
		state = state(l)
	}
	return l.out
}
