package parser

import (
	"errors"

	"github.com/edwingeng/deque"

	"github.com/simp-lang/simp/internal/lexer"
)

// ErrInvalidBackup is returned by Backup when there is no consumed token to
// push back, or a token has already been pushed back.
var ErrInvalidBackup = errors.New("parser: invalid token push-back")

// Stream is the consumable token sequence the parser reads from. It owns the
// tokens once constructed and supports one token of push-back.
type Stream struct {
	queue deque.Deque

	last    lexer.Token
	hasLast bool
	pushed  bool

	end lexer.Span
}

// NewStream queues tokens for consumption.
func NewStream(tokens []lexer.Token) *Stream {
	s := &Stream{queue: deque.NewDeque()}
	for _, tok := range tokens {
		s.queue.PushBack(tok)
	}
	s.end = endSpan(tokens)
	return s
}

// endSpan returns a one-column span just past the last token.
func endSpan(tokens []lexer.Token) lexer.Span {
	if len(tokens) == 0 {
		return lexer.Span{Line: 1, Column: 1, Start: 0, End: 1}
	}
	last := tokens[len(tokens)-1].Span
	width := last.End - last.Start
	return lexer.Span{
		Filename: last.Filename,
		Line:     last.Line,
		Column:   last.Column + width,
		Start:    last.End,
		End:      last.End + 1,
	}
}

// Peek returns the next token without consuming it.
func (s *Stream) Peek() (lexer.Token, bool) {
	if s.pushed {
		return s.last, true
	}
	if s.queue.Empty() {
		return lexer.Token{}, false
	}
	return s.queue.Front().(lexer.Token), true
}

// Next consumes and returns the next token.
func (s *Stream) Next() (lexer.Token, bool) {
	if s.pushed {
		s.pushed = false
		return s.last, true
	}
	if s.queue.Empty() {
		return lexer.Token{}, false
	}
	tok := s.queue.PopFront().(lexer.Token)
	s.last = tok
	s.hasLast = true
	return tok, true
}

// Backup pushes the most recently consumed token back onto the stream.
// Only a single token may be pushed back at a time.
func (s *Stream) Backup() error {
	if !s.hasLast || s.pushed {
		return ErrInvalidBackup
	}
	s.pushed = true
	return nil
}

// Done reports whether every token has been consumed.
func (s *Stream) Done() bool {
	return !s.pushed && s.queue.Empty()
}

// Len returns the number of tokens left.
func (s *Stream) Len() int {
	n := s.queue.Len()
	if s.pushed {
		n++
	}
	return n
}

// EndSpan is the position reported for errors at end of input.
func (s *Stream) EndSpan() lexer.Span {
	return s.end
}
