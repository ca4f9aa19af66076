// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"io"
	"strings"
)

var (
	errTruncated     = errors.New("truncated data value")
	errUnmatchedEOC  = errors.New("end of contents without enclosing indefinite length")
	errLengthTooWide = errors.New("length field exceeds 4 octets")
	errInvalidLength = errors.New("invalid length octets")

	// errInsufficient signals that a buffer does not yet hold a complete data
	// value. It never escapes the package: buffer-based parsing maps it to
	// io.ErrUnexpectedEOF, stream-based parsing reads more data and retries.
	errInsufficient = errors.New("insufficient data")
)

// A SyntaxError reports malformed DER or BER input. Tag identifies the data
// value in which the error was found and may be zero if no tag could be read.
type SyntaxError struct {
	Tag Tag // where the syntax error occurred
	Err error
}

func (e *SyntaxError) Error() string {
	var s strings.Builder
	s.WriteString("der: syntax error")
	if e.Tag != 0 {
		s.WriteString(" decoding ")
		s.WriteString(e.Tag.String())
	}
	if e.Err != nil {
		s.WriteString(": ")
		s.WriteString(e.Err.Error())
	}
	return s.String()
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// syntaxError wraps err in a *SyntaxError unless it already is one.
func syntaxError(tag Tag, err error) error {
	var se *SyntaxError
	if errors.As(err, &se) {
		return err
	}
	return &SyntaxError{Tag: tag, Err: err}
}

// noEOF returns err, unless err == io.EOF, in which case it returns io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
