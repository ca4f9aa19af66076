// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"io"
	"math"
)

// A segment tracks one indefinite-length data value during normalization. A
// segment starts out pending, recording the offset of its first contents
// octet. When the matching end-of-contents marker is found the segment is
// resolved and holds the definite length octets that replace the indefinite
// length octet in the output.
type segment struct {
	start     int
	baseDelta int    // converter delta when the segment was opened
	resolved  []byte // nil while pending
}

// A converter rewrites the indefinite-length encodings in a byte buffer into
// their definite-length equivalent. The conversion happens in two passes: a
// scan pass that locates indefinite lengths and computes the definite length
// of each segment, and a rewrite pass that emits the output. The scan pass
// stops at the end of the first complete data value; any remaining input is
// treated as trailing data and preserved verbatim.
type converter struct {
	data     []byte
	dataPos  int
	dataSize int // end of the converted region, set by scan

	segs       []segment
	unresolved int
	delta      int // total change in output size relative to the input

	out    []byte
	outPos int
	index  int // next segment emitted by writeLengthAndValue
}

// normalize rewrites the first data value in data into definite-length form.
// It returns the rewritten buffer, including any trailing bytes copied
// verbatim, and the number of input bytes the first data value occupies. If
// data contains no indefinite lengths and all lengths are minimally encoded,
// data is returned unchanged.
//
// If data does not yet hold a complete data value, normalize returns
// errInsufficient. All other errors are permanent.
func normalize(data []byte) ([]byte, int, error) {
	c := &converter{data: data}
	trailing, err := c.scan()
	if err != nil {
		return nil, 0, err
	}
	if len(c.segs) == 0 && c.delta == 0 {
		return data, c.dataSize, nil
	}
	return c.rewrite(trailing), c.dataSize, nil
}

// scan walks the data values in c.data until the first complete value ends,
// recording indefinite-length segments and the total output size change. It
// returns the number of trailing bytes after the first complete value.
func (c *converter) scan() (int, error) {
	size := len(c.data)
	for c.dataPos < size {
		if c.dataPos+2 > size {
			return 0, errInsufficient
		}
		if err := c.scanTag(); err != nil {
			return 0, err
		}
		n, err := c.scanLength()
		if err != nil {
			return 0, err
		}
		c.dataPos += n
		if c.unresolved == 0 {
			break
		}
	}
	if c.unresolved != 0 || c.dataPos > size {
		return 0, errInsufficient
	}
	c.dataSize = c.dataPos
	return size - c.dataPos, nil
}

// scanTag consumes the tag octet at c.dataPos. An end-of-contents marker
// resolves the innermost pending segment; its second octet is consumed by
// scanLength as a zero length.
func (c *converter) scanTag() error {
	if c.data[c.dataPos] == 0 && c.data[c.dataPos+1] == 0 {
		i := len(c.segs) - 1
		for i >= 0 && c.segs[i].resolved != nil {
			i--
		}
		if i < 0 {
			return errUnmatchedEOC
		}
		s := &c.segs[i]
		n := c.dataPos - s.start + (c.delta - s.baseDelta)
		s.resolved = appendLength(nil, n)
		c.unresolved--
		c.delta += len(s.resolved) - 3
	}
	c.dataPos++
	return nil
}

// scanLength consumes the length octets at c.dataPos and returns the number
// of contents octets to skip. An indefinite length opens a new pending
// segment and returns zero.
func (c *converter) scanLength() (int, error) {
	b := c.data[c.dataPos]
	c.dataPos++
	if b == 0x80 {
		c.segs = append(c.segs, segment{start: c.dataPos, baseDelta: c.delta})
		c.unresolved++
		return 0, nil
	}
	if b < 0x80 {
		return int(b), nil
	}
	w := int(b & 0x7f)
	if w > 4 {
		return 0, errLengthTooWide
	}
	if len(c.data)-c.dataPos < w {
		return 0, errInsufficient
	}
	n := 0
	for range w {
		n = n<<8 | int(c.data[c.dataPos])
		c.dataPos++
	}
	if n > math.MaxInt32 {
		return 0, errInvalidLength
	}
	// non-minimal lengths shrink when re-emitted
	c.delta += lengthSize(n) - (1 + w)
	return n, nil
}

// rewrite emits the converted region followed by the trailing bytes.
func (c *converter) rewrite(trailing int) []byte {
	c.out = make([]byte, c.dataSize+c.delta+trailing)
	c.dataPos = 0
	for c.dataPos < c.dataSize {
		c.writeTag()
		c.writeLengthAndValue()
	}
	copy(c.out[c.dataSize+c.delta:], c.data[c.dataSize:c.dataSize+trailing])
	return c.out
}

// writeTag copies the next tag octet, eliding end-of-contents markers.
func (c *converter) writeTag() {
	for c.dataPos < c.dataSize {
		b := c.data[c.dataPos]
		if b == 0 && c.data[c.dataPos+1] == 0 {
			c.dataPos += 2
			continue
		}
		c.out[c.outPos] = b
		c.outPos++
		c.dataPos++
		return
	}
}

// writeLengthAndValue emits the length octets following the current tag. An
// indefinite length octet is replaced by the definite length recorded during
// the scan pass, all other lengths are re-emitted in minimal form followed by
// their contents octets.
func (c *converter) writeLengthAndValue() {
	if c.dataPos >= c.dataSize {
		return
	}
	b := c.data[c.dataPos]
	c.dataPos++
	switch {
	case b == 0x80:
		c.outPos += copy(c.out[c.outPos:], c.segs[c.index].resolved)
		c.index++
	case b < 0x80:
		c.writeValue(int(b))
	default:
		w := int(b & 0x7f)
		n := 0
		for range w {
			n = n<<8 | int(c.data[c.dataPos])
			c.dataPos++
		}
		c.writeValue(n)
	}
}

func (c *converter) writeValue(n int) {
	c.outPos = len(appendLength(c.out[:c.outPos], n))
	c.outPos += copy(c.out[c.outPos:], c.data[c.dataPos:c.dataPos+n])
	c.dataPos += n
}

// maxEmptyReads is the number of successive zero-byte, error-free reads
// normalizeStream tolerates before giving up on the reader.
const maxEmptyReads = 100

// normalizeStream completes a data value whose tag and first length octet
// have already been consumed from r. It grows its working buffer by reading
// from r until the buffer holds a complete data value and returns the
// definite-length equivalent of everything read. A clean end of the stream
// while indefinite-length segments remain open is a permanent error.
func normalizeStream(r io.Reader, tag Tag, lenByte byte) ([]byte, error) {
	buf := make([]byte, 2, 2048)
	buf[0], buf[1] = byte(tag), lenByte
	empty := 0
	for {
		out, _, err := normalize(buf)
		if err == nil {
			return out, nil
		}
		if err != errInsufficient {
			return nil, syntaxError(tag, err)
		}
		var chunk [1024]byte
		n, rerr := r.Read(chunk[:])
		buf = append(buf, chunk[:n]...)
		if rerr == io.EOF {
			if n > 0 {
				continue
			}
			return nil, syntaxError(tag, errors.New("indefinite length not resolved before end of stream"))
		}
		if rerr != nil {
			return nil, rerr
		}
		if n == 0 {
			if empty++; empty >= maxEmptyReads {
				return nil, io.ErrNoProgress
			}
			continue
		}
		empty = 0
	}
}
