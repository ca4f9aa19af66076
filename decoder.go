// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"io"
	"iter"
	"math/big"
	"time"
)

// A Decoder reads successive data values from a range of a byte buffer.
// Values returned by the decoder share the decoder's buffer.
//
// The zero value of Decoder is an empty decoder; use [NewDecoder] or
// [Value.Data] to obtain a usable one.
type Decoder struct {
	buf     []byte
	start   int
	end     int
	pos     int
	relaxed bool
}

// NewDecoder returns a Decoder reading data values from b. The decoder
// accepts BER constructs such as indefinite lengths.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b, end: len(b), relaxed: true}
}

// Next decodes the next data value, advancing the decoder past its encoding.
// Decoding an indefinite-length value advances past the end-of-contents
// marker terminating it.
func (d *Decoder) Next() (*Value, error) {
	v, n, err := parse(d.buf, d.pos, d.end, d.relaxed, false)
	if err != nil {
		return nil, err
	}
	d.pos += n
	return v, nil
}

// PeekByte returns the tag octet of the next data value without advancing the
// decoder. At the end of the buffer PeekByte returns [io.EOF].
func (d *Decoder) PeekByte() (byte, error) {
	if d.pos >= d.end {
		return 0, io.EOF
	}
	return d.buf[d.pos], nil
}

// Skip decodes the next data value and discards it.
func (d *Decoder) Skip() error {
	_, err := d.Next()
	return err
}

// Reset moves the decoder back to the beginning of its buffer range.
func (d *Decoder) Reset() {
	d.pos = d.start
}

// Len returns the number of bytes remaining in the buffer range.
func (d *Decoder) Len() int {
	return d.end - d.pos
}

// More reports whether bytes remain in the buffer range.
func (d *Decoder) More() bool {
	return d.pos < d.end
}

// Values returns an iterator over the remaining data values. Iteration stops
// after the first error.
func (d *Decoder) Values() iter.Seq2[*Value, error] {
	return func(yield func(*Value, error) bool) {
		for d.More() {
			v, err := d.Next()
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

//region Convenience Getters

// Bool decodes the next data value as a BOOLEAN.
func (d *Decoder) Bool() (bool, error) {
	v, err := d.Next()
	if err != nil {
		return false, err
	}
	return v.Bool()
}

// Int decodes the next data value as an INTEGER that fits into 32 bits.
func (d *Decoder) Int() (int, error) {
	v, err := d.Next()
	if err != nil {
		return 0, err
	}
	return v.Int()
}

// BigInt decodes the next data value as a signed INTEGER.
func (d *Decoder) BigInt() (*big.Int, error) {
	v, err := d.Next()
	if err != nil {
		return nil, err
	}
	return v.BigInt()
}

// PositiveBigInt decodes the next data value as an unsigned INTEGER.
func (d *Decoder) PositiveBigInt() (*big.Int, error) {
	v, err := d.Next()
	if err != nil {
		return nil, err
	}
	return v.PositiveBigInt()
}

// Enumerated decodes the next data value as an ENUMERATED.
func (d *Decoder) Enumerated() (int, error) {
	v, err := d.Next()
	if err != nil {
		return 0, err
	}
	return v.Enumerated()
}

// OID decodes the next data value as an OBJECT IDENTIFIER.
func (d *Decoder) OID() (ObjectIdentifier, error) {
	v, err := d.Next()
	if err != nil {
		return nil, err
	}
	return v.OID()
}

// OctetString decodes the next data value as an OCTET STRING.
func (d *Decoder) OctetString() ([]byte, error) {
	v, err := d.Next()
	if err != nil {
		return nil, err
	}
	return v.OctetString()
}

// BitString decodes the next data value as a BIT STRING.
func (d *Decoder) BitString() (BitString, error) {
	v, err := d.Next()
	if err != nil {
		return BitString{}, err
	}
	return v.BitString()
}

// BitStringBytes decodes the next data value as a byte-aligned BIT STRING.
func (d *Decoder) BitStringBytes() ([]byte, error) {
	v, err := d.Next()
	if err != nil {
		return nil, err
	}
	return v.BitStringBytes()
}

// Null decodes the next data value as a NULL.
func (d *Decoder) Null() error {
	v, err := d.Next()
	if err != nil {
		return err
	}
	return v.Null()
}

// UTF8String decodes the next data value as a UTF8String.
func (d *Decoder) UTF8String() (string, error) {
	v, err := d.Next()
	if err != nil {
		return "", err
	}
	return v.UTF8String()
}

// PrintableString decodes the next data value as a PrintableString.
func (d *Decoder) PrintableString() (string, error) {
	v, err := d.Next()
	if err != nil {
		return "", err
	}
	return v.PrintableString()
}

// IA5String decodes the next data value as an IA5String.
func (d *Decoder) IA5String() (string, error) {
	v, err := d.Next()
	if err != nil {
		return "", err
	}
	return v.IA5String()
}

// T61String decodes the next data value as a T61String.
func (d *Decoder) T61String() (string, error) {
	v, err := d.Next()
	if err != nil {
		return "", err
	}
	return v.T61String()
}

// BMPString decodes the next data value as a BMPString.
func (d *Decoder) BMPString() (string, error) {
	v, err := d.Next()
	if err != nil {
		return "", err
	}
	return v.BMPString()
}

// GeneralString decodes the next data value as a GeneralString.
func (d *Decoder) GeneralString() (string, error) {
	v, err := d.Next()
	if err != nil {
		return "", err
	}
	return v.GeneralString()
}

// UTCTime decodes the next data value as a UTCTime.
func (d *Decoder) UTCTime() (time.Time, error) {
	v, err := d.Next()
	if err != nil {
		return time.Time{}, err
	}
	return v.UTCTime()
}

// GeneralizedTime decodes the next data value as a GeneralizedTime.
func (d *Decoder) GeneralizedTime() (time.Time, error) {
	v, err := d.Next()
	if err != nil {
		return time.Time{}, err
	}
	return v.GeneralizedTime()
}

// Sequence decodes the next data value as a SEQUENCE and returns its
// immediate components.
func (d *Decoder) Sequence() ([]*Value, error) {
	v, err := d.Next()
	if err != nil {
		return nil, err
	}
	return v.Components(TagSequence)
}

// Set decodes the next data value as a SET and returns its immediate
// components.
func (d *Decoder) Set() ([]*Value, error) {
	v, err := d.Next()
	if err != nil {
		return nil, err
	}
	return v.Components(TagSet)
}

//endregion
