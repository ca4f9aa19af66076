// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"time"
)

// expect returns an error unless v carries the given universal tag.
func (v *Value) expect(tag Tag, name string) error {
	if v.tag != tag {
		return syntaxError(v.tag, errors.New("value is not a "+name))
	}
	return nil
}

// consume marks the contents octets of v as read.
func (v *Value) consume() {
	v.data.pos = v.data.end
}

//region Simple Types

// Bool decodes a BOOLEAN value. The contents must be a single octet; any
// nonzero octet is true.
func (v *Value) Bool() (bool, error) {
	if err := v.expect(TagBoolean, "BOOLEAN"); err != nil {
		return false, err
	}
	if v.Len() != 1 {
		return false, syntaxError(v.tag, errors.New("BOOLEAN must have one contents octet"))
	}
	v.consume()
	return v.buf[v.start] != 0, nil
}

// Null checks that v is a NULL value with empty contents.
func (v *Value) Null() error {
	if err := v.expect(TagNull, "NULL"); err != nil {
		return err
	}
	if v.Len() != 0 {
		return syntaxError(v.tag, errors.New("NULL must have empty contents"))
	}
	return nil
}

// Enumerated decodes an ENUMERATED value. The contents octets are read as an
// unsigned big-endian quantity of which the low 32 bits are returned.
func (v *Value) Enumerated() (int, error) {
	if err := v.expect(TagEnumerated, "ENUMERATED"); err != nil {
		return 0, err
	}
	v.consume()
	var u uint32
	for _, c := range v.buf[v.start:v.end] {
		u = u<<8 | uint32(c)
	}
	return int(int32(u)), nil
}

//endregion

//region Integers

func (v *Value) bigInt(mustBePositive bool) (*big.Int, error) {
	if err := v.expect(TagInteger, "INTEGER"); err != nil {
		return nil, err
	}
	b := v.buf[v.start:v.end]
	if len(b) == 0 {
		return nil, syntaxError(v.tag, errors.New("INTEGER has empty contents"))
	}
	if !v.relaxed && len(b) >= 2 && b[0] == 0 && b[1] < 0x80 {
		return nil, syntaxError(v.tag, errors.New("INTEGER has redundant leading zeros"))
	}
	v.consume()
	i := new(big.Int).SetBytes(b)
	if !mustBePositive && b[0]&0x80 != 0 {
		i.Sub(i, new(big.Int).Lsh(big.NewInt(1), uint(len(b))*8))
	}
	return i, nil
}

// BigInt decodes an INTEGER value as a two's complement signed integer of
// arbitrary size.
func (v *Value) BigInt() (*big.Int, error) {
	return v.bigInt(false)
}

// PositiveBigInt decodes an INTEGER value, interpreting the contents octets
// as an unsigned quantity regardless of the sign bit.
func (v *Value) PositiveBigInt() (*big.Int, error) {
	return v.bigInt(true)
}

// Int decodes an INTEGER value that fits into 32 bits.
func (v *Value) Int() (int, error) {
	i, err := v.bigInt(false)
	if err != nil {
		return 0, err
	}
	if !i.IsInt64() || i.Int64() < math.MinInt32 || i.Int64() > math.MaxInt32 {
		return 0, syntaxError(v.tag, errors.New("INTEGER exceeds 32 bits"))
	}
	return int(i.Int64()), nil
}

//endregion

//region Byte Strings

// OctetString decodes an OCTET STRING value. A constructed OCTET STRING is
// decoded by concatenating the contents of its nested segments recursively.
func (v *Value) OctetString() ([]byte, error) {
	if v.tag == TagOctetString {
		v.consume()
		return bytes.Clone(v.buf[v.start:v.end]), nil
	}
	if !v.tag.Constructed() || v.tag.Number() != TagOctetString.Number() {
		return nil, syntaxError(v.tag, errors.New("value is not an OCTET STRING"))
	}
	v.consume()
	out := make([]byte, 0, v.Len())
	d := &Decoder{buf: v.buf, start: v.start, end: v.end, pos: v.start, relaxed: v.relaxed}
	for d.More() {
		c, err := d.Next()
		if err != nil {
			return nil, err
		}
		b, err := c.OctetString()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// BitStringBytes decodes a BIT STRING value whose number of bits is a
// multiple of eight and returns the bits as bytes. Padding bits indicated by
// the initial octet are zeroed in the result.
func (v *Value) BitStringBytes() ([]byte, error) {
	if err := v.expect(TagBitString, "BIT STRING"); err != nil {
		return nil, err
	}
	b := v.buf[v.start:v.end]
	if len(b) == 0 {
		return nil, syntaxError(v.tag, errors.New("BIT STRING has no initial octet"))
	}
	if b[0] > 7 {
		return nil, syntaxError(v.tag, errors.New("invalid number of padding bits"))
	}
	v.consume()
	out := bytes.Clone(b[1:])
	if b[0] != 0 && len(out) > 0 {
		out[len(out)-1] &= 0xff << b[0]
	}
	return out, nil
}

// BitString decodes a BIT STRING value of arbitrary bit length. A contents
// field consisting of only the initial octet decodes as the empty bit string.
func (v *Value) BitString() (BitString, error) {
	if err := v.expect(TagBitString, "BIT STRING"); err != nil {
		return BitString{}, err
	}
	b := v.buf[v.start:v.end]
	if len(b) == 0 {
		return BitString{}, syntaxError(v.tag, errors.New("BIT STRING has no initial octet"))
	}
	if len(b) == 1 {
		v.consume()
		return BitString{}, nil
	}
	if b[0] > 7 {
		return BitString{}, syntaxError(v.tag, errors.New("invalid number of padding bits"))
	}
	v.consume()
	out := bytes.Clone(b[1:])
	out[len(out)-1] &= 0xff << b[0]
	return BitString{Bytes: out, BitLength: len(out)*8 - int(b[0])}, nil
}

//endregion

// OID decodes an OBJECT IDENTIFIER value.
func (v *Value) OID() (ObjectIdentifier, error) {
	if err := v.expect(TagOID, "OBJECT IDENTIFIER"); err != nil {
		return nil, err
	}
	oid, err := parseObjectIdentifier(v.buf[v.start:v.end])
	if err != nil {
		return nil, syntaxError(v.tag, err)
	}
	v.consume()
	return oid, nil
}

//region Time Types

// UTCTime decodes a UTCTime value of the form YYMMDDhhmm[ss] followed by a
// time zone suffix. Two-digit years below 50 are interpreted as 20xx, all
// others as 19xx.
func (v *Value) UTCTime() (time.Time, error) {
	if err := v.expect(TagUTCTime, "UTCTime"); err != nil {
		return time.Time{}, err
	}
	if v.Len() < 11 || v.Len() > 17 {
		return time.Time{}, syntaxError(v.tag, errors.New("UTCTime length out of range"))
	}
	v.consume()
	t, err := parseTime(v.buf[v.start:v.end], false)
	if err != nil {
		return time.Time{}, syntaxError(v.tag, err)
	}
	return t, nil
}

// GeneralizedTime decodes a GeneralizedTime value of the form
// YYYYMMDDhhmm[ss[.fff]] followed by a time zone suffix.
func (v *Value) GeneralizedTime() (time.Time, error) {
	if err := v.expect(TagGeneralizedTime, "GeneralizedTime"); err != nil {
		return time.Time{}, err
	}
	if v.Len() < 13 {
		return time.Time{}, syntaxError(v.tag, errors.New("GeneralizedTime too short"))
	}
	v.consume()
	t, err := parseTime(v.buf[v.start:v.end], true)
	if err != nil {
		return time.Time{}, syntaxError(v.tag, err)
	}
	return t, nil
}

//endregion
