// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"testing"
)

func TestObjectIdentifier(t *testing.T) {
	oid := ObjectIdentifier{1, 2, 840, 113549}
	if got := oid.String(); got != "1.2.840.113549" {
		t.Errorf("String() = %q", got)
	}
	if !oid.Equal(ObjectIdentifier{1, 2, 840, 113549}) {
		t.Error("Equal() = false for identical identifiers")
	}
	if oid.Equal(ObjectIdentifier{1, 2, 840}) {
		t.Error("Equal() = true for different identifiers")
	}
}

func TestBitStringAt(t *testing.T) {
	bs := BitString{Bytes: []byte{0xa0}, BitLength: 3} // bits 101
	want := []int{1, 0, 1}
	for i, w := range want {
		if got := bs.At(i); got != w {
			t.Errorf("At(%d) = %d, want %d", i, got, w)
		}
	}
	defer func() {
		if recover() == nil {
			t.Error("At() out of range did not panic")
		}
	}()
	bs.At(3)
}

func TestBitStringRightAlign(t *testing.T) {
	bs := BitString{Bytes: []byte{0x80, 0x40}, BitLength: 10}
	// 10 bits, shifted right by 6: 00000010 00000001
	if got := bs.RightAlign(); !bytes.Equal(got, []byte{0x02, 0x01}) {
		t.Errorf("RightAlign() = % X", got)
	}
	bs = BitString{Bytes: []byte{0xab}, BitLength: 8}
	if got := bs.RightAlign(); !bytes.Equal(got, []byte{0xab}) {
		t.Errorf("RightAlign() aligned = % X", got)
	}
}
