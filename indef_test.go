// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestNormalize(t *testing.T) {
	tests := map[string]struct {
		input    []byte
		want     []byte
		consumed int
		wantErr  error
	}{
		"Definite": {
			input:    []byte{0x04, 0x02, 0xab, 0xcd},
			want:     []byte{0x04, 0x02, 0xab, 0xcd},
			consumed: 4,
		},
		"DefiniteTrailing": {
			input:    []byte{0x04, 0x01, 0xff, 0x01, 0x02},
			want:     []byte{0x04, 0x01, 0xff, 0x01, 0x02},
			consumed: 3,
		},
		"Indefinite": {
			input:    []byte{0x24, 0x80, 0x04, 0x02, 0x61, 0x62, 0x04, 0x02, 0x63, 0x64, 0x00, 0x00},
			want:     []byte{0x24, 0x08, 0x04, 0x02, 0x61, 0x62, 0x04, 0x02, 0x63, 0x64},
			consumed: 12,
		},
		"IndefiniteTrailing": {
			input:    []byte{0x24, 0x80, 0x04, 0x02, 0x61, 0x62, 0x04, 0x02, 0x63, 0x64, 0x00, 0x00, 0x01, 0x01, 0xff},
			want:     []byte{0x24, 0x08, 0x04, 0x02, 0x61, 0x62, 0x04, 0x02, 0x63, 0x64, 0x01, 0x01, 0xff},
			consumed: 12,
		},
		"Nested": {
			input:    []byte{0x30, 0x80, 0x24, 0x80, 0x04, 0x01, 0x61, 0x00, 0x00, 0x00, 0x00},
			want:     []byte{0x30, 0x05, 0x24, 0x03, 0x04, 0x01, 0x61},
			consumed: 11,
		},
		"NonMinimalInside": {
			input:    []byte{0x24, 0x80, 0x04, 0x81, 0x03, 0x61, 0x62, 0x63, 0x00, 0x00},
			want:     []byte{0x24, 0x05, 0x04, 0x03, 0x61, 0x62, 0x63},
			consumed: 10,
		},
		"Truncated": {
			input:   []byte{0x24, 0x80, 0x04, 0x02, 0x61},
			wantErr: errInsufficient,
		},
		"MissingEOC": {
			input:   []byte{0x24, 0x80, 0x04, 0x02, 0x61, 0x62},
			wantErr: errInsufficient,
		},
		"UnmatchedEOC": {
			input:   []byte{0x00, 0x00},
			wantErr: errUnmatchedEOC,
		},
		"LengthTooWide": {
			input:   []byte{0x04, 0x85, 0x01, 0x02, 0x03, 0x04, 0x05, 0x00},
			wantErr: errLengthTooWide,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, consumed, err := normalize(tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("normalize() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalize() error = %v", err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Errorf("normalize() = % X, want % X", got, tc.want)
			}
			if consumed != tc.consumed {
				t.Errorf("normalize() consumed %d bytes, want %d", consumed, tc.consumed)
			}
		})
	}
}

// TestNormalizeIdempotent verifies that normalizing an encoding without
// indefinite lengths returns the input unchanged, including the output of a
// previous normalization.
func TestNormalizeIdempotent(t *testing.T) {
	input := []byte{0x24, 0x80, 0x04, 0x02, 0x61, 0x62, 0x04, 0x02, 0x63, 0x64, 0x00, 0x00}
	once, _, err := normalize(input)
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	twice, _, err := normalize(once)
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if &once[0] != &twice[0] || !bytes.Equal(once, twice) {
		t.Errorf("second normalize() = % X, want unchanged % X", twice, once)
	}
}

// stuckReader never returns data and never fails.
type stuckReader struct{}

func (stuckReader) Read([]byte) (int, error) { return 0, nil }

func TestNormalizeStream(t *testing.T) {
	t.Run("Complete", func(t *testing.T) {
		rest := []byte{0x04, 0x02, 0x61, 0x62, 0x04, 0x02, 0x63, 0x64, 0x00, 0x00}
		// one byte per read to exercise the retry loop
		r := iotest.OneByteReader(bytes.NewReader(rest))
		got, err := normalizeStream(r, 0x24, 0x80)
		if err != nil {
			t.Fatalf("normalizeStream() error = %v", err)
		}
		want := []byte{0x24, 0x08, 0x04, 0x02, 0x61, 0x62, 0x04, 0x02, 0x63, 0x64}
		if !bytes.Equal(got, want) {
			t.Errorf("normalizeStream() = % X, want % X", got, want)
		}
	})
	t.Run("Unterminated", func(t *testing.T) {
		rest := []byte{0x04, 0x02, 0x61, 0x62}
		_, err := normalizeStream(bytes.NewReader(rest), 0x24, 0x80)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("normalizeStream() error = %v, want *SyntaxError", err)
		}
	})
	t.Run("ReadError", func(t *testing.T) {
		fail := errors.New("broken pipe")
		_, err := normalizeStream(iotest.ErrReader(fail), 0x24, 0x80)
		if !errors.Is(err, fail) {
			t.Fatalf("normalizeStream() error = %v, want %v", err, fail)
		}
	})
	t.Run("NoProgress", func(t *testing.T) {
		// a reader that keeps returning (0, nil) must not spin forever
		_, err := normalizeStream(stuckReader{}, 0x24, 0x80)
		if !errors.Is(err, io.ErrNoProgress) {
			t.Fatalf("normalizeStream() error = %v, want %v", err, io.ErrNoProgress)
		}
	})
	t.Run("TrailingPreserved", func(t *testing.T) {
		rest := []byte{0x04, 0x01, 0x61, 0x00, 0x00, 0xde, 0xad}
		got, err := normalizeStream(strings.NewReader(string(rest)), 0x24, 0x80)
		if err != nil {
			t.Fatalf("normalizeStream() error = %v", err)
		}
		want := []byte{0x24, 0x03, 0x04, 0x01, 0x61, 0xde, 0xad}
		if !bytes.Equal(got, want) {
			t.Errorf("normalizeStream() = % X, want % X", got, want)
		}
	})
}
