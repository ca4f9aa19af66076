// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"time"
)

// parseTime decodes the contents octets of a UTCTime or GeneralizedTime
// value. The date and time fields are fixed-width decimal digits, optionally
// followed by fractional seconds with an accepted precision of milliseconds,
// and terminated by a time zone suffix of either "Z" or "±hhmm". The result
// is expressed in UTC.
func parseTime(b []byte, generalized bool) (time.Time, error) {
	pos := 0
	var year int
	if generalized {
		year = atoiN(b, pos, 4)
		pos += 4
	} else {
		year = atoiN(b, pos, 2)
		pos += 2
		if year >= 0 {
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		}
	}
	month := atoiN(b, pos, 2)
	day := atoiN(b, pos+2, 2)
	hour := atoiN(b, pos+4, 2)
	minute := atoiN(b, pos+6, 2)
	pos += 8

	second, millis := 0, 0
	if len(b)-pos > 2 {
		second = atoiN(b, pos, 2)
		pos += 2
		if pos < len(b) && (b[pos] == '.' || b[pos] == ',') {
			pos++
			precision := 0
			for pos+precision < len(b) {
				c := b[pos+precision]
				if c == 'Z' || c == '+' || c == '-' {
					break
				}
				if c < '0' || '9' < c {
					return time.Time{}, errors.New("invalid fractional seconds")
				}
				precision++
			}
			switch precision {
			case 0:
				return time.Time{}, errors.New("empty fractional seconds")
			case 1:
				millis = 100 * atoiN(b, pos, 1)
			case 2:
				millis = 10 * atoiN(b, pos, 2)
			default:
				millis = atoiN(b, pos, 3)
			}
			pos += precision
		}
	}
	if year < 0 || month < 1 || month > 12 || day < 1 || day > 31 ||
		hour < 0 || hour >= 24 || minute < 0 || minute >= 60 ||
		second < 0 || second >= 60 {
		return time.Time{}, errors.New("invalid date or time fields")
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, millis*int(time.Millisecond), time.UTC)
	switch rem := b[pos:]; {
	case len(rem) == 1 && rem[0] == 'Z':
		return t, nil
	case len(rem) == 5 && (rem[0] == '+' || rem[0] == '-'):
		hr := atoiN(rem, 1, 2)
		min := atoiN(rem, 3, 2)
		if hr < 0 || hr >= 24 || min < 0 || min >= 60 {
			return time.Time{}, errors.New("invalid time zone offset")
		}
		d := time.Duration(hr)*time.Hour + time.Duration(min)*time.Minute
		if rem[0] == '+' {
			return t.Add(-d), nil
		}
		return t.Add(d), nil
	default:
		return time.Time{}, errors.New("invalid time zone suffix")
	}
}

// atoiN parses n decimal digits of b starting at pos. It returns -1 if b is
// too short or contains a non-digit character.
func atoiN(b []byte, pos, n int) (i int) {
	if len(b)-pos < n {
		return -1
	}
	for j := pos; j < pos+n; j++ {
		if b[j] < '0' || '9' < b[j] {
			return -1
		}
		i = i*10 + int(b[j]-'0')
	}
	return i
}
