// Package frame implements a bit-level framing codec: frames are delimited
// by the HDLC flag sequence, protected by a CRC-8 checksum, and bit-stuffed
// so that the flag can never appear inside the payload. Frames are
// represented as strings of '0' and '1' runes.
package frame

import (
	"errors"
	"fmt"
	"strings"
)

// Flag delimits the start and the end of every frame.
const Flag = "01111110"

// crcPoly is the CRC-8 generator polynomial x^8 + x^2 + x + 1.
const crcPoly = "100000111"

// checksumLen is the width of the CRC in bits.
const checksumLen = 8

// Decoding errors.
var (
	ErrNotBits     = errors.New("frame: data contains non-bit characters")
	ErrMissingFlag = errors.New("frame: missing start or end flag")
	ErrTooShort    = errors.New("frame: payload shorter than the checksum")
	ErrBadChecksum = errors.New("frame: checksum mismatch")
)

func validateBits(data string) error {
	for _, r := range data {
		if r != '0' && r != '1' {
			return fmt.Errorf("%w: %q", ErrNotBits, r)
		}
	}
	return nil
}

// Checksum computes the CRC-8 remainder of the given bit string.
func Checksum(data string) string {
	dividend := []byte(data + strings.Repeat("0", checksumLen))

	for i := 0; i < len(data); i++ {
		if dividend[i] != '1' {
			continue
		}

		for j := 0; j < len(crcPoly); j++ {
			if dividend[i+j] == crcPoly[j] {
				dividend[i+j] = '0'
			} else {
				dividend[i+j] = '1'
			}
		}
	}

	return string(dividend[len(dividend)-checksumLen:])
}

// Stuff inserts a '0' after every run of five consecutive '1' bits so that
// the payload can never contain the flag sequence.
func Stuff(data string) string {
	var sb strings.Builder
	ones := 0

	for _, bit := range data {
		sb.WriteRune(bit)

		if bit == '1' {
			ones++
			if ones == 5 {
				sb.WriteByte('0')
				ones = 0
			}
		} else {
			ones = 0
		}
	}

	return sb.String()
}

// Unstuff removes the '0' bits inserted by Stuff.
func Unstuff(data string) string {
	var sb strings.Builder
	ones := 0

	for i := 0; i < len(data); i++ {
		sb.WriteByte(data[i])

		if data[i] == '1' {
			ones++
			if ones == 5 {
				if i+1 < len(data) && data[i+1] == '0' {
					i++
				}
				ones = 0
			}
		} else {
			ones = 0
		}
	}

	return sb.String()
}

// Encode frames the given bit string: the checksum is appended, the result is
// bit-stuffed, and the flag is added on both ends.
func Encode(data string) (string, error) {
	if err := validateBits(data); err != nil {
		return "", err
	}

	stuffed := Stuff(data + Checksum(data))

	return Flag + stuffed + Flag, nil
}

// Decode validates and strips the framing of an encoded frame and returns
// the payload.
func Decode(encoded string) (string, error) {
	if err := validateBits(encoded); err != nil {
		return "", err
	}

	if len(encoded) < 2*len(Flag) ||
		!strings.HasPrefix(encoded, Flag) ||
		!strings.HasSuffix(encoded, Flag) {
		return "", ErrMissingFlag
	}

	withChecksum := Unstuff(encoded[len(Flag) : len(encoded)-len(Flag)])
	if len(withChecksum) < checksumLen {
		return "", ErrTooShort
	}

	data := withChecksum[:len(withChecksum)-checksumLen]
	received := withChecksum[len(withChecksum)-checksumLen:]

	if Checksum(data) != received {
		return "", ErrBadChecksum
	}

	return data, nil
}
