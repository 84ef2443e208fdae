package classfile

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

/*
decodeModifiedUTF8 decodes the JVM's modified UTF-8:

	U+0000           encoded as 0xC0 0x80 (never a raw zero byte)
	U+0001..U+FFFF   1 to 3 bytes as in standard UTF-8
	supplementary    a UTF-16 surrogate pair, each half as 3 bytes
*/
func decodeModifiedUTF8(data []byte) (string, error) {
	ascii := true
	for _, b := range data {
		if b == 0 || b >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(data), nil
	}

	units := make([]uint16, 0, len(data))
	for i := 0; i < len(data); {
		b := data[i]
		switch {
		case b == 0:
			return "", fmt.Errorf("raw zero byte at offset %d", i)

		case b < 0x80:
			units = append(units, uint16(b))
			i++

		case b&0xE0 == 0xC0:
			if i+1 >= len(data) || data[i+1]&0xC0 != 0x80 {
				return "", fmt.Errorf("truncated 2-byte sequence at offset %d", i)
			}
			units = append(units, uint16(b&0x1F)<<6|uint16(data[i+1]&0x3F))
			i += 2

		case b&0xF0 == 0xE0:
			if i+2 >= len(data) || data[i+1]&0xC0 != 0x80 || data[i+2]&0xC0 != 0x80 {
				return "", fmt.Errorf("truncated 3-byte sequence at offset %d", i)
			}
			units = append(units, uint16(b&0x0F)<<12|uint16(data[i+1]&0x3F)<<6|uint16(data[i+2]&0x3F))
			i += 3

		default:
			return "", fmt.Errorf("invalid byte 0x%02X at offset %d", b, i)
		}
	}

	runes := utf16.Decode(units)
	buf := make([]byte, 0, len(data))
	for _, r := range runes {
		buf = utf8.AppendRune(buf, r)
	}
	return string(buf), nil
}
