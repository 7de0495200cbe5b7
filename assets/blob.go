package assets

import (
	"encoding/binary"
	"errors"
)

// Packed blob layout (all integers big-endian):
//
//	"MRA1" | count u16 | count * entry
//	entry: kind u8 | index u8 | w u8 | h u8 | len u16 | len bytes
//
// kind is 'D' (digit), 'C' (colon) or 'I' (icon).
const (
	blobMagic = "MRA1"

	KindDigit = 'D'
	KindColon = 'C'
	KindIcon  = 'I'
)

var (
	ErrBadMagic = errors.New("assets: bad blob magic")
	ErrTrunc    = errors.New("assets: truncated blob")
	ErrEntry    = errors.New("assets: malformed entry")
)

// Parse decodes a packed blob. The returned catalog aliases blob, so a blob
// placed in flash (go:embed or a const string) is not copied.
func Parse(blob []byte) (*Catalog, error) {
	if len(blob) < 6 || string(blob[:4]) != blobMagic {
		return nil, ErrBadMagic
	}
	n := int(binary.BigEndian.Uint16(blob[4:6]))
	off := 6
	c := &Catalog{}
	for i := 0; i < n; i++ {
		if off+6 > len(blob) {
			return nil, ErrTrunc
		}
		kind, idx, w, h := blob[off], int(blob[off+1]), int(blob[off+2]), int(blob[off+3])
		size := int(binary.BigEndian.Uint16(blob[off+4 : off+6]))
		off += 6
		if off+size > len(blob) {
			return nil, ErrTrunc
		}
		if size != w*h*2 {
			return nil, ErrEntry
		}
		data := blob[off : off+size : off+size]
		off += size

		switch kind {
		case KindDigit:
			if w != DigitW || h != DigitH || idx >= NumDigits {
				return nil, ErrEntry
			}
			c.digits[idx] = data
		case KindColon:
			if w != ColonW || h != ColonH || idx != 0 {
				return nil, ErrEntry
			}
			c.colon = data
		case KindIcon:
			if w != IconW || h != IconH || idx >= NumIcons {
				return nil, ErrEntry
			}
			c.icons[idx] = data
		default:
			return nil, ErrEntry
		}
	}
	if err := c.Complete(); err != nil {
		return nil, err
	}
	return c, nil
}

// Encode packs a complete catalog into a blob.
func Encode(c *Catalog) ([]byte, error) {
	if err := c.Complete(); err != nil {
		return nil, err
	}
	count := NumDigits + 1 + NumIcons
	out := make([]byte, 0, 6+count*6+NumDigits*DigitSize+ColonSize+NumIcons*IconSize)
	out = append(out, blobMagic...)
	out = binary.BigEndian.AppendUint16(out, uint16(count))

	put := func(kind byte, idx, w, h int, data []byte) {
		out = append(out, kind, byte(idx), byte(w), byte(h))
		out = binary.BigEndian.AppendUint16(out, uint16(len(data)))
		out = append(out, data...)
	}
	for i, d := range c.digits {
		put(KindDigit, i, DigitW, DigitH, d)
	}
	put(KindColon, 0, ColonW, ColonH, c.colon)
	for i, ic := range c.icons {
		put(KindIcon, i, IconW, IconH, ic)
	}
	return out, nil
}
