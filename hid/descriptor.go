// Package hid implements the consumer-control HID device: the report
// descriptor, the action to bit table and the press/release send path.
package hid

import (
	"errors"

	"mediaremote-go/types"
)

// ItemType is the short item "type" field (HID 1.11, 6.2.2.2).
type ItemType uint8

const (
	ItemMain   ItemType = 0
	ItemGlobal ItemType = 1
	ItemLocal  ItemType = 2
)

// Main item tags.
const (
	tagInput         = 0x8
	tagCollection    = 0xA
	tagEndCollection = 0xC
)

// Global item tags.
const (
	tagUsagePage   = 0x0
	tagLogicalMax  = 0x2
	tagReportSize  = 0x7
	tagReportCount = 0x9
)

// Local item tags.
const tagUsage = 0x0

// DataFlags are the Input/Output/Feature main item bits.
type DataFlags uint8

const (
	Constant DataFlags = 1 << iota // 0 = data
	Variable                       // 0 = array
	Relative                       // 0 = absolute
)

// Collection kinds.
const CollectionApplication = 0x01

// Usage pages and consumer usages (HUT 1.12, section 15).
const (
	PageConsumer = 0x0C

	UsageConsumerControl = 0x01
	UsageNextTrack       = 0xB5
	UsagePrevTrack       = 0xB6
	UsageStop            = 0xB7
	UsagePlayPause       = 0xCD
	UsageMute            = 0xE2
	UsageVolumeUp        = 0xE9
	UsageVolumeDown      = 0xEA
)

var ErrItemSize = errors.New("hid: short item data must be 0, 1, 2 or 4 bytes")

// Item is one short item.
type Item struct {
	Type ItemType
	Tag  uint8
	Data []byte
}

func UsagePage(p uint8) Item     { return Item{ItemGlobal, tagUsagePage, []byte{p}} }
func Usage(u uint8) Item         { return Item{ItemLocal, tagUsage, []byte{u}} }
func Collection(kind uint8) Item { return Item{ItemMain, tagCollection, []byte{kind}} }
func EndCollection() Item        { return Item{ItemMain, tagEndCollection, nil} }
func LogicalMax(v uint8) Item    { return Item{ItemGlobal, tagLogicalMax, []byte{v}} }
func ReportSize(bits uint8) Item { return Item{ItemGlobal, tagReportSize, []byte{bits}} }
func ReportCount(n uint8) Item   { return Item{ItemGlobal, tagReportCount, []byte{n}} }
func Input(f DataFlags) Item     { return Item{ItemMain, tagInput, []byte{byte(f)}} }

// Encode appends the short-item form of every item to dst.
func Encode(dst []byte, items ...Item) ([]byte, error) {
	for _, it := range items {
		var size uint8
		switch len(it.Data) {
		case 0:
			size = 0
		case 1:
			size = 1
		case 2:
			size = 2
		case 4:
			size = 3
		default:
			return nil, ErrItemSize
		}
		dst = append(dst, it.Tag<<4|uint8(it.Type)<<2|size)
		dst = append(dst, it.Data...)
	}
	return dst, nil
}

// MediaItems is the consumer-control collection: five relative bits
// (next, prev, stop, play/pause, mute), two absolute bits (volume up and
// down) and one bit of constant padding in a single byte report.
//
// The logical minimum is encoded as item 0x21 0x00. Hosts have cached the
// descriptor in that exact form, so it is kept byte for byte.
var MediaItems = []Item{
	UsagePage(PageConsumer),
	Usage(UsageConsumerControl),
	Collection(CollectionApplication),
	{ItemMain, 0x2, []byte{0x00}},
	LogicalMax(1),
	ReportSize(1),
	ReportCount(5),
	Usage(UsageNextTrack),
	Usage(UsagePrevTrack),
	Usage(UsageStop),
	Usage(UsagePlayPause),
	Usage(UsageMute),
	Input(Variable | Relative),
	ReportCount(2),
	Usage(UsageVolumeUp),
	Usage(UsageVolumeDown),
	Input(Variable),
	ReportCount(1),
	Input(Constant),
	EndCollection(),
}

// Descriptor returns the encoded report descriptor.
func Descriptor() []byte {
	b, err := Encode(make([]byte, 0, 39), MediaItems...)
	if err != nil {
		panic(err)
	}
	return b
}

// ReportID is the only report on the interrupt channel.
const ReportID = 0

// Mask returns the report bit for an action.
func Mask(a types.Action) uint8 {
	if !a.Valid() {
		return 0
	}
	return 1 << a
}

