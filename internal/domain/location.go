package domain

import "strings"

// LocationKind tags which variant a Location holds.
type LocationKind int

const (
	LocationNone LocationKind = iota
	LocationFreeform
	LocationRoom
)

// Location is either free text ("near the mess hall") or a block/room pair.
type Location struct {
	kind   LocationKind
	text   string
	block  string
	roomNo string
}

// FreeformLocation builds a free-text location.
func FreeformLocation(text string) Location {
	return Location{kind: LocationFreeform, text: strings.TrimSpace(text)}
}

// RoomLocation builds a block/room location.
func RoomLocation(block, roomNo string) Location {
	return Location{kind: LocationRoom, block: strings.TrimSpace(block), roomNo: strings.TrimSpace(roomNo)}
}

// LocationFromParts resolves stored or transmitted fields into a Location. A
// non-empty block wins over free text.
func LocationFromParts(text, block, roomNo string) Location {
	if strings.TrimSpace(block) != "" {
		return RoomLocation(block, roomNo)
	}
	return FreeformLocation(text)
}

// Kind returns the variant tag.
func (l Location) Kind() LocationKind { return l.kind }

// Text returns the freeform text; empty for room locations.
func (l Location) Text() string { return l.text }

// Block returns the hostel block; empty for freeform locations.
func (l Location) Block() string { return l.block }

// RoomNo returns the room number; may be empty.
func (l Location) RoomNo() string { return l.roomNo }

// IsZero reports whether no usable location was supplied.
func (l Location) IsZero() bool {
	switch l.kind {
	case LocationFreeform:
		return l.text == ""
	case LocationRoom:
		return l.block == ""
	default:
		return true
	}
}

// String renders the location for display and search.
func (l Location) String() string {
	switch l.kind {
	case LocationFreeform:
		return l.text
	case LocationRoom:
		if l.roomNo == "" {
			return l.block
		}
		return l.block + " / " + l.roomNo
	default:
		return ""
	}
}
