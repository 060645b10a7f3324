package matcher

// Slot is the index of a cookie category in the per-category counters.
// Declared category ids are not contiguous: 0 to 4 map directly, 99 is the
// social media id used by some CMPs and -1 marks an entry without a label.
type Slot int

const (
	SlotNecessary Slot = iota
	SlotFunctionality
	SlotAnalytics
	SlotAdvertising
	SlotUncategorized
	SlotSocialMedia
	SlotUnknown

	NumSlots = 7
)

// Raw category ids with special meaning.
const (
	CategorySocialMedia = 99
	CategoryUnknown     = -1
)

var slotNames = [NumSlots]string{
	"necessary",
	"functionality",
	"analytics",
	"advertising",
	"uncategorized",
	"social_media",
	"unknown",
}

// SlotOf maps a declared category id to its slot. It returns false for ids
// the crawler never produces.
func SlotOf(categoryID int) (Slot, bool) {
	switch {
	case categoryID >= 0 && categoryID <= 4:
		return Slot(categoryID), true
	case categoryID == CategorySocialMedia:
		return SlotSocialMedia, true
	case categoryID == CategoryUnknown:
		return SlotUnknown, true
	default:
		return 0, false
	}
}

// String returns the file-name friendly name of the slot.
func (s Slot) String() string {
	if s < 0 || int(s) >= NumSlots {
		return "invalid"
	}
	return slotNames[s]
}

// Slots returns every slot in index order.
func Slots() []Slot {
	s := make([]Slot, NumSlots)
	for i := range s {
		s[i] = Slot(i)
	}
	return s
}
