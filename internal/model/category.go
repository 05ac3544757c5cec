package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownSlot     = errors.New("unknown image slot")
)

// Slot identifies one of the two uploaded images.
type Slot int

const (
	SlotClean Slot = iota
	SlotMessy
)

// Slots lists every slot in upload order.
var Slots = []Slot{SlotClean, SlotMessy}

func (s Slot) String() string {
	switch s {
	case SlotClean:
		return "clean"
	case SlotMessy:
		return "messy"
	}
	return fmt.Sprintf("slot(%d)", int(s))
}

// FormField is the multipart field name the comparison service expects.
func (s Slot) FormField() string {
	switch s {
	case SlotClean:
		return "image1"
	case SlotMessy:
		return "image2"
	}
	return ""
}

func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Slot) UnmarshalText(text []byte) error {
	parsed, err := ParseSlot(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSlot accepts "clean"/"messy" as well as the form field names.
func ParseSlot(v string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "clean", "image1":
		return SlotClean, nil
	case "messy", "image2":
		return SlotMessy, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSlot, v)
}

// Category groups the items returned by the comparison service.
type Category int

const (
	CategoryRemoved Category = iota
	CategoryAppeared
	CategoryChanged
)

// Categories lists every category in display order.
var Categories = []Category{CategoryRemoved, CategoryAppeared, CategoryChanged}

func (c Category) String() string {
	switch c {
	case CategoryRemoved:
		return "removed"
	case CategoryAppeared:
		return "appeared"
	case CategoryChanged:
		return "changed"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Source is the image the category's boxes are expressed in. Removed objects
// exist only in the clean photo; new and changed objects are located in the
// messy one.
func (c Category) Source() Slot {
	if c == CategoryRemoved {
		return SlotClean
	}
	return SlotMessy
}

func (c Category) Valid() bool {
	return c >= CategoryRemoved && c <= CategoryChanged
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func ParseCategory(v string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(v), c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, v)
}
