package trip

import (
	"strconv"
	"strings"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

// SlotKey addresses one editable city field: the start, the end, or a
// middle stop by position.
type SlotKey string

const (
	SlotStart SlotKey = "start"
	SlotEnd   SlotKey = "end"

	middlePrefix = "middle-"
)

func MiddleSlot(index int) SlotKey {
	return SlotKey(middlePrefix + strconv.Itoa(index))
}

func ParseSlot(s string) (SlotKey, error) {
	key := SlotKey(strings.ToLower(strings.TrimSpace(s)))
	if key == SlotStart || key == SlotEnd {
		return key, nil
	}
	if _, ok := key.MiddleIndex(); ok {
		return key, nil
	}
	return "", models.ErrUnknownSlot
}

// MiddleIndex returns the stop position for a middle slot.
func (k SlotKey) MiddleIndex() (int, bool) {
	rest, ok := strings.CutPrefix(string(k), middlePrefix)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
