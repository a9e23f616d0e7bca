package tramagrid

import (
	"reflect"
	"testing"
)

func TestOrderedMapInsertionOrder(t *testing.T) {
	om := NewOrderedMap[uint8, string]()
	om.Set(5, "five")
	om.Set(1, "one")
	om.Set(3, "three")
	om.Set(5, "FIVE")

	if got := om.Keys(); !reflect.DeepEqual(got, []uint8{5, 1, 3}) {
		t.Errorf("Expected [5 1 3], got %v", got)
	}
	if v, _ := om.Get(5); v != "FIVE" {
		t.Errorf("Expected update in place, got %q", v)
	}

	var seen []uint8
	om.Iterate(func(k uint8, _ string) { seen = append(seen, k) })
	if !reflect.DeepEqual(seen, []uint8{5, 1, 3}) {
		t.Errorf("Expected iteration [5 1 3], got %v", seen)
	}
}

func TestOrderedMapDelete(t *testing.T) {
	om := NewOrderedMap[uint8, int]()
	for i := uint8(0); i < 4; i++ {
		om.Set(i, int(i))
	}
	om.Delete(1)
	om.Delete(9)
	if om.Has(1) {
		t.Error("Key 1 should be deleted")
	}
	if got := om.Keys(); !reflect.DeepEqual(got, []uint8{0, 2, 3}) {
		t.Errorf("Expected [0 2 3], got %v", got)
	}
	om.Set(1, 10)
	if got := om.Keys(); !reflect.DeepEqual(got, []uint8{0, 2, 3, 1}) {
		t.Errorf("Expected re-added key at the end, got %v", got)
	}
}

func TestOrderedMapFilter(t *testing.T) {
	om := NewOrderedMap[uint8, int]()
	for i := uint8(0); i < 6; i++ {
		om.Set(i, int(i))
	}
	om.Filter(func(_ uint8, v int) bool { return v%2 == 0 })
	if got := om.Keys(); !reflect.DeepEqual(got, []uint8{0, 2, 4}) {
		t.Errorf("Expected [0 2 4], got %v", got)
	}
	if om.Len() != 3 || om.Has(3) {
		t.Error("Filtered entries should be removed from the map")
	}
}

func TestOrderedMapClone(t *testing.T) {
	om := NewOrderedMap[uint8, int]()
	om.Set(1, 1)
	om.Set(2, 2)

	c := om.Clone()
	c.Set(3, 3)
	c.Delete(1)
	c.Set(2, 20)

	if got := om.Keys(); !reflect.DeepEqual(got, []uint8{1, 2}) {
		t.Errorf("Original keys changed: %v", got)
	}
	if v, _ := om.Get(2); v != 2 {
		t.Errorf("Original value changed: %d", v)
	}
}
