package tramagrid

// OrderedMap is a map that remembers insertion order. Iteration order is
// significant for palettes: nearest-color ties and cluster suggestions are
// resolved by the order entries were added, not by their numeric index.
//
// An OrderedMap is owned by a single chart and is not safe for concurrent
// use.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{
		keys:   make([]K, 0),
		values: make(map[K]V),
	}
}

// Set adds a key-value pair. Updating an existing key keeps its position.
func (om *OrderedMap[K, V]) Set(key K, value V) {
	if _, exists := om.values[key]; !exists {
		om.keys = append(om.keys, key)
	}
	om.values[key] = value
}

// Get retrieves a value by key.
func (om *OrderedMap[K, V]) Get(key K) (V, bool) {
	val, exists := om.values[key]
	return val, exists
}

// Has reports whether key is present.
func (om *OrderedMap[K, V]) Has(key K) bool {
	_, exists := om.values[key]
	return exists
}

// Delete removes a key-value pair.
func (om *OrderedMap[K, V]) Delete(key K) {
	if _, exists := om.values[key]; exists {
		delete(om.values, key)
		for i, k := range om.keys {
			if k == key {
				om.keys = append(om.keys[:i], om.keys[i+1:]...)
				break
			}
		}
	}
}

// Keys returns a copy of the keys in insertion order.
func (om *OrderedMap[K, V]) Keys() []K {
	return append([]K{}, om.keys...)
}

// Iterate calls f for each key-value pair in insertion order.
func (om *OrderedMap[K, V]) Iterate(f func(key K, value V)) {
	for _, k := range om.keys {
		f(k, om.values[k])
	}
}

// Filter keeps only the entries for which keep returns true.
func (om *OrderedMap[K, V]) Filter(keep func(key K, value V) bool) {
	kept := om.keys[:0]
	for _, k := range om.keys {
		if keep(k, om.values[k]) {
			kept = append(kept, k)
		} else {
			delete(om.values, k)
		}
	}
	om.keys = kept
}

// Len returns the number of elements in the map.
func (om *OrderedMap[K, V]) Len() int {
	return len(om.keys)
}

// Clone returns an independent copy. Values are copied shallowly.
func (om *OrderedMap[K, V]) Clone() *OrderedMap[K, V] {
	c := &OrderedMap[K, V]{
		keys:   append(make([]K, 0, len(om.keys)), om.keys...),
		values: make(map[K]V, len(om.values)),
	}
	for k, v := range om.values {
		c.values[k] = v
	}
	return c
}
