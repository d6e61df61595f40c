package model

import (
	"encoding/json"
	"sort"
)

// KeySet is a duplicate-free set of canonical repository keys
type KeySet map[string]struct{}

// NewKeySet builds a set from the given keys
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts key, returning false if it was already present
func (s KeySet) Add(key string) bool {
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}

// Contains reports whether key is in the set
func (s KeySet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// Len returns the number of keys; a nil set is empty
func (s KeySet) Len() int {
	return len(s)
}

// Sorted returns the keys in lexical order
func (s KeySet) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON encodes the set as a sorted array
func (s KeySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of keys, collapsing duplicates
func (s *KeySet) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*s = NewKeySet(keys...)
	return nil
}
