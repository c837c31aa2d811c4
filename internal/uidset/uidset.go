// Package uidset provides a small set type for dense uint32 transaction
// identities. Relations between pool entries (ancestors, children) are
// stored as uid sets rather than pointers so that the pool never holds
// ownership cycles.
package uidset

import "slices"

// Set is an unordered collection of uids. The zero value is not usable;
// create sets with New or Of.
type Set map[uint32]struct{}

// New returns an empty set sized for n members.
func New(n int) Set {
	return make(Set, n)
}

// Of returns a set containing the given uids.
func Of(uids ...uint32) Set {
	s := make(Set, len(uids))
	for _, uid := range uids {
		s[uid] = struct{}{}
	}
	return s
}

// Add inserts uid and reports whether it was absent.
func (s Set) Add(uid uint32) bool {
	if _, ok := s[uid]; ok {
		return false
	}
	s[uid] = struct{}{}
	return true
}

// Remove deletes uid and reports whether it was present.
func (s Set) Remove(uid uint32) bool {
	if _, ok := s[uid]; !ok {
		return false
	}
	delete(s, uid)
	return true
}

// Has reports whether uid is a member.
func (s Set) Has(uid uint32) bool {
	_, ok := s[uid]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s)
}

// Union adds every member of other to s.
func (s Set) Union(other Set) {
	for uid := range other {
		s[uid] = struct{}{}
	}
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for uid := range s {
		c[uid] = struct{}{}
	}
	return c
}

// Sorted returns the members in ascending order. Map iteration order is
// randomized, so anything that must be reproducible iterates this instead.
func (s Set) Sorted() []uint32 {
	out := make([]uint32, 0, len(s))
	for uid := range s {
		out = append(out, uid)
	}
	slices.Sort(out)
	return out
}
