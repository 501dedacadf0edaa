// Package resource defines the tagged handle shared by every resource manager and the
// error taxonomy used across the resource core.
package resource

import (
	"fmt"
)

const (
	// KindBits is the number of high bits reserved for the kind tag.
	KindBits = 10

	// ValueBits is the number of low bits holding the opaque value.
	ValueBits = 64 - KindBits

	// SubTagBits is the number of high value bits reserved for variant sub-tags.
	SubTagBits = 4

	// CounterBits is the number of low value bits holding the manager counter.
	CounterBits = ValueBits - SubTagBits

	// MaxValue is the largest value New accepts.
	MaxValue = uint64(1)<<ValueBits - 1

	// MaxCounter is the largest counter NewTagged accepts.
	MaxCounter = uint64(1)<<CounterBits - 1

	// MaxSubTag is the largest sub-tag NewTagged accepts.
	MaxSubTag = SubTag(1)<<SubTagBits - 1
)

// SubTag is a small set of variant bits stolen from the high end of a handle's value,
// letting variants that share one counter namespace stay distinguishable.
type SubTag uint8

// Handle is an immutable tagged 64-bit identifier for a native GPU object.
// The zero Handle is invalid. Handles compare equal iff their packed bits are equal.
type Handle struct {
	bits uint64
}

// New packs kind into the high KindBits and value into the rest.
// It panics if kind is not a valid kind or value does not fit in ValueBits.
//
// Parameters:
//   - kind: the resource kind to tag the handle with
//   - value: the opaque payload, at most MaxValue
//
// Returns:
//   - Handle: the packed handle
func New(kind Kind, value uint64) Handle {
	if !kind.Valid() {
		panic(fmt.Sprintf("resource: cannot create handle of kind %s", kind))
	}
	if value > MaxValue {
		panic(fmt.Sprintf("resource: value %#x overflows %d value bits", value, ValueBits))
	}
	return Handle{bits: uint64(kind)<<ValueBits | value}
}

// NewTagged packs kind, a sub-tag and a counter into a handle.
// It panics if the sub-tag or counter does not fit in its bit range.
//
// Parameters:
//   - kind: the resource kind to tag the handle with
//   - tag: the variant sub-tag, at most MaxSubTag
//   - counter: the manager counter, at most MaxCounter
//
// Returns:
//   - Handle: the packed handle
func NewTagged(kind Kind, tag SubTag, counter uint64) Handle {
	if tag > MaxSubTag {
		panic(fmt.Sprintf("resource: sub-tag %#x overflows %d sub-tag bits", tag, SubTagBits))
	}
	if counter > MaxCounter {
		panic(fmt.Sprintf("resource: counter %d overflows %d counter bits", counter, CounterBits))
	}
	return New(kind, uint64(tag)<<CounterBits|counter)
}

// FromRaw rebuilds a handle from its packed representation, as returned by Raw.
// The kind tag is decoded against the closed set of kinds.
//
// Parameters:
//   - bits: the packed 64-bit representation
//
// Returns:
//   - Handle: the decoded handle
//   - error: ErrInvalidKind if the tag does not name a valid kind
func FromRaw(bits uint64) (Handle, error) {
	kind := Kind(bits >> ValueBits)
	if !kind.Valid() {
		return Handle{}, fmt.Errorf("%w: tag %d in %#016x", ErrInvalidKind, uint16(kind), bits)
	}
	return Handle{bits: bits}, nil
}

// Kind returns the handle's kind tag.
func (h Handle) Kind() Kind {
	return Kind(h.bits >> ValueBits)
}

// Value returns the opaque payload with the tag bits masked off.
func (h Handle) Value() uint64 {
	return h.bits & MaxValue
}

// SubTag returns the variant bits stored above the counter.
func (h Handle) SubTag() SubTag {
	return SubTag(h.Value() >> CounterBits)
}

// Counter returns the manager counter stored in the low CounterBits.
func (h Handle) Counter() uint64 {
	return h.bits & MaxCounter
}

// Raw returns the packed 64-bit representation.
func (h Handle) Raw() uint64 {
	return h.bits
}

// IsZero reports whether h is the zero (invalid) handle.
func (h Handle) IsZero() bool {
	return h.bits == 0
}

// MustBe panics unless the handle carries the expected kind. Managers call it before
// touching the value of any handle they are asked to resolve.
//
// Parameters:
//   - kind: the kind the caller expects
//
// Returns:
//   - Handle: h, for chaining
func (h Handle) MustBe(kind Kind) Handle {
	if h.Kind() != kind {
		panic(fmt.Sprintf("resource: handle %s used as %s", h, kind))
	}
	return h
}

// HasSubTag reports whether every bit of tag is set on the handle.
func (h Handle) HasSubTag(tag SubTag) bool {
	return h.SubTag()&tag == tag
}

// MustHaveSubTag panics unless every bit of tag is set on the handle.
//
// Parameters:
//   - tag: the sub-tag bits the caller expects
//
// Returns:
//   - Handle: h, for chaining
func (h Handle) MustHaveSubTag(tag SubTag) Handle {
	if !h.HasSubTag(tag) {
		panic(fmt.Sprintf("resource: handle %s lacks sub-tag %d", h, tag))
	}
	return h
}

func (h Handle) String() string {
	if tag := h.SubTag(); tag != 0 {
		return fmt.Sprintf("%s#%d/%d", h.Kind(), h.Counter(), tag)
	}
	return fmt.Sprintf("%s#%d", h.Kind(), h.Counter())
}
