// Package arena implements the bump allocator the parser uses to hold
// every AST node it builds. All nodes share one fixed-size buffer and
// are released together when the Arena is dropped — no node is ever
// freed individually, and none may outlive the Arena that produced it.
package arena

import (
	"unsafe"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

// DefaultSize is the default buffer reservation, sized to comfortably
// hold the ASTs this compiler targets.
const DefaultSize = 4 << 20 // 4 MiB

// ErrExhausted is returned by Alloc when the arena's remaining aligned
// capacity can't satisfy a request. It is fatal by contract: nothing in
// this compiler recovers from it.
var ErrExhausted = errors.New("arena: allocation exhausted")

// Arena is a non-copyable owner of one fixed-size buffer. Zero value is
// not usable; construct with New.
type Arena struct {
	buf []byte
	off uintptr

	noCopy noCopy
}

// noCopy lets `go vet`'s copylocks check flag accidental Arena copies;
// it carries no state.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New reserves a buffer of size bytes for allocation. size must be
// positive; New(DefaultSize) covers the sizes this compiler targets.
func New(size int) *Arena {
	if size <= 0 {
		size = DefaultSize
	}
	return &Arena{buf: make([]byte, size)}
}

// Alloc reserves space for one T inside a, zero-initialized, and
// returns a pointer to it. The offset is rounded up to alignof(T)
// first, then bumped past the request. Returned storage stays valid
// for the lifetime of a; it is never individually freed or reused.
func Alloc[T any](a *Arena) (*T, error) {
	var zero T
	size := unsafe.Sizeof(zero)
	align := unsafe.Alignof(zero)

	if len(a.buf) == 0 {
		return nil, ErrExhausted
	}

	base := uintptr(unsafe.Pointer(&a.buf[0]))
	cur := base + a.off
	aligned := (cur + align - 1) &^ (align - 1)
	pad := aligned - cur

	if a.off+pad+size > uintptr(len(a.buf)) {
		tlog.V("arena_exhausted").Printw("arena exhausted", "need", size, "align", align, "remaining", uintptr(len(a.buf))-a.off, "from", loc.Caller(1))
		return nil, errors.Wrap(ErrExhausted, "need %d bytes (align %d), %d remaining", size, align, uintptr(len(a.buf))-a.off)
	}

	a.off += pad + size

	ptr := (*T)(unsafe.Pointer(aligned))
	*ptr = zero

	return ptr, nil
}

// MustAlloc panics on ErrExhausted. Kept for call sites (none in the
// parser, all of which propagate the error) that would rather crash
// loudly than thread an allocation failure through unrelated plumbing.
func MustAlloc[T any](a *Arena) *T {
	p, err := Alloc[T](a)
	if err != nil {
		panic(err)
	}
	return p
}

// Emplace allocates a T in a and copies v into it.
func Emplace[T any](a *Arena, v T) (*T, error) {
	p, err := Alloc[T](a)
	if err != nil {
		return nil, err
	}
	*p = v
	return p, nil
}

// Used reports how many bytes of a's buffer are currently occupied.
// Diagnostic only; nothing in the pipeline branches on it.
func (a *Arena) Used() int { return int(a.off) }

// Cap reports a's total reserved capacity in bytes.
func (a *Arena) Cap() int { return len(a.buf) }
