// Package id supplies the monotonic identifiers used to give loops and
// channels a stable diagnostic identity independent of pointer values
// (pointers get reused once an object is garbage
// collected; a monotonic sequence number never is, for the lifetime of
// the process).
package id

import "strconv"

// Generator hands out values of one underlying sequence in numeric or
// string form. Each call to Number or Str takes a fresh value, so a Str
// result is not the string form of an earlier Number result.
type Generator interface {
	Number() uint64
	Str() string
}

var _ Generator = (*defaultID)(nil)

type defaultID struct {
	number func() uint64
	str    func() string
}

func (id *defaultID) Number() uint64 { return id.number() }
func (id *defaultID) Str() string    { return id.str() }

func newDefaultID(next func() uint64) *defaultID {
	return &defaultID{
		number: next,
		str: func() string {
			return strconv.FormatUint(next(), 10)
		},
	}
}
