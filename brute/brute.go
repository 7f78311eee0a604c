// Package brute enumerates every string over a charset, shortest first.
package brute

import (
	"errors"
	"iter"
	"math/big"
)

var (
	// ErrInvalidMinimum is returned by New when min is less than one.
	ErrInvalidMinimum = errors.New("minimum must be greater than zero")
	// ErrInvalidMaximum is returned by New when max is less than min.
	ErrInvalidMaximum = errors.New("maximum must be greater than or equal to the minimum")
	// ErrInvalidCharset is returned by New when charset is empty.
	ErrInvalidCharset = errors.New("charset must contain one or more chars")
)

type state byte

const (
	producing state = iota
	exhausted
)

// Brute is an odometer over charset. Each position in indexdata is a digit
// in base len(charset), the last one being least significant. When every
// digit rolls over, the odometer grows by one position until max is reached.
//
// A Brute is not safe for concurrent use.
type Brute struct {
	charset  []rune
	min, max int

	indexdata []int
	state     state
}

// New returns a Brute positioned at the first string of length min. The
// bounds are checked before the charset.
func New(min, max int, charset []rune) (*Brute, error) {
	if min < 1 {
		return nil, ErrInvalidMinimum
	}
	if max < min {
		return nil, ErrInvalidMaximum
	}
	if len(charset) == 0 {
		return nil, ErrInvalidCharset
	}

	b := Brute{
		charset:   append([]rune(nil), charset...),
		min:       min,
		max:       max,
		indexdata: make([]int, min),
	}
	return &b, nil
}

// NewFromString is New with the runes of charset as the alphabet.
func NewFromString(min, max int, charset string) (*Brute, error) {
	return New(min, max, []rune(charset))
}

// Next returns the next string, or false once everything up to max has been
// produced. After the first false every call returns false.
func (b *Brute) Next() (string, bool) {
	if b.state == exhausted {
		return "", false
	}

	out := make([]rune, len(b.indexdata))
	for i, v := range b.indexdata {
		out[i] = b.charset[v]
	}

	if !b.advance() {
		if len(b.indexdata) < b.max {
			b.indexdata = append(b.indexdata, 0)
		} else {
			b.state = exhausted
		}
	}

	return string(out), true
}

// advance steps the odometer once and reports false if it rolled over to all
// zeroes.
func (b *Brute) advance() bool {
	top := len(b.charset) - 1
	for i := len(b.indexdata) - 1; i >= 0; i-- {
		if b.indexdata[i] == top {
			b.indexdata[i] = 0
			continue
		}
		b.indexdata[i]++
		return true
	}
	return false
}

// All returns the remaining strings as a sequence. Stopping a range loop
// early leaves b positioned at the first string that was not yielded.
func (b *Brute) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			s, ok := b.Next()
			if !ok || !yield(s) {
				return
			}
		}
	}
}

// Done reports whether the enumeration is exhausted.
func (b *Brute) Done() bool {
	return b.state == exhausted
}

// Min returns the shortest length produced.
func (b *Brute) Min() int { return b.min }

// Max returns the longest length produced.
func (b *Brute) Max() int { return b.max }

// Charset returns a copy of the alphabet.
func (b *Brute) Charset() []rune {
	return append([]rune(nil), b.charset...)
}

// Total is the number of strings a fresh Brute with the same parameters
// produces: the sum of len(charset)^L for L in [min, max].
func (b *Brute) Total() *big.Int {
	radix := big.NewInt(int64(len(b.charset)))
	pow := new(big.Int).Exp(radix, big.NewInt(int64(b.min)), nil)

	total := new(big.Int)
	for l := b.min; l <= b.max; l++ {
		total.Add(total, pow)
		pow.Mul(pow, radix)
	}
	return total
}
