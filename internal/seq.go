// Package internal provides small iterator helpers shared by the
// toolchain packages.
package internal

import (
	"iter"
)

// Concat chains several sequences into one.
func Concat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for v := range seq {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Single yields exactly one value.
func Single[T any](v T) iter.Seq[T] {
	return func(yield func(T) bool) {
		yield(v)
	}
}
