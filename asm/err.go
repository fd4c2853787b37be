package asm

import (
	"errors"

	"github.com/s16arch/s16/translate"
)

var f = translate.From

var (
	ErrExternalArith  = errors.New(f("cannot perform arithmetic on external value"))
	ErrRelocatableSum = errors.New(f("cannot add two relocatable values"))
)

// ErrSyntax wraps a diagnostic with its source position.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
