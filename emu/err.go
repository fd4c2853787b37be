package emu

import (
	"errors"

	"github.com/s16arch/s16/translate"
)

var f = translate.From

var (
	ErrNotExecutable = errors.New(f("object code contains unresolved imports"))
	ErrBadObjectLine = errors.New(f("object line has invalid format"))
)

// ErrBoot indicates a failure while loading an executable.
type ErrBoot struct {
	ModName string
	Err     error
}

func (err *ErrBoot) Error() string {
	return f("boot %v: %v", err.ModName, err.Err)
}

func (err *ErrBoot) Unwrap() error {
	return err.Err
}
