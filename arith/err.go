package arith

import (
	"github.com/s16arch/s16/translate"
)

var f = translate.From

type ErrHex4 string

func (err ErrHex4) Error() string {
	return f("'%v' is not a 4 digit hex word", string(err))
}
