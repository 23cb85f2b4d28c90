package xmlinput

import "errors"

var (
	ErrNilSource      = errors.New("xmlinput: nil source reader")
	ErrZeroBufferSize = errors.New("xmlinput: buffer size is zero")
	ErrBufferTooSmall = errors.New("xmlinput: buffer smaller than one UTF-8 sequence")
	ErrBufferTooLarge = errors.New("xmlinput: buffer size exceeds MaxBufferSize")
	ErrOutOfMemory    = errors.New("xmlinput: buffer allocation failed")
	ErrInvalidUTF8    = errors.New("xmlinput: invalid UTF-8 sequence")
)
