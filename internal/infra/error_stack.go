package infra

import (
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap/zapcore"
)

// ErrorStack wraps an error with the Frame of its call site, letting
// callers render either a terse message or a full func+file:line stack
// entry without depending on zap's default stack capture.
type ErrorStack struct {
	msg   string
	frame Frame
	cause error
}

func (e *ErrorStack) Error() string {
	return e.msg
}

func (e *ErrorStack) Unwrap() error {
	return e.cause
}

func (e *ErrorStack) Frame() Frame {
	return e.frame
}

// MarshalLogObject lets zap.Inline(es) render the stack frame as
// structured fields instead of a single string.
func (e *ErrorStack) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.msg)
	enc.AddString("func", e.frame.name())
	enc.AddString("at", e.frame.file()+":"+fmt.Sprint(e.frame.line()))
	if e.cause != nil {
		enc.AddString("cause", e.cause.Error())
	}
	return nil
}

func (e *ErrorStack) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "%s: %+v", e.msg, e.frame)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprintf(s, "%s: %v", e.msg, e.frame)
	}
}

func callerFrame(skip int) Frame {
	var pcs [1]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	if n == 0 {
		return Frame(0)
	}
	frames := runtime.CallersFrames(pcs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

// NewErrorStack builds a new error carrying the caller's Frame.
func NewErrorStack(format string, args ...any) error {
	return &ErrorStack{
		msg:   fmt.Sprintf(format, args...),
		frame: callerFrame(1),
	}
}

// WrapErrorStack wraps err with the caller's Frame. Returns nil if err is nil.
func WrapErrorStack(err error) error {
	if err == nil {
		return nil
	}
	var es *ErrorStack
	if errors.As(err, &es) {
		return &ErrorStack{msg: es.msg, frame: callerFrame(1), cause: es.cause}
	}
	return &ErrorStack{msg: err.Error(), frame: callerFrame(1), cause: err}
}
