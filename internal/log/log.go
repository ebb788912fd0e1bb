package log

import (
	"fmt"
	"io"
	"os"
)

var infoLogger Printer = NewPrinter(os.Stderr, true)
var debugLogger Printer = NewPrinter(os.Stderr, false)
var errLogger Printer = NewPrinter(os.Stderr, true)

type Printer interface {
	Printf(string, ...interface{})

	SetEnabled(bool)
	IsEnabled() bool

	SetOutput(io.Writer)
}

func NewPrinter(w io.Writer, on bool) Printer {
	return &printer{
		out: w,
		on:  on,
	}
}

type printer struct {
	out io.Writer
	on  bool
}

func (r *printer) SetEnabled(b bool) {
	r.on = b
}

func (r *printer) IsEnabled() bool {
	return r.on
}

func (r *printer) SetOutput(w io.Writer) {
	r.out = w
}

func (r *printer) Printf(format string, a ...interface{}) {
	if r.on {
		fmt.Fprintf(r.out, format, a...)
	}
}

// SetDebug turns debug logging on or off.
func SetDebug(b bool) {
	debugLogger.SetEnabled(b)
}

func IsDebug() bool {
	return debugLogger.IsEnabled()
}

func SetOutput(w io.Writer) {
	infoLogger.SetOutput(w)
	debugLogger.SetOutput(w)
	errLogger.SetOutput(w)
}

func Infof(format string, a ...interface{}) {
	infoLogger.Printf(format, a...)
}

func Debugf(format string, a ...interface{}) {
	debugLogger.Printf(format, a...)
}

func Errorf(format string, a ...interface{}) {
	errLogger.Printf(format, a...)
}
