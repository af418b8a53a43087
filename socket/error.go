/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package socket

import (
	"errors"
	"fmt"

	liberr "github.com/nabbar/golib/errors"
)

const (
	ErrorInvalidAddress liberr.CodeError = iota + liberr.MinAvailable + 20
	ErrorSocketState
	ErrorSocketIO
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = liberr.ExistInMapMessage(ErrorInvalidAddress)
	liberr.RegisterIdFctMessage(ErrorInvalidAddress, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorInvalidAddress:
		return "invalid or missing socket address"
	case ErrorSocketState:
		return "operation not allowed in the current socket state"
	case ErrorSocketIO:
		return "socket i/o failure"
	}

	return liberr.NullMessage
}

// InterruptedIOError reports a blocking socket operation that gave up
// before completing, either on a reached deadline (Timeout true) or on a
// context cancellation. Bytes carries the octet count moved before the
// interruption.
type InterruptedIOError struct {
	Bytes   int
	Timeout bool
	Cause   error
}

func (e *InterruptedIOError) Error() string {
	kind := "interrupted"
	if e.Timeout {
		kind = "timed out"
	}

	if e.Cause != nil {
		return fmt.Sprintf("socket operation %s after %d bytes: %v", kind, e.Bytes, e.Cause)
	}

	return fmt.Sprintf("socket operation %s after %d bytes", kind, e.Bytes)
}

func (e *InterruptedIOError) Unwrap() error {
	return e.Cause
}

// IsInterrupted reports whether err is an interrupted socket operation,
// a timeout included.
func IsInterrupted(err error) bool {
	var i *InterruptedIOError
	return errors.As(err, &i)
}

// IsTimeout reports whether err is a reached socket deadline.
func IsTimeout(err error) bool {
	var i *InterruptedIOError
	if errors.As(err, &i) {
		return i.Timeout
	}

	return false
}

// BytesTransferred returns the octet count an interrupted operation moved
// before giving up, or zero when err carries no such information.
func BytesTransferred(err error) int {
	var i *InterruptedIOError
	if errors.As(err, &i) {
		return i.Bytes
	}

	return 0
}
