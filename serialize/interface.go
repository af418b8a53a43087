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

// Package serialize declares the payload serializer contract the channel
// layer consumes and ships a CBOR default. The cluster native POF codec
// is an external collaborator plugged through the same interface.
package serialize

import (
	cbor "github.com/fxamacker/cbor/v2"
)

// Serializer encodes and decodes channel payloads.
type Serializer interface {
	Serialize(v interface{}) ([]byte, error)
	Deserialize(p []byte, v interface{}) error
}

// Factory produces serializers on demand. Named factories live in the
// operational context map.
type Factory interface {
	CreateSerializer() (Serializer, error)
}

// FuncFactory adapts a plain function to the Factory interface.
type FuncFactory func() (Serializer, error)

func (f FuncFactory) CreateSerializer() (Serializer, error) {
	return f()
}

type cbr struct{}

// NewCBOR returns the default serializer, a CBOR codec using the
// library's default encoding options.
func NewCBOR() Serializer {
	return &cbr{}
}

func (o *cbr) Serialize(v interface{}) ([]byte, error) {
	return cbor.Marshal(v)
}

func (o *cbr) Deserialize(p []byte, v interface{}) error {
	return cbor.Unmarshal(p, v)
}
