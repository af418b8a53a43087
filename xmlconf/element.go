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

package xmlconf

import (
	"strconv"
	"strings"
	"time"

	libdur "github.com/nabbar/golib/duration"
	libsiz "github.com/nabbar/golib/size"
)

// Get returns the first direct child with the given name, or nil.
func (e *Element) Get(name string) *Element {
	if e == nil {
		return nil
	}

	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// GetSafe returns the first direct child with the given name, or an
// empty placeholder so value getters can chain with their defaults.
func (e *Element) GetSafe(name string) *Element {
	if c := e.Get(name); c != nil {
		return c
	}

	return &Element{Name: name}
}

// GetAll returns every direct child with the given name.
func (e *Element) GetAll(name string) []*Element {
	if e == nil {
		return nil
	}

	var lst []*Element

	for _, c := range e.Children {
		if c.Name == name {
			lst = append(lst, c)
		}
	}

	return lst
}

// IsEmpty reports whether the element has no value and no children.
func (e *Element) IsEmpty() bool {
	return e == nil || (e.Value == "" && len(e.Children) == 0)
}

// GetString returns the element value, or def when it is empty.
func (e *Element) GetString(def string) string {
	if e == nil || e.Value == "" {
		return def
	}

	return e.Value
}

// GetBool parses the element value as a boolean, returning def on an
// empty or invalid value.
func (e *Element) GetBool(def bool) bool {
	if e == nil || e.Value == "" {
		return def
	}

	if b, err := strconv.ParseBool(strings.ToLower(e.Value)); err == nil {
		return b
	}

	return def
}

// GetInt parses the element value as an integer, returning def on an
// empty or invalid value.
func (e *Element) GetInt(def int) int {
	if e == nil || e.Value == "" {
		return def
	}

	if i, err := strconv.Atoi(e.Value); err == nil {
		return i
	}

	return def
}

// GetDuration parses the element value as a duration with days support,
// returning def on an empty or invalid value. A bare number counts
// milliseconds, the unit the wire protocol settings historically used.
func (e *Element) GetDuration(def libdur.Duration) libdur.Duration {
	if e == nil || e.Value == "" {
		return def
	}

	if i, err := strconv.ParseInt(e.Value, 10, 64); err == nil {
		return libdur.ParseDuration(time.Duration(i) * time.Millisecond)
	}

	if d, err := libdur.Parse(e.Value); err == nil {
		return d
	}

	return def
}

// GetSize parses the element value as a memory size (8K, 2M...),
// returning def on an empty or invalid value. A bare number counts
// bytes.
func (e *Element) GetSize(def libsiz.Size) libsiz.Size {
	if e == nil || e.Value == "" {
		return def
	}

	if s, err := libsiz.Parse(e.Value); err == nil {
		return s
	}

	return def
}
