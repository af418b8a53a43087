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
	"strings"
)

// ReplaceMacros walks the element tree and substitutes every
// `${name default}` token in element values before any component reads
// its configuration. A resolvable name takes the looked up value, an
// unresolvable name takes the supplied default, and a token with no
// default at all is left untouched.
func ReplaceMacros(e *Element, lookup Lookup) {
	if e == nil || lookup == nil {
		return
	}

	e.Value = replaceMacro(e.Value, lookup)

	for _, c := range e.Children {
		ReplaceMacros(c, lookup)
	}
}

func replaceMacro(s string, lookup Lookup) string {
	var off int

	for {
		i := strings.Index(s[off:], "${")
		if i < 0 {
			return s
		}
		i += off

		j := strings.Index(s[i:], "}")
		if j < 0 {
			return s
		}

		var (
			body = s[i+2 : i+j]
			name = body
			def  string
			has  bool
		)

		if k := strings.IndexByte(body, ' '); k >= 0 {
			name = body[:k]
			def = strings.TrimSpace(body[k+1:])
			has = true
		}

		val, found := lookup(strings.TrimSpace(name))
		switch {
		case found:
			s = s[:i] + val + s[i+j+1:]
			off = i + len(val)
		case has:
			s = s[:i] + def + s[i+j+1:]
			off = i + len(def)
		default:
			// no value and no default, leave the token untouched
			off = i + j + 1
		}
	}
}
