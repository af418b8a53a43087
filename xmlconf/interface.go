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
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	liberr "github.com/nabbar/golib/errors"
)

// Element is one node of a parsed configuration document: a name, an
// optional text value and the ordered child list.
type Element struct {
	Name     string
	Value    string
	Children []*Element
}

// Lookup resolves a macro name to its value. The second return mirrors
// os.LookupEnv.
type Lookup func(name string) (string, bool)

// Parse reads an XML document into its element tree.
func Parse(r io.Reader) (*Element, error) {
	var (
		dec   = xml.NewDecoder(r)
		root  *Element
		stack []*Element
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, ErrorParse.Error(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local}

			if len(stack) == 0 {
				if root != nil {
					return nil, liberr.Newf(ErrorParse.Uint16(), "multiple document roots")
				}
				root = el
			} else {
				p := stack[len(stack)-1]
				p.Children = append(p.Children, el)
			}

			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, liberr.Newf(ErrorParse.Uint16(), "unbalanced end element %q", t.Name.Local)
			}

			el := stack[len(stack)-1]
			el.Value = strings.TrimSpace(el.Value)
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Value += string(t)
			}
		}
	}

	if root == nil {
		return nil, liberr.Newf(ErrorParse.Uint16(), "empty document")
	}

	return root, nil
}

// ParseBytes reads an XML document held in memory.
func ParseBytes(p []byte) (*Element, error) {
	return Parse(bytes.NewReader(p))
}
