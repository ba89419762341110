package wire

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var ErrMissingAction = errors.New("request has no action")

// Param is one named request parameter.
type Param struct {
	Key   string
	Value string
}

// String builds a text parameter.
func String(key, value string) Param {
	return Param{Key: key, Value: value}
}

// Int builds an integer parameter.
func Int(key string, value int64) Param {
	return Param{Key: key, Value: strconv.FormatInt(value, 10)}
}

// Bool builds a boolean parameter.
func Bool(key string, value bool) Param {
	return Param{Key: key, Value: strconv.FormatBool(value)}
}

// Money builds a decimal parameter without rounding.
func Money(key string, value decimal.Decimal) Param {
	return Param{Key: key, Value: value.String()}
}

// Params keeps parameters in the order they were written.
type Params []Param

// Lookup returns the value of the first parameter named key.
func (p Params) Lookup(key string) (string, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return "", false
}

// Get returns the value of key, or "" when absent.
func (p Params) Get(key string) string {
	v, _ := p.Lookup(key)
	return v
}

// Map returns the parameters keyed by name. The first occurrence of a
// repeated name wins, matching Lookup.
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, param := range p {
		if _, seen := m[param.Key]; !seen {
			m[param.Key] = param.Value
		}
	}
	return m
}

// Request is a decoded request envelope.
type Request struct {
	Action string
	Params Params
}

// Escape replaces the XML metacharacters &, < and > in s. Carriage
// returns are written as character references so they survive the
// decoder's line-ending normalisation, and characters XML cannot carry
// (control characters, invalid UTF-8) become U+FFFD.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '&':
			b.WriteString("&amp;")
		case r == '<':
			b.WriteString("&lt;")
		case r == '>':
			b.WriteString("&gt;")
		case r == '\r':
			b.WriteString("&#xD;")
		case !isXMLChar(r):
			b.WriteRune(utf8.RuneError)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isXMLChar reports whether r is in the XML 1.0 Char production. A
// utf8.RuneError decoded from a bad byte is in range, so it round-trips
// as U+FFFD.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

// EncodeRequest renders action and params as a request envelope. Values
// are escaped; parameter names are written as given.
func EncodeRequest(action string, params ...Param) []byte {
	var b bytes.Buffer
	b.WriteString("<request><action>")
	b.WriteString(Escape(action))
	b.WriteString("</action>")
	for _, p := range params {
		b.WriteByte('<')
		b.WriteString(p.Key)
		b.WriteByte('>')
		b.WriteString(Escape(p.Value))
		b.WriteString("</")
		b.WriteString(p.Key)
		b.WriteByte('>')
	}
	b.WriteString("</request>")
	return b.Bytes()
}

type textElement struct {
	Text string `xml:",chardata"`
}

// DecodeRequest parses a request envelope. Nested markup inside a
// parameter is ignored; only its direct text is kept.
func DecodeRequest(envelope []byte) (*Request, error) {
	decoder := xml.NewDecoder(bytes.NewReader(envelope))

	if _, err := nextStart(decoder); err != nil {
		return nil, fmt.Errorf("decode request root: %w", err)
	}

	request := &Request{}
	hasAction := false
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			var element textElement
			if err := decoder.DecodeElement(&element, &t); err != nil {
				return nil, fmt.Errorf("decode parameter %s: %w", t.Name.Local, err)
			}
			if t.Name.Local == "action" && !hasAction {
				request.Action = strings.TrimSpace(element.Text)
				hasAction = true
				continue
			}
			request.Params = append(request.Params, Param{Key: t.Name.Local, Value: element.Text})
		case xml.EndElement:
			if !hasAction || request.Action == "" {
				return nil, ErrMissingAction
			}
			return request, nil
		}
	}
}

func nextStart(decoder *xml.Decoder) (xml.StartElement, error) {
	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return xml.StartElement{}, io.ErrUnexpectedEOF
			}
			return xml.StartElement{}, err
		}
		if start, ok := token.(xml.StartElement); ok {
			return start, nil
		}
	}
}
