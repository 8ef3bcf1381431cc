package codec

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// Kind tags the shape a Handler expects at a given point in the document.
type Kind int

const (
	KString Kind = iota
	KInt
	KFloat
	KBool
	KNull
	KObject
	KArray
)

// Handler is one node of a message type's handler tree: a static
// description of the JSON shape expected at that position, plus the
// callback that applies a terminal value to the in-progress message.
// Handler trees are built once per message type at process start; a
// parsing Session walks one transiently per message.
type Handler[M any] struct {
	Kind Kind

	OnString func(string, *M) error
	OnInt    func(uint64, *M) error
	OnFloat  func(float64, *M) error
	OnBool   func(bool, *M) error
	OnNull   func(*M) error

	Fields  map[string]*Handler[M] // valid when Kind == KObject
	Element *Handler[M]            // valid when Kind == KArray
}

func StringField[M any](f func(string, *M) error) *Handler[M] {
	return &Handler[M]{Kind: KString, OnString: f}
}

func IntField[M any](f func(uint64, *M) error) *Handler[M] {
	return &Handler[M]{Kind: KInt, OnInt: f}
}

func FloatField[M any](f func(float64, *M) error) *Handler[M] {
	return &Handler[M]{Kind: KFloat, OnFloat: f}
}

func BoolField[M any](f func(bool, *M) error) *Handler[M] {
	return &Handler[M]{Kind: KBool, OnBool: f}
}

func ObjectOf[M any](fields map[string]*Handler[M]) *Handler[M] {
	return &Handler[M]{Kind: KObject, Fields: fields}
}

func ArrayOf[M any](element *Handler[M]) *Handler[M] {
	return &Handler[M]{Kind: KArray, Element: element}
}

// frame is one entry of the parser's handler stack, paired with the
// dotted-path label used in error messages.
type frame[M any] struct {
	h     *Handler[M]
	label string
}

// Decode runs the streaming handler-stack parser described in §4.1 over
// data, filling a zero-initialized *M via root's callbacks. It never
// constructs an intermediate DOM: each JSON token is consumed and
// discarded as soon as the matching handler has been invoked.
func Decode[M any](data []byte, root *Handler[M]) (*M, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	msg := new(M)
	stack := []frame[M]{{h: root, label: "$"}}
	var arrayStack []*Handler[M]

	top := func() frame[M] { return stack[len(stack)-1] }
	push := func(h *Handler[M], label string) { stack = append(stack, frame[M]{h: h, label: label}) }
	pop := func() { stack = stack[:len(stack)-1] }

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseErr(strconv.FormatInt(dec.InputOffset(), 10), err.Error())
		}

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				f := top()
				switch f.h.Kind {
				case KObject:
					// root or already-pushed object: no change, keys will push.
				case KArray:
					elem := f.h.Element
					if elem.Kind != KObject {
						return nil, shapeErr(f.label, "array element is not an object")
					}
					push(elem, f.label+"[]")
				default:
					return nil, shapeErr(f.label, "unexpected object")
				}

			case '}':
				if top().h.Kind != KObject {
					return nil, shapeErr(top().label, "unexpected end of object")
				}
				pop()

			case '[':
				f := top()
				if f.h.Kind != KArray {
					return nil, shapeErr(f.label, "unexpected array")
				}
				if len(arrayStack) > 0 && arrayStack[len(arrayStack)-1] == f.h {
					elem := f.h.Element
					if elem.Kind != KArray {
						return nil, shapeErr(f.label, "expected nested array element")
					}
					push(elem, f.label+"[]")
					arrayStack = append(arrayStack, elem)
				} else {
					arrayStack = append(arrayStack, f.h)
				}

			case ']':
				if top().h.Kind != KArray {
					return nil, shapeErr(top().label, "unexpected end of array")
				}
				arrayStack = arrayStack[:len(arrayStack)-1]
				pop()
			}

		case string:
			f := top()
			switch f.h.Kind {
			case KObject:
				fh, ok := f.h.Fields[t]
				if !ok {
					return nil, shapeErr(f.label, "unknown key "+strconv.Quote(t))
				}
				push(fh, f.label+"."+t)
			case KString:
				if err := f.h.OnString(t, msg); err != nil {
					return nil, semanticErr(f.label, err.Error())
				}
				pop()
			case KArray:
				elem := f.h.Element
				if elem.Kind != KString {
					return nil, shapeErr(f.label, "array element type mismatch")
				}
				if err := elem.OnString(t, msg); err != nil {
					return nil, semanticErr(f.label, err.Error())
				}
			default:
				return nil, shapeErr(f.label, "unexpected string value")
			}

		case json.Number:
			if err := applyNumber(stack, &top, pop, t, msg); err != nil {
				return nil, err
			}

		case bool:
			f := top()
			switch f.h.Kind {
			case KBool:
				if err := f.h.OnBool(t, msg); err != nil {
					return nil, semanticErr(f.label, err.Error())
				}
				pop()
			case KArray:
				elem := f.h.Element
				if elem.Kind != KBool {
					return nil, shapeErr(f.label, "array element type mismatch")
				}
				if err := elem.OnBool(t, msg); err != nil {
					return nil, semanticErr(f.label, err.Error())
				}
			default:
				return nil, shapeErr(f.label, "unexpected bool value")
			}

		case nil:
			f := top()
			switch f.h.Kind {
			case KNull:
				if err := f.h.OnNull(msg); err != nil {
					return nil, semanticErr(f.label, err.Error())
				}
				pop()
			case KArray:
				elem := f.h.Element
				if elem.Kind != KNull {
					return nil, shapeErr(f.label, "array element type mismatch")
				}
				if err := elem.OnNull(msg); err != nil {
					return nil, semanticErr(f.label, err.Error())
				}
			default:
				return nil, shapeErr(f.label, "unexpected null value")
			}
		}
	}

	if len(stack) != 0 {
		return nil, parseErr(strconv.FormatInt(dec.InputOffset(), 10), "unexpected end of input at "+top().label)
	}

	return msg, nil
}

// applyNumber is split out of Decode's token switch only because Go's
// json.Number needs int/float disambiguation that would otherwise bloat
// the main switch; it mutates the stack exactly like the string/bool arms.
func applyNumber[M any](stack []frame[M], top *func() frame[M], pop func(), n json.Number, msg *M) error {
	f := (*top)()

	asInt := func() (uint64, bool) {
		i, err := strconv.ParseUint(n.String(), 10, 64)
		return i, err == nil
	}
	asFloat := func() float64 {
		v, _ := n.Float64()
		return v
	}

	switch f.h.Kind {
	case KInt:
		i, ok := asInt()
		if !ok {
			return shapeErr(f.label, "expected non-negative integer, got "+n.String())
		}
		if err := f.h.OnInt(i, msg); err != nil {
			return semanticErr(f.label, err.Error())
		}
		pop()
	case KFloat:
		if err := f.h.OnFloat(asFloat(), msg); err != nil {
			return semanticErr(f.label, err.Error())
		}
		pop()
	case KArray:
		elem := f.h.Element
		switch elem.Kind {
		case KInt:
			i, ok := asInt()
			if !ok {
				return shapeErr(f.label, "expected non-negative integer, got "+n.String())
			}
			if err := elem.OnInt(i, msg); err != nil {
				return semanticErr(f.label, err.Error())
			}
		case KFloat:
			if err := elem.OnFloat(asFloat(), msg); err != nil {
				return semanticErr(f.label, err.Error())
			}
		default:
			return shapeErr(f.label, "array element type mismatch")
		}
	default:
		return shapeErr(f.label, "unexpected number value")
	}
	return nil
}

// quoteJSON renders s as a JSON string literal.
func quoteJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
