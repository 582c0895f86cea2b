package value

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// StreamTo writes v's canonical text form to w: elements space-separated,
// strings double-quoted with escapes, floats in the shortest round-tripping
// form, logicals as T/F. This is the form used by print/cat and by the
// => / -> symbol-table listing in pkg/symtab, not necessarily the form a
// host chooses to show a user at a REPL.
func (v *Value) StreamTo(w io.Writer) error {
	if v.length == 0 {
		_, err := io.WriteString(w, "")
		return err
	}
	for i := 0; i < v.length; i++ {
		if i > 0 {
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
		}
		if err := v.streamElement(w, i); err != nil {
			return err
		}
	}
	return nil
}

// streamElement writes the canonical text of element i, assuming the caller
// already range-checked i.
func (v *Value) streamElement(w io.Writer, i int) error {
	switch v.kind {
	case Null:
		_, err := io.WriteString(w, "NULL")
		return err
	case Logical:
		b, _ := v.logicalAt(i)
		if b {
			_, err := io.WriteString(w, "T")
			return err
		}
		_, err := io.WriteString(w, "F")
		return err
	case Int:
		n, _ := v.intAt(i)
		_, err := io.WriteString(w, strconv.FormatInt(n, 10))
		return err
	case Float:
		f, _ := v.floatAt(i)
		_, err := io.WriteString(w, formatFloat(f))
		return err
	case String:
		s, _ := v.stringAt(i)
		_, err := io.WriteString(w, quoteString(s))
		return err
	case Object:
		o, _ := v.objectAt(i)
		_, err := io.WriteString(w, formatObject(v.class, o))
		return err
	default:
		return fmt.Errorf("unhandled kind %v", v.kind)
	}
}

// formatFloat renders f the way Eidos expects: integral floats keep a
// trailing ".0" so that "1" (integer) and "1.0" (float) stay visually
// distinct, and infinities/NaN use the host's conventional spelling.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// quoteString renders s as a double-quoted Eidos string literal.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// formatObject renders a single object element as "object<ClassName>"
// ("object<ClassName>(NULL)" for a nil instance), deliberately terse since objects are
// usually inspected via their properties rather than printed directly.
func formatObject(c *Class, o *ObjectInstance) string {
	if c == nil {
		return "object<NULL>"
	}
	if o == nil {
		return fmt.Sprintf("object<%s>(NULL)", c.Name)
	}
	return fmt.Sprintf("object<%s>", c.Name)
}
