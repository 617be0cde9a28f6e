package runtime

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sergev/pseudo/lang"
	"github.com/sergev/pseudo/parser"
)

// Formatter renders values for a console. Numbers follow a locale when one
// is configured.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a formatter for locale, e.g. "en-US" or "de". An
// empty locale keeps the plain program notation.
func NewFormatter(locale string) (*Formatter, error) {
	if locale == "" {
		return &Formatter{}, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return &Formatter{printer: message.NewPrinter(tag)}, nil
}

// Display renders v the way DISPLAY shows it: a top-level string is printed
// without quotes, everything else as Value renders.
func (f *Formatter) Display(v lang.Value) string {
	if v.Type == lang.TypeString {
		return v.Str()
	}
	return f.Format(v)
}

// Format renders v with strings quoted. A list nested inside itself prints
// as "[...]".
func (f *Formatter) Format(v lang.Value) string {
	return f.format(v, make(map[*lang.List]bool))
}

func (f *Formatter) format(v lang.Value, open map[*lang.List]bool) string {
	switch v.Type {
	case lang.TypeNumber:
		return f.number(v.Num())
	case lang.TypeList:
		l := v.List()
		if l != nil && open[l] {
			return "[...]"
		}
		var b strings.Builder
		b.WriteByte('[')
		if l != nil {
			open[l] = true
			for i, item := range l.Items {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(f.format(item, open))
			}
			delete(open, l)
		}
		b.WriteByte(']')
		return b.String()
	default:
		return v.String()
	}
}

func (f *Formatter) number(n float64) string {
	if f == nil || f.printer == nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return parser.FormatNumber(n)
	}
	return f.printer.Sprintf("%v", number.Decimal(n, number.MaxFractionDigits(15)))
}
