package script

import (
	"strings"
	"text/template"

	"github.com/randalmurphal/quartustcl/quartus"
	"github.com/randalmurphal/quartustcl/quote"
	"github.com/randalmurphal/quartustcl/tcllist"
)

// helperNames lists the helpers whose bare arguments name variables.
var helperNames = []string{"raw", "words"}

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"quote":   quoteValue,
		"raw":     quartus.Stringify,
		"words":   wordsValue,
		"default": defaultValue,
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
	}
}

// quoteValue makes any value a single literal Tcl word.
func quoteValue(v any) string {
	return quote.Quote(quartus.Stringify(v))
}

// wordsValue renders each element of a slice as its own quoted word, for
// commands that take a variable number of arguments.
func wordsValue(v any) string {
	switch x := v.(type) {
	case []string:
		return quote.Words(x...)
	case []any:
		elems := make([]string, len(x))
		for i, e := range x {
			elems[i] = quartus.Stringify(e)
		}
		return quote.Words(elems...)
	case tcllist.Value:
		return quote.Words(x.Strings()...)
	default:
		return quoteValue(v)
	}
}

// defaultValue returns def if val is nil or an empty string.
func defaultValue(val, def any) any {
	if val == nil {
		return def
	}
	if s, ok := val.(string); ok && s == "" {
		return def
	}
	return val
}
