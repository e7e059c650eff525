// Package quote turns arbitrary strings into Tcl words that evaluate back to
// exactly the original string.
//
// Values without braces, backslashes or line breaks are brace-quoted as-is.
// Anything else is escaped and passed through
// `subst -nocommands -novariables`, which only
// performs backslash substitution, so $ and [ in the value are never
// evaluated by the shell.
package quote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/quartustcl/tcllist"
)

const (
	substPrefix = "[subst -nocommands -novariables {"
	substSuffix = "}]"
)

// ErrNotQuoted is returned by Unquote for words Quote never produces.
var ErrNotQuoted = errors.New("not a quoted word")

// needsEscape lists the bytes that rule out plain braces. Line breaks are
// escaped so a quoted word never spans lines on the wire.
const needsEscape = "{}\\\n\r"

var escaper = strings.NewReplacer(`\`, `\\`, `{`, `\{`, `}`, `\}`, "\n", `\n`, "\r", `\r`)

// Quote returns a Tcl word that evaluates to s.
func Quote(s string) string {
	if !strings.ContainsAny(s, needsEscape) {
		return "{" + s + "}"
	}
	return substPrefix + escaper.Replace(s) + substSuffix
}

// Words quotes each value and joins the results with spaces.
func Words(values ...string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = Quote(v)
	}
	return strings.Join(quoted, " ")
}

// Unquote evaluates a word produced by Quote the way Tcl would.
func Unquote(word string) (string, error) {
	if strings.HasPrefix(word, substPrefix) && strings.HasSuffix(word, substSuffix) {
		body := word[len(substPrefix) : len(word)-len(substSuffix)]
		return tcllist.Subst(body), nil
	}
	if len(word) < 2 || word[0] != '{' || word[len(word)-1] != '}' {
		return "", fmt.Errorf("%w: %q", ErrNotQuoted, word)
	}
	body := word[1 : len(word)-1]
	if strings.ContainsAny(body, needsEscape) {
		return "", fmt.Errorf("%w: %q", ErrNotQuoted, word)
	}
	return body, nil
}
