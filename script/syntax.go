package script

import (
	"regexp"
	"strings"
)

// Delimiters mark template actions. Tcl gives braces and brackets meaning,
// so the usual {{ }} cannot be used.
const (
	LeftDelim  = "<%"
	RightDelim = "%>"
)

var (
	// <%name%> inserts the quoted value of name.
	varPattern = regexp.MustCompile(`<%\s*([a-zA-Z_]\w*)\s*%>`)

	// <%if name%>, <%range name%> and <%with name%> test a variable.
	controlPattern = regexp.MustCompile(`<%\s*(if|range|with)\s+([a-zA-Z_]\w*)\s*%>`)

	// <%raw name%> and <%words name%> take a variable as an argument.
	helperVarPattern = regexp.MustCompile(`<%\s*\w+\s+([a-zA-Z_]\w*)`)
)

// keywords are text/template words that are never variable names.
var keywords = map[string]bool{
	"else":     true,
	"end":      true,
	"if":       true,
	"range":    true,
	"with":     true,
	"define":   true,
	"template": true,
	"block":    true,
	"break":    true,
	"continue": true,
}

// convertSyntax rewrites the short forms into text/template actions:
//
//   - <%name%> -> <%quote .name%>
//   - <%if name%> -> <%if .name%> (also range and with)
//   - <%helper name ...%> -> <%helper .name ...%>
func convertSyntax(input string) string {
	result := controlPattern.ReplaceAllString(input, LeftDelim+"$1 .$2"+RightDelim)

	result = varPattern.ReplaceAllStringFunc(result, func(match string) string {
		name := varPattern.FindStringSubmatch(match)[1]
		if keywords[name] {
			return match
		}
		return LeftDelim + "quote ." + name + RightDelim
	})

	for _, helper := range helperNames {
		pattern := regexp.MustCompile(`<%\s*` + helper + `\s+([^%]+)%>`)
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			args := strings.TrimSpace(pattern.FindStringSubmatch(match)[1])
			return LeftDelim + helper + " " + convertArguments(args) + RightDelim
		})
	}
	return result
}

// convertArguments prefixes bare identifiers with a dot. Literals and
// expressions that already start with a dot stay as they are.
func convertArguments(args string) string {
	parts := strings.Fields(args)
	for i, part := range parts {
		if strings.HasPrefix(part, ".") || strings.HasPrefix(part, `"`) || isNumber(part) {
			continue
		}
		if part == "true" || part == "false" {
			continue
		}
		if isIdentifier(part) {
			parts[i] = "." + part
		}
	}
	return strings.Join(parts, " ")
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		if ch == '-' && i == 0 {
			continue
		}
		if ch != '.' && (ch < '0' || ch > '9') {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		switch {
		case ch == '_', ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// extractVariables returns the variables a script references, deduplicated
// in order of first use.
func extractVariables(src string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(name string) {
		if !seen[name] && !keywords[name] && isIdentifier(name) {
			seen[name] = true
			result = append(result, name)
		}
	}

	for _, m := range varPattern.FindAllStringSubmatch(src, -1) {
		add(m[1])
	}
	for _, m := range helperVarPattern.FindAllStringSubmatch(src, -1) {
		add(m[1])
	}
	return result
}
