// Package script renders parameterized Tcl scripts with safely quoted
// variables.
//
// Scripts are text/template templates with <% %> delimiters, since Tcl
// already gives braces and brackets meaning. A bare variable reference is
// always quoted into a single literal Tcl word:
//
//	engine := script.NewEngine()
//	src, err := engine.Render(
//	    "project_open <%project%> -revision <%revision%>",
//	    map[string]any{"project": "my proj", "revision": "rev[1]"},
//	)
//	// src: "project_open {my proj} -revision {rev[1]}"
//
// # Syntax
//
//   - <%name%> inserts the value of name as one quoted word
//   - <%raw name%> inserts the value unquoted, as Tcl source
//   - <%words name%> inserts each element of a slice as its own word
//   - <%if name%>...<%else%>...<%end%> and <%range name%>...<%end%>
//
// Inside range, <%quote .%> quotes the current element. Anything else is
// plain text/template syntax with these delimiters.
//
// # Running Scripts
//
// Run renders a script and evaluates it in a session:
//
//	out, err := engine.Run(ctx, session, tmpl, vars)
package script
