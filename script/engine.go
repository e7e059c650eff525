package script

import (
	"context"
	"fmt"
	"strings"
	"text/template"
)

// Evaluator runs Tcl commands. *quartus.Session satisfies it.
type Evaluator interface {
	Eval(ctx context.Context, cmd string, args ...any) (string, error)
}

// Engine renders Tcl scripts with variables. Plain <%name%> references are
// always quoted, so values cannot inject commands.
type Engine struct {
	funcs template.FuncMap
}

// NewEngine creates an engine with the default helpers.
func NewEngine() *Engine {
	return &Engine{
		funcs: defaultFuncs(),
	}
}

// Render executes the script with the given variables. Missing variables
// are an error.
func (e *Engine) Render(src string, vars map[string]any) (string, error) {
	tmpl, err := e.parse(src)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecute, err)
	}
	return buf.String(), nil
}

// Variables validates the script and returns the variable names it uses.
func (e *Engine) Variables(src string) ([]string, error) {
	if _, err := e.parse(src); err != nil {
		return nil, err
	}
	return extractVariables(src), nil
}

// AddFunc adds a helper. Helpers use text/template syntax (.name).
func (e *Engine) AddFunc(name string, fn any) {
	e.funcs[name] = fn
}

// Run renders src and evaluates the result as one command in the shell.
func (e *Engine) Run(ctx context.Context, ev Evaluator, src string, vars map[string]any) (string, error) {
	rendered, err := e.Render(src, vars)
	if err != nil {
		return "", err
	}
	return ev.Eval(ctx, rendered)
}

func (e *Engine) parse(src string) (*template.Template, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmpty
	}
	tmpl, err := template.New("script").
		Delims(LeftDelim, RightDelim).
		Option("missingkey=error").
		Funcs(e.funcs).
		Parse(convertSyntax(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return tmpl, nil
}

// ValidateVariables checks that all required variables are provided.
func ValidateVariables(required []string, provided map[string]any) error {
	for _, name := range required {
		if _, ok := provided[name]; !ok {
			return fmt.Errorf("%w: %s", ErrVariable, name)
		}
	}
	return nil
}
