// Package command builds process launch arguments for every supported
// app framework. A Command is an ordered list of argument tokens, either
// literal strings or templates with $name placeholders that are bound at
// spawn time.
package command

import (
	"fmt"
	"regexp"
	"strings"

	"apphub/internal/errors"
)

var placeholderRe = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// Arg is one argument token of a launch command.
type Arg struct {
	text      string
	templated bool
}

// Lit returns a literal token, passed through substitution unchanged.
// Tokens like "{--}port={port}" are literals here: their braces are
// substituted later by the proxy wrapper, not by this engine.
func Lit(text string) Arg {
	return Arg{text: text}
}

// Tmpl returns a templated token whose $name placeholders are bound by
// Substitute.
func Tmpl(text string) Arg {
	return Arg{text: text, templated: true}
}

// Substitute binds the token's placeholders. Only bindings whose name
// actually appears in the token text are applied; callers always pass a
// superset of possible variables and the extras are ignored. A
// placeholder with no binding is an error.
func (a Arg) Substitute(vars map[string]string) (string, error) {
	if !a.templated {
		return a.text, nil
	}

	var missing string
	out := placeholderRe.ReplaceAllStringFunc(a.text, func(match string) string {
		name := match[1:]
		value, ok := vars[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return match
		}
		return value
	})
	if missing != "" {
		return "", errors.ErrMissingVariable(
			fmt.Sprintf("no binding for placeholder $%s in %q", missing, a.text), nil)
	}
	return out, nil
}

// Command is an ordered sequence of argument tokens.
type Command struct {
	Args []Arg
}

// New builds a Command from tokens.
func New(args ...Arg) Command {
	return Command{Args: args}
}

// Concat returns a new Command with other's tokens appended, used to
// prepend the generic proxy wrapper in front of a framework body.
func (c Command) Concat(other Command) Command {
	args := make([]Arg, 0, len(c.Args)+len(other.Args))
	args = append(args, c.Args...)
	args = append(args, other.Args...)
	return Command{Args: args}
}

// GetSubstitutedArgs substitutes every token and returns the flattened
// ordered argument list.
func (c Command) GetSubstitutedArgs(vars map[string]string) ([]string, error) {
	out := make([]string, 0, len(c.Args))
	for _, arg := range c.Args {
		s, err := arg.Substitute(vars)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// CustomCommand builds the launch command for the custom framework: the
// generic prefix followed by the user's shell command split on
// whitespace. The command string is required.
func CustomCommand(custom string) (Command, error) {
	fields := strings.Fields(custom)
	if len(fields) == 0 {
		return Command{}, errors.ErrValidation("custom_command is required for the custom framework", nil)
	}

	args := make([]Arg, 0, len(genericArgs)+len(fields))
	args = append(args, genericArgs...)
	for _, f := range fields {
		args = append(args, Lit(f))
	}
	return Command{Args: args}, nil
}
