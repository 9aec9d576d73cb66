// Package command reads gatorlibrary command files and runs them against a
// catalog, writing a plain-text report of every command's result.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is returned for lines that are not Name(arg, ...).
var ErrSyntax = errors.New("malformed command")

// Command is one parsed line. Quoted arguments have their quotes removed.
type Command struct {
	Name string
	Args []string
	Line int
}

// Parse splits a line like `InsertBook(3, "Title, Vol 1", "Author", "Yes")`
// into its name and arguments. Commas inside double quotes do not split.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	open := strings.IndexByte(line, '(')
	if open <= 0 || !strings.HasSuffix(line, ")") {
		return Command{}, fmt.Errorf("%w: %q", ErrSyntax, line)
	}
	name := strings.TrimSpace(line[:open])
	args, err := splitArgs(line[open+1 : len(line)-1])
	if err != nil {
		return Command{}, fmt.Errorf("%w: %q: %v", ErrSyntax, line, err)
	}
	return Command{Name: name, Args: args}, nil
}

func splitArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var args []string
	for {
		s = strings.TrimLeft(s, " \t")
		var arg string
		if strings.HasPrefix(s, `"`) {
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				return nil, errors.New("unterminated string")
			}
			arg = s[1 : 1+end]
			s = strings.TrimLeft(s[end+2:], " \t")
			if s != "" && s[0] != ',' {
				return nil, errors.New("text after closing quote")
			}
		} else {
			end := strings.IndexByte(s, ',')
			if end < 0 {
				end = len(s)
			}
			arg = strings.TrimSpace(s[:end])
			if arg == "" {
				return nil, errors.New("empty argument")
			}
			if strings.ContainsRune(arg, '"') {
				return nil, errors.New("quote inside bare argument")
			}
			s = s[end:]
		}
		args = append(args, arg)
		if s == "" {
			return args, nil
		}
		s = s[1:] // comma
		if strings.TrimSpace(s) == "" {
			return nil, errors.New("trailing comma")
		}
	}
}

func (c Command) arity(n int) error {
	if len(c.Args) != n {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", ErrSyntax, c.Name, n, len(c.Args))
	}
	return nil
}

func (c Command) intArg(i int) (int, error) {
	v, err := strconv.Atoi(c.Args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %s argument %d: %v", ErrSyntax, c.Name, i+1, err)
	}
	return v, nil
}

// ints checks arity and converts every argument.
func (c Command) ints(n int) ([]int, error) {
	if err := c.arity(n); err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i := range out {
		v, err := c.intArg(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
