package interp

import (
	"fmt"
	"strings"

	"github.com/thought-machine/rcore/src/value"
)

const unassigned = -2

// matchArgs matches supplied arguments to formals: first by exact name, then by unique
// partial name for the formals before "...", then by position. Whatever is left goes to
// "..." if there is one, and is an error otherwise.
// It returns the argument matched to each formal (nil if none), the arguments matched to
// "...", and for each supplied argument the index of the formal it went to (-1 for "...").
func (i *Interpreter) matchArgs(call *value.Language, formals []string, args []value.Arg) ([]value.Value, []value.Arg, []int) {
	matched := make([]value.Value, len(formals))
	assigned := make([]int, len(args))
	exact := make([]bool, len(formals))
	used := make([]bool, len(formals))
	dotsAt := -1
	for k, f := range formals {
		if f == "..." {
			dotsAt = k
			break
		}
	}
	for j, a := range args {
		assigned[j] = unassigned
		if a.Name == "" {
			continue
		}
		for k, f := range formals {
			if f == a.Name && k != dotsAt {
				if used[k] {
					i.raise(newError(ArgumentError, call, fmt.Sprintf("formal argument \"%s\" matched by multiple actual arguments", f)))
				}
				matched[k] = a.Value
				used[k] = true
				exact[k] = true
				assigned[j] = k
				break
			}
		}
	}
	for j, a := range args {
		if a.Name == "" || assigned[j] != unassigned {
			continue
		}
		found := -1
		for k, f := range formals {
			if k == dotsAt {
				break
			} else if exact[k] || !strings.HasPrefix(f, a.Name) {
				continue
			} else if found >= 0 {
				i.raise(newError(ArgumentError, call, fmt.Sprintf("argument %d matches multiple formal arguments", j+1)))
			}
			found = k
		}
		if found >= 0 {
			if used[found] {
				i.raise(newError(ArgumentError, call, fmt.Sprintf("formal argument \"%s\" matched by multiple actual arguments", formals[found])))
			}
			matched[found] = a.Value
			used[found] = true
			assigned[j] = found
		}
	}
	k := 0
	for j, a := range args {
		if a.Name != "" || assigned[j] != unassigned {
			continue
		}
		for k < len(formals) && k != dotsAt && used[k] {
			k++
		}
		if k >= len(formals) || k == dotsAt {
			break
		}
		matched[k] = a.Value
		used[k] = true
		assigned[j] = k
		k++
	}
	var dots, unused []value.Arg
	for j, a := range args {
		if assigned[j] != unassigned {
			continue
		} else if dotsAt >= 0 {
			dots = append(dots, a)
			assigned[j] = -1
		} else {
			unused = append(unused, a)
		}
	}
	if len(unused) == 1 {
		i.raise(newError(ArgumentError, call, "unused argument ("+deparseArgs(unused)+")"))
	} else if len(unused) > 1 {
		i.raise(newError(ArgumentError, call, "unused arguments ("+deparseArgs(unused)+")"))
	}
	return matched, dots, assigned
}

// deparseArgs deparses arguments for an error message.
func deparseArgs(args []value.Arg) string {
	parts := make([]string, len(args))
	for k, a := range args {
		v := a.Value
		if p, ok := v.(*value.Promise); ok {
			v = p.Expr
		}
		if a.Name != "" {
			parts[k] = value.QuoteName(a.Name) + " = " + deparseCall(v)
		} else {
			parts[k] = deparseCall(v)
		}
	}
	return strings.Join(parts, ", ")
}

// formalNames returns the names of a closure's formal arguments.
func formalNames(fn *value.Closure) []string {
	names := make([]string, len(fn.Formals))
	for k, f := range fn.Formals {
		names[k] = f.Name
	}
	return names
}
