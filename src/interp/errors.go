package interp

import (
	"fmt"
	"strings"

	"github.com/thought-machine/rcore/src/value"
)

// An ErrorKind classifies errors raised during evaluation.
type ErrorKind int

// The kinds of error. The message text is advisory; the kind is what callers should match on.
const (
	InternalError ErrorKind = iota
	ArgumentError
	TypeError
	DomainError
	NotFoundError
	UserError
	ConvertedWarning
)

var errorKindNames = [...]string{
	InternalError:    "internal error",
	ArgumentError:    "argument error",
	TypeError:        "type error",
	DomainError:      "domain error",
	NotFoundError:    "not found",
	UserError:        "user error",
	ConvertedWarning: "converted warning",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Sentinel errors for use with errors.Is; they match any Error of the same kind.
var (
	ErrArgument         = &Error{Kind: ArgumentError}
	ErrType             = &Error{Kind: TypeError}
	ErrDomain           = &Error{Kind: DomainError}
	ErrNotFound         = &Error{Kind: NotFoundError}
	ErrUser             = &Error{Kind: UserError}
	ErrConvertedWarning = &Error{Kind: ConvertedWarning}
)

// An Error is an R error condition that unwound to the evaluation boundary.
type Error struct {
	Kind    ErrorKind
	Message string
	// Call is the call the error was raised in, or nil if there isn't one.
	Call value.Value
	// Condition is the R condition object that handlers saw.
	Condition value.Value
	// Traceback holds the calls that were active when the error happened, innermost first.
	Traceback []string
	// Suggestion is an optional hint, e.g. names close to one that wasn't found.
	Suggestion string
}

// Error implements the builtin error interface.
func (err *Error) Error() string {
	msg := err.header()
	if len(err.Traceback) > 1 {
		msg += "\n" + err.traceback()
	}
	return msg
}

// ShortError returns just the message, without the call or traceback.
func (err *Error) ShortError() string {
	return err.Message
}

// Is makes errors.Is match errors of the same kind against the sentinels above.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == err.Kind
}

// header formats the first part of the error the way R prints it.
func (err *Error) header() string {
	if err.Call == nil || value.IsNull(err.Call) {
		return "Error: " + err.Message
	}
	call := deparseCall(err.Call)
	if len(call)+len(err.Message) > 70 || strings.Contains(err.Message, "\n") {
		return "Error in " + call + " : \n  " + err.Message
	}
	return "Error in " + call + " : " + err.Message
}

func (err *Error) traceback() string {
	var b strings.Builder
	b.WriteString("Traceback:\n")
	for i, call := range err.Traceback {
		fmt.Fprintf(&b, "%d: %s\n", len(err.Traceback)-i, call)
	}
	return strings.TrimRight(b.String(), "\n")
}

// deparseCall returns the first line of a deparsed call, as used in messages.
func deparseCall(call value.Value) string {
	lines := value.DeparseLines(call)
	if len(lines) > 1 {
		return lines[0] + " ..."
	}
	return lines[0]
}

// makeCondition builds a condition object: a list of message and call with the given classes.
func makeCondition(msg string, call value.Value, classes ...string) *value.List {
	if call == nil {
		call = value.Null
	}
	cond := value.ListOf(value.Str(msg), call)
	mustSetAttr(cond, "names", value.CharacterOf("message", "call"))
	mustSetAttr(cond, "class", value.CharacterOf(classes...))
	return cond
}

func mustSetAttr(v value.Value, name string, val value.Value) {
	if err := value.SetAttr(v, name, val); err != nil {
		panic(err)
	}
}

// conditionMessage returns the message field of a condition object.
func conditionMessage(cond value.Value) string {
	if l, ok := cond.(*value.List); ok {
		names := value.Names(l)
		for i := 0; i < l.Len(); i++ {
			if names != nil && names.At(i) == "message" {
				if s, ok := l.At(i).(*value.Character); ok && s.Len() > 0 {
					return s.At(0)
				}
			}
		}
	}
	return ""
}

// conditionCall returns the call field of a condition object, or nil.
func conditionCall(cond value.Value) value.Value {
	if l, ok := cond.(*value.List); ok {
		names := value.Names(l)
		for i := 0; i < l.Len(); i++ {
			if names != nil && names.At(i) == "call" && !value.IsNull(l.At(i)) {
				return l.At(i)
			}
		}
	}
	return nil
}

// kindOf guesses the error kind of a condition raised from R code by its classes.
func kindOf(cond value.Value) ErrorKind {
	switch {
	case value.Inherits(cond, "argumentError") >= 0:
		return ArgumentError
	case value.Inherits(cond, "typeError") >= 0:
		return TypeError
	case value.Inherits(cond, "domainError") >= 0:
		return DomainError
	case value.Inherits(cond, "notFoundError") >= 0:
		return NotFoundError
	}
	return UserError
}

// errorClasses are the condition classes given to errors raised natively, by kind.
var errorClasses = map[ErrorKind][]string{
	ArgumentError:    {"argumentError", "simpleError", "error", "condition"},
	TypeError:        {"typeError", "simpleError", "error", "condition"},
	DomainError:      {"domainError", "simpleError", "error", "condition"},
	NotFoundError:    {"notFoundError", "simpleError", "error", "condition"},
	UserError:        {"simpleError", "error", "condition"},
	ConvertedWarning: {"simpleError", "error", "condition"},
	InternalError:    {"simpleError", "error", "condition"},
}

func newError(kind ErrorKind, call value.Value, msg string) *Error {
	return &Error{
		Kind:      kind,
		Message:   msg,
		Call:      call,
		Condition: makeCondition(msg, call, errorClasses[kind]...),
	}
}
