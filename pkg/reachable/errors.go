package reachable

import (
	"errors"
	"fmt"

	"github.com/panbanda/reachable/pkg/ast"
)

// Sentinel errors. Internal inconsistencies are reported as *Error and match
// these with errors.Is.
var (
	ErrUnboundPath     = errors.New("unbound path")
	ErrUnexpandedMacro = errors.New("unexpanded macro invocation")
	ErrInvalidInput    = errors.New("invalid input")
)

// ErrorCode classifies an internal inconsistency.
type ErrorCode string

const (
	CodeUnboundPath     ErrorCode = "unbound-path"
	CodeUnexpandedMacro ErrorCode = "unexpanded-macro"
)

// Error is an internal inconsistency found during traversal: the inputs
// violate a guarantee of an earlier pass and no result is produced.
type Error struct {
	Code      ErrorCode
	Node      ast.NodeID
	Span      ast.Span
	Construct string
}

func (e *Error) Error() string {
	if e.Code == CodeUnexpandedMacro {
		return fmt.Sprintf("%s: internal error: unexpanded macro at node id %d: %s", e.Span, e.Node, e.Construct)
	}
	return fmt.Sprintf("%s: internal error: unbound node id %d while traversing %s", e.Span, e.Node, e.Construct)
}

// Is matches the sentinel for the error's code.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case CodeUnboundPath:
		return target == ErrUnboundPath
	case CodeUnexpandedMacro:
		return target == ErrUnexpandedMacro
	}
	return false
}

func unboundPath(e *ast.Expr) error {
	return &Error{Code: CodeUnboundPath, Node: e.ID, Span: e.Span, Construct: ast.ExprString(e)}
}

func unexpandedMacro(it *ast.Item) error {
	construct := "macro invocation"
	if mac, ok := it.Kind.(*ast.MacroInvocation); ok && mac.Path != nil {
		construct = ast.PathString(mac.Path) + "!"
	}
	return &Error{Code: CodeUnexpandedMacro, Node: it.ID, Span: it.Span, Construct: construct}
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
