package ast

import "strings"

// Attribute is an item annotation such as `inline` or `inline(always)`.
type Attribute struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
}

// ParseAttribute parses the compact form used by documents: "inline",
// "inline(always)", "doc(hidden, x)".
func ParseAttribute(s string) Attribute {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Attribute{Name: s}
	}
	attr := Attribute{Name: strings.TrimSpace(s[:open])}
	for _, arg := range strings.Split(s[open+1:len(s)-1], ",") {
		if arg = strings.TrimSpace(arg); arg != "" {
			attr.Args = append(attr.Args, arg)
		}
	}
	return attr
}

func (a Attribute) String() string {
	if len(a.Args) == 0 {
		return a.Name
	}
	return a.Name + "(" + strings.Join(a.Args, ", ") + ")"
}

// InlineAttr is the inlining directive carried by a function-like item.
type InlineAttr uint8

const (
	InlineNone InlineAttr = iota
	InlineHint
	InlineAlways
	InlineNever
)

func (i InlineAttr) String() string {
	switch i {
	case InlineHint:
		return "inline"
	case InlineAlways:
		return "inline(always)"
	case InlineNever:
		return "inline(never)"
	default:
		return "none"
	}
}

// FindInline returns the last inline directive among attrs.
func FindInline(attrs []Attribute) InlineAttr {
	ia := InlineNone
	for _, a := range attrs {
		if a.Name != "inline" {
			continue
		}
		switch {
		case len(a.Args) == 0:
			ia = InlineHint
		case a.Args[0] == "always":
			ia = InlineAlways
		case a.Args[0] == "never":
			ia = InlineNever
		default:
			ia = InlineHint
		}
	}
	return ia
}

// HasInline reports whether attrs carry any inlining directive, inline(never)
// included.
func HasInline(attrs []Attribute) bool {
	return FindInline(attrs) != InlineNone
}
