// Package document reads serialized compilation units: an item tree already
// numbered and resolved, plus the export, binding and method tables that the
// reachability pass consumes.
//
// Documents are YAML or JSON. Table keys are node ids written as strings.
// A minimal document:
//
//	name: demo
//	items:
//	  - {id: 1, kind: fn, name: main}
//	exports:
//	  "0": [{name: main, node: 1}]
package document

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/panbanda/reachable/pkg/ast"
)

// Format is a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DetectFormat picks a format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported document extension %q", filepath.Ext(path))
	}
}

// Hash returns the hex-encoded blake3 digest of a document's bytes.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Document is the decoded form of a compilation unit.
type Document struct {
	Name    string                  `json:"name,omitempty"`
	File    string                  `json:"file,omitempty"`
	Items   []*ItemNode             `json:"items"`
	Exports map[string][]ExportNode `json:"exports,omitempty"`
	Defs    map[string]DefNode      `json:"defs,omitempty"`
	Methods map[string]OriginNode   `json:"methods,omitempty"`
}

// ExportNode is one export list entry.
type ExportNode struct {
	Name     string `json:"name,omitempty"`
	Crate    uint32 `json:"crate,omitempty"`
	Node     uint32 `json:"node"`
	Reexport bool   `json:"reexport,omitempty"`
}

// DefNode is a binding. Prim is set for kind prim_ty only.
type DefNode struct {
	Kind  string `json:"kind"`
	Crate uint32 `json:"crate,omitempty"`
	Node  uint32 `json:"node,omitempty"`
	Prim  string `json:"prim,omitempty"`
}

// OriginNode is a method origin.
type OriginNode struct {
	Origin string `json:"origin"`
	Crate  uint32 `json:"crate,omitempty"`
	Node   uint32 `json:"node,omitempty"`
}

// ItemNode is an item. Which fields apply depends on Kind.
type ItemNode struct {
	ID       uint32         `json:"id"`
	Kind     string         `json:"kind"`
	Name     string         `json:"name,omitempty"`
	Attrs    []string       `json:"attrs,omitempty"`
	Generics []string       `json:"generics,omitempty"`
	Span     *ast.Span      `json:"span,omitempty"`
	Items    []*ItemNode    `json:"items,omitempty"`
	ABI      string         `json:"abi,omitempty"`
	Foreign  []*ForeignNode `json:"foreign,omitempty"`
	Inputs   []*ParamNode   `json:"inputs,omitempty"`
	Output   *TyNode        `json:"output,omitempty"`
	Body     *BlockNode     `json:"body,omitempty"`
	Trait    string         `json:"trait,omitempty"`
	Self     *TyNode        `json:"self,omitempty"`
	Methods  []*MethodNode  `json:"methods,omitempty"`
	Fields   []*FieldNode   `json:"fields,omitempty"`
	Dtor     *DtorNode      `json:"dtor,omitempty"`
	Ty       *TyNode        `json:"ty,omitempty"`
	Expr     *ExprNode      `json:"expr,omitempty"`
	Variants []*VariantNode `json:"variants,omitempty"`
	Path     string         `json:"path,omitempty"`
	Tokens   string         `json:"tokens,omitempty"`
}

// ForeignNode is a declaration of a foreign module.
type ForeignNode struct {
	ID       uint32       `json:"id"`
	Kind     string       `json:"kind"`
	Name     string       `json:"name,omitempty"`
	Attrs    []string     `json:"attrs,omitempty"`
	Generics []string     `json:"generics,omitempty"`
	Inputs   []*ParamNode `json:"inputs,omitempty"`
	Output   *TyNode      `json:"output,omitempty"`
	Ty       *TyNode      `json:"ty,omitempty"`
	Mutable  bool         `json:"mutable,omitempty"`
	Span     *ast.Span    `json:"span,omitempty"`
}

// MethodNode is an impl, struct or trait method.
type MethodNode struct {
	ID       uint32       `json:"id"`
	Name     string       `json:"name"`
	Attrs    []string     `json:"attrs,omitempty"`
	Generics []string     `json:"generics,omitempty"`
	Inputs   []*ParamNode `json:"inputs,omitempty"`
	Output   *TyNode      `json:"output,omitempty"`
	Body     *BlockNode   `json:"body,omitempty"`
	Span     *ast.Span    `json:"span,omitempty"`
}

// DtorNode is a destructor.
type DtorNode struct {
	ID    uint32     `json:"id"`
	Attrs []string   `json:"attrs,omitempty"`
	Body  *BlockNode `json:"body,omitempty"`
	Span  *ast.Span  `json:"span,omitempty"`
}

// FieldNode is a struct field.
type FieldNode struct {
	ID   uint32  `json:"id,omitempty"`
	Name string  `json:"name"`
	Ty   *TyNode `json:"ty,omitempty"`
}

// VariantNode is an enum variant.
type VariantNode struct {
	ID   uint32    `json:"id"`
	Name string    `json:"name"`
	Args []*TyNode `json:"args,omitempty"`
	Disr *ExprNode `json:"disr,omitempty"`
	Span *ast.Span `json:"span,omitempty"`
}

// ParamNode is a function parameter.
type ParamNode struct {
	ID   uint32  `json:"id,omitempty"`
	Name string  `json:"name,omitempty"`
	Ty   *TyNode `json:"ty,omitempty"`
}

// TyNode is a type expression. Ref defaults to the node's own id.
type TyNode struct {
	ID      uint32    `json:"id"`
	Kind    string    `json:"kind"`
	Path    string    `json:"path,omitempty"`
	Types   []*TyNode `json:"types,omitempty"`
	Ref     *uint32   `json:"ref,omitempty"`
	Elem    *TyNode   `json:"elem,omitempty"`
	Mutable bool      `json:"mutable,omitempty"`
	Len     uint64    `json:"len,omitempty"`
	Elems   []*TyNode `json:"elems,omitempty"`
	Inputs  []*TyNode `json:"inputs,omitempty"`
	Output  *TyNode   `json:"output,omitempty"`
	Span    *ast.Span `json:"span,omitempty"`
}

// BlockNode is a block.
type BlockNode struct {
	ID    uint32      `json:"id,omitempty"`
	Stmts []*StmtNode `json:"stmts,omitempty"`
	Expr  *ExprNode   `json:"expr,omitempty"`
	Span  *ast.Span   `json:"span,omitempty"`
}

// StmtNode is a statement: let, item, expr (no semicolon) or semi.
type StmtNode struct {
	ID   uint32    `json:"id,omitempty"`
	Kind string    `json:"kind"`
	Pat  *PatNode  `json:"pat,omitempty"`
	Ty   *TyNode   `json:"ty,omitempty"`
	Init *ExprNode `json:"init,omitempty"`
	Item *ItemNode `json:"item,omitempty"`
	Expr *ExprNode `json:"expr,omitempty"`
	Span *ast.Span `json:"span,omitempty"`
}

// ExprNode is an expression. Which fields apply depends on Kind.
type ExprNode struct {
	ID        uint32           `json:"id"`
	Kind      string           `json:"kind"`
	Path      string           `json:"path,omitempty"`
	Types     []*TyNode        `json:"types,omitempty"`
	Receiver  *ExprNode        `json:"receiver,omitempty"`
	Field     string           `json:"field,omitempty"`
	Callee    *ExprNode        `json:"callee,omitempty"`
	Args      []*ExprNode      `json:"args,omitempty"`
	Lit       string           `json:"lit,omitempty"`
	Value     string           `json:"value,omitempty"`
	Op        string           `json:"op,omitempty"`
	Operand   *ExprNode        `json:"operand,omitempty"`
	Lhs       *ExprNode        `json:"lhs,omitempty"`
	Rhs       *ExprNode        `json:"rhs,omitempty"`
	Expr      *ExprNode        `json:"expr,omitempty"`
	Ty        *TyNode          `json:"ty,omitempty"`
	Cond      *ExprNode        `json:"cond,omitempty"`
	Then      *BlockNode       `json:"then,omitempty"`
	Else      *ExprNode        `json:"else,omitempty"`
	Body      *BlockNode       `json:"body,omitempty"`
	Scrutinee *ExprNode        `json:"scrutinee,omitempty"`
	Arms      []*ArmNode       `json:"arms,omitempty"`
	Block     *BlockNode       `json:"block,omitempty"`
	Inputs    []*ParamNode     `json:"inputs,omitempty"`
	Elems     []*ExprNode      `json:"elems,omitempty"`
	Base      *ExprNode        `json:"base,omitempty"`
	Index     *ExprNode        `json:"index,omitempty"`
	Fields    []*FieldInitNode `json:"fields,omitempty"`
	Mutable   bool             `json:"mutable,omitempty"`
	Span      *ast.Span        `json:"span,omitempty"`
}

// ArmNode is a match arm.
type ArmNode struct {
	Pats  []*PatNode `json:"pats,omitempty"`
	Guard *ExprNode  `json:"guard,omitempty"`
	Body  *BlockNode `json:"body,omitempty"`
}

// FieldInitNode is one field of a struct literal.
type FieldInitNode struct {
	Name string    `json:"name"`
	Expr *ExprNode `json:"expr,omitempty"`
}

// PatNode is a pattern.
type PatNode struct {
	ID    uint32     `json:"id,omitempty"`
	Kind  string     `json:"kind"`
	Name  string     `json:"name,omitempty"`
	Sub   *PatNode   `json:"sub,omitempty"`
	Expr  *ExprNode  `json:"expr,omitempty"`
	Lo    *ExprNode  `json:"lo,omitempty"`
	Hi    *ExprNode  `json:"hi,omitempty"`
	Path  string     `json:"path,omitempty"`
	Args  []*PatNode `json:"args,omitempty"`
	Elems []*PatNode `json:"elems,omitempty"`
	Span  *ast.Span  `json:"span,omitempty"`
}

type decodeConfig struct {
	validate bool
	maxSize  int64
}

// Option configures decoding.
type Option func(*decodeConfig)

// WithSchemaValidation enables or disables checking documents against the
// embedded JSON schema. Enabled by default.
func WithSchemaValidation(enabled bool) Option {
	return func(c *decodeConfig) {
		c.validate = enabled
	}
}

// WithMaxSize rejects files larger than n bytes. Zero means no limit.
func WithMaxSize(n int64) Option {
	return func(c *decodeConfig) {
		if n >= 0 {
			c.maxSize = n
		}
	}
}

func newDecodeConfig(opts []Option) decodeConfig {
	cfg := decodeConfig{validate: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Decode parses a document. YAML and JSON both go through the YAML decoder,
// then through the schema, then into Document.
func Decode(data []byte, format Format, opts ...Option) (*Document, error) {
	cfg := newDecodeConfig(opts)
	if format != FormatYAML && format != FormatJSON {
		return nil, fmt.Errorf("unsupported document format %q", format)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s document: %w", format, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("empty document")
	}
	normalized, err := json.Marshal(normalize(raw))
	if err != nil {
		return nil, fmt.Errorf("normalize document: %w", err)
	}

	if cfg.validate {
		if err := validate(normalized); err != nil {
			return nil, err
		}
	}

	dec := json.NewDecoder(bytes.NewReader(normalized))
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// Load reads and decodes the document at path. Spans without a file name
// are attributed to path.
func Load(path string, opts ...Option) (*Document, []byte, error) {
	cfg := newDecodeConfig(opts)
	format, err := DetectFormat(path)
	if err != nil {
		return nil, nil, err
	}
	if cfg.maxSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, nil, err
		}
		if info.Size() > cfg.maxSize {
			return nil, nil, fmt.Errorf("%s: document is %d bytes, limit is %d", path, info.Size(), cfg.maxSize)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := Decode(data, format, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.File == "" {
		doc.File = path
	}
	return doc, data, nil
}

// normalize converts YAML-only mapping key types to strings so the value
// can be encoded as JSON.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, val := range v {
			v[k] = normalize(val)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range v {
			v[i] = normalize(val)
		}
		return v
	default:
		return v
	}
}
