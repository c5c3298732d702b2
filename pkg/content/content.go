// Package content resolves the typed content templates of a compiled game
// definition into concrete displayable trees. A template carries a content
// tree plus an ordered list of state dependencies (inserts and predicates);
// resolution evaluates the dependencies once, left to right, then merges the
// results into the tree.
//
// The package evaluates scripted units through the Evaluator interface
// rather than importing the engine, the same way conditional evaluation is
// decoupled elsewhere in this module.
package content

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jwebster45206/narrative-engine/pkg/script"
)

// Node is one typed content element. Content holds child items, each a
// string or *Node. Conditional nodes reference a predicate dependency by
// index; insert nodes reference an insert dependency by index.
type Node struct {
	Type      string `json:"type"`
	Content   []any  `json:"content,omitempty"`
	Predicate int    `json:"predicate,omitempty"`
	Insert    int    `json:"insert,omitempty"`
}

// Node types understood by the resolver. Any other type passes through with
// its children resolved.
const (
	TypeParagraph   = "paragraph"
	TypeHeading     = "heading"
	TypeQuotation   = "quotation"
	TypeAttribution = "attribution"
	TypeEmphasis1   = "emphasis-1"
	TypeEmphasis2   = "emphasis-2"
	TypeLineBreak   = "line-break"
	TypeMagic       = "magic"
	TypeHidden      = "hidden"
	TypeConditional = "conditional"
	TypeInsert      = "insert"
)

// StateDependency is one evaluation the template needs before its tree can
// be merged: an expression insert (optionally formatted through a named
// display transform) or a boolean predicate.
type StateDependency struct {
	Type     string       `json:"type"` // "insert" or "predicate"
	Fn       *script.Unit `json:"fn"`
	QDisplay string       `json:"qdisplay,omitempty"`
}

// Template is a content field of a scene or option: a bare string, an
// already-typed node list, or a tree with state dependencies.
type Template struct {
	Content []any
	Deps    []StateDependency

	// bare marks a template that was a single untyped value, which gets
	// paragraph-wrapped when resolved as top-level scene content.
	bare bool
}

// NewTemplate wraps a plain string as a template. Useful for tests and
// synthesized content.
func NewTemplate(text string) *Template {
	return &Template{Content: []any{text}, bare: true}
}

// UnmarshalJSON accepts the three authored forms: a bare string, an array of
// items, or an object ({type,...} single node, or {content,
// stateDependencies} wrapper).
func (t *Template) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Content = []any{s}
		t.bare = true
		return nil
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err == nil {
		items, err := decodeItems(arr)
		if err != nil {
			return err
		}
		t.Content = items
		return nil
	}

	var obj struct {
		Type              string            `json:"type"`
		Content           json.RawMessage   `json:"content"`
		StateDependencies []StateDependency `json:"stateDependencies"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("content template: %w", err)
	}

	if obj.Type != "" && obj.StateDependencies == nil {
		var n Node
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		t.Content = []any{&n}
		return nil
	}

	items, err := decodeItem(obj.Content)
	if err != nil {
		return err
	}
	t.Content = items
	t.Deps = obj.StateDependencies
	return nil
}

// MarshalJSON writes the wrapper form back out.
func (t Template) MarshalJSON() ([]byte, error) {
	if len(t.Deps) == 0 && t.bare && len(t.Content) == 1 {
		return json.Marshal(t.Content[0])
	}
	if len(t.Deps) == 0 {
		return json.Marshal(t.Content)
	}
	return json.Marshal(map[string]any{
		"content":           t.Content,
		"stateDependencies": t.Deps,
	})
}

// UnmarshalJSON decodes a node object, normalizing its content to a slice.
func (n *Node) UnmarshalJSON(data []byte) error {
	var obj struct {
		Type      string          `json:"type"`
		Content   json.RawMessage `json:"content"`
		Predicate int             `json:"predicate"`
		Insert    int             `json:"insert"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	items, err := decodeItem(obj.Content)
	if err != nil {
		return err
	}
	n.Type = obj.Type
	n.Content = items
	n.Predicate = obj.Predicate
	n.Insert = obj.Insert
	return nil
}

func decodeItems(raw []json.RawMessage) ([]any, error) {
	items := make([]any, 0, len(raw))
	for _, r := range raw {
		decoded, err := decodeItem(r)
		if err != nil {
			return nil, err
		}
		items = append(items, decoded...)
	}
	return items, nil
}

// decodeItem decodes a single content value into zero or more items.
func decodeItem(raw json.RawMessage) ([]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch raw[0] {
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, err
		}
		return decodeItems(arr)
	case '{':
		var n Node
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return []any{&n}, nil
	default:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return []any{v}, nil
	}
}

// Evaluator supplies scripted-unit evaluation and display-value formatting.
// The engine implements it.
type Evaluator interface {
	// RunPredicate evaluates p, returning def if p is nil or fails.
	RunPredicate(p *script.Unit, def bool) bool
	// RunExpression evaluates e, returning def if e is nil or fails.
	RunExpression(e *script.Unit, def any) any
	// QDisplay formats a value through a named display transform.
	QDisplay(value any, id string) string
}

// Resolve materializes a template into displayable items. When
// wrapParagraphs is set, a bare untyped value is wrapped in a paragraph node
// (scene content); inline text such as titles is resolved with it unset.
// Templates with no dependencies resolve to their content unchanged.
func Resolve(t *Template, ev Evaluator, wrapParagraphs bool) []any {
	if t == nil {
		return nil
	}
	if len(t.Deps) == 0 {
		if t.bare && wrapParagraphs {
			return []any{&Node{Type: TypeParagraph, Content: t.Content}}
		}
		return t.Content
	}
	return mergeArray(t.Content, evaluateDeps(t.Deps, ev))
}

// evaluateDeps produces the positional result list, one entry per
// dependency. A result that is itself a template is resolved recursively
// before taking its position.
func evaluateDeps(deps []StateDependency, ev Evaluator) []any {
	evals := make([]any, 0, len(deps))
	for _, dep := range deps {
		var value any
		switch dep.Type {
		case "insert":
			v := ev.RunExpression(dep.Fn, nil)
			if nested, ok := v.(*Template); ok {
				value = mergeNested(nested, ev)
			} else if dep.QDisplay != "" {
				value = ev.QDisplay(v, dep.QDisplay)
			} else {
				value = formatValue(v)
			}
		default: // predicate
			value = ev.RunPredicate(dep.Fn, false)
		}
		evals = append(evals, value)
	}
	return evals
}

func mergeNested(t *Template, ev Evaluator) []any {
	return Resolve(t, ev, false)
}

func mergeArray(items []any, evals []any) []any {
	var out []any
	for _, item := range items {
		out = append(out, mergeOne(item, evals)...)
	}
	return out
}

func mergeOne(item any, evals []any) []any {
	n, ok := item.(*Node)
	if !ok {
		return []any{item}
	}
	switch n.Type {
	case TypeConditional:
		if predicateResult(evals, n.Predicate) {
			return mergeArray(n.Content, evals)
		}
		return nil
	case TypeInsert:
		if n.Insert < 0 || n.Insert >= len(evals) {
			return nil
		}
		if arr, ok := evals[n.Insert].([]any); ok {
			return arr
		}
		return []any{evals[n.Insert]}
	default:
		return []any{&Node{Type: n.Type, Content: mergeArray(n.Content, evals)}}
	}
}

func predicateResult(evals []any, index int) bool {
	if index < 0 || index >= len(evals) {
		return false
	}
	b, ok := evals[index].(bool)
	return ok && b
}

func formatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
