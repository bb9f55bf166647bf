package settings

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/arthur-debert/branchtint/pkg/internal/jsonutil"
	"github.com/tailscale/hujson"
)

// defaultIndent is used when the document has no indented member to copy
const defaultIndent = "    "

// editor applies a new value to a member of a parsed document while keeping
// every byte it does not need to change. Members are merged recursively:
// unchanged values keep their text, new members are appended using the
// spacing of their siblings and removed members are cut out with their
// leading comments.
type editor struct {
	doc     *hujson.Value
	indent  string
	removed []string
	emptied []*hujson.Object
}

func newEditor(doc *hujson.Value) *editor {
	return &editor{doc: doc, indent: detectIndent(doc)}
}

// set replaces the top-level member name with value; nil removes it
func (e *editor) set(name string, value any) error {
	root := e.doc.Value.(*hujson.Object)
	pointer := "/" + escapePointer(name)

	idx := memberIndex(root, name)
	switch {
	case value == nil && idx < 0:
		return nil
	case value == nil:
		e.removed = append(e.removed, pointer)
	case idx >= 0:
		if err := e.merge(&root.Members[idx].Value, value, pointer, 1); err != nil {
			return err
		}
	case len(root.Members) == 0:
		if err := e.replace(e.doc, map[string]any{name: value}, 0); err != nil {
			return err
		}
	default:
		if err := e.add(root, name, value, 0); err != nil {
			return err
		}
	}
	return e.flush()
}

// merge brings dst to want. depth is the nesting level of dst.
func (e *editor) merge(dst *hujson.Value, want any, pointer string, depth int) error {
	obj, isObject := dst.Value.(*hujson.Object)
	wantMap, wantObject := want.(map[string]any)
	if isObject && wantObject && (len(obj.Members) > 0 || len(wantMap) == 0) {
		return e.mergeObject(obj, wantMap, pointer, depth)
	}
	if current, err := decodeValue(*dst); err == nil && jsonutil.Equal(current, want) {
		return nil
	}
	return e.replace(dst, want, depth)
}

func (e *editor) mergeObject(obj *hujson.Object, want map[string]any, pointer string, depth int) error {
	seen := make(map[string]bool, len(obj.Members))
	removed := 0
	// Appending to obj.Members below must not be observed by this loop.
	members := len(obj.Members)
	for i := 0; i < members; i++ {
		name := obj.Members[i].Name.Value.(hujson.Literal).String()
		seen[name] = true
		child := pointer + "/" + escapePointer(name)
		w, ok := want[name]
		if !ok {
			e.removed = append(e.removed, child)
			removed++
			continue
		}
		if err := e.merge(&obj.Members[i].Value, w, child, depth+1); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(want))
	for name := range want {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if err := e.add(obj, name, want[name], depth); err != nil {
			return err
		}
	}

	if members > 0 && removed == members && len(names) == 0 {
		e.emptied = append(e.emptied, obj)
	}
	return nil
}

// add appends member name to obj, copying the spacing of the last member
func (e *editor) add(obj *hujson.Object, name string, value any, depth int) error {
	v, err := e.encode(value, depth+1)
	if err != nil {
		return err
	}

	lead := []byte("\n" + strings.Repeat(e.indent, depth+1))
	colon := []byte(" ")
	var trailing hujson.Extra
	if n := len(obj.Members); n > 0 {
		last := obj.Members[n-1]
		if l, ok := memberLead(last.Name.BeforeExtra); ok {
			lead = l
		}
		if isBlank(last.Value.BeforeExtra) {
			colon = append([]byte(nil), last.Value.BeforeExtra...)
		}
		if last.Value.AfterExtra != nil {
			trailing = hujson.Extra{}
		}
	}

	obj.Members = append(obj.Members, hujson.ObjectMember{
		Name:  hujson.Value{BeforeExtra: lead, Value: hujson.String(name)},
		Value: hujson.Value{BeforeExtra: colon, Value: v.Value, AfterExtra: trailing},
	})
	return nil
}

// replace swaps the value of dst for a freshly formatted one, keeping the
// comments and whitespace around it
func (e *editor) replace(dst *hujson.Value, value any, depth int) error {
	v, err := e.encode(value, depth)
	if err != nil {
		return err
	}
	dst.Value = v.Value
	return nil
}

// flush applies the collected removals and collapses objects that lost
// every member
func (e *editor) flush() error {
	if len(e.removed) > 0 {
		ops := make([]map[string]any, 0, len(e.removed))
		for _, p := range e.removed {
			ops = append(ops, map[string]any{"op": "remove", "path": p})
		}
		patch, err := json.Marshal(ops)
		if err != nil {
			return err
		}
		if err := e.doc.Patch(patch); err != nil {
			return err
		}
	}
	for _, obj := range e.emptied {
		if len(obj.Members) == 0 && isBlank(obj.AfterExtra) {
			obj.AfterExtra = nil
		}
	}
	e.removed, e.emptied = nil, nil
	return nil
}

// encode renders value as indented JSON for a position at depth
func (e *editor) encode(value any, depth int) (hujson.Value, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(strings.Repeat(e.indent, depth), e.indent)
	if err := enc.Encode(value); err != nil {
		return hujson.Value{}, err
	}
	return hujson.Parse(buf.Bytes())
}

func memberIndex(obj *hujson.Object, name string) int {
	for i := range obj.Members {
		if obj.Members[i].Name.Value.(hujson.Literal).String() == name {
			return i
		}
	}
	return -1
}

// memberLead returns the whitespace that starts the line of a member, or
// the whole lead when the member shares a line with its predecessor
func memberLead(extra hujson.Extra) ([]byte, bool) {
	if i := bytes.LastIndexByte(extra, '\n'); i >= 0 {
		return append([]byte(nil), extra[i:]...), true
	}
	if isBlank(extra) {
		return append([]byte(nil), extra...), true
	}
	return nil, false
}

// detectIndent returns the indentation of the first indented top-level
// member
func detectIndent(doc *hujson.Value) string {
	root, ok := doc.Value.(*hujson.Object)
	if !ok {
		return defaultIndent
	}
	for _, m := range root.Members {
		extra := m.Name.BeforeExtra
		i := bytes.LastIndexByte(extra, '\n')
		if i < 0 {
			continue
		}
		if lead := string(extra[i+1:]); lead != "" && strings.TrimSpace(lead) == "" {
			return lead
		}
	}
	return defaultIndent
}

func isBlank(b []byte) bool {
	return len(bytes.TrimSpace(b)) == 0
}

// decodeValue converts a parsed value to its generic JSON form
func decodeValue(v hujson.Value) (any, error) {
	c := v.Clone()
	c.Standardize()
	var out any
	if err := jsonutil.Decode(c.Pack(), &out); err != nil {
		return nil, err
	}
	return out, nil
}
