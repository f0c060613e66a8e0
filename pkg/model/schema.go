package model

import (
	"fmt"
	"strings"
)

// Whitespace modes for NodeSpec.Whitespace.
const (
	WhitespaceNormal = "normal"
	WhitespacePre    = "pre"
)

// NodeSpec describes a node type. Specs are given to NewSchema in order; the
// order determines precedence when a group name resolves to several types.
type NodeSpec struct {
	// Name is the node type name, unique within the schema.
	Name string

	// Content is the content expression for the node, e.g. "paragraph+".
	// Empty means the node is a leaf.
	Content string

	// Marks is the space-separated list of marks allowed inside the node.
	// "_" allows all marks and "" allows none. nil means the default: all
	// marks for nodes with inline content, none otherwise.
	Marks *string

	// Group is a space-separated list of groups the node belongs to.
	Group string

	// Inline marks the node as inline. The text type is always inline.
	Inline bool

	// Atom marks a non-leaf node as a single unit for editing purposes.
	Atom bool

	// Attrs declares the node's attributes.
	Attrs map[string]*AttributeSpec

	// Code marks the node as holding code; implies "pre" whitespace.
	Code bool

	// Whitespace controls whitespace handling: "normal" or "pre".
	Whitespace string

	// Defining marks the node as important to preserve when its content is replaced.
	Defining bool

	// Isolating marks the node as a boundary for editing operations.
	Isolating bool

	// LeafText computes the text for a leaf node in TextBetween and TextContent.
	LeafText func(node *Node) string
}

// MarkSpec describes a mark type.
type MarkSpec struct {
	// Name is the mark type name, unique within the schema and distinct from node names.
	Name string

	// Attrs declares the mark's attributes.
	Attrs map[string]*AttributeSpec

	// Inclusive controls whether the mark is active at its end. Defaults to true.
	Inclusive *bool

	// Excludes is a space-separated list of marks or mark groups this mark
	// cannot coexist with. nil means the mark only excludes itself; "" excludes
	// nothing; "_" excludes everything.
	Excludes *string

	// Group is a space-separated list of groups the mark belongs to.
	Group string

	// Spanning controls whether the mark can span multiple adjacent nodes.
	Spanning *bool
}

// SchemaSpec describes a schema.
type SchemaSpec struct {
	Nodes []*NodeSpec
	Marks []*MarkSpec

	// TopNode names the default top-level node type. Defaults to "doc".
	TopNode string
}

// typeTable is an ordered name index of node types.
type typeTable struct {
	ordered []*NodeType
	byName  map[string]*NodeType
}

// NodeType is the compiled form of a NodeSpec. Each schema holds exactly one
// NodeType per node name.
type NodeType struct {
	Name   string
	Schema *Schema
	Spec   *NodeSpec
	Groups []string

	attrs        attrTable
	defaultAttrs Attrs
	isBlock      bool
	isText       bool

	contentMatch  *ContentMatch
	inlineContent bool

	// markSet is nil when all marks are allowed.
	markSet []*MarkType
}

func newNodeType(name string, schema *Schema, spec *NodeSpec) *NodeType {
	t := &NodeType{
		Name:    name,
		Schema:  schema,
		Spec:    spec,
		attrs:   initAttrs(spec.Attrs),
		isBlock: !(spec.Inline || name == "text"),
		isText:  name == "text",
	}
	if spec.Group != "" {
		t.Groups = strings.Fields(spec.Group)
	}
	t.defaultAttrs = t.attrs.defaults()
	return t
}

// ContentMatch returns the starting state of the node's content automaton.
func (t *NodeType) ContentMatch() *ContentMatch {
	return t.contentMatch
}

// InlineContent reports whether the node expects inline content.
func (t *NodeType) InlineContent() bool { return t.inlineContent }

// IsBlock reports whether this is a block type.
func (t *NodeType) IsBlock() bool { return t.isBlock }

// IsText reports whether this is the text type.
func (t *NodeType) IsText() bool { return t.isText }

// IsInline reports whether this is an inline type.
func (t *NodeType) IsInline() bool { return !t.isBlock }

// IsTextblock reports whether this is a block type with inline content.
func (t *NodeType) IsTextblock() bool { return t.isBlock && t.inlineContent }

// IsLeaf reports whether the node type allows no content.
func (t *NodeType) IsLeaf() bool { return t.contentMatch == EmptyMatch }

// IsAtom reports whether the node is a leaf or declared atomic.
func (t *NodeType) IsAtom() bool { return t.IsLeaf() || t.Spec.Atom }

// IsInGroup reports whether the type belongs to the named group.
func (t *NodeType) IsInGroup(group string) bool {
	for _, g := range t.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Whitespace returns the whitespace mode of the node.
func (t *NodeType) Whitespace() string {
	if t.Spec.Whitespace != "" {
		return t.Spec.Whitespace
	}
	if t.Spec.Code {
		return WhitespacePre
	}
	return WhitespaceNormal
}

// DefaultAttrs returns the default attributes, or nil when some are required.
func (t *NodeType) DefaultAttrs() Attrs {
	return t.defaultAttrs
}

// HasRequiredAttrs reports whether the node type has attributes without defaults.
func (t *NodeType) HasRequiredAttrs() bool {
	return t.attrs.hasRequired()
}

// generatable reports whether nodes of this type can be created without input.
func (t *NodeType) generatable() bool {
	return !t.isText && !t.HasRequiredAttrs()
}

// CompatibleContent reports whether this type and other can share content.
func (t *NodeType) CompatibleContent(other *NodeType) bool {
	return t == other || t.contentMatch.Compatible(other.contentMatch)
}

// ComputeAttrs fills in the default attributes.
func (t *NodeType) ComputeAttrs(attrs Attrs) (Attrs, error) {
	if attrs == nil && t.defaultAttrs != nil {
		return t.defaultAttrs, nil
	}
	return t.attrs.compute(t.Name, attrs)
}

// Create creates a node of this type. Content is not checked against the
// schema. Text nodes are created with Schema.Text.
func (t *NodeType) Create(attrs Attrs, content *Fragment, marks []*Mark) (*Node, error) {
	if t.isText {
		return nil, fmt.Errorf("%w: NodeType.Create can't construct text nodes", ErrInvalidContent)
	}
	computed, err := t.ComputeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	return newNode(t, computed, content, MarkSetFrom(marks...)), nil
}

// CreateChecked is like Create but checks the content against the node type.
func (t *NodeType) CreateChecked(attrs Attrs, content *Fragment, marks []*Mark) (*Node, error) {
	if content == nil {
		content = EmptyFragment
	}
	if err := t.CheckContent(content); err != nil {
		return nil, err
	}
	return t.Create(attrs, content, marks)
}

// CreateAndFill is like Create but adds the nodes needed to make the content
// valid, both before and after the given content. Returns nil when no valid
// node can be built from the input.
func (t *NodeType) CreateAndFill(attrs Attrs, content *Fragment, marks []*Mark) *Node {
	if t.isText {
		return nil
	}
	computed, err := t.ComputeAttrs(attrs)
	if err != nil {
		return nil
	}
	if content == nil {
		content = EmptyFragment
	}
	if content.Size() > 0 {
		before := t.contentMatch.FillBefore(content, false)
		if before == nil {
			return nil
		}
		content = before.Append(content)
	}
	matched := t.contentMatch.MatchFragment(content)
	if matched == nil {
		return nil
	}
	after := matched.FillBefore(EmptyFragment, true)
	if after == nil {
		return nil
	}
	return newNode(t, computed, content.Append(after), MarkSetFrom(marks...))
}

// ValidContent reports whether the fragment is valid content for this type.
func (t *NodeType) ValidContent(content *Fragment) bool {
	result := t.contentMatch.MatchFragment(content)
	if result == nil || !result.ValidEnd {
		return false
	}
	for _, child := range content.children {
		if !t.AllowsMarks(child.Marks) {
			return false
		}
	}
	return true
}

// CheckContent returns an error when the fragment is not valid content.
func (t *NodeType) CheckContent(content *Fragment) error {
	if !t.ValidContent(content) {
		desc := content.String()
		if runes := []rune(desc); len(runes) > 50 {
			desc = string(runes[:50])
		}
		return fmt.Errorf("%w for node %s: %s", ErrInvalidContent, t.Name, desc)
	}
	return nil
}

// CheckAttrs returns an error for unknown or invalid attributes.
func (t *NodeType) CheckAttrs(attrs Attrs) error {
	return t.attrs.check("node", t.Name, attrs)
}

// AllowsMarkType reports whether the mark type is allowed in this node.
func (t *NodeType) AllowsMarkType(markType *MarkType) bool {
	if t.markSet == nil {
		return true
	}
	for _, m := range t.markSet {
		if m == markType {
			return true
		}
	}
	return false
}

// AllowsMarks reports whether every mark in the set is allowed in this node.
func (t *NodeType) AllowsMarks(marks []*Mark) bool {
	if t.markSet == nil {
		return true
	}
	for _, m := range marks {
		if !t.AllowsMarkType(m.Type) {
			return false
		}
	}
	return true
}

// AllowedMarks removes the marks that are not allowed in this node from the set.
func (t *NodeType) AllowedMarks(marks []*Mark) []*Mark {
	if t.markSet == nil {
		return marks
	}
	var out []*Mark
	copied := false
	for i, m := range marks {
		if !t.AllowsMarkType(m.Type) {
			if !copied {
				out = append([]*Mark{}, marks[:i]...)
				copied = true
			}
		} else if copied {
			out = append(out, m)
		}
	}
	switch {
	case !copied:
		return marks
	case len(out) == 0:
		return NoMarks
	default:
		return out
	}
}

func (t *NodeType) String() string {
	return t.Name
}

// MarkType is the compiled form of a MarkSpec.
type MarkType struct {
	Name   string
	Schema *Schema
	Spec   *MarkSpec

	rank     int
	attrs    attrTable
	excluded []*MarkType
	instance *Mark
}

func newMarkType(name string, rank int, schema *Schema, spec *MarkSpec) *MarkType {
	t := &MarkType{
		Name:   name,
		Schema: schema,
		Spec:   spec,
		rank:   rank,
		attrs:  initAttrs(spec.Attrs),
	}
	if defaults := t.attrs.defaults(); defaults != nil {
		t.instance = &Mark{Type: t, Attrs: defaults}
	}
	return t
}

// Rank is the position of the mark type in the schema, which orders mark sets.
func (t *MarkType) Rank() int {
	return t.rank
}

// Inclusive reports whether the mark stays active at its end.
func (t *MarkType) Inclusive() bool {
	return t.Spec.Inclusive == nil || *t.Spec.Inclusive
}

// Create creates a mark of this type. A shared instance is returned when no
// attributes are given and all have defaults.
func (t *MarkType) Create(attrs Attrs) (*Mark, error) {
	if attrs == nil && t.instance != nil {
		return t.instance, nil
	}
	computed, err := t.attrs.compute(t.Name, attrs)
	if err != nil {
		return nil, err
	}
	return &Mark{Type: t, Attrs: computed}, nil
}

// RemoveFromSet removes every mark of this type from the set.
func (t *MarkType) RemoveFromSet(set []*Mark) []*Mark {
	var out []*Mark
	copied := false
	for i, m := range set {
		if m.Type == t {
			if !copied {
				out = append([]*Mark{}, set[:i]...)
				copied = true
			}
		} else if copied {
			out = append(out, m)
		}
	}
	if !copied {
		return set
	}
	return out
}

// IsInSet returns the mark of this type in the set, or nil.
func (t *MarkType) IsInSet(set []*Mark) *Mark {
	for _, m := range set {
		if m.Type == t {
			return m
		}
	}
	return nil
}

// CheckAttrs returns an error for unknown or invalid attributes.
func (t *MarkType) CheckAttrs(attrs Attrs) error {
	return t.attrs.check("mark", t.Name, attrs)
}

// Excludes reports whether this mark type excludes the other.
func (t *MarkType) Excludes(other *MarkType) bool {
	for _, m := range t.excluded {
		if m == other {
			return true
		}
	}
	return false
}

func (t *MarkType) String() string {
	return t.Name
}

// Schema holds the compiled node and mark types of a document model.
// A Schema is immutable after construction and safe for concurrent use.
type Schema struct {
	Spec *SchemaSpec

	nodes   typeTable
	marks   []*MarkType
	markIdx map[string]*MarkType
	top     *NodeType

	warnings []string
}

// NewSchema compiles a schema specification.
func NewSchema(spec *SchemaSpec) (*Schema, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil spec", ErrSchema)
	}

	schema := &Schema{
		Spec:    spec,
		nodes:   typeTable{byName: make(map[string]*NodeType, len(spec.Nodes))},
		markIdx: make(map[string]*MarkType, len(spec.Marks)),
	}

	for _, ns := range spec.Nodes {
		if ns == nil || ns.Name == "" {
			return nil, fmt.Errorf("%w: node spec without a name", ErrSchema)
		}
		if _, dup := schema.nodes.byName[ns.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate node type %s", ErrSchema, ns.Name)
		}
		t := newNodeType(ns.Name, schema, ns)
		schema.nodes.ordered = append(schema.nodes.ordered, t)
		schema.nodes.byName[ns.Name] = t
	}

	for rank, ms := range spec.Marks {
		if ms == nil || ms.Name == "" {
			return nil, fmt.Errorf("%w: mark spec without a name", ErrSchema)
		}
		if _, dup := schema.markIdx[ms.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate mark type %s", ErrSchema, ms.Name)
		}
		t := newMarkType(ms.Name, rank, schema, ms)
		schema.marks = append(schema.marks, t)
		schema.markIdx[ms.Name] = t
	}

	topName := spec.TopNode
	if topName == "" {
		topName = "doc"
	}
	top, ok := schema.nodes.byName[topName]
	if !ok {
		return nil, fmt.Errorf("%w: schema is missing its top node type ('%s')", ErrSchema, topName)
	}
	schema.top = top

	text, ok := schema.nodes.byName["text"]
	if !ok {
		return nil, fmt.Errorf("%w: every schema needs a 'text' type", ErrSchema)
	}
	if text.attrs.len() > 0 {
		return nil, fmt.Errorf("%w: the text node type should not have attributes", ErrSchema)
	}

	if err := schema.compileContent(); err != nil {
		return nil, err
	}
	if err := schema.compileExclusions(); err != nil {
		return nil, err
	}
	return schema, nil
}

func (s *Schema) compileContent() error {
	type compiled struct {
		match    *ContentMatch
		warnings []string
	}
	cache := make(map[string]compiled)

	for _, t := range s.nodes.ordered {
		if _, clash := s.markIdx[t.Name]; clash {
			return fmt.Errorf("%w: %s can not be both a node and a mark", ErrSchema, t.Name)
		}

		expr := t.Spec.Content
		entry, ok := cache[expr]
		if !ok {
			match, warnings, err := parseContentMatch(expr, &s.nodes)
			if err != nil {
				return err
			}
			entry = compiled{match: match, warnings: warnings}
			cache[expr] = entry
			s.warnings = append(s.warnings, warnings...)
		}
		t.contentMatch = entry.match
		t.inlineContent = entry.match.InlineContent()

		markExpr := t.Spec.Marks
		switch {
		case markExpr != nil && *markExpr == "_":
			t.markSet = nil
		case markExpr != nil && *markExpr != "":
			set, err := s.gatherMarks(strings.Fields(*markExpr))
			if err != nil {
				return err
			}
			t.markSet = set
		case markExpr != nil || !t.inlineContent:
			t.markSet = []*MarkType{}
		default:
			t.markSet = nil
		}
	}
	return nil
}

func (s *Schema) compileExclusions() error {
	for _, t := range s.marks {
		excl := t.Spec.Excludes
		switch {
		case excl == nil:
			t.excluded = []*MarkType{t}
		case *excl == "":
			t.excluded = []*MarkType{}
		default:
			set, err := s.gatherMarks(strings.Fields(*excl))
			if err != nil {
				return err
			}
			t.excluded = set
		}
	}
	return nil
}

func (s *Schema) gatherMarks(names []string) ([]*MarkType, error) {
	var found []*MarkType
	for _, name := range names {
		if mark, ok := s.markIdx[name]; ok {
			found = append(found, mark)
			continue
		}
		matched := false
		for _, mark := range s.marks {
			if name == "_" || containsField(mark.Spec.Group, name) {
				found = append(found, mark)
				matched = true
			}
		}
		if !matched {
			return nil, &SyntaxError{Message: "Unknown mark type: '" + name + "'", Expr: strings.Join(names, " ")}
		}
	}
	return found, nil
}

func containsField(list, name string) bool {
	for _, f := range strings.Fields(list) {
		if f == name {
			return true
		}
	}
	return false
}

// Nodes returns the node types in declaration order.
func (s *Schema) Nodes() []*NodeType {
	return s.nodes.ordered
}

// Marks returns the mark types in rank order.
func (s *Schema) Marks() []*MarkType {
	return s.marks
}

// TopNodeType returns the type of the default top node.
func (s *Schema) TopNodeType() *NodeType {
	return s.top
}

// Warnings lists restrictive but legal constructs found while compiling.
func (s *Schema) Warnings() []string {
	return s.warnings
}

// NodeType looks up a node type by name.
func (s *Schema) NodeType(name string) (*NodeType, error) {
	t, ok := s.nodes.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown node type: %s", ErrUnknownType, name)
	}
	return t, nil
}

// MarkType looks up a mark type by name.
func (s *Schema) MarkType(name string) (*MarkType, error) {
	t, ok := s.markIdx[name]
	if !ok {
		return nil, fmt.Errorf("%w: there is no mark type %s in this schema", ErrUnknownType, name)
	}
	return t, nil
}

// Node creates a node in this schema, checking its content.
func (s *Schema) Node(typeName string, attrs Attrs, content *Fragment, marks ...*Mark) (*Node, error) {
	t, err := s.NodeType(typeName)
	if err != nil {
		return nil, err
	}
	return t.CreateChecked(attrs, content, marks)
}

// Text creates a text node in this schema. Empty text is not allowed.
func (s *Schema) Text(text string, marks ...*Mark) (*Node, error) {
	t := s.nodes.byName["text"]
	return newTextNode(t, t.defaultAttrs, text, MarkSetFrom(marks...))
}

// Mark creates a mark with the given type name and attributes.
func (s *Schema) Mark(name string, attrs Attrs) (*Mark, error) {
	t, err := s.MarkType(name)
	if err != nil {
		return nil, err
	}
	return t.Create(attrs)
}
