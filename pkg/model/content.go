package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// MatchEdge is a transition of a ContentMatch automaton.
type MatchEdge struct {
	Type *NodeType
	Next *ContentMatch
}

// ContentMatch represents a state in the deterministic automaton compiled
// from a content expression. It is used to find out whether further content
// matches here, and whether a given position is a valid end of the node.
type ContentMatch struct {
	// ValidEnd is true when this match state represents a valid end of the node.
	ValidEnd bool

	next []MatchEdge

	wrapMu    sync.Mutex
	wrapCache map[*NodeType][]*NodeType
}

// EmptyMatch is the match state of nodes with an empty content expression.
//
//nolint:gochecknoglobals // Canonical leaf automaton shared by every schema.
var EmptyMatch = &ContentMatch{ValidEnd: true}

// parseContentMatch compiles a content expression against the schema's node types.
func parseContentMatch(expr string, types *typeTable) (*ContentMatch, []string, error) {
	stream := newTokenStream(expr, types)
	if stream.next() == "" {
		return EmptyMatch, nil, nil
	}

	parsed, err := parseExpr(stream)
	if err != nil {
		return nil, nil, err
	}
	if stream.next() != "" {
		return nil, nil, stream.err("Unexpected trailing text")
	}

	match := buildDFA(buildNFA(parsed))
	return match, deadEnds(match, expr), nil
}

// MatchType returns the match state after a node of the given type, or nil
// when that type is not allowed here.
func (m *ContentMatch) MatchType(nodeType *NodeType) *ContentMatch {
	for _, edge := range m.next {
		if edge.Type == nodeType {
			return edge.Next
		}
	}
	return nil
}

// MatchFragment tries to match a fragment, returning the resulting match
// state or nil when any child does not fit.
func (m *ContentMatch) MatchFragment(frag *Fragment) *ContentMatch {
	return m.MatchFragmentRange(frag, 0, frag.ChildCount())
}

// MatchFragmentRange matches the children of frag in [start, end).
func (m *ContentMatch) MatchFragmentRange(frag *Fragment, start, end int) *ContentMatch {
	cur := m
	for i := start; cur != nil && i < end; i++ {
		cur = cur.MatchType(frag.Child(i).Type)
	}
	return cur
}

// InlineContent reports whether the state accepts inline nodes.
func (m *ContentMatch) InlineContent() bool {
	return len(m.next) != 0 && m.next[0].Type.IsInline()
}

// DefaultType returns the first node type that can be generated at this
// position, or nil when none can.
func (m *ContentMatch) DefaultType() *NodeType {
	for _, edge := range m.next {
		if edge.Type.generatable() {
			return edge.Type
		}
	}
	return nil
}

// Compatible reports whether the two states share an outgoing node type.
func (m *ContentMatch) Compatible(other *ContentMatch) bool {
	for _, a := range m.next {
		for _, b := range other.next {
			if a.Type == b.Type {
				return true
			}
		}
	}
	return false
}

// FillBefore finds the shortest sequence of generatable nodes that, inserted
// here, lets after match. When toEnd is true the result must also bring the
// automaton to a valid end. Returns nil when no such sequence exists.
func (m *ContentMatch) FillBefore(after *Fragment, toEnd bool) *Fragment {
	return m.FillBeforeFrom(after, toEnd, 0)
}

// FillBeforeFrom is FillBefore matching after starting at child startIndex.
func (m *ContentMatch) FillBeforeFrom(after *Fragment, toEnd bool, startIndex int) *Fragment {
	type step struct {
		match *ContentMatch
		types []*NodeType
	}

	seen := map[*ContentMatch]bool{m: true}
	queue := []step{{match: m}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		finished := cur.match.MatchFragmentRange(after, startIndex, after.ChildCount())
		if finished != nil && (!toEnd || finished.ValidEnd) {
			if filled := fillNodes(cur.types); filled != nil {
				return filled
			}
		}

		for _, edge := range cur.match.next {
			if !edge.Type.generatable() || seen[edge.Next] {
				continue
			}
			seen[edge.Next] = true
			types := make([]*NodeType, len(cur.types), len(cur.types)+1)
			copy(types, cur.types)
			queue = append(queue, step{match: edge.Next, types: append(types, edge.Type)})
		}
	}
	return nil
}

func fillNodes(types []*NodeType) *Fragment {
	nodes := make([]*Node, 0, len(types))
	for _, t := range types {
		node := t.CreateAndFill(nil, nil, nil)
		if node == nil {
			return nil
		}
		nodes = append(nodes, node)
	}
	return FragmentFrom(nodes...)
}

// FindWrapping finds a set of wrapping node types that would allow a node of
// the target type to appear at this position. The result may be empty when
// the target fits directly, and is nil when no wrapping exists.
func (m *ContentMatch) FindWrapping(target *NodeType) ([]*NodeType, bool) {
	m.wrapMu.Lock()
	defer m.wrapMu.Unlock()

	if computed, ok := m.wrapCache[target]; ok {
		return computed, computed != nil
	}
	computed := m.computeWrapping(target)
	if m.wrapCache == nil {
		m.wrapCache = make(map[*NodeType][]*NodeType)
	}
	m.wrapCache[target] = computed
	return computed, computed != nil
}

func (m *ContentMatch) computeWrapping(target *NodeType) []*NodeType {
	type active struct {
		match    *ContentMatch
		nodeType *NodeType
		via      *active
	}

	seen := make(map[string]bool)
	queue := []*active{{match: m}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.match.MatchType(target) != nil {
			result := []*NodeType{}
			for obj := current; obj.nodeType != nil; obj = obj.via {
				result = append(result, obj.nodeType)
			}
			for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
				result[i], result[j] = result[j], result[i]
			}
			return result
		}

		for _, edge := range current.match.next {
			t := edge.Type
			if !t.IsLeaf() && !t.HasRequiredAttrs() && !seen[t.Name] &&
				(current.nodeType == nil || edge.Next.ValidEnd) {
				queue = append(queue, &active{match: t.contentMatch, nodeType: t, via: current})
				seen[t.Name] = true
			}
		}
	}
	return nil
}

// EdgeCount returns the number of outgoing edges of this state.
func (m *ContentMatch) EdgeCount() int {
	return len(m.next)
}

// Edge returns the n-th outgoing edge.
func (m *ContentMatch) Edge(n int) (MatchEdge, error) {
	if n < 0 || n >= len(m.next) {
		return MatchEdge{}, fmt.Errorf("%w: there's no %dth edge in this content match", ErrOutOfRange, n)
	}
	return m.next[n], nil
}

// States returns every state reachable from m, m first.
func (m *ContentMatch) States() []*ContentMatch {
	var seen []*ContentMatch
	index := make(map[*ContentMatch]bool)

	var scan func(*ContentMatch)
	scan = func(cur *ContentMatch) {
		seen = append(seen, cur)
		index[cur] = true
		for _, edge := range cur.next {
			if !index[edge.Next] {
				scan(edge.Next)
			}
		}
	}
	scan(m)
	return seen
}

func (m *ContentMatch) String() string {
	states := m.States()
	position := make(map[*ContentMatch]int, len(states))
	for i, s := range states {
		position[s] = i
	}

	lines := make([]string, 0, len(states))
	for i, s := range states {
		var sb strings.Builder
		sb.WriteString(strconv.Itoa(i))
		if s.ValidEnd {
			sb.WriteString("* ")
		} else {
			sb.WriteString("  ")
		}
		for j, edge := range s.next {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s->%d", edge.Type.Name, position[edge.Next])
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

// deadEnds lists states that are neither valid ends nor have a generatable
// continuation. They are legal, just restrictive.
func deadEnds(start *ContentMatch, expr string) []string {
	var warnings []string
	for _, state := range start.States() {
		dead := !state.ValidEnd
		names := make([]string, 0, len(state.next))
		for _, edge := range state.next {
			names = append(names, edge.Type.Name)
			if dead && edge.Type.generatable() {
				dead = false
			}
		}
		if dead {
			warnings = append(warnings, fmt.Sprintf(
				"only non-generatable nodes (%s) in a required position in content expression '%s'",
				strings.Join(names, ", "), expr))
		}
	}
	return warnings
}

// Content expression parsing.

type tokenStream struct {
	expr   string
	tokens []string
	pos    int
	types  *typeTable

	// inline is 0 until the first name is resolved, then 1 for inline, 2 for block.
	inline int
}

func newTokenStream(expr string, types *typeTable) *tokenStream {
	return &tokenStream{expr: expr, tokens: tokenizeExpr(expr), types: types}
}

// tokenizeExpr splits an expression into runs of word characters and single
// punctuation characters, dropping whitespace.
func tokenizeExpr(expr string) []string {
	var tokens []string
	for i := 0; i < len(expr); {
		r, width := utf8.DecodeRuneInString(expr[i:])
		switch {
		case unicode.IsSpace(r):
			i += width
		case isWordRune(r):
			j := i
			for j < len(expr) {
				next, w := utf8.DecodeRuneInString(expr[j:])
				if !isWordRune(next) {
					break
				}
				j += w
			}
			tokens = append(tokens, expr[i:j])
			i = j
		default:
			tokens = append(tokens, expr[i:i+width])
			i += width
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (s *tokenStream) next() string {
	if s.pos < len(s.tokens) {
		return s.tokens[s.pos]
	}
	return ""
}

func (s *tokenStream) eat(tok string) bool {
	if s.next() == tok {
		s.pos++
		return true
	}
	return false
}

func (s *tokenStream) err(msg string) error {
	return &SyntaxError{Message: msg, Expr: s.expr}
}

type exprKind int

const (
	exprChoice exprKind = iota
	exprSeq
	exprPlus
	exprStar
	exprOpt
	exprRange
	exprName
)

type contentExpr struct {
	kind  exprKind
	exprs []*contentExpr
	expr  *contentExpr
	min   int
	max   int // -1 for unbounded
	value *NodeType
}

func parseExpr(stream *tokenStream) (*contentExpr, error) {
	var exprs []*contentExpr
	for {
		seq, err := parseExprSeq(stream)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, seq)
		if !stream.eat("|") {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &contentExpr{kind: exprChoice, exprs: exprs}, nil
}

func parseExprSeq(stream *tokenStream) (*contentExpr, error) {
	var exprs []*contentExpr
	for {
		sub, err := parseExprSubscript(stream)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, sub)
		next := stream.next()
		if next == "" || next == ")" || next == "|" {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &contentExpr{kind: exprSeq, exprs: exprs}, nil
}

func parseExprSubscript(stream *tokenStream) (*contentExpr, error) {
	expr, err := parseExprAtom(stream)
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case stream.eat("+"):
			expr = &contentExpr{kind: exprPlus, expr: expr}
		case stream.eat("*"):
			expr = &contentExpr{kind: exprStar, expr: expr}
		case stream.eat("?"):
			expr = &contentExpr{kind: exprOpt, expr: expr}
		case stream.eat("{"):
			expr, err = parseExprRange(stream, expr)
			if err != nil {
				return nil, err
			}
		default:
			return expr, nil
		}
	}
}

func parseNum(stream *tokenStream) (int, error) {
	tok := stream.next()
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 {
		return 0, stream.err("Expected number, got '" + tok + "'")
	}
	stream.pos++
	return n, nil
}

func parseExprRange(stream *tokenStream, expr *contentExpr) (*contentExpr, error) {
	lo, err := parseNum(stream)
	if err != nil {
		return nil, err
	}
	hi := lo
	if stream.eat(",") {
		if stream.next() != "}" {
			hi, err = parseNum(stream)
			if err != nil {
				return nil, err
			}
		} else {
			hi = -1
		}
	}
	if !stream.eat("}") {
		return nil, stream.err("Unclosed braced range")
	}
	return &contentExpr{kind: exprRange, min: lo, max: hi, expr: expr}, nil
}

func resolveName(stream *tokenStream, name string) ([]*NodeType, error) {
	if t, ok := stream.types.byName[name]; ok {
		return []*NodeType{t}, nil
	}
	var result []*NodeType
	for _, t := range stream.types.ordered {
		if t.IsInGroup(name) {
			result = append(result, t)
		}
	}
	if len(result) == 0 {
		return nil, stream.err("No node type or group '" + name + "' found")
	}
	return result, nil
}

func parseExprAtom(stream *tokenStream) (*contentExpr, error) {
	if stream.eat("(") {
		expr, err := parseExpr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.eat(")") {
			return nil, stream.err("Missing closing paren")
		}
		return expr, nil
	}

	tok := stream.next()
	if tok == "" {
		return nil, stream.err("Unexpected end of expression")
	}
	first, _ := utf8.DecodeRuneInString(tok)
	if !isWordRune(first) {
		return nil, stream.err("Unexpected token '" + tok + "'")
	}

	types, err := resolveName(stream, tok)
	if err != nil {
		return nil, err
	}
	exprs := make([]*contentExpr, 0, len(types))
	for _, t := range types {
		kind := 2
		if t.IsInline() {
			kind = 1
		}
		if stream.inline == 0 {
			stream.inline = kind
		} else if stream.inline != kind {
			return nil, stream.err("Mixing inline and block content")
		}
		exprs = append(exprs, &contentExpr{kind: exprName, value: t})
	}
	stream.pos++

	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &contentExpr{kind: exprChoice, exprs: exprs}, nil
}

// NFA construction. Edges with a nil term are epsilon edges; to is -1 until
// the edge is connected.

type nfaEdge struct {
	term *NodeType
	to   int
}

type nfa [][]*nfaEdge

type nfaBuilder struct {
	states nfa
}

func buildNFA(expr *contentExpr) nfa {
	b := &nfaBuilder{states: nfa{nil}}
	out := b.compile(expr, 0)
	connect(out, b.node())
	return b.states
}

func (b *nfaBuilder) node() int {
	b.states = append(b.states, nil)
	return len(b.states) - 1
}

func (b *nfaBuilder) edge(from, to int, term *NodeType) *nfaEdge {
	e := &nfaEdge{term: term, to: to}
	b.states[from] = append(b.states[from], e)
	return e
}

func connect(edges []*nfaEdge, to int) {
	for _, e := range edges {
		e.to = to
	}
}

func (b *nfaBuilder) compile(expr *contentExpr, from int) []*nfaEdge {
	switch expr.kind {
	case exprChoice:
		var out []*nfaEdge
		for _, sub := range expr.exprs {
			out = append(out, b.compile(sub, from)...)
		}
		return out

	case exprSeq:
		for i := 0; ; i++ {
			next := b.compile(expr.exprs[i], from)
			if i == len(expr.exprs)-1 {
				return next
			}
			from = b.node()
			connect(next, from)
		}

	case exprStar:
		loop := b.node()
		b.edge(from, loop, nil)
		connect(b.compile(expr.expr, loop), loop)
		return []*nfaEdge{b.edge(loop, -1, nil)}

	case exprPlus:
		loop := b.node()
		connect(b.compile(expr.expr, from), loop)
		connect(b.compile(expr.expr, loop), loop)
		return []*nfaEdge{b.edge(loop, -1, nil)}

	case exprOpt:
		out := []*nfaEdge{b.edge(from, -1, nil)}
		return append(out, b.compile(expr.expr, from)...)

	case exprRange:
		cur := from
		for i := 0; i < expr.min; i++ {
			next := b.node()
			connect(b.compile(expr.expr, cur), next)
			cur = next
		}
		if expr.max == -1 {
			connect(b.compile(expr.expr, cur), cur)
		} else {
			for i := expr.min; i < expr.max; i++ {
				next := b.node()
				b.edge(cur, next, nil)
				connect(b.compile(expr.expr, cur), next)
				cur = next
			}
		}
		return []*nfaEdge{b.edge(cur, -1, nil)}

	default: // exprName
		return []*nfaEdge{b.edge(from, -1, expr.value)}
	}
}

// nullFrom returns the states reachable from node through epsilon edges,
// sorted in descending order.
func (a nfa) nullFrom(node int) []int {
	var result []int
	var scan func(int)
	scan = func(n int) {
		edges := a[n]
		if len(edges) == 1 && edges[0].term == nil {
			scan(edges[0].to)
			return
		}
		result = append(result, n)
		for _, e := range edges {
			if e.term == nil && !containsInt(result, e.to) {
				scan(e.to)
			}
		}
	}
	scan(node)
	sort.Sort(sort.Reverse(sort.IntSlice(result)))
	return result
}

func buildDFA(a nfa) *ContentMatch {
	labeled := make(map[string]*ContentMatch)
	accept := len(a) - 1

	type transition struct {
		term *NodeType
		set  []int
	}

	var explore func(states []int) *ContentMatch
	explore = func(states []int) *ContentMatch {
		var out []*transition
		for _, node := range states {
			for _, e := range a[node] {
				if e.term == nil {
					continue
				}
				var tr *transition
				for _, o := range out {
					if o.term == e.term {
						tr = o
					}
				}
				for _, reached := range a.nullFrom(e.to) {
					if tr == nil {
						tr = &transition{term: e.term}
						out = append(out, tr)
					}
					if !containsInt(tr.set, reached) {
						tr.set = append(tr.set, reached)
					}
				}
			}
		}

		state := &ContentMatch{ValidEnd: containsInt(states, accept)}
		labeled[stateKey(states)] = state

		for _, tr := range out {
			sort.Sort(sort.Reverse(sort.IntSlice(tr.set)))
			next, ok := labeled[stateKey(tr.set)]
			if !ok {
				next = explore(tr.set)
			}
			state.next = append(state.next, MatchEdge{Type: tr.term, Next: next})
		}
		return state
	}

	return explore(a.nullFrom(0))
}

func stateKey(states []int) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
