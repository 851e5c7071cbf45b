package graph

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/jiujiechenfeng/langgraph-source/log"
	"github.com/jiujiechenfeng/langgraph-source/store"
)

// END is a special constant used to represent the end node in the graph.
const END = "END"

// NodeFunc is the work performed by a node. It receives a snapshot of the state
// and returns a partial update holding only the fields it changes.
type NodeFunc func(ctx context.Context, state State) (State, error)

// Router inspects the merged state after a node and returns a routing key.
type Router func(ctx context.Context, state State) string

// Node represents a node in the graph.
type Node struct {
	// Name is the unique identifier for the node
	Name string

	// Description describes what the node does
	Description string

	// Function is the function associated with the node
	Function NodeFunc
}

// Edge represents an unconditional edge between two nodes.
type Edge struct {
	From string
	To   string
}

// ConditionalEdge routes from a node by looking up the router's key in Mapping.
// A nil Mapping means the router returns destination names directly.
type ConditionalEdge struct {
	From    string
	Router  Router
	Mapping map[string]string
}

// StateGraph is the mutable builder of a graph. Compile turns it into a Runnable.
type StateGraph struct {
	schema           *Schema
	nodes            map[string]Node
	nodeOrder        []string
	edges            []Edge
	conditionalEdges []ConditionalEdge
	entryPoint       string
}

// NewStateGraph creates a graph whose state fields are declared by schema.
// A nil schema is treated as an empty one, which accepts no writes.
func NewStateGraph(schema *Schema) *StateGraph {
	if schema == nil {
		schema, _ = NewSchema()
	}
	return &StateGraph{
		schema: schema,
		nodes:  make(map[string]Node),
	}
}

// NewMessageGraph creates a graph with a "messages" field merged by AddMessages.
func NewMessageGraph() *StateGraph {
	schema, _ := NewMessageSchema()
	return NewStateGraph(schema)
}

// Schema returns the reducer registry of the graph.
func (g *StateGraph) Schema() *Schema {
	return g.schema
}

// AddNode adds a new node to the graph with the given name, description and function.
func (g *StateGraph) AddNode(name, description string, fn NodeFunc) error {
	if name == "" || name == END {
		return fmt.Errorf("%w: %q", ErrInvalidNodeName, name)
	}
	if fn == nil {
		return fmt.Errorf("node %s: function must not be nil", name)
	}
	if _, exists := g.nodes[name]; exists {
		return &DuplicateNameError{Kind: "node", Name: name}
	}
	g.nodes[name] = Node{Name: name, Description: description, Function: fn}
	g.nodeOrder = append(g.nodeOrder, name)
	return nil
}

// SetEntryPoint sets the first node to run.
func (g *StateGraph) SetEntryPoint(name string) error {
	if _, ok := g.nodes[name]; !ok {
		return &UnknownStepError{Name: name}
	}
	g.entryPoint = name
	return nil
}

// AddEdge adds an unconditional edge. to may be END.
// Unknown endpoints are reported by Compile.
func (g *StateGraph) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{From: from, To: to})
}

// AddConditionalEdges adds a conditional edge from the given node.
// After from runs, router picks a key and mapping[key] is the next node (or END).
func (g *StateGraph) AddConditionalEdges(from string, router Router, mapping map[string]string) {
	g.conditionalEdges = append(g.conditionalEdges, ConditionalEdge{
		From:    from,
		Router:  router,
		Mapping: maps.Clone(mapping),
	})
}

// Structure is a comparable description of a compiled graph.
type Structure struct {
	EntryPoint  string
	Nodes       []string
	Edges       []Edge
	Conditional map[string]map[string]string
}

// CompileOption configures the Runnable produced by Compile.
type CompileOption func(*compileOptions)

type compileOptions struct {
	checkpointer store.CheckpointStore
	maxSteps     int
	logger       log.Logger
	listeners    []NodeListener
}

// WithCheckpointer persists the state of every run that carries a thread id.
func WithCheckpointer(cp store.CheckpointStore) CompileOption {
	return func(o *compileOptions) {
		o.checkpointer = cp
	}
}

// WithMaxSteps bounds the number of node executions per run. 0 means unlimited.
func WithMaxSteps(n int) CompileOption {
	return func(o *compileOptions) {
		o.maxSteps = n
	}
}

// WithLogger sets the logger used by the executor.
func WithLogger(logger log.Logger) CompileOption {
	return func(o *compileOptions) {
		o.logger = logger
	}
}

// WithListeners registers listeners notified around every node execution.
func WithListeners(listeners ...NodeListener) CompileOption {
	return func(o *compileOptions) {
		o.listeners = append(o.listeners, listeners...)
	}
}

// Compile validates the graph and returns an executable snapshot of it.
// Every structural defect is reported in a single *GraphValidationError.
func (g *StateGraph) Compile(opts ...CompileOption) (*Runnable, error) {
	if errs := g.validate(); len(errs) > 0 {
		return nil, &GraphValidationError{Errs: errs}
	}

	o := compileOptions{logger: &log.NoOpLogger{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxSteps < 0 {
		return nil, fmt.Errorf("max steps must not be negative: %d", o.maxSteps)
	}

	r := &Runnable{
		schema:       g.schema.clone(),
		nodes:        maps.Clone(g.nodes),
		edges:        make(map[string]string, len(g.edges)),
		conditional:  make(map[string]ConditionalEdge, len(g.conditionalEdges)),
		entryPoint:   g.entryPoint,
		checkpointer: o.checkpointer,
		maxSteps:     o.maxSteps,
		logger:       o.logger,
		listeners:    slices.Clone(o.listeners),
	}
	for _, e := range g.edges {
		r.edges[e.From] = e.To
	}
	for _, ce := range g.conditionalEdges {
		ce.Mapping = maps.Clone(ce.Mapping)
		r.conditional[ce.From] = ce
	}

	if l, ok := o.checkpointer.(store.Locker); ok {
		r.locker = l
	} else {
		r.locker = &store.KeyedMutex{}
	}

	r.structure = g.structure()
	return r, nil
}

func (g *StateGraph) validate() []error {
	var errs []error

	if g.entryPoint == "" {
		errs = append(errs, ErrEntryPointNotSet)
	}

	known := func(name string) bool {
		_, ok := g.nodes[name]
		return ok
	}

	outgoing := make(map[string]int, len(g.nodes))
	for _, e := range g.edges {
		if !known(e.From) {
			errs = append(errs, &UnknownStepError{Name: e.From})
		} else {
			outgoing[e.From]++
		}
		if e.To != END && !known(e.To) {
			errs = append(errs, &UnknownStepError{Name: e.To})
		}
	}
	for _, ce := range g.conditionalEdges {
		if !known(ce.From) {
			errs = append(errs, &UnknownStepError{Name: ce.From})
		} else {
			outgoing[ce.From]++
		}
		if ce.Router == nil {
			errs = append(errs, fmt.Errorf("conditional edge from %s: router must not be nil", ce.From))
		}
		for _, key := range slices.Sorted(maps.Keys(ce.Mapping)) {
			if dest := ce.Mapping[key]; dest != END && !known(dest) {
				errs = append(errs, &UnknownStepError{Name: dest})
			}
		}
	}

	names := slices.Sorted(maps.Keys(g.nodes))
	for _, name := range names {
		switch n := outgoing[name]; {
		case n == 0:
			errs = append(errs, fmt.Errorf("%w: %s", ErrNoOutgoingEdge, name))
		case n > 1:
			errs = append(errs, fmt.Errorf("%w: %s", ErrAmbiguousEdges, name))
		}
	}

	if known(g.entryPoint) {
		reached := g.reachable()
		for _, name := range names {
			if !reached[name] {
				errs = append(errs, fmt.Errorf("%w: %s", ErrUnreachableNode, name))
			}
		}
	}

	return errs
}

// reachable walks the graph from the entry point. A conditional edge without a
// mapping may lead anywhere, so it marks every node reachable.
func (g *StateGraph) reachable() map[string]bool {
	successors := make(map[string][]string, len(g.nodes))
	for _, e := range g.edges {
		successors[e.From] = append(successors[e.From], e.To)
	}
	for _, ce := range g.conditionalEdges {
		if ce.Mapping == nil {
			successors[ce.From] = append(successors[ce.From], g.nodeOrder...)
			continue
		}
		for _, dest := range ce.Mapping {
			successors[ce.From] = append(successors[ce.From], dest)
		}
	}

	reached := map[string]bool{g.entryPoint: true}
	queue := []string{g.entryPoint}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range successors[current] {
			if next == END || reached[next] {
				continue
			}
			reached[next] = true
			queue = append(queue, next)
		}
	}
	return reached
}

func (g *StateGraph) structure() Structure {
	s := Structure{
		EntryPoint:  g.entryPoint,
		Nodes:       slices.Sorted(maps.Keys(g.nodes)),
		Edges:       slices.Clone(g.edges),
		Conditional: make(map[string]map[string]string, len(g.conditionalEdges)),
	}
	sort.Slice(s.Edges, func(i, j int) bool {
		if s.Edges[i].From != s.Edges[j].From {
			return s.Edges[i].From < s.Edges[j].From
		}
		return s.Edges[i].To < s.Edges[j].To
	})
	for _, ce := range g.conditionalEdges {
		s.Conditional[ce.From] = maps.Clone(ce.Mapping)
	}
	return s
}
