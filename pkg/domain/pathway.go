package domain

// Pathway is the immutable definition of a conversation flow.
// It is loaded once from the configuration store and safely shared by
// reference across sessions; nothing mutates it after Validate.
type Pathway struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`

	// EntryPoint is the node the call starts on. When empty, Validate
	// resolves it: a node flagged Start, else the first conversation node.
	EntryPoint string `json:"entry_point,omitempty" yaml:"entry_point,omitempty"`
}

// NodeByID returns the node with the given id, or nil.
func (p *Pathway) NodeByID(id string) *Node {
	for i := range p.Nodes {
		if p.Nodes[i].ID == id {
			return &p.Nodes[i]
		}
	}
	return nil
}

// OutgoingEdges returns the edges whose source is the given node, preserving
// declaration order. Order matters: the condition evaluator is first-wins.
func (p *Pathway) OutgoingEdges(nodeID string) []Edge {
	var out []Edge
	for _, e := range p.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks structural integrity and resolves the entry point in place.
//
// Missing edge endpoints and unreachable nodes are configuration smells, not
// fatal: they are returned as warnings so the host can log them and keep
// going. The only fatal condition is a pathway with no resolvable entry
// point, which returns ErrNoEntryPoint.
func (p *Pathway) Validate() ([]Warning, error) {
	var warnings []Warning

	ids := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		if ids[n.ID] {
			warnings = append(warnings, Warning{
				Code:   WarnDuplicateNode,
				NodeID: n.ID,
				Detail: "node id declared more than once; the first declaration wins",
			})
		}
		ids[n.ID] = true
	}

	for _, e := range p.Edges {
		if !ids[e.Source] {
			warnings = append(warnings, Warning{
				Code:   WarnDanglingEdge,
				NodeID: e.Source,
				Detail: "edge source references a node that does not exist",
			})
		}
		if !ids[e.Target] {
			warnings = append(warnings, Warning{
				Code:   WarnDanglingEdge,
				NodeID: e.Target,
				Detail: "edge target references a node that does not exist",
			})
		}
	}

	entry, err := p.resolveEntryPoint(ids)
	if err != nil {
		return warnings, err
	}
	p.EntryPoint = entry

	// Unreachable nodes are kept in the graph (a future edit may wire them)
	// but reported so authors notice.
	for id, reached := range p.reachableFrom(entry) {
		if !reached {
			warnings = append(warnings, Warning{
				Code:   WarnOrphanNode,
				NodeID: id,
				Detail: "node is not reachable from the entry point",
			})
		}
	}

	return warnings, nil
}

// resolveEntryPoint applies the precedence: explicit entry_point field, then a
// node flagged as start, then the first conversation node.
func (p *Pathway) resolveEntryPoint(ids map[string]bool) (string, error) {
	if p.EntryPoint != "" {
		if !ids[p.EntryPoint] {
			return "", &EntryPointError{PathwayID: p.ID, Detail: "entry_point references unknown node " + p.EntryPoint}
		}
		return p.EntryPoint, nil
	}
	for _, n := range p.Nodes {
		if n.Start {
			return n.ID, nil
		}
	}
	for _, n := range p.Nodes {
		if n.Kind == KindConversation {
			return n.ID, nil
		}
	}
	return "", &EntryPointError{PathwayID: p.ID, Detail: "no entry_point, start flag, or conversation node"}
}

func (p *Pathway) reachableFrom(entry string) map[string]bool {
	reached := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		reached[n.ID] = false
	}

	stack := []string{entry}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if done, ok := reached[id]; !ok || done {
			continue
		}
		reached[id] = true
		for _, e := range p.Edges {
			if e.Source == id {
				stack = append(stack, e.Target)
			}
		}
	}
	return reached
}
