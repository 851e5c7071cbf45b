package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string
}

// DrawMermaid generates a Mermaid diagram representation of the compiled graph
func (r *Runnable) DrawMermaid() string {
	return r.DrawMermaidWithOptions(MermaidOptions{
		Direction: "TD",
	})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options.
// Conditional edges are drawn dashed and labelled with their routing key.
func (r *Runnable) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder
	s := r.structure

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	sb.WriteString("    START([\"START\"])\n")
	for _, name := range s.Nodes {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", name, name)
	}
	sb.WriteString("    END([\"END\"])\n")

	fmt.Fprintf(&sb, "    START --> %s\n", s.EntryPoint)
	for _, edge := range s.Edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", edge.From, edge.To)
	}

	for _, from := range slices.Sorted(maps.Keys(s.Conditional)) {
		mapping := s.Conditional[from]
		if mapping == nil {
			fmt.Fprintf(&sb, "    %s -.-> %s_condition((?))\n", from, from)
			fmt.Fprintf(&sb, "    style %s_condition fill:#FFFFE0,stroke:#333,stroke-dasharray: 5 5\n", from)
			continue
		}
		for _, key := range slices.Sorted(maps.Keys(mapping)) {
			fmt.Fprintf(&sb, "    %s -. %s .-> %s\n", from, key, mapping[key])
		}
	}

	sb.WriteString("    style START fill:#90EE90\n")
	sb.WriteString("    style END fill:#FFB6C1\n")
	fmt.Fprintf(&sb, "    style %s fill:#87CEEB\n", s.EntryPoint)

	return sb.String()
}
