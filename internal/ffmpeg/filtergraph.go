package ffmpeg

import (
	"fmt"
	"strings"
)

// Graph builds an ffmpeg -filter_complex expression from typed nodes instead
// of string concatenation, so label plumbing mistakes surface before the
// binary ever runs.
type Graph struct {
	nodes []graphNode
}

type graphNode struct {
	filter  string
	inputs  []string
	outputs []string
}

// Node appends one filter with its input and output labels. Input labels are
// either stream pads like "0:v" or the output label of an earlier node.
func (g *Graph) Node(filter string, inputs []string, outputs ...string) {
	g.nodes = append(g.nodes, graphNode{filter: filter, inputs: inputs, outputs: outputs})
}

// Empty reports whether the graph has no nodes.
func (g *Graph) Empty() bool {
	return len(g.nodes) == 0
}

// Render serializes the graph to the -filter_complex textual form.
func (g *Graph) Render() string {
	parts := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		var sb strings.Builder
		for _, in := range n.inputs {
			sb.WriteString("[" + in + "]")
		}
		sb.WriteString(n.filter)
		for _, out := range n.outputs {
			sb.WriteString("[" + out + "]")
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, ";")
}

// Validate checks the label plumbing: every internal input label must have
// been produced by an earlier node and consumed at most once, and no label
// may be produced twice. Stream pads (labels containing a colon) come from
// the command's -i inputs and are exempt.
func (g *Graph) Validate() error {
	produced := map[string]bool{} // label -> still available
	for i, n := range g.nodes {
		for _, in := range n.inputs {
			if strings.Contains(in, ":") {
				continue
			}
			avail, ok := produced[in]
			if !ok {
				return fmt.Errorf("node %d (%s) reads label %q before any node produces it", i, n.filter, in)
			}
			if !avail {
				return fmt.Errorf("node %d (%s) reads label %q a second time", i, n.filter, in)
			}
			produced[in] = false
		}
		for _, out := range n.outputs {
			if _, ok := produced[out]; ok {
				return fmt.Errorf("node %d (%s) produces duplicate label %q", i, n.filter, out)
			}
			produced[out] = true
		}
	}
	return nil
}

// Unconsumed returns the labels produced but never read, in production
// order. For a well-formed composition graph these are exactly the labels to
// -map.
func (g *Graph) Unconsumed() []string {
	consumed := map[string]bool{}
	for _, n := range g.nodes {
		for _, in := range n.inputs {
			consumed[in] = true
		}
	}

	var out []string
	for _, n := range g.nodes {
		for _, label := range n.outputs {
			if !consumed[label] {
				out = append(out, label)
			}
		}
	}
	return out
}
