// Package graphset parses raw labeled-graph datasets and converts them into
// the input formats of the subgraph miners (gSpan, Gaston, FSG).
//
// The raw format is block-oriented:
//
//	#<graph id>
//	<number of nodes>
//	<node label>            (one per line)
//	<number of edges>
//	<src> <dst> <edge label> (one per line)
//
// Blank lines between blocks and after the header are tolerated.
package graphset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Edge is a labeled edge between two 0-based node ids of one graph.
type Edge struct {
	Src   int
	Dst   int
	Label int
}

// Graph is one labeled graph of a dataset. The node id of a label is its
// index in Nodes.
type Graph struct {
	ID    string
	Nodes []string
	Edges []Edge
}

// ParseFile parses a raw graph dataset from disk.
func ParseFile(path string) ([]Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening graph dataset %s: %w", path, err)
	}
	defer f.Close()

	graphs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("graph dataset %s: %w", path, err)
	}
	return graphs, nil
}

// Parse reads every graph block from the stream. Errors identify the
// offending 1-based line number.
func Parse(r io.Reader) ([]Graph, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	var graphs []Graph
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])

		// Content outside a graph block is skipped, matching the lax
		// raw format: only '#' opens a block.
		if !strings.HasPrefix(line, "#") {
			i++
			continue
		}

		graph, next, err := parseBlock(lines, i)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, graph)
		i = next
	}

	return graphs, nil
}

// parseBlock parses one graph starting at the '#' header on lines[start].
// Returns the graph and the index of the first line after the block.
func parseBlock(lines []string, start int) (Graph, int, error) {
	g := Graph{ID: strings.TrimSpace(lines[start])[1:]}
	i := skipBlank(lines, start+1)

	numNodes, err := intAt(lines, i, "node count")
	if err != nil {
		return Graph{}, 0, fmt.Errorf("graph #%s: %w", g.ID, err)
	}
	if numNodes < 0 {
		return Graph{}, 0, fmt.Errorf("graph #%s: negative node count at line %d", g.ID, i+1)
	}
	i++

	g.Nodes = make([]string, 0, numNodes)
	for n := 0; n < numNodes; n++ {
		if i >= len(lines) {
			return Graph{}, 0, fmt.Errorf("graph #%s: dataset ends inside node labels", g.ID)
		}
		label := strings.TrimSpace(lines[i])
		if label == "" {
			return Graph{}, 0, fmt.Errorf("graph #%s: blank node label at line %d", g.ID, i+1)
		}
		g.Nodes = append(g.Nodes, label)
		i++
	}

	numEdges, err := intAt(lines, i, "edge count")
	if err != nil {
		return Graph{}, 0, fmt.Errorf("graph #%s: %w", g.ID, err)
	}
	if numEdges < 0 {
		return Graph{}, 0, fmt.Errorf("graph #%s: negative edge count at line %d", g.ID, i+1)
	}
	i++

	g.Edges = make([]Edge, 0, numEdges)
	for n := 0; n < numEdges; n++ {
		if i >= len(lines) {
			return Graph{}, 0, fmt.Errorf("graph #%s: dataset ends inside edge list", g.ID)
		}
		edge, err := parseEdge(lines[i], numNodes)
		if err != nil {
			return Graph{}, 0, fmt.Errorf("graph #%s: line %d: %w", g.ID, i+1, err)
		}
		g.Edges = append(g.Edges, edge)
		i++
	}

	return g, i, nil
}

// parseEdge reads "src dst label" and checks both endpoints against the
// node count, so format confusion fails here instead of inside a miner.
func parseEdge(line string, numNodes int) (Edge, error) {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return Edge{}, fmt.Errorf("expected 'src dst label', got %q", strings.TrimSpace(line))
	}

	src, err := strconv.Atoi(parts[0])
	if err != nil {
		return Edge{}, fmt.Errorf("invalid edge source %q", parts[0])
	}
	dst, err := strconv.Atoi(parts[1])
	if err != nil {
		return Edge{}, fmt.Errorf("invalid edge destination %q", parts[1])
	}
	label, err := strconv.Atoi(parts[2])
	if err != nil {
		return Edge{}, fmt.Errorf("invalid edge label %q", parts[2])
	}

	if src < 0 || src >= numNodes || dst < 0 || dst >= numNodes {
		return Edge{}, fmt.Errorf("edge %d->%d references a node outside 0..%d", src, dst, numNodes-1)
	}

	return Edge{Src: src, Dst: dst, Label: label}, nil
}

func skipBlank(lines []string, i int) int {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return i
}

func intAt(lines []string, i int, what string) (int, error) {
	if i >= len(lines) {
		return 0, fmt.Errorf("dataset ends where %s was expected", what)
	}
	v, err := strconv.Atoi(strings.TrimSpace(lines[i]))
	if err != nil {
		return 0, fmt.Errorf("expected %s at line %d, got %q", what, i+1, strings.TrimSpace(lines[i]))
	}
	return v, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading graph dataset: %w", err)
	}
	return lines, nil
}
