package graphset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Output file names produced by a conversion. Gaston consumes the gSpan
// format, so it gets the same content under its own name.
const (
	GSpanFile    = "gspan.txt"
	GastonFile   = "gaston.txt"
	FSGFile      = "fsg.txt"
	LabelMapFile = "node_labels.txt"
)

// LabelMap assigns dense integer ids to node labels. Labels are sorted
// before assignment so the same dataset always maps the same way.
type LabelMap struct {
	labels []string
	index  map[string]int
}

// BuildLabelMap collects every node label across the dataset.
func BuildLabelMap(graphs []Graph) *LabelMap {
	set := make(map[string]struct{})
	for _, g := range graphs {
		for _, label := range g.Nodes {
			set[label] = struct{}{}
		}
	}

	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	return &LabelMap{labels: labels, index: index}
}

// Index returns the integer id of a node label.
func (m *LabelMap) Index(label string) (int, bool) {
	i, ok := m.index[label]
	return i, ok
}

// Len returns the number of distinct labels.
func (m *LabelMap) Len() int {
	return len(m.labels)
}

// Write emits the mapping as "id<TAB>label" lines in id order, the
// reference file readers use to translate mined patterns back.
func (m *LabelMap) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i, label := range m.labels {
		if _, err := fmt.Fprintf(bw, "%d\t%s\n", i, label); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// EdgeLabelCount returns the number of distinct edge labels in the dataset.
// Edge labels are already integers in the raw format and pass through
// conversion untouched; the count is reported for dataset statistics only.
func EdgeLabelCount(graphs []Graph) int {
	set := make(map[int]struct{})
	for _, g := range graphs {
		for _, e := range g.Edges {
			set[e.Label] = struct{}{}
		}
	}
	return len(set)
}

// WriteGSpan emits the gSpan/Gaston transaction format:
//
//	t # <index>
//	v <node id> <label id>
//	e <src> <dst> <edge label>
//
// Graphs are numbered by position, not by their raw dataset id; the miners
// expect a dense sequence.
func WriteGSpan(w io.Writer, graphs []Graph, m *LabelMap) error {
	return writeTransactions(w, graphs, m, "e")
}

// WriteFSG emits the FSG variant, which marks its undirected edges with
// "u" instead of "e".
func WriteFSG(w io.Writer, graphs []Graph, m *LabelMap) error {
	return writeTransactions(w, graphs, m, "u")
}

func writeTransactions(w io.Writer, graphs []Graph, m *LabelMap, edgeTag string) error {
	bw := bufio.NewWriter(w)

	for idx, g := range graphs {
		if _, err := fmt.Fprintf(bw, "t # %d\n", idx); err != nil {
			return err
		}

		for nodeID, label := range g.Nodes {
			labelID, ok := m.Index(label)
			if !ok {
				return fmt.Errorf("graph #%s: node label %q missing from label map", g.ID, label)
			}
			if _, err := fmt.Fprintf(bw, "v %d %d\n", nodeID, labelID); err != nil {
				return err
			}
		}

		for _, e := range g.Edges {
			if _, err := fmt.Fprintf(bw, "%s %d %d %d\n", edgeTag, e.Src, e.Dst, e.Label); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// ConvertedFiles lists the artifacts a directory conversion produced.
type ConvertedFiles struct {
	GSpan    string
	Gaston   string
	FSG      string
	LabelMap string
}

// WriteFiles converts the dataset into every miner format plus the label
// mapping, all inside dir. The directory is created when missing.
func WriteFiles(dir string, graphs []Graph, m *LabelMap) (*ConvertedFiles, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	files := &ConvertedFiles{
		GSpan:    filepath.Join(dir, GSpanFile),
		Gaston:   filepath.Join(dir, GastonFile),
		FSG:      filepath.Join(dir, FSGFile),
		LabelMap: filepath.Join(dir, LabelMapFile),
	}

	writers := []struct {
		path  string
		write func(io.Writer) error
	}{
		{files.GSpan, func(w io.Writer) error { return WriteGSpan(w, graphs, m) }},
		{files.Gaston, func(w io.Writer) error { return WriteGSpan(w, graphs, m) }},
		{files.FSG, func(w io.Writer) error { return WriteFSG(w, graphs, m) }},
		{files.LabelMap, func(w io.Writer) error { return m.Write(w) }},
	}

	for _, item := range writers {
		if err := writeFileWith(item.path, item.write); err != nil {
			return nil, err
		}
	}

	return files, nil
}

func writeFileWith(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
