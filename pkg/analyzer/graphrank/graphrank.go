// Package graphrank computes call-graph centrality over an architecture
// map: PageRank plus in/out degree per function. This is the data behind
// heatmap-style views, where heavily-referenced functions light up.
package graphrank

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/codelantern/lantern/pkg/analyzer/archmap"
)

const (
	damping   = 0.85
	tolerance = 1e-6
)

// FunctionRank is one function's centrality in the call graph.
type FunctionRank struct {
	FunctionName string  `json:"functionName"`
	FilePath     string  `json:"filePath"`
	PageRank     float64 `json:"pageRank"`
	InDegree     int     `json:"inDegree"`
	OutDegree    int     `json:"outDegree"`
}

// Ranking is the call-graph centrality result, sorted by PageRank
// descending with name as the deterministic tie-break.
type Ranking struct {
	Functions  []FunctionRank `json:"functions"`
	TotalEdges int            `json:"totalEdges"`
}

// Rank builds the directed call graph from resolved calls (same-file and
// cross-file alike) and scores every function. Unresolved bare names have
// no node and contribute no edges.
func Rank(m *archmap.Map) *Ranking {
	ranking := &Ranking{Functions: []FunctionRank{}}
	if m == nil {
		return ranking
	}

	type nodeInfo struct {
		id   int64
		file string
	}
	nodes := make(map[string]nodeInfo)
	order := []string{}

	g := simple.NewDirectedGraph()
	for _, file := range m.Files {
		for _, fn := range file.Functions {
			if _, ok := nodes[fn.FunctionName]; ok {
				continue
			}
			id := int64(len(order))
			nodes[fn.FunctionName] = nodeInfo{id: id, file: file.FilePath}
			order = append(order, fn.FunctionName)
			g.AddNode(simple.Node(id))
		}
	}
	if len(order) == 0 {
		return ranking
	}

	for _, file := range m.Files {
		for _, fn := range file.Functions {
			from := nodes[fn.FunctionName]
			for _, call := range fn.Calls {
				to, ok := nodes[call]
				if !ok || to.id == from.id {
					continue
				}
				if g.HasEdgeFromTo(from.id, to.id) {
					continue
				}
				g.SetEdge(simple.Edge{F: simple.Node(from.id), T: simple.Node(to.id)})
				ranking.TotalEdges++
			}
		}
	}

	scores := network.PageRank(g, damping, tolerance)

	for _, name := range order {
		info := nodes[name]
		ranking.Functions = append(ranking.Functions, FunctionRank{
			FunctionName: name,
			FilePath:     info.file,
			PageRank:     scores[info.id],
			InDegree:     g.To(info.id).Len(),
			OutDegree:    g.From(info.id).Len(),
		})
	}

	sort.SliceStable(ranking.Functions, func(i, j int) bool {
		if ranking.Functions[i].PageRank != ranking.Functions[j].PageRank {
			return ranking.Functions[i].PageRank > ranking.Functions[j].PageRank
		}
		return ranking.Functions[i].FunctionName < ranking.Functions[j].FunctionName
	})

	return ranking
}

// Top returns the n highest-ranked functions.
func (r *Ranking) Top(n int) []FunctionRank {
	if n > len(r.Functions) {
		n = len(r.Functions)
	}
	return r.Functions[:n]
}
