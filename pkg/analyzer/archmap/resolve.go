package archmap

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// symbolTable indexes every extracted function by bare name. It lives only
// for the duration of one resolution pass. Candidate defining files are
// kept as bitmaps over the sorted file list, so the minimum set bit is the
// lexicographically-first path and the cross-file tie-break costs one
// bitmap lookup.
type symbolTable struct {
	files   []string
	fileIdx map[string]uint32
	byName  map[string]*nameEntry
}

type nameEntry struct {
	files *roaring.Bitmap
	// firstDef maps file index to the qualified id of the first definition
	// of the name in that file (by line; shadowing is not modeled).
	firstDef map[uint32]string
}

// buildSymbolTable indexes records already sorted by file path.
func buildSymbolTable(records []FileRecord) *symbolTable {
	st := &symbolTable{
		files:   make([]string, len(records)),
		fileIdx: make(map[string]uint32, len(records)),
		byName:  make(map[string]*nameEntry),
	}

	for i, rec := range records {
		idx := uint32(i)
		st.files[i] = rec.FilePath
		st.fileIdx[rec.FilePath] = idx

		for _, fn := range rec.Functions {
			entry := st.byName[fn.Name]
			if entry == nil {
				entry = &nameEntry{files: roaring.New(), firstDef: make(map[uint32]string)}
				st.byName[fn.Name] = entry
			}
			entry.files.Add(idx)
			if _, ok := entry.firstDef[idx]; !ok {
				entry.firstDef[idx] = fn.FunctionName
			}
		}
	}

	return st
}

// resolution is the outcome for one raw call name.
type resolution struct {
	ref        string // qualified id, or the bare name when unresolved
	targetFile string // defining file; empty when unresolved or same-file
}

// resolve maps a raw call name to its target. Same-file definitions win;
// otherwise the definition in the lexicographically-first file does. This
// is a deterministic approximation, not scope-aware resolution. A name
// with no candidate stays a bare reference; there is no error outcome.
func (st *symbolTable) resolve(name string, callerFile uint32) resolution {
	entry := st.byName[name]
	if entry == nil {
		return resolution{ref: name}
	}
	if entry.files.Contains(callerFile) {
		return resolution{ref: entry.firstDef[callerFile]}
	}
	idx := entry.files.Minimum()
	return resolution{ref: entry.firstDef[idx], targetFile: st.files[idx]}
}

// resolveCalls rewrites every function's raw call names in place and
// returns the cross-file edges, in file/function/call order.
func resolveCalls(records []FileRecord) []Edge {
	st := buildSymbolTable(records)
	edges := []Edge{}

	for i := range records {
		callerFile := st.fileIdx[records[i].FilePath]
		for j := range records[i].Functions {
			fn := &records[i].Functions[j]

			resolved := make([]string, 0, len(fn.Calls))
			seen := make(map[string]bool, len(fn.Calls))
			for _, raw := range fn.Calls {
				// A function's reference to its own name is recursion,
				// not an edge worth drawing.
				if raw == fn.Name {
					continue
				}
				r := st.resolve(raw, callerFile)
				if seen[r.ref] {
					continue
				}
				seen[r.ref] = true
				resolved = append(resolved, r.ref)

				if r.targetFile != "" {
					edges = append(edges, Edge{
						Source:     fn.FunctionName,
						Target:     r.ref,
						SourceFile: records[i].FilePath,
						TargetFile: r.targetFile,
					})
				}
			}
			sort.Strings(resolved)
			fn.Calls = resolved
		}
	}

	return edges
}
