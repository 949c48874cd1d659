package archmap

// FunctionRecord is one extracted function or method.
type FunctionRecord struct {
	// FunctionName is the project-wide qualified id, "{filePath}-{name}".
	FunctionName string `json:"functionName"`
	// Name is the bare identifier as written in source.
	Name       string   `json:"name"`
	Line       int      `json:"line"`
	EndLine    int      `json:"endLine"`
	Args       []string `json:"args"`
	ReturnType string   `json:"returnType"`
	Complexity int      `json:"complexity"`
	// Calls holds resolved qualified ids or unresolved bare names,
	// deduplicated and sorted.
	Calls []string `json:"calls"`
}

// ClassRecord is a named type definition and the methods it owns.
type ClassRecord struct {
	Name    string   `json:"name"`
	Line    int      `json:"line"`
	Methods []string `json:"methods"`
}

// FileRecord is the per-file summary in the architecture map.
type FileRecord struct {
	FilePath       string           `json:"filePath"`
	Language       string           `json:"language"`
	Imports        []string         `json:"imports"`
	Functions      []FunctionRecord `json:"listOfFunctions"`
	Classes        []ClassRecord    `json:"classes"`
	TotalLines     int              `json:"totalLines"`
	TotalFunctions int              `json:"totalFunctions"`
}

// Edge is a resolved cross-file call.
type Edge struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	SourceFile string `json:"sourceFile"`
	TargetFile string `json:"targetFile"`
}

// Map is the terminal architecture-map structure. Files are sorted by path
// and functions by starting line, so marshaling the same tree twice yields
// byte-identical JSON.
type Map struct {
	Files          []FileRecord `json:"listOfFiles"`
	Edges          []Edge       `json:"edges"`
	TotalFiles     int          `json:"totalFiles"`
	TotalFunctions int          `json:"totalFunctions"`
	// FailedFiles lists files that were discovered but could not be
	// extracted (parse failure, timeout). Observability only; the map is
	// complete without them.
	FailedFiles []string `json:"failedFiles,omitempty"`
}

// File returns the record for a project-relative path, or nil.
func (m *Map) File(path string) *FileRecord {
	for i := range m.Files {
		if m.Files[i].FilePath == path {
			return &m.Files[i]
		}
	}
	return nil
}

// Function returns the record with the given qualified id, or nil.
func (m *Map) Function(qualifiedID string) *FunctionRecord {
	for i := range m.Files {
		for j := range m.Files[i].Functions {
			if m.Files[i].Functions[j].FunctionName == qualifiedID {
				return &m.Files[i].Functions[j]
			}
		}
	}
	return nil
}
