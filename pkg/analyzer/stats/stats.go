// Package stats derives project summary statistics from an architecture
// map. Pure reducer: total over any valid map, including the empty one.
package stats

import (
	"math"
	"path/filepath"

	"github.com/codelantern/lantern/pkg/analyzer/archmap"
)

// Stats is the aggregated project summary.
type Stats struct {
	Files      FileStats       `json:"file_stats"`
	Functions  FunctionStats   `json:"function_stats"`
	Languages  LanguageStats   `json:"language_stats"`
	Complexity ComplexityStats `json:"complexity_metrics"`
}

// FileStats summarizes the file population.
type FileStats struct {
	TotalFiles           int            `json:"total_files"`
	FileExtensions       map[string]int `json:"file_extensions"`
	EstimatedLinesOfCode int            `json:"estimated_lines_of_code"`
}

// FunctionStats summarizes functions and their complexity.
type FunctionStats struct {
	TotalFunctions     int     `json:"total_functions"`
	TotalFunctionCalls int     `json:"total_function_calls"`
	AverageComplexity  float64 `json:"average_complexity"`
	MaxComplexity      int     `json:"max_complexity"`
	FunctionsPerFile   float64 `json:"functions_per_file"`
}

// LanguageStats summarizes the language mix.
type LanguageStats struct {
	Languages           map[string]int     `json:"languages"`
	LanguagePercentages map[string]float64 `json:"language_percentages"`
	PrimaryLanguage     string             `json:"primary_language"`
}

// ComplexityStats carries the derived health and category metrics.
type ComplexityStats struct {
	CodeHealthScore        int    `json:"code_health_score"`
	ProjectSize            string `json:"project_size"`
	ArchitectureComplexity string `json:"architecture_complexity"`
}

// displayNames maps the analyzer's language tags to display names.
var displayNames = map[string]string{
	"python":     "Python",
	"javascript": "JavaScript",
	"typescript": "TypeScript",
	"java":       "Java",
	"cpp":        "C++",
	"rust":       "Rust",
}

// Aggregate reduces an architecture map to project statistics.
func Aggregate(m *archmap.Map) *Stats {
	s := &Stats{
		Files: FileStats{
			FileExtensions: make(map[string]int),
		},
		Languages: LanguageStats{
			Languages:           make(map[string]int),
			LanguagePercentages: make(map[string]float64),
			PrimaryLanguage:     "Unknown",
		},
	}
	if m == nil {
		s.Complexity = deriveComplexity(0, 0, 0, s.Languages.Languages)
		return s
	}

	totalCalls := 0
	complexitySum := 0
	maxComplexity := 0

	for _, file := range m.Files {
		s.Files.TotalFiles++
		s.Files.EstimatedLinesOfCode += file.TotalLines

		if ext := filepath.Ext(file.FilePath); ext != "" {
			s.Files.FileExtensions[ext]++
		}
		if name, ok := displayNames[file.Language]; ok {
			s.Languages.Languages[name]++
		}

		s.Functions.TotalFunctions += len(file.Functions)
		for _, fn := range file.Functions {
			totalCalls += len(fn.Calls)
			complexitySum += fn.Complexity
			if fn.Complexity > maxComplexity {
				maxComplexity = fn.Complexity
			}
		}
	}

	s.Functions.TotalFunctionCalls = totalCalls
	s.Functions.MaxComplexity = maxComplexity

	avgComplexity := 0.0
	if s.Functions.TotalFunctions > 0 {
		avgComplexity = float64(complexitySum) / float64(s.Functions.TotalFunctions)
	}
	s.Functions.AverageComplexity = round2(avgComplexity)
	if s.Files.TotalFiles > 0 {
		s.Functions.FunctionsPerFile = round2(float64(s.Functions.TotalFunctions) / float64(s.Files.TotalFiles))
	}

	totalLanguageFiles := 0
	for _, count := range s.Languages.Languages {
		totalLanguageFiles += count
	}
	if totalLanguageFiles > 0 {
		for name, count := range s.Languages.Languages {
			s.Languages.LanguagePercentages[name] = round1(float64(count) / float64(totalLanguageFiles) * 100)
		}
		s.Languages.PrimaryLanguage = primaryLanguage(s.Languages.Languages)
	}

	s.Complexity = deriveComplexity(s.Files.TotalFiles, s.Functions.TotalFunctions, avgComplexity, s.Languages.Languages)
	return s
}

// primaryLanguage picks the language with the most files, breaking count
// ties by name so the result is deterministic.
func primaryLanguage(languages map[string]int) string {
	best := ""
	bestCount := -1
	for name, count := range languages {
		if count > bestCount || (count == bestCount && name < best) {
			best = name
			bestCount = count
		}
	}
	return best
}

func deriveComplexity(totalFiles, totalFunctions int, avgComplexity float64, languages map[string]int) ComplexityStats {
	return ComplexityStats{
		CodeHealthScore:        healthScore(totalFiles, totalFunctions, avgComplexity, languages),
		ProjectSize:            projectSize(totalFiles, totalFunctions),
		ArchitectureComplexity: architectureComplexity(avgComplexity),
	}
}

// healthScore computes the 0-100 health score. The constants are fixed and
// documented behavior, not tunables.
func healthScore(totalFiles, totalFunctions int, avgComplexity float64, languages map[string]int) int {
	score := 100

	switch {
	case totalFiles < 3:
		score -= 20
	case totalFiles > 100:
		score -= 15
	case totalFiles > 50:
		score -= 10
	}

	switch {
	case avgComplexity > 15:
		score -= 40
	case avgComplexity > 10:
		score -= 30
	case avgComplexity > 7:
		score -= 20
	case avgComplexity > 5:
		score -= 10
	case avgComplexity > 3:
		score -= 5
	}

	if totalFiles > 0 {
		perFile := float64(totalFunctions) / float64(totalFiles)
		switch {
		case perFile < 1:
			score -= 15
		case perFile > 15:
			score -= 20
		case perFile > 10:
			score -= 10
		case perFile < 2 || perFile > 8:
			score -= 5
		}
	}

	if len(languages) > 2 {
		score += 3
	}

	return max(0, min(100, score))
}

func projectSize(totalFiles, totalFunctions int) string {
	switch {
	case totalFiles <= 5 && totalFunctions <= 20:
		return "Small"
	case totalFiles <= 15 && totalFunctions <= 60:
		return "Medium"
	case totalFiles <= 30 && totalFunctions <= 150:
		return "Large"
	default:
		return "Enterprise"
	}
}

func architectureComplexity(avgComplexity float64) string {
	switch {
	case avgComplexity <= 3:
		return "Simple"
	case avgComplexity <= 6:
		return "Moderate"
	case avgComplexity <= 10:
		return "Complex"
	default:
		return "Highly Complex"
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
