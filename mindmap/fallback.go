package mindmap

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/andrewpaige1/mindmap-api/models"
)

const (
	FallbackTitle        = "Mind Map (Generated Locally)"
	FallbackDescription  = "This mind map was generated locally due to API issues."
	fallbackRootID       = "root"
	fallbackRelationship = "relates to"
	maxFallbackNodes     = 10
	maxRootLabel         = 50
	maxNodeLabel         = 100
)

var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// GenerateFallback builds a star shaped mind map straight from text: the
// first line becomes the root and up to ten sentences hang off it. It is
// deterministic and accepts any input, including "".
func GenerateFallback(text string) *models.MindMap {
	m := models.NewMindMap(FallbackTitle, FallbackDescription)

	rootLabel := truncate(firstLine(text), maxRootLabel)
	m.AddNode(models.MindMapNode{
		ID:       fallbackRootID,
		Label:    rootLabel,
		Category: models.CategoryRoot,
		Tooltip:  "Root concept",
		Level:    0,
	})
	m.RootNodeID = fallbackRootID

	counter := 1
	taken := 0
	for _, sentence := range sentenceBoundary.Split(text, -1) {
		if taken == maxFallbackNodes {
			break
		}
		trimmed := strings.TrimSpace(sentence)
		if trimmed == "" {
			continue
		}
		taken++
		if trimmed == rootLabel {
			continue
		}

		id := "node" + strconv.Itoa(counter)
		counter++
		label := truncate(trimmed, maxNodeLabel)
		m.AddNode(models.MindMapNode{
			ID:       id,
			Label:    label,
			Category: classify(label),
			Tooltip:  "Related to " + rootLabel,
			Level:    1,
		})
		m.ConnectNodes(fallbackRootID, id, fallbackRelationship)
	}
	return m
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSuffix(line, "\r")
}

// truncate shortens s to limit runes, ending in "..." when cut.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}

// classify is a case sensitive keyword match; example wins over definition.
func classify(label string) string {
	switch {
	case containsAny(label, "example", "instance", "such as"):
		return models.CategoryExample
	case containsAny(label, "defined", "meaning", "refers to"):
		return models.CategoryDefinition
	default:
		return models.CategoryConcept
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
