package mindmap

import "strings"

const promptFormat = `Return a single JSON object of this shape:
{"title": string, "description": string,
 "nodes": [{"id": string, "label": string, "category": string, "tooltip": string, "level": integer,
            "connections": [{"target": node id, "relationship": string}]}],
 "connections": [{"source": node id, "target": node id, "relationship": string}]}
Mark exactly one node with category 'root' and give it level 0.`

// BuildPrompt returns the instruction sent to the model for text. The text is
// embedded verbatim; callers that need truncation must do it beforehand.
func BuildPrompt(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 512)
	b.WriteString("Create a detailed mind map from the following text. ")
	b.WriteString("Format the response as JSON with nodes and connections. ")
	b.WriteString("Categorize each node as 'root', 'concept', 'example', or 'definition'.\n")
	b.WriteString(promptFormat)
	b.WriteString("\nText: ")
	b.WriteString(text)
	return b.String()
}
