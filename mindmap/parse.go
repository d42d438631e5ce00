package mindmap

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/google/uuid"

	"github.com/andrewpaige1/mindmap-api/models"
)

const (
	DefaultTitle        = "Mind Map"
	DefaultDescription  = "Generated from text"
	DefaultLabel        = "Unnamed Node"
	DefaultRelationship = "related"
	DefaultLevel        = 1
)

// Parse decodes jsonText into a mind map, filling defaults for anything
// missing or oddly typed. It only reports false when jsonText is not valid
// JSON, or when anything but whitespace trails the value. A decodable value
// that is not an object yields an empty default map. Empty ids count as
// missing and get a fresh UUID.
func Parse(jsonText string) (*models.MindMap, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(jsonText)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	// only whitespace may follow the value
	var rest json.RawMessage
	if err := dec.Decode(&rest); err != io.EOF {
		return nil, false
	}

	obj, _ := v.(map[string]any)
	m := models.NewMindMap(
		stringOr(obj, "title", DefaultTitle),
		stringOr(obj, "description", DefaultDescription),
	)

	for _, raw := range arrayOf(obj, "nodes") {
		nodeObj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		node := parseNode(nodeObj)
		m.AddNode(node)
		if node.Category == models.CategoryRoot {
			m.RootNodeID = node.ID
		}
	}

	for _, raw := range arrayOf(obj, "connections") {
		conn, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		source := stringOr(conn, "source", "")
		target := stringOr(conn, "target", "")
		if source == "" || target == "" {
			continue
		}
		// unknown sources have nowhere to attach
		m.ConnectNodes(source, target, stringOr(conn, "relationship", DefaultRelationship))
	}
	return m, true
}

func parseNode(obj map[string]any) models.MindMapNode {
	node := models.MindMapNode{
		ID:          stringOr(obj, "id", ""),
		Label:       stringOr(obj, "label", DefaultLabel),
		Category:    stringOr(obj, "category", models.CategoryConcept),
		Tooltip:     stringOr(obj, "tooltip", ""),
		Level:       intOr(obj, "level", DefaultLevel),
		Connections: []models.MindMapEdge{},
	}
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	for _, raw := range arrayOf(obj, "connections") {
		conn, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		target := stringOr(conn, "target", "")
		if target == "" {
			continue
		}
		node.Connections = append(node.Connections, models.MindMapEdge{
			Target:       target,
			Relationship: stringOr(conn, "relationship", DefaultRelationship),
		})
	}
	return node
}

// scalar returns the textual form of a string, number or boolean field.
// Missing fields, null and nested objects or arrays count as absent.
func scalar(obj map[string]any, key string) (string, bool) {
	switch x := obj[key].(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

func stringOr(obj map[string]any, key, def string) string {
	if s, ok := scalar(obj, key); ok {
		return s
	}
	return def
}

// intOr accepts only integral JSON numbers; 1.5, "2" and the like fall back
// to def.
func intOr(obj map[string]any, key string, def int) int {
	n, ok := obj[key].(json.Number)
	if !ok {
		return def
	}
	i, err := strconv.ParseInt(n.String(), 10, 0)
	if err != nil {
		return def
	}
	return int(i)
}

func arrayOf(obj map[string]any, key string) []any {
	arr, _ := obj[key].([]any)
	return arr
}
