package remote

import "encoding/json"

// insertPath places a leaf value into a nested object tree, creating
// intermediate objects along the way.
func insertPath(tree map[string]any, segments []string, value json.RawMessage) {
	if len(segments) == 1 {
		tree[segments[0]] = value
		return
	}
	child, ok := tree[segments[0]].(map[string]any)
	if !ok {
		child = map[string]any{}
		tree[segments[0]] = child
	}
	insertPath(child, segments[1:], value)
}

// mergeLeafObject folds the fields of a JSON object stored at a path
// into the tree assembled from that path's descendants. Descendant
// entries win on key conflicts. Returns false when raw is not an object.
func mergeLeafObject(tree map[string]any, raw []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	for k, v := range fields {
		if _, taken := tree[k]; !taken {
			tree[k] = v
		}
	}
	return true
}
