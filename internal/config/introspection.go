package config

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// GetKnownKeys returns all valid configuration keys based on the schema
func GetKnownKeys() map[string]bool {
	known := make(map[string]bool)
	addKnownKeysByType("", reflect.TypeOf(ConfigSchema{}), known)
	return known
}

// addKnownKeysByType recursively adds keys by examining the struct type
func addKnownKeysByType(prefix string, t reflect.Type, known map[string]bool) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		// Convert the key to lowercase since viper lowercases all keys
		key := strings.ToLower(tag)
		if prefix != "" {
			key = prefix + "." + key
		}
		known[key] = true

		switch field.Type.Kind() {
		case reflect.Struct:
			addKnownKeysByType(key, field.Type, known)
		case reflect.Map:
			// For maps of structs, add their fields under a wildcard
			if field.Type.Elem().Kind() == reflect.Struct {
				addKnownKeysByType(key+".*", field.Type.Elem(), known)
			} else {
				known[key+".*"] = true
			}
		}
	}
}

// matchesWildcard checks if a key matches a wildcard pattern
func matchesWildcard(pattern, key string) bool {
	patternParts := strings.Split(strings.ToLower(pattern), ".")
	keyParts := strings.Split(strings.ToLower(key), ".")

	// Must have same number of parts
	if len(patternParts) != len(keyParts) {
		return false
	}

	for i := range patternParts {
		if patternParts[i] != "*" && patternParts[i] != keyParts[i] {
			return false
		}
	}
	return true
}

// IsKnownKey checks if a key is known, including wildcard matches
func IsKnownKey(known map[string]bool, key string) bool {
	if known[strings.ToLower(key)] {
		return true
	}

	for pattern := range known {
		if strings.Contains(pattern, "*") && matchesWildcard(pattern, key) {
			return true
		}
	}
	return false
}

// PrintConfig writes the configuration as YAML. With includeSources each
// value carries a comment naming the file, variable or flag it came from. A
// non-empty prefix such as "models.claude" limits the output to that subtree.
func (s *ConfigSchema) PrintConfig(w io.Writer, includeSources bool, prefix string) error {
	node := s.toNode(reflect.ValueOf(*s), "", includeSources)
	if prefix != "" {
		node = findNode(node, strings.Split(prefix, "."))
		if node == nil {
			return fmt.Errorf("no configuration under %q", prefix)
		}
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{node}}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return enc.Close()
}

func findNode(node *yaml.Node, path []string) *yaml.Node {
	for _, part := range path {
		if node.Kind != yaml.MappingNode {
			return nil
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if strings.EqualFold(node.Content[i].Value, part) {
				next = node.Content[i+1]
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

func (s *ConfigSchema) toNode(v reflect.Value, path string, includeSources bool) *yaml.Node {
	switch v.Kind() {
	case reflect.Struct:
		node := &yaml.Node{Kind: yaml.MappingNode}
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			tag := field.Tag.Get("mapstructure")
			if !field.IsExported() || tag == "" {
				continue
			}
			fieldValue := v.Field(i)
			if fieldValue.IsZero() {
				continue
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: tag},
				s.toNode(fieldValue, joinKey(path, tag), includeSources),
			)
		}
		return node

	case reflect.Map:
		node := &yaml.Node{Kind: yaml.MappingNode}
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: k},
				s.toNode(v.MapIndex(reflect.ValueOf(k)), joinKey(path, k), includeSources),
			)
		}
		return node

	default:
		node := &yaml.Node{}
		if isSecretKey(path) {
			node.SetString("[REDACTED]")
		} else if err := node.Encode(v.Interface()); err != nil {
			node.SetString(fmt.Sprint(v.Interface()))
		}
		if includeSources {
			node.LineComment = "# (" + s.sourceOf(path) + ")"
		}
		return node
	}
}

func (s *ConfigSchema) sourceOf(path string) string {
	if sources, ok := s.sources[strings.ToLower(path)]; ok && len(sources) > 0 {
		return sources[len(sources)-1].source
	}
	return "default"
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func isSecretKey(key string) bool {
	last := strings.ToLower(key)
	if i := strings.LastIndex(last, "."); i >= 0 {
		last = last[i+1:]
	}
	return strings.Contains(last, "key") ||
		strings.Contains(last, "secret") ||
		strings.Contains(last, "password")
}
