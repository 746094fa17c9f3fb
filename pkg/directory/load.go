package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	merrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
)

// entry is the on-disk shape of a directory record, keyed by full name.
type entry struct {
	Email string `json:"email" yaml:"email"`
	Role  string `json:"role" yaml:"role"`
}

// Load reads a people directory from a JSON or YAML file and builds an
// index with the given ambiguity policy. The file maps full names to
// {email, role}. File order is preserved so AmbiguityFirstMatch is
// deterministic. Any failure wraps ErrDirectoryInvalid: a pipeline run
// must not start without a usable directory.
func Load(path string, policy AmbiguityPolicy) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", path, err, merrors.ErrDirectoryInvalid)
	}

	var people []Person
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		people, err = parseYAML(data)
	default:
		people, err = parseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, merrors.ErrDirectoryInvalid)
	}
	if len(people) == 0 {
		return nil, fmt.Errorf("%s: no people: %w", path, merrors.ErrDirectoryInvalid)
	}

	return NewIndex(people, policy), nil
}

// parseJSON decodes a {"Full Name": {"email": ..., "role": ...}} object.
// A token-level walk keeps the file's key order, which encoding/json map
// decoding would discard.
func parseJSON(data []byte) ([]Person, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var people []Person
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", keyTok)
		}

		var e entry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("entry %q: %v", name, err)
		}
		people = append(people, Person{Name: name, Email: e.Email, Role: e.Role})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return people, nil
}

// parseYAML decodes the same mapping from YAML. yaml.Node keeps mapping
// order, unlike decoding into a map.
func parseYAML(data []byte) ([]Person, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected YAML mapping at top level")
	}

	var people []Person
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		var e entry
		if err := root.Content[i+1].Decode(&e); err != nil {
			return nil, fmt.Errorf("entry %q: %v", name, err)
		}
		people = append(people, Person{Name: name, Email: e.Email, Role: e.Role})
	}
	return people, nil
}
