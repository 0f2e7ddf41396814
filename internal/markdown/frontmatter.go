package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// yamlFormat pins parsing to yaml.v3 so documents decode with the same
// library that encodes them.
var yamlFormat = frontmatter.NewFormat(delimiter, delimiter, yaml.Unmarshal)

// Field is a single frontmatter entry. EncodeDocument keeps field order.
type Field struct {
	Key   string
	Value any
}

// ParseFrontMatter splits source into its metadata block and Markdown body.
// Documents without a header yield an empty map and the whole source as body.
func ParseFrontMatter(source []byte) (map[string]any, []byte, error) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta, yamlFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return meta, bytes.TrimSuffix(body, []byte("\n")), nil
}

// EncodeDocument serializes fields as a "---" delimited YAML header followed
// by body. Fields with nil values are skipped; callers decide what "empty"
// means before building the slice.
func EncodeDocument(fields []Field, body []byte) ([]byte, error) {
	header := &yaml.Node{Kind: yaml.MappingNode}
	for _, field := range fields {
		if field.Value == nil {
			continue
		}
		var value yaml.Node
		if err := value.Encode(field.Value); err != nil {
			return nil, fmt.Errorf("encode frontmatter %s: %w", field.Key, err)
		}
		header.Content = append(header.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: field.Key},
			&value,
		)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	if len(header.Content) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(header); err != nil {
			return nil, fmt.Errorf("encode frontmatter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode frontmatter: %w", err)
		}
	}
	buf.WriteString(delimiter + "\n")
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
