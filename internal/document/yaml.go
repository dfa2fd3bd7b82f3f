package document

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const mergeTag = "!!merge"

// UnmarshalYAML decodes a YAML mapping, keeping key order.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}

	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}

	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping, got %s", node.Line, kindName(node.Kind))
	}

	*d = Document{values: make(map[string]any, len(node.Content)/2)}

	var merges []*yaml.Node

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		if isMergeKey(keyNode) {
			merges = append(merges, valueNode)
			continue
		}

		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}

		value, err := decodeValue(valueNode)
		if err != nil {
			return fmt.Errorf("key %q: %w", keyNode.Value, err)
		}

		d.Set(keyNode.Value, value)
	}

	// "<<" merge keys only contribute keys the mapping does not set itself.
	for _, m := range merges {
		if err := d.applyMergeKey(m); err != nil {
			return err
		}
	}

	return nil
}

func (d *Document) applyMergeKey(node *yaml.Node) error {
	sources := []*yaml.Node{node}
	if node.Kind == yaml.SequenceNode {
		sources = node.Content
	}

	for _, src := range sources {
		var sub Document
		if err := sub.UnmarshalYAML(src); err != nil {
			return fmt.Errorf("merge key: %w", err)
		}

		for k, v := range sub.All() {
			if !d.Has(k) {
				d.Set(k, v)
			}
		}
	}

	return nil
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Value == "<<" &&
		(n.Tag == "" || n.Tag == "!" || n.Tag == mergeTag)
}

func decodeValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return decodeValue(node.Alias)
	case yaml.MappingNode:
		sub := New()
		if err := sub.UnmarshalYAML(node); err != nil {
			return nil, err
		}

		return sub, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))

		for _, item := range node.Content {
			v, err := decodeValue(item)
			if err != nil {
				return nil, err
			}

			out = append(out, v)
		}

		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}

		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported node %s", node.Line, kindName(node.Kind))
	}
}

// MarshalYAML encodes the document as a YAML mapping in key order.
func (d *Document) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for k, v := range d.All() {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}

		valueNode, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}

		node.Content = append(node.Content, keyNode, valueNode)
	}

	return node, nil
}

func encodeValue(v any) (*yaml.Node, error) {
	switch tv := v.(type) {
	case *Document:
		n, err := tv.MarshalYAML()
		if err != nil {
			return nil, err
		}

		return n.(*yaml.Node), nil
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}

		for _, item := range tv {
			n, err := encodeValue(item)
			if err != nil {
				return nil, err
			}

			seq.Content = append(seq.Content, n)
		}

		return seq, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, err
		}

		return n, nil
	}
}

// DecodeAll reads every YAML document in r, in stream order. Empty documents
// are skipped; a document that is not a mapping is an error.
func DecodeAll(r io.Reader) ([]*Document, error) {
	dec := yaml.NewDecoder(r)

	var docs []*Document

	for i := 0; ; i++ {
		var node yaml.Node

		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}

		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML document %d: %w", i, err)
		}

		if isEmpty(&node) {
			continue
		}

		doc := New()
		if err := doc.UnmarshalYAML(&node); err != nil {
			return nil, fmt.Errorf("YAML document %d: %w", i, err)
		}

		docs = append(docs, doc)
	}
}

func isEmpty(node *yaml.Node) bool {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return true
		}

		node = node.Content[0]
	}

	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
