package interop

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	nbt "github.com/starfederation/nbt-go"
)

// ToYAML encodes t as a YAML document. Compound keys keep their order and
// byte arrays become !!binary scalars.
func ToYAML(t nbt.Tag) ([]byte, error) {
	return yaml.Marshal(yamlNode(t))
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func intNode(n int64) *yaml.Node { return scalarNode("!!int", strconv.FormatInt(n, 10)) }

func floatNode(f float64, bits int) *yaml.Node {
	switch {
	case math.IsNaN(f):
		return scalarNode("!!float", ".nan")
	case math.IsInf(f, 1):
		return scalarNode("!!float", ".inf")
	case math.IsInf(f, -1):
		return scalarNode("!!float", "-.inf")
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return scalarNode("!!float", s)
}

func seqNode[E any, S ~[]E](items S, node func(E) *yaml.Node) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	for _, item := range items {
		n.Content = append(n.Content, node(item))
	}
	return n
}

func boolNode(b bool) *yaml.Node { return scalarNode("!!bool", strconv.FormatBool(b)) }

func yamlNode(t nbt.Tag) *yaml.Node {
	switch v := t.(type) {
	case nil, nbt.EmptyTag:
		return scalarNode("!!null", "null")
	case nbt.Boolean:
		return boolNode(v.Bool())
	case nbt.Byte:
		return intNode(int64(v))
	case nbt.Short:
		return intNode(int64(v))
	case nbt.Int:
		return intNode(int64(v))
	case nbt.Long:
		return intNode(int64(v))
	case nbt.Int24:
		return intNode(int64(v))
	case nbt.Int40:
		return intNode(int64(v))
	case nbt.Int48:
		return intNode(int64(v))
	case nbt.Int56:
		return intNode(int64(v))
	case nbt.Float:
		return floatNode(float64(v), 32)
	case nbt.Double:
		return floatNode(float64(v), 64)
	case nbt.Char:
		return scalarNode("!!str", string(v.Rune()))
	case nbt.String:
		return scalarNode("!!str", string(v))
	case nbt.UUID:
		return scalarNode("!!str", v.String())
	case nbt.ByteArray:
		return scalarNode("!!binary", base64.StdEncoding.EncodeToString(v))
	case nbt.ShortArray:
		return seqNode(v, func(n int16) *yaml.Node { return intNode(int64(n)) })
	case nbt.IntArray:
		return seqNode(v, func(n int32) *yaml.Node { return intNode(int64(n)) })
	case nbt.LongArray:
		return seqNode(v, intNode)
	case nbt.FloatArray:
		return seqNode(v, func(f float32) *yaml.Node { return floatNode(float64(f), 32) })
	case nbt.DoubleArray:
		return seqNode(v, func(f float64) *yaml.Node { return floatNode(f, 64) })
	case nbt.CharArray:
		return seqNode(v, func(n uint16) *yaml.Node { return intNode(int64(n)) })
	case nbt.BooleanArray:
		return seqNode(v, boolNode)
	case nbt.PackedBooleanArray:
		return seqNode(v, boolNode)
	case *nbt.List:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.All() {
			n.Content = append(n.Content, yamlNode(item))
		}
		return n
	case *nbt.Set:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for item := range v.All() {
			n.Content = append(n.Content, yamlNode(item))
		}
		return n
	case *nbt.Compound:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for k, item := range v.All() {
			n.Content = append(n.Content, scalarNode("!!str", k), yamlNode(item))
		}
		return n
	}
	n := &yaml.Node{}
	if err := n.Encode(t.Value()); err != nil {
		return scalarNode("!!null", "null")
	}
	return n
}

// FromYAML parses the first document in data into a tag tree. Mappings
// become compounds in document order; keys with null values are dropped. An
// empty document yields Empty.
func FromYAML(data []byte) (nbt.Tag, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nbt.Empty, nil
	}
	return tagFromYAML(&doc)
}

func tagFromYAML(n *yaml.Node) (nbt.Tag, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nbt.Empty, nil
		}
		return tagFromYAML(n.Content[0])
	case yaml.AliasNode:
		return tagFromYAML(n.Alias)
	case yaml.MappingNode:
		c := nbt.NewCompound()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			t, err := tagFromYAML(n.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("line %d: key %q: %w", n.Content[i].Line, key, err)
			}
			c.Put(key, t)
		}
		return c, nil
	case yaml.SequenceNode:
		tags := make([]nbt.Tag, 0, len(n.Content))
		for i, item := range n.Content {
			t, err := tagFromYAML(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			tags = append(tags, t)
		}
		return unifyList(tags)
	case yaml.ScalarNode:
		return tagFromYAMLScalar(n)
	}
	return nil, fmt.Errorf("%w: yaml node kind %d", ErrUnsupported, n.Kind)
}

func tagFromYAMLScalar(n *yaml.Node) (nbt.Tag, error) {
	switch n.ShortTag() {
	case "!!null":
		return nbt.Empty, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return nbt.BooleanOf(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return intTag(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, err
		}
		return fromUint(u), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return nbt.Double(f), nil
	case "!!binary":
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return nbt.ByteArray(b), nil
	}
	return nbt.String(n.Value), nil
}
