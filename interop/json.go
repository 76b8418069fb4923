package interop

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/minio/simdjson-go"
	"github.com/tidwall/jsonc"

	nbt "github.com/starfederation/nbt-go"
)

const binaryPrefix = "b64:"

// FromJSON parses JSON into a tag tree. Comments and trailing commas are
// accepted. Objects become compounds in document order, arrays become lists
// and strings carrying the "b64:" prefix become byte arrays. A null value
// is Empty, so object members holding null are dropped.
func FromJSON(data []byte) (nbt.Tag, error) {
	data = jsonc.ToJSON(data)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("json input is empty")
	}
	if (trimmed[0] != '{' && trimmed[0] != '[') || !simdjson.SupportedCPU() {
		return fromJSONStream(trimmed)
	}
	parsed, err := simdjson.Parse(trimmed, nil)
	if err != nil {
		return nil, err
	}
	it := parsed.Iter()
	if it.Advance() != simdjson.TypeRoot {
		return nil, fmt.Errorf("json root not found")
	}
	typ, root, err := it.Root(nil)
	if err != nil {
		return nil, err
	}
	return tagFromJSONIter(typ, root)
}

func tagFromJSONIter(typ simdjson.Type, it *simdjson.Iter) (nbt.Tag, error) {
	switch typ {
	case simdjson.TypeNull:
		return nbt.Empty, nil
	case simdjson.TypeBool:
		v, err := it.Bool()
		if err != nil {
			return nil, err
		}
		return nbt.BooleanOf(v), nil
	case simdjson.TypeInt:
		v, err := it.Int()
		if err != nil {
			return nil, err
		}
		return intTag(v), nil
	case simdjson.TypeUint:
		v, err := it.Uint()
		if err != nil {
			return nil, err
		}
		return fromUint(v), nil
	case simdjson.TypeFloat:
		v, err := it.Float()
		if err != nil {
			return nil, err
		}
		return nbt.Double(v), nil
	case simdjson.TypeString:
		b, err := it.StringBytes()
		if err != nil {
			return nil, err
		}
		return stringTag(string(b)), nil
	case simdjson.TypeObject:
		obj, err := it.Object(nil)
		if err != nil {
			return nil, err
		}
		c := nbt.NewCompound()
		var parseErr error
		err = obj.ForEach(func(key []byte, elem simdjson.Iter) {
			if parseErr != nil {
				return
			}
			t, err := tagFromJSONIter(elem.Type(), &elem)
			if err != nil {
				parseErr = fmt.Errorf("key %q: %w", key, err)
				return
			}
			c.Put(string(key), t)
		}, nil)
		if err != nil {
			return nil, err
		}
		if parseErr != nil {
			return nil, parseErr
		}
		return c, nil
	case simdjson.TypeArray:
		arr, err := it.Array(nil)
		if err != nil {
			return nil, err
		}
		var tags []nbt.Tag
		iter := arr.Iter()
		for {
			t := iter.Advance()
			if t == simdjson.TypeNone {
				break
			}
			elem := iter
			tag, err := tagFromJSONIter(t, &elem)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", len(tags), err)
			}
			tags = append(tags, tag)
		}
		return unifyList(tags)
	default:
		return nil, fmt.Errorf("unsupported json type: %v", typ)
	}
}

// fromJSONStream decodes scalar documents, and everything on CPUs simdjson
// cannot run on, with the token decoder.
func fromJSONStream(data []byte) (nbt.Tag, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	t, err := tagFromJSONTokens(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid character after top-level value")
	}
	return t, nil
}

func tagFromJSONTokens(dec *json.Decoder) (nbt.Tag, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case nil:
		return nbt.Empty, nil
	case bool:
		return nbt.BooleanOf(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return intTag(i), nil
		}
		if u, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return fromUint(u), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid json number: %s", v)
		}
		return nbt.Double(f), nil
	case string:
		return stringTag(v), nil
	case json.Delim:
		switch v {
		case '{':
			c := nbt.NewCompound()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				t, err := tagFromJSONTokens(dec)
				if err != nil {
					return nil, fmt.Errorf("key %q: %w", key, err)
				}
				c.Put(key, t)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return c, nil
		case '[':
			var tags []nbt.Tag
			for dec.More() {
				t, err := tagFromJSONTokens(dec)
				if err != nil {
					return nil, fmt.Errorf("index %d: %w", len(tags), err)
				}
				tags = append(tags, t)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return unifyList(tags)
		}
	}
	return nil, fmt.Errorf("unexpected json token %v", tok)
}

func stringTag(s string) nbt.Tag {
	if rest, ok := strings.CutPrefix(s, binaryPrefix); ok {
		if decoded, err := base64.StdEncoding.DecodeString(rest); err == nil {
			return nbt.ByteArray(decoded)
		}
	}
	return nbt.String(s)
}

// ToJSON encodes t as compact JSON.
func ToJSON(t nbt.Tag) (string, error) {
	var sb strings.Builder
	if err := WriteJSON(&sb, t); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteJSON appends JSON for t to sb. Non-finite floats are written as null.
func WriteJSON(sb *strings.Builder, t nbt.Tag) error {
	switch v := t.(type) {
	case nil, nbt.EmptyTag:
		sb.WriteString("null")
	case nbt.Boolean:
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case nbt.Byte:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case nbt.Short:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case nbt.Int:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case nbt.Long:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case nbt.Int24:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case nbt.Int40:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case nbt.Int48:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case nbt.Int56:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case nbt.Float:
		writeJSONFloat(sb, float64(v), 32)
	case nbt.Double:
		writeJSONFloat(sb, float64(v), 64)
	case nbt.Char:
		writeJSONString(sb, string(v.Rune()))
	case nbt.String:
		writeJSONString(sb, string(v))
	case nbt.UUID:
		writeJSONString(sb, v.String())
	case nbt.ByteArray:
		sb.WriteByte('"')
		sb.WriteString(binaryPrefix)
		sb.WriteString(base64.StdEncoding.EncodeToString(v))
		sb.WriteByte('"')
	case nbt.ShortArray:
		writeJSONArray(sb, v, func(n int16) { sb.WriteString(strconv.FormatInt(int64(n), 10)) })
	case nbt.IntArray:
		writeJSONArray(sb, v, func(n int32) { sb.WriteString(strconv.FormatInt(int64(n), 10)) })
	case nbt.LongArray:
		writeJSONArray(sb, v, func(n int64) { sb.WriteString(strconv.FormatInt(n, 10)) })
	case nbt.FloatArray:
		writeJSONArray(sb, v, func(f float32) { writeJSONFloat(sb, float64(f), 32) })
	case nbt.DoubleArray:
		writeJSONArray(sb, v, func(f float64) { writeJSONFloat(sb, f, 64) })
	case nbt.CharArray:
		writeJSONArray(sb, v, func(n uint16) { sb.WriteString(strconv.FormatUint(uint64(n), 10)) })
	case nbt.BooleanArray:
		writeJSONArray(sb, v, func(b bool) { sb.WriteString(strconv.FormatBool(b)) })
	case nbt.PackedBooleanArray:
		writeJSONArray(sb, v, func(b bool) { sb.WriteString(strconv.FormatBool(b)) })
	case *nbt.List:
		return writeJSONItems(sb, v.Items())
	case *nbt.Set:
		return writeJSONItems(sb, v.Items())
	case *nbt.Compound:
		sb.WriteByte('{')
		first := true
		for k, item := range v.All() {
			if !first {
				sb.WriteByte(',')
			}
			first = false
			writeJSONString(sb, k)
			sb.WriteByte(':')
			if err := WriteJSON(sb, item); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
		}
		sb.WriteByte('}')
	default:
		b, err := json.Marshal(t.Value())
		if err != nil {
			return errors.Join(fmt.Errorf("%w: %s tag", ErrUnsupported, t.Type().Name()), err)
		}
		sb.Write(b)
	}
	return nil
}

func writeJSONItems(sb *strings.Builder, items []nbt.Tag) error {
	sb.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			sb.WriteByte(',')
		}
		if err := WriteJSON(sb, item); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	sb.WriteByte(']')
	return nil
}

func writeJSONArray[E any, S ~[]E](sb *strings.Builder, items S, write func(E)) {
	sb.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			sb.WriteByte(',')
		}
		write(item)
	}
	sb.WriteByte(']')
}

func writeJSONFloat(sb *strings.Builder, f float64, bits int) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		sb.WriteString("null")
		return
	}
	sb.WriteString(strconv.FormatFloat(f, 'g', -1, bits))
}

func writeJSONString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigit(c >> 4))
				sb.WriteByte(hexDigit(c & 0xF))
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'A' + (n - 10)
}
