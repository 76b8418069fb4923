package interop

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	nbt "github.com/starfederation/nbt-go"
)

// Core Deterministic Encoding: sorted map keys and shortest forms, so equal
// trees always produce identical bytes.
var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("interop: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("interop: CBOR decoder initialization failed: " + err.Error())
	}
}

// ToCBOR encodes t as deterministic CBOR.
func ToCBOR(t nbt.Tag) ([]byte, error) {
	return cborEnc.Marshal(ToGo(t))
}

// FromCBOR decodes one CBOR data item into a tag tree.
func FromCBOR(data []byte) (nbt.Tag, error) {
	var v any
	if err := cborDec.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return fromCBORValue(v)
}

func fromCBORValue(v any) (nbt.Tag, error) {
	switch v := v.(type) {
	case uint64:
		if v <= 1<<63-1 {
			return intTag(int64(v)), nil
		}
		return fromUint(v), nil
	case int64:
		return intTag(v), nil
	case []any:
		return listFromGo(v, fromCBORValue)
	case map[string]any:
		return compoundFromGo(v, fromCBORValue)
	case cbor.Tag:
		return nil, fmt.Errorf("%w: cbor tag %d", ErrUnsupported, v.Number)
	}
	return FromGo(v)
}
