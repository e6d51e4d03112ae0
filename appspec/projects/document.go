package projects

import (
	"bytes"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// opaque JSON object (generatedUI).
// stored as an embedded BSON document, served back as relaxed extended JSON, so
// type wrappers like $numberLong come back as plain values and integers beyond int64 as doubles.
type Document []byte

func (d Document) IsNull() bool {
	trimmed := bytes.TrimSpace(d)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// reports whether the payload is a JSON object
func (d Document) IsObject() bool {
	trimmed := bytes.TrimSpace(d)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func (d Document) MarshalJSON() ([]byte, error) {
	if d.IsNull() {
		return []byte("null"), nil
	}

	return d, nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	*d = append((*d)[:0], data...)
	return nil
}

func (d Document) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if d.IsNull() {
		return bson.TypeNull, nil, nil
	}

	var doc bson.D
	if err := bson.UnmarshalExtJSON(d, false, &doc); err != nil {
		return 0, nil, fmt.Errorf("generatedUI is not a JSON object: %w", err)
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return 0, nil, err
	}

	return bson.TypeEmbeddedDocument, raw, nil
}

func (d *Document) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		*d = nil
		return nil
	case bson.TypeEmbeddedDocument:
		out, err := bson.MarshalExtJSON(bson.Raw(data), false, false)
		if err != nil {
			return err
		}

		*d = out
		return nil
	default:
		return fmt.Errorf("cannot decode %s into generatedUI", t)
	}
}
