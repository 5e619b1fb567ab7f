package protocol

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/power.schema.json
var powerSchema string

// Decoder validates POWER packets against the wire schema before decoding.
type Decoder struct {
	schema *jsonschema.Schema
}

func NewDecoder() (*Decoder, error) {
	s, err := jsonschema.CompileString("power.schema.json", powerSchema)
	if err != nil {
		return nil, fmt.Errorf("compile power schema: %w", err)
	}
	return &Decoder{schema: s}, nil
}

// DecodePower parses one raw packet. Failures carry ErrProtoBadRequest.
func (d *Decoder) DecodePower(raw []byte) (PowerMsg, error) {
	var msg PowerMsg

	base, err := DecodeBase(raw)
	if err != nil {
		return msg, Errorf(ErrProtoBadRequest, "bad json: %v", err)
	}
	if base.Type != TypePower {
		return msg, Errorf(ErrProtoBadRequest, "unexpected type %q", base.Type)
	}
	if base.ProtocolVersion != Version {
		return msg, Errorf(ErrProtoBadRequest, "bad protocol_version %q", base.ProtocolVersion)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return msg, Errorf(ErrProtoBadRequest, "bad json: %v", err)
	}
	if err := d.schema.Validate(doc); err != nil {
		return msg, Errorf(ErrProtoBadRequest, "schema: %v", err)
	}

	if err := json.Unmarshal(raw, &msg); err != nil {
		return msg, Errorf(ErrProtoBadRequest, "decode: %v", err)
	}
	return msg, nil
}
