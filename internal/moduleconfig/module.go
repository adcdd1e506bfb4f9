package moduleconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ErrMissingModuleName is returned for an envelope without a moduleName.
var ErrMissingModuleName = errors.New("module config has no moduleName")

// envelope is the wire form. Config stays raw until a schema is chosen.
type envelope struct {
	ModuleName string          `json:"moduleName"`
	Config     json.RawMessage `json:"config"`
}

// Module is one decoded module configuration.
type Module struct {
	// Name is the moduleName tag.
	Name string
	// Source is the file the module was read from, if any.
	Source string
	// Value is the config decoded against the schema. It is cty.NilVal for
	// unknown modules and for modules whose config failed to decode.
	Value cty.Value
	// Config is the Go binding of Value when the schema provides New.
	Config any
	// Err records why a known module's config could not be decoded.
	Err error

	known bool
	ty    cty.Type
	raw   json.RawMessage
}

// Known reports whether a schema was registered for the module's name.
func (m *Module) Known() bool { return m.known }

// Raw returns the config bytes exactly as they were read.
func (m *Module) Raw() json.RawMessage { return bytes.Clone(m.raw) }

// Decode parses one envelope. A malformed envelope is an error. A config
// that does not match its schema is not: the module is returned with Err set
// and its raw bytes preserved, so the caller can report it and still save.
func (s *Schemas) Decode(data []byte) (*Module, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse module envelope: %w", err)
	}
	if env.ModuleName == "" {
		return nil, ErrMissingModuleName
	}

	m := &Module{Name: env.ModuleName, raw: bytes.Clone(env.Config)}
	schema, ok := s.Lookup(env.ModuleName)
	if !ok {
		return m, nil
	}
	m.known = true
	m.ty = schema.Type

	if len(env.Config) == 0 {
		m.Err = fmt.Errorf("module '%s': config is missing", m.Name)
		return m, nil
	}
	val, err := ctyjson.Unmarshal(env.Config, schema.Type)
	if err != nil {
		m.Err = fmt.Errorf("module '%s': config does not match schema %s: %w", m.Name, schema.Type.FriendlyName(), err)
		return m, nil
	}
	m.Value = val

	if schema.New != nil {
		target := schema.New()
		if err := gocty.FromCtyValue(val, target); err != nil {
			m.Err = fmt.Errorf("module '%s': failed to bind config: %w", m.Name, err)
			return m, nil
		}
		m.Config = target
	}
	return m, nil
}

// MarshalJSON encodes the module back into its envelope. Unknown modules and
// modules that failed to decode emit their original config bytes untouched.
// Known modules re-encode from Config (if bound) or Value, so edits made
// through the Go binding are persisted.
func (m *Module) MarshalJSON() ([]byte, error) {
	config, err := m.encodeConfig()
	if err != nil {
		return nil, err
	}

	name, err := json.Marshal(m.Name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"moduleName":`)
	buf.Write(name)
	buf.WriteString(`,"config":`)
	buf.Write(config)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *Module) encodeConfig() ([]byte, error) {
	if !m.known || m.Err != nil {
		if len(m.raw) == 0 {
			return []byte("null"), nil
		}
		return m.raw, nil
	}

	val := m.Value
	if m.Config != nil {
		v, err := gocty.ToCtyValue(m.Config, m.ty)
		if err != nil {
			return nil, fmt.Errorf("module '%s': failed to encode config: %w", m.Name, err)
		}
		val = v
	}
	out, err := ctyjson.Marshal(val, m.ty)
	if err != nil {
		return nil, fmt.Errorf("module '%s': failed to encode config: %w", m.Name, err)
	}
	return out, nil
}
