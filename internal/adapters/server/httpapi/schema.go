package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/hylla/taskify/internal/adapters/server/common"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names for request bodies.
const (
	schemaAddTask  = "add_task.json"
	schemaEditTask = "edit_task.json"
	schemaMoveTask = "move_task.json"
	schemaDrop     = "drop.json"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// bodyValidator checks raw request bodies against embedded JSON Schemas.
type bodyValidator struct {
	schemas map[string]*jsonschema.Schema
}

// newBodyValidator compiles every embedded request schema.
func newBodyValidator() (*bodyValidator, error) {
	names := []string{schemaAddTask, schemaEditTask, schemaMoveTask, schemaDrop}
	compiler := jsonschema.NewCompiler()
	for _, name := range names {
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}
	out := &bodyValidator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		schema, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		out.schemas[name] = schema
	}
	return out, nil
}

// decode validates body against the named schema and then decodes it into out.
func (v *bodyValidator) decode(body io.Reader, schemaName string, out any) error {
	raw, err := io.ReadAll(io.LimitReader(body, maxRequestBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	if int64(len(raw)) > maxRequestBodyBytes {
		return fmt.Errorf("request body exceeds %d bytes: %w", maxRequestBodyBytes, common.ErrInvalidRequest)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("request body is required: %w", common.ErrInvalidRequest)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	schema, ok := v.schemas[schemaName]
	if !ok {
		return fmt.Errorf("unknown schema %q", schemaName)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", schemaMessage(err), common.ErrInvalidRequest)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	return nil
}

// schemaMessage returns the first leaf validation failure with its instance location.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	location := ve.InstanceLocation
	if location == "" {
		location = "/"
	}
	return fmt.Sprintf("request body %s: %s", location, ve.Message)
}
