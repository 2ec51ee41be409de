// Package endpoints resolves where the contract form submits, based on an
// embedded OpenAPI description of the persistence endpoints.
package endpoints

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/edesteves10/contrat-cond/pkg/model"
)

// Operation ids declared by the embedded document.
const (
	OperationCreate = "createContrato"
	OperationEdit   = "editContrato"
)

const formEncoding = "application/x-www-form-urlencoded"

var (
	// ErrUnknownOperation is returned when the document lacks an operation
	// required by a form mode.
	ErrUnknownOperation = errors.New("endpoints: unknown operation")
	// ErrMissingID is returned when resolving the edit target without an id.
	ErrMissingID = errors.New("endpoints: edit target requires a contract id")
)

//go:embed openapi.yaml
var embeddedDocument []byte

// Document returns a copy of the embedded OpenAPI document.
func Document() []byte {
	out := make([]byte, len(embeddedDocument))
	copy(out, embeddedDocument)
	return out
}

// Operation is a submission endpoint declared in the document.
type Operation struct {
	ID       string
	Method   string
	Path     string
	Summary  string
	Encoding string
	Fields   []string
	Required []string
}

// Target is the resolved method and path for a submission.
type Target struct {
	OperationID string `json:"operation_id"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Encoding    string `json:"encoding"`
}

// Catalog holds the operations parsed from a document.
type Catalog struct {
	operations map[string]Operation
}

// Load parses the embedded document.
func Load(ctx context.Context) (*Catalog, error) {
	return LoadFromData(ctx, embeddedDocument)
}

// LoadFromData parses raw as an OpenAPI 3 document and extracts its POST
// operations.
func LoadFromData(ctx context.Context, raw []byte) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("endpoints: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("endpoints: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("endpoints: validate document: %w", err)
	}

	catalog := &Catalog{operations: make(map[string]Operation)}
	if doc.Paths == nil {
		return catalog, nil
	}
	for path, item := range doc.Paths.Map() {
		if item == nil || item.Post == nil {
			continue
		}
		op := item.Post
		id := op.OperationID
		if id == "" {
			id = "post:" + path
		}
		fields, required := requestFields(op.RequestBody)
		catalog.operations[id] = Operation{
			ID:       id,
			Method:   "POST",
			Path:     path,
			Summary:  op.Summary,
			Encoding: formEncoding,
			Fields:   fields,
			Required: required,
		}
	}
	return catalog, nil
}

// Operation looks up an operation by id.
func (c *Catalog) Operation(id string) (Operation, bool) {
	if c == nil {
		return Operation{}, false
	}
	op, ok := c.operations[id]
	return op, ok
}

// Operations lists the catalog sorted by id.
func (c *Catalog) Operations() []Operation {
	if c == nil {
		return nil
	}
	out := make([]Operation, 0, len(c.operations))
	for _, op := range c.operations {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Resolve returns the submission target for mode. Edit mode substitutes id
// into the path template.
func (c *Catalog) Resolve(mode model.Mode, id string) (Target, error) {
	opID := OperationCreate
	if mode == model.ModeEdit {
		opID = OperationEdit
	}
	op, ok := c.Operation(opID)
	if !ok {
		return Target{}, fmt.Errorf("%w: %s", ErrUnknownOperation, opID)
	}

	path := op.Path
	if mode == model.ModeEdit {
		id = strings.TrimSpace(id)
		if id == "" {
			return Target{}, ErrMissingID
		}
		path = strings.ReplaceAll(path, "{id}", url.PathEscape(id))
	}
	return Target{
		OperationID: op.ID,
		Method:      op.Method,
		Path:        path,
		Encoding:    op.Encoding,
	}, nil
}

func requestFields(body *openapi3.RequestBodyRef) (fields, required []string) {
	if body == nil || body.Value == nil {
		return nil, nil
	}
	media := body.Value.Content.Get(formEncoding)
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, nil
	}
	schema := media.Schema.Value
	for name := range schema.Properties {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	required = append(required, schema.Required...)
	sort.Strings(required)
	return fields, required
}
