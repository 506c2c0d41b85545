package gateway

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"
)

// DefaultPath is the rental requests endpoint.
const DefaultPath = "/api/rental-requests"

//go:embed contract.yaml
var contractYAML []byte

// ContractYAML returns the embedded OpenAPI document.
func ContractYAML() []byte {
	return append([]byte(nil), contractYAML...)
}

// Contract validates request and response bodies against the OpenAPI
// description of the rental requests endpoint.
type Contract struct {
	doc      *openapi3.T
	path     string
	request  *openapi3.Schema
	response *openapi3.Schema
}

var (
	defaultContractOnce sync.Once
	defaultContract     *Contract
	defaultContractErr  error
)

// DefaultContract parses the embedded contract once.
func DefaultContract() (*Contract, error) {
	defaultContractOnce.Do(func() {
		defaultContract, defaultContractErr = LoadContract(context.Background(), contractYAML, DefaultPath)
	})
	return defaultContract, defaultContractErr
}

// LoadContract parses an OpenAPI document (YAML or JSON) and selects the POST
// operation at path.
func LoadContract(ctx context.Context, data []byte, path string) (*Contract, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("gateway: load contract: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("gateway: invalid contract: %w", err)
	}

	item := doc.Paths.Find(path)
	if item == nil || item.Post == nil {
		return nil, fmt.Errorf("gateway: contract has no POST %s", path)
	}
	op := item.Post

	c := &Contract{doc: doc, path: path}
	if op.RequestBody != nil && op.RequestBody.Value != nil {
		if media := op.RequestBody.Value.Content.Get("application/json"); media != nil && media.Schema != nil {
			c.request = media.Schema.Value
		}
	}
	if c.request == nil {
		return nil, fmt.Errorf("gateway: contract has no JSON request body for %s", path)
	}
	if op.Responses != nil {
		if created := op.Responses.Status(http.StatusCreated); created != nil && created.Value != nil {
			if media := created.Value.Content.Get("application/json"); media != nil && media.Schema != nil {
				c.response = media.Schema.Value
			}
		}
	}
	return c, nil
}

// Document exposes the parsed OpenAPI document.
func (c *Contract) Document() *openapi3.T {
	return c.doc
}

// Path is the endpoint path the contract was loaded for.
func (c *Contract) Path() string {
	return c.path
}

// ValidateRequest checks a JSON request body. Violations are reported as a
// *ContractError.
func (c *Contract) ValidateRequest(body []byte) error {
	return validateBody(c.request, body)
}

// ValidateResponse checks a JSON success body. It accepts anything when the
// contract does not describe one.
func (c *Contract) ValidateResponse(body []byte) error {
	if c.response == nil {
		return nil
	}
	return validateBody(c.response, body)
}

func validateBody(schema *openapi3.Schema, body []byte) error {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return &ContractError{Issues: []ContractIssue{{Message: "body is not valid JSON: " + err.Error()}}}
	}
	err := schema.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	return &ContractError{Issues: contractIssues(err)}
}

func contractIssues(err error) []ContractIssue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []ContractIssue
		for _, inner := range multi {
			out = append(out, contractIssues(inner)...)
		}
		return out
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return []ContractIssue{{
			Path:    strings.Join(schemaErr.JSONPointer(), "."),
			Message: schemaErr.Reason,
		}}
	}
	return []ContractIssue{{Message: err.Error()}}
}
