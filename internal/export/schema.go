package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

func nullable(t string) map[string]any {
	return map[string]any{"type": []any{t, "null"}}
}

func object(required []string, props map[string]any) map[string]any {
	o := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		o["required"] = required
	}
	return o
}

func taxEntrySchema() map[string]any {
	return object([]string{"rate", "amount"}, map[string]any{
		"rate":   nullable("number"),
		"amount": nullable("number"),
	})
}

func partySchema() map[string]any {
	return object([]string{"name", "address", "gstin"}, map[string]any{
		"name":    nullable("string"),
		"address": nullable("string"),
		"gstin":   nullable("string"),
		"pan":     nullable("string"),
		"email":   nullable("string"),
	})
}

// BatchSchema is the JSON Schema of an exported batch.
func BatchSchema() map[string]any {
	lineItem := object([]string{"srno", "description", "qty", "unit", "price", "total_amount"}, map[string]any{
		"srno":         nullable("string"),
		"description":  nullable("string"),
		"item_code":    nullable("string"),
		"drg_number":   nullable("string"),
		"hsn_sac_code": nullable("string"),
		"qty":          map[string]any{"type": "number", "exclusiveMinimum": 0},
		"unit":         map[string]any{"type": "string", "minLength": 1},
		"price":        nullable("number"),
		"total_amount": nullable("number"),
	})

	invoice := object(
		[]string{"batch_id", "invoice", "vendor", "buyer", "bank_details", "line_items", "financials", "source_files"},
		map[string]any{
			"batch_id": map[string]any{"type": "string", "minLength": 36},
			"invoice": object([]string{"invoice_number", "invoice_date", "currency"}, map[string]any{
				"invoice_type":    nullable("string"),
				"invoice_number":  nullable("string"),
				"invoice_date":    nullable("string"),
				"due_date":        nullable("string"),
				"po_number":       nullable("string"),
				"place_of_supply": nullable("string"),
				"currency":        map[string]any{"type": "string"},
				"amount_in_words": nullable("string"),
			}),
			"vendor": partySchema(),
			"buyer":  partySchema(),
			"bank_details": object(nil, map[string]any{
				"bank_name":      nullable("string"),
				"account_name":   nullable("string"),
				"account_number": nullable("string"),
				"ifsc":           nullable("string"),
				"branch":         nullable("string"),
			}),
			"line_items": map[string]any{"type": "array", "items": lineItem},
			"financials": object([]string{"total_before_tax", "total_after_tax", "cgst", "sgst"}, map[string]any{
				"total_before_tax": nullable("number"),
				"total_after_tax":  nullable("number"),
				"cgst":             taxEntrySchema(),
				"sgst":             taxEntrySchema(),
				"igst":             taxEntrySchema(),
				"total_tax":        nullable("number"),
			}),
			"source_files": object([]string{"filename", "page", "status"}, map[string]any{
				"filename": map[string]any{"type": "string", "minLength": 1},
				"path":     map[string]any{"type": "string"},
				"page":     map[string]any{"type": "integer", "minimum": 1},
				"status": map[string]any{"enum": []any{
					string(constants.PageStatusProcessed),
					string(constants.PageStatusOCRProcessed),
				}},
				"method":       map[string]any{"type": "string"},
				"content_hash": map[string]any{"type": "string"},
			}),
			"raw_text":      map[string]any{"type": "string"},
			"layout_blocks": map[string]any{"type": "array"},
		},
	)

	batch := object([]string{"batch_id", "scanned_at", "invoice_count", "invoices", "errors"}, map[string]any{
		"batch_id":      map[string]any{"type": "string", "minLength": 36},
		"scanned_at":    map[string]any{"type": "string", "minLength": 1},
		"invoice_count": map[string]any{"type": "integer", "minimum": 0},
		"invoices":      map[string]any{"type": "array", "items": invoice},
		"errors": map[string]any{"type": "array", "items": object([]string{"file", "error"}, map[string]any{
			"file":  map[string]any{"type": "string"},
			"error": map[string]any{"type": "string"},
		})},
	})
	batch["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	return batch
}

var (
	batchSchemaOnce sync.Once
	batchSchema     *jsonschema.Schema
	batchSchemaErr  error
)

func compiledBatchSchema() (*jsonschema.Schema, error) {
	batchSchemaOnce.Do(func() {
		batchSchema, batchSchemaErr = compileSchema(BatchSchema())
	})
	return batchSchema, batchSchemaErr
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schema, err := compileSchema(schemaMap)
	if err != nil {
		return err
	}
	return validate(schema, data)
}

// ValidateBatchJSON validates an exported batch document.
func ValidateBatchJSON(data []byte) error {
	schema, err := compiledBatchSchema()
	if err != nil {
		return err
	}
	return validate(schema, data)
}

func validate(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
