package tutor

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// quizSchemaDef is the JSON Schema every generated test and practice
// quiz must satisfy before it is handed to the orchestrator.
var quizSchemaDef = map[string]any{
	"type":     "object",
	"required": []any{"questions"},
	"properties": map[string]any{
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"question_text", "options", "correct_answer"},
				"properties": map[string]any{
					"question_text": map[string]any{"type": "string", "minLength": 1},
					"options": map[string]any{
						"type":          "object",
						"minProperties": 2,
						"additionalProperties": map[string]any{
							"type": "string",
						},
					},
					"correct_answer": map[string]any{"type": "string", "minLength": 1},
					"topic":          map[string]any{"type": "string"},
				},
			},
		},
	},
}

var (
	quizSchemaOnce sync.Once
	quizSchema     *jsonschema.Schema
	quizSchemaErr  error
)

func compiledQuizSchema() (*jsonschema.Schema, error) {
	quizSchemaOnce.Do(func() {
		// The jsonschema library expects a parsed JSON value, not raw
		// bytes. Round-trip the definition to get a clean representation.
		defBytes, err := json.Marshal(quizSchemaDef)
		if err != nil {
			quizSchemaErr = fmt.Errorf("marshal quiz schema: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			quizSchemaErr = fmt.Errorf("parse quiz schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://quiz.json"
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			quizSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		quizSchema, quizSchemaErr = c.Compile(schemaURL)
	})
	return quizSchema, quizSchemaErr
}

// validateQuiz checks cleaned AI JSON against the quiz schema. A
// violation is reported as a *MalformedError so callers branch the same
// way they do for undecodable text.
func validateQuiz(cleaned string) error {
	schema, err := compiledQuizSchema()
	if err != nil {
		return err
	}
	var parsed any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return &MalformedError{Raw: cleaned, Err: err}
	}
	if err := schema.Validate(parsed); err != nil {
		return &MalformedError{Raw: cleaned, Err: err}
	}
	return nil
}
