package http

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"voice-ai-go/internal/apperr"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	maxJSONBody = 1 << 20

	// rootField is how gojsonschema names the document itself.
	rootField = "(root)"
)

// mustLoadSchemas compiles every request schema, keyed by file name without
// the .schema.json suffix.
func mustLoadSchemas() map[string]*gojsonschema.Schema {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		panic(err)
	}

	out := make(map[string]*gojsonschema.Schema, len(entries))
	for _, e := range entries {
		data, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			panic(err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			panic(fmt.Sprintf("schema %s: %v", e.Name(), err))
		}
		out[strings.TrimSuffix(e.Name(), ".schema.json")] = schema
	}
	return out
}

// bindJSON validates the request body against the named schema and decodes
// it into dst.
func (s *Server) bindJSON(c *gin.Context, schema string, dst any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxJSONBody))
	if err != nil {
		return apperr.Validation("failed to read request body")
	}
	if strings.TrimSpace(string(body)) == "" {
		return apperr.Validation("request body is required")
	}

	res, err := s.schemas[schema].Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperr.Validation("Invalid JSON data")
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			if e.Field() == rootField {
				msgs = append(msgs, e.Description())
			} else {
				msgs = append(msgs, e.Field()+": "+e.Description())
			}
		}
		return apperr.Validation(strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Validation("Invalid JSON data")
	}
	return nil
}
