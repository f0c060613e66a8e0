package configloader

import (
	"context"
	"fmt"

	"github.com/yaklabco/docmodel/internal/logging"
	"github.com/yaklabco/docmodel/pkg/config"
	"github.com/yaklabco/docmodel/pkg/fsutil"
	"github.com/yaklabco/docmodel/pkg/model"
	"github.com/yaklabco/docmodel/pkg/schema/basic"
)

// LoadSchema compiles the schema definition at path. An empty path yields the
// built-in basic schema. Compile warnings are logged, not returned.
func LoadSchema(ctx context.Context, path string) (*model.Schema, error) {
	logger := logging.FromContext(ctx)

	if path == "" {
		logger.Debug("using built-in schema", logging.FieldSchema, "basic")
		return basic.Schema(), nil
	}

	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	def, err := config.ParseSchemaDef(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	schema, err := def.Compile()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for _, warning := range schema.Warnings() {
		logger.Warn("schema warning", logging.FieldPath, path, logging.FieldWarning, warning)
	}
	logger.Debug("loaded schema", logging.FieldPath, path, logging.FieldSchema, schema.TopNodeType().Name)

	return schema, nil
}
