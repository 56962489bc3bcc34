package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across wdlint.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"

	// Operations
	FieldOperation = "operation"
	FieldURL       = "url"
	FieldStatus    = "status"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError   = "error"
	FieldErrorID = "error_id"

	// Counts and sizes
	FieldCount = "count"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"

	// Knowledge base
	FieldEntityID = "entity_id" // Wikidata item (Q-id)
	FieldProperty = "property"  // Wikidata property (P-id)
	FieldLang     = "lang"      // Wikipedia language code
	FieldTitle    = "title"     // Wikipedia article title
	FieldCategory = "category"  // Disqualifying category label
	FieldFeature  = "feature"   // Feature link, e.g. node/123
	FieldStage    = "stage"     // Pipeline stage
	FieldCache    = "cache"     // Cache layer that answered (memory, disk, remote)
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	client := wiki.NewClient(cfg, logger.ComponentLogger("wiki.client"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	featureLogger := logger.ChildLogger(base, logger.FieldFeature, f.Link())
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
