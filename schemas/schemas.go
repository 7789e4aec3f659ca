// Package schemas embeds the JSON Schemas for the files beacon reads.
package schemas

import _ "embed"

// ArtifactsSchemaJSON describes the artifacts file produced by a gatherer.
//
//go:embed artifacts.schema.json
var ArtifactsSchemaJSON string

// ConfigSchemaJSON describes .beacon.yaml.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
