package plugin

// ManifestSchema is the JSON Schema for script plugin manifests
const ManifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "description", "version", "author", "hooks"],
  "properties": {
    "id": {
      "type": "string",
      "pattern": "^[a-z0-9-]+$",
      "description": "Unique plugin identifier"
    },
    "name": {
      "type": "string",
      "minLength": 1,
      "description": "Human-readable plugin name"
    },
    "description": {
      "type": "string",
      "minLength": 1
    },
    "version": {
      "type": "string",
      "minLength": 1,
      "description": "Plugin version, stored verbatim"
    },
    "author": {
      "type": "string",
      "minLength": 1
    },
    "homepage": {
      "type": "string"
    },
    "engine": {
      "type": "string",
      "description": "Semver constraint on the gh-profile version (e.g., >=1.0.0 <2.0.0)"
    },
    "timeout": {
      "type": "string",
      "description": "Per-hook timeout as a Go duration (e.g., 10s)"
    },
    "hooks": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": { "type": "string" },
      "description": "Shell command per lifecycle hook"
    }
  }
}`
