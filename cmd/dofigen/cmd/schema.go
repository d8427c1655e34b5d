package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the descriptor's JSON Schema",
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	_, err := os.Stdout.Write([]byte(descriptorSchema))
	return err
}

// descriptorSchema is a hand-authored JSON Schema for the descriptor
// document, covering the shapes accepted by internal/descriptor's patch
// types. It is static rather than reflection-generated: no JSON-Schema
// generation library appears anywhere in the dependency surface this
// project draws from, and the descriptor's polymorphic fields (from,
// copy entries, run) don't map onto a single struct shape a reflection
// walker could derive without its own hand-written cases anyway.
const descriptorSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Descriptor",
  "type": "object",
  "properties": {
    "extend": {
      "type": "array",
      "items": { "type": "string" },
      "description": "paths or URLs of other descriptors to merge as a base, applied in order"
    },
    "from": {
      "$ref": "#/definitions/fromContext"
    },
    "arg": {
      "type": "object",
      "additionalProperties": { "type": "string" }
    },
    "globalArg": {
      "type": "object",
      "additionalProperties": { "type": "string" },
      "description": "ARGs declared before the first FROM (root document only)"
    },
    "env": {
      "type": "object",
      "additionalProperties": { "type": "string" }
    },
    "label": {
      "type": "object",
      "additionalProperties": true
    },
    "workdir": { "type": "string" },
    "user": {
      "oneOf": [
        { "type": "string" },
        {
          "type": "object",
          "properties": {
            "user": { "type": "string" },
            "group": { "type": "string" }
          }
        }
      ]
    },
    "copy": {
      "type": "array",
      "items": { "$ref": "#/definitions/copyResource" }
    },
    "run": {
      "oneOf": [
        { "type": "string" },
        { "type": "array", "items": { "type": "string" } }
      ]
    },
    "root": { "$ref": "#/definitions/run" },
    "expose": {
      "type": "array",
      "items": { "$ref": "#/definitions/port" }
    },
    "volume": {
      "type": "array",
      "items": { "type": "string" }
    },
    "healthcheck": { "$ref": "#/definitions/healthcheck" },
    "entrypoint": {
      "type": "array",
      "items": { "type": "string" }
    },
    "cmd": {
      "type": "array",
      "items": { "type": "string" }
    },
    "context": {
      "type": "array",
      "items": { "type": "string" }
    },
    "ignore": {
      "type": "array",
      "items": { "type": "string" }
    },
    "builders": {
      "type": "object",
      "additionalProperties": { "$ref": "#/definitions/stage" }
    }
  },
  "definitions": {
    "stage": { "$ref": "#" },
    "fromContext": {
      "oneOf": [
        { "type": "string", "description": "image reference shortcut" },
        {
          "type": "object",
          "properties": {
            "builder": { "type": "string" }
          },
          "required": ["builder"]
        },
        {
          "type": "object",
          "properties": {
            "context": { "type": "string" }
          },
          "required": ["context"]
        }
      ]
    },
    "copyResource": {
      "oneOf": [
        { "type": "string", "description": "source path copied into the working directory; an http(s) URL becomes an add entry and a git remote an addGitRepo entry" },
        {
          "type": "object",
          "properties": {
            "from": { "$ref": "#/definitions/fromContext" },
            "paths": { "type": "array", "items": { "type": "string" } },
            "target": { "type": "string" },
            "exclude": { "type": "array", "items": { "type": "string" } },
            "parents": { "type": "boolean" },
            "chown": { "type": "string" },
            "chmod": { "type": "string" },
            "link": { "type": "boolean" }
          }
        },
        {
          "type": "object",
          "properties": {
            "content": { "type": "string" },
            "target": { "type": "string" }
          },
          "required": ["content", "target"]
        },
        {
          "type": "object",
          "properties": {
            "repo": { "type": "string" },
            "target": { "type": "string" },
            "keepGitDir": { "type": "boolean" }
          },
          "required": ["repo", "target"]
        },
        {
          "type": "object",
          "properties": {
            "sources": { "type": "array", "items": { "type": "string" } },
            "target": { "type": "string" },
            "checksum": { "type": "string" }
          },
          "required": ["sources", "target"]
        }
      ]
    },
    "run": {
      "type": "object",
      "properties": {
        "run": {
          "oneOf": [
            { "type": "string" },
            { "type": "array", "items": { "type": "string" } }
          ]
        },
        "cache": { "type": "array", "items": { "type": "object" } },
        "bind": { "type": "array", "items": { "type": "object" } },
        "tmpfs": { "type": "array", "items": { "type": "object" } },
        "secret": { "type": "array", "items": { "type": "object" } },
        "ssh": { "type": "array", "items": { "type": "object" } },
        "network": { "type": "string" },
        "security": { "type": "string" }
      }
    },
    "port": {
      "oneOf": [
        { "type": "integer" },
        { "type": "string" }
      ]
    },
    "healthcheck": {
      "type": "object",
      "properties": {
        "cmd": { "type": "string" },
        "interval": { "type": "string" },
        "timeout": { "type": "string" },
        "start_period": { "type": "string" },
        "retries": { "type": "integer" }
      }
    }
  }
}
`
