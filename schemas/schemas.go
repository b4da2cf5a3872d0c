// Package schemas holds the JSON Schemas for the documents this module writes.
package schemas

import _ "embed"

// Contacts is the schema for a discovery result document
//
//go:embed contacts.schema.json
var Contacts string
