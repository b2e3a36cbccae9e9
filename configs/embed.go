// Package configs provides embedded configuration assets for crucible.
//
// The JSON schema and the example configuration are embedded at build time
// with Go's //go:embed directive so they are available in every distribution
// of the binary, not just source checkouts.
//
// Consumers:
//   - internal/config → ValidateSchema() validates crucible.yaml against
//     config.schema.json before decoding.
//   - cmd/crucible/cmd → `crucible config init` writes the example file.
package configs

import _ "embed"

// BuildSchema is the JSON schema every crucible.yaml must satisfy.
//
//go:embed config.schema.json
var BuildSchema string

// ExampleConfig is a commented starter configuration written by
// `crucible config init`.
//
//go:embed crucible.example.yaml
var ExampleConfig string
