package configs

import "embed"

// Frameworks is the shipped code generation configuration.
//
//go:embed frameworks.json
var Frameworks []byte

// StarterTemplates holds example agent templates written by `agentcatalog init`.
//
//go:embed templates
var StarterTemplates embed.FS
