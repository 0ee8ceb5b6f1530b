// Package prompt composes the instruction pair sent to the generation
// capability: a fixed system instruction carrying the output contract and a
// per-request user instruction embedding the submitted document. The embedded
// document is the only thing that varies between requests.
package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/sheriax/autobackend.ai-backend/internal/openapi"
)

// Version identifies the system instruction revision. Bump it whenever the
// instruction text changes so logged generations can be correlated with the
// contract they were produced under.
const Version = "v3"

// SystemInstruction is the fixed contract handed to the model with every
// request.
const SystemInstruction = `You are an expert backend engineer. You build complete, production-quality Express + TypeScript backend projects from OpenAPI 3.x specifications.

Respond with a single flat JSON object. Every key is a relative file path and every value is the complete text content of that file. Do not nest objects inside the mapping, do not wrap the result in markdown, and do not add commentary outside file contents.

The generated project must follow this layout:
- src/index.ts: application entry point that wires middleware and mounts every router
- src/routes/<resource>.ts: one router file per resource found in the specification paths
- src/models/<name>.ts: type definitions for every schema under components.schemas
- src/middleware/errorHandler.ts: centralized error handling middleware
- src/utils/validation.ts: request validation helpers shared by the routes
- package.json: scripts (dev, build, start) and the dependency manifest
- tsconfig.json: strict TypeScript compiler configuration
- README.md: setup and usage instructions

Code requirements:
- TypeScript throughout, with explicit types on all exported functions and route handlers
- validate request bodies, path parameters, and query parameters before use
- explicit error handling on every route; no unhandled promise rejections
- JSDoc comments on exported functions, including example usage where it helps
- consistent two-space formatting
- implement every path and operation present in the specification; invent nothing beyond it

The generated project may depend only on: express, cors, dotenv, zod, typescript, ts-node-dev, and the matching @types packages. Do not assume any other dependency is available.`

// userDirective prefixes the embedded document in every user instruction.
const userDirective = "Generate a complete backend project for the following OpenAPI specification:"

// Prompt is the instruction pair for one generation request.
type Prompt struct {
	System string
	User   string
}

// Build embeds the validated document, pretty-printed, under the fixed
// directive. Deterministic: the same document always yields byte-identical
// instructions. No I/O.
func Build(doc openapi.Document) (Prompt, error) {
	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Prompt{}, fmt.Errorf("encode specification: %w", err)
	}
	return Prompt{
		System: SystemInstruction,
		User:   fmt.Sprintf("%s\n\n%s\n", userDirective, pretty),
	}, nil
}
