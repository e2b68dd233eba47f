// Package transform is the entry point for callers that move records in
// and out as JSON: request and response bodies of an API layer, batch
// export and import, and mapping previews.
//
// Mappings are addressed by code. An Endpoint pairs a code with list mode,
// which decides whether bodies are single objects or lists of objects.
package transform
