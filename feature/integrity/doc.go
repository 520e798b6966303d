// Package integrity validates a documentation bundle before it is served.
//
// # Checks Provided
//
//   - Directory: the asset directory exists, is a directory and is readable.
//   - Structure: required files (index.html) are present.
//   - Specs: OpenAPI and Swagger documents are discovered; each one is reachable
//     in the bundle's UI as ?service=<file name without extension>.
//   - Tree: a rendering of the directory content with file sizes.
//
// The checks run offline from the integrity command and never expose HTTP
// endpoints.
package integrity
