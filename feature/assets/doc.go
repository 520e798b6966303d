// Package assets exposes a local directory of pre-built documentation assets
// under a URL prefix.
//
// Files are opened through an http.FileSystem, which cleans every request
// path before opening it so requests cannot escape the directory. The opened
// file is written with http.ServeContent through fiber's adaptor, which takes
// care of HEAD, Range and conditional requests.
//
// # Responses
//
//   - Existing file: 200 with the file contents, 206 for a satisfiable Range,
//     304 when If-Modified-Since or If-None-Match still match.
//   - Directory: its index.html, or 403 when there is none. Without a trailing
//     slash: 301 to the same path with one.
//   - Missing file, or any path segment starting with ".": 404.
//   - Any other open or stat failure: 500.
//   - Bare mount path: 301 to the mount path with a trailing slash.
package assets
