// Package http executes rendered request templates and converts the
// replies into stored responses.
//
// A Client performs exactly one round trip per call:
//   - only GET, POST, PUT and DELETE are accepted
//   - query parameters are merged into the URL
//   - form, raw (file or inline) and multipart bodies are encoded
//   - response headers must be visible ASCII
package http
