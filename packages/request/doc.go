// Package request defines the declarative request templates apictl runs.
//
// A Template describes a request: URL, method, headers, query parameters and
// one of several body encodings. Templates may contain ${...} placeholders;
// Render produces a new Template with every templated field substituted,
// leaving the template untouched so it can be reused.
package request
