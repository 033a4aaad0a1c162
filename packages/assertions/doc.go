// Package assertions checks stored responses against the asserts of a test
// step.
//
// Supported assertions:
//   - status_code: exact status match
//   - header_contains, header_equals: case-sensitive header lookup
//   - contains, equals, not_equals, has_prefix, has_suffix, regex: a value
//     found by walking a dot separated path through the JSON body
//   - json_schema: the body, or the value at key, against a JSON Schema
//
// A failed assertion is data, not an error: Evaluate returns a Result with
// the reason.
package assertions
