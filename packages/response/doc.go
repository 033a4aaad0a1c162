// Package response holds captured HTTP responses for apictl.
//
// A Store maps request names to the most recent Response seen for them.
// Responses can be saved to and loaded from a cache directory so that a
// later invocation can reference values captured by an earlier one.
// Lookup walks dot separated paths through JSON response bodies.
package response
