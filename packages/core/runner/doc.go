// Package runner executes named tests.
//
// A test is an ordered list of steps. Each step renders one request template
// against the current context and the responses captured so far, sends it,
// stores the response under the request name and evaluates the step's
// asserts. Steps never run concurrently because a later step may reference
// an earlier response.
//
// Outcomes are recorded in a results tree that is built before anything is
// sent and redrawn after every assert.
package runner
