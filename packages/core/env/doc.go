// Package env handles contexts and variable resolution for apictl.
//
// It provides:
//   - Context, a flat set of named string values with right-biased merging
//   - Applicator, which rewrites ${name} and ${response.<request>.<path>}
//     placeholders using a Context and a response Store
//   - dotenv loading, used to seed a Context from a .env file
package env
