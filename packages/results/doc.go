// Package results holds the tree of test outcomes and renders it to a
// terminal.
//
// A tree is built up front with every node NotRun, then mutated in place as
// steps and assertions finish. Nodes are addressed by their child index path
// from the root. Printer redraws the whole tree after each mutation.
package results
