// Package output renders listings and test reports.
//
// Listings are tables of names and attributes written as an aligned table,
// tab separated values, YAML or an Excel workbook. Test reports turn a
// finished results tree into a console summary, JSON, JUnit XML or TAP.
package output
