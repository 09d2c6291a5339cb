// Package extract turns raw portal HTML into structured workshop records.
//
// Every function here is a pure transformation of an HTML document: nothing is fetched and
// nothing is written. All structural assumptions about the portal's markup (selectors, cell
// offsets, separators) are collected in contract.go so that a portal layout change is fixed
// in one place and caught by the fixture tests under testdata/.
package extract
