// Package tools provides runtime helpers shared by host modules.
//
// Ownership boundary:
// - child-process execution
package tools
