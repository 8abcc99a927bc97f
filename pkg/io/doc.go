// Package io loads static dependency graphs and writes analysis reports.
//
// # Adjacency Format
//
// [ReadAdjacency] parses the line-oriented text format used for synthetic
// graphs:
//
//	A: B C
//	B: C, D
//	C:
//
// Each line is "name: deps", with dependencies separated by spaces and/or
// commas. Blank lines and lines without a colon are ignored, and a later line
// for the same name replaces the earlier one. Names not declared on the left
// of any line simply have no entry and are treated as leaves.
//
// # JSON Graphs
//
// [ReadJSON] and [WriteJSON] use the node/edge format shared with other graph
// tools:
//
//	{
//	  "nodes": [{"id": "a"}, {"id": "b"}],
//	  "edges": [{"from": "a", "to": "b"}]
//	}
//
// [ImportGraph] picks the format from the file extension.
//
// # Reports
//
// [Report] is the machine-readable result of one analysis; [WriteReport]
// encodes it as indented JSON.
package io
