//
// Tencent is pleased to support the open source community by making trpc-graph-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-graph-go is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"errors"
	"fmt"
)

// Issue codes reported by Validate. Errors block execution; warnings are
// advisory and returned alongside a graph that is still runnable.
const (
	// CodeMissingStart indicates the entry node id does not resolve to a node.
	CodeMissingStart = "MISSING_START"
	// CodeMissingEnd indicates the exit node id does not resolve to a node.
	CodeMissingEnd = "MISSING_END"
	// CodeInvalidStart indicates the entry node is not a start-type node.
	CodeInvalidStart = "INVALID_START"
	// CodeInvalidEnd indicates the exit node is not an end-type node.
	CodeInvalidEnd = "INVALID_END"
	// CodeDuplicateNodeID indicates two nodes share an id.
	CodeDuplicateNodeID = "DUPLICATE_NODE_ID"
	// CodeInvalidEdgeFrom indicates an edge references a nonexistent source.
	CodeInvalidEdgeFrom = "INVALID_EDGE_FROM"
	// CodeInvalidEdgeTo indicates an edge references a nonexistent target.
	CodeInvalidEdgeTo = "INVALID_EDGE_TO"
	// CodeMultipleDefaultEdges indicates more than one default edge leaves
	// the same source node.
	CodeMultipleDefaultEdges = "MULTIPLE_DEFAULT_EDGES"
	// CodeUnreachableEnd indicates no path exists from start to end.
	CodeUnreachableEnd = "UNREACHABLE_END"
	// CodeUnreachableNode warns that a node has no path from start.
	CodeUnreachableNode = "UNREACHABLE_NODE"
	// CodeCycleDetected warns that the graph contains a cycle, self-loops
	// included.
	CodeCycleDetected = "CYCLE_DETECTED"
	// CodeOrphanedNode warns that a node has no incident edges at all.
	CodeOrphanedNode = "ORPHANED_NODE"
	// CodeMissingHandlerName warns that a handler node declares no handler.
	CodeMissingHandlerName = "MISSING_HANDLER_NAME"
)

// Issue is a single coded validation finding.
type Issue struct {
	// Code is the machine-readable issue code.
	Code string
	// NodeID is the offending node, when the issue concerns one node.
	NodeID string
	// Message is the human-readable description.
	Message string
}

// String returns the formatted issue.
func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Code, i.Message)
}

// ValidationResult is the outcome of static graph analysis.
type ValidationResult struct {
	// IsValid is true when no errors were found. Warnings do not affect it.
	IsValid bool
	// Errors are defects blocking execution, collected in one pass.
	Errors []Issue
	// Warnings are advisory findings; execution may proceed.
	Warnings []Issue
}

// ErrorByCode returns the first error with the given code.
func (r ValidationResult) ErrorByCode(code string) (Issue, bool) {
	for _, issue := range r.Errors {
		if issue.Code == code {
			return issue, true
		}
	}
	return Issue{}, false
}

// WarningByCode returns the first warning with the given code.
func (r ValidationResult) WarningByCode(code string) (Issue, bool) {
	for _, issue := range r.Warnings {
		if issue.Code == code {
			return issue, true
		}
	}
	return Issue{}, false
}

// AsError flattens the errors into a single error value, or nil when valid.
func (r ValidationResult) AsError() error {
	if r.IsValid {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, issue := range r.Errors {
		errs = append(errs, errors.New(issue.String()))
	}
	return errors.Join(errs...)
}

// Validate performs static analysis of the graph structure. It is a pure
// function: no side effects, no I/O. All issues are collected so a caller
// can fix everything in one pass.
func Validate(g *Graph) ValidationResult {
	v := &validator{graph: g}
	v.checkEndpoints()
	v.checkDuplicateNodeIDs()
	v.checkEdgeReferences()
	v.checkDefaultEdges()
	v.checkReachability()
	v.checkCycles()
	v.checkOrphans()
	v.checkHandlerNames()
	return ValidationResult{
		IsValid:  len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

type validator struct {
	graph    *Graph
	errors   []Issue
	warnings []Issue
}

func (v *validator) errorf(code, nodeID, format string, args ...any) {
	v.errors = append(v.errors, Issue{Code: code, NodeID: nodeID, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) warnf(code, nodeID, format string, args ...any) {
	v.warnings = append(v.warnings, Issue{Code: code, NodeID: nodeID, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) checkEndpoints() {
	g := v.graph
	entry, entryOK := g.Node(g.entryNodeID)
	if g.entryNodeID == "" || !entryOK {
		v.errorf(CodeMissingStart, g.entryNodeID, "entry node %q does not exist", g.entryNodeID)
	} else if entry.Type != NodeTypeStart {
		v.errorf(CodeInvalidStart, entry.ID, "entry node %s has type %s, want %s", entry.ID, entry.Type, NodeTypeStart)
	}

	exit, exitOK := g.Node(g.exitNodeID)
	if g.exitNodeID == "" || !exitOK {
		v.errorf(CodeMissingEnd, g.exitNodeID, "exit node %q does not exist", g.exitNodeID)
	} else if exit.Type != NodeTypeEnd {
		v.errorf(CodeInvalidEnd, exit.ID, "exit node %s has type %s, want %s", exit.ID, exit.Type, NodeTypeEnd)
	}
}

func (v *validator) checkDuplicateNodeIDs() {
	seen := make(map[string]bool, len(v.graph.nodes))
	for _, node := range v.graph.nodes {
		if seen[node.ID] {
			v.errorf(CodeDuplicateNodeID, node.ID, "node id %s is declared more than once", node.ID)
			continue
		}
		seen[node.ID] = true
	}
}

func (v *validator) checkEdgeReferences() {
	for _, edge := range v.graph.edges {
		if _, ok := v.graph.Node(edge.From); !ok {
			v.errorf(CodeInvalidEdgeFrom, edge.From, "edge %s -> %s references nonexistent source node %s", edge.From, edge.To, edge.From)
		}
		if _, ok := v.graph.Node(edge.To); !ok {
			v.errorf(CodeInvalidEdgeTo, edge.To, "edge %s -> %s references nonexistent target node %s", edge.From, edge.To, edge.To)
		}
	}
}

func (v *validator) checkDefaultEdges() {
	defaults := make(map[string]int)
	for _, edge := range v.graph.edges {
		if edge.IsDefault() {
			defaults[edge.From]++
		}
	}
	for _, node := range v.graph.nodes {
		if defaults[node.ID] > 1 {
			v.errorf(CodeMultipleDefaultEdges, node.ID,
				"node %s has %d default edges, routing would be ambiguous", node.ID, defaults[node.ID])
		}
	}
}

func (v *validator) checkReachability() {
	g := v.graph
	if _, ok := g.Node(g.entryNodeID); !ok {
		// Without a resolvable entry every reachability finding would be
		// noise on top of MISSING_START.
		return
	}

	visited := make(map[string]bool)
	queue := []string{g.entryNodeID}
	visited[g.entryNodeID] = true
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, edge := range g.Edges(current) {
			if _, ok := g.Node(edge.To); !ok {
				continue
			}
			if !visited[edge.To] {
				visited[edge.To] = true
				queue = append(queue, edge.To)
			}
		}
	}

	if _, ok := g.Node(g.exitNodeID); ok && !visited[g.exitNodeID] {
		v.errorf(CodeUnreachableEnd, g.exitNodeID, "no path from start node %s to end node %s", g.entryNodeID, g.exitNodeID)
	}
	for _, node := range g.nodes {
		if node.ID == g.exitNodeID {
			continue
		}
		if !visited[node.ID] {
			v.warnf(CodeUnreachableNode, node.ID, "node %s is not reachable from start node %s", node.ID, g.entryNodeID)
		}
	}
}

// checkCycles runs a coloring DFS over the control-flow graph and reports a
// warning per back edge. Cycles are tolerated at validation time so graphs
// under construction can still be inspected; the executor enforces the DAG
// requirement separately.
func (v *validator) checkCycles() {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(v.graph.nodes))

	var visit func(nodeID string)
	visit = func(nodeID string) {
		color[nodeID] = gray
		for _, edge := range v.graph.Edges(nodeID) {
			if _, ok := v.graph.Node(edge.To); !ok {
				continue
			}
			switch color[edge.To] {
			case white:
				visit(edge.To)
			case gray:
				v.warnf(CodeCycleDetected, edge.From, "cycle detected through edge %s -> %s", edge.From, edge.To)
			}
		}
		color[nodeID] = black
	}

	for _, node := range v.graph.nodes {
		if color[node.ID] == white {
			visit(node.ID)
		}
	}
}

func (v *validator) checkOrphans() {
	for _, node := range v.graph.nodes {
		if node.Type == NodeTypeStart || node.Type == NodeTypeEnd {
			continue
		}
		if len(v.graph.Edges(node.ID)) == 0 && len(v.graph.InEdges(node.ID)) == 0 {
			v.warnf(CodeOrphanedNode, node.ID, "node %s has no incident edges", node.ID)
		}
	}
}

func (v *validator) checkHandlerNames() {
	for _, node := range v.graph.nodes {
		if node.Type == NodeTypeHandler && node.HandlerName == "" {
			v.warnf(CodeMissingHandlerName, node.ID, "handler node %s declares no handler name", node.ID)
		}
	}
}
