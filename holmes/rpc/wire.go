// Package rpc is component F: the net-attached transport. The spec fixes
// only the four operations' contracts (§6) and explicitly leaves framing to
// the implementer, so this package exposes them over net/rpc with
// encoding/gob — the closest standard-library idiom to the original's
// schema-checked positional framing, chosen because no repo in the
// retrieved pack ships a capability-RPC framework to wire in instead (see
// DESIGN.md).
//
// The Analysis capability is modeled as a callback address: registering an
// analyzer hands the server a dial target, and the server calls back to it
// as an outbound net/rpc client whenever the fixpoint loop has fresh
// bindings for that analyzer.
package rpc

import "github.com/maurer/holmes/holmes"

// RegisterTypeArgs is the registerType call's argument.
type RegisterTypeArgs struct {
	Name     string
	ArgTypes []holmes.HType
}

// RegisterTypeReply carries the registration's validity, per spec §6: a
// conflicting re-registration or invalid name returns false rather than an
// RPC-level error.
type RegisterTypeReply struct {
	OK bool
}

// SetArgs is the set call's argument: a batch of facts to ingest. The
// fixpoint this may trigger runs to completion before the reply is sent.
type SetArgs struct {
	Facts []holmes.Fact
}

// SetReply is empty: set reports failure only via the RPC error, per spec
// §6.
type SetReply struct{}

// DeriveArgs is the derive call's argument: a one-shot conjunctive query.
type DeriveArgs struct {
	Premises []holmes.FactTemplate
}

// DeriveReply carries the matching, deduplicated, sorted Contexts.
type DeriveReply struct {
	Contexts []holmes.Context
}

// AnalyzerArgs registers a standing analyzer: a premise pattern plus the
// network address of the caller's Analysis capability. There is
// deliberately no AnalyzerReply type — see Service.Analyzer.
type AnalyzerArgs struct {
	Name         string
	Premises     []holmes.FactTemplate
	CallbackAddr string
}

// AnalyzeArgs is the outbound analyze callback's argument: one fresh
// binding for the analyzer to inspect.
type AnalyzeArgs struct {
	Binding holmes.Context
}

// AnalyzeReply carries the facts an analyze callback derived from its
// binding, zero or more.
type AnalyzeReply struct {
	Facts []holmes.Fact
}
