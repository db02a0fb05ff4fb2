// Package golondrina is an in-memory toolkit for origin-destination human
// mobility data: one canonical trip format, and every step from messy
// provider exports to validated trips, OD flows and trace-inferred journeys.
//
// 🚀 What is golondrina?
//
//	A columnar, schema-driven library that brings together:
//		• Canonical format: one trip table layout shared by every source
//		• Import: field & value correspondences, H3 cell derivation
//		• Validation: structural, domain, temporal and crossfield checks
//		• Repair: correspondence fixes, rule-based cleaning
//		• Transforms: filtering, enrichment joins, dataset concatenation
//		• Aggregation: deterministic OD flow building & flow filtering
//		• Inference: trip extraction from raw GPS/XDR traces
//
// ✨ Why choose golondrina?
//
//   - Report-first – every operation returns a full issue report, never a
//     silent drop
//   - Deterministic – identical inputs and options give identical outputs,
//     generated IDs excepted
//   - Provenance built in – datasets carry their correspondences, effective
//     domains and an append-only event log
//   - Pure in-memory – no files, no daemons, tables in, tables out
//
// Under the hood, everything is organized per concern:
//
//	table/      — columnar table primitive: select, mask, group, concat
//	schema/     — trip & trace schemas, builtin v1.1 catalog, domains
//	report/     — issue/report types shared by every operation
//	dataset/    — TripDataset, FlowDataset, TraceDataset + metadata events
//	geo/        — H3 cells, bounding boxes, polygons, distances
//	importing/  — raw table → canonical TripDataset
//	validation/ — the ordered check battery & the validated flag
//	fixing/     — post-import correspondence repair
//	filtering/  — attribute, time-window and spatial trip selection
//	cleaning/   — rule-based row dropping
//	enrich/     — external attribute joins
//	concat/     — multi-dataset union
//	flows/      — OD flow aggregation & flow filtering
//	traces/     — trace import, consistency checks, coverage stats
//	inference/  — consecutive-point trip inference
//	sources/    — reusable per-provider import profiles
//
// Quick pipeline sketch:
//
//	raw table ──import──▶ trips ──validate──▶ trips✓ ──build──▶ flows
//	   traces ──validate──▶ traces✓ ──infer──▶ trips ──…
//
// Dive into the per-package docs for the exact contracts, and DESIGN.md for
// the decisions behind them.
//
//	go get github.com/katalvlaran/golondrina
package golondrina
