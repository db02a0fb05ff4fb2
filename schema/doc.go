// Package schema defines the Golondrina canonical format contracts:
// FieldSpec, DomainSpec, TripSchema and TraceSchema.
//
// Schemas are pure value objects: two schemas with identical version,
// fields and required list are interchangeable for every consumer, and a
// schema is never mutated after construction. Snapshot() produces the
// JSON-safe structural view persisted alongside datasets; it is stable
// across process runs (fields and domains sorted by name).
//
// Domain invariants (DomainSpec.Aliases resolving into Values) are not
// enforced at construction time: violations surface as validation issues,
// never as construction errors.
package schema
