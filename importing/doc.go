// Package importing converts an arbitrary external table into a canonical
// Golondrina TripDataset: field correspondence (rename/select source columns
// onto canonical names), categorical value standardization against schema
// domains (explicit correspondences, then aliases, then controlled domain
// extension or rejection), H3 cell derivation, and traceability metadata
// assembly.
//
// Policy model:
//   - recoverable conditions (unknown category, missing optional field)
//     become Issues on the ImportReport and never abort on their own;
//   - Options.Strict converts the presence of error-level Issues, after the
//     full pass, into a returned ErrImport;
//   - Options.StrictDomains gates controlled domain extension: with it set,
//     or on a non-extendable DomainSpec, an unknown category is always an
//     error-level Issue — never silently dropped, never silently coerced;
//   - structural impossibilities (nil table, invalid schema, ambiguous
//     duplicate field mapping at the contract level) surface immediately.
//
// ApplyFieldCorrespondence and StandardizeCategoricalValues are the two
// decomposed sub-operations, independently callable and testable; each
// returns its own Issue list so ImportTrips can merge and cap them.
package importing
