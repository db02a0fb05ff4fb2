// Package fixing repairs the field and value correspondences of an already
// imported trip dataset without re-importing the raw source.
//
// FixTripsCorrespondence renames wrongly mapped columns (current → target)
// and recodes wrongly standardized categorical values, then records the
// corrections in the dataset provenance so the effective correspondence
// stays reconstructible. The returned dataset always has its validated flag
// cleared; a fixed table must be validated again.
package fixing
