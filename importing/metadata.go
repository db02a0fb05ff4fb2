package importing

import (
	"time"

	"github.com/katalvlaran/golondrina/schema"
)

// BuildImportMetadata assembles the JSON-safe traceability block stored in
// TripDataset.Metadata.Extra: the source, the correspondences actually
// applied, the effective domains, the schema snapshot reference and the
// import timestamp.
func BuildImportMetadata(
	sch *schema.TripSchema,
	sourceName string,
	appliedFieldMap map[string]string,
	appliedValueMaps map[string]map[string]string,
	domainsEffective map[string][]string,
) map[string]any {
	fieldMap := make(map[string]any, len(appliedFieldMap))
	for _, k := range sortedKeys(appliedFieldMap) {
		fieldMap[k] = appliedFieldMap[k]
	}
	valueMaps := make(map[string]any, len(appliedValueMaps))
	for _, field := range sortedKeys(appliedValueMaps) {
		inner := make(map[string]any, len(appliedValueMaps[field]))
		for _, raw := range sortedKeys(appliedValueMaps[field]) {
			inner[raw] = appliedValueMaps[field][raw]
		}
		valueMaps[field] = inner
	}
	domains := make(map[string]any, len(domainsEffective))
	for _, field := range sortedKeys(domainsEffective) {
		domains[field] = append([]string(nil), domainsEffective[field]...)
	}

	return map[string]any{
		"source_name":         sourceName,
		"schema_version":      sch.Version,
		"field_map_applied":   fieldMap,
		"value_maps_applied":  valueMaps,
		"domains_effective":   domains,
		"imported_at":         time.Now().UTC().Format(time.RFC3339),
	}
}
