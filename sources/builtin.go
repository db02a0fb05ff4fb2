package sources

import "github.com/katalvlaran/golondrina/schema"

// Builtin profile names.
const (
	ProfileEODTrips      = "eod_trips"
	ProfileEODStages     = "eod_stages"
	ProfileADATRAPTrips  = "adatrap_trips"
	ProfileADATRAPStages = "adatrap_stages"
)

// builtinProfiles returns the shipped provider profiles. Each call builds
// fresh map instances so registrations never share state.
func builtinProfiles() []Profile {
	eodModes := map[string]string{
		"bip_bus":       "bus",
		"bip_metro":     "metro",
		"auto_chofer":   "car",
		"auto_pasajero": "car",
		"colectivo":     "taxi",
		"bicicleta":     "bike",
		"caminata":      "walk",
	}
	eodPurposes := map[string]string{
		"al_trabajo": "work",
		"al_estudio": "study",
		"al_hogar":   "home",
		"de_compras": "shopping",
		"de_salud":   "health",
		"recreacion": "leisure",
	}

	return []Profile{
		{
			Name:        ProfileEODTrips,
			Description: "Santiago origin-destination survey, trip table",
			FieldCorrespondence: map[string]string{
				schema.FieldTripID:         "id_viaje",
				schema.FieldUserID:         "id_persona",
				schema.FieldOriginTime:     "hora_inicio",
				schema.FieldDestTime:       "hora_fin",
				schema.FieldOriginLat:      "lat_origen",
				schema.FieldOriginLon:      "lon_origen",
				schema.FieldDestLat:        "lat_destino",
				schema.FieldDestLon:        "lon_destino",
				schema.FieldMode:           "modo_agregado",
				schema.FieldPurpose:        "proposito",
				schema.FieldDistanceMeters: "distancia",
			},
			ValueCorrespondence: map[string]map[string]string{
				schema.FieldMode:    cloneValues(eodModes),
				schema.FieldPurpose: cloneValues(eodPurposes),
			},
		},
		{
			Name:        ProfileEODStages,
			Description: "Santiago origin-destination survey, stage table",
			FieldCorrespondence: map[string]string{
				schema.FieldTripID:     "id_etapa",
				schema.FieldUserID:     "id_persona",
				schema.FieldOriginTime: "hora_subida",
				schema.FieldDestTime:   "hora_bajada",
				schema.FieldOriginLat:  "lat_subida",
				schema.FieldOriginLon:  "lon_subida",
				schema.FieldDestLat:    "lat_bajada",
				schema.FieldDestLon:    "lon_bajada",
				schema.FieldMode:       "modo",
			},
			ValueCorrespondence: map[string]map[string]string{
				schema.FieldMode: cloneValues(eodModes),
			},
		},
		{
			Name:        ProfileADATRAPTrips,
			Description: "ADATRAP smart card expansion, trip table",
			FieldCorrespondence: map[string]string{
				schema.FieldTripID:         "id",
				schema.FieldUserID:         "card_id",
				schema.FieldOriginTime:     "tiempo_subida",
				schema.FieldDestTime:       "tiempo_bajada",
				schema.FieldOriginLat:      "latitud_subida",
				schema.FieldOriginLon:      "longitud_subida",
				schema.FieldDestLat:        "latitud_bajada",
				schema.FieldDestLon:        "longitud_bajada",
				schema.FieldMode:           "modos",
				schema.FieldDistanceMeters: "distancia_en_metros",
				schema.FieldDurationSecs:   "tiempo_viaje_seg",
			},
			ValueCorrespondence: map[string]map[string]string{
				schema.FieldMode: {
					"1": "bus",
					"2": "metro",
					"3": "train",
				},
			},
		},
		{
			Name:        ProfileADATRAPStages,
			Description: "ADATRAP smart card expansion, stage table",
			FieldCorrespondence: map[string]string{
				schema.FieldTripID:         "id",
				schema.FieldUserID:         "card_id",
				schema.FieldOriginTime:     "t_subida",
				schema.FieldDestTime:       "t_bajada",
				schema.FieldOriginLat:      "lat_subida",
				schema.FieldOriginLon:      "lon_subida",
				schema.FieldDestLat:        "lat_bajada",
				schema.FieldDestLon:        "lon_bajada",
				schema.FieldMode:           "modo",
				schema.FieldDistanceMeters: "distancia_ruta",
			},
			ValueCorrespondence: map[string]map[string]string{
				schema.FieldMode: {
					"1": "bus",
					"2": "metro",
					"3": "train",
				},
			},
		},
	}
}

func cloneValues(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}

	return out
}
