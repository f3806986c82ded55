package folio

// FallbackTypeCode is the catalog code for unclassified infractions. Folio
// issuance must never fail on an unrecognized infraction label, so unknown
// ids resolve here instead of erroring.
const FallbackTypeCode = "09"

// Catalog maps infraction-type ids to their 2-digit folio codes. It is
// injected into the Generator rather than read from package state so the
// table can be versioned and swapped in tests.
type Catalog struct {
	version string
	codes   map[string]string
}

// NewCatalog builds a catalog from an explicit code table.
func NewCatalog(version string, codes map[string]string) *Catalog {
	copied := make(map[string]string, len(codes))
	for k, v := range codes {
		copied[k] = v
	}
	return &Catalog{version: version, codes: copied}
}

// DefaultCatalog returns the closed catalog currently agreed with the
// backend. New infraction types require a coordinated catalog version bump.
func DefaultCatalog() *Catalog {
	return NewCatalog("2024-07", map[string]string{
		"estacionamiento_prohibido": "01",
		"exceso_velocidad":          "02",
		"semaforo":                  "03",
		"sentido_contrario":         "04",
		"documentos_vencidos":       "05",
		"obstruccion_via":           "06",
		"alcoholimetro":             "07",
		"uso_celular":               "08",
	})
}

// Version identifies the code table in effect.
func (c *Catalog) Version() string { return c.version }

// Code resolves an infraction-type id to its 2-digit code, falling back to
// FallbackTypeCode for anything outside the catalog.
func (c *Catalog) Code(infractionTypeID string) string {
	if code, ok := c.codes[infractionTypeID]; ok {
		return code
	}
	return FallbackTypeCode
}
