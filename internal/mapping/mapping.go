// Package mapping holds the per-retailer field-mapping tables, the null
// sentinel set, and the column resolver that binds a source table's actual
// headers to canonical fields.
//
// New retailers are additive table entries in the registry, never new code
// paths. The one exception is the AMZD format, which bypasses mapped
// extraction entirely; the registry flags it so the parser can dispatch.
package mapping

import "strings"

// Field identifies one of the four canonical extraction targets.
type Field string

const (
	FieldIdentifier  Field = "identifier"
	FieldProductName Field = "product_name"
	FieldUnitRetail  Field = "unit_retail"
	FieldQuantity    Field = "quantity"
)

// FieldMapping lists acceptable header names per canonical field, in
// priority order: earlier entries win when multiple candidate headers are
// present. All candidates are lower-case; matching is by equality or
// substring containment against the lower-cased header.
type FieldMapping struct {
	Identifier  []string
	ProductName []string
	UnitRetail  []string
	Quantity    []string
}

// Candidates returns the priority-ordered candidate list for a field.
func (m FieldMapping) Candidates(f Field) []string {
	switch f {
	case FieldIdentifier:
		return m.Identifier
	case FieldProductName:
		return m.ProductName
	case FieldUnitRetail:
		return m.UnitRetail
	case FieldQuantity:
		return m.Quantity
	}
	return nil
}

// Fields is the canonical resolution order.
var Fields = []Field{FieldIdentifier, FieldProductName, FieldUnitRetail, FieldQuantity}

// defaultMapping covers retailers without an explicit entry. Candidates are
// deliberately generic; retailer tables below narrow and re-prioritize them.
var defaultMapping = FieldMapping{
	Identifier:  []string{"item #", "item#", "item number", "item no", "lot #", "lot number", "upc", "asin", "sku", "model #", "model number", "barcode", "item id"},
	ProductName: []string{"item description", "product description", "description", "product name", "item name", "title", "product"},
	UnitRetail:  []string{"unit retail", "unit price", "retail price", "msrp", "retail", "price", "unit cost", "est retail"},
	Quantity:    []string{"qty", "quantity", "unit qty", "units", "# units", "count", "pieces"},
}

// retailerMappings keys are lower-cased site tags. Column layouts here were
// taken from real manifests; order inside each list matters.
var retailerMappings = map[string]FieldMapping{
	"blinq": {
		Identifier:  []string{"upc", "asin", "sku"},
		ProductName: []string{"product name", "description", "title"},
		UnitRetail:  []string{"retail price", "unit retail", "msrp", "price"},
		Quantity:    []string{"quantity", "qty"},
	},
	"bstock": {
		Identifier:  []string{"item #", "upc", "asin", "sku", "model"},
		ProductName: []string{"item description", "description", "product name"},
		UnitRetail:  []string{"unit retail", "orig. retail", "retail price", "msrp"},
		Quantity:    []string{"qty", "quantity", "units"},
	},
	"costco": {
		Identifier:  []string{"item number", "item #", "upc"},
		ProductName: []string{"item description", "description"},
		UnitRetail:  []string{"adjusted msrp", "msrp", "unit retail"},
		Quantity:    []string{"unit qty", "qty", "quantity"},
	},
	"homedepot": {
		Identifier:  []string{"sku", "internet #", "model #", "upc"},
		ProductName: []string{"product description", "description", "product name"},
		UnitRetail:  []string{"unit retail", "retail price", "price"},
		Quantity:    []string{"qty", "quantity"},
	},
	"lowes": {
		Identifier:  []string{"item #", "model #", "barcode", "upc"},
		ProductName: []string{"description", "product"},
		UnitRetail:  []string{"unit retail", "retail", "price"},
		Quantity:    []string{"qty", "quantity"},
	},
	"target": {
		Identifier:  []string{"dpci", "tcin", "upc", "item #"},
		ProductName: []string{"item description", "description", "title"},
		UnitRetail:  []string{"unit retail", "retail", "msrp"},
		Quantity:    []string{"qty", "quantity", "units"},
	},
	"walmart": {
		Identifier:  []string{"upc", "item #", "item number", "gtin"},
		ProductName: []string{"item description", "product name", "description"},
		UnitRetail:  []string{"unit retail", "retail price", "price"},
		Quantity:    []string{"qty", "quantity", "# units"},
	},
	"wayfair": {
		Identifier:  []string{"wayfair sku", "sku", "part #", "upc"},
		ProductName: []string{"product name", "item description", "description"},
		UnitRetail:  []string{"wholesale price", "unit retail", "msrp", "price"},
		Quantity:    []string{"qty", "quantity"},
	},
	"amazon": {
		Identifier:  []string{"asin", "fnsku", "upc", "item #"},
		ProductName: []string{"title", "item description", "product name", "description"},
		UnitRetail:  []string{"unit retail", "msrp", "price"},
		Quantity:    []string{"qty", "quantity", "units"},
	},
	"macys": {
		Identifier:  []string{"upc", "style #", "item #"},
		ProductName: []string{"item description", "description"},
		UnitRetail:  []string{"orig retail", "unit retail", "retail"},
		Quantity:    []string{"qty", "quantity"},
	},
	"bidfta": {
		Identifier:  []string{"lot code", "item #", "upc", "msku"},
		ProductName: []string{"title", "item description", "description"},
		UnitRetail:  []string{"msrp", "retail price", "unit retail"},
		Quantity:    []string{"qty", "quantity"},
	},
	"nellis": {
		Identifier:  []string{"inventory number", "lot #", "upc"},
		ProductName: []string{"lead description", "item description", "description", "title"},
		UnitRetail:  []string{"retail price", "unit retail", "msrp"},
		Quantity:    []string{"qty", "quantity"},
	},
	"liquidation": {
		Identifier:  []string{"mfg part #", "upc", "item #", "model"},
		ProductName: []string{"product description", "description", "item"},
		UnitRetail:  []string{"unit retail", "ext. retail", "retail"},
		Quantity:    []string{"qty", "quantity", "# units"},
	},
	"directliq": {
		Identifier:  []string{"sku", "upc", "item #"},
		ProductName: []string{"description", "product name"},
		UnitRetail:  []string{"unit retail", "retail", "price"},
		Quantity:    []string{"qty", "quantity"},
	},
	"ggbids": {
		Identifier:  []string{"lot #", "item #", "upc"},
		ProductName: []string{"item description", "description", "name"},
		UnitRetail:  []string{"retail price", "unit retail", "msrp"},
		Quantity:    []string{"qty", "quantity"},
	},
	"hibid": {
		Identifier:  []string{"lot number", "lot #", "upc"},
		ProductName: []string{"lot title", "description", "title"},
		UnitRetail:  []string{"retail price", "unit retail", "high estimate"},
		Quantity:    []string{"qty", "quantity"},
	},
	"midtenn": {
		Identifier:  []string{"item #", "upc", "sku"},
		ProductName: []string{"item description", "description"},
		UnitRetail:  []string{"unit retail", "retail price"},
		Quantity:    []string{"qty", "quantity"},
	},
	"techliq": {
		Identifier:  []string{"serial #", "sku", "model #", "upc"},
		ProductName: []string{"product", "description", "item description"},
		UnitRetail:  []string{"unit retail", "estimated retail", "retail"},
		Quantity:    []string{"qty", "quantity"},
	},
}

// AMZDSiteTag marks the one retailer whose tables bypass mapped extraction
// in favor of the dedicated recovery parser.
const AMZDSiteTag = "amzd"

// Registry resolves a site tag to its extraction strategy.
type Registry struct {
	mappings map[string]FieldMapping
	fallback FieldMapping
}

// NewRegistry builds the registry from the built-in retailer tables.
func NewRegistry() *Registry {
	m := make(map[string]FieldMapping, len(retailerMappings))
	for tag, fm := range retailerMappings {
		m[tag] = fm
	}
	return &Registry{mappings: m, fallback: defaultMapping}
}

// Register adds or replaces a retailer mapping.
func (r *Registry) Register(tag string, fm FieldMapping) {
	r.mappings[normalizeTag(tag)] = fm
}

// Lookup returns the mapping for a site tag, falling back to the default
// mapping for unknown retailers.
func (r *Registry) Lookup(tag string) FieldMapping {
	if fm, ok := r.mappings[normalizeTag(tag)]; ok {
		return fm
	}
	return r.fallback
}

// UsesRecoveryParser reports whether a site tag is handled by the
// misalignment recovery parser instead of mapped extraction.
func (r *Registry) UsesRecoveryParser(tag string) bool {
	return normalizeTag(tag) == AMZDSiteTag
}

// Tags returns all site tags with explicit mappings, plus the recovery tag.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.mappings)+1)
	for tag := range r.mappings {
		tags = append(tags, tag)
	}
	tags = append(tags, AMZDSiteTag)
	return tags
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
