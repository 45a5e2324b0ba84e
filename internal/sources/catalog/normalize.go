package catalog

import (
	"strconv"
	"strings"
	"sync"

	"github.com/curioapp/curio/internal/domain"
)

// Canonical attribute keys used in alias tables.
const (
	attrProductID  = "productId"
	attrName       = "name"
	attrMaterial   = "material"
	attrColorGroup = "colorGroup"
	attrSize       = "size"
	attrUsage      = "usage"
	attrPrice      = "price"
	attrCurrency   = "currency"
)

// Image resolution order, first match wins. A singular Image field beats
// the hover photo, which beats an existing Images sequence.
var imageFields = []string{"Image", "Photo Hover", "Images", "images"}

// defaultAliases covers the field-name drift observed across origins,
// plus the canonical names themselves so an already-normalized record
// maps back onto itself.
func defaultAliases() map[string][]string {
	return map[string][]string{
		attrProductID:  {"productId", "Product ID", "product_id", "id", "ID"},
		attrName:       {"name", "Name", "Product Name", "Title"},
		attrMaterial:   {"material", "Material"},
		attrColorGroup: {"colorGroup", "Color Group", "Colour Group", "color_group", "Color"},
		attrSize:       {"size", "Size", "Dimensions"},
		attrUsage:      {"usage", "Usage", "Usage Area", "Application"},
		attrPrice:      {"price", "Price", "Unit Price", "unit_price"},
		attrCurrency:   {"currency", "Currency"},
	}
}

// Normalizer converts raw upstream product records into canonical
// domain.Product values. It is the single, total boundary between
// loosely-typed payloads and the rest of the engine: it never fails,
// every missing attribute defaults to the empty value of its semantic
// type, and normalizing an already-canonical record is a no-op.
type Normalizer struct {
	mu      sync.RWMutex
	aliases map[string][]string
}

// NewNormalizer creates a normalizer with the built-in alias table.
func NewNormalizer() *Normalizer {
	return &Normalizer{aliases: defaultAliases()}
}

// ApplyProfiles extends the alias table with per-origin profiles.
// Built-in aliases keep precedence; profile aliases are appended.
func (n *Normalizer) ApplyProfiles(config ProfilesConfig) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, profile := range config {
		for attr, names := range profile.Aliases {
			for _, name := range names {
				if name == "" || containsString(n.aliases[attr], name) {
					continue
				}
				n.aliases[attr] = append(n.aliases[attr], name)
			}
		}
	}
}

// Normalize converts one raw record into a canonical product.
// Pure: the input map is not modified.
func (n *Normalizer) Normalize(raw RawProduct) domain.Product {
	n.mu.RLock()
	defer n.mu.RUnlock()

	// A canonical record re-entering the normalizer carries its
	// attributes nested under "details"; flatten them back first.
	flat := flatten(raw)

	return domain.Product{
		ProductID: coerceInt(n.lookup(flat, attrProductID)),
		Details: domain.ProductDetails{
			Name:       coerceString(n.lookup(flat, attrName)),
			Material:   coerceString(n.lookup(flat, attrMaterial)),
			ColorGroup: coerceString(n.lookup(flat, attrColorGroup)),
			Size:       coerceString(n.lookup(flat, attrSize)),
			Usage:      coerceString(n.lookup(flat, attrUsage)),
			Price:      coerceFloat(n.lookup(flat, attrPrice)),
			Currency:   coerceString(n.lookup(flat, attrCurrency)),
			Images:     resolveImages(flat),
		},
	}
}

// NormalizeAll converts a batch of raw records.
func (n *Normalizer) NormalizeAll(raws []RawProduct) []domain.Product {
	products := make([]domain.Product, 0, len(raws))
	for _, raw := range raws {
		products = append(products, n.Normalize(raw))
	}
	return products
}

func (n *Normalizer) lookup(raw RawProduct, attr string) any {
	for _, name := range n.aliases[attr] {
		if v, ok := raw[name]; ok && v != nil {
			return v
		}
	}
	// Fall back to a case-insensitive scan for unseen drift.
	for _, name := range n.aliases[attr] {
		for k, v := range raw {
			if v != nil && strings.EqualFold(k, name) {
				return v
			}
		}
	}
	return nil
}

func flatten(raw RawProduct) RawProduct {
	details, ok := raw["details"].(map[string]any)
	if !ok {
		return raw
	}
	flat := make(RawProduct, len(raw)+len(details))
	for k, v := range raw {
		if k == "details" {
			continue
		}
		flat[k] = v
	}
	for k, v := range details {
		flat[k] = v
	}
	return flat
}

// resolveImages applies the Image > Photo Hover > Images precedence and
// guarantees a non-nil ordered sequence of URL strings.
func resolveImages(raw RawProduct) []string {
	for _, field := range imageFields {
		v, ok := raw[field]
		if !ok || v == nil {
			continue
		}
		if images := coerceImages(v); images != nil {
			return images
		}
	}
	return []string{}
}

func coerceImages(v any) []string {
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		parts := strings.Split(val, "\n")
		images := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				images = append(images, trimmed)
			}
		}
		return images
	case []string:
		images := make([]string, 0, len(val))
		for _, s := range val {
			if s != "" {
				images = append(images, s)
			}
		}
		return images
	case []any:
		images := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				images = append(images, s)
			}
		}
		return images
	}
	return nil
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}

func coerceInt(v any) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return i
		}
	}
	return 0
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
	}
	return 0
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
