package domain

// CatalogEntry maps one product display name to the keyword fragments that
// identify it in free row text. Fragments are matched as lowercase substrings
// against space-padded row text, so entries like " rus " anchor at word
// boundaries without regex.
type CatalogEntry struct {
	Product  string
	Keywords []string
}

// Catalog is the static product vocabulary. Entry order is preserved so
// tagged output is stable; matching itself is order-independent.
type Catalog []CatalogEntry

// Products returns the display names in catalog order.
func (c Catalog) Products() []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.Product
	}
	return out
}

// DefaultCatalog returns the GMF product vocabulary. Extending the catalog is
// a configuration-time change; nothing mutates it at runtime.
func DefaultCatalog() Catalog {
	return Catalog{
		// Kakao
		{Product: "Rohkakao Peru", Keywords: []string{"peru", "kakao peru", "rohkakao per"}},
		{Product: "Rohkakao Ecuador", Keywords: []string{"ecuador", "kakao ecuador", "ecu md", "ecu "}},
		{Product: "Rohkakao Criollo", Keywords: []string{"criollo"}},
		{Product: "Kakao Nibs", Keywords: []string{"nib", "nibs", "sweet nibs"}},
		{Product: "Feel Good Kakao", Keywords: []string{"feel good", "feelgood"}},
		{Product: "Rise Up & Shine", Keywords: []string{"rise up", "rise up & shine", "rise up and shine", " rus ", "rus "}},
		{Product: "Calm Down & Relax", Keywords: []string{"calm down", "calm down & relax", " cdr ", "cdr "}},
		{Product: "The Wholy Bean", Keywords: []string{"wholy bean"}},
		{Product: "SinnPhonie", Keywords: []string{"sinnphonie"}},
		{Product: "Queen Beans", Keywords: []string{"queen bean", "queen beans", " qb "}},

		// Vitalpilze
		{Product: "Reishi", Keywords: []string{"reishi"}},
		{Product: "Lions Mane", Keywords: []string{"lions mane", "lion mane", "lion's mane"}},
		{Product: "Cordyceps", Keywords: []string{"cordyceps"}},
		{Product: "Chaga", Keywords: []string{"chaga"}},
		{Product: "Pure Power", Keywords: []string{"pure power", " pp "}},
		{Product: "Vitalpilz Extrakte", Keywords: []string{"vitalpilzextra", "vitalpilz extra", "vitalpilz-extra", "pilzextrakt"}},
		{Product: "Vitalpilz Kakao", Keywords: []string{"vitalpilzkakao", "vitalpilz kakao", "vitalpilz-kakao"}},

		// Superfoods
		{Product: "Coco Aminos", Keywords: []string{"coco amino", "cocoamino", "würzsauce", "wuerzsauce", "gewürzbereitung"}},
		{Product: "Ashwagandha", Keywords: []string{"ashwagandha"}},
		{Product: "Matcha", Keywords: []string{"matcha"}},
		{Product: "Chlorella", Keywords: []string{"chlorella"}},
		{Product: "Maca", Keywords: []string{"maca"}},
		{Product: "Lucuma", Keywords: []string{"lucuma"}},

		// Snacks
		{Product: "Cashew Cluster", Keywords: []string{"cashew cluster", "cluster"}},
		{Product: "Peru Butter Drops", Keywords: []string{"butter drops", "peru butter"}},
	}
}
