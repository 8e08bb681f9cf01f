package feeds

// Profile describes how one supplier's feed maps onto the canonical product
// schema. Alias lists are ordered by preference and shared by the JSON mapping
// and the CSV header resolution, so a column rename on the supplier side only
// needs one edit here.
type Profile struct {
	ID          string
	Name        string
	Currency    string
	API         bool
	IVAIncluded bool

	// DefaultIVARate fills iva_rate when the feed omits it. Nil means leave
	// the field unknown.
	DefaultIVARate *float64

	SKUAliases         []string
	NameAliases        []string
	BrandAliases       []string
	CategoryAliases    []string
	SubcategoryAliases []string
	ModelAliases       []string
	PartNumberAliases  []string
	PriceAliases       []string
	CurrencyAliases    []string
	IVAAliases         []string
	IVAIncludedAliases []string
	StockAliases       []string
	ImageAliases       []string
	ThumbAliases       []string
}

func f64(v float64) *float64 { return &v }

// Elit is the ELIT distributor. Quotes are in USD without IVA; electronics
// default to the 10.5% reduced rate when the feed omits the column.
func Elit() Profile {
	return Profile{
		ID:             "elit",
		Name:           "ELIT",
		Currency:       "USD",
		API:            true,
		IVAIncluded:    false,
		DefaultIVARate: f64(10.5),

		SKUAliases:         []string{"codigo_alfa", "sku", "id", "codigo"},
		NameAliases:        []string{"nombre", "descripcion", "name"},
		BrandAliases:       []string{"marca", "brand"},
		CategoryAliases:    []string{"rubro", "categoria", "category"},
		SubcategoryAliases: []string{"sub_rubro", "subcategoria", "subcategory"},
		ModelAliases:       []string{"modelo", "model"},
		PartNumberAliases:  []string{"part_number", "nro_parte", "pn"},
		PriceAliases:       []string{"precio", "pvp_usd", "price"},
		CurrencyAliases:    []string{"moneda", "currency"},
		IVAAliases:         []string{"iva", "alicuota_iva"},
		IVAIncludedAliases: []string{"iva_incluido", "precio_con_iva"},
		StockAliases:       []string{"stock_total", "stock", "cantidad"},
		ImageAliases:       []string{"imagen", "imagenes", "image_url"},
		ThumbAliases:       []string{"miniatura", "thumbnail", "thumb_url"},
	}
}
