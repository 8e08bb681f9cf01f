package domain

// Product is one catalog row per SKU per provider partition.
// Pointer fields are nullable: absent means "unknown", never zero.
type Product struct {
	SKU            string   `db:"sku" json:"sku"`
	ProviderID     string   `db:"provider_id" json:"providerId"`
	Name           *string  `db:"name" json:"name,omitempty"`
	Brand          *string  `db:"brand" json:"brand,omitempty"`
	Category       *string  `db:"category" json:"category,omitempty"`
	Subcategory    *string  `db:"subcategory" json:"subcategory,omitempty"`
	Model          *string  `db:"model" json:"model,omitempty"`
	PartNumber     *string  `db:"part_number" json:"partNumber,omitempty"`
	Description    *string  `db:"description" json:"description,omitempty"`
	Price          *float64 `db:"price" json:"price,omitempty"`
	Currency       *string  `db:"currency" json:"currency,omitempty"`
	IVARate        *float64 `db:"iva_rate" json:"ivaRate,omitempty"`
	IVAIncluded    *string  `db:"iva_included" json:"ivaIncluded,omitempty"` // raw feed flag, intentionally not coerced
	Stock          *float64 `db:"stock" json:"stock,omitempty"`
	ImageURL       *string  `db:"image_url" json:"imageUrl,omitempty"`
	ThumbURL       *string  `db:"thumb_url" json:"thumbUrl,omitempty"`
	MarginOverride *float64 `db:"margin_override" json:"marginOverride,omitempty"`
	UpdatedAt      string   `db:"updated_at" json:"updatedAt"`
	UpdatedBy      *string  `db:"updated_by" json:"updatedBy,omitempty"`
}

type Provider struct {
	ID          string   `db:"id" json:"id"`
	Name        string   `db:"name" json:"name"`
	API         bool     `db:"api" json:"api"`
	Currency    *string  `db:"currency" json:"currency,omitempty"`
	FX          *float64 `db:"fx" json:"fx,omitempty"`
	IVAIncluded bool     `db:"iva_included" json:"ivaIncluded"`
	Notes       *string  `db:"notes" json:"notes,omitempty"`
	UpdatedAt   string   `db:"updated_at" json:"updatedAt"`
}

type Settings struct {
	MarginPct float64 `db:"margin_pct" json:"marginPct"`
	UpdatedAt string  `db:"updated_at" json:"updatedAt"`
	UpdatedBy string  `db:"updated_by" json:"updatedBy"`
}

// ChatMessage is an append-only log entry keyed by timestamp plus a random suffix.
type ChatMessage struct {
	ID        string `db:"id" json:"id"`
	Message   string `db:"message" json:"message"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

// SyncSummary reports one ingestion run.
type SyncSummary struct {
	Provider string   `json:"provider"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Pruned   int      `json:"pruned"`
	Deduped  int      `json:"deduped"`
	Errors   []string `json:"errors"`
	DryRun   bool     `json:"dry"`
}
