package domain

const (
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
	RoleCustomer = "customer"
)

type User struct {
	Email     string  `db:"email" json:"email"`
	Name      string  `db:"name" json:"name"`
	Hash      string  `db:"password_hash" json:"-"`
	Role      string  `db:"role" json:"role"`
	CreatedAt string  `db:"created_at" json:"createdAt"`
	CreatedBy *string `db:"created_by" json:"createdBy,omitempty"`
	UpdatedAt *string `db:"updated_at" json:"updatedAt,omitempty"`
	UpdatedBy *string `db:"updated_by" json:"updatedBy,omitempty"`
}

// Claims is the verified payload of an auth token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
