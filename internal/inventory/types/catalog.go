package types

type Product struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category,omitempty"`
	UnitOfMeasure   string  `json:"unitOfMeasure,omitempty"`
	UnitCost        float64 `json:"unitCost,omitempty"`
	SupplierName    string  `json:"supplierName,omitempty"`
	ReorderLevel    int     `json:"reorderLevel,omitempty"`
	ReorderQuantity int     `json:"reorderQuantity,omitempty"`
	StorageLocation string  `json:"storageLocation,omitempty"`
	ShelfLifeDays   int     `json:"shelfLifeDays,omitempty"`
	IsPerishable    bool    `json:"isPerishable"`
}

type Role string

const (
	RoleWarehouseManager Role = "Warehouse Manager"
	RoleScanner          Role = "Scanner"
)

// User is a directory entry. Password is either a bcrypt hash or, for
// legacy sheets, plaintext; it is never kept after login.
type User struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Location string `json:"location"`
	Password string `json:"password,omitempty"`
}

type B2BClient struct {
	ClientID      string `json:"clientId"`
	ClientName    string `json:"clientName"`
	ContactPerson string `json:"contactPerson"`
	Address       string `json:"address"`
}
