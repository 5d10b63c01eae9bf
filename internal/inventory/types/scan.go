package types

import "strings"

// ScanEvent is the checkpoint a physical scan represents.
type ScanEvent string

const (
	EventProduction     ScanEvent = "PRODUCTION_SCAN"
	EventWarehouseEntry ScanEvent = "WAREHOUSE_ENTRY"
	EventWarehouseExit  ScanEvent = "WAREHOUSE_EXIT"
	EventBoutiqueStock  ScanEvent = "BOUTIQUE_STOCK_SCAN"
	EventMarcheStock    ScanEvent = "MARCHE_STOCK_SCAN"
	EventSaleyaStock    ScanEvent = "SALEYA_STOCK_SCAN"
	EventSaleB2C        ScanEvent = "SALE_B2C"
	EventDeliveryB2B    ScanEvent = "DELIVERY_B2B"
)

var allScanEvents = []ScanEvent{
	EventProduction,
	EventWarehouseEntry,
	EventWarehouseExit,
	EventBoutiqueStock,
	EventMarcheStock,
	EventSaleyaStock,
	EventSaleB2C,
	EventDeliveryB2B,
}

// AllScanEvents returns every known event kind in checkpoint order.
func AllScanEvents() []ScanEvent {
	out := make([]ScanEvent, len(allScanEvents))
	copy(out, allScanEvents)
	return out
}

func (e ScanEvent) Valid() bool {
	for _, k := range allScanEvents {
		if e == k {
			return true
		}
	}
	return false
}

// RequiresClient reports whether scans of this kind must name a B2B client.
func (e ScanEvent) RequiresClient() bool { return e == EventDeliveryB2B }

// LeavesStock reports whether the item is out of inventory after this event.
func (e ScanEvent) LeavesStock() bool {
	return e == EventSaleB2C || e == EventDeliveryB2B
}

// Label is the human status an item carries after its latest event.
func (e ScanEvent) Label() string {
	switch e {
	case EventProduction:
		return "Produced"
	case EventWarehouseEntry:
		return "In Warehouse"
	case EventWarehouseExit:
		return "In Transit"
	case EventBoutiqueStock:
		return "At Boutique"
	case EventMarcheStock:
		return "At Marché"
	case EventSaleyaStock:
		return "At Saleya"
	case EventSaleB2C:
		return "Sold"
	case EventDeliveryB2B:
		return "Delivered"
	default:
		return string(e)
	}
}

// ScanLog is one recorded scan. Timestamp is ISO-8601 (RFC 3339).
type ScanLog struct {
	SerialNumber string    `json:"serialNumber"`
	Timestamp    string    `json:"timestamp"`
	ScanEvent    ScanEvent `json:"scanEvent"`
	Location     string    `json:"location"`
	ClientID     string    `json:"clientId,omitempty"`
}

// ProductIDFromSerial strips the trailing unit segment from a serial
// number: "OLV-001-0001" belongs to product "OLV-001". A serial without a
// dash is its own product id.
func ProductIDFromSerial(serial string) string {
	serial = strings.TrimSpace(serial)
	i := strings.LastIndex(serial, "-")
	if i <= 0 {
		return serial
	}
	return serial[:i]
}
