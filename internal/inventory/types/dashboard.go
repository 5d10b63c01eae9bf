package types

// SummaryItem is the in-stock count for one product.
type SummaryItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Count       int    `json:"count"`
}

// CakeStatus is the latest known state of one serialized item.
type CakeStatus struct {
	SerialNumber    string `json:"serialNumber"`
	CurrentLocation string `json:"currentLocation"`
	Status          string `json:"status"`
	LastUpdate      string `json:"lastUpdate"`
}

type ProductionSummary struct {
	ProducedToday int `json:"producedToday"`
	TotalProduced int `json:"totalProduced"`
}

type InventoryByLocation struct {
	InProductionWarehouse int `json:"inProductionWarehouse"`
	InTransit             int `json:"inTransit"`
	AtBoutique            int `json:"atBoutique"`
	AtMarche              int `json:"atMarche"`
	AtSaleya              int `json:"atSaleya"`
}

type SalesSummary struct {
	SoldTodayB2C       int `json:"soldTodayB2C"`
	DeliveredTodayB2B  int `json:"deliveredTodayB2B"`
	TotalSoldDelivered int `json:"totalSoldDelivered"`
}

type LiveOperationsData struct {
	ProductionSummary   ProductionSummary   `json:"productionSummary"`
	InventoryByLocation InventoryByLocation `json:"inventoryByLocation"`
	SalesSummary        SalesSummary        `json:"salesSummary"`
}
