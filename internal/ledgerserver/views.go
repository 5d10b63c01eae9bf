package ledgerserver

import (
	"sort"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/inventory/store"
	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

// latestBySerial picks each serial's most recent entry. scans are newest
// first; a parsed timestamp overrides list order when it is strictly later.
func latestBySerial(scans []types.ScanLog) map[string]types.ScanLog {
	latest := make(map[string]types.ScanLog)
	for _, e := range scans {
		cur, seen := latest[e.SerialNumber]
		if !seen || later(e, cur) {
			latest[e.SerialNumber] = e
		}
	}
	return latest
}

func later(a, b types.ScanLog) bool {
	ta, okA := store.ScanTime(a)
	tb, okB := store.ScanTime(b)
	return okA && okB && ta.After(tb)
}

// Summary counts, per product, the serials still in stock: those whose
// latest event is neither a sale nor a delivery.
func Summary(scans []types.ScanLog, products []types.Product) []types.SummaryItem {
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	counts := make(map[string]int)
	for serial, e := range latestBySerial(scans) {
		if e.ScanEvent.LeavesStock() {
			continue
		}
		counts[types.ProductIDFromSerial(serial)]++
	}

	out := make([]types.SummaryItem, 0, len(counts))
	for id, n := range counts {
		name := names[id]
		if name == "" {
			name = id
		}
		out = append(out, types.SummaryItem{ProductID: id, ProductName: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// CakeStatuses reports every serial's latest location and status, most
// recently updated first.
func CakeStatuses(scans []types.ScanLog) []types.CakeStatus {
	latest := latestBySerial(scans)
	out := make([]types.CakeStatus, 0, len(latest))
	for serial, e := range latest {
		out = append(out, types.CakeStatus{
			SerialNumber:    serial,
			CurrentLocation: e.Location,
			Status:          e.ScanEvent.Label(),
			LastUpdate:      e.Timestamp,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		ti, _ := time.Parse(time.RFC3339Nano, out[i].LastUpdate)
		tj, _ := time.Parse(time.RFC3339Nano, out[j].LastUpdate)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].SerialNumber < out[j].SerialNumber
	})
	return out
}

// LiveOperations rolls up production, stock location and sales. "Today"
// is the calendar day of now in now's location. Counts are of distinct
// serials.
func LiveOperations(scans []types.ScanLog, now time.Time) types.LiveOperationsData {
	y, m, d := now.Date()
	isToday := func(e types.ScanLog) bool {
		t, ok := store.ScanTime(e)
		if !ok {
			return false
		}
		ty, tm, td := t.In(now.Location()).Date()
		return ty == y && tm == m && td == d
	}

	produced := make(map[string]bool)
	producedToday := make(map[string]bool)
	soldToday := make(map[string]bool)
	deliveredToday := make(map[string]bool)
	for _, e := range scans {
		switch e.ScanEvent {
		case types.EventProduction:
			produced[e.SerialNumber] = true
			if isToday(e) {
				producedToday[e.SerialNumber] = true
			}
		case types.EventSaleB2C:
			if isToday(e) {
				soldToday[e.SerialNumber] = true
			}
		case types.EventDeliveryB2B:
			if isToday(e) {
				deliveredToday[e.SerialNumber] = true
			}
		}
	}

	var out types.LiveOperationsData
	out.ProductionSummary = types.ProductionSummary{
		ProducedToday: len(producedToday),
		TotalProduced: len(produced),
	}
	out.SalesSummary.SoldTodayB2C = len(soldToday)
	out.SalesSummary.DeliveredTodayB2B = len(deliveredToday)

	inv := &out.InventoryByLocation
	for _, e := range latestBySerial(scans) {
		switch e.ScanEvent {
		case types.EventProduction, types.EventWarehouseEntry:
			inv.InProductionWarehouse++
		case types.EventWarehouseExit:
			inv.InTransit++
		case types.EventBoutiqueStock:
			inv.AtBoutique++
		case types.EventMarcheStock:
			inv.AtMarche++
		case types.EventSaleyaStock:
			inv.AtSaleya++
		case types.EventSaleB2C, types.EventDeliveryB2B:
			out.SalesSummary.TotalSoldDelivered++
		}
	}
	return out
}
