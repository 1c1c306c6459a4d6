// Package normalize maps raw spreadsheet rows into canonical tracking
// records.
//
// The two sheets share no header layout, so each dataset has its own
// explicit column-by-column mapping with per-field defaults. Rows that lack
// every identifying column are dropped up front; a row that blows up during
// mapping is dropped alone and never aborts the batch.
package normalize

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/totemtrack/go-track-sheets/dates"
	"github.com/totemtrack/go-track-sheets/models"
)

const notAvailable = "N/A"

// Order-sheet column names, exactly as the export spells them.
const (
	colOrderNumber   = "Sênior"
	colSecondaryID   = "QEPTA"
	colInvoice       = "NF."
	colShipped       = "Data de Envio"
	colExpected      = "Prev. Entrega"
	colDelivered     = "Data Entrega"
	colCity          = "Cidade"
	colStateAbbr     = "UF"
	colCarrier       = "Transportadora"
	colInvoiceValue  = "Valor NFe"
	colQuantity      = "Quantidade"
	colMaterial      = "Material"
	colModel         = "MODELO"
	colCustomer      = "Cliente"
)

// Document-sheet column names.
const (
	colDocSecondaryID = "Qepta"
	colDocTaxID       = "CNPJ"
	colDocShipped     = "Data real de Saída"
	colDocExpected    = "Data real da Previsão de Entrega"
	colDocDelivered   = "Data Real de Entrega totem (executada)"
	colDocInvoice     = "NF do Totem"
	colDocModel       = "Modelo do totem"
	colDocState       = "Estado"
	colDocCustomer    = "Razão Social"
	colDocTradeName   = "Nome Fantasia"
)

// Orders normalizes rows from the order-tracking sheet. Rows without an
// order number, secondary id, or invoice number are excluded. The relative
// order of surviving rows matches the input.
func Orders(rows []models.RawRow) []*models.TrackingRecord {
	records := make([]*models.TrackingRecord, 0, len(rows))
	for _, row := range rows {
		if !anyPopulated(row, colOrderNumber, colSecondaryID, colInvoice) {
			continue
		}
		if rec, ok := orderRecord(row); ok {
			records = append(records, rec)
		}
	}
	return records
}

// Documents normalizes rows from the partner-channel sheet, keyed by the
// customer tax id. Rows with a blank CNPJ column are excluded.
func Documents(rows []models.RawRow) []*models.TrackingRecord {
	records := make([]*models.TrackingRecord, 0, len(rows))
	for _, row := range rows {
		if !anyPopulated(row, colDocTaxID) {
			continue
		}
		if rec, ok := documentRecord(row); ok {
			records = append(records, rec)
		}
	}
	return records
}

func orderRecord(row models.RawRow) (rec *models.TrackingRecord, ok bool) {
	defer dropOnPanic(row, &rec, &ok)

	orderNumber := intField(row, colOrderNumber, 0)
	secondary := intField(row, colSecondaryID, 0)
	orderID := orderNumber
	if orderID == 0 {
		orderID = secondary
	}

	return &models.TrackingRecord{
		OrderID:            orderID,
		SecondaryID:        secondary,
		TaxDocumentID:      intField(row, colInvoice, 0),
		ShippedOn:          textField(row, colShipped, notAvailable),
		ExpectedDeliveryOn: textField(row, colExpected, notAvailable),
		DeliveredOn:        textField(row, colDelivered, ""),
		City:               textField(row, colCity, notAvailable),
		State:              textField(row, colStateAbbr, notAvailable),
		Carrier:            textField(row, colCarrier, notAvailable),
		CustomerName:       textField(row, colCustomer, notAvailable),
		ProductValue:       textField(row, colInvoiceValue, "R$ 0,00"),
		Quantity:           intField(row, colQuantity, 1),
		ProductType:        textField(row, colMaterial, notAvailable),
		ModelName:          textField(row, colModel, notAvailable),
	}, true
}

func documentRecord(row models.RawRow) (rec *models.TrackingRecord, ok bool) {
	defer dropOnPanic(row, &rec, &ok)

	secondary := intField(row, colDocSecondaryID, 0)
	shipped := textField(row, colDocShipped, notAvailable)
	delivered := textField(row, colDocDelivered, "")
	model := textField(row, colDocModel, notAvailable)

	rec = &models.TrackingRecord{
		OrderID:            secondary,
		SecondaryID:        secondary,
		TaxDocumentID:      intField(row, colDocInvoice, 0),
		CustomerTaxID:      DigitsOnly(row[colDocTaxID]),
		ShippedOn:          shipped,
		ExpectedDeliveryOn: textField(row, colDocExpected, notAvailable),
		DeliveredOn:        delivered,
		City:               textField(row, colCity, notAvailable),
		State:              textField(row, colDocState, notAvailable),
		Carrier:            textField(row, colCarrier, notAvailable),
		CustomerName:       textField(row, colDocCustomer, notAvailable),
		TradeName:          textField(row, colDocTradeName, notAvailable),
		ProductValue:       notAvailable,
		Quantity:           intField(row, colQuantity, 1),
		ProductType:        model,
		ModelName:          model,
		ProofOfDeliveryURL: proofOfDelivery(row),
	}

	if days, determinable := dates.DaysBetween(shipped, delivered); determinable {
		rec.DeliveryDurationDays = &days
	}
	return rec, true
}

func dropOnPanic(row models.RawRow, rec **models.TrackingRecord, ok *bool) {
	if r := recover(); r != nil {
		slog.Warn("dropping unprocessable row",
			slog.Any("cause", r),
			slog.Int("columns", len(row)),
		)
		*rec, *ok = nil, false
	}
}

func anyPopulated(row models.RawRow, columns ...string) bool {
	for _, col := range columns {
		if strings.TrimSpace(row[col]) != "" {
			return true
		}
	}
	return false
}

// textField returns the trimmed cell text, or def when the cell is absent
// or blank.
func textField(row models.RawRow, column, def string) string {
	v := strings.TrimSpace(row[column])
	if v == "" {
		return def
	}
	return v
}

// intField coerces the cell to an integer. Absent, blank, or non-numeric
// cells yield def instead of an error.
func intField(row models.RawRow, column string, def int) int {
	v := strings.TrimSpace(row[column])
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f >= math.MinInt32 && f <= math.MaxInt32 {
		return int(f)
	}
	return def
}

// DigitsOnly strips every non-digit rune, reducing formatted tax ids such
// as "12.345.678/0001-99" to their bare digits.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
