// Package models defines data structures shared by the tracking pipeline.
package models

// RawRow is one spreadsheet row as fetched: column header to cell text.
// There are no shape guarantees. Columns may be missing or renamed between
// exports, and cells may carry stray whitespace or mixed encodings.
type RawRow map[string]string

// TrackingRecord is the canonical shape of one shipment row. Records are
// rebuilt wholesale on every refresh and never mutated after normalization.
//
// Dates stay in their textual dd/mm/yyyy form (or "N/A") so the presentation
// layer can display them exactly as the source sheet carries them.
type TrackingRecord struct {
	OrderID            int    `json:"order_id"`
	SecondaryID        int    `json:"secondary_id"`
	TaxDocumentID      int    `json:"tax_document_id"`
	CustomerTaxID      string `json:"customer_tax_id,omitempty"`
	ShippedOn          string `json:"shipped_on"`
	ExpectedDeliveryOn string `json:"expected_delivery_on"`
	DeliveredOn        string `json:"delivered_on,omitempty"`
	City               string `json:"city"`
	State              string `json:"state"`
	Carrier            string `json:"carrier"`
	CustomerName       string `json:"customer_name"`
	TradeName          string `json:"trade_name,omitempty"`
	ProductValue       string `json:"product_value"`
	Quantity           int    `json:"quantity"`
	ProductType        string `json:"product_type"`
	ModelName          string `json:"model_name"`
	ProofOfDeliveryURL string `json:"proof_of_delivery_url,omitempty"`

	// DeliveryDurationDays is derived from the shipped and delivered dates.
	// Nil when the duration cannot be determined (unparsable dates or an
	// end date preceding the start date).
	DeliveryDurationDays *int `json:"delivery_duration_days,omitempty"`
}
