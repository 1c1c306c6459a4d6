package normalize

import (
	"testing"

	"github.com/totemtrack/go-track-sheets/models"
)

func TestOrdersFieldMapping(t *testing.T) {
	rows := []models.RawRow{
		{
			"Sênior":         " 12345 ",
			"QEPTA":          "",
			"NF.":            "777",
			"Data de Envio":  "01/02/2024",
			"Prev. Entrega":  "10/02/2024",
			"Data Entrega":   "08/02/2024",
			"Cidade":         " São Paulo ",
			"UF":             "SP",
			"Transportadora": "Braspress",
			"Valor NFe":      "R$ 1.234,56",
			"Quantidade":     "2",
			"Material":       "Totem",
			"MODELO":         "T-2000",
			"Cliente":        "ACME Ltda",
		},
	}

	records := Orders(rows)
	if len(records) != 1 {
		t.Fatalf("normalized %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.OrderID != 12345 {
		t.Errorf("OrderID = %d, want 12345", rec.OrderID)
	}
	if rec.SecondaryID != 0 {
		t.Errorf("SecondaryID = %d, want 0", rec.SecondaryID)
	}
	if rec.TaxDocumentID != 777 {
		t.Errorf("TaxDocumentID = %d, want 777", rec.TaxDocumentID)
	}
	if rec.ShippedOn != "01/02/2024" || rec.ExpectedDeliveryOn != "10/02/2024" || rec.DeliveredOn != "08/02/2024" {
		t.Errorf("dates = %q/%q/%q", rec.ShippedOn, rec.ExpectedDeliveryOn, rec.DeliveredOn)
	}
	if rec.City != "São Paulo" || rec.State != "SP" {
		t.Errorf("destination = %q/%q", rec.City, rec.State)
	}
	if rec.ProductValue != "R$ 1.234,56" || rec.Quantity != 2 {
		t.Errorf("value = %q x%d", rec.ProductValue, rec.Quantity)
	}
}

func TestOrdersDefaults(t *testing.T) {
	records := Orders([]models.RawRow{{"QEPTA": "99"}})
	if len(records) != 1 {
		t.Fatalf("normalized %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.OrderID != 99 || rec.SecondaryID != 99 {
		t.Errorf("ids = %d/%d, want secondary id backfilling the order id", rec.OrderID, rec.SecondaryID)
	}
	if rec.ShippedOn != "N/A" || rec.ExpectedDeliveryOn != "N/A" {
		t.Errorf("missing dates = %q/%q, want N/A", rec.ShippedOn, rec.ExpectedDeliveryOn)
	}
	if rec.DeliveredOn != "" {
		t.Errorf("DeliveredOn = %q, want empty when no delivery event exists", rec.DeliveredOn)
	}
	if rec.City != "N/A" || rec.Carrier != "N/A" || rec.CustomerName != "N/A" {
		t.Errorf("text defaults = %q/%q/%q, want N/A", rec.City, rec.Carrier, rec.CustomerName)
	}
	if rec.ProductValue != "R$ 0,00" {
		t.Errorf("ProductValue = %q, want R$ 0,00", rec.ProductValue)
	}
	if rec.Quantity != 1 {
		t.Errorf("Quantity = %d, want default 1", rec.Quantity)
	}
}

func TestOrdersNonNumericCoercion(t *testing.T) {
	records := Orders([]models.RawRow{{
		"Sênior":     "not-a-number",
		"NF.":        "also bad",
		"Quantidade": "many",
	}})
	if len(records) != 1 {
		t.Fatalf("normalized %d records, want 1 (identifying column is populated)", len(records))
	}

	rec := records[0]
	if rec.OrderID != 0 || rec.TaxDocumentID != 0 {
		t.Errorf("failed numeric coercion should default to 0, got %d/%d", rec.OrderID, rec.TaxDocumentID)
	}
	if rec.Quantity != 1 {
		t.Errorf("Quantity = %d, want default 1 on failed coercion", rec.Quantity)
	}
}

func TestOrdersOverflowingNumbersDefault(t *testing.T) {
	records := Orders([]models.RawRow{{
		"Sênior":     "1e30",
		"NF.":        "9e99",
		"Quantidade": "NaN",
	}})
	if len(records) != 1 {
		t.Fatalf("normalized %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.OrderID != 0 || rec.TaxDocumentID != 0 {
		t.Errorf("out-of-range values should default to 0, got %d/%d", rec.OrderID, rec.TaxDocumentID)
	}
	if rec.Quantity != 1 {
		t.Errorf("Quantity = %d, want default 1 on non-finite input", rec.Quantity)
	}
}

func TestOrdersExplicitZeroQuantity(t *testing.T) {
	records := Orders([]models.RawRow{{
		"Sênior":     "123",
		"Quantidade": "0",
	}})
	if len(records) != 1 {
		t.Fatalf("normalized %d records, want 1", len(records))
	}
	if got := records[0].Quantity; got != 0 {
		t.Errorf("Quantity = %d, want explicit 0 preserved", got)
	}
}

func TestOrdersDropsUnidentifiableRows(t *testing.T) {
	rows := []models.RawRow{
		{"Cidade": "Recife", "Cliente": "No keys at all"},
		{"Sênior": "  ", "QEPTA": "", "NF.": " "},
		{"Sênior": "111"},
		{"NF.": "222"},
	}

	records := Orders(rows)
	if len(records) != 2 {
		t.Fatalf("normalized %d records, want 2", len(records))
	}
	if records[0].OrderID != 111 {
		t.Errorf("first surviving record OrderID = %d, want 111 (input order preserved)", records[0].OrderID)
	}
	if records[1].TaxDocumentID != 222 {
		t.Errorf("second surviving record TaxDocumentID = %d, want 222", records[1].TaxDocumentID)
	}
}

func TestOrdersEmptyInput(t *testing.T) {
	if got := Orders(nil); len(got) != 0 {
		t.Fatalf("Orders(nil) = %d records, want 0", len(got))
	}
	if got := Orders([]models.RawRow{}); len(got) != 0 {
		t.Fatalf("Orders(empty) = %d records, want 0", len(got))
	}
}

func TestDocumentsFieldMapping(t *testing.T) {
	rows := []models.RawRow{
		{
			"Qepta":            "4242",
			"CNPJ":             "12.345.678/0001-99",
			"Data real de Saída":                     "01/02/2024",
			"Data real da Previsão de Entrega":       "10/02/2024",
			"Data Real de Entrega totem (executada)": "05/02/2024",
			"NF do Totem":    "901",
			"Quantidade":     "3",
			"Modelo do totem": "T-3000",
			"Cidade":         "Curitiba",
			"Estado":         "PR",
			"Transportadora": "Jamef",
			"Razão Social":   "Restaurante Bom Prato Ltda",
			"Nome Fantasia":  "Bom Prato",
		},
	}

	records := Documents(rows)
	if len(records) != 1 {
		t.Fatalf("normalized %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.CustomerTaxID != "12345678000199" {
		t.Errorf("CustomerTaxID = %q, want digits only", rec.CustomerTaxID)
	}
	if rec.OrderID != 4242 || rec.SecondaryID != 4242 {
		t.Errorf("ids = %d/%d, want 4242", rec.OrderID, rec.SecondaryID)
	}
	if rec.ProductType != "T-3000" || rec.ModelName != "T-3000" {
		t.Errorf("model = %q/%q, want totem model in both fields", rec.ProductType, rec.ModelName)
	}
	if rec.ProductValue != "N/A" {
		t.Errorf("ProductValue = %q, want N/A for the document dataset", rec.ProductValue)
	}
	if rec.TradeName != "Bom Prato" || rec.CustomerName != "Restaurante Bom Prato Ltda" {
		t.Errorf("names = %q/%q", rec.TradeName, rec.CustomerName)
	}
	if rec.DeliveryDurationDays == nil || *rec.DeliveryDurationDays != 4 {
		t.Errorf("DeliveryDurationDays = %v, want 4", rec.DeliveryDurationDays)
	}
}

func TestDocumentsDropsRowsWithoutTaxID(t *testing.T) {
	rows := []models.RawRow{
		{"Qepta": "1", "CNPJ": ""},
		{"Qepta": "2", "CNPJ": "   "},
		{"Qepta": "3"},
	}
	if got := Documents(rows); len(got) != 0 {
		t.Fatalf("Documents kept %d rows without a tax id, want 0", len(got))
	}
}

func TestDocumentsNegativeDurationSuppressed(t *testing.T) {
	records := Documents([]models.RawRow{{
		"CNPJ":               "11122233344",
		"Data real de Saída": "10/02/2024",
		"Data Real de Entrega totem (executada)": "01/02/2024",
	}})
	if len(records) != 1 {
		t.Fatalf("normalized %d records, want 1", len(records))
	}
	if records[0].DeliveryDurationDays != nil {
		t.Fatalf("DeliveryDurationDays = %d, want absent for inverted dates", *records[0].DeliveryDurationDays)
	}
}

func TestProofOfDeliveryVariants(t *testing.T) {
	tests := []struct {
		name string
		row  models.RawRow
		want string
	}{
		{
			name: "exact column name",
			row:  models.RawRow{"CNPJ": "1", "NÃO EXCLUIR": "https://drive.google.com/file/d/abc/view?usp=drivesdk"},
			want: "https://drive.google.com/file/d/abc/preview?usp=drivesdk",
		},
		{
			name: "trailing space variant",
			row:  models.RawRow{"CNPJ": "1", "NÃO EXCLUIR ": "https://drive.google.com/file/d/abc/view?x=1"},
			want: "https://drive.google.com/file/d/abc/preview?x=1",
		},
		{
			name: "ascii folded variant",
			row:  models.RawRow{"CNPJ": "1", "NAO EXCLUIR": "http://example.com/proof"},
			want: "http://example.com/proof",
		},
		{
			name: "prefix fallback",
			row:  models.RawRow{"CNPJ": "1", "NÃO APAGAR (bn)": "https://example.com/view?id=2"},
			want: "https://example.com/preview?id=2",
		},
		{
			name: "non link cell ignored",
			row:  models.RawRow{"CNPJ": "1", "NÃO EXCLUIR": "pending upload"},
			want: "",
		},
		{
			name: "no proof column",
			row:  models.RawRow{"CNPJ": "1", "Cidade": "Natal"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Documents([]models.RawRow{tt.row})
			if len(records) != 1 {
				t.Fatalf("normalized %d records, want 1", len(records))
			}
			if got := records[0].ProofOfDeliveryURL; got != tt.want {
				t.Fatalf("ProofOfDeliveryURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "12.345.678/0001-99", want: "12345678000199"},
		{input: " 111.222.333-44 ", want: "11122233344"},
		{input: "abc", want: ""},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		if got := DigitsOnly(tt.input); got != tt.want {
			t.Errorf("DigitsOnly(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
