package sheet

import (
	"errors"
	"testing"
)

func TestDecodeRows(t *testing.T) {
	payload := []byte("Sênior,QEPTA,NF.,Cidade\n12345,,777,São Paulo\n,4242,,\"Rio de Janeiro, RJ\"\n")

	rows, err := DecodeRows(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("decoded %d rows, want 2", len(rows))
	}
	if rows[0]["Sênior"] != "12345" || rows[0]["NF."] != "777" {
		t.Errorf("first row = %v", rows[0])
	}
	if rows[1]["Cidade"] != "Rio de Janeiro, RJ" {
		t.Errorf("quoted cell with comma = %q", rows[1]["Cidade"])
	}
}

func TestDecodeRowsKeepsHeaderWhitespace(t *testing.T) {
	payload := []byte("CNPJ,NÃO EXCLUIR \n111,http://example.com/view?x=1\n")

	rows, err := DecodeRows(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := rows[0]["NÃO EXCLUIR "]; !ok {
		t.Fatalf("trailing-space header must survive decoding, got keys %v", rows[0])
	}
}

func TestDecodeRowsStripsBOM(t *testing.T) {
	payload := []byte("\ufeffSênior,NF.\n1,2\n")

	rows, err := DecodeRows(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rows[0]["Sênior"] != "1" {
		t.Fatalf("BOM must not leak into the first header, got %v", rows[0])
	}
}

func TestDecodeRowsRaggedRows(t *testing.T) {
	payload := []byte("a,b,c\n1,2\n1,2,3,4\n")

	rows, err := DecodeRows(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("decoded %d rows, want 2", len(rows))
	}
	if rows[0]["c"] != "" {
		t.Errorf("short row should leave missing columns absent, got %q", rows[0]["c"])
	}
	if rows[1]["c"] != "3" {
		t.Errorf("long row should ignore extra cells, got %q", rows[1]["c"])
	}
}

func TestDecodeRowsEmptyPayload(t *testing.T) {
	for _, payload := range [][]byte{nil, []byte(""), []byte("   \n  "), []byte("Sênior,NF.\n")} {
		if _, err := DecodeRows(payload); !errors.Is(err, ErrEmptyPayload) {
			t.Fatalf("DecodeRows(%q) error = %v, want ErrEmptyPayload", payload, err)
		}
	}
}

func TestExportURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		gid  string
		want string
	}{
		{
			name: "share link",
			url:  "https://docs.google.com/spreadsheets/d/SHEET/edit?usp=sharing",
			gid:  "541004446",
			want: "https://docs.google.com/spreadsheets/d/SHEET/export?format=csv&gid=541004446",
		},
		{
			name: "no gid",
			url:  "https://docs.google.com/spreadsheets/d/SHEET/edit?usp=sharing",
			gid:  "",
			want: "https://docs.google.com/spreadsheets/d/SHEET/export?format=csv",
		},
		{
			name: "already an export url",
			url:  "https://docs.google.com/spreadsheets/d/SHEET/export?format=csv&gid=7",
			gid:  "9",
			want: "https://docs.google.com/spreadsheets/d/SHEET/export?format=csv&gid=7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExportURL(tt.url, tt.gid); got != tt.want {
				t.Fatalf("ExportURL(%q, %q) = %q, want %q", tt.url, tt.gid, got, tt.want)
			}
		})
	}
}
