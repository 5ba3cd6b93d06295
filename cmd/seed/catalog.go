package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogRow fila del catálogo CSV: sku;nombre;categoría;proveedor;precio;stock.
type catalogRow struct {
	SKU      string
	Name     string
	Category string
	Supplier string
	Price    decimal.Decimal
	Stock    int
}

// readCatalog lee el catálogo exportado desde Excel (ISO-8859-1, separado por ';').
// La primera fila es encabezado.
func readCatalog(r io.Reader) ([]catalogRow, error) {
	cr := csv.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	cr.Comma = ';'
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]catalogRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < 6 {
			return nil, fmt.Errorf("fila %d: se esperaban 6 columnas, hay %d", i+2, len(rec))
		}
		price, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[4]), ",", "."))
		if err != nil {
			return nil, fmt.Errorf("fila %d: precio inválido %q", i+2, rec[4])
		}
		stock, err := strconv.Atoi(strings.TrimSpace(rec[5]))
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("fila %d: stock inválido %q", i+2, rec[5])
		}
		rows = append(rows, catalogRow{
			SKU:      strings.TrimSpace(rec[0]),
			Name:     strings.TrimSpace(rec[1]),
			Category: strings.TrimSpace(rec[2]),
			Supplier: strings.TrimSpace(rec[3]),
			Price:    price,
			Stock:    stock,
		})
	}
	return rows, nil
}

// defaultCatalog catálogo mínimo cuando no se pasa archivo.
func defaultCatalog() []catalogRow {
	return []catalogRow{
		{SKU: "TOR-001", Name: "Tornillo hexagonal 1/4", Category: "Ferretería", Supplier: "Distribuidora Andina", Price: decimal.NewFromInt(350), Stock: 120},
		{SKU: "CAB-010", Name: "Cable UTP Cat6 (m)", Category: "Redes", Supplier: "Conectar S.A.S.", Price: decimal.NewFromInt(2100), Stock: 8},
		{SKU: "PIN-200", Name: "Pintura blanca galón", Category: "Acabados", Supplier: "Distribuidora Andina", Price: decimal.NewFromInt(58000), Stock: 15},
	}
}
