package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestReadCatalog_Latin1(t *testing.T) {
	raw := latin1(t, "sku;nombre;categoria;proveedor;precio;stock\n"+
		"BRO-01;Brocha 2 pulgadas;Acabados;Pinturas Ñandú;12500,50;7\n")

	rows, err := readCatalog(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Pinturas Ñandú", rows[0].Supplier)
	assert.Equal(t, "12500.5", rows[0].Price.String())
	assert.Equal(t, 7, rows[0].Stock)
}

func TestReadCatalog_StockInvalido(t *testing.T) {
	raw := latin1(t, "sku;nombre;categoria;proveedor;precio;stock\nX;Y;Z;W;10;-3\n")

	_, err := readCatalog(bytes.NewReader(raw))
	assert.ErrorContains(t, err, "fila 2")
}
