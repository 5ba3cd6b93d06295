package fieldcrypt_test

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/pkg/fieldcrypt"
)

func testKey() []byte {
	return bytes.Repeat([]byte{7}, 32)
}

func TestCodec_CifraYDescifra(t *testing.T) {
	c, err := fieldcrypt.New(testKey())
	require.NoError(t, err)

	enc, err := c.Encrypt("Calle 10 # 20-30")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, "enc:v1:"))
	assert.NotContains(t, enc, "Calle")

	plain, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "Calle 10 # 20-30", plain)
}

func TestCodec_NonceDistintoPorLlamada(t *testing.T) {
	c, err := fieldcrypt.New(testKey())
	require.NoError(t, err)
	a, _ := c.Encrypt("mismo")
	b, _ := c.Encrypt("mismo")
	assert.NotEqual(t, a, b)
}

func TestCodec_ValorPlanoSePasaTalCual(t *testing.T) {
	c, err := fieldcrypt.New(testKey())
	require.NoError(t, err)
	plain, err := c.Decrypt("legacy@correo.com")
	require.NoError(t, err)
	assert.Equal(t, "legacy@correo.com", plain)

	empty, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCodec_ClaveIncorrectaFalla(t *testing.T) {
	c1, _ := fieldcrypt.New(testKey())
	c2, _ := fieldcrypt.New(bytes.Repeat([]byte{9}, 32))
	enc, err := c1.Encrypt("secreto")
	require.NoError(t, err)
	_, err = c2.Decrypt(enc)
	assert.Error(t, err)
}

func TestNew_ValidaLongitud(t *testing.T) {
	_, err := fieldcrypt.New([]byte("corta"))
	assert.ErrorIs(t, err, fieldcrypt.ErrInvalidKey)
}

func TestNewFromBase64(t *testing.T) {
	encoded := "base64:" + base64.StdEncoding.EncodeToString(testKey())
	c, err := fieldcrypt.NewFromBase64(encoded)
	require.NoError(t, err)
	enc, err := c.Encrypt("x")
	require.NoError(t, err)
	plain, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "x", plain)

	_, err = fieldcrypt.NewFromBase64("%%%")
	assert.Error(t, err)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "ab**ef", fieldcrypt.Mask("abcdef", 2, 2))
	assert.Equal(t, "****", fieldcrypt.Mask("abcd", 2, 2))
	assert.Equal(t, "", fieldcrypt.Mask("", 2, 2))
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "081*******89", fieldcrypt.MaskPhone("081234567889"))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "ju**n@acme.co", fieldcrypt.MaskEmail("juaan@acme.co"))
	assert.Equal(t, "***@acme.co", fieldcrypt.MaskEmail("abc@acme.co"))
}
