package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripAccents(t *testing.T) {
	assert.Equal(t, "politica", StripAccents("política"))
	assert.Equal(t, "nino", StripAccents("niño"))
	assert.Equal(t, "SECCION", StripAccents("SECCIÓN"))
	assert.Equal(t, "plain", StripAccents("plain"))
}

func TestNormalizeSpaces(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeSpaces("  a\t b \n\n c  "))
	assert.Equal(t, "", NormalizeSpaces("   \n\t "))
}

func TestNormalizeForMatch(t *testing.T) {
	assert.Equal(t,
		"que es la politica de regalos",
		NormalizeForMatch("¿Qué es la política de regalos?"))
}

func TestTokenize_CaseFoldsAndStripsAccents(t *testing.T) {
	tokens := Tokenize("La POLÍTICA de Regalos y Obsequios")

	assert.Equal(t, []string{"politica", "regalos", "obsequios"}, tokens)
}

func TestTokenize_DropsShortTokensAndStopwords(t *testing.T) {
	tokens := Tokenize("el un de y no se ab regalos")

	// "no" and "ab" fall below the length cutoff, the rest are stopwords.
	assert.Equal(t, []string{"regalos"}, tokens)
}

func TestTokenize_PreservesOrderAndDuplicates(t *testing.T) {
	tokens := Tokenize("regalos clientes regalos")

	assert.Equal(t, []string{"regalos", "clientes", "regalos"}, tokens)
}

func TestTokenize_EmptyInput(t *testing.T) {
	assert.Nil(t, Tokenize(""))
	assert.Nil(t, Tokenize("  ¿¡!  "))
	assert.Nil(t, Tokenize("el la de"))
}

func TestTokenize_Deterministic(t *testing.T) {
	input := "Artículo 15: edad mínima de admisión al empleo"
	assert.Equal(t, Tokenize(input), Tokenize(input))
}

func TestUniqueTokens(t *testing.T) {
	unique := UniqueTokens([]string{"b", "a", "b", "c", "a"})

	assert.Equal(t, []string{"b", "a", "c"}, unique)
}

func TestTokenSet(t *testing.T) {
	set := TokenSet([]string{"regalos", "clientes"})

	assert.True(t, set["regalos"])
	assert.True(t, set["clientes"])
	assert.False(t, set["conflictos"])
}
