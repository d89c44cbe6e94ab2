package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"0712345678":      "254712345678",
		"712345678":       "254712345678",
		"+254712345678":   "254712345678",
		"254 712 345 678": "254712345678",
		"12345":           "",
		"":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestExtractPhones(t *testing.T) {
	phones := ExtractPhones("MPESA 0712345678 FROM +254712345678 AND 254722000111")
	assert.Equal(t, []string{"254712345678", "254722000111"}, phones)
	assert.Empty(t, ExtractPhones("CHQ 1234"))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "john kamau", NormalizeName("  KAMAU,  John "))
	assert.Equal(t, "", NormalizeName("1234"))
}

func TestExtractPayerName(t *testing.T) {
	assert.Equal(t, "Jane Wanjiru", ExtractPayerName("Paybill 400200 Acc. Jane Wanjiru"))
	assert.Equal(t, "Jane Wanjiru", ExtractPayerName("DEP A/C Jane Wanjiru 0712345678"))
	assert.Equal(t, "", ExtractPayerName("BANK CHARGES"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("john kamau", "johnkamau"))
	assert.InDelta(t, 0.8, Similarity("jon kamau", "john kamau"), 1e-9)
	assert.InDelta(t, 0.75, Similarity("jon kamau", "jonah kamau"), 1e-9)
	assert.Equal(t, 0.0, Similarity("a", "ab"))
	assert.Less(t, Similarity("grace achieng", "john kamau"), 0.6)
}

func TestContainsAllWords(t *testing.T) {
	assert.True(t, containsAllWords("MPESA 0733999888 GRACE ACHIENG", "Grace Achieng"))
	assert.False(t, containsAllWords("MPESA GRACE", "Grace Achieng"))
	assert.False(t, containsAllWords("MPESA GRACE", "Grace"))
}
