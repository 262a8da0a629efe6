package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Seoul population is ten million", "Seoul population is ten million", 1},
		{"case and punctuation ignored", "Seoul population: ten million!", "seoul POPULATION ten million", 1},
		{"disjoint", "the moon is made of cheese", "inflation rose last quarter", 0},
		{"partial overlap", "a b c d", "a b e f", 1.0 / 3.0},
		{"empty side", "", "anything", 0},
		{"both empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	a := "the earth is flat"
	b := "scientists say the earth is round"
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}
