package index

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkWith(content string) DocumentChunk {
	return DocumentChunk{
		Content:      content,
		SourceFile:   "doc.md",
		LastModified: time.Now(),
		IndexedAt:    time.Now(),
		SizeBytes:    int64(len(content)),
	}
}

func TestQueryTerms(t *testing.T) {
	// Short tokens are dropped, duplicates collapsed, casing normalized.
	assert.Equal(t, []string{"alpha", "beta"}, queryTerms("Alpha, beta! ALPHA go is"))
	assert.Nil(t, queryTerms("go is ok"))
	assert.Nil(t, queryTerms("!!! ???"))
}

func TestRetrieveScoring(t *testing.T) {
	// "alpha" matches as a whole word (+3), "beta" only as a substring of
	// "betaware" (+1); both matched, so the multi-term bonus adds 2*2.
	chunks := []DocumentChunk{chunkWith("the alpha release of betaware shipped")}

	hits := Retrieve("alpha beta", 0, chunks)
	require.Len(t, hits, 1)
	assert.Equal(t, 8, hits[0].Score)
	assert.Equal(t, 2, hits[0].MatchedTerms)
}

func TestRetrieveSingleTermNoBonus(t *testing.T) {
	chunks := []DocumentChunk{chunkWith("alpha appears here alone")}
	hits := Retrieve("alpha", 0, chunks)
	require.Len(t, hits, 1)
	assert.Equal(t, 3, hits[0].Score)
	assert.Equal(t, 1, hits[0].MatchedTerms)
}

func TestRetrieveSensitivityThreshold(t *testing.T) {
	chunks := []DocumentChunk{
		chunkWith("alpha and beta both appear as words"),   // 3+3+4 = 10
		chunkWith("the alpha release of betaware shipped"), // 3+1+4 = 8
	}

	// At sensitivity 100 with two terms the threshold is the maximum
	// possible score, 10: only a perfect match survives.
	hits := Retrieve("alpha beta", 100, chunks)
	require.Len(t, hits, 1)
	assert.Equal(t, 10, hits[0].Score)

	// At sensitivity 0 the floor of 1 still applies, so both pass.
	hits = Retrieve("alpha beta", 0, chunks)
	assert.Len(t, hits, 2)
}

func TestRetrieveMinimumFloorExcludesNonMatches(t *testing.T) {
	chunks := []DocumentChunk{chunkWith("nothing relevant in this text")}
	assert.Empty(t, Retrieve("alpha beta", 0, chunks))
}

func TestRetrieveTopThree(t *testing.T) {
	var chunks []DocumentChunk
	for i := 0; i < 5; i++ {
		chunks = append(chunks, chunkWith(fmt.Sprintf("alpha mention number %d", i)))
	}
	hits := Retrieve("alpha", 0, chunks)
	assert.Len(t, hits, 3)
}

func TestRetrieveOrdersByScoreThenInputOrder(t *testing.T) {
	chunks := []DocumentChunk{
		chunkWith("alpha only here"),           // 3
		chunkWith("alpha and beta here"),       // 10
		chunkWith("alpha appears another way"), // 3, ties with the first
	}

	hits := Retrieve("alpha beta", 0, chunks)
	require.Len(t, hits, 3)
	assert.Equal(t, 10, hits[0].Score)
	// Equal scores keep input order.
	assert.Equal(t, "alpha only here", hits[1].Chunk.Content)
	assert.Equal(t, "alpha appears another way", hits[2].Chunk.Content)
}

func TestRetrieveEmptyQuery(t *testing.T) {
	chunks := []DocumentChunk{chunkWith("alpha beta")}
	assert.Nil(t, Retrieve("", 0, chunks))
	assert.Nil(t, Retrieve("a b", 0, chunks)) // all terms too short
}

func TestStoreSearch(t *testing.T) {
	s := NewStore("unused.json")
	s.UpsertFile("doc.md", []DocumentChunk{chunkWith("alpha beta gamma")})
	hits := s.Search("gamma", 0)
	require.Len(t, hits, 1)
	assert.Equal(t, "alpha beta gamma", hits[0].Chunk.Content)
}
