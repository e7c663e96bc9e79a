package datasetservice

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockmarketai/marketplace/internal/domain"
)

func TestNormalizeTags_JSONArray(t *testing.T) {
	tags, err := NormalizeTags([]string{`["finance", "crypto", "defi"]`})
	require.NoError(t, err)
	assert.Equal(t, []string{"finance", "crypto", "defi"}, tags)
}

func TestNormalizeTags_CommaSeparated(t *testing.T) {
	tags, err := NormalizeTags([]string{"finance, crypto ,defi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"finance", "crypto", "defi"}, tags)
}

func TestNormalizeTags_SingleTag(t *testing.T) {
	tags, err := NormalizeTags([]string{" finance "})
	require.NoError(t, err)
	assert.Equal(t, []string{"finance"}, tags)
}

func TestNormalizeTags_DropsEmptyAndDuplicates(t *testing.T) {
	tags, err := NormalizeTags([]string{"a, , b, a, b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)
}

func TestNormalizeTags_DedupIsCaseSensitive(t *testing.T) {
	tags, err := NormalizeTags([]string{"A", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "a"}, tags)
}

func TestNormalizeTags_RejectsTooMany(t *testing.T) {
	_, err := NormalizeTags([]string{"a,b,c,d,e,f,g,h,i,j,k,l"})
	require.Error(t, err)
	assert.True(t, domain.IsStatus(err, http.StatusBadRequest))
}

func TestNormalizeTags_DropsOverlongTags(t *testing.T) {
	tags, err := NormalizeTags([]string{"thistagiswaytoolongtobeacceptedhere,short"})
	require.NoError(t, err)
	assert.Equal(t, []string{"short"}, tags)
}

func TestNormalizeTags_MalformedJSONFallsBack(t *testing.T) {
	tags, err := NormalizeTags([]string{`["broken`})
	require.NoError(t, err)
	assert.Equal(t, []string{`["broken`}, tags)
}

func TestNormalizeTags_Empty(t *testing.T) {
	tags, err := NormalizeTags(nil)
	require.NoError(t, err)
	assert.Empty(t, tags)

	tags, err = NormalizeTags([]string{""})
	require.NoError(t, err)
	assert.Empty(t, tags)
}
