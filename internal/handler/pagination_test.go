package handler

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected PaginationParams
		wantErr  bool
	}{
		{name: "defaults", query: "", expected: PaginationParams{Page: 1, PageSize: 10}},
		{name: "explicit values", query: "page=4&page_size=25", expected: PaginationParams{Page: 4, PageSize: 25}},
		{name: "max page size", query: "page_size=100", expected: PaginationParams{Page: 1, PageSize: 100}},
		{name: "zero page", query: "page=0", wantErr: true},
		{name: "negative page", query: "page=-2", wantErr: true},
		{name: "non numeric page", query: "page=two", wantErr: true},
		{name: "zero page size", query: "page_size=0", wantErr: true},
		{name: "page size over max", query: "page_size=101", wantErr: true},
		{name: "page whose offset overflows", query: "page=9223372036854775807&page_size=100", wantErr: true},
		{name: "page beyond int64", query: "page=99999999999999999999", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/parcels/?"+tc.query, nil)
			params, err := ParsePagination(req)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, params)
		})
	}
}

func TestParseOptionalBool(t *testing.T) {
	truthy := []string{"true", "TRUE", "1", "yes", "on"}
	falsy := []string{"false", "False", "0", "no", "off"}

	for _, raw := range truthy {
		v, err := parseOptionalBool(url.Values{"f": {raw}}, "f")
		require.NoError(t, err, raw)
		require.NotNil(t, v)
		assert.True(t, *v, raw)
	}
	for _, raw := range falsy {
		v, err := parseOptionalBool(url.Values{"f": {raw}}, "f")
		require.NoError(t, err, raw)
		require.NotNil(t, v)
		assert.False(t, *v, raw)
	}

	t.Run("absent means no filter", func(t *testing.T) {
		v, err := parseOptionalBool(url.Values{}, "f")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := parseOptionalBool(url.Values{"f": {"perhaps"}}, "f")
		assert.Error(t, err)
	})
}

func TestParseOptionalInt64(t *testing.T) {
	v, err := parseOptionalInt64(url.Values{"type_id": {"3"}}, "type_id")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, int64(3), *v)

	v, err = parseOptionalInt64(url.Values{}, "type_id")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = parseOptionalInt64(url.Values{"type_id": {"1.5"}}, "type_id")
	assert.Error(t, err)
}
