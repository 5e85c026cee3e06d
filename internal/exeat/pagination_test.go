package exeat

import (
	"net/url"
	"testing"

	"github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/core/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeWindow(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		page     int
		size     int
		expected Window
	}{
		{"empty result", 0, 1, 20, Window{TotalPages: 0, CurrentPage: 0, Offset: 0, Limit: 20}},
		{"empty result with large page", 0, 7, 20, Window{TotalPages: 0, CurrentPage: 0, Offset: 0, Limit: 20}},
		{"first page", 45, 1, 20, Window{TotalPages: 3, CurrentPage: 1, Offset: 0, Limit: 20}},
		{"last partial page", 45, 3, 20, Window{TotalPages: 3, CurrentPage: 3, Offset: 40, Limit: 20}},
		{"page past the end clamps", 45, 99, 20, Window{TotalPages: 3, CurrentPage: 3, Offset: 40, Limit: 20}},
		{"exact multiple", 40, 2, 20, Window{TotalPages: 2, CurrentPage: 2, Offset: 20, Limit: 20}},
		{"single item", 1, 1, 100, Window{TotalPages: 1, CurrentPage: 1, Offset: 0, Limit: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeWindow(tt.total, tt.page, tt.size))
		})
	}
}

func TestNewPageNeverReturnsNilItems(t *testing.T) {
	p := NewPage(0, ComputeWindow(0, 1, 20), nil)
	require.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.Equal(t, 0, p.CurrentPage)
	assert.Equal(t, 20, p.PageSize)
}

func TestParseListQuery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		q, err := ParseListQuery(url.Values{}, true)
		require.NoError(t, err)
		assert.Equal(t, DefaultListQuery(), q)
	})

	t.Run("all parameters", func(t *testing.T) {
		values := url.Values{
			"page":      {"2"},
			"page_size": {"50"},
			"status":    {"approved"},
			"sort":      {"leave_end"},
			"ascending": {"true"},
		}
		q, err := ParseListQuery(values, true)
		require.NoError(t, err)
		assert.Equal(t, 2, q.Page)
		assert.Equal(t, 50, q.PageSize)
		require.NotNil(t, q.Status)
		assert.Equal(t, reference.StatusApproved, *q.Status)
		assert.Equal(t, SortLeaveEnd, q.Sort)
		assert.True(t, q.Ascending)
	})

	t.Run("status is skipped when not accepted", func(t *testing.T) {
		q, err := ParseListQuery(url.Values{"status": {"bogus"}}, false)
		require.NoError(t, err)
		assert.Nil(t, q.Status)
	})

	invalid := map[string]url.Values{
		"page zero":          {"page": {"0"}},
		"page not a number":  {"page": {"two"}},
		"page size too big":  {"page_size": {"101"}},
		"page size zero":     {"page_size": {"0"}},
		"unknown sort":       {"sort": {"reason"}},
		"unknown status":     {"status": {"cancelled"}},
		"ascending not bool": {"ascending": {"maybe"}},
	}
	for name, values := range invalid {
		values := values
		t.Run(name, func(t *testing.T) {
			_, err := ParseListQuery(values, true)
			appErr, ok := internal.IsAppError(err)
			require.True(t, ok)
			assert.Equal(t, internal.ErrCodeInvalidQuery, appErr.Code)
			assert.Equal(t, 400, appErr.StatusCode)
		})
	}
}
