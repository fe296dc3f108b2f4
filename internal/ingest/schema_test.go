package ingest

import (
	"errors"
	"testing"

	"github.com/qjlxg/fe/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordResolver_LocalizedHeaders(t *testing.T) {
	headers := []string{"日期", "开盘", "收盘", "最高", "最低", "成交量", "成交额", "振幅", "换手率(%)"}

	cm, err := KeywordResolver{}.Resolve(headers)
	require.NoError(t, err)

	assert.Equal(t, 0, cm.Date)
	assert.Equal(t, 1, cm.Open)
	assert.Equal(t, 2, cm.Close)
	assert.Equal(t, 3, cm.High)
	assert.Equal(t, 4, cm.Low)
	assert.Equal(t, 6, cm.Amount)
	assert.Equal(t, 8, cm.Turnover, "turnover matches by substring")
}

func TestKeywordResolver_EnglishHeaders(t *testing.T) {
	headers := []string{"Date", "Open", "High", "Low", "Close", "Amount"}

	cm, err := KeywordResolver{}.Resolve(headers)
	require.NoError(t, err)

	assert.Equal(t, 0, cm.Date)
	assert.Equal(t, 5, cm.Amount)
	assert.Equal(t, -1, cm.Turnover, "turnover is optional")
}

func TestKeywordResolver_BOMStripped(t *testing.T) {
	headers := []string{"\uFEFF日期", "最高", "最低", "收盘", "成交额"}

	cm, err := KeywordResolver{}.Resolve(headers)
	require.NoError(t, err)
	assert.Equal(t, 0, cm.Date)
}

func TestKeywordResolver_MissingRequired(t *testing.T) {
	_, err := KeywordResolver{}.Resolve([]string{"日期", "收盘"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSchemaUnresolved))
}
