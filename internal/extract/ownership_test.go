package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOwnership_Sole(t *testing.T) {
	t.Parallel()

	summary := "홍길동 (소유자) 800101-******* 단독소유 서울특별시 마포구 망원동 1 2"
	body := "1 소유권보존 2010년1월1일 제1호 소유자 주식회사한국건설\n" +
		"2 소유권이전 2018년3월2일 제1234호 2018년2월1일 매매 소유자 홍길동 800101-******* 서울특별시 마포구"

	owners := ParseOwnership(summary, body)
	require.Len(t, owners, 1)
	assert.Equal(t, "홍길동", owners[0].Name)
	assert.Equal(t, 100.0, owners[0].SharePercent)
	assert.Equal(t, "매매", owners[0].AcquisitionMethod)
	assert.Equal(t, time.Date(2018, 3, 2, 0, 0, 0, 0, time.UTC), owners[0].RegisteredAt)
}

func TestParseOwnership_CoOwners(t *testing.T) {
	t.Parallel()

	summary := "김철수 (공유자) 750101-******* 2분의 1 서울특별시 강남구 3\n" +
		"이영희 (공유자) 780101-******* 2분의 1 서울특별시 강남구 3"

	owners := ParseOwnership(summary, "")
	require.Len(t, owners, 2)
	assert.Equal(t, "김철수", owners[0].Name)
	assert.Equal(t, 50.0, owners[0].SharePercent)
	assert.Equal(t, "이영희", owners[1].Name)
	assert.Equal(t, 50.0, owners[1].SharePercent)
	assert.True(t, owners[0].RegisteredAt.IsZero(), "no body, no enrichment")
}

func TestParseShare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		row  string
		want float64
	}{
		{"단독소유", 100},
		{"800101-******* 3분의 2 서울", 66.67},
		{"1/4 서울", 25},
		{"지분 12.5% 서울", 12.5},
		{"서울특별시", 0},
		{"3분의 4", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, parseShare(tt.row), 0.001, tt.row)
	}
}

func TestParseOwnership_Empty(t *testing.T) {
	t.Parallel()

	owners := ParseOwnership("", "")
	assert.NotNil(t, owners)
	assert.Empty(t, owners)
}
