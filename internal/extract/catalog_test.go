package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jeonse-risk/internal/model"
)

// Every variant owns a literal sample corpus. Each sample must be claimed
// by that variant when run through the whole catalog, so a new variant
// inserted earlier cannot silently steal an existing layout.
func TestDefaultCatalog_SampleCorpus(t *testing.T) {
	t.Parallel()

	catalog := DefaultCatalog()
	for _, v := range catalog.Variants() {
		require.NotEmpty(t, v.Samples, "variant %s has no samples", v.Name)
		for i, s := range v.Samples {
			t.Run(v.Name, func(t *testing.T) {
				amount, holder, ok := v.Match(s.Body)
				require.True(t, ok, "sample %d does not match its own variant", i)
				assert.Equal(t, s.Amount, amount)
				assert.Equal(t, s.Holder, holder)

				got, _, _, ok := catalog.Match(v.Kind, s.Body)
				require.True(t, ok)
				assert.Equal(t, v.Name, got.Name, "sample %d claimed by an earlier variant", i)
			})
		}
	}
}

func TestDefaultCatalog_UniqueNames(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, v := range DefaultCatalog().Variants() {
		assert.False(t, seen[v.Name], "duplicate variant %s", v.Name)
		seen[v.Name] = true
		require.NotNil(t, v.Pattern)
		assert.GreaterOrEqual(t, v.Pattern.SubexpIndex("amount"), 1, v.Name)
		assert.GreaterOrEqual(t, v.Pattern.SubexpIndex("holder"), 1, v.Name)
	}
}

func TestCatalog_VariantsIsCopy(t *testing.T) {
	t.Parallel()

	catalog := DefaultCatalog()
	vs := catalog.Variants()
	vs[0].Name = "changed"
	assert.NotEqual(t, "changed", catalog.Variants()[0].Name)
}

func TestCatalog_KindIsolation(t *testing.T) {
	t.Parallel()

	body := "2022년5월1일 제6666호 전세금 금100,000,000원 전세권자 김철수"
	_, _, _, ok := DefaultCatalog().Match(model.ClaimMortgage, body)
	assert.False(t, ok, "a lease layout must not parse as a mortgage")
}

func TestVariant_RejectsPartial(t *testing.T) {
	t.Parallel()

	catalog := DefaultCatalog()
	tests := []string{
		"2020년3월5일 제1234호 채권최고액 금원 근저당권자 주식회사국민은행",
		"2020년3월5일 제1234호 채권최고액 금240,000,000원 근저당권자",
		"2020년3월5일 제1234호 근저당권자 채권최고액",
	}
	for _, body := range tests {
		_, _, _, ok := catalog.Match(model.ClaimMortgage, body)
		assert.False(t, ok, body)
	}
}
