package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
)

func TestAwinApplyAffiliate(t *testing.T) {
	adapter := &AwinAdapter{}
	config := types.AffiliateConfig{"deeplink_prefix": "https://www.awin1.com/cread.php?awinmid=1&ued="}

	out := adapter.ApplyAffiliate("https://loja.example.com/produto?id=1", config)
	assert.Equal(t,
		"https://www.awin1.com/cread.php?awinmid=1&ued=https%3A%2F%2Floja.example.com%2Fproduto%3Fid%3D1",
		out)
}

func TestAwinApplyAffiliateNoPrefix(t *testing.T) {
	adapter := &AwinAdapter{}
	url := "https://loja.example.com/produto"
	assert.Equal(t, url, adapter.ApplyAffiliate(url, types.AffiliateConfig{}))
}

func TestGenericApplyAffiliateIsIdentity(t *testing.T) {
	adapter := &GenericAdapter{}
	url := "https://loja.example.com/produto?utm_source=x"
	assert.Equal(t, url, adapter.ApplyAffiliate(url, types.AffiliateConfig{"tag": "ignored"}))
}

func TestSetQueryParam(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{"append", "https://e.com/p?a=1&b=2", "https://e.com/p?a=1&b=2&tag=t1"},
		{"replace keeps position", "https://e.com/p?a=1&tag=old&b=2", "https://e.com/p?a=1&tag=t1&b=2"},
		{"no query", "https://e.com/p", "https://e.com/p?tag=t1"},
		{"blank value preserved", "https://e.com/p?a=&b=2", "https://e.com/p?a=&b=2&tag=t1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, setQueryParam(tc.url, "tag", "t1"))
		})
	}
}
