package forms

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vaultList() List {
	return List{Kind: "vaults", Options: []Option{
		{ID: "v1", Label: "Vault 1", Parent: "c1"},
		{ID: "v2", Label: "Vault 2", Parent: "c1"},
		{ID: "v3", Label: "Vault 3", Parent: "c2"},
	}}
}

func campaignList() List {
	return List{Kind: "campaigns", Options: []Option{{ID: "c1", Label: "C1"}, {ID: "c2", Label: "C2"}}}
}

func TestFilterByParent(t *testing.T) {
	list := vaultList()
	for _, parent := range []string{"", "c1", "c2", "missing"} {
		filtered := Filter(list, parent)
		for _, o := range filtered.Options {
			assert.Equal(t, parent, o.Parent)
		}
		for _, o := range list.Options {
			if o.Parent == parent {
				assert.True(t, filtered.Contains(o.ID))
			}
		}
	}
	assert.Empty(t, Filter(list, "").Options)
	assert.Len(t, Filter(list, "c1").Options, 2)
}

func TestReconcileClearsValueOutsideParent(t *testing.T) {
	s := transferSchema()
	lists := map[string]List{"campaigns": campaignList(), "vaults": vaultList()}
	st := Mount(s, ModeCreate, "", nil)

	st.Apply(s, url.Values{"sourceCampaignId": {"c1"}})
	assert.Empty(t, Reconcile(s, st, lists))
	assert.Equal(t, []string{"v1", "v2"}, optionIDs(Filter(lists["vaults"], st.Get("sourceCampaignId"))))

	st.Apply(s, url.Values{"sourceVaultId": {"v1"}})
	assert.Empty(t, Reconcile(s, st, lists))
	assert.Equal(t, "v1", st.Get("sourceVaultId"))

	st.Apply(s, url.Values{"sourceCampaignId": {"c2"}, "sourceVaultId": {"v1"}})
	cleared := Reconcile(s, st, lists)
	assert.Equal(t, []string{"sourceVaultId"}, cleared)
	assert.Equal(t, "", st.Get("sourceVaultId"))
	assert.Equal(t, []string{"v3"}, optionIDs(Filter(lists["vaults"], st.Get("sourceCampaignId"))))
}

func TestReconcileWithUnavailableList(t *testing.T) {
	s := transferSchema()
	lists := map[string]List{"vaults": {Kind: "vaults", State: ListUnavailable}}
	st := Mount(s, ModeEdit, "t1", nil)
	st.Values["sourceCampaignId"] = "c1"
	st.Values["sourceVaultId"] = "v1"
	st.Initial = st.Values.Clone()

	assert.Empty(t, Reconcile(s, st, lists))
	assert.Equal(t, "v1", st.Get("sourceVaultId"))

	st.Set("sourceCampaignId", "c2")
	assert.Equal(t, []string{"sourceVaultId"}, Reconcile(s, st, lists))
}

func optionIDs(l List) []string {
	ids := make([]string, 0, len(l.Options))
	for _, o := range l.Options {
		ids = append(ids, o.ID)
	}
	return ids
}

func TestLoaderFetchesOncePerKind(t *testing.T) {
	fetcher := &stubFetcher{options: map[string][]Option{"vaults": vaultList().Options}}
	loader := NewLoader(fetcher, newTestLogger(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list := loader.Load(context.Background(), "vaults")
			assert.True(t, list.Available())
		}()
	}
	wg.Wait()
	loader.Load(context.Background(), "vaults")

	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	assert.Equal(t, 1, fetcher.calls["vaults"])
}

type loadCounter struct {
	mu     sync.Mutex
	failed []string
}

func (c *loadCounter) ObserveReferenceLoad(kind string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		c.failed = append(c.failed, kind)
	}
}

func TestLoaderMarksFailedListUnavailable(t *testing.T) {
	fetcher := &stubFetcher{
		options: map[string][]Option{"campaigns": campaignList().Options},
		errs:    map[string]error{"people": errors.New("connection refused")},
	}
	recorder := &loadCounter{}
	loader := NewLoader(fetcher, newTestLogger(), recorder)

	lists := loader.LoadAll(context.Background(), "campaigns", "people")
	require.Len(t, lists, 2)
	assert.True(t, lists["campaigns"].Available())
	assert.Equal(t, "form.select.none", lists["campaigns"].SentinelLabel())
	assert.False(t, lists["people"].Available())
	assert.Empty(t, lists["people"].Options)
	assert.Equal(t, "form.select.unavailable", lists["people"].SentinelLabel())
	assert.Equal(t, []string{"people"}, recorder.failed)
}
