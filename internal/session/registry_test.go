package session

import (
	"sync"
	"testing"

	"car-market-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_LoadReplacesCurrent(t *testing.T) {
	reg := NewRegistry()

	_, ok := reg.Current()
	assert.False(t, ok)

	reg.Load(models.Dataset{SourceName: "first.csv"})
	reg.Load(models.Dataset{SourceName: "second.csv"})

	cur, ok := reg.Current()
	require.True(t, ok)
	assert.Equal(t, "second.csv", cur.SourceName)
}

func TestRegistry_LoadHistoryReplacesWholesale(t *testing.T) {
	reg := NewRegistry()

	reg.LoadHistory([]models.Dataset{{SourceName: "jan.csv"}, {SourceName: "feb.csv"}})
	reg.LoadHistory([]models.Dataset{{SourceName: "toyota_showroom.csv"}})

	history := reg.History()
	require.Len(t, history, 1)
	assert.Equal(t, "toyota_showroom.csv", history[0].SourceName)

	history[0].SourceName = "mutated"
	assert.Equal(t, "toyota_showroom.csv", reg.History()[0].SourceName)
}

func TestRegistry_State(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, State{HistoryFiles: []string{}}, reg.State())

	reg.Load(models.Dataset{SourceName: "listings.csv"})
	reg.LoadHistory([]models.Dataset{{SourceName: "jan.csv"}, {SourceName: "feb.csv"}})

	assert.Equal(t, State{CurrentFile: "listings.csv", HistoryFiles: []string{"jan.csv", "feb.csv"}}, reg.State())
}

func TestRegistry_ConcurrentReload(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.Load(models.Dataset{SourceName: "watched.csv"})
		}()
		go func() {
			defer wg.Done()
			_, _ = reg.Current()
		}()
	}
	wg.Wait()

	cur, ok := reg.Current()
	require.True(t, ok)
	assert.Equal(t, "watched.csv", cur.SourceName)
}
