package panel

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOptions() []RideOption {
	return []RideOption{
		{ClassID: "moto_economy", Name: "IntuMoto", Price: 5.0},
		{ClassID: "economy", Name: "IntuEconomy", Price: 15.5},
		{ClassID: "comfort", Name: "IntuComfort", Price: 22.0},
	}
}

func TestSelectAndSelected(t *testing.T) {
	d, _ := testDrawer(t)
	d.SetOptions(sampleOptions())

	_, ok := d.Selected()
	assert.False(t, ok)
	assert.False(t, d.CanConfirm())

	require.NoError(t, d.Select("economy"))
	chosen, ok := d.Selected()
	require.True(t, ok)
	assert.Equal(t, "IntuEconomy", chosen.Name)
	assert.True(t, d.CanConfirm())

	// Selecting again replaces, never adds.
	require.NoError(t, d.Select("comfort"))
	chosen, _ = d.Selected()
	assert.Equal(t, "IntuComfort", chosen.Name)
}

func TestSelectUnknownOption(t *testing.T) {
	d, _ := testDrawer(t)
	d.SetOptions(sampleOptions())

	assert.Error(t, d.Select("rocket"))
}

func TestSetOptionsDropsStaleSelection(t *testing.T) {
	d, _ := testDrawer(t)
	d.SetOptions(sampleOptions())
	require.NoError(t, d.Select("comfort"))

	d.SetOptions([]RideOption{{ClassID: "economy", Name: "IntuEconomy", Price: 16.0}})

	_, ok := d.Selected()
	assert.False(t, ok)
	assert.False(t, d.CanConfirm())
}

func TestConfirmRequiresSelection(t *testing.T) {
	d, _ := testDrawer(t)
	d.SetOptions(sampleOptions())

	err := d.Confirm(func(RideOption) {})
	assert.Error(t, err)
}

func TestConfirmFiresAfterLatencyAndCloses(t *testing.T) {
	d, rec := testDrawer(t)
	d.Open()
	d.SetOptions(sampleOptions())
	require.NoError(t, d.Select("economy"))

	var mu sync.Mutex
	var got *RideOption
	require.NoError(t, d.Confirm(func(opt RideOption) {
		mu.Lock()
		defer mu.Unlock()
		got = &opt
	}))

	assert.False(t, d.CanConfirm(), "confirm must not be re-triggerable while pending")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil
	}, time.Second, time.Millisecond)

	mu.Lock()
	assert.Equal(t, "IntuEconomy", got.Name)
	assert.InDelta(t, 15.5, got.Price, 1e-9)
	mu.Unlock()

	assert.False(t, d.Visible(), "drawer closes after a confirmed ride")
	assert.Equal(t, 0, rec.last())
}

func TestConfirmRejectsConcurrentConfirm(t *testing.T) {
	d, _ := testDrawer(t)
	d.Open()
	d.SetOptions(sampleOptions())
	require.NoError(t, d.Select("economy"))

	require.NoError(t, d.Confirm(nil))
	assert.Error(t, d.Confirm(nil))
}
