package config

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDerived(t *testing.T) {
	cfg := Default()
	d := cfg.Derived()
	assert.Equal(t, 50*time.Millisecond, d.TickInterval)
	assert.Equal(t, 2500*time.Millisecond, d.PickupInterval)
	assert.Equal(t, 15*time.Second, d.HeartbeatTimeout)
	assert.Equal(t, 60, d.TilesWide)
	assert.Equal(t, 45, d.TilesHigh)
}

func TestMergeOverwritesScalarsAndKeepsSiblings(t *testing.T) {
	cfg, err := Merge(Default(), []byte(`{"arena":{"width":3200},"ai":{"maxCount":3}}`))
	require.NoError(t, err)
	assert.Equal(t, 3200.0, cfg.Arena.Width)
	assert.Equal(t, Default().Arena.Height, cfg.Arena.Height)
	assert.Equal(t, 3, cfg.AI.MaxCount)
	assert.Equal(t, Default().AI.DetectionRadius, cfg.AI.DetectionRadius)
}

func TestMergeIsIdempotentForScalarLeaves(t *testing.T) {
	override := []byte(`{"boss":{"maxActive":2}}`)
	once, err := Merge(Default(), override)
	require.NoError(t, err)
	twice, err := Merge(once, override)
	require.NoError(t, err)
	assert.Equal(t, 2, twice.Boss.MaxActive)
	assert.True(t, Equal(once, twice))
}

func TestMergeNestedMapKeys(t *testing.T) {
	cfg, err := Merge(Default(), []byte(`{"pickups":{"caps":{"health":5}}}`))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Pickups.Caps["health"])
	assert.Equal(t, Default().Pickups.Caps["ammo"], cfg.Pickups.Caps["ammo"])
}

func TestMergeRejectsWholesale(t *testing.T) {
	base := Default()
	cases := map[string]string{
		"unknown key":   `{"arena":{"width":3000},"bogus":1}`,
		"wrong type":    `{"arena":{"width":"wide"}}`,
		"not an object": `[1,2,3]`,
		"fails rules":   `{"tick":{"intervalMs":1}}`,
		"malformed":     `{"arena":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Merge(base, []byte(body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOverride))
			assert.True(t, Equal(base, got), "live config must be unchanged")
		})
	}
}

func TestMergeEmptyBodyIsNoop(t *testing.T) {
	got, err := Merge(Default(), nil)
	require.NoError(t, err)
	assert.True(t, Equal(Default(), got))
}

func TestMapSignatureTracksGeometry(t *testing.T) {
	base := Default()
	changed, err := Merge(base, []byte(`{"arena":{"theme":"lab"}}`))
	require.NoError(t, err)
	assert.NotEqual(t, base.MapSignature(), changed.MapSignature())

	unrelated, err := Merge(base, []byte(`{"ai":{"maxCount":1}}`))
	require.NoError(t, err)
	assert.Equal(t, base.MapSignature(), unrelated.MapSignature())
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, found, err := store.Load("alpha")
	require.NoError(t, err)
	assert.False(t, found)

	cfg, err := Merge(Default(), []byte(`{"seed":"fixed","round":{"seconds":120}}`))
	require.NoError(t, err)
	require.NoError(t, store.Save("alpha", cfg))

	loaded, found, err := store.Load("alpha")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "fixed", loaded.Seed)
	assert.Equal(t, 120, loaded.Round.Seconds)

	ids, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, ids)
}

func TestFileStoreRejectsPathIDs(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	err = store.Save("../escape", Default())
	assert.True(t, errors.Is(err, ErrInvalidRoomID))
}

func TestSchemaDescribesSections(t *testing.T) {
	data, err := SchemaJSON()
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"arena", "tick", "hazards", "boss", "pickups"} {
		assert.Contains(t, props, key)
	}
}
