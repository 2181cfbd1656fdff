package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/carve/internal/config"
	"github.com/Sumatoshi-tech/carve/internal/evolution"
)

func TestApplyMineOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	applyMineOverrides(cfg, &mineOptions{window: 6, minCommits: 3, format: "yaml", topN: 5})

	assert.Equal(t, 6, cfg.Mining.WindowMonths)
	assert.Equal(t, 3, cfg.Mining.MinCommits)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 5, cfg.Output.TopN)

	// Zero-valued options keep the config values.
	assert.Equal(t, config.DefaultWorkers, cfg.Mining.Workers)
}

func TestRenderMineTables(t *testing.T) {
	t.Parallel()

	report := mineReport{
		File:         "src/Account.java",
		TotalCommits: 42,
		Members:      4,
		Pairs:        3,
		Hubs:         []evolution.MemberScore{{Member: "deposit", Score: 1.8}},
		Hotspots:     []evolution.Hotspot{{Member: "deposit", Commits: 12, Score: 1.0}},
	}

	var buf bytes.Buffer

	renderMineTables(&buf, report, 120*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "src/Account.java")
	assert.Contains(t, out, "Coupling Hubs")
	assert.Contains(t, out, "Method Hotspots")
	assert.Contains(t, out, "deposit")
	assert.Contains(t, out, "1.8000")
}
