package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/orglink/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Input:     "companies.csv",
			Mode:      model.ModeAddress,
			Status:    model.RunStatusComplete,
			Total:     120,
			CreatedAt: now,
			UpdatedAt: now.Add(2 * time.Minute),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Input:     "/data/exports/2025/06/tohoku/companies_iwate_全件.xlsx",
			Mode:      model.ModeName,
			Status:    model.RunStatusFailed,
			Total:     8,
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-30 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "INPUT")
	assert.Contains(t, output, "companies.csv")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "name")
	assert.Contains(t, output, "120")
	assert.Contains(t, output, "2025-06-15 10:30")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "2m0s")
	// Long inputs keep their tail.
	assert.Contains(t, output, "...")
	assert.Contains(t, output, "companies_iwate_全件.xlsx")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}
