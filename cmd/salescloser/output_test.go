package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	pipelinedomain "github.com/smallbiznis/salescloser/internal/pipeline/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	cases := map[string]string{
		"0":          "$0.00",
		"6.25":       "$6.25",
		"106.255":    "$106.26",
		"1234.5":     "$1,234.50",
		"1234567.89": "$1,234,567.89",
		"-12":        "-$12.00",
		"999":        "$999.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, money(decimal.RequireFromString(in)), in)
	}
}

func TestRateAndPercent(t *testing.T) {
	assert.Equal(t, "6.25%", rate(decimal.RequireFromString("0.0625")))
	assert.Equal(t, "0.00%", rate(decimal.Zero))
	assert.Equal(t, "20.0%", percent(decimal.NewFromInt(20)))
}

func TestPrintBoard(t *testing.T) {
	board := pipelinedomain.NewBoard([]pipelinedomain.Deal{
		{ID: 11, Stage: pipelinedomain.StageQuoted, Name: "Harbor Pumps", QuoteNumber: "Q-0001", Value: decimal.RequireFromString("106.25")},
	})

	var buf bytes.Buffer
	require.NoError(t, printBoard(&buf, board))
	out := buf.String()
	assert.Contains(t, out, "Quoted (1, $106.25)")
	assert.Contains(t, out, "Harbor Pumps")
	assert.Contains(t, out, "Closed Won (0, $0.00)")
}
