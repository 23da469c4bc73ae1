package main

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	quotedomain "github.com/smallbiznis/salescloser/internal/quote/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	in, err := parseLine("product| Pump housing |2|$1,050.00|ea")
	require.NoError(t, err)
	assert.Equal(t, "product", in.Category)
	assert.Equal(t, "Pump housing", in.Description)
	assert.Equal(t, "ea", in.Unit)
	assert.True(t, in.Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, in.UnitPrice.Equal(decimal.NewFromInt(1050)))

	in, err = parseLine("freight|Delivery|1|40")
	require.NoError(t, err)
	assert.Empty(t, in.Unit)

	for _, bad := range []string{"product|x|1", "product|x|one|2", "product|x|1|two", "a|b|c|d|e|f"} {
		_, err := parseLine(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 1234 ")
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(1234), id)

	_, err = parseID("Q-0001")
	assert.Error(t, err)
	_, err = parseID("0")
	assert.Error(t, err)

	opt, err := optionalID("")
	require.NoError(t, err)
	assert.Nil(t, opt)
}

func TestParseMetadata(t *testing.T) {
	meta, err := parseMetadata([]string{"source=referral", " tier = gold "})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"source": "referral", "tier": "gold"}, meta)

	_, err = parseMetadata([]string{"novalue"})
	assert.Error(t, err)

	meta, err = parseMetadata(nil)
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestPickLine(t *testing.T) {
	q := quotedomain.Quote{
		Number: "Q-0003",
		Lines: []quotedomain.Line{
			{ID: 9001, Description: "first"},
			{ID: 9002, Description: "second"},
		},
	}

	l, err := pickLine(q, "2")
	require.NoError(t, err)
	assert.Equal(t, "second", l.Description)

	l, err = pickLine(q, "9001")
	require.NoError(t, err)
	assert.Equal(t, "first", l.Description)

	_, err = pickLine(q, "3")
	assert.Error(t, err)
}
