package main

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	quotedomain "github.com/smallbiznis/salescloser/internal/quote/domain"
)

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(raw))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	return d, nil
}

// parseLine reads "category|description|quantity|unit price[|unit]".
func parseLine(raw string) (quotedomain.LineInput, error) {
	parts := strings.Split(raw, "|")
	if len(parts) < 4 || len(parts) > 5 {
		return quotedomain.LineInput{}, fmt.Errorf("line %q: want category|description|quantity|unit price[|unit]", raw)
	}
	qty, err := parseAmount(parts[2])
	if err != nil {
		return quotedomain.LineInput{}, fmt.Errorf("line %q: %w", raw, err)
	}
	price, err := parseAmount(parts[3])
	if err != nil {
		return quotedomain.LineInput{}, fmt.Errorf("line %q: %w", raw, err)
	}
	in := quotedomain.LineInput{
		Category:    strings.TrimSpace(parts[0]),
		Description: strings.TrimSpace(parts[1]),
		Quantity:    qty,
		UnitPrice:   price,
	}
	if len(parts) == 5 {
		in.Unit = strings.TrimSpace(parts[4])
	}
	return in, nil
}

func parseLines(raw []string) ([]quotedomain.LineInput, error) {
	out := make([]quotedomain.LineInput, 0, len(raw))
	for _, r := range raw {
		in, err := parseLine(r)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func optionalID(raw string) (*snowflake.ID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := parseID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
