// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package assistant

import (
	"regexp"
	"strings"
)

// Bin categories attached to recycling advice
const (
	BinGrey     = "grey"
	BinBrown    = "brown"
	BinYellow   = "yellow"
	BinBlue     = "blue"
	BinRed      = "red"
	BinOil      = "oil"
	BinBattery  = "battery"
	BinPharmacy = "pharmacy"
)

type binRule struct {
	bin string
	re  *regexp.Regexp
}

// Checked in order; the first match wins.
var binRules = []binRule{
	{BinGrey, keywords("unsorted waste", "grey")},
	{BinBrown, keywords("organic", "food waste", "brown")},
	{BinYellow, keywords("plastic", "metal", "yellow")},
	{BinBlue, keywords("paper", "blue")},
	{BinRed, keywords("collection centers", "electronic", "red")},
	{BinOil, keywords("oil")},
	{BinBattery, keywords("battery", "batteries")},
	{BinPharmacy, keywords("farmacy", "pharmacy")},
}

func keywords(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
}

// ClassifyBin returns the bin a block of advice points to, or "" if none.
// Keywords match whole words so "required" does not read as red.
func ClassifyBin(text string) string {
	lower := strings.ToLower(text)
	for _, r := range binRules {
		if r.re.MatchString(lower) {
			return r.bin
		}
	}
	return ""
}
