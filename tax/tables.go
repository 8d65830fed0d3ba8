/*
tables.go - Bundled 2024-25 withholding tables

Default data for callers that do not load their own tables. PAYG rows
follow ATO Schedule 1 (NAT 1004) weekly coefficients effective 1 July
2024; STSL rows follow Schedule 8's weekly component rates, expressed in
the same linear shape with B = 0. These are plain data: the configuration
layer can replace them wholesale for a new financial year.
*/
package tax

import "github.com/shopspring/decimal"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func row(scale Scale, from, to, a, b string) Coefficient {
	c := Coefficient{Scale: scale, EarningsFrom: d(from), A: d(a), B: d(b)}
	if to != "" {
		upper := d(to)
		c.EarningsTo = &upper
	}
	return c
}

// DefaultCoefficients returns the 2024-25 Schedule 1 weekly coefficient
// rows for scales 1-6.
func DefaultCoefficients() []Coefficient {
	return []Coefficient{
		// Scale 1: tax-free threshold not claimed.
		row(Scale1, "0", "150", "0.1600", "0.1600"),
		row(Scale1, "150", "371", "0.2117", "7.7550"),
		row(Scale1, "371", "515", "0.1890", "-0.6702"),
		row(Scale1, "515", "932", "0.3227", "68.2367"),
		row(Scale1, "932", "2246", "0.3200", "65.7202"),
		row(Scale1, "2246", "3303", "0.3900", "222.9510"),
		row(Scale1, "3303", "", "0.4700", "487.2587"),

		// Scale 2: tax-free threshold claimed.
		row(Scale2, "0", "361", "0", "0"),
		row(Scale2, "361", "500", "0.1600", "57.8462"),
		row(Scale2, "500", "625", "0.2600", "107.8462"),
		row(Scale2, "625", "721", "0.1800", "57.8462"),
		row(Scale2, "721", "865", "0.1890", "64.3365"),
		row(Scale2, "865", "1282", "0.3227", "180.0385"),
		row(Scale2, "1282", "2596", "0.3200", "176.5769"),
		row(Scale2, "2596", "3653", "0.3900", "358.3077"),
		row(Scale2, "3653", "", "0.4700", "650.6154"),

		// Scale 3: foreign resident.
		row(Scale3, "0", "2596", "0.3000", "0.3000"),
		row(Scale3, "2596", "3653", "0.3700", "181.7308"),
		row(Scale3, "3653", "", "0.4500", "474.0385"),

		// Scale 4: no TFN provided. Flat top rate.
		row(Scale4, "0", "", "0.4700", "0"),

		// Scale 5: full Medicare levy exemption.
		row(Scale5, "0", "361", "0", "0"),
		row(Scale5, "361", "722", "0.1600", "57.8462"),
		row(Scale5, "722", "865", "0.2600", "130.0769"),
		row(Scale5, "865", "1282", "0.3027", "167.0124"),
		row(Scale5, "1282", "2596", "0.3000", "163.5510"),
		row(Scale5, "2596", "3653", "0.3700", "345.2710"),
		row(Scale5, "3653", "", "0.4500", "637.5110"),

		// Scale 6: half Medicare levy exemption.
		row(Scale6, "0", "361", "0", "0"),
		row(Scale6, "361", "722", "0.1600", "57.8462"),
		row(Scale6, "722", "843", "0.2600", "130.0769"),
		row(Scale6, "843", "865", "0.3100", "172.2269"),
		row(Scale6, "865", "1282", "0.3127", "174.5620"),
		row(Scale6, "1282", "2596", "0.3100", "171.1006"),
		row(Scale6, "2596", "3653", "0.3800", "352.8206"),
		row(Scale6, "3653", "", "0.4600", "645.0606"),
	}
}

// DefaultStslRates returns the 2024-25 Schedule 8 weekly component rows.
// The NO_TFT thresholds sit one weekly tax-free threshold ($350) below
// the WITH_TFT_OR_FR thresholds.
func DefaultStslRates() []StslRate {
	type band struct{ from, to, rate string }
	bands := []band{
		{"0", "1046", "0"},
		{"1046", "1208", "0.0100"},
		{"1208", "1281", "0.0200"},
		{"1281", "1358", "0.0250"},
		{"1358", "1439", "0.0300"},
		{"1439", "1525", "0.0350"},
		{"1525", "1617", "0.0400"},
		{"1617", "1714", "0.0450"},
		{"1714", "1817", "0.0500"},
		{"1817", "1926", "0.0550"},
		{"1926", "2042", "0.0600"},
		{"2042", "2164", "0.0650"},
		{"2164", "2294", "0.0700"},
		{"2294", "2432", "0.0750"},
		{"2432", "2578", "0.0800"},
		{"2578", "2732", "0.0850"},
		{"2732", "2896", "0.0900"},
		{"2896", "3070", "0.0950"},
		{"3070", "", "0.1000"},
	}

	offset := d("350")
	var rows []StslRate
	for _, b := range bands {
		rows = append(rows, row(StslWithThreshold, b.from, b.to, b.rate, "0"))

		from := d(b.from).Sub(offset)
		if from.IsNegative() {
			from = decimal.Zero
		}
		nr := StslRate{Scale: StslNoThreshold, EarningsFrom: from, A: d(b.rate), B: decimal.Zero}
		if b.to != "" {
			upper := d(b.to).Sub(offset)
			nr.EarningsTo = &upper
		}
		rows = append(rows, nr)
	}
	return rows
}
