// Package derive computes fields that are never asked of the vision model:
// age from a Malaysian IC number and a vehicle's market value.
package derive

import (
	"strconv"
	"time"
)

const DefaultMarketValue = 50000.0

var marketValues = map[string]float64{
	"Perodua Myvi":  50000,
	"Proton X70":    110000,
	"Honda City":    80000,
	"Toyota Vios":   75000,
	"Nissan Almera": 70000,
	"Mazda 3":       130000,
	"BMW 3 Series":  250000,
}

// MarketValue looks the make up exactly (case-sensitive).
func MarketValue(vehicleMake string) float64 {
	if v, ok := marketValues[vehicleMake]; ok {
		return v
	}
	return DefaultMarketValue
}

// AgeFromIC reads the YYMMDD prefix of id. A two-digit year above the current
// year's last two digits belongs to the previous century. The second result is
// false when the prefix is not a real calendar date or lies in the future.
func AgeFromIC(id string, now time.Time) (int, bool) {
	if len(id) < 6 {
		return 0, false
	}
	for i := 0; i < 6; i++ {
		if id[i] < '0' || id[i] > '9' {
			return 0, false
		}
	}
	yy, _ := strconv.Atoi(id[0:2])
	mm, _ := strconv.Atoi(id[2:4])
	dd, _ := strconv.Atoi(id[4:6])

	century := now.Year() / 100
	year := century*100 + yy
	if yy > now.Year()%100 {
		year = (century-1)*100 + yy
	}

	birth := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if birth.Year() != year || int(birth.Month()) != mm || birth.Day() != dd {
		return 0, false
	}

	age := now.Year() - year
	if int(now.Month()) < mm || (int(now.Month()) == mm && now.Day() < dd) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

// PadIC renders an IC number recovered as an integer back to its 12 digits;
// leading zeros are lost when the model emits it as a JSON number.
func PadIC(n int64) string {
	s := strconv.FormatInt(n, 10)
	for len(s) < 12 {
		s = "0" + s
	}
	return s
}
