package wire

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TimeLayout is how timestamps travel on the wire.
const TimeLayout = "2006-01-02 15:04:05"

// displayWidth is the fixed prefix of a timestamp shown in listings.
const displayWidth = 16

// Logger receives a debug entry for every field that fails to parse and
// falls back to its default. Replace it to route those entries elsewhere.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// Field is the raw text of a record field. Projections never fail: text
// that does not parse yields the caller's default.
type Field string

func IntField(v int64) Field             { return Field(strconv.FormatInt(v, 10)) }
func BoolField(v bool) Field             { return Field(strconv.FormatBool(v)) }
func MoneyField(v decimal.Decimal) Field { return Field(FormatMoney(v)) }
func TimeField(v time.Time) Field        { return Field(FormatTime(v)) }

// FormatMoney renders v with exactly two fractional digits.
func FormatMoney(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// FormatTime renders t in TimeLayout. The zero time renders empty.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

func (f Field) String() string {
	return string(f)
}

func (f Field) text() string {
	return strings.TrimSpace(string(f))
}

// Int parses a base-10 integer.
func (f Field) Int(def int64) int64 {
	v, err := strconv.ParseInt(f.text(), 10, 64)
	if err != nil {
		f.fallback("integer", err)
		return def
	}
	return v
}

// Bool reports whether the text is "true", ignoring case.
func (f Field) Bool() bool {
	return strings.EqualFold(f.text(), "true")
}

// Money parses a decimal amount without rounding.
func (f Field) Money(def decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(f.text())
	if err != nil {
		f.fallback("money", err)
		return def
	}
	return v
}

// Time parses a TimeLayout timestamp in the local zone.
func (f Field) Time(def time.Time) time.Time {
	v, err := time.ParseInLocation(TimeLayout, f.text(), time.Local)
	if err != nil {
		f.fallback("time", err)
		return def
	}
	return v
}

// Display returns at most the first 16 characters, the width listings
// show timestamps at.
func (f Field) Display() string {
	runes := []rune(string(f))
	if len(runes) <= displayWidth {
		return string(f)
	}
	return string(runes[:displayWidth])
}

func (f Field) fallback(kind string, err error) {
	Logger.WithFields(logrus.Fields{
		"kind":  kind,
		"value": string(f),
	}).Debugf("wire: malformed field, using default: %v", err)
}
