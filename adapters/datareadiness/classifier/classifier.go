package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"datagent/domain/datareadiness/ingestion"
)

// DefaultSampleSize is the number of leading non-empty values inspected per column
const DefaultSampleSize = 100

var (
	canonicalDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`),
		regexp.MustCompile(`^\d{2}-\d{2}-\d{4}`),
	}
	canonicalDateLayouts = []string{"2006-01-02", "01/02/2006", "01-02-2006"}

	nonNumericChars  = regexp.MustCompile(`[^0-9.\-]`)
	percentPattern   = regexp.MustCompile(`^\d+\.?\d*\s?%$`)
	bareNumber       = regexp.MustCompile(`^\d+\.?\d*$`)
	dollarPattern    = regexp.MustCompile(`^\$?\d+\.?\d*$`)
	usdSuffixPattern = regexp.MustCompile(`^\d+\.?\d*\s?USD$`)
)

// IsDate reports whether v looks like a date: a canonical prefix
// (YYYY-MM-DD, MM/DD/YYYY, MM-DD-YYYY) or anything the general parser accepts.
// Plain numbers, digit-free text and values with a %, $ or USD marker are
// never dates.
func IsDate(v string) bool {
	for _, re := range canonicalDatePatterns {
		if re.MatchString(v) {
			return true
		}
	}
	_, ok := parseGeneralDate(v)
	return ok
}

// ParseDate converts v to a time, trying canonical layouts before the general parser
func ParseDate(v string) (time.Time, bool) {
	s := strings.TrimSpace(v)
	for _, layout := range canonicalDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return parseGeneralDate(s)
}

func parseGeneralDate(v string) (t time.Time, ok bool) {
	s := strings.TrimSpace(v)
	if !strings.ContainsAny(s, "0123456789") || isPlainNumber(s) || hasUnitMarker(s) {
		return time.Time{}, false
	}
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func hasUnitMarker(s string) bool {
	return strings.ContainsAny(s, "%$") || strings.HasSuffix(s, "USD")
}

func isPlainNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// IsNumeric reports whether v parses as a float once every character
// outside [0-9.-] is stripped
func IsNumeric(v string) bool {
	_, ok := ParseStrippedFloat(v)
	return ok
}

// ParseStrippedFloat strips all characters outside [0-9.-] and parses the rest
func ParseStrippedFloat(v string) (float64, bool) {
	cleaned := nonNumericChars.ReplaceAllString(v, "")
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsPercentage reports whether v is "12.5%", "12.5 %" or a bare unsigned number
func IsPercentage(v string) bool {
	return percentPattern.MatchString(v) || bareNumber.MatchString(v)
}

// IsCurrency reports whether v is "$12.50", "12.50" or "12.50 USD"
func IsCurrency(v string) bool {
	return dollarPattern.MatchString(v) || usdSuffixPattern.MatchString(v)
}

type rule struct {
	columnType ingestion.ColumnType
	matches    func(string) bool
}

// priority order; first rule satisfied by every sampled value wins
var rules = []rule{
	{ingestion.ColumnTypeDate, IsDate},
	{ingestion.ColumnTypeNumeric, IsNumeric},
	{ingestion.ColumnTypePercentage, IsPercentage},
	{ingestion.ColumnTypeCurrency, IsCurrency},
}

// Classifier decides a column type from a leading sample of its values
type Classifier struct {
	sampleSize int
}

// New creates a classifier; a non-positive sample size uses DefaultSampleSize
func New(sampleSize int) *Classifier {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Classifier{sampleSize: sampleSize}
}

// Sample returns the textual form of up to the first sampleSize non-missing values
func (c *Classifier) Sample(values []ingestion.Value) []string {
	sample := make([]string, 0, min(len(values), c.sampleSize))
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		sample = append(sample, v.String())
		if len(sample) == c.sampleSize {
			break
		}
	}
	return sample
}

// Classify returns the column type and true, or false when the column holds no
// non-missing values and no claim can be made
func (c *Classifier) Classify(values []ingestion.Value) (ingestion.ColumnType, bool) {
	sample := c.Sample(values)
	if len(sample) == 0 {
		return "", false
	}
	return classifySample(sample), true
}

func classifySample(sample []string) ingestion.ColumnType {
	for _, r := range rules {
		if all(sample, r.matches) {
			return r.columnType
		}
	}
	return ingestion.ColumnTypeText
}

func all(sample []string, pred func(string) bool) bool {
	for _, s := range sample {
		if !pred(s) {
			return false
		}
	}
	return true
}
