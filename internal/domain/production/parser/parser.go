// Package parser turns MTR03 report text into production records.
// Lines are filtered by a fixed lexical pattern, then each kept line is split
// into a date and the total/percentage pair read from its trailing numbers.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/mtr03-counter/internal/domain/production"
	"github.com/FACorreiaa/mtr03-counter/pkg/quantity"
)

// numberPattern matches digit/dot runs with an optional comma decimal part.
var numberPattern = regexp.MustCompile(`[\d\.]+(?:,\d+)?`)

var hundred = decimal.NewFromInt(100)

const (
	minTokens  = 5
	minNumbers = 3
	// shortDateLen is the length of a dd/mm token that still needs the year.
	shortDateLen = 5
)

// ParserConfig configures the row parser.
type ParserConfig struct {
	Year int // Year appended to dd/mm date tokens
}

// DefaultConfig returns a config for the current year.
func DefaultConfig() ParserConfig {
	return ParserConfig{Year: time.Now().Year()}
}

// ParseResult contains the records parsed from a set of report lines
type ParseResult struct {
	Records       []production.Record
	TotalLines    int
	ParsedRows    int
	SkippedRows   int // Too few tokens or an unparseable date
	NullCountRows int // Kept without counts
}

// Parser converts filtered report lines into records.
type Parser struct {
	config ParserConfig
	suffix string
}

// NewParser creates a new parser with the given configuration
func NewParser(config ParserConfig) *Parser {
	return &Parser{
		config: config,
		suffix: "/" + strconv.Itoa(config.Year),
	}
}

// Parse converts every line, dropping the ones without a usable date.
func (p *Parser) Parse(lines []string) *ParseResult {
	result := &ParseResult{
		Records:    make([]production.Record, 0, len(lines)),
		TotalLines: len(lines),
	}

	for _, line := range lines {
		rec, ok := p.ParseLine(line)
		if !ok {
			result.SkippedRows++
			continue
		}
		if !rec.HasCounts() {
			result.NullCountRows++
		}
		result.Records = append(result.Records, rec)
		result.ParsedRows++
	}

	return result
}

// ParseLine parses a single report line. ok is false when the line has fewer
// than five tokens or its second token is not a valid date.
//
// The total is the third-from-last number on the line and the last number is
// the good percentage. Lines with extra trailing numbers are misread; the
// report layout has no other anchor for these fields.
func (p *Parser) ParseLine(line string) (production.Record, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < minTokens {
		return production.Record{}, false
	}

	dateStr := tokens[1]
	if utf8.RuneCountInString(dateStr) == shortDateLen {
		dateStr += p.suffix
	}

	date, err := production.ParseDate(dateStr)
	if err != nil {
		return production.Record{}, false
	}

	rec := production.Record{Date: date, Line: line}

	numbers := numberPattern.FindAllString(line, -1)
	if len(numbers) < minNumbers {
		return rec, true
	}

	total, err := quantity.ParseBR(numbers[len(numbers)-3])
	if err != nil {
		return rec, true
	}
	pct, err := quantity.ParseBR(numbers[len(numbers)-1])
	if err != nil {
		return rec, true
	}

	rec.Total = decimal.NewNullDecimal(total)
	rec.Good = decimal.NewNullDecimal(total.Mul(pct).Div(hundred))
	return rec, true
}

// Preprocess parses lines for the given report year.
func Preprocess(lines []string, year int) *ParseResult {
	return NewParser(ParserConfig{Year: year}).Parse(lines)
}
