package restore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rpggio/heartlog/internal/domain/sample"
)

// minTokens is the number of fields a backup line must carry.
const minTokens = 4

type lineKind int

const (
	lineSample lineKind = iota
	lineSkip
	lineMalformed
)

// fieldError records one column that fell back to its sentinel.
type fieldError struct {
	Field string
	Token string
	Err   error
}

// parseLine turns one backup line into a sample. Numeric columns that do not
// parse fall back to their sentinels and are reported in the returned slice;
// they never reject the line.
func parseLine(line, delim string) (sample.Sample, lineKind, []fieldError) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return sample.Sample{}, lineSkip, nil
	}
	tokens := splitTokens(trimmed, delim)
	if strings.HasPrefix(strings.TrimSpace(tokens[0]), "#") {
		return sample.Sample{}, lineSkip, nil
	}
	if len(tokens) < minTokens {
		return sample.Sample{}, lineMalformed, nil
	}

	var errs []fieldError
	parse := func(field, token string, fallback int64) int64 {
		token = strings.TrimSpace(token)
		v, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			errs = append(errs, fieldError{Field: field, Token: token, Err: err})
			return fallback
		}
		return v
	}

	s := sample.Sample{
		CaptureTime:  parse("date", tokens[0], sample.InvalidDate),
		SessionStart: parse("start_date", tokens[1], sample.InvalidDate),
		HeartRate:    sample.Int64(parse("hr", tokens[2], sample.InvalidInt)),
	}
	// Backups write an absent beat interval as a blank token.
	if rr := strings.TrimSpace(tokens[3]); rr != "" {
		s.BeatInterval = sample.String(rr)
	}
	return s, lineSample, errs
}

// splitTokens splits s on delim and drops trailing empty tokens, so the
// terminal delimiter written by backups does not add a field.
func splitTokens(s, delim string) []string {
	tokens := strings.Split(s, delim)
	for len(tokens) > 1 && tokens[len(tokens)-1] == "" {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

func (e fieldError) String() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Token, e.Err)
}
