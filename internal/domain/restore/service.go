package restore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rpggio/heartlog/internal/format"
)

// Result is the outcome of one restore. Lines counts every line read,
// including blank and comment lines.
type Result struct {
	File     string `json:"file"`
	Lines    int    `json:"lines"`
	Restored int    `json:"restored"`
	Errors   int    `json:"errors"`
	Err      error  `json:"-"`
}

// OK reports whether every line was restored and the file was read to the end.
func (r Result) OK() bool {
	return r.Errors == 0 && r.Err == nil
}

// Message renders the completion summary shown to the user.
func (r Result) Message() string {
	if r.OK() {
		return fmt.Sprintf("Restored %d lines from %s", r.Restored, r.File)
	}
	msg := fmt.Sprintf("Got %d errors processing %d lines from %s", r.Errors, r.Lines, r.File)
	if r.Err != nil {
		msg += fmt.Sprintf("\nGot exception restoring at line %d\n%v", r.Lines, r.Err)
	}
	return msg
}

// Service replaces the store contents with the rows of a backup file.
type Service struct {
	store     Store
	delimiter string
	logger    *slog.Logger
}

// NewService creates a new restore service. An empty delimiter means the
// default backup delimiter.
func NewService(store Store, delimiter string, logger *slog.Logger) *Service {
	if delimiter == "" {
		delimiter = format.DefaultDelimiter
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, delimiter: delimiter, logger: logger}
}

// Restore drops every stored sample and inserts the rows read from path.
// Malformed lines and failed inserts are counted and skipped. There is no
// rollback: a failure part way leaves the rows inserted so far.
func (s *Service) Restore(ctx context.Context, path string) Result {
	result := Result{File: path}

	f, err := os.Open(path)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrOpenBackup, err)
		s.logger.Error("failed to open backup", "file", path, "error", err)
		return result
	}
	defer f.Close()

	if err := s.store.RecreateTable(ctx); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrRecreateTable, err)
		s.logger.Error("failed to recreate sample table", "error", err)
		return result
	}

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			result.Lines++
			s.applyLine(ctx, &result, strings.TrimRight(line, "\r\n"))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Err = fmt.Errorf("%w: %v", ErrReadBackup, err)
			s.logger.Error("restore stopped reading backup", "file", path, "line", result.Lines, "error", err)
			break
		}
	}

	if result.OK() {
		s.logger.Info("restore complete", "file", path, "lines", result.Lines, "restored", result.Restored)
	} else {
		s.logger.Warn("restore completed with errors", "file", path, "lines", result.Lines,
			"restored", result.Restored, "errors", result.Errors)
	}
	return result
}

// applyLine parses and inserts one line, counting it in result.
func (s *Service) applyLine(ctx context.Context, result *Result, line string) {
	smp, kind, fieldErrs := parseLine(line, s.delimiter)
	switch kind {
	case lineSkip:
		return
	case lineMalformed:
		result.Errors++
		s.logger.Debug("malformed backup line", "line", result.Lines, "length", len(line))
		return
	}
	for _, fe := range fieldErrs {
		s.logger.Debug("unparseable backup field", "line", result.Lines, "field", fe.Field, "token", fe.Token)
	}

	if _, err := s.store.Insert(ctx, &smp); err != nil {
		result.Errors++
		s.logger.Debug("failed to insert restored row", "line", result.Lines, "error", err)
		return
	}
	result.Restored++
}
