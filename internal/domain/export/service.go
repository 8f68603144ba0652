package export

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/rpggio/heartlog/internal/domain/session"
	"github.com/rpggio/heartlog/internal/format"
)

// Service writes sessions and full backups to files in the data directory.
type Service struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

// NewService creates a new export service.
func NewService(store Store, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, opts: opts.withDefaults(), logger: logger}
}

// Dir returns the directory exports are written to.
func (s *Service) Dir() string {
	return s.opts.Dir
}

// ExportCSV writes one <name>.csv file per session. A failure on one
// session does not stop the others.
func (s *Service) ExportCSV(ctx context.Context, sessions []session.Session) (Report, error) {
	report, err := s.begin("sessions", sessions)
	if err != nil {
		return report, err
	}

	for _, sess := range sessions {
		name := sess.Name + ".csv"
		faults, err := s.writeFile(name, func(w io.Writer) int {
			return s.writeSessionCSV(ctx, w, sess)
		})
		if err != nil {
			s.logger.Error("failed to write session file", "report_id", report.ID, "file", name, "error", err)
			report.fail(sess.Name, 1)
			continue
		}
		report.fail(sess.Name, faults)
		report.Files = append(report.Files, name)
	}

	s.finish(report)
	return report, nil
}

// ExportCombined writes every session into one file, ordered by start time
// and separated by a single blank line. The file is named after the earliest session.
func (s *Service) ExportCombined(ctx context.Context, sessions []session.Session) (Report, error) {
	report, err := s.begin("combined sessions", sessions)
	if err != nil {
		return report, err
	}

	sorted := slices.Clone(sessions)
	slices.SortStableFunc(sorted, func(a, b session.Session) int {
		return cmp.Compare(a.StartTime, b.StartTime)
	})

	name := sorted[0].Name + format.CombinedSuffix
	_, err = s.writeFile(name, func(w io.Writer) int {
		total := 0
		for i, sess := range sorted {
			if i > 0 {
				io.WriteString(w, "\n")
			}
			faults := s.writeSessionCSV(ctx, w, sess)
			report.fail(sess.Name, faults)
			total += faults
		}
		return total
	})
	if err != nil {
		s.logger.Error("failed to write combined file", "report_id", report.ID, "file", name, "error", err)
		report.fail("Writing combined file", 1)
	} else {
		report.Files = append(report.Files, name)
	}

	s.finish(report)
	return report, nil
}

// ExportGPX writes one <name>.gpx track per session. Samples without a heart
// rate produce no track point.
func (s *Service) ExportGPX(ctx context.Context, sessions []session.Session) (Report, error) {
	report, err := s.begin("sessions", sessions)
	if err != nil {
		return report, err
	}

	creator := escapeXML(s.opts.creator())
	for _, sess := range sessions {
		name := sess.Name + ".gpx"
		faults, err := s.writeFile(name, func(w io.Writer) int {
			fmt.Fprintf(w, gpxHeader, creator, format.GPXTime(s.opts.Clock.Now()))
			faults := s.writeTrackPoints(ctx, w, sess)
			io.WriteString(w, gpxFooter)
			return faults
		})
		if err != nil {
			s.logger.Error("failed to write gpx file", "report_id", report.ID, "file", name, "error", err)
			report.fail(sess.Name, 1)
			continue
		}
		report.fail(sess.Name, faults)
		report.Files = append(report.Files, name)
	}

	s.finish(report)
	return report, nil
}

// Backup writes every stored row, ignoring sessions and selection, to a
// time-stamped file. Unreadable columns are written as sentinels.
func (s *Service) Backup(ctx context.Context) (Report, error) {
	report := s.newReport("database")
	if err := s.checkDir(); err != nil {
		return report, err
	}

	name := format.BackupFileName(s.opts.Clock.Now(), s.opts.Location)
	faults, err := s.writeFile(name, func(w io.Writer) int {
		samples, err := s.store.ScanAll(ctx)
		if err != nil {
			s.logger.Error("failed to read store for backup", "report_id", report.ID, "error", err)
			return 1
		}
		for _, smp := range samples {
			io.WriteString(w, format.BackupLine(smp, s.opts.BackupDelimiter))
		}
		return 0
	})
	if err != nil {
		s.logger.Error("failed to write backup", "report_id", report.ID, "file", name, "error", err)
		report.fail(name, 1)
	} else {
		report.fail(name, faults)
		report.Files = append(report.Files, name)
	}

	s.finish(report)
	return report, nil
}

func (s *Service) newReport(operation string) Report {
	return Report{
		ID:        uuid.NewString(),
		Operation: operation,
		Dir:       s.opts.Dir,
	}
}

func (s *Service) begin(operation string, sessions []session.Session) (Report, error) {
	report := s.newReport(operation)
	if len(sessions) == 0 {
		return report, ErrNoSessions
	}
	if err := s.checkDir(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Service) finish(report Report) {
	if report.OK() {
		s.logger.Info("export complete", "report_id", report.ID, "operation", report.Operation, "files", len(report.Files))
		return
	}
	s.logger.Warn("export completed with errors", "report_id", report.ID, "operation", report.Operation,
		"files", len(report.Files), "errors", report.Errors, "failed", report.Failed)
}

func (s *Service) checkDir() error {
	if s.opts.Dir == "" {
		return ErrDataDirUnavailable
	}
	info, err := os.Stat(s.opts.Dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDataDirUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrDataDirUnavailable, s.opts.Dir)
	}
	return nil
}

// writeFile creates or truncates name and passes a buffered writer to body,
// which returns the number of row-level faults. The returned error covers
// creating, writing and closing the file; a close failure never hides an
// earlier one.
func (s *Service) writeFile(name string, body func(w io.Writer) int) (faults int, err error) {
	f, err := os.Create(filepath.Join(s.opts.Dir, name))
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	faults = body(w)
	if err := w.Flush(); err != nil {
		return faults, err
	}
	return faults, nil
}

func (s *Service) writeSessionCSV(ctx context.Context, w io.Writer, sess session.Session) int {
	samples, err := s.store.ListBySessionStart(ctx, sess.StartTime)
	if err != nil {
		s.logger.Error("failed to read session", "session", sess.Name, "error", err)
		return 1
	}
	faults := 0
	for _, smp := range samples {
		if !smp.HasCaptureTime() {
			faults++
		}
		io.WriteString(w, format.CSVLine(smp, s.opts.CSVDelimiter, s.opts.Location))
	}
	return faults
}

func (s *Service) writeTrackPoints(ctx context.Context, w io.Writer, sess session.Session) int {
	samples, err := s.store.ListHeartRateBySessionStart(ctx, sess.StartTime)
	if err != nil {
		s.logger.Error("failed to read session heart rates", "session", sess.Name, "error", err)
		return 1
	}
	faults := 0
	for _, smp := range samples {
		if smp.HeartRate == nil {
			continue
		}
		if !smp.HasCaptureTime() {
			faults++
			continue
		}
		fmt.Fprintf(w, gpxTrackPoint, format.GPXTime(smp.Captured()), *smp.HeartRate)
	}
	return faults
}
