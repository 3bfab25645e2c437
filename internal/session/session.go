// Package session manages the report folders of a trading run:
//
//	{outputPath}/{YYYY-MM-DD}/run_N/
package session

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
)

var (
	runPattern  = regexp.MustCompile(`^run_(\d+)$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Manager owns the run folder for the current trading day.
type Manager struct {
	outputPath     string
	runID          string
	runNumber      int
	sessionStart   time.Time
	currentDate    string
	currentRunPath string
	mu             sync.Mutex
	logger         *logger.Logger
}

// NewManager creates a manager writing below outputPath.
func NewManager(outputPath string, log *logger.Logger) *Manager {
	return &Manager{
		outputPath:     outputPath,
		runID:          "",
		runNumber:      0,
		sessionStart:   time.Time{},
		currentDate:    "",
		currentRunPath: "",
		mu:             sync.Mutex{},
		logger:         log,
	}
}

// Initialize picks the next free run number for the date of now and creates its folder.
func (m *Manager) Initialize(now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessionStart = now
	m.currentDate = now.Format(time.DateOnly)

	runNumber, err := m.nextRunNumber(m.currentDate)
	if err != nil {
		return err
	}

	m.runNumber = runNumber
	m.runID = "run_" + strconv.Itoa(runNumber)

	if err := m.createRunFolder(); err != nil {
		return err
	}

	m.logger.Info("Session initialized",
		zap.String("run_id", m.runID),
		zap.String("date", m.currentDate),
		zap.String("path", m.currentRunPath))

	return nil
}

//nolint:funcorder // helper method used by Initialize
func (m *Manager) nextRunNumber(date string) (int, error) {
	runs, err := m.listRuns(date)
	if err != nil {
		return 0, err
	}

	if len(runs) == 0 {
		return 1, nil
	}

	last, _ := strconv.Atoi(runs[len(runs)-1][len("run_"):])

	return last + 1, nil
}

//nolint:funcorder // helper method used by Initialize and HandleDateBoundary
func (m *Manager) createRunFolder() error {
	m.currentRunPath = filepath.Join(m.outputPath, m.currentDate, m.runID)

	if err := os.MkdirAll(m.currentRunPath, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to create run folder %s", m.currentRunPath)
	}

	return nil
}

// HandleDateBoundary moves the run to the folder of the new date, keeping the run id.
// It reports whether the date changed.
func (m *Manager) HandleDateBoundary(now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	newDate := now.Format(time.DateOnly)
	if newDate == m.currentDate {
		return false, nil
	}

	oldDate := m.currentDate
	m.currentDate = newDate

	if err := m.createRunFolder(); err != nil {
		return false, err
	}

	m.logger.Info("Date boundary crossed, created new folder",
		zap.String("old_date", oldDate),
		zap.String("new_date", newDate),
		zap.String("run_id", m.runID),
		zap.String("new_path", m.currentRunPath))

	return true, nil
}

// RunID returns the run id, e.g. "run_1".
func (m *Manager) RunID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.runID
}

// CurrentRunPath returns the folder of the current date's run.
func (m *Manager) CurrentRunPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.currentRunPath
}

// FilePath joins filename onto the current run folder.
func (m *Manager) FilePath(filename string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return filepath.Join(m.currentRunPath, filename)
}

// ListRuns returns the run ids recorded for date, in run order.
func (m *Manager) ListRuns(date string) ([]string, error) {
	return m.listRuns(date)
}

//nolint:funcorder // helper method used by ListRuns and nextRunNumber
func (m *Manager) listRuns(date string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(m.outputPath, date))
	if os.IsNotExist(err) {
		return []string{}, nil
	}

	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read sessions of %s", date)
	}

	runs := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() && runPattern.MatchString(entry.Name()) {
			runs = append(runs, entry.Name())
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		numI, _ := strconv.Atoi(runs[i][len("run_"):])
		numJ, _ := strconv.Atoi(runs[j][len("run_"):])

		return numI < numJ
	})

	return runs, nil
}

// Dates returns every date with session folders, oldest first.
func (m *Manager) Dates() ([]string, error) {
	entries, err := os.ReadDir(m.outputPath)
	if os.IsNotExist(err) {
		return []string{}, nil
	}

	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read %s", m.outputPath)
	}

	dates := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() && datePattern.MatchString(entry.Name()) {
			dates = append(dates, entry.Name())
		}
	}

	sort.Strings(dates)

	return dates, nil
}
