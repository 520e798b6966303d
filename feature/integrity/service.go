package integrity

import (
	"io/fs"
	"os"

	"docs-server/feature/integrity/checks"

	"go.uber.org/zap"
)

const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Report is the combined result of all checks.
type Report struct {
	Dir     string             `json:"dir"`
	Status  string             `json:"status"`
	Missing []string           `json:"missing"`
	Specs   []checks.Spec      `json:"specs"`
	Errors  []checks.SpecError `json:"errors,omitempty"`
}

// Service handles integrity checks of an asset directory.
type Service struct {
	dir    string
	fsys   fs.FS
	logger *zap.Logger
}

// NewService creates a new integrity service for dir.
func NewService(dir string, logger *zap.Logger) *Service {
	return &Service{
		dir:    dir,
		fsys:   os.DirFS(dir),
		logger: logger,
	}
}

// CheckDirectory verifies the asset directory itself.
func (s *Service) CheckDirectory() error {
	return checks.CheckDirectory(s.dir)
}

// CheckStructure returns a list of missing required files.
func (s *Service) CheckStructure() ([]string, error) {
	return checks.CheckStructure(s.fsys)
}

// DiscoverSpecs returns the API documents of the bundle.
func (s *Service) DiscoverSpecs() ([]checks.Spec, []checks.SpecError, error) {
	return checks.DiscoverSpecs(s.fsys)
}

// Tree renders the asset directory.
func (s *Service) Tree() (string, error) {
	tree, err := checks.BuildTree(s.fsys, s.dir)
	if err != nil {
		return "", err
	}
	return tree.String(), nil
}

// Run performs every check. An error is returned only when the directory
// itself is unusable; problems inside the bundle are reported in the Report.
func (s *Service) Run() (*Report, error) {
	report := &Report{Dir: s.dir, Status: StatusOK}

	if err := s.CheckDirectory(); err != nil {
		report.Status = StatusError
		return report, err
	}

	missing, err := s.CheckStructure()
	if err != nil {
		report.Status = StatusError
		return report, err
	}
	report.Missing = missing
	if len(missing) > 0 {
		s.logger.Warn("Missing required files", zap.Strings("missing", missing))
		report.Status = StatusError
	}

	specs, specErrs, err := s.DiscoverSpecs()
	if err != nil {
		report.Status = StatusError
		return report, err
	}
	report.Specs = specs
	report.Errors = specErrs

	for _, e := range specErrs {
		s.logger.Warn("Problem with API document", zap.String("path", e.Path), zap.String("error", e.Error))
	}
	if report.Status == StatusOK && (len(specErrs) > 0 || len(specs) == 0) {
		report.Status = StatusWarning
	}

	return report, nil
}
