package changes

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	statusProviderMissingMessageConstant = "status provider not configured"
	scanCompletedMessageConstant         = "Collected working tree status"
	scanFailedMessageConstant            = "Working tree status scan failed"
	logFieldEntryCountConstant           = "entries"
	logFieldPathConstant                 = "path"
	logFieldCategoryConstant             = "category"
)

// ErrStatusProviderNotConfigured indicates the scanner was constructed without a status provider.
var ErrStatusProviderNotConfigured = errors.New(statusProviderMissingMessageConstant)

// Scanner queries a status provider for every changed path.
type Scanner struct {
	provider StatusProvider
	logger   *zap.Logger
}

// NewScanner constructs a Scanner. A nil logger disables logging.
func NewScanner(provider StatusProvider, logger *zap.Logger) (*Scanner, error) {
	if provider == nil {
		return nil, ErrStatusProviderNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{provider: provider, logger: logger}, nil
}

// Scan returns status entries in provider order. Every failure is a *ScanError.
func (scanner *Scanner) Scan(executionContext context.Context) ([]StatusEntry, error) {
	entries, statusError := scanner.provider.Status(executionContext)
	if statusError != nil {
		scanner.logger.Debug(scanFailedMessageConstant, zap.Error(statusError))
		var scanError *ScanError
		if errors.As(statusError, &scanError) {
			return nil, scanError
		}
		return nil, newProviderFailureError("", statusError)
	}

	scanned := make([]StatusEntry, len(entries))
	copy(scanned, entries)
	scanner.logger.Debug(scanCompletedMessageConstant, zap.Int(logFieldEntryCountConstant, len(scanned)))
	return scanned, nil
}
