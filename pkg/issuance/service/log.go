package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/chainsafe/crosschain-issuer/pkg/app/errors"
	"github.com/chainsafe/crosschain-issuer/pkg/issuancestore"
)

const serviceName = "IssuanceService"

// logService wraps Service with logging of every call
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the issuance Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{svc: svc, logger: logger}
}

func (ls *logService) done(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		fields = append(fields, zap.Error(err))
		if apperrors.IsInternalError(err) {
			ls.logger.Error(method+" failed", fields...)
		} else {
			ls.logger.Info(method+" rejected", fields...)
		}
		return
	}
	ls.logger.Debug(method+" completed", fields...)
}

// StartIssuance wraps the service method with logging
func (ls *logService) StartIssuance(ctx context.Context, req *StartRequest) (run *issuancestore.Run, err error) {
	start := time.Now()
	ls.logger.Info("StartIssuance started",
		zap.String("service", serviceName),
		zap.String("symbol", req.Definition.Symbol),
		zap.String("mode", string(req.Mode)),
		zap.Bool("resume", req.Resume))
	defer func() {
		var fields []zap.Field
		if run != nil {
			fields = append(fields, zap.String("run_id", run.ID))
		}
		ls.done("StartIssuance", start, err, fields...)
	}()
	return ls.svc.StartIssuance(ctx, req)
}

// GetIssuance wraps the service method with logging
func (ls *logService) GetIssuance(ctx context.Context, id string) (d *RunDetails, err error) {
	defer func(start time.Time) { ls.done("GetIssuance", start, err, zap.String("run_id", id)) }(time.Now())
	return ls.svc.GetIssuance(ctx, id)
}

// ListIssuances wraps the service method with logging
func (ls *logService) ListIssuances(ctx context.Context, req *ListRequest) (runs []*issuancestore.Run, err error) {
	defer func(start time.Time) {
		ls.done("ListIssuances", start, err, zap.String("symbol", req.Symbol), zap.Int("count", len(runs)))
	}(time.Now())
	return ls.svc.ListIssuances(ctx, req)
}

// CancelIssuance wraps the service method with logging
func (ls *logService) CancelIssuance(ctx context.Context, id string) (err error) {
	ls.logger.Info("CancelIssuance requested", zap.String("service", serviceName), zap.String("run_id", id))
	defer func(start time.Time) { ls.done("CancelIssuance", start, err, zap.String("run_id", id)) }(time.Now())
	return ls.svc.CancelIssuance(ctx, id)
}
