// Package telemetry adapts dashboard telemetry and activity records to zap.
package telemetry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-claims-dashboard/components/dashboard"
)

// NewLogger builds a production zap logger. Development mode switches to the
// console encoder.
func NewLogger(level string, development bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if development {
		config = zap.NewDevelopmentConfig()
	}
	if strings.TrimSpace(level) != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("telemetry: parse level %q: %w", level, err)
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	return config.Build()
}

// ZapTelemetry records dashboard telemetry as structured log entries. Error
// events are logged at warn level, everything else at debug.
type ZapTelemetry struct {
	logger *zap.Logger
}

var _ dashboard.Telemetry = (*ZapTelemetry)(nil)

// NewZapTelemetry wraps logger. A nil logger discards everything.
func NewZapTelemetry(logger *zap.Logger) *ZapTelemetry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapTelemetry{logger: logger.Named("dashboard")}
}

// Record implements dashboard.Telemetry.
func (z *ZapTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	fields := payloadFields(payload)
	if isErrorEvent(event) {
		z.logger.Warn(event, fields...)
		return
	}
	z.logger.Debug(event, fields...)
}

func isErrorEvent(event string) bool {
	return strings.HasSuffix(event, "error") || strings.HasSuffix(event, "failed")
}

func payloadFields(payload map[string]any) []zap.Field {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, zap.Any(key, payload[key]))
	}
	return fields
}

// ActivityLog writes go-users activity records to a zap logger. It satisfies
// usersink.Sink for deployments without an activity store.
type ActivityLog struct {
	logger *zap.Logger
}

// NewActivityLog wraps logger.
func NewActivityLog(logger *zap.Logger) *ActivityLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityLog{logger: logger.Named("activity")}
}

// Log writes the record at info level.
func (a *ActivityLog) Log(_ context.Context, record types.ActivityRecord) error {
	fields := []zap.Field{
		zap.String("object_type", record.ObjectType),
		zap.String("object_id", record.ObjectID),
		zap.String("channel", record.Channel),
		zap.Time("occurred_at", record.OccurredAt),
	}
	for name, id := range map[string]uuid.UUID{
		"actor_id":  record.ActorID,
		"user_id":   record.UserID,
		"tenant_id": record.TenantID,
	} {
		if id != uuid.Nil {
			fields = append(fields, zap.Stringer(name, id))
		}
	}
	if len(record.Data) > 0 {
		fields = append(fields, zap.Any("data", record.Data))
	}
	a.logger.Info(record.Verb, fields...)
	return nil
}
