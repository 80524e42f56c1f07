package usersink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-claims-dashboard/pkg/activity"
)

type recordingSink struct {
	records []types.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record types.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookRecordsWidgetRemoval(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}

	removedAt := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()
	metadata := map[string]any{"title": "Top models", "chart_type": "bar"}

	event := activity.Event{
		Verb:       "dashboard.widget.remove",
		ActorID:    actorID.String(),
		UserID:     actorID.String(),
		TenantID:   tenantID.String(),
		ObjectType: "widget",
		ObjectID:   "w-top-models",
		Channel:    "dashboard",
		Metadata:   metadata,
		OccurredAt: removedAt,
	}
	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != actorID {
		t.Fatalf("expected actor %s, got actor %s user %s", actorID, record.ActorID, record.UserID)
	}
	if record.TenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, record.TenantID)
	}
	if record.Verb != "dashboard.widget.remove" || record.ObjectType != "widget" || record.ObjectID != "w-top-models" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "dashboard" {
		t.Fatalf("expected channel dashboard got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(removedAt) {
		t.Fatalf("expected occurred_at %v got %v", removedAt, record.OccurredAt)
	}
	if record.Data["title"] != "Top models" || record.Data["chart_type"] != "bar" {
		t.Fatalf("expected widget metadata, got %v", record.Data)
	}
	record.Data["title"] = "changed"
	if metadata["title"] != "Top models" {
		t.Fatalf("record data must not alias event metadata")
	}
}

func TestHookMapsNonUUIDActorsToNil(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       "dashboard.layout.update",
		ActorID:    "claims-cli",
		TenantID:   "",
		ObjectType: "layout",
		ObjectID:   "dashboard_layout",
		Metadata:   map[string]any{"count": 3},
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	record := sink.records[0]
	if record.ActorID != uuid.Nil || record.TenantID != uuid.Nil {
		t.Fatalf("expected nil ids for non-uuid actor context, got %+v", record)
	}
	if record.Data["count"] != 3 {
		t.Fatalf("expected layout count metadata, got %v", record.Data)
	}
	if record.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at stamped")
	}
}

func TestHookSkipsMissingVerbAndNilSink(t *testing.T) {
	sink := &recordingSink{}
	_ = Hook{Sink: sink}.Notify(context.Background(), activity.Event{ObjectType: "widget", ObjectID: "w-1"})
	if len(sink.records) != 0 {
		t.Fatalf("expected no records for an event without verb, got %d", len(sink.records))
	}
	if err := (Hook{}).Notify(context.Background(), activity.Event{Verb: "dashboard.widget.add"}); err != nil {
		t.Fatalf("nil sink should be a no-op, got %v", err)
	}
}

func TestHookReturnsSinkError(t *testing.T) {
	sinkErr := errors.New("activity table locked")
	err := Hook{Sink: &recordingSink{err: sinkErr}}.Notify(context.Background(), activity.Event{Verb: "dashboard.widget.add"})
	if !errors.Is(err, sinkErr) {
		t.Fatalf("expected sink error, got %v", err)
	}
}
