package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rcabrera/citywatch/internal/common"
	"github.com/rcabrera/citywatch/internal/server/broadcast"
	"github.com/rcabrera/citywatch/internal/server/mail"
	"github.com/rcabrera/citywatch/internal/server/models"
	"github.com/rcabrera/citywatch/internal/server/objectstore"
	"github.com/rcabrera/citywatch/internal/server/sequence"
)

func newTestEmergencyService(rm *fakeRepoManager, hub *broadcast.Hub) *EmergencyService {
	a := sequence.NewAllocator(rm.counters)
	return NewEmergencyService(nil, rm, a, objectstore.NewMemoryStore(), mail.NewMemoryMailer(), hub, testLogger(), testConfig())
}

func validEmergencyInput() *CreateEmergencyInput {
	return &CreateEmergencyInput{
		Category: "fire",
		FullName: "Juan Dela Cruz",
		Barangay: "San Isidro",
		Location: "Main St",
		Comment:  "house on fire",
		PostedBy: "u1",
	}
}

func TestEmergencyCreate_PublishesEvent(t *testing.T) {
	rm := newFakeRepoManager()
	hub := broadcast.NewHub()
	s := newTestEmergencyService(rm, hub)

	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	created, err := s.Create(context.Background(), validEmergencyInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	select {
	case ev := <-ch:
		if ev.Name != "new-emergency" {
			t.Errorf("unexpected event name %q", ev.Name)
		}
		payload, ok := ev.Payload.(*models.Emergency)
		if !ok {
			t.Fatalf("unexpected payload type %T", ev.Payload)
		}
		if payload.EmergencyID != created.EmergencyID {
			t.Errorf("payload emergencyId %s != created %s", payload.EmergencyID, created.EmergencyID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestEmergencyCreate_SequenceIndependentFromReports(t *testing.T) {
	rm := newFakeRepoManager()
	hub := broadcast.NewHub()
	es := newTestEmergencyService(rm, hub)
	rs := newTestReportService(rm, objectstore.NewMemoryStore(), mail.NewMemoryMailer())

	if _, err := rs.Create(context.Background(), validReportInput()); err != nil {
		t.Fatalf("report Create error: %v", err)
	}
	if _, err := rs.Create(context.Background(), validReportInput()); err != nil {
		t.Fatalf("report Create error: %v", err)
	}

	created, err := es.Create(context.Background(), validEmergencyInput())
	if err != nil {
		t.Fatalf("emergency Create error: %v", err)
	}
	if created.EmergencyID != "001" {
		t.Errorf("emergency counter must be independent, want 001, got %s", created.EmergencyID)
	}
}

func TestEmergencyCreate_Validation(t *testing.T) {
	rm := newFakeRepoManager()
	s := newTestEmergencyService(rm, broadcast.NewHub())

	_, err := s.Create(context.Background(), &CreateEmergencyInput{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ve *common.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	for _, field := range []string{"category", "fullName", "barangay", "location", "postedBy"} {
		if _, ok := ve.Fields[field]; !ok {
			t.Errorf("expected field %q in validation error", field)
		}
	}
}

func TestEmergencyLifecycle(t *testing.T) {
	rm := newFakeRepoManager()
	s := newTestEmergencyService(rm, broadcast.NewHub())

	created, err := s.Create(context.Background(), validEmergencyInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := s.MarkResponded(context.Background(), created.EmergencyID); err != nil {
		t.Fatalf("MarkResponded error: %v", err)
	}
	if _, err := s.MarkArchived(context.Background(), created.EmergencyID); err != nil {
		t.Fatalf("MarkArchived error: %v", err)
	}
	if _, err := s.MarkResponded(context.Background(), "999"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("unknown emergencyId: want ErrNotFound, got %v", err)
	}

	responded, err := s.ListResponded(context.Background())
	if err != nil {
		t.Fatalf("ListResponded error: %v", err)
	}
	if len(responded) != 1 {
		t.Fatalf("want 1 responded emergency, got %d", len(responded))
	}

	if err := s.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete(context.Background(), created.ID); err != nil {
		t.Errorf("deleting an absent emergency must succeed, got %v", err)
	}
}
