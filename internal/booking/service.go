package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-booking/internal/availability"
	"github.com/clinicdesk/clinic-booking/internal/clinic"
	"github.com/clinicdesk/clinic-booking/internal/notification"
	redisclient "github.com/clinicdesk/clinic-booking/internal/redis"
)

var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// Notifier is the slice of the notification service the booking flow needs.
type Notifier interface {
	Notify(ctx context.Context, n *notification.Notification) (*notification.Notification, error)
	NotifyApproved(ctx context.Context, n *notification.Notification) (*notification.Notification, error)
}

// Service drives the booking form state machine: it loads the session,
// applies one transition, and saves. All invariants (downstream resets,
// price recomputation, stale slot guard, submit re-entrancy) live in the
// session methods; the service supplies reference data, slot resolutions,
// locking, and persistence.
type Service struct {
	clinicRepo clinic.Repository
	repo       Repository
	store      SessionStore
	resolver   *availability.Resolver
	locker     redisclient.Locker
	notifier   Notifier
}

func NewService(
	clinicRepo clinic.Repository,
	repo Repository,
	store SessionStore,
	resolver *availability.Resolver,
	locker redisclient.Locker,
	notifier Notifier,
) *Service {
	return &Service{
		clinicRepo: clinicRepo,
		repo:       repo,
		store:      store,
		resolver:   resolver,
		locker:     locker,
		notifier:   notifier,
	}
}

// StartSession opens an empty booking form for a patient.
func (s *Service) StartSession(ctx context.Context, patientID uuid.UUID) (*Session, error) {
	sess := NewSession(patientID)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.store.Get(ctx, id)
}

// SelectType applies the appointment type transition, which resets every
// downstream selection.
func (s *Service) SelectType(ctx context.Context, sessionID, typeID uuid.UUID) (*Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	t, err := s.clinicRepo.GetAppointmentType(ctx, typeID)
	if err != nil {
		return nil, err
	}

	sess.ApplyType(t)

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SelectSpecialist applies the specialist transition after checking the
// candidate against the eligibility table for the session's type.
func (s *Service) SelectSpecialist(ctx context.Context, sessionID, specialistID uuid.UUID) (*Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Selection.AppointmentTypeID == nil {
		return nil, ErrNoTypeSelected
	}

	t, err := s.clinicRepo.GetAppointmentType(ctx, *sess.Selection.AppointmentTypeID)
	if err != nil {
		return nil, err
	}
	sp, err := s.clinicRepo.GetSpecialist(ctx, specialistID)
	if err != nil {
		return nil, err
	}

	if err := sess.ApplySpecialist(t, sp); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	// The date may have survived the specialist change; re-resolve slots
	// for the new pair right away.
	if _, _, ok := sess.SlotKey(); ok {
		return s.resolveInto(ctx, sess)
	}
	return sess, nil
}

// SelectDate applies the date transition and resolves slots for the new
// (specialist, date) pair when a specialist is already chosen.
func (s *Service) SelectDate(ctx context.Context, sessionID uuid.UUID, date string) (*Session, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidDate
	}

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.ApplyDate(date); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	if _, _, ok := sess.SlotKey(); ok {
		return s.resolveInto(ctx, sess)
	}
	return sess, nil
}

// resolveInto fetches slots for the session's current pair and applies the
// result under the stale-response guard: the session is reloaded after the
// fetch, and the resolution is dropped if the selection moved on while the
// fetch was in flight. Last request wins by key comparison, not arrival
// order.
func (s *Service) resolveInto(ctx context.Context, sess *Session) (*Session, error) {
	specialistID, date, ok := sess.SlotKey()
	if !ok {
		return sess, nil
	}
	key := availability.Key(specialistID, date)

	slots := s.resolver.Resolve(ctx, specialistID, date)

	fresh, err := s.store.Get(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	if !fresh.ApplySlots(key, slots) {
		log.Printf("dropping stale slot resolution session=%s key=%s", sess.ID, key)
		return fresh, nil
	}

	if err := s.store.Save(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// SelectTime applies the time transition; the value must be one of the
// slots resolved for the current pair.
func (s *Service) SelectTime(ctx context.Context, sessionID uuid.UUID, value string) (*Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.ApplyTime(value); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetDetails records the free-text fields.
func (s *Service) SetDetails(ctx context.Context, sessionID uuid.UUID, chiefComplaint, notes string) (*Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.ApplyDetails(chiefComplaint, notes)

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Submit turns a complete selection into a persisted booking. The whole
// call runs under a per-session lock, so concurrent submits from other
// processes get ErrSubmitInFlight, same as the Processing flag persisted
// with the session. The insert itself runs under a per-slot lock so two
// sessions cannot take the same time. Success resets the session to empty;
// a validation failure leaves the entered data untouched.
func (s *Service) Submit(ctx context.Context, sessionID uuid.UUID) (*Booking, error) {
	var booked *Booking
	err := s.locker.WithLock(ctx, fmt.Sprintf("session:%s", sessionID), func(lockCtx context.Context) error {
		b, err := s.submit(lockCtx, sessionID)
		if err != nil {
			return err
		}
		booked = b
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSubmitInFlight
		}
		return nil, err
	}
	return booked, nil
}

func (s *Service) submit(ctx context.Context, sessionID uuid.UUID) (*Booking, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Processing {
		return nil, ErrSubmitInFlight
	}

	if fe := sess.Validate(); fe.Any() {
		return nil, &ValidationError{Fields: fe}
	}

	sess.Processing = true
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	booked, err := s.submitLocked(ctx, sess)
	if err != nil {
		// Other transitions may have saved the session while the submit
		// was in flight. Clear the flag on a fresh copy so their writes
		// survive.
		fresh, getErr := s.store.Get(ctx, sess.ID)
		if getErr != nil {
			log.Printf("failed to reload session %s after submit error: %v", sess.ID, getErr)
			fresh = sess
		}
		fresh.Processing = false
		if saveErr := s.store.Save(ctx, fresh); saveErr != nil {
			log.Printf("failed to clear processing flag session=%s err=%v", sess.ID, saveErr)
		}
		return nil, err
	}

	sess.Reset()
	if err := s.store.Save(ctx, sess); err != nil {
		log.Printf("failed to reset session %s after submit: %v", sess.ID, err)
	}

	return booked, nil
}

func (s *Service) submitLocked(ctx context.Context, sess *Session) (*Booking, error) {
	sel := sess.Selection

	// Recompute the price from reference data so a drifted session value
	// can never be charged.
	t, err := s.clinicRepo.GetAppointmentType(ctx, *sel.AppointmentTypeID)
	if err != nil {
		return nil, err
	}
	sp, err := s.clinicRepo.GetSpecialist(ctx, *sel.SpecialistID)
	if err != nil {
		return nil, err
	}

	lockKey := fmt.Sprintf("slot:%s:%s:%s", sp.ID, sel.Date, sel.Time)

	var booked *Booking
	err = s.locker.WithLock(ctx, lockKey, func(lockCtx context.Context) error {
		existing, err := s.repo.GetActiveBookingForSlot(lockCtx, sp.ID, sel.Date, sel.Time)
		if err != nil && !errors.Is(err, ErrBookingNotFound) {
			return fmt.Errorf("check slot: %w", err)
		}
		if existing != nil {
			return ErrSlotTaken
		}

		b, err := s.repo.CreateBooking(lockCtx, &Booking{
			PatientID:         sess.PatientID,
			AppointmentTypeID: t.ID,
			SpecialistID:      sp.ID,
			SpecialistKind:    sp.Kind,
			Date:              sel.Date,
			Time:              sel.Time,
			ChiefComplaint:    sel.ChiefComplaint,
			Notes:             sel.Notes,
			Price:             ComputePrice(t, sp),
		})
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		booked = b
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	s.resolver.Invalidate(ctx, sp.ID, sel.Date)

	if s.notifier != nil {
		_, err := s.notifier.Notify(ctx, &notification.Notification{
			UserID:  sess.PatientID,
			Type:    notification.TypeBookingReceived,
			Title:   "Booking received",
			Message: fmt.Sprintf("Your %s request for %s at %s is awaiting approval.", t.Name, sel.Date, availability.DisplayLabel(sel.Time)),
			Data: map[string]any{
				"booking_id": booked.ID.String(),
			},
		})
		if err != nil {
			log.Printf("booking notification failed booking=%s err=%v", booked.ID, err)
		}
	}

	return booked, nil
}

// Approve moves a booking to approved and signals the patient's feed to
// re-fetch, since approval changes more dashboard data than one
// notification can carry.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.UpdateBookingStatus(ctx, id, StatusPendingApproval, StatusApproved)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, ErrInvalidStatusChange
		}
		return nil, err
	}

	if s.notifier != nil {
		_, err := s.notifier.NotifyApproved(ctx, &notification.Notification{
			UserID:  b.PatientID,
			Type:    notification.TypeBookingApproved,
			Title:   "Appointment approved",
			Message: fmt.Sprintf("Your appointment on %s at %s has been approved.", b.Date, availability.DisplayLabel(b.Time)),
			Data: map[string]any{
				"booking_id": b.ID.String(),
			},
		})
		if err != nil {
			log.Printf("approval notification failed booking=%s err=%v", b.ID, err)
		}
	}

	return b, nil
}

// Decline moves a booking to declined and frees its slot.
func (s *Service) Decline(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.UpdateBookingStatus(ctx, id, StatusPendingApproval, StatusDeclined)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, ErrInvalidStatusChange
		}
		return nil, err
	}

	s.resolver.Invalidate(ctx, b.SpecialistID, b.Date)

	if s.notifier != nil {
		_, err := s.notifier.Notify(ctx, &notification.Notification{
			UserID:  b.PatientID,
			Type:    notification.TypeBookingDeclined,
			Title:   "Appointment declined",
			Message: fmt.Sprintf("Your appointment request for %s at %s was declined.", b.Date, availability.DisplayLabel(b.Time)),
			Data: map[string]any{
				"booking_id": b.ID.String(),
			},
		})
		if err != nil {
			log.Printf("decline notification failed booking=%s err=%v", b.ID, err)
		}
	}

	return b, nil
}

// GetBooking retrieves one booking.
func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// ListBookings retrieves a patient's bookings, newest first.
func (s *Service) ListBookings(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Booking, error) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListBookingsByPatient(ctx, patientID, limit, offset)
}
