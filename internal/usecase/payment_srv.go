package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"resort-booking/internal/data/entity"
	"resort-booking/internal/data/repository"
	"resort-booking/internal/dto/request"
	"resort-booking/internal/dto/response"
	"resort-booking/pkg/gateway"
	"resort-booking/pkg/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type PaymentService interface {
	InitiatePayment(ctx context.Context, reservationID string, req *request.InitiatePaymentRequest) (*response.PaymentResponse, error)
	ConfirmPayment(ctx context.Context, req *request.PaymentCallbackRequest) (*response.PaymentResponse, error)
	ReconcilePayment(ctx context.Context, gatewayRef string) (*response.PaymentResponse, error)
}

type paymentService struct {
	repo     *repository.Repository
	gateway  PaymentGateway
	settings SettingsProvider
	events   EventPublisher
	epsilon  float64
	now      func() time.Time
	log      *zap.Logger
}

// NewPaymentService builds the ledger. gw may be nil, in which case payments
// are only recorded and confirmed through the callback endpoint.
func NewPaymentService(repo *repository.Repository, gw PaymentGateway, settings SettingsProvider, events EventPublisher, config *utils.Config, log *zap.Logger) PaymentService {
	epsilon := config.Payment.Epsilon
	if epsilon <= 0 {
		epsilon = entity.DefaultPaymentEpsilon
	}
	return &paymentService{
		repo:     repo,
		gateway:  gw,
		settings: settings,
		events:   events,
		epsilon:  epsilon,
		now:      time.Now,
		log:      log.With(zap.String("service", "payment")),
	}
}

// confirmation is a gateway verdict for one transaction reference.
type confirmation struct {
	ref      string
	success  bool
	amount   float64
	currency string
	reason   string
}

// confirmOutcome reports what a confirmation changed.
type confirmOutcome struct {
	payment     *entity.Payment
	reservation *entity.Reservation
	totalPaid   float64
	replay      bool
	paid        bool
	failed      bool
	confirmed   bool
	// shortfalls is set when a fully paid reservation no longer fits
	shortfalls []Shortfall
}

func (s *paymentService) InitiatePayment(ctx context.Context, reservationID string, req *request.InitiatePaymentRequest) (resp *response.PaymentResponse, err error) {
	ctx, span := tracer.Start(ctx, "payment.initiate")
	defer func() { endSpan(span, err) }()

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Initiate payment validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	id, err := entity.ParseID[entity.Reservation](reservationID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid reservation id %s", ErrValidation, reservationID)
	}
	amount := entity.RoundMoney(req.Amount)
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	now := s.now().UTC()
	paymentID := entity.NewID[entity.Payment]()
	payment := &entity.Payment{
		ID:            paymentID,
		ReservationID: id,
		GatewayRef:    localPaymentRef(paymentID),
		Method:        req.Method,
		Status:        entity.PaymentStatusInitiated,
		Amount:        amount,
		Timestamps:    entity.Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		reservation, err := tx.Reservation.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if reservation == nil {
			return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
		}

		switch reservation.Status {
		case entity.ReservationStatusCancelled, entity.ReservationStatusNoShow:
			return fmt.Errorf("%w: reservation %s is %s", ErrConflict, reservation.ConfirmationNumber, reservation.Status)
		}

		payment.Currency = reservation.Currency
		if req.Currency != "" && !strings.EqualFold(req.Currency, reservation.Currency) {
			return fmt.Errorf("%w: currency %s does not match reservation currency %s", ErrConflict, req.Currency, reservation.Currency)
		}

		paid, err := tx.Payment.SumPaid(ctx, id)
		if err != nil {
			return err
		}
		outstanding := entity.RoundMoney(reservation.TotalAmount - paid)
		if amount > outstanding+s.epsilon {
			return fmt.Errorf("%w: amount %.2f exceeds outstanding balance %.2f", ErrConflict, amount, outstanding)
		}

		return tx.Payment.Create(ctx, payment)
	})
	if err != nil {
		s.log.Warn("Payment not initiated", zap.Error(err), zap.String("reservation_id", reservationID))
		return nil, fmt.Errorf("initiate payment for %s: %w", reservationID, err)
	}

	s.log.Info("Payment initiated",
		zap.Stringer("payment_id", payment.ID),
		zap.Stringer("reservation_id", id),
		zap.String("gateway_ref", payment.GatewayRef),
		zap.Float64("amount", amount),
	)

	if req.CardToken == "" && req.SourceID == "" {
		r := response.PaymentToResponse(payment)
		return &r, nil
	}
	return s.charge(ctx, payment, req)
}

// charge sends an initiated payment to the gateway and feeds an immediate
// verdict through the ledger.
func (s *paymentService) charge(ctx context.Context, payment *entity.Payment, req *request.InitiatePaymentRequest) (*response.PaymentResponse, error) {
	if s.gateway == nil {
		return nil, fmt.Errorf("%w: no payment gateway configured", ErrGateway)
	}

	ch, err := s.gateway.CreateCharge(ctx, gateway.ChargeRequest{
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		CardToken:   req.CardToken,
		SourceID:    req.SourceID,
		ReturnURI:   req.ReturnURI,
		Description: "reservation " + payment.ReservationID.String(),
		Metadata: map[string]any{
			"reservation_id": payment.ReservationID.String(),
			"payment_id":     payment.ID.String(),
		},
	})
	if err != nil {
		s.log.Error("Gateway charge failed", zap.Error(err), zap.String("gateway_ref", payment.GatewayRef))
		if _, cerr := s.confirm(ctx, confirmation{ref: payment.GatewayRef, reason: err.Error()}); cerr != nil {
			s.log.Error("Failed to record charge failure", zap.Error(cerr), zap.String("gateway_ref", payment.GatewayRef))
		}
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if err := s.attachCharge(ctx, payment, ch.ID); err != nil {
		return nil, err
	}

	return s.applyCharge(ctx, payment, ch)
}

// attachCharge swaps the local reference for the gateway charge id so later
// callbacks match the row.
func (s *paymentService) attachCharge(ctx context.Context, payment *entity.Payment, chargeID string) error {
	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		p, err := tx.Payment.FindByGatewayRefForUpdate(ctx, payment.GatewayRef)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("payment %s: %w", payment.GatewayRef, ErrNotFound)
		}
		p.GatewayRef = chargeID
		if p.Status == entity.PaymentStatusInitiated {
			p.Status = entity.PaymentStatusPending
		}
		p.UpdatedAt = s.now().UTC()
		if err := tx.Payment.Update(ctx, p); err != nil {
			return err
		}
		*payment = *p
		return nil
	})
	if err != nil {
		return fmt.Errorf("attach charge %s: %w", chargeID, err)
	}
	return nil
}

func (s *paymentService) applyCharge(ctx context.Context, payment *entity.Payment, ch *gateway.Charge) (*response.PaymentResponse, error) {
	var c confirmation
	switch ch.Status {
	case gateway.ChargeSuccessful:
		c = confirmation{ref: ch.ID, success: true, amount: ch.Amount, currency: ch.Currency}
	case gateway.ChargeFailed:
		c = confirmation{ref: ch.ID, reason: ch.FailureReason}
	default:
		s.log.Info("Charge pending at gateway", zap.String("gateway_ref", ch.ID))
		r := response.PaymentToResponse(payment)
		return &r, nil
	}

	out, err := s.confirm(ctx, c)
	if err != nil {
		return nil, err
	}
	s.publishOutcome(ctx, out)

	r := response.PaymentToResponse(out.payment)
	return &r, nil
}

func (s *paymentService) ConfirmPayment(ctx context.Context, req *request.PaymentCallbackRequest) (*response.PaymentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Payment callback validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	out, err := s.confirm(ctx, confirmation{
		ref:      req.GatewayRef,
		success:  *req.Success,
		amount:   req.Amount,
		currency: req.Currency,
		reason:   req.FailureReason,
	})
	if err != nil {
		return nil, err
	}
	s.publishOutcome(ctx, out)

	r := response.PaymentToResponse(out.payment)
	return &r, nil
}

// ReconcilePayment re-polls the gateway for a payment that never received a
// final callback.
func (s *paymentService) ReconcilePayment(ctx context.Context, gatewayRef string) (*response.PaymentResponse, error) {
	payment, err := s.repo.Payment.FindByGatewayRef(ctx, gatewayRef)
	if err != nil {
		return nil, fmt.Errorf("find payment %s: %w", gatewayRef, err)
	}
	if payment == nil {
		return nil, fmt.Errorf("payment %s: %w", gatewayRef, ErrNotFound)
	}
	if payment.Status.Settled() {
		r := response.PaymentToResponse(payment)
		return &r, nil
	}
	if s.gateway == nil {
		return nil, fmt.Errorf("%w: no payment gateway configured", ErrGateway)
	}

	ch, err := s.gateway.RetrieveCharge(ctx, gatewayRef)
	if err != nil {
		s.log.Error("Gateway lookup failed", zap.Error(err), zap.String("gateway_ref", gatewayRef))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	s.log.Info("Reconciling payment",
		zap.String("gateway_ref", gatewayRef),
		zap.String("gateway_status", string(ch.Status)),
	)
	return s.applyCharge(ctx, payment, ch)
}

// confirm is the ledger transition. The payment row and its reservation are
// locked in that order and updated in one transaction, so a reader never sees
// a paid payment next to a stale reservation status.
func (s *paymentService) confirm(ctx context.Context, c confirmation) (out *confirmOutcome, err error) {
	ctx, span := tracer.Start(ctx, "payment.confirm")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("payment.ref", c.ref), attribute.Bool("payment.success", c.success))

	autoConfirm := s.settings.AutoConfirmOnFullPayment(ctx)
	now := s.now().UTC()
	out = &confirmOutcome{}

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		payment, err := tx.Payment.FindByGatewayRefForUpdate(ctx, c.ref)
		if err != nil {
			return err
		}
		if payment == nil {
			return fmt.Errorf("payment %s: %w", c.ref, ErrNotFound)
		}
		out.payment = payment

		// paid is absorbing: replays and late failures change nothing
		if payment.Status == entity.PaymentStatusPaid {
			out.replay = true
			return nil
		}

		if !c.success {
			if payment.Status == entity.PaymentStatusFailed {
				out.replay = true
				return nil
			}
			reason := c.reason
			if reason == "" {
				reason = "declined"
			}
			payment.Status = entity.PaymentStatusFailed
			payment.FailureReason = &reason
			payment.ProcessedAt = &now
			payment.UpdatedAt = now
			out.failed = true
			return tx.Payment.Update(ctx, payment)
		}

		if !entity.AmountsMatch(c.amount, payment.Amount, s.epsilon) || !strings.EqualFold(c.currency, payment.Currency) {
			return fmt.Errorf("%w: callback %.2f %s does not match payment %.2f %s",
				ErrConflict, c.amount, c.currency, payment.Amount, payment.Currency)
		}

		payment.Status = entity.PaymentStatusPaid
		payment.FailureReason = nil
		payment.ProcessedAt = &now
		payment.UpdatedAt = now
		if err := tx.Payment.Update(ctx, payment); err != nil {
			return err
		}
		out.paid = true

		reservation, err := tx.Reservation.FindByIDForUpdate(ctx, payment.ReservationID)
		if err != nil {
			return err
		}
		if reservation == nil {
			return fmt.Errorf("reservation %s: %w", payment.ReservationID, ErrNotFound)
		}
		out.reservation = reservation

		totalPaid, err := tx.Payment.SumPaid(ctx, reservation.ID)
		if err != nil {
			return err
		}
		out.totalPaid = totalPaid

		confirmable := autoConfirm &&
			reservation.Status == entity.ReservationStatusPending &&
			entity.CoversAmount(totalPaid, reservation.TotalAmount, s.epsilon)
		if confirmable {
			shortfalls, err := recheckInventory(ctx, tx, reservation, now)
			if err != nil {
				return err
			}
			if len(shortfalls) > 0 {
				out.shortfalls = shortfalls
				confirmable = false
			}
		}

		out.confirmed = applyPaidTotal(reservation, totalPaid, s.epsilon, confirmable, now)
		return tx.Reservation.UpdateStatus(ctx, reservation)
	})
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
			s.log.Warn("Payment confirmation rejected", zap.Error(err), zap.String("gateway_ref", c.ref))
		} else {
			s.log.Error("Payment confirmation failed", zap.Error(err), zap.String("gateway_ref", c.ref))
		}
		return nil, fmt.Errorf("confirm payment %s: %w", c.ref, err)
	}

	switch {
	case out.replay:
		s.log.Info("Payment confirmation replayed",
			zap.String("gateway_ref", c.ref),
			zap.String("status", string(out.payment.Status)),
		)
	case out.failed:
		s.log.Info("Payment failed",
			zap.String("gateway_ref", c.ref),
			zap.Stringer("reservation_id", out.payment.ReservationID),
		)
	case out.paid:
		if out.reservation.Status == entity.ReservationStatusCancelled || out.reservation.Status == entity.ReservationStatusNoShow {
			s.log.Warn("Payment received for a closed reservation",
				zap.String("gateway_ref", c.ref),
				zap.String("confirmation_number", out.reservation.ConfirmationNumber),
				zap.String("status", string(out.reservation.Status)),
			)
		}
		s.log.Info("Payment paid",
			zap.String("gateway_ref", c.ref),
			zap.String("confirmation_number", out.reservation.ConfirmationNumber),
			zap.Float64("total_paid", out.totalPaid),
			zap.String("payment_status", string(out.reservation.PaymentStatus)),
			zap.Bool("auto_confirmed", out.confirmed),
		)
		if len(out.shortfalls) > 0 {
			s.log.Warn("Paid reservation left pending for staff review, inventory taken",
				zap.String("confirmation_number", out.reservation.ConfirmationNumber),
				zap.Any("shortfalls", out.shortfalls),
			)
		}
	}

	return out, nil
}

// applyPaidTotal derives the reservation's payment status from the paid total
// and auto-confirms a pending reservation once it is fully paid. It reports
// whether the reservation was confirmed.
func applyPaidTotal(r *entity.Reservation, totalPaid, epsilon float64, autoConfirm bool, now time.Time) bool {
	var next entity.ReservationPaymentStatus
	switch {
	case entity.CoversAmount(totalPaid, r.TotalAmount, epsilon):
		next = entity.ReservationPaymentPaid
	case totalPaid > 0:
		next = entity.ReservationPaymentPartial
	default:
		next = entity.ReservationPaymentPending
	}
	r.PaymentStatus = r.PaymentStatus.Advance(next)
	r.UpdatedAt = now

	if autoConfirm && r.PaymentStatus == entity.ReservationPaymentPaid && r.Status == entity.ReservationStatusPending {
		return r.ApplyTransition(entity.ReservationStatusConfirmed, now) == nil
	}
	return false
}

func (s *paymentService) publishOutcome(ctx context.Context, out *confirmOutcome) {
	if out == nil || out.replay {
		return
	}

	p := out.payment
	at := s.now().UTC()
	ev := PaymentEvent{
		PaymentID:     p.ID.String(),
		ReservationID: p.ReservationID.String(),
		GatewayRef:    p.GatewayRef,
		Amount:        p.Amount,
		Currency:      p.Currency,
		TotalPaid:     out.totalPaid,
		OccurredAt:    at,
	}

	if out.failed {
		if p.FailureReason != nil {
			ev.Reason = *p.FailureReason
		}
		publish(ctx, s.events, s.log, EventPaymentFailed, ev)
		return
	}

	publish(ctx, s.events, s.log, EventPaymentPaid, ev)
	if out.confirmed {
		publish(ctx, s.events, s.log, EventReservationConfirmed, reservationEvent(out.reservation, at))
	}
	if len(out.shortfalls) > 0 {
		publish(ctx, s.events, s.log, EventReservationOverbooked, OverbookedEvent{
			ReservationEvent: reservationEvent(out.reservation, at),
			Shortfalls:       out.shortfalls,
		})
	}
}

// recheckInventory re-reads every source for the reservation's dated items
// inside the confirming transaction. Only firm holds count against it:
// confirmed or completed reservations, channel bookings and blocks. The
// reservation's own stay is excluded. Resource rows are locked in id order so
// two confirmations for the same inventory serialize.
func recheckInventory(ctx context.Context, tx *repository.Repository, r *entity.Reservation, now time.Time) ([]Shortfall, error) {
	items, err := tx.ReservationItem.FindByReservationID(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("load items of %s: %w", r.ConfirmationNumber, err)
	}

	type dated struct {
		item *entity.ReservationItem
		rng  entity.DateRange
	}
	var stays []dated
	for _, it := range items {
		if rng, ok := it.Range(); ok {
			stays = append(stays, dated{item: it, rng: rng})
		}
	}
	if len(stays) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(stays))
	byID := make(map[string]entity.ResourceID, len(stays))
	for _, st := range stays {
		key := st.item.ResourceID.String()
		if _, ok := byID[key]; !ok {
			byID[key] = st.item.ResourceID
			ids = append(ids, key)
		}
	}
	slices.Sort(ids)

	resources := make(map[string]*entity.Resource, len(ids))
	for _, key := range ids {
		res, err := tx.Resource.FindByIDForUpdate(ctx, byID[key])
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, fmt.Errorf("resource %s: %w", key, ErrNotFound)
		}
		resources[key] = res
	}

	readers := []ConflictReader{
		NewBlockReader(tx.ManualBlock),
		NewInternalReader(tx.ReservationItem),
		NewExternalReader(tx.ExternalBooking),
	}
	own := reservationStayKey(r.ID)

	var shortfalls []Shortfall
	for _, st := range stays {
		resource := resources[st.item.ResourceID.String()]

		var firm []entity.Conflict
		for _, reader := range readers {
			found, err := reader.FindConflicts(ctx, resource, st.rng)
			if err != nil {
				return nil, err
			}
			for _, c := range found {
				if c.StayKey == own || c.Tentative {
					continue
				}
				firm = append(firm, c)
			}
		}

		requested := 0
		for _, other := range stays {
			if other.item.ResourceID == st.item.ResourceID && other.rng.Overlaps(st.rng) {
				requested += other.item.Quantity
			}
		}

		a := resolveAvailability(resource, st.rng, requested, firm, now)
		if !a.IsAvailable {
			shortfalls = append(shortfalls, Shortfall{
				ResourceID:     resource.ID.String(),
				StartDate:      st.rng.Start.Format(entity.DateLayout),
				EndDate:        st.rng.End.Format(entity.DateLayout),
				RequestedUnits: requested,
				AvailableUnits: a.AvailableUnits,
				Blocked:        a.Blocked,
			})
		}
	}
	return shortfalls, nil
}

func localPaymentRef(id entity.PaymentID) string {
	return "pay_" + strings.ReplaceAll(id.String(), "-", "")
}
