package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/campuseats/campuseats-backend/pkg/enums"
	"github.com/campuseats/campuseats-backend/pkg/logger"
)

const defaultSubmitConcurrency = 4

// SubmissionLine is one line of an order submission.
type SubmissionLine struct {
	BasketID       string
	ItemName       string
	VendorUsername string
	Quantity       int
	Price          decimal.Decimal
}

// OrderSubmission is the request sent for one vendor group.
type OrderSubmission struct {
	CustomerIdentifier string
	VendorIdentifier   string
	Status             enums.OrderStatus
	TotalPrice         decimal.Decimal
	Lines              []SubmissionLine
}

// NewOrderSubmission builds the request for a consolidated group.
func NewOrderSubmission(customer string, g VendorOrderGroup) OrderSubmission {
	lines := make([]SubmissionLine, 0, len(g.Lines))
	for _, l := range g.Lines {
		lines = append(lines, SubmissionLine{
			BasketID:       l.BasketID,
			ItemName:       l.ItemName,
			VendorUsername: g.VendorUsername,
			Quantity:       l.Quantity,
			Price:          l.UnitPrice,
		})
	}
	return OrderSubmission{
		CustomerIdentifier: customer,
		VendorIdentifier:   g.VendorUsername,
		Status:             enums.OrderStatusPending,
		TotalPrice:         g.GroupTotal,
		Lines:              lines,
	}
}

// Submitter places one vendor order and returns its order id.
type Submitter interface {
	SubmitOrder(ctx context.Context, sub OrderSubmission, idempotencyKey string) (int64, error)
}

// StageError tags a failed submission with the stage it reached. OrderID is
// set when an order row exists despite the failure.
type StageError struct {
	Stage     enums.SubmissionStage
	OrderID   int64
	Retryable bool
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type OutcomeState string

const (
	OutcomeComplete OutcomeState = "COMPLETE"
	OutcomeFailed   OutcomeState = "FAILED"
)

// GroupOutcome is the result of submitting one vendor group.
type GroupOutcome struct {
	VendorUsername string
	Fingerprint    string
	GroupTotal     decimal.Decimal
	State          OutcomeState
	OrderID        int64
	Stage          enums.SubmissionStage
	Err            error
	Retryable      bool
	// Skipped is set when the group completed in an earlier attempt and was
	// not sent again.
	Skipped bool
}

func (o GroupOutcome) Complete() bool { return o.State == OutcomeComplete }

// PartialWrite reports a failed group that still left an order row behind.
func (o GroupOutcome) PartialWrite() bool {
	return o.State == OutcomeFailed && o.OrderID != 0
}

// Orchestrator submits vendor groups independently and collects one outcome
// per group.
type Orchestrator struct {
	submitter   Submitter
	concurrency int
	logg        *logger.Logger
}

type OrchestratorOption func(*Orchestrator)

func WithConcurrency(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func WithLogger(logg *logger.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logg = logg }
}

func NewOrchestrator(submitter Submitter, opts ...OrchestratorOption) (*Orchestrator, error) {
	if submitter == nil {
		return nil, fmt.Errorf("submitter required")
	}
	o := &Orchestrator{submitter: submitter, concurrency: defaultSubmitConcurrency}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// SubmitRequest describes one checkout attempt.
type SubmitRequest struct {
	Customer string
	Groups   []VendorOrderGroup
	// KeyPrefix scopes idempotency keys, normally the session id.
	KeyPrefix string
	// Completed maps fingerprints submitted successfully in earlier attempts
	// to their order ids; those groups are not sent again.
	Completed map[string]int64
}

// Submit attempts every group. A failing group never stops the others, and
// outcomes come back in group order.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) []GroupOutcome {
	outcomes := make([]GroupOutcome, len(req.Groups))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, group := range req.Groups {
		fp := group.Fingerprint()
		outcomes[i] = GroupOutcome{VendorUsername: group.VendorUsername, Fingerprint: fp, GroupTotal: group.GroupTotal}

		if orderID, done := req.Completed[fp]; done {
			outcomes[i].State = OutcomeComplete
			outcomes[i].Stage = enums.SubmissionStageComplete
			outcomes[i].OrderID = orderID
			outcomes[i].Skipped = true
			continue
		}

		i, group := i, group
		g.Go(func() error {
			o.submitOne(ctx, req, group, &outcomes[i])
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (o *Orchestrator) submitOne(ctx context.Context, req SubmitRequest, group VendorOrderGroup, out *GroupOutcome) {
	key := out.Fingerprint
	if req.KeyPrefix != "" {
		key = req.KeyPrefix + ":" + key
	}

	orderID, err := o.submitter.SubmitOrder(ctx, NewOrderSubmission(req.Customer, group), key)
	if err == nil {
		out.State = OutcomeComplete
		out.Stage = enums.SubmissionStageComplete
		out.OrderID = orderID
		return
	}

	out.State = OutcomeFailed
	out.Err = err
	out.Stage = enums.SubmissionStageRequest
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		out.Stage = stageErr.Stage
		out.OrderID = stageErr.OrderID
		out.Retryable = stageErr.Retryable
	}

	if o.logg != nil {
		lctx := o.logg.WithFields(ctx, map[string]any{
			"vendor_username": group.VendorUsername,
			"stage":           out.Stage.String(),
			"order_id":        out.OrderID,
		})
		o.logg.Warn(lctx, "vendor group submission failed: "+err.Error())
	}
}
