package forms

import (
	"context"
	"log/slog"

	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/shared"
)

// Notifier shows transient messages to the operator.
type Notifier interface {
	Show(ctx context.Context, n shared.Notification)
}

// Invalidator drops cached list views of a resource after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, resource string) error
}

// Recorder observes submission outcomes.
type Recorder interface {
	ObserveSubmission(resource, outcome string)
}

// Mutation sends the payload to the API.
type Mutation func(ctx context.Context, payload map[string]any) api.Result

// OutcomeKind is the result of a submit attempt.
type OutcomeKind string

const (
	OutcomeSaved    OutcomeKind = "saved"
	OutcomeInvalid  OutcomeKind = "invalid"
	OutcomeRejected OutcomeKind = "rejected"
	OutcomeFailed   OutcomeKind = "failed"
	OutcomeIgnored  OutcomeKind = "ignored"
	OutcomeStale    OutcomeKind = "stale"
)

// Outcome describes what happened to a submission.
type Outcome struct {
	Kind     OutcomeKind
	Record   api.Record
	Errors   FieldErrors
	Cleared  []string
	Redirect string
	Err      error
}

// Submission bundles what a submit needs. Lists are the reference lists of the
// current mount, used to reconcile dependent selects before validation.
//
// Fields limits validation and the payload to one section of the form. With
// Refetch set, a saved instance stays mounted and the refetched record is
// merged into it instead of disposing it.
type Submission struct {
	Schema     *Schema
	State      *State
	Lists      map[string]List
	Mutate     Mutation
	SuccessKey string
	Redirect   string
	Fields     []string
	Refetch    func(ctx context.Context) api.Result
}

// Pipeline runs the submit sequence shared by every editor.
type Pipeline struct {
	store       Store
	guard       Guard
	notifier    Notifier
	invalidator Invalidator
	recorder    Recorder
	logger      *slog.Logger
}

// NewPipeline constructs a Pipeline. invalidator and recorder may be nil.
func NewPipeline(store Store, guard Guard, notifier Notifier, invalidator Invalidator, recorder Recorder, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:       store,
		guard:       guard,
		notifier:    notifier,
		invalidator: invalidator,
		recorder:    recorder,
		logger:      logger,
	}
}

// Submit validates the state and, when it passes, performs the mutation.
//
// Client-side failures never reach the API. A second submit while the first is
// in flight is ignored. A response that arrives after the form was discarded
// or the request context ended changes nothing.
func (p *Pipeline) Submit(ctx context.Context, sub Submission) Outcome {
	out := p.submit(ctx, sub)
	if p.recorder != nil {
		p.recorder.ObserveSubmission(sub.Schema.Resource(), string(out.Kind))
	}
	return out
}

func (p *Pipeline) submit(ctx context.Context, sub Submission) Outcome {
	st := sub.State
	cleared := Reconcile(sub.Schema, st, sub.Lists)

	var errs FieldErrors
	if len(sub.Fields) == 0 {
		st.Submitted = true
		errs = st.Validate(sub.Schema)
	} else {
		errs = st.ValidateFields(sub.Schema, sub.Fields...)
	}
	if len(errs) > 0 {
		p.save(ctx, st)
		return Outcome{Kind: OutcomeInvalid, Errors: errs, Cleared: cleared}
	}

	payload := sub.Schema.Payload(st.Values)
	if len(sub.Fields) > 0 {
		section := make(map[string]any, len(sub.Fields))
		for _, name := range sub.Fields {
			section[name] = payload[name]
		}
		payload = section
	}

	key := FormKey(st.ID)
	acquired, err := p.guard.Acquire(ctx, key)
	if err != nil {
		p.logger.Error("acquire submit guard", slog.String("form", st.ID), slog.Any("error", err))
		p.notifier.Show(ctx, shared.Notification{Key: "alerts.error", Severity: shared.SeverityError})
		return Outcome{Kind: OutcomeFailed, Cleared: cleared, Err: err}
	}
	if !acquired {
		return Outcome{Kind: OutcomeIgnored, Cleared: cleared}
	}
	defer func() {
		if err := p.guard.Release(context.WithoutCancel(ctx), key); err != nil {
			p.logger.Warn("release submit guard", slog.String("form", st.ID), slog.Any("error", err))
		}
	}()

	// The state was read before the guard was taken; a submit that finished
	// in the meantime has already disposed of the instance.
	if p.stale(ctx, st.ID) {
		p.logger.Info("drop submit of disposed form", slog.String("form", st.ID), slog.String("resource", st.Resource))
		return Outcome{Kind: OutcomeStale}
	}

	res := sub.Mutate(ctx, payload)

	if p.stale(ctx, st.ID) {
		p.logger.Info("drop late response", slog.String("form", st.ID), slog.String("resource", st.Resource))
		if res.OK() {
			p.invalidate(context.WithoutCancel(ctx), st.Resource)
		}
		return Outcome{Kind: OutcomeStale}
	}

	switch res.Kind {
	case api.KindOK:
		p.notifier.Show(ctx, shared.Notification{Key: sub.SuccessKey, Severity: shared.SeveritySuccess})
		p.invalidate(ctx, st.Resource)
		if sub.Refetch != nil {
			p.refresh(ctx, sub, st)
		} else if err := p.store.Delete(ctx, st.ID); err != nil {
			p.logger.Warn("delete form state", slog.String("form", st.ID), slog.Any("error", err))
		}
		return Outcome{Kind: OutcomeSaved, Record: res.Record, Redirect: sub.Redirect}
	case api.KindValidationFailed:
		errs, unmatched := MapViolations(sub.Schema, res.Violations)
		for name, msg := range errs {
			st.Errors[name] = msg
			st.Validated[name] = true
		}
		if len(unmatched) > 0 {
			p.notifier.Show(ctx, shared.Notification{Key: "alerts.error", Severity: shared.SeverityError})
		}
		p.save(ctx, st)
		return Outcome{Kind: OutcomeRejected, Errors: st.Errors, Cleared: cleared}
	default:
		p.notifier.Show(ctx, shared.Notification{Key: "alerts.error", Severity: shared.SeverityError})
		p.save(ctx, st)
		return Outcome{Kind: OutcomeFailed, Cleared: cleared, Err: res.Err}
	}
}

// refresh merges the refetched record into a saved instance. Values the
// operator changed outside the saved section survive; the saved section
// becomes pristine again.
func (p *Pipeline) refresh(ctx context.Context, sub Submission, st *State) {
	saved := sub.Fields
	if len(saved) == 0 {
		saved = sub.Schema.Names()
	}
	if fresh := sub.Refetch(ctx); fresh.OK() {
		st.Reinitialize(sub.Schema, fresh.Record)
		for _, name := range saved {
			st.Values[name] = st.Initial[name]
		}
	} else {
		p.logger.Warn("refetch saved record", slog.String("form", st.ID), slog.String("kind", fresh.Kind.String()), slog.Any("error", fresh.Err))
		for _, name := range saved {
			st.Initial[name] = st.Values[name]
		}
	}
	for _, name := range saved {
		delete(st.Touched, name)
		delete(st.Validated, name)
		delete(st.Errors, name)
	}
	st.Submitted = false
	p.save(ctx, st)
}

// stale reports whether the outcome of a mutation should be ignored.
func (p *Pipeline) stale(ctx context.Context, formID string) bool {
	if ctx.Err() != nil {
		return true
	}
	exists, err := p.store.Exists(ctx, formID)
	if err != nil {
		p.logger.Warn("check form state", slog.String("form", formID), slog.Any("error", err))
		return false
	}
	return !exists
}

func (p *Pipeline) invalidate(ctx context.Context, resource string) {
	if p.invalidator == nil {
		return
	}
	if err := p.invalidator.Invalidate(ctx, resource); err != nil {
		p.logger.Warn("invalidate views", slog.String("resource", resource), slog.Any("error", err))
	}
}

func (p *Pipeline) save(ctx context.Context, st *State) {
	if err := p.store.Save(ctx, st); err != nil {
		p.logger.Warn("save form state", slog.String("form", st.ID), slog.Any("error", err))
	}
}

// DeleteRow runs a guarded delete of a single grid row. It returns false when
// another delete of the same row is already in flight.
func (p *Pipeline) DeleteRow(ctx context.Context, resource, id string, del func(context.Context) api.Result) (api.Result, bool) {
	key := RowKey(resource, id)
	acquired, err := p.guard.Acquire(ctx, key)
	if err != nil {
		p.logger.Error("acquire delete guard", slog.String("row", key), slog.Any("error", err))
		res := api.Failed(0, err)
		p.deleted(ctx, resource, res)
		return res, true
	}
	if !acquired {
		return api.Result{}, false
	}
	defer func() {
		if err := p.guard.Release(context.WithoutCancel(ctx), key); err != nil {
			p.logger.Warn("release delete guard", slog.String("row", key), slog.Any("error", err))
		}
	}()

	res := del(ctx)
	if res.OK() {
		p.invalidate(ctx, resource)
	}
	p.deleted(ctx, resource, res)
	return res, true
}

// deleted reports the outcome of a row delete to the operator and the recorder.
func (p *Pipeline) deleted(ctx context.Context, resource string, res api.Result) {
	outcome := OutcomeSaved
	if res.OK() {
		p.notifier.Show(ctx, shared.Notification{Key: "alerts.delete-row.success", Severity: shared.SeveritySuccess})
	} else {
		outcome = OutcomeFailed
		p.notifier.Show(ctx, shared.Notification{Key: "alerts.error", Severity: shared.SeverityError})
	}
	if p.recorder != nil {
		p.recorder.ObserveSubmission(resource+".delete", string(outcome))
	}
}

// Pending reports whether a mutation is in flight for key.
func (p *Pipeline) Pending(ctx context.Context, key string) bool {
	held, err := p.guard.Held(ctx, key)
	if err != nil {
		return false
	}
	return held
}
