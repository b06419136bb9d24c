package page

import (
	"context"
	"sync"
	"time"

	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

// EditState is the phase of an editable page.
type EditState string

const (
	StateViewing EditState = "viewing"
	StateEditing EditState = "editing"
	StateSaving  EditState = "saving"
)

// Snapshot is the persisted form of an Editor.
type Snapshot[T any] struct {
	State       EditState  `json:"state"`
	Saved       T          `json:"saved"`
	Draft       T          `json:"draft"`
	SavingSince *time.Time `json:"savingSince,omitempty"`
}

// Editor tracks the saved record of a page and the draft being edited.
//
//	viewing -> editing      Begin
//	editing -> viewing      Cancel (draft discarded)
//	editing -> saving       BeginSave
//	saving  -> viewing      FinishSave ok
//	saving  -> editing      FinishSave failed (draft kept)
//
// A save while another is in flight is rejected with ErrConflict.
type Editor[T any] struct {
	mu          sync.Mutex
	state       EditState
	saved       T
	draft       T
	savingSince time.Time
	now         func() time.Time
}

// NewEditor starts in viewing with saved as the record on screen.
func NewEditor[T any](saved T) *Editor[T] {
	return &Editor[T]{state: StateViewing, saved: saved, draft: saved, now: time.Now}
}

// RestoreEditor rebuilds an editor from a snapshot. A save that has been in
// flight for longer than staleAfter is treated as abandoned and the editor
// returns to editing with its draft.
func RestoreEditor[T any](snap Snapshot[T], staleAfter time.Duration) *Editor[T] {
	e := &Editor[T]{state: snap.State, saved: snap.Saved, draft: snap.Draft, now: time.Now}
	switch e.state {
	case StateEditing:
	case StateSaving:
		if snap.SavingSince == nil || (staleAfter > 0 && e.now().Sub(*snap.SavingSince) > staleAfter) {
			e.state = StateEditing
		} else {
			e.savingSince = *snap.SavingSince
		}
	default:
		e.state = StateViewing
		e.draft = e.saved
	}
	return e
}

// State returns the current phase.
func (e *Editor[T]) State() EditState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Saved returns the last saved record.
func (e *Editor[T]) Saved() T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saved
}

// Draft returns the record being edited, or the saved record when viewing.
func (e *Editor[T]) Draft() T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Begin enters editing with a draft copied from the saved record. Calling it
// while already editing keeps the current draft.
func (e *Editor[T]) Begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateSaving:
		return appErrors.Clone(appErrors.ErrConflict, "save in progress")
	case StateViewing:
		e.draft = e.saved
		e.state = StateEditing
	}
	return nil
}

// Change applies fn to the draft. It fails outside editing, or when fn fails,
// in which case the draft is left unchanged.
func (e *Editor[T]) Change(fn func(*T) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateEditing {
		return appErrors.Clone(appErrors.ErrConflict, "page is not being edited")
	}
	draft := e.draft
	if err := fn(&draft); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	e.draft = draft
	return nil
}

// Cancel discards the draft and returns the saved record. Nothing is sent anywhere.
func (e *Editor[T]) Cancel() (T, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSaving {
		return e.saved, appErrors.Clone(appErrors.ErrConflict, "save in progress")
	}
	e.draft = e.saved
	e.state = StateViewing
	return e.saved, nil
}

// BeginSave moves to saving and returns the draft to persist.
func (e *Editor[T]) BeginSave() (T, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateSaving:
		return e.draft, appErrors.Clone(appErrors.ErrConflict, "save already in progress")
	case StateViewing:
		return e.draft, appErrors.Clone(appErrors.ErrConflict, "page is not being edited")
	}
	e.state = StateSaving
	e.savingSince = e.now()
	return e.draft, nil
}

// FinishSave records the outcome of a save started with BeginSave. On success
// result becomes the saved record; on failure the draft is kept for retry.
func (e *Editor[T]) FinishSave(result T, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateSaving {
		return
	}
	e.savingSince = time.Time{}
	if err != nil {
		e.state = StateEditing
		return
	}
	e.saved = result
	e.draft = result
	e.state = StateViewing
}

// Save runs BeginSave, persist and FinishSave in one call.
func (e *Editor[T]) Save(ctx context.Context, persist func(context.Context, T) (T, error)) (T, error) {
	draft, err := e.BeginSave()
	if err != nil {
		return draft, err
	}
	result, err := persist(ctx, draft)
	e.FinishSave(result, err)
	if err != nil {
		return draft, err
	}
	return result, nil
}

// Snapshot captures the editor for persistence.
func (e *Editor[T]) Snapshot() Snapshot[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot[T]{State: e.state, Saved: e.saved, Draft: e.draft}
	if e.state == StateSaving {
		since := e.savingSince
		snap.SavingSince = &since
	}
	return snap
}
