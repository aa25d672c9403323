// Package sheet implements interactive character sheets.
//
// A sheet is a small state machine owned by one goroutine:
//
//	Idle --select--> CategoryShown --edit--> EditFormOpen --submit--> CategoryShown
//
// Selecting a category is allowed from any open state and abandons an open
// form. A sheet that receives no event for its timeout closes itself and
// every later event fails with SESSION_EXPIRED.
package sheet

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/louisbranch/godlike/internal/platform/errors"
	"github.com/louisbranch/godlike/internal/platform/requestctx"
	"github.com/louisbranch/godlike/internal/services/godlike/character"
	"github.com/louisbranch/godlike/internal/services/godlike/storage"
)

// State is the presenter state of a sheet.
type State int32

const (
	StateIdle State = iota
	StateCategoryShown
	StateEditFormOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCategoryShown:
		return "category_shown"
	case StateEditFormOpen:
		return "edit_form_open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Notices shown after a successful form submission.
const (
	NoticeStatsUpdated  = "Stats updated."
	NoticeHealthUpdated = "Health updated."
)

// Repository is the character access a sheet needs.
type Repository interface {
	FetchCategory(ctx context.Context, characterID int64, category character.Category) (character.Table, error)
	ReplaceStats(ctx context.Context, characterID int64, stats storage.Stats) error
	ReplaceHealth(ctx context.Context, characterID int64, health storage.Health) error
}

// View is what a sheet displays after handling an event.
type View struct {
	SessionID string
	Nickname  string
	State     State
	// Category is empty until one is selected.
	Category character.Category
	Content  string
	// Editable reports whether an edit control should be offered.
	Editable bool
	// Notice is a transient confirmation shown apart from the sheet.
	Notice string
}

type eventKind int

const (
	eventSelect eventKind = iota
	eventEdit
	eventSubmit
	eventCancel
)

type event struct {
	ctx      context.Context
	kind     eventKind
	category character.Category
	values   map[string]string
	reply    chan result
}

type result struct {
	view View
	form Form
	err  error
}

// Session is one open character sheet.
type Session struct {
	id          string
	characterID int64
	nickname    string
	repo        Repository
	timeout     time.Duration
	onClose     func(*Session)

	events   chan event
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	state    atomic.Int32

	// Owned by the run goroutine.
	category character.Category
	shown    character.Table
}

func newSession(id string, characterID int64, nickname string, repo Repository, timeout time.Duration, onClose func(*Session)) *Session {
	s := &Session{
		id:          id,
		characterID: characterID,
		nickname:    nickname,
		repo:        repo,
		timeout:     timeout,
		onClose:     onClose,
		events:      make(chan event),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// CharacterID returns the id of the character shown.
func (s *Session) CharacterID() int64 { return s.characterID }

// Nickname returns the nickname of the character shown.
func (s *Session) Nickname() string { return s.nickname }

// State returns the current presenter state.
func (s *Session) State() State { return State(s.state.Load()) }

// Done is closed once the session has closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// Select shows category.
func (s *Session) Select(ctx context.Context, category character.Category) (View, error) {
	r := s.send(ctx, event{kind: eventSelect, category: category})
	return r.view, r.err
}

// Edit opens the edit form of the shown category.
func (s *Session) Edit(ctx context.Context) (Form, error) {
	r := s.send(ctx, event{kind: eventEdit})
	return r.form, r.err
}

// Submit persists the values of the open form, keyed by field id.
func (s *Session) Submit(ctx context.Context, values map[string]string) (View, error) {
	r := s.send(ctx, event{kind: eventSubmit, values: values})
	return r.view, r.err
}

// Cancel closes the open form without saving.
func (s *Session) Cancel(ctx context.Context) (View, error) {
	r := s.send(ctx, event{kind: eventCancel})
	return r.view, r.err
}

// IdleView is the view of a sheet before any category is selected.
func (s *Session) IdleView() View {
	return View{
		SessionID: s.id,
		Nickname:  s.nickname,
		State:     StateIdle,
		Content:   Title(s.nickname),
	}
}

func (s *Session) send(ctx context.Context, ev event) result {
	ev.ctx = ctx
	ev.reply = make(chan result, 1)
	select {
	case s.events <- ev:
	case <-s.done:
		return result{err: expired()}
	case <-ctx.Done():
		return result{err: ctx.Err()}
	}
	select {
	case r := <-ev.reply:
		return r
	case <-ctx.Done():
		return result{err: ctx.Err()}
	}
}

func (s *Session) run() {
	timer := time.NewTimer(s.timeout)
	defer func() {
		timer.Stop()
		s.state.Store(int32(StateClosed))
		if s.onClose != nil {
			s.onClose(s)
		}
		close(s.done)
	}()

	for {
		select {
		case ev := <-s.events:
			ev.reply <- s.handle(ev)
			timer.Reset(s.timeout)
		case <-timer.C:
			return
		case <-s.stop:
			return
		}
	}
}

func (s *Session) handle(ev event) result {
	switch ev.kind {
	case eventSelect:
		return s.handleSelect(ev.ctx, ev.category)
	case eventEdit:
		return s.handleEdit(ev.ctx)
	case eventSubmit:
		return s.handleSubmit(ev.ctx, ev.values)
	case eventCancel:
		return s.handleCancel()
	default:
		return result{err: errors.New("unknown sheet event")}
	}
}

func (s *Session) handleSelect(ctx context.Context, category character.Category) result {
	table, err := s.repo.FetchCategory(ctx, s.characterID, category)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNoData) {
			s.category = category
			s.shown = character.Table{}
			s.setState(StateCategoryShown)
			view := s.view()
			view.Content = apperrors.UserMessage(err, requestctx.LocaleFromContext(ctx))
			view.Editable = false
			return result{view: view}
		}
		return result{err: err}
	}
	s.category = category
	s.shown = table
	s.setState(StateCategoryShown)
	return result{view: s.view()}
}

func (s *Session) handleEdit(ctx context.Context) result {
	switch s.State() {
	case StateIdle:
		return result{err: apperrors.New(apperrors.CodeCategoryNotSelected, "no category selected")}
	case StateCategoryShown, StateEditFormOpen:
	default:
		return result{err: expired()}
	}
	if !s.category.Editable() {
		return result{err: notEditable(s.category)}
	}

	table, err := s.repo.FetchCategory(ctx, s.characterID, s.category)
	if err != nil {
		return result{err: err}
	}
	form, err := newForm(table)
	if err != nil {
		return result{err: err}
	}
	s.shown = table
	s.setState(StateEditFormOpen)
	return result{form: form}
}

func (s *Session) handleSubmit(ctx context.Context, values map[string]string) result {
	if s.State() != StateEditFormOpen {
		return result{err: apperrors.New(apperrors.CodeFormNotOpen, "no form open")}
	}

	var notice string
	switch s.category {
	case character.CategoryStats:
		stats, err := ParseStats(values)
		if err != nil {
			return result{err: err}
		}
		if err := s.repo.ReplaceStats(ctx, s.characterID, stats); err != nil {
			return result{err: err}
		}
		notice = NoticeStatsUpdated
	case character.CategoryHealth:
		health, err := ParseHealth(values)
		if err != nil {
			return result{err: err}
		}
		if err := s.repo.ReplaceHealth(ctx, s.characterID, health); err != nil {
			return result{err: err}
		}
		notice = NoticeHealthUpdated
	default:
		return result{err: notEditable(s.category)}
	}

	s.setState(StateCategoryShown)
	if table, err := s.repo.FetchCategory(ctx, s.characterID, s.category); err == nil {
		s.shown = table
	}
	view := s.view()
	view.Notice = notice
	return result{view: view}
}

func (s *Session) handleCancel() result {
	if s.State() != StateEditFormOpen {
		return result{err: apperrors.New(apperrors.CodeFormNotOpen, "no form open")}
	}
	s.setState(StateCategoryShown)
	return result{view: s.view()}
}

func (s *Session) view() View {
	view := View{
		SessionID: s.id,
		Nickname:  s.nickname,
		State:     s.State(),
		Category:  s.category,
		Content:   Title(s.nickname),
	}
	if len(s.shown.Rows) > 0 {
		view.Content = Render(s.shown)
		view.Editable = s.category.Editable()
	}
	return view
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
}

func expired() error {
	return apperrors.New(apperrors.CodeSessionExpired, "sheet session expired")
}
