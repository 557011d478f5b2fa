// Package session owns the live state of one letter experience: the current
// phase, the active letter, sender/recipient mode and the burn sub-state.
// Presentational layers never mutate state directly; every transition goes
// through a named handler and the UI re-renders from the snapshot.
package session

import (
	"fmt"
	"net/url"
	"sync"

	"everink.io/ember/codec"
	"everink.io/ember/common/logging"
	le "everink.io/ember/errors"
	md "everink.io/ember/models"
	"everink.io/ember/share"
)

// Phase is the experience's current screen-level state.
type Phase string

const (
	PhaseLoading        Phase = "loading"
	PhaseWelcome        Phase = "welcome"
	PhaseEditor         Phase = "editor"
	PhaseShare          Phase = "share"
	PhaseRecipientIntro Phase = "recipient_intro"
	PhaseEnvelope       Phase = "envelope"
	PhaseSeal           Phase = "seal"
	PhaseReveal         Phase = "reveal"
	// PhaseBurning is terminal until replay.
	PhaseBurning Phase = "burning"
)

// State is a point-in-time snapshot handed to the UI layer.
type State struct {
	Phase         Phase
	Letter        *md.Letter
	SenderName    string
	RecipientMode bool
	ShowHearts    bool
	ShareURL      string
	ShortenStatus share.Status
	// ShareParamsCleared tells the UI to strip letter parameters from the
	// page URL, set on a sender-mode replay.
	ShareParamsCleared bool
}

// Session is the controller. All transitions are strictly sequential: the
// mutex admits one at a time, and timer callbacks go through it too.
type Session struct {
	mu sync.Mutex

	phase         Phase
	letter        *md.Letter // nil means "use the built-in default"
	senderName    string
	recipientMode bool
	showHearts    bool
	shareURL      string
	shortenStatus share.Status
	paramsCleared bool

	timer *BurnTimer
}

// Option configures a Session at construction.
type Option func(*config)

type config struct {
	sched     Scheduler
	timerOpts []TimerOption
}

// WithScheduler injects a Scheduler; tests pass synthetic time.
func WithScheduler(s Scheduler) Option {
	return func(c *config) { c.sched = s }
}

// WithTimerOptions forwards timing overrides to the nested burn timer.
func WithTimerOptions(opts ...TimerOption) Option {
	return func(c *config) { c.timerOpts = append(c.timerOpts, opts...) }
}

// New returns a Session in PhaseLoading. Call Start with the page URL to
// enter the machine proper.
func New(opts ...Option) *Session {
	cfg := &config{sched: NewScheduler()}
	for _, opt := range opts {
		opt(cfg)
	}
	s := &Session{
		phase:         PhaseLoading,
		shortenStatus: share.StatusPending,
	}
	s.timer = NewBurnTimer(cfg.sched, s.onBurnComplete, s.onReplayReset, cfg.timerOpts...)
	return s
}

// Start consumes the page URL: a decodable shared-letter parameter routes to
// the recipient intro, anything else (including a malformed token) lands on
// the welcome screen. Never fails hard on bad input.
func (s *Session) Start(pageURL string) {
	clog := logging.WithFuncName()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseLoading {
		return
	}
	s.phase = PhaseWelcome
	u, err := url.Parse(pageURL)
	if err != nil {
		clog.WithError(err).Debug("unparseable page URL, starting in sender mode")
		return
	}
	params, ok := codec.ParseShareQuery(u.Query())
	if !ok {
		return
	}
	letter, derr := codec.Decode(params.Token)
	if derr != nil {
		// a broken link opens the sender flow rather than an error screen
		clog.WithError(derr).Debug("undecodable letter token, starting in sender mode")
		return
	}
	s.letter = letter
	s.senderName = params.From
	if s.senderName == "" {
		s.senderName = letter.SenderName
	}
	s.recipientMode = true
	s.phase = PhaseRecipientIntro
}

// HandleWriteOwn moves a sender from the welcome screen into the editor.
func (s *Session) HandleWriteOwn() *le.LetterErr {
	return s.transition(PhaseWelcome, PhaseEditor, nil)
}

// HandleUseDefault skips composition and heads straight for the envelope
// with the built-in letter.
func (s *Session) HandleUseDefault() *le.LetterErr {
	return s.transition(PhaseWelcome, PhaseEnvelope, func() {
		s.letter = nil
	})
}

// HandleSaveLetter stores the composed letter (normalized, so an empty
// submission falls back to the default content) and opens the share screen.
func (s *Session) HandleSaveLetter(l *md.Letter) *le.LetterErr {
	if l == nil {
		return le.ErrBadInput("no letter to save")
	}
	return s.transition(PhaseEditor, PhaseShare, func() {
		s.letter = l.Normalized()
		s.senderName = s.letter.SenderName
		// a fresh save invalidates any previously resolved link
		s.shareURL = ""
		s.shortenStatus = share.StatusPending
	})
}

// HandleCancelEdit abandons the editor.
func (s *Session) HandleCancelEdit() *le.LetterErr {
	return s.transition(PhaseEditor, PhaseWelcome, nil)
}

// HandleBackToEditor returns from the share screen to editing.
func (s *Session) HandleBackToEditor() *le.LetterErr {
	return s.transition(PhaseShare, PhaseEditor, nil)
}

// HandlePreview lets the sender run the recipient experience on their own
// letter.
func (s *Session) HandlePreview() *le.LetterErr {
	return s.transition(PhaseShare, PhaseEnvelope, nil)
}

// HandleRecipientOpen moves a recipient past the intro to the envelope.
func (s *Session) HandleRecipientOpen() *le.LetterErr {
	return s.transition(PhaseRecipientIntro, PhaseEnvelope, nil)
}

// HandleEnvelopeOpen opens the envelope onto the wax seal.
func (s *Session) HandleEnvelopeOpen() *le.LetterErr {
	return s.transition(PhaseEnvelope, PhaseSeal, nil)
}

// HandleSealRevealed fires when the seal-break animation completes.
func (s *Session) HandleSealRevealed() *le.LetterErr {
	return s.transition(PhaseSeal, PhaseReveal, nil)
}

// HandleTextComplete fires when the handwritten text finishes revealing:
// hearts come out and the burn countdown arms. The phase stays at reveal.
func (s *Session) HandleTextComplete() *le.LetterErr {
	if err := s.transition(PhaseReveal, PhaseReveal, func() {
		s.showHearts = true
	}); err != nil {
		return err
	}
	s.timer.Arm()
	return nil
}

// HandleBurnNow is the recipient's manual burn-after-reading trigger. It
// skips the rest of the countdown; the session reaches PhaseBurning when the
// burn window completes.
func (s *Session) HandleBurnNow() *le.LetterErr {
	s.mu.Lock()
	if s.phase != PhaseReveal {
		phase := s.phase
		s.mu.Unlock()
		return errBadTransition(phase, "burn now")
	}
	s.mu.Unlock()
	s.timer.Burn()
	return nil
}

// HandleReplay restarts the experience from the terminal burning phase. The
// burn timer resets fully; recipients return to their intro while senders
// return to a cleared welcome screen.
func (s *Session) HandleReplay() *le.LetterErr {
	s.mu.Lock()
	if s.phase != PhaseBurning {
		phase := s.phase
		s.mu.Unlock()
		return errBadTransition(phase, "replay")
	}
	s.mu.Unlock()
	// timer reset invokes onReplayReset, which rewinds the session state
	s.timer.Replay()
	return nil
}

// SetShareResult records the outcome of a share resolution so the UI can
// render the link and its status.
func (s *Session) SetShareResult(res share.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Status == share.StatusPending {
		return
	}
	s.shareURL = res.URL
	s.shortenStatus = res.Status
}

// Snapshot returns the current state for rendering. Letter always resolves,
// to the built-in default when nothing custom is active.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	letter := s.letter
	if letter == nil {
		letter = md.DefaultLetter()
	}
	return State{
		Phase:              s.phase,
		Letter:             letter,
		SenderName:         s.senderName,
		RecipientMode:      s.recipientMode,
		ShowHearts:         s.showHearts,
		ShareURL:           s.shareURL,
		ShortenStatus:      s.shortenStatus,
		ShareParamsCleared: s.paramsCleared,
	}
}

// Timer exposes the nested burn timer for the countdown/burn visuals.
func (s *Session) Timer() *BurnTimer {
	return s.timer
}

// onBurnComplete runs when the burn window finishes: the experience enters
// its terminal phase.
func (s *Session) onBurnComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseBurning
	s.showHearts = false
}

// onReplayReset rewinds the session after the timer has reset itself.
func (s *Session) onReplayReset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showHearts = false
	if s.recipientMode {
		s.phase = PhaseRecipientIntro
		return
	}
	s.phase = PhaseWelcome
	s.letter = nil
	s.senderName = ""
	s.shareURL = ""
	s.shortenStatus = share.StatusPending
	s.paramsCleared = true
}

// transition performs a guarded phase move, running apply under the lock.
func (s *Session) transition(from, to Phase, apply func()) *le.LetterErr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != from {
		return errBadTransition(s.phase, string(to))
	}
	s.phase = to
	if apply != nil {
		apply()
	}
	return nil
}

func errBadTransition(from Phase, trigger string) *le.LetterErr {
	return le.ErrBadInput(fmt.Sprintf("cannot %s from phase %s", trigger, from))
}
