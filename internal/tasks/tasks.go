// package tasks implements the request orchestration between the UI and the generation backend.
//
// The core abstraction is Orchestrator, which turns a user submission into a backend call and routes the outcome
// to the status line, the session history and the player.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
)

// DefaultDuration is used when a submission carries no duration.
const DefaultDuration = 30

const (
	StatusGenerating  = "Generating music... This may take a moment."
	StatusGenerated   = "Music generated successfully!"
	StatusGenericFail = "Error generating music. Please try again."

	LabelInProgress  = "Generating..."
	LabelFailed      = "Failed"
	LabelGenerated   = "Generated successfully"
	LabelHarmonized  = "Harmonized successfully"
	LabelReharmonize = "Reharmonized successfully"
)

// Kind selects the backend operation of a request.
type Kind int

const (
	KindGenerate Kind = iota
	KindHarmonize
	KindReharmonize
)

func (k Kind) String() string {
	switch k {
	case KindGenerate:
		return "generate"
	case KindHarmonize:
		return "harmonize"
	case KindReharmonize:
		return "reharmonize"
	default:
		return ""
	}
}

// Path is the backend endpoint of the operation.
func (k Kind) Path() string {
	switch k {
	case KindGenerate:
		return services.GeneratePath
	case KindHarmonize:
		return services.HarmonizePath
	case KindReharmonize:
		return services.ReharmonizePath
	default:
		return ""
	}
}

func (k Kind) pendingStatus() string {
	switch k {
	case KindHarmonize:
		return "Harmonizing music... This may take a moment."
	case KindReharmonize:
		return "Reharmonizing music... This may take a moment."
	default:
		return StatusGenerating
	}
}

func (k Kind) successStatus() string {
	switch k {
	case KindHarmonize:
		return "Music harmonized successfully!"
	case KindReharmonize:
		return "Music reharmonized successfully!"
	default:
		return StatusGenerated
	}
}

func (k Kind) successLabel() string {
	switch k {
	case KindHarmonize:
		return LabelHarmonized
	case KindReharmonize:
		return LabelReharmonize
	default:
		return LabelGenerated
	}
}

// Input is a user submission.
//
// Generate reads Prompt. Harmonize and Reharmonize read Filename and use Prompt as the history label.
type Input struct {
	Prompt   string
	Filename string
	Duration int
}

// Request is an accepted submission, numbered in issue order.
type Request struct {
	Seq       uint64
	Kind      Kind
	Prompt    string
	Filename  string
	Duration  int
	HistoryID string
}

// Result is the outcome of executing a [Request].
type Result struct {
	Request Request
	Track   *models.Track
	Message string // server supplied success message
	Err     error
}

// Status is a snapshot of what the UI shows for requests.
type Status struct {
	Text           string
	Busy           bool
	ControlEnabled bool
	Failed         bool
}

// HistoryLog records one entry per submission and updates it in place.
type HistoryLog interface {
	Record(prompt, status string) models.HistoryEntry
	Update(id, status string) bool
}

// Player receives successful tracks.
type Player interface {
	Show(track models.Track) error
	Hide()
}

// Orchestrator sequences backend requests for a single UI.
//
// Begin and Complete are called from the UI loop. Execute only touches the backend client and is safe to run in
// a separate goroutine. Only the latest issued request may change the status line or the player.
type Orchestrator struct {
	mu       sync.Mutex
	client   services.Generator
	history  HistoryLog
	player   Player
	logger   *log.Logger
	seq      uint64
	inFlight int
	status   Status
}

// NewOrchestrator creates an Orchestrator. player may be nil for headless use.
func NewOrchestrator(client services.Generator, history HistoryLog, player Player, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Orchestrator{
		client:  client,
		history: history,
		player:  player,
		logger:  logger,
		status:  Status{ControlEnabled: true},
	}
}

// Begin validates input and records the submission.
//
// The control is disabled, the busy indicator shown, the player cleared, and a history entry prepended with the
// in-progress label.
func (o *Orchestrator) Begin(kind Kind, in Input) (Request, error) {
	prompt := strings.TrimSpace(in.Prompt)
	filename := strings.TrimSpace(in.Filename)

	switch kind {
	case KindGenerate:
		if prompt == "" {
			return Request{}, fmt.Errorf("%w: prompt is required", shared.ErrInvalidInput)
		}
	case KindHarmonize, KindReharmonize:
		if filename == "" {
			return Request{}, fmt.Errorf("%w: nothing to %s", shared.ErrNoTrack, kind)
		}
		if prompt == "" {
			prompt = filename
		}
	default:
		return Request{}, fmt.Errorf("%w: unknown request kind %d", shared.ErrInvalidInput, kind)
	}

	duration := in.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}

	o.mu.Lock()
	o.seq++
	o.inFlight++
	req := Request{Seq: o.seq, Kind: kind, Prompt: prompt, Filename: filename, Duration: duration}
	o.status = Status{Text: kind.pendingStatus(), Busy: true}
	o.mu.Unlock()

	if o.player != nil {
		o.player.Hide()
	}
	if o.history != nil {
		req.HistoryID = o.history.Record(prompt, LabelInProgress).ID
	}

	o.logger.Debug("request issued", "seq", req.Seq, "kind", kind, "duration", duration)
	return req, nil
}

// Execute calls the backend for req.
func (o *Orchestrator) Execute(ctx context.Context, req Request) Result {
	var (
		resp *services.GenerateResponse
		err  error
	)

	o.logger.Debug("sending request", "seq", req.Seq, "path", req.Kind.Path(), "duration", req.Duration)

	switch req.Kind {
	case KindGenerate:
		resp, err = o.client.Generate(ctx, req.Prompt, req.Duration)
	case KindHarmonize:
		resp, err = o.client.Harmonize(ctx, req.Filename, req.Duration)
	case KindReharmonize:
		resp, err = o.client.Reharmonize(ctx, req.Filename, req.Duration)
	default:
		err = fmt.Errorf("%w: unknown request kind %d", shared.ErrInvalidInput, req.Kind)
	}

	if err != nil {
		return Result{Request: req, Err: err}
	}

	track := resp.Track(req.Prompt)
	return Result{Request: req, Track: &track, Message: resp.Message}
}

// Complete applies a result and reports whether it was the latest request.
//
// The in-flight count is always released and the request's own history entry is always finalized. The status
// line and player change only for the latest request.
func (o *Orchestrator) Complete(res Result) bool {
	req := res.Request

	if o.history != nil && req.HistoryID != "" {
		label := req.Kind.successLabel()
		if res.Err != nil {
			label = LabelFailed
		}
		o.history.Update(req.HistoryID, label)
	}

	o.mu.Lock()
	if o.inFlight > 0 {
		o.inFlight--
	}
	idle := o.inFlight == 0
	o.status.Busy = !idle
	o.status.ControlEnabled = idle
	latest := req.Seq == o.seq
	o.mu.Unlock()

	if !latest {
		o.logger.Debug("dropping stale response", "seq", req.Seq, "kind", req.Kind)
		return false
	}

	if res.Err != nil {
		o.logger.Warn("request failed", "kind", req.Kind, "err", res.Err)
		o.setStatus(failureStatus(res.Err), true)
		return true
	}

	text := req.Kind.successStatus()
	if res.Message != "" {
		text = res.Message
	}

	if o.player != nil && res.Track != nil {
		if err := o.player.Show(*res.Track); err != nil {
			o.logger.Error("failed to load track", "url", res.Track.AudioURL, "err", err)
			o.setStatus(fmt.Sprintf("Error: %v", err), true)
			return true
		}
	}

	o.setStatus(text, false)
	return true
}

// Run executes a request synchronously. It is used by the command line, where there is no UI loop.
func (o *Orchestrator) Run(ctx context.Context, kind Kind, in Input) (Result, error) {
	req, err := o.Begin(kind, in)
	if err != nil {
		return Result{}, err
	}

	res := o.Execute(ctx, req)
	o.Complete(res)
	return res, res.Err
}

// Status returns the current status snapshot.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// InFlight reports how many requests have not completed.
func (o *Orchestrator) InFlight() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// SetStatus replaces the status text, e.g. for playback errors reported by the UI.
func (o *Orchestrator) SetStatus(text string, failed bool) {
	o.setStatus(text, failed)
}

func (o *Orchestrator) setStatus(text string, failed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.Text = text
	o.status.Failed = failed
}

// failureStatus prefers the server supplied message over the generic text.
func failureStatus(err error) string {
	if msg := services.ServerMessage(err); msg != "" {
		return "Error: " + msg
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled."
	}
	return StatusGenericFail
}
