// Package flow sequences user intent against the item cache.
//
// The Controller owns every piece of ephemeral interaction state (the new
// item draft, the single in-place edit, the delete confirmation, per-item
// pending deletes and the transient status message) as one small state
// machine per slot. Actions return Bubble Tea commands; the messages those
// commands produce must be fed back through Update on the same goroutine
// that performs the actions.
package flow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/itemdesk/internal/api"
	"github.com/idilsaglam/itemdesk/internal/cache"
	"github.com/idilsaglam/itemdesk/internal/model"
)

// DefaultMessageTTL is how long a status message stays visible.
const DefaultMessageTTL = 5 * time.Second

// Collection is the cache the controller drives. *cache.Store satisfies it.
type Collection interface {
	Snapshot() cache.Snapshot
	Find(id int) (model.Item, bool)
	Refresh(ctx context.Context) error
	Create(ctx context.Context, d model.Draft) (model.Item, error)
	Update(ctx context.Context, id int, d model.Draft) (model.Item, error)
	Delete(ctx context.Context, id int) (api.DeleteResult, error)
}

// HealthChecker backs the diagnostic action. *api.Client satisfies it.
type HealthChecker interface {
	Health(ctx context.Context) (api.Health, error)
}

// CreateState is the creation slot's state.
type CreateState int

const (
	CreateIdle CreateState = iota
	CreateSubmitting
)

// CreateSlot is the new-item form.
type CreateSlot struct {
	State CreateState
	Draft model.Draft
}

// EditState is the edit slot's state.
type EditState int

const (
	EditNone EditState = iota
	EditEditing
	EditSaving
)

// EditSlot is the single in-place edit. ItemID and Draft are meaningful
// only when State != EditNone.
type EditSlot struct {
	State  EditState
	ItemID int
	Draft  model.Draft
}

// DeleteState is the delete slot's state.
type DeleteState int

const (
	DeleteNone DeleteState = iota
	DeleteConfirm
)

// DeleteSlot holds the item awaiting confirmation. Confirmed deletes leave
// the slot and are tracked as pending operations until they resolve.
type DeleteSlot struct {
	State  DeleteState
	Target model.Item
}

type status struct {
	msg model.Message
	err error
}

// Controller is not safe for concurrent use; see the package comment.
type Controller struct {
	items  Collection
	health HealthChecker
	log    *slog.Logger
	ctx    context.Context
	ttl    time.Duration

	create  CreateSlot
	edit    EditSlot
	del     DeleteSlot
	pending map[int]model.Item
	status  *status
	expiry  Schedule
}

// Option configures a Controller.
type Option func(*Controller)

// WithHealth enables CheckHealth.
func WithHealth(h HealthChecker) Option { return func(c *Controller) { c.health = h } }

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.log = l } }

// WithMessageTTL overrides DefaultMessageTTL.
func WithMessageTTL(d time.Duration) Option { return func(c *Controller) { c.ttl = d } }

// WithTick replaces tea.Tick for the status expiry.
func WithTick(t TickFunc) Option { return func(c *Controller) { c.expiry = newSchedule(t) } }

// WithContext sets the context transport calls run under.
func WithContext(ctx context.Context) Option { return func(c *Controller) { c.ctx = ctx } }

// New builds a controller over items.
func New(items Collection, opts ...Option) *Controller {
	c := &Controller{
		items:   items,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:     context.Background(),
		ttl:     DefaultMessageTTL,
		pending: map[int]model.Item{},
		expiry:  newSchedule(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type refreshedMsg struct{ err error }

type createdMsg struct {
	item model.Item
	err  error
}

type savedMsg struct {
	id   int
	item model.Item
	err  error
}

type deletedMsg struct {
	target model.Item
	err    error
}

type healthMsg struct {
	health api.Health
	err    error
}

// Init loads the collection.
func (c *Controller) Init() tea.Cmd { return c.Refresh() }

// Close cancels the pending status expiry. Call it on teardown.
func (c *Controller) Close() { c.expiry.Cancel() }

// --- read side --------------------------------------------------------------

// Snapshot is the cache state the view renders.
func (c *Controller) Snapshot() cache.Snapshot { return c.items.Snapshot() }

// CreateSlot returns the creation slot.
func (c *Controller) CreateSlot() CreateSlot { return c.create }

// EditSlot returns the edit slot.
func (c *Controller) EditSlot() EditSlot { return c.edit }

// DeleteSlot returns the delete slot.
func (c *Controller) DeleteSlot() DeleteSlot { return c.del }

// DialogOpen reports whether a delete confirmation is showing.
func (c *Controller) DialogOpen() bool { return c.del.State == DeleteConfirm }

// Pending reports whether item id has a delete in flight.
func (c *Controller) Pending(id int) bool {
	_, ok := c.pending[id]
	return ok
}

// PendingIDs lists items with deletes in flight, ascending.
func (c *Controller) PendingIDs() []int {
	ids := make([]int, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Status returns the visible status message.
func (c *Controller) Status() (model.Message, bool) {
	if c.status == nil {
		return model.Message{}, false
	}
	return c.status.msg, true
}

// StatusErr is the error behind the visible message, nil for successes.
func (c *Controller) StatusErr() error {
	if c.status == nil {
		return nil
	}
	return c.status.err
}

// --- status slot ------------------------------------------------------------

// Notify shows a message, replacing any current one and restarting the
// expiry window.
func (c *Controller) Notify(kind model.MessageKind, text string) tea.Cmd {
	return c.setStatus(kind, text, nil)
}

func (c *Controller) setStatus(kind model.MessageKind, text string, err error) tea.Cmd {
	c.status = &status{msg: model.Message{Kind: kind, Text: text}, err: err}
	return c.expiry.Arm(c.ttl)
}

func (c *Controller) fail(op, base string, err error) tea.Cmd {
	var ve *ValidationError
	if errors.As(err, &ve) {
		c.log.Debug(op+" rejected", "field", ve.Field, "reason", ve.Reason)
		return c.setStatus(model.MessageError, base, err)
	}
	c.log.Error(op, "err", err)
	return c.setStatus(model.MessageError, failure(base, err), err)
}

// --- collection -------------------------------------------------------------

// Refresh reloads the collection from the server.
func (c *Controller) Refresh() tea.Cmd {
	items, ctx := c.items, c.ctx
	return func() tea.Msg {
		return refreshedMsg{err: items.Refresh(ctx)}
	}
}

// --- creation slot ----------------------------------------------------------

// SetCreateDraft records form input. Ignored while submitting.
func (c *Controller) SetCreateDraft(d model.Draft) {
	if c.create.State == CreateSubmitting {
		return
	}
	c.create.Draft = d
}

// SubmitCreate validates the draft and posts it. A blank title is rejected
// locally. Re-entry while a submission is in flight is a no-op.
func (c *Controller) SubmitCreate() tea.Cmd {
	if c.create.State == CreateSubmitting {
		return nil
	}
	if c.create.Draft.Blank() {
		return c.fail("create item", textEnterTitle, ErrEmptyTitle)
	}
	c.create.State = CreateSubmitting
	items, ctx, d := c.items, c.ctx, c.create.Draft
	return func() tea.Msg {
		it, err := items.Create(ctx, d)
		return createdMsg{item: it, err: err}
	}
}

func (c *Controller) onCreated(msg createdMsg) tea.Cmd {
	c.create.State = CreateIdle
	if msg.err != nil {
		return c.fail("create item", textCreateFailed, msg.err)
	}
	c.create.Draft = model.Draft{}
	c.log.Info("item created", "id", msg.item.ID)
	return c.setStatus(model.MessageSuccess, textCreated, nil)
}

// --- edit slot --------------------------------------------------------------

// BeginEdit puts item id into edit mode, discarding any other unsaved edit.
// It refuses while a save is in flight, for unknown items and for items
// with a pending delete.
func (c *Controller) BeginEdit(id int) bool {
	if c.edit.State == EditSaving || c.Pending(id) {
		return false
	}
	it, ok := c.items.Find(id)
	if !ok {
		return false
	}
	if c.edit.State == EditEditing && c.edit.ItemID == id {
		return true
	}
	c.edit = EditSlot{State: EditEditing, ItemID: id, Draft: model.DraftOf(it)}
	return true
}

// SetEditDraft records edit input. Ignored unless editing.
func (c *Controller) SetEditDraft(d model.Draft) {
	if c.edit.State != EditEditing {
		return
	}
	c.edit.Draft = d
}

// CancelEdit discards the edit draft. Ignored while saving.
func (c *Controller) CancelEdit() {
	if c.edit.State == EditSaving {
		return
	}
	c.edit = EditSlot{}
}

// SaveEdit validates and saves the edit draft.
func (c *Controller) SaveEdit() tea.Cmd {
	if c.edit.State != EditEditing {
		return nil
	}
	if c.edit.Draft.Blank() {
		return c.fail("update item", textEnterTitle, ErrEmptyTitle)
	}
	c.edit.State = EditSaving
	items, ctx, id, d := c.items, c.ctx, c.edit.ItemID, c.edit.Draft
	return func() tea.Msg {
		it, err := items.Update(ctx, id, d)
		return savedMsg{id: id, item: it, err: err}
	}
}

func (c *Controller) onSaved(msg savedMsg) tea.Cmd {
	if c.edit.State == EditSaving && c.edit.ItemID == msg.id {
		if msg.err != nil {
			c.edit.State = EditEditing
		} else {
			c.edit = EditSlot{}
		}
	}
	if msg.err != nil {
		return c.fail("update item", textUpdateFailed, msg.err)
	}
	c.log.Info("item updated", "id", msg.id)
	return c.setStatus(model.MessageSuccess, textUpdated, nil)
}

// --- delete slot ------------------------------------------------------------

// RequestDelete opens the confirmation for item id. It refuses when a
// dialog is already open, the item is unknown or already being deleted.
func (c *Controller) RequestDelete(id int) bool {
	if c.del.State != DeleteNone || c.Pending(id) {
		return false
	}
	it, ok := c.items.Find(id)
	if !ok {
		return false
	}
	c.del = DeleteSlot{State: DeleteConfirm, Target: it}
	return true
}

// CancelDelete closes the confirmation without touching the network.
func (c *Controller) CancelDelete() {
	c.del = DeleteSlot{}
}

// ConfirmDelete closes the dialog, marks the target pending and deletes it
// by id even if it has since left the cache.
func (c *Controller) ConfirmDelete() tea.Cmd {
	if c.del.State != DeleteConfirm {
		return nil
	}
	target := c.del.Target
	c.del = DeleteSlot{}
	c.pending[target.ID] = target
	items, ctx := c.items, c.ctx
	return func() tea.Msg {
		_, err := items.Delete(ctx, target.ID)
		return deletedMsg{target: target, err: err}
	}
}

func (c *Controller) onDeleted(msg deletedMsg) tea.Cmd {
	delete(c.pending, msg.target.ID)
	if msg.err != nil {
		return c.fail("delete item", textDeleteFailed, msg.err)
	}
	c.log.Info("item deleted", "id", msg.target.ID)
	return c.setStatus(model.MessageSuccess, fmt.Sprintf(textDeletedFormat, msg.target.Title), nil)
}

// --- health -----------------------------------------------------------------

// CheckHealth calls the backend's diagnostic endpoint.
func (c *Controller) CheckHealth() tea.Cmd {
	if c.health == nil {
		return nil
	}
	h, ctx := c.health, c.ctx
	return func() tea.Msg {
		res, err := h.Health(ctx)
		return healthMsg{health: res, err: err}
	}
}

func (c *Controller) onHealth(msg healthMsg) tea.Cmd {
	if msg.err != nil {
		c.log.Error("health check", "err", msg.err)
		return c.setStatus(model.MessageError, textBackendDown, msg.err)
	}
	return c.setStatus(model.MessageSuccess, fmt.Sprintf(textHealthyFormat, msg.health.Status), nil)
}

// --- message loop -----------------------------------------------------------

// Update applies a message produced by one of the controller's commands.
// It reports false for messages it does not own.
func (c *Controller) Update(msg tea.Msg) (tea.Cmd, bool) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case refreshedMsg:
		if msg.err != nil {
			cmd = c.fail("refresh items", textLoadFailed, msg.err)
		}
	case createdMsg:
		cmd = c.onCreated(msg)
	case savedMsg:
		cmd = c.onSaved(msg)
	case deletedMsg:
		cmd = c.onDeleted(msg)
	case healthMsg:
		cmd = c.onHealth(msg)
	case expiredMsg:
		if c.expiry.fire(msg) {
			c.status = nil
		}
		return nil, true
	default:
		return nil, false
	}
	c.reconcile()
	return cmd, true
}

// reconcile keeps the edit slot pointing at an item the cache still has.
func (c *Controller) reconcile() {
	if c.edit.State != EditEditing {
		return
	}
	if _, ok := c.items.Find(c.edit.ItemID); !ok {
		c.log.Debug("edited item left the collection", "id", c.edit.ItemID)
		c.edit = EditSlot{}
	}
}
