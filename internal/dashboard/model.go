package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/navisouza/delivery-api/internal/domain"
	"github.com/navisouza/delivery-api/internal/syncclient"
)

// Options configures the dashboard.
type Options struct {
	StoreID   string
	StoreName string
	// RefreshInterval re-issues a Refresh periodically; 0 disables it.
	RefreshInterval time.Duration
	// RequestTimeout bounds every store call.
	RequestTimeout time.Duration
	Now            func() time.Time
}

type section int

const (
	sectionActive section = iota
	sectionClosed
)

// syncedMsg reports the completion of a store call.
type syncedMsg struct {
	op      string
	orderID string
	err     error
}

type tickMsg time.Time

// Model is the bubbletea model of the order board.
type Model struct {
	store  syncclient.OrderStore
	opts   Options
	logger *slog.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	state   syncclient.State
	active  []domain.Order
	closed  []domain.Order
	section section
	cursor  [2]int

	// pendingDelete holds the order id awaiting delete confirmation.
	pendingDelete string
	form          *orderForm
	notice        string

	width  int
	height int
}

// New creates the dashboard model on top of store.
func New(store syncclient.OrderStore, opts Options, logger *slog.Logger) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	return Model{
		store:   store,
		opts:    opts,
		logger:  logger,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(brandStyle)),
	}
}

// Init activates the store and starts the spinner and the refresh ticker.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.call("activate", "", m.store.Activate)}
	if tick := m.tick(); tick != nil {
		cmds = append(cmds, tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) tick() tea.Cmd {
	if m.opts.RefreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.opts.RefreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// call runs fn against the store off the UI goroutine.
func (m Model) call(op, orderID string, fn func(ctx context.Context) error) tea.Cmd {
	timeout := m.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return syncedMsg{op: op, orderID: orderID, err: fn(ctx)}
	}
}

// Update handles a message and returns the next model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.sync()
		return m, cmd

	case tickMsg:
		return m, tea.Batch(m.call("refresh", "", m.store.Refresh), m.tick())

	case syncedMsg:
		m.sync()
		if msg.err == nil {
			m.notice = noticeFor(msg.op)
		} else {
			m.notice = ""
			m.logger.Debug("store call failed",
				slog.String("op", msg.op),
				slog.String("order_id", msg.orderID),
				slog.String("error", msg.err.Error()),
			)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.pendingDelete != "" {
			return m.updateConfirm(msg)
		}
		return m.updateBoard(msg)
	}
	return m, nil
}

func noticeFor(op string) string {
	switch op {
	case "advance":
		return "status updated"
	case "cancel":
		return "order canceled"
	case "delete":
		return "order deleted"
	case "create":
		return "order created"
	default:
		return ""
	}
}

// sync copies the store state into the model and keeps the cursors in range.
func (m *Model) sync() {
	m.state = m.store.Snapshot()
	m.active, m.closed = Partition(m.state.Orders)
	m.cursor[sectionActive] = clamp(m.cursor[sectionActive], len(m.active))
	m.cursor[sectionClosed] = clamp(m.cursor[sectionClosed], len(m.closed))
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m Model) orders(s section) []domain.Order {
	if s == sectionClosed {
		return m.closed
	}
	return m.active
}

// selected returns the order under the cursor.
func (m Model) selected() (domain.Order, bool) {
	orders := m.orders(m.section)
	i := m.cursor[m.section]
	if i < 0 || i >= len(orders) {
		return domain.Order{}, false
	}
	return orders[i], true
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor[m.section] = clamp(m.cursor[m.section]-1, len(m.orders(m.section)))
	case key.Matches(msg, m.keys.Down):
		m.cursor[m.section] = clamp(m.cursor[m.section]+1, len(m.orders(m.section)))
	case key.Matches(msg, m.keys.Switch):
		m.section = 1 - m.section
	case key.Matches(msg, m.keys.Refresh):
		return m, m.call("refresh", "", m.store.Refresh)
	case key.Matches(msg, m.keys.Dismiss):
		m.store.ClearError()
		m.sync()
	case key.Matches(msg, m.keys.NewOrder):
		m.form = newOrderForm()
		m.notice = ""
		return m, m.form.input(m.form.focus).Focus()
	case key.Matches(msg, m.keys.Advance):
		return m.runAction(ActionAdvance)
	case key.Matches(msg, m.keys.Cancel):
		return m.runAction(ActionCancel)
	case key.Matches(msg, m.keys.Delete):
		return m.runAction(ActionDelete)
	}
	return m, nil
}

// runAction performs the action of kind on the selected order when the card
// offers it. Actions that need confirmation only open the prompt.
func (m Model) runAction(kind ActionKind) (tea.Model, tea.Cmd) {
	order, ok := m.selected()
	if !ok {
		return m, nil
	}
	action, ok := findAction(ActionsFor(order), kind)
	if !ok {
		return m, nil
	}

	id := order.OrderID
	switch {
	case action.Confirm:
		m.pendingDelete = id
		return m, nil
	case kind == ActionCancel:
		return m, m.call("cancel", id, func(ctx context.Context) error {
			return m.store.AdvanceStatus(ctx, id, action.Target)
		})
	default:
		return m, m.call("advance", id, func(ctx context.Context) error {
			return m.store.AdvanceStatus(ctx, id, action.Target)
		})
	}
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.pendingDelete
		m.pendingDelete = ""
		return m, m.call("delete", id, func(ctx context.Context) error {
			return m.store.Delete(ctx, id)
		})
	case key.Matches(msg, m.keys.Abort):
		m.pendingDelete = ""
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, action := m.form.update(msg)
	switch action {
	case formClose:
		m.form = nil
		return m, nil
	case formSubmit:
		order, err := m.form.build(m.opts.StoreID, m.opts.StoreName, m.opts.Now())
		if err != nil {
			return m, nil
		}
		m.form = nil
		return m, m.call("create", order.OrderID, func(ctx context.Context) error {
			return m.store.Create(ctx, order)
		})
	}
	return m, cmd
}
