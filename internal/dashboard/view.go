package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/navisouza/delivery-api/internal/domain"
)

const wideLayout = 110

var fieldLabelStyle = lipgloss.NewStyle().Width(18)

// View renders the board, or the creation form when it is open.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")

	if m.state.Err != "" {
		b.WriteString(errorStyle.Render("⚠ " + m.state.Err + "  (x to dismiss)"))
		b.WriteString("\n")
	}

	if m.form != nil {
		b.WriteString(m.form.view())
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView(m.form.keys.help()))
		return b.String()
	}

	if m.pendingDelete != "" {
		b.WriteString(m.confirmView())
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView(m.keys.confirmHelp()))
		return b.String()
	}

	b.WriteString(m.boardView())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.boardHelp()))
	return b.String()
}

func (m Model) headerView() string {
	title := brandStyle.Render("COCO BAMBU") + " " + subtleStyle.Render("DELIVERY")
	if m.opts.StoreName != "" {
		title += subtleStyle.Render("  ·  " + m.opts.StoreName)
	}
	if m.state.Loading {
		title += "  " + m.spinner.View() + subtleStyle.Render(" loading orders...")
	}
	return title
}

func (m Model) boardView() string {
	active := m.sectionView("In progress", sectionActive)
	closed := m.sectionView("Closed", sectionClosed)
	if m.width >= wideLayout {
		half := m.width / 2
		return lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(half).Render(active),
			lipgloss.NewStyle().Width(half).Render(closed),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, active, closed)
}

func (m Model) sectionView(title string, s section) string {
	orders := m.orders(s)
	heading := fmt.Sprintf("%s (%d)", strings.ToUpper(title), len(orders))
	if s == m.section {
		heading = "▸ " + heading
	}

	parts := []string{sectionStyle.Render(heading)}
	if len(orders) == 0 {
		parts = append(parts, subtleStyle.Render("no orders"))
	}
	for i, o := range orders {
		parts = append(parts, cardView(o, s == m.section && i == m.cursor[s]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func money(v float64) string {
	return "R$ " + decimal.NewFromFloat(v).StringFixed(2)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// cardView renders one order with its available actions.
func cardView(o domain.Order, selected bool) string {
	d := o.Order
	var lines []string

	head := lipgloss.NewStyle().Bold(true).Render(d.Customer.Name) + "  " + statusBadge(o.Status())
	lines = append(lines, head)

	sub := "#" + shortID(o.OrderID)
	if d.Store != nil && d.Store.Name != "" {
		sub += " · " + d.Store.Name
	}
	if d.Customer.TemporaryPhone != "" {
		sub += " · " + d.Customer.TemporaryPhone
	}
	lines = append(lines, subtleStyle.Render(sub))

	for _, it := range d.Items {
		line := fmt.Sprintf("%dx %s  %s", it.Quantity, it.Name, money(it.LineTotal()))
		if it.Observations != "" {
			line += subtleStyle.Render("  (" + it.Observations + ")")
		}
		lines = append(lines, line)
	}

	if a := d.DeliveryAddress; a != nil {
		addr := fmt.Sprintf("%s, %s - %s", a.StreetName, a.StreetNumber, a.Neighborhood)
		if a.Reference != "" {
			addr += " (" + a.Reference + ")"
		}
		lines = append(lines, labelStyle.Render("Deliver to: ")+addr)
	}

	pay := labelStyle.Render("Total: ") + money(d.TotalPrice)
	if p := d.Payment(); p != nil {
		settle := "collect on delivery"
		if p.Prepaid {
			settle = "prepaid"
		}
		pay += "  " + subtleStyle.Render(p.Origin.Label()+", "+settle)
	}
	lines = append(lines, pay)

	if selected {
		var hints []string
		for _, a := range ActionsFor(o) {
			hints = append(hints, fmt.Sprintf("[%s] %s", actionKey(a.Kind), a.Label))
		}
		if len(hints) > 0 {
			lines = append(lines, focusStyle.Render(strings.Join(hints, "  ")))
		}
	}

	style := cardStyle
	if selected {
		style = selectedStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func actionKey(k ActionKind) string {
	switch k {
	case ActionAdvance:
		return "enter"
	case ActionCancel:
		return "c"
	default:
		return "d"
	}
}

func (m Model) confirmView() string {
	name := m.pendingDelete
	for _, o := range m.state.Orders {
		if o.OrderID == m.pendingDelete {
			name = o.Order.Customer.Name
			break
		}
	}
	return confirmStyle.Render(fmt.Sprintf(
		"Delete the order of %s?\nThis cannot be undone. Press y to delete, n to keep it.", name))
}

func (f *orderForm) view() string {
	var lines []string
	lines = append(lines, sectionStyle.Render("NEW DELIVERY ORDER"))

	label := func(i int, text string) string {
		if f.focus == i {
			return focusStyle.Render("› " + text)
		}
		return labelStyle.Render("  " + text)
	}

	lines = append(lines, brandStyle.Render("Customer"))
	for i := fieldCustomerName; i <= fieldCustomerPhone; i++ {
		lines = append(lines, fieldLabelStyle.Render(label(i, fixedFieldLabels[i]))+" "+f.fixed[i].View())
	}
	lines = append(lines, brandStyle.Render("Address"))
	for i := fieldStreet; i < fixedFieldCount; i++ {
		lines = append(lines, fieldLabelStyle.Render(label(i, fixedFieldLabels[i]))+" "+f.fixed[i].View())
	}

	lines = append(lines, brandStyle.Render("Items"))
	total := decimal.Zero
	for r, row := range f.items {
		base := fixedFieldCount + r*itemFieldCount
		lines = append(lines, fmt.Sprintf("%s %s  %s %s  %s %s",
			label(base+itemName, fmt.Sprintf("#%d", r+1)), row[itemName].View(),
			label(base+itemQuantity, "qty"), row[itemQuantity].View(),
			label(base+itemPrice, "price"), row[itemPrice].View(),
		))
		if in, err := f.newOrderInputItem(r); err == nil {
			total = total.Add(decimal.NewFromFloat(in.Price).Mul(decimal.NewFromInt(int64(in.Quantity))))
		}
	}
	lines = append(lines, labelStyle.Render("Total: ")+"R$ "+total.StringFixed(2))

	lines = append(lines, brandStyle.Render("Payment"))
	lines = append(lines, label(f.paymentFocus(), "Method: ‹ "+f.origins[f.origin].Label()+" ›"))
	prepaid := "[ ]"
	if f.prepaid {
		prepaid = "[x]"
	}
	lines = append(lines, label(f.prepaidFocus(), prepaid+" Prepaid"))

	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}
