package keystate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/gstin-gateway/internal/application"
)

type RenderOptions struct {
	// Cooldown is the configured cooldown length; it scales the remaining-time bar.
	Cooldown time.Duration
}

func renderKeyStates(report application.KeyStateReport, opts RenderOptions, s styles) string {
	cooling := 0
	for _, key := range report.Keys {
		if key.Cooled {
			cooling++
		}
	}

	lines := []string{
		s.title.Render("Provider credentials"),
		s.header.Render(fmt.Sprintf("keys: %d  fresh: %d  cooling: %d", len(report.Keys), len(report.Keys)-cooling, cooling)),
	}

	if len(report.Keys) == 0 {
		lines = append(lines, s.empty.Render("No credentials configured."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, key := range report.Keys {
		lines = append(lines, s.section.Render(renderKey(key, report.Now, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderKey(key application.KeyState, now time.Time, opts RenderOptions, s styles) string {
	title := key.Prefix
	if key.Label != "" {
		title = fmt.Sprintf("%s (%s)", key.Label, key.Prefix)
	}

	state := s.fresh.Render("fresh")
	if key.Cooled {
		remaining := key.CooldownUntil.Sub(now)
		state = lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.cooling.Render("cooling"),
			" ",
			renderCooldownBar(remaining, opts.Cooldown, 20, s),
			" ",
			s.detail.Render(fmt.Sprintf("%s left (until %s)", formatRemaining(remaining), key.CooldownUntil.Format("15:04:05"))),
		)
	}

	parts := []string{s.key.Render(title), state}
	if key.LastError != nil {
		parts = append(parts, s.detail.Render("last error: "+*key.LastError))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderCooldownBar(remaining, total time.Duration, width int, s styles) string {
	if width <= 0 || total <= 0 {
		return ""
	}

	fraction := remaining.Seconds() / total.Seconds()
	filled := int(math.Round(float64(width) * fraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(math.Ceil(d.Seconds())))
	}
	return d.Round(time.Second).String()
}

func renderVerification(verification application.Verification, s styles) string {
	result := verification.Result

	source := string(verification.Source)
	if verification.Credential != nil {
		source = fmt.Sprintf("%s via %s", source, verification.Credential.Prefix())
	}

	status := s.detail.Render(result.Status)
	switch result.Status {
	case "Active":
		status = s.fresh.Render(result.Status)
	case "Inactive", "Cancelled", "Suspended":
		status = s.cooling.Render(result.Status)
	}

	rows := []string{
		field(s, "Legal name", optional(result.LegalName)),
		field(s, "Trade name", optional(result.TradeName)),
		lipgloss.JoinHorizontal(lipgloss.Top, s.fieldName.Render("Status"), status),
		field(s, "Registered on", optional(result.RegistrationDate)),
		field(s, "Address", optional(result.Address)),
		field(s, "Business type", optional(result.BusinessType)),
		field(s, "Taxpayer type", optional(result.TaxpayerType)),
	}

	lines := []string{
		s.title.Render("GSTIN " + result.GSTIN),
		s.header.Render("source: " + source),
		s.section.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func field(s styles, name, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.fieldName.Render(name), s.detail.Render(value))
}

func optional(value *string) string {
	if value == nil || *value == "" {
		return "n/a"
	}
	return *value
}
