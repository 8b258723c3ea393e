package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jason-s-yu/blackjack/internal/authority"
	"github.com/jason-s-yu/blackjack/internal/models"
	"github.com/jason-s-yu/blackjack/internal/session"
	"github.com/pterm/pterm"
)

func handString(h models.Hand) string {
	cards := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		cards[i] = c.String()
	}
	return strings.Join(cards, " ")
}

func roundPanel(r *models.Round) string {
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)
	body := pterm.Sprintfln("Dealer: %s  (%d)", handString(r.DealerHand), r.DealerHand.Score)
	body += pterm.Sprintfln("You:    %s  (%d)", pterm.BgGreen.Sprint(handString(r.PlayerHand)), r.PlayerHand.Score)
	body += pterm.Sprintfln("Bet: %d", r.Bet)
	if r.State == models.Finished {
		body += pterm.Sprintfln("%s  payout %s", resultLabel(r.Result), formatPayout(r.Payout))
		if r.ResultMessage != "" {
			body += pterm.Sprintfln("%s", r.ResultMessage)
		}
	}
	return pbox.WithTitle(pterm.LightYellow("|ROUND|")).WithTitleTopCenter().Sprint(body)
}

func resultLabel(r models.Result) string {
	switch r {
	case models.PlayerWin:
		return pterm.LightGreen("You win")
	case models.DealerWin:
		return pterm.LightRed("Dealer wins")
	case models.Push:
		return pterm.LightYellow("Push")
	case models.Surrender:
		return pterm.LightMagenta("Surrendered")
	default:
		return string(r)
	}
}

func formatPayout(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// advicePanel lists the expected payouts and highlights the best action.
func advicePanel(a *models.Advice, fresh, canSurrender bool, bet int) string {
	best := a.Best(canSurrender)
	rows := [][]string{{"Action", "Expected payout"}}
	add := func(action models.Action, label string, v float64) {
		value := fmt.Sprintf("%.2f", v)
		if action == best {
			label, value = pterm.LightGreen(label), pterm.LightGreen(value)
		}
		rows = append(rows, []string{label, value})
	}
	add(models.ActionHit, "Hit", a.HitPayout)
	add(models.ActionStand, "Stand", a.StandPayout)
	if canSurrender {
		add(models.ActionSurrender, "Surrender", a.SurrenderPayout)
	}
	table, _ := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()

	title := fmt.Sprintf("|ADVICE (bet %d)|", bet)
	if !fresh {
		title += " updating..."
	}
	pbox := pterm.DefaultBox.WithLeftPadding(2).WithRightPadding(2)
	return pbox.WithTitle(pterm.LightCyan(title)).WithTitleTopCenter().Sprint(table)
}

func printState(snap session.Snapshot, advice *models.Advice, fresh bool, threshold int) {
	pterm.Println()
	pterm.Info.Printfln("Balance: %s   Dealer stands on %d", snap.Balance.String(), threshold)
	if snap.Round == nil {
		return
	}
	panels := []pterm.Panel{{Data: roundPanel(snap.Round)}}
	if advice != nil {
		panels = append(panels, pterm.Panel{Data: advicePanel(advice, fresh, snap.CanSurrender, snap.Round.Bet)})
	}
	pterm.DefaultPanel.WithPanels([][]pterm.Panel{panels}).Render()
}

// describeError turns a session error into a message for the player.
func describeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, authority.ErrConfigurationMissing):
		return "The API URL is not configured (set BLACKJACK_API_URL)."
	case errors.Is(err, authority.ErrConnectivity):
		return "No response from the server. It may be waking up; try again in a moment."
	case errors.Is(err, session.ErrStateConflict):
		return "Finish the current round before starting a new one."
	case errors.Is(err, session.ErrBusy):
		return "Still waiting for the previous action."
	case errors.Is(err, session.ErrPreconditionFailed):
		return "Not allowed: " + strings.TrimPrefix(err.Error(), session.ErrPreconditionFailed.Error()+": ")
	default:
		return err.Error()
	}
}
