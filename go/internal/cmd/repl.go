package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/touchlineapp/touchline/go/internal/models"
	"github.com/touchlineapp/touchline/go/internal/session"
	"github.com/touchlineapp/touchline/go/internal/visibility"
)

// runREPL drives the session from a line console. It stands in for the
// touchline UI: every command maps onto the same orchestrator calls the
// real controls make.
func runREPL(ctx context.Context, a *app) {
	fmt.Println("touchline console. Type 'help' for commands.")

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := a.handleCommand(ctx, strings.TrimSpace(line)); quit {
				return
			}
		}
	}
}

func (a *app) handleCommand(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		printHelp()
	case "status":
		a.printStatus()
	case "start", "pause":
		a.orch.StartPause()
	case "goal":
		ev := models.GameEvent{
			ID:          uuid.NewString(),
			Type:        models.EventGoal,
			TimeSeconds: a.orch.PreciseElapsed(),
		}
		if len(args) > 0 {
			ev.ScorerID = args[0]
		}
		if len(args) > 1 {
			ev.AssisterID = args[1]
		}
		a.orch.Dispatch(session.AddGameEvent{Event: ev})
	case "opp":
		a.orch.Dispatch(session.AddGameEvent{Event: models.GameEvent{
			ID:          uuid.NewString(),
			Type:        models.EventOpponentGoal,
			TimeSeconds: a.orch.PreciseElapsed(),
		}})
	case "sub":
		a.orch.AckSubstitution()
	case "interval":
		if len(args) != 1 {
			fmt.Println("usage: interval <minutes>")
			break
		}
		minutes, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Println("usage: interval <minutes>")
			break
		}
		a.orch.SetSubInterval(minutes)
	case "opponent":
		a.orch.Dispatch(session.SetOpponentName{Name: strings.Join(args, " ")})
	case "team":
		a.orch.Dispatch(session.SetTeamName{Name: strings.Join(args, " ")})
	case "note":
		a.orch.Dispatch(session.SetGameNotes{Notes: strings.Join(args, " ")})
	case "undo":
		if !a.orch.Undo() {
			fmt.Println("nothing to undo")
		}
	case "redo":
		if !a.orch.Redo() {
			fmt.Println("nothing to redo")
		}
	case "reset":
		a.orch.Reset()
	case "new":
		if err := a.orch.NewGame(ctx); err != nil {
			fmt.Println("error:", err)
		}
	case "load":
		if len(args) != 1 {
			fmt.Println("usage: load <game-id>")
			break
		}
		if err := a.orch.LoadGame(ctx, args[0]); err != nil {
			fmt.Println("error:", err)
		}
	case "players":
		roster, err := a.roster.List(ctx)
		if err != nil {
			fmt.Println("error:", err)
			break
		}
		for _, p := range roster.Players {
			marker := " "
			if p.IsGoalie {
				marker = "G"
			}
			fmt.Printf("  #%-2d %s %s  (%s)\n", p.JerseyNumber, marker, p.Name, p.ID)
		}
		for _, m := range roster.Personnel {
			fmt.Printf("  staff %s, %s  (%s)\n", m.Name, m.Role, m.ID)
		}
	case "player":
		if len(args) < 2 || args[0] != "add" {
			fmt.Println("usage: player add <name> [jersey]")
			break
		}
		name := args[1]
		jersey := 0
		if len(args) > 2 {
			if n, err := strconv.Atoi(args[2]); err == nil {
				jersey = n
			}
		}
		p, err := a.roster.AddPlayer(ctx, name, jersey)
		if err != nil {
			fmt.Println("error:", err)
			break
		}
		fmt.Println("added", p.ID)
	case "select":
		valid, unknown, err := a.roster.ValidateSelection(ctx, args)
		if err != nil {
			fmt.Println("error:", err)
			break
		}
		if len(unknown) > 0 {
			fmt.Println("not on roster:", strings.Join(unknown, " "))
		}
		a.orch.Dispatch(session.SetSelectedPlayers{PlayerIDs: valid})
	case "autosave":
		if len(args) == 1 {
			a.autoSaveOn.Store(args[0] == "on")
		}
		fmt.Println("autosave:", onOff(a.autoSaveOn.Load()))
	case "hide":
		a.bus.Publish(visibility.Hidden)
	case "show":
		a.bus.Publish(visibility.Visible)
	case "quit", "exit":
		return true
	default:
		fmt.Println("unknown command:", cmd)
	}
	return false
}

func (a *app) printStatus() {
	s := a.orch.State()
	if s == nil {
		fmt.Println("no game loaded")
		return
	}

	home, away := s.TeamName, s.OpponentName
	if home == "" {
		home = "Home"
	}
	if away == "" {
		away = "Opponent"
	}
	if s.HomeOrAway == models.TeamAway {
		home, away = away, home
	}

	fmt.Printf("%s %d - %d %s\n", home, s.HomeScore, s.AwayScore, away)
	fmt.Printf("game %s  period %d/%d  %s  %s\n",
		s.ID, s.CurrentPeriod, s.NumPeriods, s.GameStatus, clockText(a.orch.PreciseElapsed()))
	if s.IsTimerRunning {
		fmt.Printf("next sub due at %s (alert: %s)\n",
			clockText(s.NextSubDueTimeSeconds), s.SubAlertLevel)
	}
	for i := len(s.GameEvents) - 1; i >= 0 && i >= len(s.GameEvents)-5; i-- {
		ev := s.GameEvents[i]
		fmt.Printf("  %s %s %s\n", clockText(ev.TimeSeconds), ev.Type, ev.ScorerID)
	}
}

func clockText(seconds float64) string {
	whole := int(seconds)
	return fmt.Sprintf("%02d:%02d", whole/60, whole%60)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printHelp() {
	fmt.Print(`commands:
  start | pause        toggle the match clock
  goal [scorer] [assister]
  opp                  opponent goal
  sub                  confirm substitution
  interval <minutes>   set substitution cadence
  team <name>          set team name
  opponent <name>      set opponent name
  note <text>          set game notes
  players              list the roster
  player add <name> [jersey]
  select <id> ...      set the match-day selection
  undo | redo          match history
  reset                reset match data
  new                  start a new game
  load <game-id>       load a saved game
  autosave [on|off]    toggle auto-save
  hide | show          simulate the app going to background
  status               show score, clock and recent events
  quit
`)
}
