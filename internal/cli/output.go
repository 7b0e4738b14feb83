package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cityhunt/cityhunt/internal/client"
	"github.com/cityhunt/cityhunt/internal/model"
	"github.com/cityhunt/cityhunt/internal/session"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case session.Snapshot:
		o.printSnapshot(v)
	case *client.CurrentStepResponse:
		o.printCurrentStep(v)
	case *client.RevealResponse:
		fmt.Fprintln(o.w, v.Message)
	case *client.ScanResponse:
		o.printScanResult(v)
	case *client.ProgressResponse:
		o.printProgress(v)
	case *client.UsersResponse:
		o.printUsers(v)
	case *client.StatsResponse:
		o.printStats(v)
	case *client.EventsResponse:
		o.printEvents(v)
	case *client.AckResponse:
		fmt.Fprintln(o.w, v.Message)
	case *client.StepResponse:
		o.printStep(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printSnapshot(s session.Snapshot) {
	switch s.Role {
	case model.RolePlayer:
		fmt.Fprintf(o.w, "Logged in as player %s\n", s.Player.Contact())
		fmt.Fprintf(o.w, "Current step: %d\n", s.Player.CurrentStep)
	case model.RoleAdmin:
		fmt.Fprintf(o.w, "Logged in as admin %s\n", s.Admin.Username)
	default:
		fmt.Fprintln(o.w, "Not logged in")
	}
}

func (o *Output) printCurrentStep(resp *client.CurrentStepResponse) {
	if resp.Completed {
		fmt.Fprintln(o.w, "Hunt complete! Congratulations!")
		return
	}

	fmt.Fprintf(o.w, "Step %d of %d: %s\n", resp.Step.ID, resp.Progress.Total, resp.Step.Name)
	fmt.Fprintf(o.w, "Clue: %s\n", resp.Step.Clue)
	o.printProgressBar(len(resp.Progress.CompletedSteps), resp.Progress.Total)
}

func (o *Output) printScanResult(resp *client.ScanResponse) {
	fmt.Fprintln(o.w, resp.Message)
	if resp.CompletedHunt {
		fmt.Fprintln(o.w, "Hunt complete! Congratulations!")
		return
	}
	if resp.NextStep != nil {
		fmt.Fprintf(o.w, "Next clue: %s\n", resp.NextStep.Clue)
	}
}

func (o *Output) printProgress(resp *client.ProgressResponse) {
	o.printProgressBar(resp.CompletedCount, resp.TotalSteps)
	for _, step := range resp.Steps {
		marker := " "
		switch {
		case step.Completed:
			marker = "x"
		case step.Current:
			marker = ">"
		}
		line := fmt.Sprintf("[%s] %2d. %s", marker, step.ID, step.Name)
		if step.Revealed {
			line += " (revealed)"
		}
		fmt.Fprintln(o.w, line)
	}
	if resp.CompletedHunt {
		fmt.Fprintln(o.w, "Hunt complete!")
	}
}

func (o *Output) printProgressBar(completed, total int) {
	filled := 0
	if total > 0 {
		filled = completed * 20 / total
	}
	bar := strings.Repeat("#", filled) + strings.Repeat("-", 20-filled)
	fmt.Fprintf(o.w, "Progress: [%s] %d/%d\n", bar, completed, total)
}

func (o *Output) printUsers(resp *client.UsersResponse) {
	fmt.Fprintf(o.w, "Players (%d):\n", len(resp.Users))
	for _, u := range resp.Users {
		fmt.Fprintf(o.w, "  %s  step %d  %d/%d completed  (%s)\n",
			u.Contact(), u.CurrentStep, u.CompletedCount, model.TotalSteps, u.ID)
	}
}

func (o *Output) printStats(resp *client.StatsResponse) {
	fmt.Fprintf(o.w, "Players: %d\n", resp.TotalUsers)
	fmt.Fprintf(o.w, "Scans: %d (%d successful)\n", resp.TotalScans, resp.SuccessfulScans)
	fmt.Fprintf(o.w, "Finished: %d (%.0f%%)\n", resp.CompletedUsers, resp.CompletionRate)
	fmt.Fprintln(o.w, "Steps:")
	for _, s := range resp.StepStats {
		fmt.Fprintf(o.w, "  %2d. %-30s %d completed, %d revealed\n",
			s.StepID, s.StepName, s.CompletedCount, s.RevealedCount)
	}
}

func (o *Output) printEvents(resp *client.EventsResponse) {
	fmt.Fprintf(o.w, "Events (%d):\n", len(resp.Events))
	for _, ev := range resp.Events {
		result := "FAIL"
		if ev.Success {
			result = "OK"
		}
		who := ev.UserEmail
		if who == "" {
			who = ev.UserPhone
		}
		fmt.Fprintf(o.w, "  %s  %-4s step %2d  %s  %s\n",
			ev.ScannedAt, result, ev.StepID, ev.StepName, who)
	}
}

func (o *Output) printStep(resp *client.StepResponse) {
	fmt.Fprintln(o.w, resp.Message)
	fmt.Fprintf(o.w, "Step %d: %s\n", resp.Step.ID, resp.Step.Name)
	if resp.Step.QRValue != "" {
		fmt.Fprintf(o.w, "QR value: %s\n", resp.Step.QRValue)
	}
	if resp.Step.QRCodeURL != "" {
		fmt.Fprintf(o.w, "QR poster: %s\n", resp.Step.QRCodeURL)
	}
}
