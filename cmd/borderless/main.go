package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/vncsmyrnk/borderless/internal/app"
	"github.com/vncsmyrnk/borderless/internal/config"
	"github.com/vncsmyrnk/borderless/internal/core/domain"
	"github.com/vncsmyrnk/borderless/internal/core/ports"
	"github.com/vncsmyrnk/borderless/internal/polling"
)

const usage = `usage: borderless [flags] <command> [args]

commands:
  profiles          list attendees
  whoami            show who this device is registered as
  register <id>     register this device as attendee <id>
  unregister        forget the registration and the cached vote
  vote <choice>     vote go (1), maybe (2) or home (3)
  status            show the after-party vote
  watch             show the vote status every poll interval
`

var errUsage = errors.New("invalid usage")

func main() {
	cfg, args, err := config.Load("borderless", os.Args[1:])
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	logger, err := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(2)
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = execute(ctx, a, cfg.PollInterval, args, os.Stdout)
	stop()
	a.Close()

	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func execute(ctx context.Context, a *app.App, interval time.Duration, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "profiles":
		return listProfiles(ctx, a, out)
	case "whoami":
		return whoami(a, out)
	case "register":
		if len(rest) != 1 {
			return errUsage
		}
		id, err := domain.ParseMemberID(rest[0])
		if err != nil {
			return err
		}
		a.Identity.RegisterAsMe(id)
		return whoami(a, out)
	case "unregister":
		a.Identity.Unregister()
		return whoami(a, out)
	case "vote":
		if len(rest) != 1 {
			return errUsage
		}
		return vote(ctx, a, rest[0], out)
	case "status":
		a.Summary.RefreshStatus(ctx)
		return printSnapshot(out, a.Session.Snapshot())
	case "watch":
		return watch(ctx, a, interval, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func listProfiles(ctx context.Context, a *app.App, out io.Writer) error {
	profiles, errMsg := a.Profiles.List(ctx)
	if errMsg != "" {
		fmt.Fprintf(out, "showing demo profiles: %s\n", errMsg)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROLE\t")
	for _, p := range profiles {
		mark := ""
		if a.Identity.IsMe(p.ID) {
			mark = "(you)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Role, mark)
	}
	return tw.Flush()
}

func whoami(a *app.App, out io.Writer) error {
	id, ok := a.Identity.CurrentSelfID().Get()
	if !ok {
		_, err := fmt.Fprintln(out, "not registered")
		return err
	}
	_, err := fmt.Fprintf(out, "registered as %d (last vote: %s)\n", id, a.Identity.CachedVote())
	return err
}

func vote(ctx context.Context, a *app.App, raw string, out io.Writer) error {
	choice, err := domain.ParseChoice(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return err
	}

	selfID := a.Identity.CurrentSelfID()
	if !selfID.Present() {
		return domain.ErrNotRegistered
	}

	if !a.Session.SubmitVote(ctx, selfID, choice) {
		snap := a.Session.Snapshot()
		return fmt.Errorf("failed to submit vote: %s", snap.LastError)
	}
	return printSnapshot(out, a.Session.Snapshot())
}

func watch(ctx context.Context, a *app.App, interval time.Duration, out io.Writer) error {
	var mu sync.Mutex
	driver := polling.New(func(ctx context.Context) {
		a.Summary.RefreshStatus(ctx)
		mu.Lock()
		defer mu.Unlock()
		_ = printSnapshot(out, a.Session.Snapshot())
	}, interval)

	driver.Trigger()
	<-ctx.Done()
	driver.Close()
	return nil
}

func printSnapshot(out io.Writer, snap ports.VoteSnapshot) error {
	if snap.LastError != "" {
		fmt.Fprintf(out, "warning: %s (showing demo data)\n", snap.LastError)
	}
	s := snap.Status
	if s == nil {
		_, err := fmt.Fprintln(out, "no vote status yet")
		return err
	}

	fmt.Fprintf(out, "survival rate %d%% (%d of %d voted)\n", s.SurvivalRate, s.TotalVoted, s.TotalMembers)
	fmt.Fprintf(out, "going %d / undecided %d / leaving %d\n", s.GoCount, s.MaybeCount, s.HomeCount)
	fmt.Fprintf(out, "your vote: %s\n", s.MyStatus)
	// Member lists depend on the viewer's own choice.
	if mine, ok := s.MyStatus.Get(); ok && mine != domain.ChoiceLeaving {
		fmt.Fprintf(out, "going: %s\n", memberNames(s.GoMembers))
		fmt.Fprintf(out, "undecided: %s\n", memberNames(s.MaybeMembers))
	}
	return nil
}

func memberNames(members []domain.VoteMember) string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
