// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command votectl votes and reads results from a quickly-vote server.
//
//	votectl [-server URL] [-session TOKEN] whoami
//	votectl [-server URL] [-session TOKEN] info <election-id>
//	votectl [-server URL] [-session TOKEN] vote <election-id> <candidate-id>
//	votectl [-server URL] [-session TOKEN] results <election-id>
//	votectl [-server URL] [-session TOKEN] my-vote <election-id>
//	votectl [-admin-salt SALT] admin-key <election-id>
//
// admin-key derives the election's admin key locally from ADMIN_KEY_SALT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/client"
	"github.com/danielhkuo/quickly-vote/identity"
)

var errUsage = errors.New("usage: votectl [-server URL] [-session TOKEN] whoami|info|vote|results|my-vote|admin-key ...")

var errNoSalt = errors.New("admin-key needs -admin-salt or ADMIN_KEY_SALT")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("votectl", flag.ContinueOnError)
	server := fs.String("server", envOr("QUICKLY_VOTE_SERVER", "http://localhost:3318"), "Server URL")
	session := fs.String("session", os.Getenv("QUICKLY_VOTE_SESSION"), "Session token (votes as your account)")
	hintPath := fs.String("hints", "", "Local vote hint file (default: user config dir)")
	adminSalt := fs.String("admin-salt", os.Getenv("ADMIN_KEY_SALT"), "Admin key salt (admin-key only)")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}

	if rest[0] == "admin-key" {
		if len(rest) != 2 {
			return errUsage
		}
		if *adminSalt == "" {
			return errNoSalt
		}
		fmt.Fprintln(out, auth.GenerateAdminKey(rest[1], *adminSalt))
		return nil
	}

	resolver := identity.NewResolver(nil, identity.LocalSignals)
	c := client.New(*server, resolver, client.WithSession(*session))

	hints, err := openHints(*hintPath)
	if err != nil {
		return err
	}

	switch cmd := rest[0]; {
	case cmd == "whoami":
		fmt.Fprintf(out, "identity: %s (%s)\n", resolver.Resolve(), resolver.Source())
		return nil
	case cmd == "info" && len(rest) == 2:
		return info(ctx, c, rest[1], out)
	case cmd == "vote" && len(rest) == 3:
		return vote(ctx, c, hints, rest[1], rest[2], out)
	case cmd == "results" && len(rest) == 2:
		return results(ctx, c, rest[1], out)
	case cmd == "my-vote" && len(rest) == 2:
		return myVote(ctx, c, hints, rest[1], out)
	default:
		return errUsage
	}
}

func info(ctx context.Context, c *client.Client, electionID string, out io.Writer) error {
	e, err := c.Election(ctx, electionID)
	if err != nil {
		return err
	}

	status := "closed"
	if e.Open {
		status = "open, closes " + humanize.Time(e.Election.ClosesAt)
	} else if time.Now().Before(e.Election.OpensAt) {
		status = "opens " + humanize.Time(e.Election.OpensAt)
	}
	fmt.Fprintf(out, "%s (%s)\n", e.Election.Name, status)
	for _, cand := range e.Candidates {
		fmt.Fprintf(out, "  %-36s  %s\n", cand.ID, cand.DisplayName)
	}
	return nil
}

func vote(ctx context.Context, c *client.Client, hints client.HintFile, electionID, candidateID string, out io.Writer) error {
	if hint, ok, _ := hints.Get(electionID); ok {
		slog.Debug("local hint found", "election_id", electionID, "candidate_id", hint.CandidateID)
	}

	res, err := c.Vote(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("vote failed: %w", err)
	}

	r := res.Response
	switch {
	case res.Accepted():
		fmt.Fprintf(out, "Voted for %s.\n", r.CandidateName)
	case r.CandidateID != "":
		fmt.Fprintf(out, "You already voted for %s.\n", nameOr(r.CandidateName, r.CandidateID))
	default:
		return fmt.Errorf("vote rejected: %s", r.Message)
	}

	err = hints.Put(client.Hint{
		ElectionID:    electionID,
		CandidateID:   r.CandidateID,
		CandidateName: r.CandidateName,
		VotedAt:       time.Now(),
	})
	if err != nil {
		slog.Warn("failed to save vote hint", "error", err)
	}
	return nil
}

func results(ctx context.Context, c *client.Client, electionID string, out io.Writer) error {
	r, err := c.Results(ctx, electionID)
	if err != nil {
		return err
	}

	state := "final"
	if r.Open {
		state = "live"
	}
	fmt.Fprintf(out, "%s votes (%s)\n", humanize.Comma(r.TotalVotes), state)
	for i, cand := range r.Candidates {
		share := 0.0
		if r.TotalVotes > 0 {
			share = float64(cand.Tally) / float64(r.TotalVotes) * 100
		}
		fmt.Fprintf(out, "%2d. %-30s %8s  %5.1f%%\n", i+1, cand.DisplayName, humanize.Comma(cand.Tally), share)
	}
	return nil
}

func myVote(ctx context.Context, c *client.Client, hints client.HintFile, electionID string, out io.Writer) error {
	mine, err := c.MyVote(ctx, electionID)
	if err != nil {
		if hint, ok, _ := hints.Get(electionID); ok {
			fmt.Fprintf(out, "Server unavailable; this machine voted for %s %s.\n",
				nameOr(hint.CandidateName, hint.CandidateID), humanize.Time(hint.VotedAt))
			return nil
		}
		return err
	}

	if !mine.HasVoted {
		fmt.Fprintln(out, "You have not voted in this election.")
		return nil
	}
	when := ""
	if mine.CastAt != nil {
		when = " " + humanize.Time(*mine.CastAt)
	}
	fmt.Fprintf(out, "You voted for %s%s.\n", nameOr(mine.CandidateName, mine.CandidateID), when)
	return nil
}

func openHints(path string) (client.HintFile, error) {
	if path == "" {
		var err error
		path, err = client.DefaultHintPath()
		if err != nil {
			return client.HintFile{}, err
		}
	}
	return client.NewHintFile(path), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func nameOr(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
