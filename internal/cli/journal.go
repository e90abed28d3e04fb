package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/campusnav/internal/store"
)

// JournalResult is a session's transition journal.
type JournalResult struct {
	Session     string                   `json:"session"`
	Transitions []store.TransitionRecord `json:"transitions"`
}

// SessionsResult lists journaled sessions.
type SessionsResult struct {
	Sessions []string `json:"sessions"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal [session]",
		Short: "Show a session's navigation journal",
		Long: `Print the journaled state transitions of a session in order.

Without a session argument, lists every session that has a journal.

Examples:
  campusnav journal
  campusnav journal 01890a5d-ac96-774b-bcce-b302099a8057
  campusnav journal 01890a5d-ac96-774b-bcce-b302099a8057 --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := ""
			if len(args) == 1 {
				session = args[0]
			}
			return runJournal(rootOpts, cmd, session)
		},
	}

	addStoreFlags(cmd)
	return cmd
}

func runJournal(opts *RootOptions, cmd *cobra.Command, session string) error {
	out := opts.formatter(cmd)
	ctx := cmd.Context()

	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if session == "" {
		sessions, err := st.Sessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		if out.JSON() {
			return out.Success(SessionsResult{Sessions: sessions})
		}
		if len(sessions) == 0 {
			return out.Success("No journaled sessions.")
		}
		for _, s := range sessions {
			fmt.Fprintln(out.Writer, s)
		}
		return nil
	}

	records, err := st.ReadTransitions(ctx, session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	if len(records) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no journal for session %s", session))
	}

	if out.JSON() {
		return out.Success(JournalResult{Session: session, Transitions: records})
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.FormatInt(r.Seq, 10),
			r.At.UTC().Format(time.RFC3339Nano),
			r.Kind,
			r.FacilityID,
			r.Tab,
			r.URL,
			r.Value,
		})
	}
	out.Table([]string{"SEQ", "AT", "KIND", "FACILITY", "TAB", "URL", "VALUE"}, rows)
	return nil
}
