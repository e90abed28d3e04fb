package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/campusnav/internal/facility"
	"github.com/roach88/campusnav/internal/navstate"
	"github.com/roach88/campusnav/internal/urlstate"
)

// EncodeOptions holds flags for the encode command.
type EncodeOptions struct {
	*RootOptions
	Search     string
	Category   string
	FacilityID string
	Path       string
	Tab        string
}

// EncodeResult is a shareable URL.
type EncodeResult struct {
	URL string `json:"url"`
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a shareable URL from navigation state",
		Long: `Build the canonical URL for a search term, category and selected
facility. Empty values are omitted and keys are sorted.

Examples:
  campusnav encode --q "main library" --category library
  campusnav encode --facility gym --tab directory`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Search, "q", "", "search term")
	cmd.Flags().StringVar(&opts.Category, "category", "", "facility category")
	cmd.Flags().StringVar(&opts.FacilityID, "facility", "", "selected facility id")
	cmd.Flags().StringVar(&opts.Path, "path", "/", "route path")
	cmd.Flags().StringVar(&opts.Tab, "tab", "", "tab whose route to use; overrides --path")

	return cmd
}

func runEncode(opts *EncodeOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	path := opts.Path
	if opts.Tab != "" {
		tab, ok := navstate.ParseTab(opts.Tab)
		if !ok {
			msg := fmt.Sprintf("unknown tab %q", opts.Tab)
			if out.JSON() {
				_ = out.Error(CodeUnknownTab, msg, nil)
			}
			return NewExitError(ExitCommandError, msg)
		}
		path, _ = navstate.RouteFor(tab)
	}

	if opts.Category != "" {
		if _, ok := facility.ParseCategory(opts.Category); !ok {
			out.Warn("dropping unknown category %q", opts.Category)
		}
	}

	st := urlstate.State{
		Search:     opts.Search,
		Category:   facility.Category(opts.Category),
		FacilityID: opts.FacilityID,
	}
	url := urlstate.Build(path, st)
	if out.JSON() {
		return out.Success(EncodeResult{URL: url})
	}
	return out.Success(url)
}
