package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/campusnav/internal/facility"
	"github.com/roach88/campusnav/internal/search"
)

// FilterOptions holds flags for the filter command.
type FilterOptions struct {
	*RootOptions
	Search    string
	Category  string
	Directory bool
}

// FilterMatch is one facility in the filter output.
type FilterMatch struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Code     string            `json:"code,omitempty"`
	Category facility.Category `json:"category"`
	// Rooms lists the codes of matching rooms, map variant only.
	Rooms []string `json:"rooms,omitempty"`
}

// FilterResult is the output of the filter command.
type FilterResult struct {
	Search     string        `json:"search,omitempty"`
	Category   string        `json:"category,omitempty"`
	Variant    string        `json:"variant"`
	Total      int           `json:"total"`
	MatchCount int           `json:"match_count"`
	Results    []FilterMatch `json:"results"`
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Run the search and category filter over stored facilities",
		Long: `Filter stored facilities the way the map and directory lists do.

The map variant also matches facilities that contain a room whose code or
name matches the search term. Use --directory for the directory variant,
which matches names and codes only.

Examples:
  campusnav filter --q lib
  campusnav filter --q sci-101 --format json
  campusnav filter --category dining --directory`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Search, "q", "", "search term")
	cmd.Flags().StringVar(&opts.Category, "category", "", "facility category")
	cmd.Flags().BoolVar(&opts.Directory, "directory", false, "directory variant (no room matches)")
	addStoreFlags(cmd)

	return cmd
}

func runFilter(opts *FilterOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	ctx := cmd.Context()

	category, ok := facility.ParseCategory(opts.Category)
	if opts.Category != "" && !ok {
		out.Warn("unknown category %q; showing all categories", opts.Category)
	}
	term := strings.TrimSpace(opts.Search)

	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	all, err := st.List(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list facilities", err)
	}

	var (
		extra     search.IDSet
		roomCodes = map[string][]string{}
	)
	if !opts.Directory && term != "" {
		rooms, err := st.SearchRooms(ctx, term)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to search rooms", err)
		}
		extra = search.MatchRooms(rooms, term)
		for _, r := range rooms {
			roomCodes[r.FacilityID] = append(roomCodes[r.FacilityID], r.Code)
		}
	}

	filtered := search.Filter(all, term, category, extra)

	res := FilterResult{
		Search:     term,
		Category:   string(category),
		Variant:    "map",
		Total:      len(all),
		MatchCount: filtered.MatchCount,
		Results:    make([]FilterMatch, 0, len(filtered.Results)),
	}
	if opts.Directory {
		res.Variant = "directory"
	}
	for _, f := range filtered.Results {
		res.Results = append(res.Results, FilterMatch{
			ID:       f.ID,
			Name:     f.Name,
			Code:     f.Code,
			Category: f.Category,
			Rooms:    roomCodes[f.ID],
		})
	}

	if out.JSON() {
		return out.Success(res)
	}
	return outputFilterText(out, res)
}

func outputFilterText(out *OutputFormatter, res FilterResult) error {
	if res.MatchCount == 0 {
		return out.Success(fmt.Sprintf("No facilities match (0 of %d).", res.Total))
	}

	rows := make([][]string, 0, len(res.Results))
	for _, m := range res.Results {
		rows = append(rows, []string{m.ID, m.Name, m.Code, string(m.Category), strings.Join(m.Rooms, ",")})
	}
	out.Table([]string{"ID", "NAME", "CODE", "CATEGORY", "ROOMS"}, rows)
	return out.Success(fmt.Sprintf("%d of %d facilities", res.MatchCount, res.Total))
}
