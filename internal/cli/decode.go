package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/campusnav/internal/navstate"
	"github.com/roach88/campusnav/internal/urlstate"
)

// DecodeResult is the normalized navigation state of a URL.
type DecodeResult struct {
	Path       string `json:"path"`
	Tab        string `json:"tab"`
	Search     string `json:"search,omitempty"`
	Category   string `json:"category,omitempty"`
	FacilityID string `json:"facility_id,omitempty"`
	URL        string `json:"url"`
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <url-or-query>",
		Short: "Decode a shareable URL into navigation state",
		Long: `Decode a URL, a path with a query, or a bare query string into the
navigation state the app would restore from it.

Unknown parameters and invalid categories are dropped. The output includes
the canonical URL for the decoded state.

Examples:
  campusnav decode "/?q=library&category=library"
  campusnav decode "q=gym&facility=gym"
  campusnav decode "https://campus.example.edu/directory?q=lab" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, cmd, args[0])
		},
	}
}

func runDecode(opts *RootOptions, cmd *cobra.Command, raw string) error {
	res := decodeLocation(raw)
	out := opts.formatter(cmd)
	if out.JSON() {
		return out.Success(res)
	}

	out.Table([]string{"KEY", "VALUE"}, [][]string{
		{"path", res.Path},
		{"tab", res.Tab},
		{urlstate.KeySearch, res.Search},
		{urlstate.KeyCategory, res.Category},
		{urlstate.KeyFacility, res.FacilityID},
		{"url", res.URL},
	})
	return nil
}

// decodeLocation accepts anything a user might paste. Input without a '/'
// or '?' is taken as a bare query on the map route.
func decodeLocation(raw string) DecodeResult {
	raw = strings.TrimSpace(raw)

	var (
		path string
		st   urlstate.State
	)
	if strings.ContainsAny(raw, "/?") {
		path, st = urlstate.Parse(raw)
	} else {
		path, st = "/", urlstate.Decode(raw)
	}

	return DecodeResult{
		Path:       path,
		Tab:        string(navstate.TabForPath(path)),
		Search:     st.Search,
		Category:   string(st.Category),
		FacilityID: st.FacilityID,
		URL:        urlstate.Build(path, st),
	}
}
