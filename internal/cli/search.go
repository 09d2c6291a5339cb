package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/Moontok/WorkshopApp/internal/cache"
	"github.com/Moontok/WorkshopApp/internal/query"
	"github.com/Moontok/WorkshopApp/internal/workshop"
	"github.com/spf13/cobra"
)

// filterOptions holds the search flags shared by search, emails and export
type filterOptions struct {
	phrase    string
	id        string
	from      string
	to        string
	dateRange string
	sort      string
}

func (f *filterOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.phrase, "phrase", "p", "", "Match workshop names containing this text (case-insensitive)")
	cmd.Flags().StringVar(&f.id, "id", "", "Match a workshop ID exactly (ignores the other filters)")
	cmd.Flags().StringVar(&f.from, "from", "", "Earliest start date, inclusive (e.g. 3/1/2024)")
	cmd.Flags().StringVar(&f.to, "to", "", "Latest start date, inclusive")
	cmd.Flags().StringVarP(&f.dateRange, "range", "r", "", "Date range such as 'Mar 1-15' or 'March' (overrides --from/--to)")
	cmd.Flags().StringVarP(&f.sort, "sort", "s", "date", "Sort order: date, id or name")
}

// criteria converts the flags into query criteria
func (f *filterOptions) criteria() (query.Criteria, error) {
	c := query.Criteria{Phrase: f.phrase, ID: f.id}

	if f.dateRange != "" {
		from, to, err := query.ParseDateRange(f.dateRange)
		if err != nil {
			return c, fmt.Errorf("invalid --range: %w", err)
		}
		c.From, c.To = &from, &to
		return c, nil
	}

	if f.from != "" {
		from, err := query.ParseDate(f.from)
		if err != nil {
			return c, fmt.Errorf("invalid --from: %w", err)
		}
		c.From = &from
	}
	if f.to != "" {
		to, err := query.ParseDate(f.to)
		if err != nil {
			return c, fmt.Errorf("invalid --to: %w", err)
		}
		c.To = &to
	}
	return c, nil
}

// find runs the search described by the flags against the cache.
// The engine is returned so callers can read totals.
func (f *filterOptions) find(cmd *cobra.Command) ([]*workshop.Workshop, *query.Engine, error) {
	order, err := parseSortOrder(f.sort)
	if err != nil {
		return nil, nil, err
	}
	crit, err := f.criteria()
	if err != nil {
		return nil, nil, err
	}

	store, err := openCache()
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()

	engine := query.New(store)
	workshops, err := engine.Search(cmd.Context(), crit)
	if err != nil {
		return nil, nil, err
	}

	sortWorkshops(workshops, order)
	return workshops, engine, nil
}

type searchOptions struct {
	filterOptions
	format       string
	participants bool
	emails       bool
}

func newSearchCmd() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the cached workshops",
		Long: `Searches the local cache without contacting the portal.

An --id search matches exactly and ignores every other filter. Otherwise the
phrase filter applies to workshop names and the optional date filters keep
workshops starting on or between the given days.`,
		Example: `  workshop-sync search --phrase "intro"
  workshop-sync search --range "Mar 1-15" --sort name
  workshop-sync search --id 123456 --participants`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.participants, "participants", false, "List the participants of each workshop")
	cmd.Flags().BoolVar(&opts.emails, "emails", false, "Print participant emails after the results")

	return cmd
}

func runSearch(cmd *cobra.Command, opts *searchOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}

	workshops, engine, err := opts.find(cmd)
	if errors.Is(err, cache.ErrNoCache) {
		fmt.Fprintln(cmd.OutOrStdout(), MsgNoCache)
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result := &SearchOutput{
		SearchedAt:   time.Now().UTC(),
		Workshops:    workshops,
		Matched:      engine.Totals(),
		Participants: opts.participants,
	}
	if err := WriteSearch(out, result, format); err != nil {
		return err
	}

	if opts.emails && format == FormatText {
		fmt.Fprintf(out, "\n%s\n", query.EmailsFor(workshops))
	}
	return nil
}

func newEmailsCmd() *cobra.Command {
	opts := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "emails",
		Short: "Print participant emails of the matching workshops",
		Long: `Prints the email address of every participant in the matching workshops,
separated so the list can be pasted into a mail client.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			workshops, _, err := opts.find(cmd)
			if errors.Is(err, cache.ErrNoCache) {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoCache)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), query.EmailsFor(workshops))
			return nil
		},
	}

	opts.register(cmd)
	return cmd
}
