package commands

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/penwyp/go-offset-monitor/internal/data/fetcher"
	"github.com/spf13/cobra"
)

func newSourcesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured sources and their resolved connection targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSources(cmd, opts)
		},
	}
}

func runSources(cmd *cobra.Command, opts *options) error {
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)

	table.Header([]string{"id", "host", "port", "database", "table", "connection"})
	rows := make([][]string, 0, len(opts.cfg.Sources))
	for _, s := range opts.cfg.Sources {
		rows = append(rows, []string{
			s.ID,
			s.Host,
			strconv.Itoa(s.Port),
			s.Database,
			s.Schema + "." + s.Table,
			s.Redacted(),
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d sources, timeout %s, concurrency %d\n",
		len(opts.cfg.Sources), opts.cfg.QueryTimeout, opts.cfg.Concurrency)
	for _, s := range opts.cfg.Sources {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", s.ID, fetcher.OffsetQuery(s))
	}
	return nil
}
