package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jakestephens/banner/internal/adapter/output"
	"github.com/jakestephens/banner/internal/config"
	"github.com/jakestephens/banner/internal/history"
)

var historyOpts struct {
	// Filter options
	since  string
	app    string
	level  string
	limit  int
	search string

	// Sort options
	sortBy string

	// Output options
	format   string
	field    string
	template string
	follow   bool

	// Lookup options
	index int
	id    string
}

var historyCmd = &cobra.Command{
	Use:   "history [index|id]",
	Short: "Query and output banner history",
	Long: `Query the banner history journal and output in various formats.

Without arguments, outputs recorded banners in dmenu format (suitable for
fuzzel, walker, rofi, etc.). The [filter] section of the config file
supplies defaults; pass --since 0 to see all of history.

With an index (1-based) or ID argument, outputs that specific record.

Examples:
  # List recorded banners in dmenu format
  banner history

  # Filter by app and time
  banner history --app firefox --since 1h

  # Get a specific record by index
  banner history 3

  # Get a record and output its body field
  banner history 3 --field body

  # Output as JSON
  banner history --format json

  # Print records live as the daemon appends them
  banner history --follow --format plain

  # Use with fuzzel for a clipboard workflow
  banner history | fuzzel -d | banner history --field body | wl-copy`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	// Filter flags
	historyCmd.Flags().StringVar(&historyOpts.since, "since", "",
		"Show records from the last duration (e.g., 1h, 7d, 1w; 0=all)")
	historyCmd.Flags().StringVar(&historyOpts.app, "app", "",
		"Filter by application name (exact match)")
	historyCmd.Flags().StringVar(&historyOpts.level, "level", "",
		"Filter by level (low, normal, critical)")
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 0,
		"Maximum number of records to show (0=unlimited)")
	historyCmd.Flags().StringVarP(&historyOpts.search, "search", "s", "",
		"Search in summary and body")

	// Sort flags
	historyCmd.Flags().StringVar(&historyOpts.sortBy, "sort", "",
		"Sort specification: field[:order] (timestamp, app, level)")

	// Output flags
	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", "dmenu",
		"Output format (dmenu, plain, json, yaml, ids)")
	historyCmd.Flags().StringVar(&historyOpts.field, "field", "",
		"Output single field from a record (id, app, summary, body, all)")
	historyCmd.Flags().StringVar(&historyOpts.template, "template", "",
		"Go template for output, or a template name from [templates.custom]")
	historyCmd.Flags().BoolVar(&historyOpts.follow, "follow", false,
		"Keep running and print new records as the journal grows")

	// Lookup flags
	historyCmd.Flags().IntVar(&historyOpts.index, "index", 0,
		"Lookup record by 1-based index")
	historyCmd.Flags().StringVar(&historyOpts.id, "id", "",
		"Lookup record by ID")
}

func runHistory(cmd *cobra.Command, args []string) error {
	// Check for positional argument (index or ID)
	if len(args) > 0 {
		arg := args[0]
		// Try as index first
		if idx, err := strconv.Atoi(arg); err == nil && idx > 0 {
			historyOpts.index = idx
		} else {
			// Treat as ID
			historyOpts.id = arg
		}
	}

	// If looking up a specific record
	if historyOpts.index > 0 || historyOpts.id != "" {
		return handleLookup()
	}

	if historyOpts.follow {
		return followHistory()
	}

	return outputRecords(filteredRecords())
}

// filteredRecords applies the filter and sort flags against the store,
// falling back to the [filter] and [sort] config sections.
func filteredRecords() []history.Record {
	opts := history.FilterOptions{
		App:   historyOpts.app,
		Limit: historyOpts.limit,
	}

	since := historyOpts.since
	if since == "" && cfg != nil {
		since = cfg.Filter.Since
	}
	if since != "" {
		d, err := history.ParseDuration(since)
		if err != nil {
			logger.Warn("invalid since duration", "value", since, "error", err)
		} else {
			opts.Since = d
		}
	}

	if opts.Limit == 0 && cfg != nil {
		opts.Limit = cfg.Filter.Limit
	}

	if historyOpts.level != "" {
		l, err := history.ParseLevel(historyOpts.level)
		if err != nil {
			logger.Warn("invalid level", "value", historyOpts.level, "error", err)
		} else {
			opts.Level = &l
		}
	}

	sortBy := historyOpts.sortBy
	if sortBy == "" && cfg != nil && cfg.Sort.Field != "" {
		sortBy = cfg.Sort.Field + ":" + cfg.Sort.Order
	}
	if sortBy != "" {
		field, order, err := history.ParseSort(sortBy)
		if err != nil {
			logger.Warn("invalid sort", "value", sortBy, "error", err)
		} else {
			opts.SortField = field
			opts.SortOrder = order
		}
	}

	// Search runs after filtering, so cap the result count afterwards
	limit := opts.Limit
	if historyOpts.search != "" {
		opts.Limit = 0
	}

	records := historyStore.Filter(opts)

	if historyOpts.search != "" {
		records = history.Search(records, historyOpts.search)
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}
	}

	return records
}

// handleLookup handles single record lookup and output.
func handleLookup() error {
	var r *history.Record

	if historyOpts.index > 0 {
		// Filter and sort first so indexes match the listing
		records := filteredRecords()
		r = history.LookupByIndex(records, historyOpts.index)
		if r == nil {
			return fmt.Errorf("record at index %d not found", historyOpts.index)
		}
	} else {
		// The ID may be a raw ULID, a dmenu line, or a dmenu index
		id := parseDmenuSelection(historyOpts.id)
		if idx, err := strconv.Atoi(id); err == nil && idx > 0 {
			records := filteredRecords()
			r = history.LookupByIndex(records, idx)
		} else {
			r = historyStore.Lookup(id)
		}
		if r == nil {
			return fmt.Errorf("record with ID %s not found", historyOpts.id)
		}
	}

	// Output specific field if requested
	if historyOpts.field != "" {
		fmt.Println(output.FormatField(r, historyOpts.field))
		return nil
	}

	// A single record prints as JSON unless another format was chosen
	if historyOpts.format == "dmenu" {
		historyOpts.format = "json"
	}

	formatter := createFormatter()
	if single, ok := formatter.(interface {
		FormatSingle(io.Writer, *history.Record) error
	}); ok {
		return single.FormatSingle(os.Stdout, r)
	}
	return formatter.Format(os.Stdout, []history.Record{*r})
}

// parseDmenuSelection extracts the record ID from a dmenu selection.
// Input could be the full line: "1 | 5m | Firefox | Download Complete: file.zip"
// or just an ID/index.
func parseDmenuSelection(selection string) string {
	selection = strings.TrimSpace(selection)

	// If it looks like a raw ID (no separators), return as-is
	if !strings.Contains(selection, " ") && !strings.Contains(selection, "|") {
		return selection
	}

	// Try to parse as index from dmenu output
	// Format: "index | time | app | summary"
	parts := strings.SplitN(selection, "|", 2)
	if len(parts) > 0 {
		idxStr := strings.TrimSpace(parts[0])
		if idx, err := strconv.Atoi(idxStr); err == nil && idx > 0 {
			return idxStr
		}
	}

	return selection
}

// followHistory prints matching records, then blocks and prints new ones
// as the daemon appends to the journal. Ctrl-C exits.
func followHistory() error {
	historyPath := globalOpts.historyFile
	if historyPath == "" {
		historyPath = config.HistoryPath()
	}

	watcher, err := history.NewFileWatcher(historyStore, historyPath)
	if err != nil {
		return fmt.Errorf("failed to create journal watcher: %w", err)
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to watch journal: %w", err)
	}
	defer watcher.Stop()

	changes := historyStore.Subscribe()
	defer historyStore.Unsubscribe(changes)

	formatter := createFormatter()
	seen := make(map[string]bool)

	emit := func() error {
		var fresh []history.Record
		for _, r := range filteredRecords() {
			if !seen[r.ID] {
				seen[r.ID] = true
				fresh = append(fresh, r)
			}
		}
		if len(fresh) == 0 {
			return nil
		}
		return formatter.Format(os.Stdout, fresh)
	}

	if err := emit(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	for {
		select {
		case <-sig:
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := emit(); err != nil {
				return err
			}
		}
	}
}

// outputRecords outputs the record list.
func outputRecords(records []history.Record) error {
	if len(records) == 0 {
		logger.Debug("no records to output")
		return nil
	}

	formatter := createFormatter()
	return formatter.Format(os.Stdout, records)
}

// createFormatter creates the output formatter based on options.
func createFormatter() output.Formatter {
	var format output.FormatType
	switch strings.ToLower(historyOpts.format) {
	case "json":
		format = output.FormatJSON
	case "yaml":
		format = output.FormatYAML
	case "plain":
		format = output.FormatPlain
	case "ids":
		format = output.FormatIDs
	default:
		format = output.FormatDmenu
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = resolveTemplate(format)

	return output.NewFormatter(format, opts)
}

// resolveTemplate picks the template for a format. An explicit --template
// wins: either a literal Go template or a name looked up in the config's
// template sections. Otherwise the config template for the format applies.
func resolveTemplate(format output.FormatType) string {
	if t := historyOpts.template; t != "" {
		if strings.Contains(t, "{{") {
			return t
		}
		if cfg != nil {
			if named := cfg.GetTemplate(t); named != "" {
				return named
			}
		}
		logger.Warn("unknown template name", "name", t)
		return ""
	}

	if cfg == nil {
		return ""
	}
	switch format {
	case output.FormatDmenu:
		return cfg.Templates.Dmenu
	case output.FormatPlain:
		return cfg.Templates.Full
	default:
		return ""
	}
}
