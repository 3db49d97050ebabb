// Command report builds the SalesPulse workbooks from the sales exports in a
// directory, for use without the web service.
//
//	report -dir ./ventas -from 2025-02-01 -to 2025-02-28 -salidas-mes 20 -charts -segments
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
	"text/tabwriter"
	"time"

	"salespulse/internal/charts"
	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/exporter"
	"salespulse/internal/files"
	"salespulse/internal/infrastructure"
	"salespulse/internal/license"
	"salespulse/internal/services"
	"salespulse/pkg/contracts/domain"
)

const dateLayout = "2006-01-02"

type options struct {
	dir             string
	out             string
	from            time.Time
	to              time.Time
	targetShipments float64
	actualShipments float64
	portfolio       float64
	plan            string
	licenseCode     string
	charts          bool
	segments        bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, cfg, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Error("Report failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, paths *config.Paths, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	var from, to string
	fs.StringVar(&opts.dir, "dir", paths.DataDir, "directory with the sales workbooks (.xlsx or .xls) and the optional PLANES file")
	fs.StringVar(&opts.out, "out", paths.OutputDir, "directory for the generated workbooks")
	fs.StringVar(&from, "from", "", "first day of the report, YYYY-MM-DD (required)")
	fs.StringVar(&to, "to", "", "last day of the report, YYYY-MM-DD (required)")
	fs.Float64Var(&opts.targetShipments, "salidas-mes", 0, "shipments planned for the month")
	fs.Float64Var(&opts.actualShipments, "salidas-actuales", 0, "shipments made so far")
	fs.Float64Var(&opts.portfolio, "cartera", 0, "client portfolio size")
	fs.StringVar(&opts.plan, "plan", "", "restrict the report to the clients of this plan")
	fs.StringVar(&opts.licenseCode, "license", "", "activate this license code before running")
	fs.BoolVar(&opts.charts, "charts", false, "add the chart sheet (needs Chrome)")
	fs.BoolVar(&opts.segments, "segments", false, "also write the segment workbook")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	if opts.from, err = parseDate("from", from); err != nil {
		return nil, err
	}
	if opts.to, err = parseDate("to", to); err != nil {
		return nil, err
	}
	if opts.to.Before(opts.from) {
		return nil, fmt.Errorf("-to %s precedes -from %s", to, from)
	}
	return opts, nil
}

func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("-%s is required", name)
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("-%s must be a date in YYYY-MM-DD format: %q", name, value)
	}
	return t, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, cfg *config.Config, logger *slog.Logger) error {
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return err
	}
	opts, err := parseFlags(args, paths, stderr)
	if err != nil {
		return err
	}

	if err := checkLicense(ctx, cfg, paths, opts.licenseCode, logger); err != nil {
		return err
	}

	discovery := files.NewDiscovery("", logger)
	found, err := discovery.FindWorkbooks(opts.dir)
	if err != nil {
		return err
	}
	uploads, err := discovery.ReadUploads(found)
	if err != nil {
		return err
	}

	reports, err := newReportService(cfg, opts.charts, logger)
	if err != nil {
		return err
	}
	info, err := reports.LoadDataset(ctx, uploads)
	if err != nil {
		return err
	}

	params := domain.ReportParams{
		From:            opts.from,
		To:              opts.to,
		Plan:            opts.plan,
		TargetShipments: opts.targetShipments,
		ActualShipments: opts.actualShipments,
		Portfolio:       opts.portfolio,
	}
	summary, err := reports.Summary(ctx, info.Key, params)
	if err != nil {
		return err
	}
	if err := printSummary(stdout, summary); err != nil {
		return err
	}

	writer := exporter.NewFileWriter(&config.Paths{OutputDir: opts.out}, logger)

	wb, err := reports.ExportSummary(ctx, info.Key, params, opts.charts)
	if err != nil {
		return err
	}
	if err := save(stdout, writer, wb); err != nil {
		return err
	}

	rng := services.Range{From: opts.from, To: opts.to, Plan: opts.plan}
	if opts.segments {
		seg, err := reports.ExportSegments(ctx, info.Key, rng)
		if err != nil {
			return err
		}
		if err := save(stdout, writer, seg); err != nil {
			return err
		}
	}

	yoy, err := reports.YearOverYear(ctx, info.Key, rng)
	if err != nil {
		return err
	}
	stamp := time.Now().Format("20060102_150405")
	for name, csv := range map[string]exporter.WriteOptions{
		"Volumen_Mensual_" + stamp + ".csv": exporter.MonthlyCSV(yoy.Months),
		"Volumen_Canal_" + stamp + ".csv":   exporter.ChannelCSV(yoy.Channels),
	} {
		path, err := writer.WriteCSV(name, csv)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Archivo generado: %s\n", path)
	}

	return nil
}

// checkLicense activates code when given, then requires a valid license.
func checkLicense(ctx context.Context, cfg *config.Config, paths *config.Paths, code string, logger *slog.Logger) error {
	registry := license.NewRegistry(cfg.License.RegistryURL, cfg.License.Timeout, logger)
	manager := license.NewManager(registry, license.NewStateStore(paths.LicenseFile, logger), logger)
	gate := services.NewLicenseService(manager, nil, logger)

	if code != "" {
		status, err := gate.Activate(ctx, code)
		if err != nil {
			return err
		}
		if !status.Valid {
			return fmt.Errorf("license not accepted: %s", status.Message)
		}
	}

	status := gate.Status(ctx)
	if !status.Valid {
		return fmt.Errorf("license required: %s", status.Message)
	}
	return nil
}

func newReportService(cfg *config.Config, withCharts bool, logger *slog.Logger) (*services.ReportService, error) {
	rules := dataprocessing.DefaultRuleSet()
	if cfg.RulesFile != "" {
		loaded, err := config.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		if rules, err = dataprocessing.NewRuleSet(loaded); err != nil {
			return nil, err
		}
	}

	store, err := dataprocessing.NewLRUStore(1)
	if err != nil {
		return nil, err
	}
	memo := dataprocessing.NewMemo(dataprocessing.NewLoader(logger), store, logger)

	var renderer charts.Renderer
	if withCharts {
		renderer = charts.NewChromeRenderer(cfg.Charts.ChromePath, cfg.Charts.RenderTimeout, logger)
	}

	return services.NewReportService(memo, dataprocessing.NewProcessor(rules, logger),
		exporter.NewSummaryExporter(renderer, logger), nil, logger), nil
}

func printSummary(w io.Writer, summary domain.Summary) error {
	entries := summary.Entries()
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "Sin datos para el período seleccionado")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Indicador\tValor")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%v\n", e.Name, e.Display())
	}
	return tw.Flush()
}

func save(w io.Writer, writer *exporter.FileWriter, wb *exporter.Workbook) error {
	path, err := writer.SaveWorkbook(wb)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Archivo generado: %s\n", path)
	if wb.FailedFigures > 0 {
		fmt.Fprintf(w, "Aviso: %d gráficos no se pudieron exportar\n", wb.FailedFigures)
	}
	return nil
}
