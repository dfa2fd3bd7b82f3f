package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"validate-specs/internal/diagnostic"
	"validate-specs/internal/quantity"
	"validate-specs/internal/spec"
	"validate-specs/internal/specset"
	"validate-specs/internal/watch"
)

type loadOptions struct {
	single     bool
	mergeLists bool
	include    []string
}

func (o *loadOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.single, "single", false, "Treat the directory as a single package instead of a metrics package")
	cmd.Flags().BoolVar(&o.mergeLists, "merge-lists", false, "Append inherited lists instead of replacing them")
	cmd.Flags().StringSliceVar(&o.include, "include", nil, "Only read files matching these patterns (relative to each package)")
}

func (o *loadOptions) config(g *globalOptions) specset.LoadConfig {
	cfg := specset.DefaultConfig()
	cfg.Logger = g.logger()
	cfg.MergeLists = o.mergeLists
	cfg.Include = o.include

	return cfg
}

func (o *loadOptions) load(ctx context.Context, dir string, cfg specset.LoadConfig) (*specset.SpecificationSet, error) {
	if o.single {
		return specset.LoadSinglePackage(ctx, dir, cfg)
	}

	return specset.LoadMetricsPackage(ctx, dir, cfg)
}

func lintCmd(g *globalOptions) *cobra.Command {
	var lo loadOptions

	cmd := &cobra.Command{
		Use:   "lint <dir>",
		Short: "Load a package tree and report resolution problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			set, err := lo.load(cmd.Context(), args[0], lo.config(g))
			if err != nil {
				printDiagnostics(out, err)
				return err
			}

			fp, err := set.Fingerprint()
			if err != nil {
				return err
			}

			diags := set.Diagnostics()
			for _, d := range diags.All() {
				fmt.Fprintf(out, "%s: %s\n", d.Severity, d)
			}

			fmt.Fprintf(out, "specifications: %d\n", set.Len())
			fmt.Fprintf(out, "partials: %d\n", set.PartialCount())
			fmt.Fprintf(out, "fingerprint: %016x\n", fp)

			return nil
		},
	}

	lo.register(cmd)

	return cmd
}

func printDiagnostics(w io.Writer, err error) {
	var diags diagnostic.Diagnostics

	var (
		rerr *specset.ResolutionError
		lerr *specset.LoadError
	)

	switch {
	case errors.As(err, &rerr):
		diags = rerr.Diagnostics
	case errors.As(err, &lerr):
		diags = lerr.Diagnostics
	default:
		return
	}

	for _, d := range diags.All() {
		fmt.Fprintf(w, "%s: %s\n", d.Severity, d)
	}
}

type showOutput struct {
	Specifications []spec.Specification `json:"specifications" yaml:"specifications"`
	Partials       []*spec.Partial      `json:"partials,omitempty" yaml:"partials,omitempty"`
}

func showCmd(g *globalOptions) *cobra.Command {
	var (
		lo       loadOptions
		subset   string
		format   string
		partials bool
	)

	cmd := &cobra.Command{
		Use:   "show <dir>",
		Short: "Print resolved specifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := lo.load(cmd.Context(), args[0], lo.config(g))
			if err != nil {
				return err
			}

			if subset != "" {
				if set, err = set.Subset(subset); err != nil {
					return err
				}
			}

			out := showOutput{Specifications: set.Specifications()}
			if partials {
				out.Partials = set.Partials()
			}

			return writeFormatted(cmd.OutOrStdout(), format, out)
		},
	}

	lo.register(cmd)
	cmd.Flags().StringVar(&subset, "subset", "", "Restrict to a package or package.metric")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (json, yaml)")
	cmd.Flags().BoolVar(&partials, "partials", false, "Include partials in the output")

	return cmd
}

func writeFormatted(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return err
		}

		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func checkCmd(g *globalOptions) *cobra.Command {
	var lo loadOptions

	cmd := &cobra.Command{
		Use:   "check <dir> <spec-name> <value> <unit>",
		Short: "Check a measurement against a specification",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[2], err)
			}

			measurement, err := quantity.New(value, args[3])
			if err != nil {
				return err
			}

			set, err := lo.load(cmd.Context(), args[0], lo.config(g))
			if err != nil {
				return err
			}

			sp, err := set.Get(args[1])
			if err != nil {
				return err
			}

			ok, err := sp.Check(measurement)
			if err != nil {
				return err
			}

			verdict := "FAIL"
			if ok {
				verdict = "PASS"
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", verdict, sp.Name(), measurement)

			if !ok {
				return errCheckFailed
			}

			return nil
		},
	}

	lo.register(cmd)

	return cmd
}

var errCheckFailed = errors.New("measurement does not meet specification")

func watchCmd(g *globalOptions) *cobra.Command {
	var (
		lo          loadOptions
		debounce    time.Duration
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Reload specifications whenever files change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := g.logger()
			cfg := lo.config(g)

			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				cfg.Metrics = specset.NewMetrics(reg)

				srv := &http.Server{
					Addr:              metricsAddr,
					Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
					ReadHeaderTimeout: 5 * time.Second,
				}

				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server failed", "addr", metricsAddr, "error", err)
					}
				}()

				defer srv.Close()
			}

			w, err := watch.New(watch.Config{
				Root:       args[0],
				Single:     lo.single,
				Debounce:   debounce,
				LoadConfig: cfg,
				Logger:     logger,
			})
			if err != nil {
				return err
			}

			if err := w.Start(ctx); err != nil {
				return err
			}

			return printUpdates(ctx, cmd.OutOrStdout(), w)
		},
	}

	lo.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "How long to collect changes before reloading")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

func printUpdates(ctx context.Context, out io.Writer, w *watch.Watcher) error {
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-w.Updates():
			if !ok {
				return nil
			}

			if u.Err != nil {
				fmt.Fprintf(out, "error: %v\n", u.Err)
				continue
			}

			fmt.Fprintf(out, "%016x specifications=%d partials=%d\n",
				u.Fingerprint, u.Set.Len(), u.Set.PartialCount())
		}
	}
}
