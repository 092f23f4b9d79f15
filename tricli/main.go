package tricli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"oss.terrastruct.com/util-go/xmain"

	"oss.terrastruct.com/trident/lib/log"
	"oss.terrastruct.com/trident/lib/version"
	"oss.terrastruct.com/trident/trigraph"
	"oss.terrastruct.com/trident/trilayouts"
	"oss.terrastruct.com/trident/trilib"
	"oss.terrastruct.com/trident/tritarget"
)

type runOpts struct {
	inputPath  string
	outputPath string
	configPath string
	format     tritarget.Format
	layout     *trilib.LayoutOptions
}

func Run(ctx context.Context, ms *xmain.State) (err error) {
	ctx = log.WithDefault(ctx)
	// These should be kept up-to-date with help.go
	watchFlag, err := ms.Opts.Bool("TRIDENT_WATCH", "watch", "w", false, "watch the input and config for changes and lay out again on every change.")
	if err != nil {
		return err
	}
	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		ms.Log.Warn.Printf("Invalid DEBUG flag value ignored")
		debugFlag = new(bool)
	}
	layoutFlag := ms.Opts.String("TRIDENT_LAYOUT", "layout", "l", "hierarchical", "the layout algorithm. See trident layouts.")
	configFlag := ms.Opts.String("TRIDENT_CONFIG", "config", "c", "", "path to a TOML file overriding the default layout config.")
	formatFlag := ms.Opts.String("TRIDENT_FORMAT", "format", "f", "", "output format (json, msgpack). Defaults to the output file extension, else json.")
	jobsFlag, err := ms.Opts.Int64("TRIDENT_JOBS", "jobs", "j", 0, "number of diagrams laid out concurrently by the batch subcommand. 0 means one per CPU.")
	if err != nil {
		return err
	}
	timeoutFlag, err := ms.Opts.Int64("TRIDENT_TIMEOUT", "timeout", "", 120, "the maximum number of seconds a single layout runs for before timing out. 0 disables the timeout.")
	if err != nil {
		return err
	}
	versionFlag, err := ms.Opts.Bool("", "version", "v", false, "get the version")
	if err != nil {
		return err
	}

	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if !errors.Is(err, pflag.ErrHelp) && err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}

	if *debugFlag {
		ctx = log.Leveled(ctx, slog.LevelDebug)
	}

	args := ms.Opts.Flags.Args()
	if len(args) > 0 {
		switch args[0] {
		case "layouts":
			layoutsCmd(ms)
			return nil
		case "validate":
			return validateCmd(ctx, ms)
		case "version":
			if len(args) > 1 {
				return xmain.UsageErrorf("version subcommand accepts no arguments")
			}
			fmt.Fprintln(ms.Stdout, version.Version)
			return nil
		}
	}

	if len(args) == 0 {
		if *versionFlag {
			fmt.Fprintln(ms.Stdout, version.Version)
			return nil
		}
		help(ms)
		return nil
	}

	algo, err := trilayouts.ParseAlgorithm(*layoutFlag)
	if err != nil {
		return xmain.UsageErrorf("%v", err)
	}
	var cfg *trigraph.Config
	if *configFlag != "" {
		cfg, err = trilib.LoadConfig(ms.AbsPath(*configFlag))
		if err != nil {
			return xmain.UsageErrorf("%v", err)
		}
	}
	// The timeout bounds each layout, not a whole batch or watch session.
	layoutOpts := &trilib.LayoutOptions{
		Algorithm: algo,
		Config:    cfg,
		Timeout:   time.Duration(*timeoutFlag) * time.Second,
	}

	if args[0] == "batch" {
		if *watchFlag {
			return xmain.UsageErrorf("--watch cannot be used with batch")
		}
		format, err := outputFormat(*formatFlag, "")
		if err != nil {
			return xmain.UsageErrorf("%v", err)
		}
		return batchCmd(ctx, ms, args[1:], layoutOpts, format, int(*jobsFlag))
	}

	if len(args) >= 3 {
		return xmain.UsageErrorf("too many arguments passed")
	}
	opts := runOpts{
		inputPath: args[0],
		layout:    layoutOpts,
	}
	if *configFlag != "" {
		opts.configPath = ms.AbsPath(*configFlag)
	}
	if len(args) >= 2 {
		opts.outputPath = args[1]
	}
	opts.format, err = outputFormat(*formatFlag, opts.outputPath)
	if err != nil {
		return xmain.UsageErrorf("%v", err)
	}
	if opts.outputPath == "" {
		if opts.inputPath == "-" {
			opts.outputPath = "-"
		} else {
			opts.outputPath = renameExt(opts.inputPath, ".layout"+opts.format.Ext())
		}
	}
	if opts.inputPath != "-" {
		opts.inputPath = ms.AbsPath(opts.inputPath)
	}
	if opts.outputPath != "-" {
		opts.outputPath = ms.AbsPath(opts.outputPath)
	}

	if *watchFlag {
		if opts.inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading from stdin")
		}
		w, err := newWatcher(ctx, ms, opts)
		if err != nil {
			return err
		}
		return w.run()
	}

	return layoutFile(ctx, ms, opts)
}

// layoutFile lays out one input and writes it. A diagram that fails to lay
// out is still written as an error diagram so editors can show the message.
func layoutFile(ctx context.Context, ms *xmain.State, opts runOpts) error {
	start := time.Now()
	input, err := ms.ReadPath(opts.inputPath)
	if err != nil {
		return err
	}

	diagram, _, layoutErr := trilib.Layout(ctx, input, opts.layout)
	if layoutErr != nil {
		diagram = tritarget.NewErrorDiagram(layoutErr)
		layoutErr = fmt.Errorf("failed to lay out %s: %w", ms.HumanPath(opts.inputPath), layoutErr)
	}

	out, err := diagram.Bytes(opts.format)
	if err != nil {
		return multierr.Combine(layoutErr, err)
	}
	err = ms.AtomicWritePath(opts.outputPath, out)
	if err != nil {
		return multierr.Combine(layoutErr, err)
	}
	if layoutErr != nil {
		return layoutErr
	}
	if opts.outputPath != "-" {
		ms.Log.Success.Printf("successfully laid out %s to %s in %s", ms.HumanPath(opts.inputPath), ms.HumanPath(opts.outputPath), time.Since(start))
	}
	return nil
}

func batchCmd(ctx context.Context, ms *xmain.State, paths []string, opts *trilib.LayoutOptions, format tritarget.Format, jobs int) error {
	if len(paths) == 0 {
		return xmain.UsageErrorf("batch must be passed at least one input file")
	}

	inputs := make([][]byte, len(paths))
	for i, p := range paths {
		if p == "-" {
			return xmain.UsageErrorf("batch cannot read from stdin")
		}
		paths[i] = ms.AbsPath(p)
		input, err := ms.ReadPath(paths[i])
		if err != nil {
			return err
		}
		inputs[i] = input
	}

	start := time.Now()
	results, layoutErr := trilib.LayoutBatch(ctx, inputs, opts, jobs)

	var writeErr error
	for i, diagram := range results {
		outputPath := renameExt(paths[i], ".layout"+format.Ext())
		out, err := diagram.Bytes(format)
		if err == nil {
			err = ms.AtomicWritePath(outputPath, out)
		}
		writeErr = multierr.Append(writeErr, err)
	}

	err := multierr.Combine(layoutErr, writeErr)
	if err != nil {
		return err
	}
	ms.Log.Success.Printf("successfully laid out %d diagrams in %s", len(paths), time.Since(start))
	return nil
}

// outputFormat resolves the output format from the flag, else the output
// extension, else json.
func outputFormat(flag, outputPath string) (tritarget.Format, error) {
	if flag != "" {
		return tritarget.ParseFormat(flag)
	}
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".msgpack", ".mp":
		return tritarget.FormatMsgpack, nil
	}
	return tritarget.FormatJSON, nil
}

func renameExt(fp string, newExt string) string {
	ext := filepath.Ext(fp)
	if ext == "" {
		return fp + newExt
	}
	return strings.TrimSuffix(fp, ext) + newExt
}
