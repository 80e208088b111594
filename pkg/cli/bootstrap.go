package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/groundwork-dev/groundwork/pkg/cli/config"
	"github.com/groundwork-dev/groundwork/pkg/domain/model"
	"github.com/groundwork-dev/groundwork/pkg/domain/platform"
	"github.com/groundwork-dev/groundwork/pkg/infra/archive"
	"github.com/groundwork-dev/groundwork/pkg/infra/download"
	"github.com/groundwork-dev/groundwork/pkg/infra/git"
	"github.com/groundwork-dev/groundwork/pkg/infra/process"
	"github.com/groundwork-dev/groundwork/pkg/usecase"
)

func runBootstrap(ctx context.Context, c *cli.Command, fetchCfg *config.Fetch, generatorCfg *config.Generator, manifestCfg *config.Manifest) error {
	args := c.Args().Slice()
	if len(args) > 1 {
		return goerr.New("at most one target may be given", goerr.V("args", args))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile, err := platform.Lookup(fetchCfg.HostPlatform())
	if err != nil {
		return goerr.Wrap(err, "no recipes for platform", goerr.V("supported", platform.Supported()))
	}

	manifest, err := manifestCfg.Load()
	if err != nil {
		return err
	}
	root, err := fetchCfg.RootDir()
	if err != nil {
		return err
	}
	extraArgs, err := generatorCfg.ExtraArgs()
	if err != nil {
		return err
	}

	startDir, err := os.Getwd()
	if err != nil {
		return goerr.Wrap(err, "failed to get working directory")
	}

	stdout, stderr := c.Root().Writer, c.Root().ErrWriter
	progress := newProgress(stderr)
	fetchers := usecase.Fetchers{
		Downloader: download.NewClient(
			download.WithTimeout(fetchCfg.Timeout),
			download.WithProgress(progress),
		),
		Extractor: archive.NewExtractor(),
		Cloner:    git.NewCloner(git.WithTimeout(fetchCfg.Timeout)),
		Runner:    process.NewRunner(process.WithOutput(stdout, stderr)),
	}

	uc, err := usecase.NewBootstrap(fetchers, profile, manifest, startDir, root,
		usecase.WithGeneratorArgs(extraArgs...),
		usecase.WithFailFast(fetchCfg.FailFast),
		usecase.WithObserver(func(step model.StepResult) {
			printStep(stdout, step)
		}),
	)
	if err != nil {
		return err
	}

	report, err := uc.Run(ctx, args)
	printSummary(stdout, report)
	return err
}

var (
	colorName    = color.New(color.Bold)
	colorFetched = color.New(color.FgGreen)
	colorSkipped = color.New(color.FgCyan)
	colorNoop    = color.New(color.FgYellow)
	colorFailed  = color.New(color.FgRed, color.Bold)
)

func statusColor(status model.StepStatus) *color.Color {
	switch status {
	case model.StepFetched:
		return colorFetched
	case model.StepSkipped:
		return colorSkipped
	case model.StepNoop:
		return colorNoop
	default:
		return colorFailed
	}
}

func printStep(w io.Writer, step model.StepResult) {
	fmt.Fprintf(w, "%s %s", statusColor(step.Status).Sprintf("%-8s", step.Status), colorName.Sprint(step.Name))
	switch {
	case step.Err != nil:
		fmt.Fprintf(w, ": %v\n", step.Err)
	case step.Detail != "":
		fmt.Fprintf(w, ": %s\n", step.Detail)
	default:
		fmt.Fprintln(w)
	}
}

func printSummary(w io.Writer, report *model.Report) {
	if report == nil {
		return
	}

	counts := map[model.StepStatus]int{}
	for _, s := range report.Steps {
		counts[s.Status]++
	}

	fmt.Fprintf(w, "\n%d fetched, %d skipped, %d manual, %d failed\n",
		counts[model.StepFetched], counts[model.StepSkipped], counts[model.StepNoop], counts[model.StepFailed])

	switch {
	case report.Generator == nil:
		colorFailed.Fprintln(w, "solution not generated")
	case report.Generator.Status == model.StepFailed:
		colorFailed.Fprintln(w, "solution generation failed")
	default:
		colorFetched.Fprintf(w, "solution generated with %s\n", report.Generator.Detail)
	}
}
