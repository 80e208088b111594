package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/groundwork-dev/groundwork/pkg/domain/interfaces"
	"github.com/groundwork-dev/groundwork/pkg/domain/model"
	"github.com/groundwork-dev/groundwork/pkg/domain/platform"
	"github.com/groundwork-dev/groundwork/pkg/domain/types"
	"github.com/groundwork-dev/groundwork/pkg/utils/workdir"
)

const (
	// VulkanSDKEnv is set by the Vulkan SDK installer
	VulkanSDKEnv = "VULKAN_SDK"

	premakeDir    = "premake"
	premakeBinary = "premake5"
	vulkanDir     = "vulkan-sdk"
	sdl2Dir       = "sdl2"
)

// Fetchers bundles the infrastructure used by the bootstrap
type Fetchers struct {
	Downloader interfaces.Downloader
	Extractor  interfaces.Extractor
	Cloner     interfaces.Cloner
	Runner     interfaces.ProcessRunner
}

// Observer is called after every finished step
type Observer func(step model.StepResult)

type options struct {
	lookupEnv     func(string) (string, bool)
	generatorArgs []string
	failFast      bool
	observer      Observer
}

// Option is a functional option for the bootstrap use case
type Option func(*options)

// WithLookupEnv replaces os.LookupEnv
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(o *options) {
		o.lookupEnv = fn
	}
}

// WithGeneratorArgs appends extra arguments after the premake action
func WithGeneratorArgs(args ...string) Option {
	return func(o *options) {
		o.generatorArgs = args
	}
}

// WithFailFast stops the run at the first failed step
func WithFailFast(enabled bool) Option {
	return func(o *options) {
		o.failFast = enabled
	}
}

// WithObserver sets a callback receiving every step result
func WithObserver(fn Observer) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// Bootstrap fetches the third-party dependencies of the project and runs
// premake on it
type Bootstrap struct {
	fetchers Fetchers
	profile  platform.Profile
	manifest *model.Manifest
	root     string // project root holding the third-party directory
	startDir string // directory premake runs in
	opts     options
}

var _ interfaces.BootstrapUseCase = (*Bootstrap)(nil)

// NewBootstrap creates the orchestrator. root is resolved against startDir
// when relative.
func NewBootstrap(fetchers Fetchers, profile platform.Profile, manifest *model.Manifest, startDir, root string, opts ...Option) (*Bootstrap, error) {
	if err := manifest.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid manifest")
	}

	startDir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to resolve start directory")
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(startDir, root)
	}

	o := options{lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(&o)
	}

	return &Bootstrap{
		fetchers: fetchers,
		profile:  profile,
		manifest: manifest,
		root:     filepath.Clean(root),
		startDir: startDir,
		opts:     o,
	}, nil
}

// ThirdPartyDir returns the absolute path of the dependency container
func (b *Bootstrap) ThirdPartyDir() string {
	return filepath.Join(b.root, b.manifest.ThirdPartyDir)
}

// PremakeExecutable returns the absolute path of the premake binary
func (b *Bootstrap) PremakeExecutable() string {
	return filepath.Join(b.ThirdPartyDir(), premakeDir, b.profile.Executable(premakeBinary))
}

// Run fetches every dependency, returns to the start directory and generates
// the solution. A failed fetch step does not stop later steps unless fail
// fast is enabled.
func (b *Bootstrap) Run(ctx context.Context, args []string) (*model.Report, error) {
	logger := ctxlog.From(ctx)
	report := &model.Report{}

	logger.Info("Starting bootstrap",
		"platform", b.profile.Platform(),
		"root", b.root,
		"thirdparty", b.ThirdPartyDir(),
	)

	aborted, err := b.fetchAll(ctx, report)
	if err != nil {
		return report, err
	}
	if aborted {
		logger.Warn("Aborting after first failure, solution not generated")
		return report, report.Err()
	}

	gen := b.GenerateSolution(ctx, args)
	b.record(ctx, &gen)
	report.Generator = &gen

	return report, report.Err()
}

// fetchAll runs the fetch steps from inside the project root
func (b *Bootstrap) fetchAll(ctx context.Context, report *model.Report) (aborted bool, err error) {
	scope, err := b.ChangeBuildPath(ctx, b.root)
	if err != nil {
		return false, err
	}
	defer func() {
		if closeErr := scope.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	steps := []func(context.Context) model.StepResult{
		func(ctx context.Context) model.StepResult { return b.DownloadPremake(ctx, b.manifest.Premake.Version) },
		func(ctx context.Context) model.StepResult { return b.DownloadVulkan(ctx, b.manifest.Vulkan.Version) },
		func(ctx context.Context) model.StepResult { return b.DownloadSDL2(ctx, b.manifest.SDL2.Version) },
	}
	for _, repo := range b.manifest.Repositories {
		steps = append(steps, func(ctx context.Context) model.StepResult { return b.CloneRepository(ctx, repo) })
	}

	for _, step := range steps {
		result := step(ctx)
		b.record(ctx, &result)
		report.Add(result)
		if result.Status == model.StepFailed && b.opts.failFast {
			return true, nil
		}
	}
	return false, nil
}

// ChangeBuildPath enters path; the returned scope restores the previous
// working directory when closed.
func (b *Bootstrap) ChangeBuildPath(ctx context.Context, path string) (*workdir.Scope, error) {
	scope, err := workdir.Enter(path)
	if err != nil {
		return nil, err
	}
	ctxlog.From(ctx).Debug("Changed build path", "from", scope.Previous(), "to", path)
	return scope, nil
}

// DownloadPremake fetches and unpacks the premake release for the platform
func (b *Bootstrap) DownloadPremake(ctx context.Context, version string) model.StepResult {
	const name = "premake"
	exe := b.PremakeExecutable()
	if exists(exe) {
		return skipped(name, exe)
	}

	recipe := b.profile.Premake(version)
	if recipe.Kind != model.RecipeFetch {
		return failed(name, goerr.Wrap(types.ErrUnsupportedPlatform, "no premake release for platform",
			goerr.V("platform", b.profile.Platform())))
	}

	dir := filepath.Join(b.ThirdPartyDir(), premakeDir)
	archive := filepath.Join(dir, recipe.FileName)
	if _, err := b.fetchers.Downloader.Download(ctx, recipe.URL, archive); err != nil {
		return failed(name, err)
	}
	if _, err := b.fetchers.Extractor.Decompress(ctx, archive, dir); err != nil {
		discardArchive(ctx, archive, err)
		return failed(name, err)
	}
	if !exists(exe) {
		return failed(name, goerr.Wrap(types.ErrMissingInput, "premake archive does not contain the executable",
			goerr.V("archive", archive), goerr.V("executable", exe)))
	}

	return model.StepResult{Name: name, Status: model.StepFetched, Detail: exe}
}

// DownloadVulkan fetches and launches the Vulkan SDK installer where the
// platform has one
func (b *Bootstrap) DownloadVulkan(ctx context.Context, version string) model.StepResult {
	const name = "vulkan-sdk"
	recipe := b.profile.Vulkan(version)
	if recipe.Kind != model.RecipeFetch {
		return noop(name, recipe)
	}

	if sdk, ok := b.opts.lookupEnv(VulkanSDKEnv); ok && sdk != "" {
		return model.StepResult{Name: name, Status: model.StepSkipped, Detail: fmt.Sprintf("%s is set to %s", VulkanSDKEnv, sdk)}
	}

	installer := filepath.Join(b.ThirdPartyDir(), vulkanDir, recipe.FileName)
	wasPresent, err := b.fetchers.Downloader.Download(ctx, recipe.URL, installer)
	if err != nil {
		return failed(name, err)
	}
	if wasPresent {
		return model.StepResult{Name: name, Status: model.StepSkipped,
			Detail: fmt.Sprintf("installer already downloaded, run %s if the SDK is not installed", installer)}
	}

	if err := b.fetchers.Runner.Launch(ctx, installer); err != nil {
		return failed(name, err)
	}
	return model.StepResult{Name: name, Status: model.StepFetched,
		Detail: fmt.Sprintf("installer launched, open a new shell once it completes so %s is set", VulkanSDKEnv)}
}

// DownloadSDL2 fetches the prebuilt SDL2 development libraries. The unpacked
// sdl2 folder marks the step as done; the archive alone does not.
func (b *Bootstrap) DownloadSDL2(ctx context.Context, version string) model.StepResult {
	const name = "sdl2"
	recipe := b.profile.SDL2(version)
	if recipe.Kind != model.RecipeFetch {
		return noop(name, recipe)
	}

	dir := filepath.Join(b.ThirdPartyDir(), sdl2Dir)
	final := filepath.Join(dir, sdl2Dir)
	if exists(final) {
		return skipped(name, final)
	}

	archive := filepath.Join(dir, recipe.FileName)
	if _, err := b.fetchers.Downloader.Download(ctx, recipe.URL, archive); err != nil {
		return failed(name, err)
	}
	if _, err := b.fetchers.Extractor.Decompress(ctx, archive, dir); err != nil {
		discardArchive(ctx, archive, err)
		return failed(name, err)
	}

	extracted := filepath.Join(dir, "SDL2-"+version)
	if !exists(extracted) {
		return failed(name, goerr.Wrap(types.ErrMissingInput, "extracted SDL2 folder not found",
			goerr.V("archive", archive), goerr.V("expected", extracted)))
	}
	if err := os.Rename(extracted, final); err != nil {
		return failed(name, goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to rename SDL2 folder",
			goerr.V("from", extracted), goerr.V("to", final)))
	}

	return model.StepResult{Name: name, Status: model.StepFetched, Detail: final}
}

// CloneRepository clones one source dependency into the third-party directory
func (b *Bootstrap) CloneRepository(ctx context.Context, repo model.Repository) model.StepResult {
	dir := filepath.Join(b.ThirdPartyDir(), filepath.FromSlash(repo.Name))
	wasPresent, err := b.fetchers.Cloner.Clone(ctx, repo.URL, dir, repo.Ref)
	if err != nil {
		return failed(repo.Name, err)
	}
	if wasPresent {
		return skipped(repo.Name, dir)
	}
	return model.StepResult{Name: repo.Name, Status: model.StepFetched, Detail: fmt.Sprintf("%s@%s", repo.URL, repo.Ref)}
}

// GenerateSolution runs premake with the action given on the command line,
// or the platform default when there is not exactly one argument.
func (b *Bootstrap) GenerateSolution(ctx context.Context, args []string) model.StepResult {
	const name = "solution"

	action := b.profile.DefaultGenerator()
	if len(args) == 1 {
		action = args[0]
	}

	exe := b.PremakeExecutable()
	if !exists(exe) {
		return failed(name, goerr.Wrap(types.ErrMissingInput, "premake executable not found", goerr.V("executable", exe)))
	}

	cmdArgs := append([]string{action}, b.opts.generatorArgs...)
	if err := b.fetchers.Runner.Run(ctx, b.startDir, exe, cmdArgs...); err != nil {
		return failed(name, goerr.Wrap(err, "failed to generate solution", goerr.V("action", action)))
	}

	return model.StepResult{Name: name, Status: model.StepFetched, Detail: action}
}

func (b *Bootstrap) record(ctx context.Context, step *model.StepResult) {
	logger := ctxlog.From(ctx)
	if step.Status == model.StepFailed {
		logger.Error("Step failed", "dependency", step.Name, "error", step.Err)
	} else {
		logger.Debug("Step finished", "dependency", step.Name, "status", step.Status, "detail", step.Detail)
	}
	if b.opts.observer != nil {
		b.opts.observer(*step)
	}
}

// discardArchive removes a downloaded archive that could not be read, such as
// an error page served with status 200, so the next run downloads it again.
func discardArchive(ctx context.Context, archive string, err error) {
	if !errors.Is(err, types.ErrUnsupportedArchive) {
		return
	}
	logger := ctxlog.From(ctx)
	if rmErr := os.Remove(archive); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		logger.Warn("Failed to remove unreadable archive", "archive", archive, "error", rmErr)
		return
	}
	logger.Info("Removed unreadable archive", "archive", archive)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func skipped(name, path string) model.StepResult {
	return model.StepResult{Name: name, Status: model.StepSkipped, Detail: path + " already exists"}
}

func noop(name string, recipe model.Recipe) model.StepResult {
	return model.StepResult{Name: name, Status: model.StepNoop, Detail: recipe.Message}
}

func failed(name string, err error) model.StepResult {
	return model.StepResult{Name: name, Status: model.StepFailed, Err: goerr.Wrap(err, "dependency step failed", goerr.V("dependency", name))}
}
