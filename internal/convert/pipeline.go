package convert

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"nc2bin/internal/extract"
	"nc2bin/internal/fileutil"
	"nc2bin/internal/legacy"
	"nc2bin/internal/logging"
	"nc2bin/internal/manifest"
	"nc2bin/internal/source"
	"nc2bin/internal/source/netcdf"
)

var (
	// ErrInputNotFound reports an input path that does not exist or is not a regular file.
	ErrInputNotFound = errors.New("input not found")
	// ErrOutputDirLocked reports an output directory held by another conversion.
	ErrOutputDirLocked = errors.New("output directory locked")
	// ErrOutputExists reports an output file that already exists while overwrite is disabled.
	ErrOutputExists = errors.New("output file exists")
)

// lockDirName is the directory under os.TempDir holding output directory locks.
const lockDirName = "nc2bin-locks"

// Recorder persists run history. manifest.Store satisfies it.
type Recorder interface {
	StartRun(ctx context.Context, run manifest.Run) error
	AddOutput(ctx context.Context, out manifest.Output) error
	FinishRun(ctx context.Context, run manifest.Run) error
}

// Options configures a Pipeline.
type Options struct {
	// OutputDir overrides the product default output directory when set. It must exist.
	OutputDir string
	// Opener defaults to the netCDF adapter.
	Opener             source.Opener
	Logger             *slog.Logger
	Recorder           Recorder
	Overwrite          bool
	HeaderAttribute    string
	StartTimeAttribute string
	LockOutputDir      bool
}

// Pipeline converts inputs one at a time.
type Pipeline struct {
	opts      Options
	opener    source.Opener
	logger    *slog.Logger
	extractor extract.Extractor
}

// New builds a pipeline from opts.
func New(opts Options) *Pipeline {
	opener := opts.Opener
	if opener == nil {
		opener = netcdf.Open
	}
	logger := logging.NewComponentLogger(opts.Logger, "convert")
	return &Pipeline{
		opts:   opts,
		opener: opener,
		logger: logger,
		extractor: extract.Extractor{
			HeaderAttribute: opts.HeaderAttribute,
			Logger:          logger,
		},
	}
}

// Run converts input and writes every field it holds. The returned report is
// never nil.
func (p *Pipeline) Run(ctx context.Context, input string) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Input: input, State: StateStart}
	ctx = logging.WithRunID(ctx, report.RunID)
	ctx = logging.WithInput(ctx, input)

	started := time.Now()
	p.recordStart(ctx, report)
	err := p.run(ctx, report)
	if err != nil {
		p.transition(ctx, report, StateFailed)
		logging.WithContext(ctx, p.logger).Error("conversion failed", logging.Error(err))
	} else {
		p.transition(ctx, report, StateDone, logging.Duration("elapsed", time.Since(started)))
	}
	p.recordFinish(ctx, report, err)
	return report, err
}

func (p *Pipeline) run(ctx context.Context, report *Report) error {
	input := report.Input
	desc, err := p.identify(input)
	if err != nil {
		return err
	}
	report.Product = desc
	ctx = logging.WithProduct(ctx, string(desc.ID))
	p.transition(ctx, report, StateProductIdentified)

	ds, err := p.opener(input, source.Raw)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil {
			logging.WithContext(ctx, p.logger).Warn("close dataset failed", logging.Error(cerr))
		}
	}()

	meta, err := legacy.ResolveMetadata(desc, input, extract.Hints(ds, p.opts.StartTimeAttribute))
	if err != nil {
		return err
	}
	report.Metadata = meta
	p.transition(ctx, report, StateMetadataParsed,
		logging.String("date", meta.Date),
		logging.String("hemisphere", meta.Hemisphere.String()),
		logging.String("version", meta.Version),
	)

	report.OutputDir = p.outputDir(desc)
	if p.opts.LockOutputDir {
		unlock, err := lockDir(report.OutputDir)
		if err != nil {
			return err
		}
		defer unlock()
	}

	candidates := p.extractor.Candidates(desc, ds)
	if len(candidates) == 0 {
		logging.WarnWithAlert(logging.WithContext(ctx, p.logger), "no fields found", "no_fields")
	}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.convertField(ctx, report, ds, c); err != nil {
			if errors.Is(err, extract.ErrMissingFieldVariable) {
				report.Skipped = append(report.Skipped, Skip{Candidate: c, Reason: err.Error()})
				logging.WarnWithAlert(logging.WithContext(ctx, p.logger), "field skipped", "missing_field",
					logging.String("variable", c.String()),
					logging.Error(err),
				)
				continue
			}
			return err
		}
	}
	return nil
}

func (p *Pipeline) convertField(ctx context.Context, report *Report, ds source.Dataset, c extract.Candidate) error {
	desc := report.Product
	field, err := p.extractor.Read(ds, desc, c)
	if err != nil {
		return err
	}
	p.transition(ctx, report, StateFieldExtracted,
		logging.String("variable", c.String()),
		logging.Any("shape", field.Array.Shape),
		logging.Any("header", field.Header),
	)

	name, err := legacy.Name(desc, report.Metadata, c.Satellite, c.Channel)
	if err != nil {
		return err
	}
	data, err := legacy.Encode(field.Array.Data, desc.PayloadType, field.Header)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c, err)
	}
	p.transition(ctx, report, StateFieldEncoded, logging.String("variable", c.String()))

	path := filepath.Join(report.OutputDir, name)
	sum, err := writeOutput(path, data, p.opts.Overwrite)
	if err != nil {
		return err
	}
	out := Output{Candidate: c, Path: path, Bytes: len(data), SHA256: sum}
	report.Written = append(report.Written, out)
	p.transition(ctx, report, StateFieldWritten, logging.String("variable", c.String()))

	attrs := []logging.Attr{
		logging.String("path", path),
		logging.String("satellite", c.Satellite),
	}
	if c.Channel != "" {
		attrs = append(attrs, logging.String("channel", c.Channel))
	}
	attrs = append(attrs, logging.Int("bytes", len(data)))
	logging.WithContext(ctx, p.logger).Info("Wrote", logging.Args(attrs...)...)
	p.recordOutput(ctx, report, out)
	return nil
}

// Plan resolves the product, metadata and output names for input without
// reading any field data or writing anything.
func (p *Pipeline) Plan(ctx context.Context, input string) (*Plan, error) {
	desc, err := p.identify(input)
	if err != nil {
		return nil, err
	}
	ds, err := p.opener(input, source.Raw)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", input, err)
	}
	defer ds.Close()

	meta, err := legacy.ResolveMetadata(desc, input, extract.Hints(ds, p.opts.StartTimeAttribute))
	if err != nil {
		return nil, err
	}

	plan := &Plan{Input: input, Product: desc, Metadata: meta, OutputDir: p.outputDir(desc)}
	for _, c := range p.extractor.Candidates(desc, ds) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, err := legacy.Name(desc, meta, c.Satellite, c.Channel)
		if err != nil {
			return nil, err
		}
		plan.Outputs = append(plan.Outputs, PlannedOutput{Candidate: c, Path: filepath.Join(plan.OutputDir, name)})
	}
	return plan, nil
}

func (p *Pipeline) identify(input string) (legacy.Descriptor, error) {
	info, err := os.Stat(input)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return legacy.Descriptor{}, fmt.Errorf("%w: %s", ErrInputNotFound, input)
	case err != nil:
		return legacy.Descriptor{}, fmt.Errorf("stat %s: %w", input, err)
	case !info.Mode().IsRegular():
		return legacy.Descriptor{}, fmt.Errorf("%w: %s is not a regular file", ErrInputNotFound, input)
	}
	return legacy.Identify(input)
}

func (p *Pipeline) outputDir(desc legacy.Descriptor) string {
	if dir := strings.TrimSpace(p.opts.OutputDir); dir != "" {
		return dir
	}
	return desc.DefaultOutputDir
}

func (p *Pipeline) transition(ctx context.Context, report *Report, next State, attrs ...logging.Attr) {
	prev := report.State
	report.State = next
	attrs = append(attrs, logging.String("from", string(prev)), logging.String("to", string(next)))
	logging.WithContext(ctx, p.logger).Debug("state transition", logging.Args(attrs...)...)
}

// LockPath returns the lock file guarding output directory dir. Locks live
// under os.TempDir so the output directory only ever holds legacy files.
func LockPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output directory %s: %w", dir, err)
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(os.TempDir(), lockDirName, hex.EncodeToString(sum[:8])+".lock"), nil
}

func lockDir(dir string) (func(), error) {
	path, err := LockPath(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("lock output directory %s: %w", dir, err)
	}
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock output directory %s: %w", dir, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrOutputDirLocked, dir)
	}
	return func() { _ = lock.Unlock() }, nil
}

func writeOutput(path string, data []byte, overwrite bool) (string, error) {
	sum, err := fileutil.WriteFileMode(path, data, 0o644, !overwrite)
	switch {
	case errors.Is(err, fs.ErrExist):
		return "", fmt.Errorf("%w: %s", ErrOutputExists, path)
	case err != nil:
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	return sum, nil
}

func (p *Pipeline) recordStart(ctx context.Context, report *Report) {
	if p.opts.Recorder == nil {
		return
	}
	err := p.opts.Recorder.StartRun(ctx, manifest.Run{
		RunID:     report.RunID,
		Input:     absPath(report.Input),
		StartedAt: time.Now(),
	})
	p.warnRecorder(ctx, "start run", err)
}

func (p *Pipeline) recordOutput(ctx context.Context, report *Report, out Output) {
	if p.opts.Recorder == nil {
		return
	}
	err := p.opts.Recorder.AddOutput(ctx, manifest.Output{
		RunID:     report.RunID,
		Path:      absPath(out.Path),
		Satellite: out.Satellite,
		Channel:   out.Channel,
		Variable:  out.Variable,
		Bytes:     int64(out.Bytes),
		SHA256:    out.SHA256,
	})
	p.warnRecorder(ctx, "record output", err)
}

func (p *Pipeline) recordFinish(ctx context.Context, report *Report, runErr error) {
	if p.opts.Recorder == nil {
		return
	}
	run := manifest.Run{
		RunID:      report.RunID,
		Input:      absPath(report.Input),
		Product:    string(report.Product.ID),
		Date:       report.Metadata.Date,
		Version:    report.Metadata.Version,
		FinishedAt: time.Now(),
		Status:     manifest.StatusSucceeded,
		Skipped:    len(report.Skipped),
	}
	if report.OutputDir != "" {
		run.OutputDir = absPath(report.OutputDir)
	}
	if report.Metadata.Hemisphere != 0 {
		run.Hemisphere = report.Metadata.Hemisphere.String()
	}
	if runErr != nil {
		run.Status = manifest.StatusFailed
		run.Error = runErr.Error()
	}
	// The run may be cancelled; the final state is still recorded.
	p.warnRecorder(ctx, "finish run", p.opts.Recorder.FinishRun(context.WithoutCancel(ctx), run))
}

// absPath anchors recorded paths so the manifest stays valid from any
// working directory.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func (p *Pipeline) warnRecorder(ctx context.Context, op string, err error) {
	if err == nil {
		return
	}
	logging.WarnWithAlert(logging.WithContext(ctx, p.logger), "manifest update failed", "manifest",
		logging.String("operation", op),
		logging.Error(err),
	)
}
