// Package pipeline wires the scorevid stages together: render the
// score, extract the spatial and temporal descriptions, align them,
// and generate the video. Every stage is synchronous and hands its
// output forward exactly once.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"scorevid/align"
	"scorevid/annot"
	"scorevid/classify"
	"scorevid/config"
	"scorevid/frame"
	"scorevid/model"
	"scorevid/noteindex"
	"scorevid/render"
	"scorevid/timeline"
)

// Pipeline runs the full score-to-video conversion.
type Pipeline struct {
	cfg    *config.Config
	log    *slog.Logger
	runner *render.Runner
}

func New(cfg *config.Config, log *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		log:    log,
		runner: &render.Runner{Log: log},
	}
}

// Analysis is everything the synchronization core produces before any
// frame is rendered.
type Analysis struct {
	Workdir     *render.Workdir
	Tools       *render.ToolSet
	Source      *render.SourceInfo
	MIDIPath    string
	Images      []string
	ImageWidth  int
	Timeline    *timeline.Timeline
	Classes     map[model.SourceLocation]classify.Classified
	PageIndices []*noteindex.PageIndex
	Aligned     *align.Result
}

// Analyze renders the score and runs extraction, classification,
// indexing and alignment. The caller owns the returned working
// directory.
func (p *Pipeline) Analyze(ctx context.Context, input string) (*Analysis, error) {
	tools, err := render.Probe(ctx, p.runner, p.cfg.Tools)
	if err != nil {
		return nil, err
	}
	p.log.Info("found collaborator tools", "lilypond", tools.LilyPondVersion)

	wd, err := render.NewWorkdir(p.cfg.WorkRoot)
	if err != nil {
		return nil, err
	}
	// on failure the scratch directory must not be left behind; on
	// success the caller owns it
	analyzed := false
	defer func() {
		if !analyzed {
			p.cleanup(wd)
		}
	}()

	scorePath, err := p.prepareScore(ctx, wd, input, tools)
	if err != nil {
		return nil, err
	}

	previewPath, err := render.GeneratePreview(ctx, p.runner, tools.LilyPond, wd.Root, scorePath)
	if err != nil {
		return nil, err
	}
	staffLines, err := render.StaffLines(previewPath, p.log)
	if err != nil {
		return nil, err
	}
	p.log.Info("counted staff lines", "lines", staffLines)

	sanitisedPath := wd.Path("sanitised.ly")
	info, err := render.Sanitize(scorePath, sanitisedPath, render.SanitizeOptions{
		Width:           p.cfg.Video.Width,
		Height:          p.cfg.Video.Height,
		StaffLines:      staffLines,
		LilyPondVersion: tools.LilyPondVersion,
	}, p.log)
	if err != nil {
		return nil, err
	}

	if err := render.RenderScore(ctx, p.runner, tools.LilyPond, wd.Root, sanitisedPath); err != nil {
		return nil, err
	}

	images, err := render.CollectPageImages(wd.Root, p.log)
	if err != nil {
		return nil, err
	}
	imageWidth, err := render.ImageWidth(images[0])
	if err != nil {
		return nil, err
	}
	p.log.Info("collected page rasters", "pages", len(images), "width", imageWidth)

	midiPath := wd.Path("sanitised.midi")
	if p.cfg.Beatmap != "" {
		adjusted := wd.Path("sanitised-adjusted.midi")
		if err := render.ApplyBeatmap(ctx, p.runner, p.cfg.Tools.MidiRubato, midiPath, adjusted, p.cfg.Beatmap); err != nil {
			return nil, err
		}
		midiPath = adjusted
	}

	rule, err := timeline.ParseEndOfTrackRule(p.cfg.Timeline.EndOfTrack)
	if err != nil {
		return nil, err
	}
	tl, err := timeline.ExtractFile(midiPath, rule)
	if err != nil {
		return nil, err
	}
	p.log.Info("extracted timeline",
		"ticks", len(tl.Ticks), "tempos", len(tl.Tempos), "terminal", tl.Terminal)
	if tl.Truncated > 0 {
		p.log.Warn("a track ends before the last note; later notes were discarded",
			"ticks", tl.Truncated, "terminal", tl.Terminal)
	}

	srcLines, err := readLines(sanitisedPath)
	if err != nil {
		return nil, err
	}

	annotations, err := annot.Extract(wd.Path("sanitised.pdf"), sanitisedPath, srcLines)
	if err != nil {
		return nil, err
	}

	kept, classes, err := classify.Run(annotations.Pages, srcLines)
	if err != nil {
		return nil, err
	}

	pageIndices := noteindex.Build(kept, classes, imageWidth, annotations.PageWidth, p.log)

	aligned, err := align.New(classes, p.log).Run(pageIndices, tl)
	if err != nil {
		return nil, err
	}

	analyzed = true
	return &Analysis{
		Workdir:     wd,
		Tools:       tools,
		Source:      info,
		MIDIPath:    midiPath,
		Images:      images,
		ImageWidth:  imageWidth,
		Timeline:    tl,
		Classes:     classes,
		PageIndices: pageIndices,
		Aligned:     aligned,
	}, nil
}

// Run performs the complete conversion into the output video file.
func (p *Pipeline) Run(ctx context.Context, input, output string) error {
	a, err := p.Analyze(ctx, input)
	if err != nil {
		return err
	}
	defer p.cleanup(a.Workdir)

	planner := &frame.Planner{
		Resolution: a.Timeline.Resolution,
		Tempos:     a.Timeline.Tempos,
		FPS:        p.cfg.Video.FPS,
	}
	plan, err := planner.Plan(a.Aligned.Pages, a.Aligned.Ticks)
	if err != nil {
		return err
	}
	p.log.Info("planned cursor frames", "frames", plan.Total, "dropped", plan.Dropped)

	notesDir, err := a.Workdir.Subdir("notes")
	if err != nil {
		return err
	}
	cursor, known := frame.CursorColor(p.cfg.Video.CursorColor)
	if !known {
		p.log.Warn("unknown cursor color, using red", "color", p.cfg.Video.CursorColor)
	}
	renderer := &frame.Renderer{
		Width:  p.cfg.Video.Width,
		Height: p.cfg.Video.Height,
		Cursor: cursor,
		OutDir: notesDir,
		Log:    p.log,
	}
	if _, err := renderer.Render(plan, a.Images); err != nil {
		return err
	}

	job := render.VideoJob{
		FramesPattern: filepath.Join(notesDir, "frame%d.png"),
		FPS:           p.cfg.Video.FPS,
		Output:        output,
		ScratchDir:    a.Workdir.Root,
	}

	if p.cfg.Title.Enabled {
		titleDir, err := a.Workdir.Subdir("title")
		if err != nil {
			return err
		}
		title, composer := a.Source.Title, a.Source.Composer
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		}
		if _, err := render.TitleFrames(titleDir, title, composer,
			p.cfg.Video.Width, p.cfg.Video.Height,
			p.cfg.Video.FPS, p.cfg.Title.Seconds, p.log); err != nil {
			return err
		}
		silencePath := a.Workdir.Path("silence.wav")
		if err := render.WriteSilenceWAV(silencePath, p.cfg.Title.Seconds); err != nil {
			return err
		}
		job.TitlePattern = filepath.Join(titleDir, "frame%d.png")
		job.TitleWAV = silencePath
	}

	wavPath, err := render.SynthesizeWAV(ctx, p.runner, a.Tools.TiMidity, a.MIDIPath)
	if err != nil {
		return err
	}
	job.WAVPath = wavPath

	if err := render.EncodeVideo(ctx, p.runner, a.Tools.FFmpeg, job); err != nil {
		return err
	}
	p.log.Info("video assembled", "output", output)
	return nil
}

// prepareScore converts the input to the installed LilyPond's syntax
// when the versions differ. Conversion failure is recoverable: the
// original is used unchanged.
func (p *Pipeline) prepareScore(ctx context.Context, wd *render.Workdir, input string, tools *render.ToolSet) (string, error) {
	version, err := render.SourceVersion(input)
	if err != nil {
		return "", err
	}
	if version == tools.LilyPondVersion {
		return copyFile(input, wd.Path("score.ly"))
	}

	converted := wd.Path("converted.ly")
	if err := render.ConvertVersion(ctx, p.runner, p.cfg.Tools.ConvertLy, input, converted); err != nil {
		p.log.Warn("convert-ly failed, using the score unconverted", "error", err)
		return copyFile(input, wd.Path("score.ly"))
	}
	return converted, nil
}

func (p *Pipeline) cleanup(wd *render.Workdir) {
	if p.cfg.KeepWorkDir {
		p.log.Info("left working files in place", "dir", wd.Root)
		return
	}
	if err := wd.Remove(); err != nil {
		p.log.Warn("could not remove working directory", "dir", wd.Root, "error", err)
	}
}

func copyFile(src, dst string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	return dst, nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return strings.Split(string(data), "\n"), nil
}
