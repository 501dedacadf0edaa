// Command oxyres loads pipeline, binding-set and scene files through the resource managers,
// logs the issued handles with load statistics, and releases everything.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-resources/config"
	"github.com/Carmen-Shannon/oxy-resources/engine/loader"
	"github.com/Carmen-Shannon/oxy-resources/engine/platform"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/Carmen-Shannon/oxy-resources/engine/resources"
	"github.com/Carmen-Shannon/oxy-resources/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// pathList collects a repeatable path flag.
type pathList []string

func (p *pathList) String() string {
	return strings.Join(*p, ",")
}

func (p *pathList) Set(v string) error {
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*p = append(*p, s)
		}
	}
	return nil
}

type options struct {
	configPath string
	headless   bool
	pipelines  pathList
	bindings   pathList
	scenes     pathList
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "session configuration file (YAML)")
	flag.BoolVar(&opts.headless, "headless", false, "run without a window surface")
	flag.Var(&opts.pipelines, "pipeline", "pipeline file relative to the asset root (repeatable)")
	flag.Var(&opts.bindings, "bindings", "binding-set file relative to the asset root (repeatable)")
	flag.Var(&opts.scenes, "scene", "glTF or GLB scene relative to the asset root (repeatable)")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "oxyres: %v\n", err)
		var cfgErr *resource.ConfigError
		if errors.As(err, &cfgErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	level, depthFormat, err := sessionSettings(cfg)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctxOpts := []renderer.GPUContextBuilderOption{
		renderer.WithLogger(logger),
		renderer.WithForceSoftwareRenderer(cfg.ForceFallbackAdapter),
	}

	var win window.Window
	if !opts.headless && !cfg.Headless {
		w, err := window.NewWindow(
			window.WithTitle(cfg.Window.Title),
			window.WithSize(cfg.Window.Width, cfg.Window.Height))
		if err != nil {
			return err
		}
		defer w.Close()
		win = w
		ctxOpts = append(ctxOpts, renderer.WithSurfaceDescriptor(w.SurfaceDescriptor()))
	}

	ctx := renderer.NewWGPUContext(ctxOpts...)
	defer ctx.Release()

	rm := resources.NewResourceManagers(ctx, platform.NewDirFileSystem(cfg.AssetRoot),
		resources.WithLogger(logger),
		resources.WithPreferPrecompiled(cfg.Prefer()),
		resources.WithDepthFormat(depthFormat),
		resources.WithWorkers(cfg.Workers))
	defer rm.Release()

	width, height := cfg.Window.Width, cfg.Window.Height
	if win != nil {
		width, height = win.Width(), win.Height()
		ctx.ConfigureSurface(width, height)
	}
	depth, err := rm.Textures().CreateDepthTexture("main", uint32(width), uint32(height), rm.DepthFormat())
	if err != nil {
		return err
	}
	logger.Info("depth target", slog.String("handle", depth.String()), slog.Int("width", width), slog.Int("height", height))

	for _, path := range opts.bindings {
		hs, err := rm.LoadBindings(path)
		if err != nil {
			return err
		}
		for i, h := range hs {
			logger.Info("binding set", slog.String("path", path), slog.Int("set", i), slog.String("handle", h.String()))
		}
	}

	var scenes []*loader.Scene
	for _, path := range opts.scenes {
		s, err := rm.LoadScene(path)
		if err != nil {
			return err
		}
		scenes = append(scenes, s)
		logger.Info("scene",
			slog.String("path", path),
			slog.Int("models", len(s.Models)),
			slog.Int("meshes", s.MeshCount()),
			slog.Int("buffers", len(s.Buffers)+len(s.IndexBuffers)))
	}

	for _, path := range opts.pipelines {
		for _, c := range configurations(scenes) {
			h, err := rm.LoadPipeline(path, c)
			if err != nil {
				return err
			}
			logger.Info("pipeline",
				slog.String("path", path),
				slog.Any("index_format", c.IndexFormat),
				slog.String("handle", h.String()))
		}
	}

	rm.Profiler().Report()

	if win != nil {
		win.SetResizeCallback(func(w, h int) {
			ctx.ConfigureSurface(w, h)
			if err := rm.Textures().Resize(depth, uint32(w), uint32(h)); err != nil {
				logger.Error("depth resize failed", slog.Any("error", err))
			}
		})
		win.Run(nil)
	}
	return nil
}

// sessionSettings resolves the log level and default depth format named by cfg.
func sessionSettings(cfg config.Config) (slog.Level, wgpu.TextureFormat, error) {
	level, err := cfg.Level()
	if err != nil {
		return 0, wgpu.TextureFormatUndefined, fmt.Errorf("log_level %q: %w", cfg.LogLevel, err)
	}
	depthFormat, err := cfg.DepthFormat()
	if err != nil {
		return 0, wgpu.TextureFormatUndefined, fmt.Errorf("default_depth_format %q: %w", cfg.DefaultDepthFormat, err)
	}
	return level, depthFormat, nil
}

// configurations returns one pipeline configuration per distinct mesh layout in scenes, or
// the default configuration when no scene was loaded.
func configurations(scenes []*loader.Scene) []pipeline.Configuration {
	var out []pipeline.Configuration
	seen := make(map[pipeline.Configuration]bool)
	for _, s := range scenes {
		for _, m := range s.Models {
			for _, mesh := range m.Meshes() {
				c := pipeline.ConfigurationForMesh(mesh)
				if !seen[c] {
					seen[c] = true
					out = append(out, c)
				}
			}
		}
	}
	if len(out) == 0 {
		out = append(out, pipeline.DefaultConfiguration())
	}
	return out
}
