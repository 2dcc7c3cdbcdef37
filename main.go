package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wader/ffcountdown/internal/config"
	"github.com/wader/ffcountdown/internal/countdown"
	"github.com/wader/ffcountdown/internal/engine"
	"github.com/wader/ffcountdown/internal/facade"
	"github.com/wader/ffcountdown/internal/gifenc/all"
	"github.com/wader/ffcountdown/internal/goffmpeg"
	"github.com/wader/ffcountdown/internal/iterm2"
	"github.com/wader/ffcountdown/internal/server"
	"github.com/wader/ffcountdown/internal/sink"
	storeall "github.com/wader/ffcountdown/internal/store/all"
)

type moment struct {
	m   countdown.Moment
	set bool
}

func (m *moment) String() string { return m.m.String() }

// [[[dd:]hh:]mm:]ss
func (m *moment) Set(s string) error {
	v, err := countdown.ParseMoment(s)
	if err != nil {
		return err
	}
	m.m = v
	m.set = true
	return nil
}

type size struct {
	width  int
	height int
}

func (s *size) String() string { return fmt.Sprintf("%dx%d", s.width, s.height) }

// WxH, ex: 300x100
func (s *size) Set(v string) error {
	parts := strings.Split(strings.ToLower(v), "x")
	if len(parts) != 2 {
		return fmt.Errorf("invalid size %q", v)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("invalid size %q", v)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("invalid size %q", v)
	}
	s.width, s.height = w, h
	return nil
}

type point struct {
	x int
	y int
}

func (p *point) String() string { return fmt.Sprintf("%d,%d", p.x, p.y) }

func (p *point) Set(v string) error {
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return fmt.Errorf("invalid point %q", v)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("invalid point %q", v)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("invalid point %q", v)
	}
	p.x, p.y = x, y
	return nil
}

var startFlag = moment{m: facade.DefaultStart}
var sizeFlag = size{width: 300, height: 100}
var atFlag = point{}

var bgFlag = flag.String("bg", "", "Background color #RGB, #RRGGBB or #AARRGGBB")
var outFlag = flag.String("o", "", "Output path or s3://bucket/key, default stdout")
var framesFlag = flag.Int("n", facade.DefaultFrames, "Number of frames")
var delayFlag = flag.Int("delay", facade.DefaultDelayMS, "Delay between frames in milliseconds")
var loopFlag = flag.Int("loop", 0, "GIF loop count, 0 is forever")
var configFlag = flag.String("config", "", "Countdown options JSON file")
var encoderFlag = flag.String("e", "auto", "GIF encoder "+strings.Join(all.Names(), ", ")+" or auto")
var textFlag = flag.String("text", "", "Draw text on a still image instead of rendering a countdown")
var fontFlag = flag.String("font", "", `Font descriptor, ex: "Go Mono" bold 24px`)
var fontFileFlag = flag.String("fontfile", "", "TTF/OTF font file")
var colorFlag = flag.String("color", "", "Text color")
var previewFlag = flag.Bool("p", false, "Preview output in iTerm2")
var probeFlag = flag.Bool("probe", false, "Probe output with ffprobe")
var serveFlag = flag.String("serve", "", "Serve HTTP on address, ex: :3002")
var debugFlag = flag.Bool("d", false, "Debug")
var verboseFlag = flag.Bool("v", false, "Verbose")

func verbosef(s string, args ...interface{}) {
	if *verboseFlag {
		fmt.Fprintf(os.Stderr, s, args...)
	}
}

func init() {
	flag.Var(&startFlag, "s", "Start [[[dd:]hh:]mm:]ss")
	flag.Var(&sizeFlag, "size", "Size WxH")
	flag.Var(&atFlag, "at", "Text position x,y")
}

func serve(ctx context.Context, addr string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !*debugFlag && !*verboseFlag {
		lvl, err := cfg.Level()
		if err != nil {
			return err
		}
		logrus.SetLevel(lvl)
	}
	if addr == "" {
		addr = cfg.Listen
	}
	goffmpeg.FFmpegPath = cfg.FFmpeg
	goffmpeg.FFprobePath = cfg.FFprobe

	s, closer, err := storeall.Open(ctx, cfg.Storage, cfg.StoragePath, cfg.DSN)
	if err != nil {
		return err
	}
	defer closer.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           (&server.Server{Store: s, Encoder: cfg.Encoder}).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", addr).Info("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func drawText(ctx context.Context) ([]byte, error) {
	im, err := facade.CreateImage(facade.CreationOptions{
		Width:   sizeFlag.width,
		Height:  sizeFlag.height,
		BgColor: *bgFlag,
	})
	if err != nil {
		return nil, err
	}
	defer im.Close()

	if err := im.DrawText(*textFlag, atFlag.x, atFlag.y, facade.TextOptions{
		Font:     *fontFlag,
		FontFile: *fontFileFlag,
		Color:    *colorFlag,
	}); err != nil {
		return nil, err
	}

	if *outFlag != "" && *outFlag != "-" {
		if err := im.Save(ctx, *outFlag); err != nil {
			return nil, err
		}
		verbosef("%s: %dx%d\n", *outFlag, im.Width(), im.Height())
	}

	buf := &bytes.Buffer{}
	if err := im.Encode(buf, string(engine.PNG)); err != nil {
		return nil, err
	}
	if *outFlag == "-" || (*outFlag == "" && !*previewFlag && !*probeFlag) {
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func countdownOptions() (facade.CountdownOptions, error) {
	var opts facade.CountdownOptions
	if *configFlag != "" {
		bs, err := os.ReadFile(*configFlag)
		if err != nil {
			return facade.CountdownOptions{}, err
		}
		if opts, err = facade.ParseCountdownOptions(bs); err != nil {
			return facade.CountdownOptions{}, fmt.Errorf("%s: %w", *configFlag, err)
		}
	}

	// explicit flags override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "size":
			opts.Width, opts.Height = sizeFlag.width, sizeFlag.height
		case "bg":
			opts.BgColor = *bgFlag
		case "n":
			opts.Frames = *framesFlag
		case "delay":
			opts.Delay = *delayFlag
		case "loop":
			opts.LoopCount = *loopFlag
		case "e":
			opts.Encoder = *encoderFlag
		case "o":
			opts.OutFilePath = *outFlag
		}
	})
	if opts.Width == 0 && opts.Height == 0 {
		opts.Width, opts.Height = sizeFlag.width, sizeFlag.height
	}
	if opts.Start == nil || startFlag.set {
		s := startFlag.m
		opts.Start = &s
	}
	return opts, nil
}

func renderCountdown(ctx context.Context) ([]byte, error) {
	opts, err := countdownOptions()
	if err != nil {
		return nil, err
	}
	path, err := opts.OutPath()
	if err != nil {
		return nil, err
	}

	if path != "" && path != "-" {
		r, err := facade.RenderCountdown(ctx, opts)
		if err != nil {
			return nil, err
		}
		verbosef("%s: %d frames %d bytes (%s)\n", r.Path, r.Frames, r.Size, r.Encoder)
		if (!*previewFlag && !*probeFlag) || sink.IsS3(path) {
			return nil, nil
		}
		return os.ReadFile(path)
	}

	c, err := facade.NewCountdown(opts)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	frames := opts.Frames
	if frames == 0 {
		frames = facade.DefaultFrames
	}
	if err := c.Render(ctx, *opts.Start, frames, buf); err != nil {
		return nil, err
	}
	verbosef("-: %d frames %d bytes (%s)\n", frames, buf.Len(), c.Encoder())
	if path == "-" || (path == "" && !*previewFlag && !*probeFlag) {
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func main() {
	flag.Parse()

	switch {
	case *debugFlag:
		logrus.SetLevel(logrus.DebugLevel)
	case *verboseFlag:
		logrus.SetLevel(logrus.InfoLevel)
	default:
		logrus.SetLevel(logrus.WarnLevel)
	}
	engine.DefaultFonts.DebugLog = facade.DebugPrinter{Entry: logrus.WithField("component", "fonts")}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := func() error {
		if isFlagSet("serve") {
			return serve(ctx, *serveFlag)
		}

		var bs []byte
		var err error
		if *textFlag != "" {
			bs, err = drawText(ctx)
		} else {
			bs, err = renderCountdown(ctx)
		}
		if err != nil {
			return err
		}

		if *probeFlag && bs != nil {
			pr, err := goffmpeg.Probe(ctx, bytes.NewReader(bs))
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s: %s", pr, pr.Duration())
			if s, ok := pr.FirstVideoStream(); ok {
				fmt.Fprintf(os.Stderr, " %dx%d %d frames", s.Width, s.Height, s.Frames())
			}
			fmt.Fprintln(os.Stderr)
		}

		if *previewFlag && bs != nil {
			if !iterm2.IsCompatible(os.Stdout) {
				fmt.Fprintln(os.Stderr, "not iterm2 terminal")
				return nil
			}
			if err := iterm2.File(os.Stdout, bs, iterm2.FileOptions{
				Name:  *outFlag,
				Width: iterm2.Columns(os.Stdout) / 2,
			}); err != nil {
				return err
			}
			fmt.Println()
		}

		return nil
	}(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
