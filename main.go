package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/veandco/go-sdl2/sdl"

	"reelplay/pkg/config"
	"reelplay/pkg/input"
	"reelplay/pkg/logging"
	"reelplay/pkg/medialib"
	"reelplay/pkg/overlay"
	"reelplay/pkg/player"
	"reelplay/pkg/present"
	"reelplay/pkg/ui"
)

const (
	targetFPS      = 60
	fallbackWidth  = 1920
	fallbackHeight = 1080
)

func main() {
	// SDL wants window, renderer and event calls on the thread that ran
	// sdl.Init; pin it before anything else happens.
	runtime.LockOSThread()

	_ = godotenv.Load() // .env is optional

	logging.Configure(logging.Config{Level: os.Getenv("REELPLAY_LOG_LEVEL")})
	log := logging.WithComponent("main")

	cfg := config.Load()

	path, err := pickVideo(log)
	if err != nil {
		log.Fatal().Err(err).Msg("no video to play")
	}

	if err := initSDL(log); err != nil {
		log.Fatal().Err(err).Msg("sdl init failed")
	}
	defer sdl.Quit()

	screenW, screenH := displaySize(log)
	window, err := sdl.CreateWindow("reelplay", 0, 0, screenW, screenH,
		sdl.WINDOW_SHOWN|sdl.WINDOW_FULLSCREEN)
	if err != nil {
		log.Fatal().Err(err).Msg("window creation failed")
	}
	defer window.Destroy()

	renderer, err := createRenderer(window, log)
	if err != nil {
		log.Fatal().Err(err).Msg("renderer creation failed")
	}
	defer renderer.Destroy()
	renderer.SetDrawBlendMode(sdl.BLENDMODE_BLEND)

	fonts, err := ui.LoadFonts()
	if err != nil {
		log.Warn().Err(err).Msg("fonts unavailable, overlay text disabled")
		fonts = nil
	} else {
		defer fonts.Close()
	}

	p := player.New(path, cfg)
	defer p.Dispose()
	if err := p.Play(); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("playback failed to start")
	}

	filter := present.FilterNearest
	if os.Getenv("REELPLAY_FILTER") == "linear" {
		filter = present.FilterLinear
	}
	texture, err := present.NewTexture(renderer, p.Buffer(), filter)
	if err != nil {
		log.Fatal().Err(err).Msg("texture creation failed")
	}
	defer texture.Destroy()

	log.Info().
		Str("path", path).
		Int32("width", screenW).
		Int32("height", screenH).
		Msg("starting playback")

	runLoop(p, texture, renderer, input.NewControls(cfg), overlay.New(fonts), screenW, screenH, log)

	log.Info().Msg("shutting down")
}

// pickVideo resolves what to play: an explicit argument wins; otherwise the
// media library is synced (when configured) and the first cached video is
// used.
func pickVideo(log zerolog.Logger) (string, error) {
	if len(os.Args) > 1 {
		return os.Args[1], nil
	}

	dir := os.Getenv("REELPLAY_MEDIA_DIR")
	if dir == "" {
		dir = "assets/videos"
	}

	lib, err := medialib.FromEnv()
	if err != nil {
		return "", err
	}
	if lib != nil {
		videos, err := lib.Sync(context.Background())
		if err != nil {
			return "", err
		}
		if len(videos) == 0 {
			return "", fmt.Errorf("library synced but empty: s3 prefix holds no videos")
		}
		return videos[0], nil
	}

	videos, err := medialib.LocalVideos(dir)
	if err != nil {
		return "", err
	}
	if len(videos) == 0 {
		return "", fmt.Errorf("no videos in %s and no library configured", dir)
	}
	log.Debug().Int("count", len(videos)).Str("dir", dir).Msg("local videos found")
	return videos[0], nil
}

// initSDL tries video drivers in order until one initializes. The
// environment's SDL_VIDEODRIVER is honoured first; the fallback chain covers
// the Pi's KMS/DRM path down to the dummy driver.
func initSDL(log zerolog.Logger) error {
	var drivers []string
	if env := os.Getenv("SDL_VIDEODRIVER"); env != "" {
		drivers = []string{env}
	} else if runtime.GOOS == "darwin" {
		drivers = []string{"cocoa", "software", "dummy"}
	} else {
		drivers = []string{"kmsdrm", "x11", "wayland", "software", "dummy"}
	}

	for _, driver := range drivers {
		sdl.Quit()
		os.Setenv("SDL_VIDEODRIVER", driver)
		sdl.SetHint(sdl.HINT_VIDEO_MINIMIZE_ON_FOCUS_LOSS, "0")

		if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
			log.Warn().Str("driver", driver).Err(err).Msg("video driver failed")
			continue
		}
		active, _ := sdl.GetCurrentVideoDriver()
		log.Info().Str("driver", active).Msg("sdl initialized")
		return nil
	}
	return fmt.Errorf("no usable sdl video driver")
}

func displaySize(log zerolog.Logger) (int32, int32) {
	mode, err := sdl.GetCurrentDisplayMode(0)
	if err != nil {
		log.Warn().Err(err).Msg("display mode unavailable, using fallback size")
		return fallbackWidth, fallbackHeight
	}
	return mode.W, mode.H
}

// createRenderer prefers hardware acceleration and falls back to the
// software renderer when the driver cannot provide it.
func createRenderer(window *sdl.Window, log zerolog.Logger) (*sdl.Renderer, error) {
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err == nil {
		return renderer, nil
	}
	log.Warn().Err(err).Msg("accelerated renderer unavailable, trying software")
	return sdl.CreateRenderer(window, -1, sdl.RENDERER_SOFTWARE)
}

// runLoop is the render loop: poll events, apply input, advance playback,
// upload and draw the current frame, then pace to the target frame rate.
func runLoop(p *player.Player, texture *present.Texture, renderer *sdl.Renderer,
	controls *input.Controls, hud *overlay.Overlay, screenW, screenH int32, log zerolog.Logger) {

	frameBudget := time.Second / targetFPS
	monitor := p.Monitor()
	last := time.Now()

	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			if _, ok := event.(*sdl.QuitEvent); ok {
				return
			}
		}

		tickStart := time.Now()
		dt := tickStart.Sub(last)
		last = tickStart

		keyState := sdl.GetKeyboardState()
		mouseX, mouseY, mouseState := sdl.GetMouseState()
		timeline := sdl.Rect{}
		if controls.OverlayVisible() {
			timeline = hud.TimelineRect(screenW, screenH)
		}
		if controls.Apply(p, keyState, input.Mouse{X: mouseX, Y: mouseY, State: mouseState}, timeline) {
			return
		}

		p.Tick(dt)

		uploadStart := time.Now()
		if _, err := texture.Upload(); err != nil {
			log.Warn().Err(err).Msg("frame upload failed")
		}
		monitor.RecordUpload(time.Since(uploadStart))

		renderer.SetDrawColor(0, 0, 0, 255)
		renderer.Clear()
		if err := texture.Draw(renderer, screenW, screenH); err != nil {
			log.Warn().Err(err).Msg("frame draw failed")
		}
		if controls.OverlayVisible() {
			hud.Draw(renderer, p.Diagnostics(), monitor.GetReport(), screenW, screenH)
		}
		renderer.Present()

		monitor.RecordTick(time.Since(tickStart))
		if sleep := frameBudget - time.Since(tickStart); sleep > 0 {
			time.Sleep(sleep)
		}
	}
}
