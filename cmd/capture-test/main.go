// capture-test opens a source and measures delivered frame rate.
//
// Usage: capture-test [source]
// where source is a device index ("0") or a stream URL; defaults to
// PLATEWATCH_SOURCE.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/platewatch/go-platewatch/internal/config"
	"github.com/platewatch/go-platewatch/internal/log"
	"github.com/platewatch/go-platewatch/pkg/capture"
)

func main() {
	log.Init(config.LogLevel())

	raw := config.Source()
	if len(os.Args) > 1 {
		raw = os.Args[1]
	}
	src := capture.ParseSource(raw)

	fmt.Println("📹 Capture FPS Test")
	fmt.Println("===================")
	fmt.Printf("Source: %s\n\n", src)

	backend, err := capture.NewBackend(capture.BackendAuto, log.L())
	if err != nil {
		fmt.Printf("❌ Backend init failed: %v\n", err)
		os.Exit(1)
	}

	var (
		frames atomic.Uint64
		failed = make(chan error, 1)
	)

	consumer := capture.ConsumerFuncs{
		Frame: func(f capture.Frame) {
			if frames.Add(1) == 1 {
				fmt.Printf("First frame: %dx%d, %d channels\n",
					f.Width, f.Height, f.Channels)
			}
		},
		Error: func(err error) {
			select {
			case failed <- err:
			default:
			}
		},
	}

	session := capture.NewSession(capture.DefaultConfig(), backend, consumer, log.L())
	hints := capture.Hints{
		Width:  config.Width(),
		Height: config.Height(),
		FPS:    config.FPS(),
	}
	if err := session.Start(src, hints); err != nil {
		fmt.Printf("❌ Start failed: %v\n", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("\n🎬 Measuring frame rate (Ctrl+C to stop)...")
	start := time.Now()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			elapsed := time.Since(start).Seconds()
			n := frames.Load()
			fmt.Printf("\r📷 Frames: %d | FPS: %.2f | Dropped: %d    ",
				n, float64(n)/elapsed, session.Stats().FramesDropped)

		case err := <-failed:
			fmt.Printf("\n❌ Capture failed: %v\n", err)
			session.Stop()
			os.Exit(1)

		case <-sigCh:
			session.Stop()
			elapsed := time.Since(start).Seconds()
			n := frames.Load()
			fmt.Printf("\n\n📊 Final: %d frames in %.1fs = %.2f fps\n",
				n, elapsed, float64(n)/elapsed)
			return
		}
	}
}
