// Command chip16 runs a Chip16 ROM to completion or until the user quits.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/RetroCodeRamen/chip16/internal/audio"
	"github.com/RetroCodeRamen/chip16/internal/cpu"
	"github.com/RetroCodeRamen/chip16/internal/debug"
	"github.com/RetroCodeRamen/chip16/internal/emulator"
	"github.com/RetroCodeRamen/chip16/internal/host"
	"github.com/RetroCodeRamen/chip16/internal/memory"
	"github.com/RetroCodeRamen/chip16/internal/rom"
	"github.com/RetroCodeRamen/chip16/internal/video"
)

func main() {
	romPath := flag.String("rom-path", "", "path to the Chip16 ROM file")
	scale := flag.Int("scale", 3, "display scale (1-6)")
	enableLogging := flag.Bool("log", false, "enable CPU trace logging")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: chip16 --rom-path <path-to-rom>")
		fmt.Fprintln(os.Stderr, "  --rom-path <path>   path to the Chip16 ROM file (required)")
		fmt.Fprintln(os.Stderr, "  --scale <1-6>       display scale (default: 3)")
		fmt.Fprintln(os.Stderr, "  --log               enable CPU trace logging")
		os.Exit(1)
	}
	if *scale < 1 || *scale > 6 {
		fmt.Fprintln(os.Stderr, "Error: scale must be between 1 and 6")
		os.Exit(1)
	}

	if err := run(*romPath, *scale, *enableLogging); err != nil {
		fmt.Fprintf(os.Stderr, "chip16: %v\n", err)
		os.Exit(1)
	}
}

func run(romPath string, scale int, enableLogging bool) error {
	data, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM file: %w", err)
	}

	image, err := rom.Load(data)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	if image.Header != nil && !image.CRCMatched {
		fmt.Fprintln(os.Stderr, "chip16: warning: ROM CRC-32 does not match its header; running anyway")
	}

	mem := memory.New()
	mem.LoadAt(0, image.Data)

	gpu := video.New()
	synth := audio.New()

	var logger *debug.Logger
	var cpuLog cpu.LoggerInterface
	if enableLogging {
		logger = debug.NewLogger(os.Stderr)
		logger.SetComponentEnabled(debug.ComponentCPU, true)
		logger.SetComponentEnabled(debug.ComponentSystem, true)
		logger.SetMinLevel(debug.LogLevelTrace)
		cpuLog = logger
		defer logger.Shutdown()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	c := cpu.New(mem, gpu, synth, rng, cpuLog)
	c.SetEntryPoint(image.StartPC)

	h, err := host.New(scale, synth)
	if err != nil {
		return fmt.Errorf("opening display/audio: %w", err)
	}
	defer h.Close()

	emu := emulator.New(c, mem, gpu, synth, h, h, logger)

	fmt.Println("Chip16")
	fmt.Println("======")
	fmt.Printf("ROM loaded: %s\n", romPath)
	fmt.Printf("Display scale: %dx\n", scale)
	fmt.Println("Controls: W A S D move, G select, H start, J A-button, K B-button, Esc quit")

	return emu.Run()
}
