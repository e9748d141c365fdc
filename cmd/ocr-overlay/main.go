package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ivlev/ocr-overlay/internal/config"
	"github.com/ivlev/ocr-overlay/internal/detector"
	"github.com/ivlev/ocr-overlay/internal/engine"
	"github.com/ivlev/ocr-overlay/internal/source"
	"github.com/ivlev/ocr-overlay/internal/system"
	"github.com/ivlev/ocr-overlay/internal/viewer"
)

func main() {
	log.SetFlags(log.LstdFlags)

	configPtr := flag.String("config", "", "Путь к YAML-конфигу")
	envPtr := flag.String("env", "", "Путь к .env (по умолчанию: ./.env, если есть)")
	inputPtr := flag.String("input", "", "Путь к папке с изображениями, файлу изображения или PDF")
	detectorPtr := flag.String("detector", "", "Распознаватель: textract, tesseract")
	profilePtr := flag.String("profile", "", "Профиль AWS")
	regionPtr := flag.String("region", "", "Регион AWS")
	dpiPtr := flag.Int("dpi", 0, "DPI")
	langPtr := flag.String("lang", "", "Языки tesseract через запятую")
	noViewPtr := flag.Bool("no-view", false, "Не открывать размеченные изображения")
	wordEndOnlyPtr := flag.Bool("word-end-only", false, "Красный маркер конца только для блоков WORD")
	statsPtr := flag.Bool("stats", false, "Печатать отчет о прогоне в конце")

	flag.Parse()

	cfg, err := config.Load(config.LoadOptions{EnvFile: *envPtr, ConfigFile: *configPtr})
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}

	// флаги перекрывают значения из файлов и окружения
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *inputPtr
		case "detector":
			cfg.Detector = *detectorPtr
		case "profile":
			cfg.Profile = *profilePtr
		case "region":
			cfg.Region = *regionPtr
		case "dpi":
			cfg.DPI = *dpiPtr
		case "lang":
			cfg.Languages = config.SplitList(*langPtr)
		case "no-view":
			cfg.NoView = *noViewPtr
		case "word-end-only":
			cfg.WordEndOnly = *wordEndOnlyPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		}
	})
	if cfg.InputPath == "" && flag.NArg() > 0 {
		cfg.InputPath = flag.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := source.Open(cfg.InputPath, cfg.DPI)
	if err != nil {
		log.Fatalf("[-] Source error: %v", err)
	}
	defer src.Close()

	det, err := detector.New(ctx, cfg)
	if err != nil {
		log.Fatalf("[-] Detector error: %v", err)
	}

	var v viewer.Viewer = viewer.Nop{}
	if !cfg.NoView {
		argv, err := system.DefaultViewerCommand()
		if err != nil {
			log.Printf("[!] %v; размеченные изображения не будут показаны", err)
		} else {
			v = viewer.NewSystem(argv)
		}
	}

	if cfg.Detector == "" || strings.EqualFold(cfg.Detector, config.DefaultDetector) {
		log.Printf("[*] Профиль: %s | Регион: %s", cfg.Profile, cfg.Region)
	}
	log.Printf("[*] %s", system.MemoryReport())

	project := engine.NewProject(cfg, src, det, v)
	summary, err := project.Run(ctx)
	if err != nil {
		log.Fatalf("[-] Run error: %v", err)
	}

	fmt.Printf("[+++] Готово! Страниц: %d, блоков: %d, ошибок: %d\n", len(summary.Outcomes), summary.Blocks, summary.Failed)
}
