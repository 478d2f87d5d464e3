package main

import (
	"context"
	"flag"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"PicRenUtil/internal/config"
	"PicRenUtil/internal/form"
	"PicRenUtil/internal/logger"
	"PicRenUtil/internal/logstore"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.LogDirectory)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer lg.Close()

	store := logstore.New(cfg.LogFile, lg)
	ctrl := form.New(store, lg, cfg.LogPassword)
	if err := ctrl.Reload(); err != nil {
		// start with zero totals rather than refusing to open
		lg.Error("initial reload failed: %v", err)
	}

	a := app.NewWithID("com.picrenutil.picturerename")
	w := a.NewWindow("Picture_Rename")
	w.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	w.SetFixedSize(true)

	ui := newRenameUI(a, w, ctrl, cfg)
	w.SetContent(ui.build())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Watch {
		err := store.Watch(ctx, func() {
			fyne.Do(ui.reloadTotals)
		})
		if err != nil {
			lg.Warning("log watcher disabled: %v", err)
		}
	}

	w.ShowAndRun()
}
