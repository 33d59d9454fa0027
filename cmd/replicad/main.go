package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/replicore/internal/config"
	"github.com/l1jgo/replicore/internal/core/event"
	coresys "github.com/l1jgo/replicore/internal/core/system"
	"github.com/l1jgo/replicore/internal/data"
	"github.com/l1jgo/replicore/internal/detect"
	"github.com/l1jgo/replicore/internal/handler"
	gonet "github.com/l1jgo/replicore/internal/net"
	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/persist"
	"github.com/l1jgo/replicore/internal/relay"
	"github.com/l1jgo/replicore/internal/scripting"
	"github.com/l1jgo/replicore/internal/system"
	"github.com/l1jgo/replicore/internal/update"
	"github.com/l1jgo/replicore/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            replicore  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        物件狀態同步 · Go 伺服器           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

// displayWidth counts CJK characters as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > 0x7F {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func printSection(title string) {
	lineLen := max(46-displayWidth(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-displayWidth(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load("config/replicore.toml")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	if stop := startProfile(cfg.Server.Profile); stop != nil {
		defer stop()
	}

	// 3. Optional PostgreSQL snapshot store
	var (
		db        *persist.DB
		snapshots handler.SnapshotStore
	)
	if cfg.Database.Enabled {
		printSection("資料庫")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err = persist.NewDB(ctx, cfg.Database, cfg.Server.Name, log)
		if err == nil {
			err = db.Migrate(ctx)
		}
		cancel()
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		snapshots = persist.NewSnapshotRepo(db)
		printOK("PostgreSQL 連線與遷移完成")
	}

	// 4. Static content and scripts
	printSection("資料載入")
	content, err := data.LoadContent(cfg.Data.Dir, log)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	printStat("生物模板", content.Creatures.Count())
	printStat("模型資料", content.Models.Count())
	printStat("陣營模板", content.Factions.Count())
	printStat("地圖", content.Maps.Count())
	printStat("視線例外", content.LOS.Count())

	scripts, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	defer scripts.Close()
	printStat("物件腳本", scripts.HookCount())

	// 5. Replication stack
	detectCfg, err := cfg.Visibility.DetectConfig()
	if err != nil {
		return fmt.Errorf("visibility config: %w", err)
	}
	parties := world.NewPartyManager()
	rules := world.NewRules(content, parties, scripts)
	worldState := world.NewState()

	manager := world.NewManager(world.Deps{
		Services: update.Services{
			Groups:  parties,
			Loot:    rules,
			Rules:   rules,
			Content: content,
		},
		Options: update.Options{
			AllowTwoSideInteractionGroup: cfg.Visibility.AllowTwoSideGroup,
		},
		Detect: detectCfg,
		DetectDeps: detect.Deps{
			Groups:    parties,
			LOS:       content.Maps,
			Overrides: content.LOS,
			Scripts:   scripts,
			Factions:  rules,
		},
		Sink:       worldState,
		CellSize:   cfg.Replication.CellSize,
		SweepEvery: cfg.Replication.SweepEvery,
	}, cfg.Replication.Workers, log)

	bus := event.NewBus(log)
	event.Subscribe(bus, func(e event.PlayerEntered) {
		log.Debug("事件: 玩家進入", zap.Stringer("guid", e.GUID), zap.Int("online", worldState.PlayerCount()))
	})
	event.Subscribe(bus, func(e event.PlayerLeft) {
		log.Debug("事件: 玩家離開", zap.Stringer("guid", e.GUID), zap.Int("online", worldState.PlayerCount()))
	})
	if cfg.Events.NatsURL != "" {
		pub, err := relay.Connect(cfg.Events, cfg.Server.Name, log)
		if err != nil {
			return fmt.Errorf("event relay: %w", err)
		}
		defer pub.Close()
		pub.Attach(bus)
		printOK(fmt.Sprintf("事件轉發 %s.*", cfg.Events.SubjectPrefix))
	}

	// 6. Packet handlers
	pktReg := packet.NewRegistry[*gonet.Session](log)
	deps := &handler.Deps{
		Config:    cfg,
		Log:       log,
		World:     worldState,
		Manager:   manager,
		Parties:   parties,
		Bus:       bus,
		Maps:      content.Maps,
		Snapshots: snapshots,
	}
	handler.RegisterAll(pktReg, deps)

	// 7. Create network server
	netServer, err := gonet.NewServer(cfg.Network.BindAddress, gonet.ServerOptions{
		InQueueSize:   cfg.Network.InQueueSize,
		OutQueueSize:  cfg.Network.OutQueueSize,
		PacketsPerSec: cfg.Network.MaxPacketsPerSec,
		MaxFrameSize:  cfg.Network.MaxFrameSize,
	}, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()
	if cfg.Network.WebSocketAddress != "" {
		go func() {
			if err := netServer.ServeWebSocket(cfg.Network.WebSocketAddress, cfg.Network.WebSocketPath); err != nil {
				log.Error("WebSocket 服務停止", zap.Error(err))
			}
		}()
	}

	// 8. Create systems and register with runner
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	store := gonet.NewSessionStore()
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, pktReg, store, deps, cfg.Network.MaxPacketsPerTick, log))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewReplicationSystem(loopCtx, manager, cfg.Replication.TickRate, log))
	runner.Register(system.NewOutputSystem(store))
	var persistSys *system.PersistenceSystem
	if snapshots != nil {
		persistSys = system.NewPersistenceSystem(worldState, snapshots, cfg.Replication.SnapshotTick, log)
		runner.Register(persistSys)
	}
	runner.Register(system.NewCleanupSystem(manager, bus, log))

	// 9. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Replication.TickRate)
	defer ticker.Stop()

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", netServer.Addr().String()))
	if cfg.Network.WebSocketAddress != "" {
		printReady(fmt.Sprintf("WebSocket %s%s", cfg.Network.WebSocketAddress, cfg.Network.WebSocketPath))
	}
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s, workers: %d)", cfg.Replication.TickRate, cfg.Replication.Workers))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Replication.TickRate)
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			stopLoop()
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Network.ShutdownTimeout)
			if persistSys != nil {
				if n, err := persistSys.SaveAll(ctx); err != nil {
					log.Error("關閉前存檔失敗", zap.Error(err))
				} else {
					log.Info("關閉前存檔完成", zap.Int("count", n))
				}
			}
			netServer.Shutdown(ctx)
			cancel()
			log.Info("伺服器已停止")
			return nil
		}
	}
}

// startProfile starts a pprof profile in the working directory. The
// returned func writes it out; nil when profiling is off.
func startProfile(mode string) func() {
	var opt func(*profile.Profile)
	switch mode {
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfileAllocs
	case "trace":
		opt = profile.TraceProfile
	default:
		return nil
	}
	return profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook).Stop
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
