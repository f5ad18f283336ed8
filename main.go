package main

import (
	"flag"
	"log"
	"strings"

	"menuqr/config"
	"menuqr/database"
	"menuqr/logger"
	"menuqr/middleware"
	"menuqr/router"
	"menuqr/service"

	"go.uber.org/zap"
)

// @title menuqr API
// @version 1.0
// @description Digital menus with QR codes for restaurants: owner dashboard API and public menu pages
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "external config file (optional)")
	flag.StringVar(&configFile, "c", "", "external config file (shorthand)")
	flag.StringVar(&port, "port", "", "listen port, e.g. 8080 or :8080")
	flag.StringVar(&port, "p", "", "listen port (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&showVersion, "v", false, "print version (shorthand)")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Println("menuqr v1.0.0")
		return
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Printf("port from command line: %s", port)
	}

	config.PrintConfig()

	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	l := logger.L()

	if err := database.Init(cfg); err != nil {
		l.Fatal("init database", zap.Error(err))
	}

	middleware.InitJWT(cfg)

	assets, err := service.NewDiskAssetStore(cfg.Storage.Root, cfg.Storage.PublicPrefix)
	if err != nil {
		l.Fatal("init asset store", zap.Error(err))
	}

	r := router.SetupRouter(cfg, assets)

	l.Info("menuqr started",
		zap.String("addr", cfg.Server.Port),
		zap.String("base_url", cfg.Server.BaseURL),
		zap.String("swagger", "http://localhost"+cfg.Server.Port+"/swagger/index.html"))

	if err := r.Run(cfg.Server.Port); err != nil {
		l.Fatal("server stopped", zap.Error(err))
	}
}
