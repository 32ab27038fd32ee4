package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"phototriage/catalog"
	"phototriage/logging"
	"phototriage/metadata"
	"phototriage/scanner"
	"phototriage/server"
	"phototriage/signalhandler"
	"phototriage/thumbnail"
	"phototriage/utils"
)

const defaultPort = 8590

func main() {
	signalhandler.SetupHandler()

	args := utils.ParseArguments()

	if _, ok := args["help"]; ok {
		utils.PrintUsage()
		return
	}

	// Setup logging
	debugMode := false
	if _, ok := args["debug"]; ok {
		debugMode = true
	}
	logPath := "phototriage.log"
	if customLogPath, ok := args["logfile"]; ok && customLogPath != "" {
		logPath = customLogPath
	}
	if err := logging.SetupLogger(logPath, debugMode); err != nil {
		fmt.Printf("Warning: Failed to setup logging: %v\n", err)
	} else if debugMode {
		fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
	}
	defer logging.CloseLogger()

	// Validate the startup folder if one was given
	if root, ok := args["root"]; ok && root != "" {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				log.Fatalf("Root path does not exist: %s", root)
			}
			log.Fatalf("Cannot access root path: %s (%v)", root, err)
		}
		if !info.IsDir() {
			log.Fatalf("Root path is not a directory: %s", root)
		}
	}

	port := defaultPort
	if portStr, ok := args["port"]; ok {
		p, err := utils.ParsePort(portStr)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		port = p
	}

	workers := signalhandler.GetOptimalProcs()
	if workersStr, ok := args["workers"]; ok {
		if n, err := strconv.Atoi(workersStr); err == nil && n > 0 {
			workers = n
		} else {
			fmt.Printf("Warning: Invalid workers value %q, using %d\n", workersStr, workers)
		}
	}

	extList := scanner.DefaultExtensions
	if custom, ok := args["extensions"]; ok && custom != "" {
		extList = custom
	}
	extensions := scanner.ParseExtensions(extList)
	if len(extensions) == 0 {
		log.Fatalf("Error: extension list %q contains no usable extensions", extList)
	}

	cachePath := utils.GetDefaultCachePath()
	if custom, ok := args["cache"]; ok {
		if custom == "off" {
			cachePath = ""
		} else if custom != "" {
			cachePath = custom
		}
	}

	// Start the exiftool pool
	gateway, err := metadata.NewGateway(workers)
	if err != nil {
		log.Fatalf("Error starting exiftool (is it installed and on PATH?): %v", err)
	}
	signalhandler.OnShutdown(gateway.Close)

	// Open the thumbnail renderer and its cache
	renderer, err := thumbnail.NewRenderer(cachePath)
	if err != nil {
		log.Fatalf("Error opening thumbnail cache: %v", err)
	}
	signalhandler.OnShutdown(renderer.Close)

	store := catalog.NewStore(&server.Gateways{Meta: gateway, Extensions: extensions}, workers)
	signalhandler.OnShutdown(store.Close)
	session := catalog.NewSession(store)

	app := server.New(session, renderer)
	signalhandler.OnShutdown(func() { app.Shutdown() })

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	fmt.Printf("PhotoTriage listening on http://%s/", addr)
	if root, ok := args["root"]; ok && root != "" {
		fmt.Printf("?path=%s", root)
	}
	fmt.Println()
	logging.LogInfo("Listening on %s (workers=%d, extensions=%s)", addr, workers, extList)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
