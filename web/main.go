package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/glimmer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes", "scenes", "Directory of JSON scene configs")
	staticDir := flag.String("static", "", "Directory of static files served at / (empty = API only)")
	flag.Parse()

	webServer := server.NewServer(*port, *scenesDir, *staticDir)

	log.Printf("Glimmer Web Server")
	log.Printf("API available at http://localhost:%d/api/scenes", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
