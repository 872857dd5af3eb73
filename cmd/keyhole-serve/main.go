package main

import (
	"flag"
	"log"

	"github.com/chazu/keyhole/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	quiet := flag.Bool("quiet", false, "disable the access log")
	ppm := flag.Float64("ppm", 10, "png preview resolution in pixels per mm")
	flag.Parse()

	cfg := server.DefaultConfig()
	cfg.AccessLog = !*quiet
	cfg.PNG.PixelsPerMM = *ppm

	s, err := server.New(cfg)
	if err != nil {
		log.Fatalf("keyhole-serve: %v", err)
	}
	log.Printf("keyhole-serve: listening on %s", *addr)
	if err := s.Router().Run(*addr); err != nil {
		log.Fatalf("keyhole-serve: %v", err)
	}
}
