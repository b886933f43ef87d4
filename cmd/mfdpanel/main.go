package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/harryz8/XplaneFlightData/internal/store"
	"github.com/harryz8/XplaneFlightData/internal/ui"
)

// httpSource fetches the latest performance record from the calculator
// service.
type httpSource struct {
	baseURL string
	client  *http.Client
}

func (s *httpSource) Latest(ctx context.Context) (store.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/v1/report/latest", nil)
	if err != nil {
		return store.Record{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return store.Record{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return store.Record{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var rec store.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return store.Record{}, err
	}
	return rec, nil
}

func main() {
	// Parse command line flags
	help := flag.Bool("h", false, "Show help message")
	serviceURL := flag.String("service", "http://localhost:8090", "Calculator service URL")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("mfdpanel - Terminal flight performance display")
		fmt.Println("\nUsage: mfdpanel [options]")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		fmt.Println("\nKeys:")
		fmt.Println("  1-7       select page (wind, envelope, energy, glide, turn, vnav, density)")
		fmt.Println("  <- / ->   cycle pages")
		fmt.Println("  [ / ]     adjust course change on the turn page")
		fmt.Println("  up/down   adjust target altitude on the vnav page")
		fmt.Println("  + / -     adjust distance on the vnav page")
		fmt.Println("  q, ESC    quit")
		os.Exit(0)
	}

	source := &httpSource{
		baseURL: *serviceURL,
		client:  &http.Client{Timeout: 2 * time.Second},
	}

	app, err := ui.NewApp(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start panel: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
