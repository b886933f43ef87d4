package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/harryz8/XplaneFlightData/internal/store"
)

// Source supplies the latest performance record, typically from the
// calculator service's HTTP API.
type Source interface {
	Latest(ctx context.Context) (store.Record, error)
}

// staleAfter marks the display as stale when no fresh record arrives.
const staleAfter = 2 * time.Second

// App is the main panel controller
type App struct {
	screen tcell.Screen
	source Source

	mu     sync.Mutex
	latest store.Record
	fresh  bool

	page         Page
	courseChange float64
	vnavTarget   float64
	vnavDistance float64

	quit   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates a new panel application
func NewApp(source Source) (*App, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}

	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		screen:       screen,
		source:       source,
		page:         PageWind,
		courseChange: 90,
		vnavTarget:   10000,
		vnavDistance: 30,
		quit:         make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}

	return app, nil
}

// Run starts the panel main loop
func (a *App) Run() error {
	defer a.cleanup()

	go a.poll()

	ticker := time.NewTicker(100 * time.Millisecond) // 10 FPS
	defer ticker.Stop()

	for {
		select {
		case <-a.quit:
			return nil

		case <-ticker.C:
			a.render()

		default:
			if a.screen.HasPendingEvent() {
				ev := a.screen.PollEvent()
				if !a.handleEvent(ev) {
					return nil // Quit requested
				}
			}
		}
	}
}

// poll fetches records from the source on a fixed interval
func (a *App) poll() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(a.ctx, time.Second)
			rec, err := a.source.Latest(ctx)
			cancel()

			a.mu.Lock()
			if err == nil {
				a.latest = rec
				a.fresh = true
			}
			a.mu.Unlock()
		}
	}
}

// snapshot returns the latest record and whether it is still current
func (a *App) snapshot() (store.Record, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.fresh {
		return a.latest, false
	}
	return a.latest, time.Since(a.latest.Timestamp) < staleAfter
}

// render draws the current page to the screen
func (a *App) render() {
	a.screen.Clear()

	rec, current := a.snapshot()
	drawHeader(a.screen, a.page, !current)

	switch a.page {
	case PageWind:
		drawWindPage(a.screen, rec)
	case PageEnvelope:
		drawEnvelopePage(a.screen, rec)
	case PageEnergy:
		drawEnergyPage(a.screen, rec)
	case PageGlide:
		drawGlidePage(a.screen, rec)
	case PageTurn:
		drawTurnPage(a.screen, rec, a.courseChange)
	case PageVNAV:
		drawVNAVPage(a.screen, rec, a.vnavTarget, a.vnavDistance)
	case PageDensity:
		drawDensityPage(a.screen, rec)
	}

	a.screen.Show()
}

// handleEvent processes keyboard events
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape:
			close(a.quit)
			return false

		case tcell.KeyLeft:
			a.page = (a.page + pageCount - 1) % pageCount

		case tcell.KeyRight:
			a.page = (a.page + 1) % pageCount

		case tcell.KeyUp:
			if a.page == PageVNAV {
				a.vnavTarget += 1000
			}

		case tcell.KeyDown:
			if a.page == PageVNAV {
				a.vnavTarget -= 1000
			}

		case tcell.KeyRune:
			switch r := ev.Rune(); r {
			case 'q', 'Q':
				close(a.quit)
				return false

			case '1', '2', '3', '4', '5', '6', '7':
				a.page = Page(r - '1')

			case '[':
				if a.page == PageTurn && a.courseChange > 10 {
					a.courseChange -= 10
				}

			case ']':
				if a.page == PageTurn && a.courseChange < 180 {
					a.courseChange += 10
				}

			case '+', '=':
				if a.page == PageVNAV {
					a.vnavDistance += 5
				}

			case '-', '_':
				if a.page == PageVNAV && a.vnavDistance > 5 {
					a.vnavDistance -= 5
				}
			}
		}

	case *tcell.EventResize:
		a.screen.Sync()
	}

	return true
}

// cleanup performs cleanup before exit
func (a *App) cleanup() {
	if a.cancel != nil {
		a.cancel()
	}

	if a.screen != nil {
		a.screen.Fini()
	}
}
