package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/nats-io/nats.go"

	"github.com/joeblew999/plat-photomap/internal/api"
	"github.com/joeblew999/plat-photomap/internal/api/mapview"
	"github.com/joeblew999/plat-photomap/internal/bridge"
	"github.com/joeblew999/plat-photomap/internal/browsermap"
	"github.com/joeblew999/plat-photomap/internal/db"
	"github.com/joeblew999/plat-photomap/internal/humastar"
	"github.com/joeblew999/plat-photomap/internal/logger"
	"github.com/joeblew999/plat-photomap/internal/metrics"
	"github.com/joeblew999/plat-photomap/internal/notify"
	"github.com/joeblew999/plat-photomap/internal/photomap"
	"github.com/joeblew999/plat-photomap/internal/service"
	"github.com/joeblew999/plat-photomap/internal/templates"
	"github.com/joeblew999/plat-photomap/internal/thumbnail"
)

// Config holds the server configuration.
type Config struct {
	Host         string
	Port         string
	DataDir      string // empty keeps photo records in memory
	WebDir       string // Path to web/ directory for static files, page and fragments
	NATSURL      string // empty disables NATS notifications
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

// Server is the photo map HTTP server.
type Server struct {
	config   Config
	log      *slog.Logger
	mux      *http.ServeMux
	humaAPI  huma.API
	links    *humastar.Links
	db       *sql.DB
	nc       *nats.Conn
	bus      *service.EventBus
	loop     *photomap.Loop
	services *api.Services
	renderer *templates.Renderer

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// errNoStore is returned for metadata when the photo store is unavailable.
var errNoStore = errors.New("photo store unavailable")

type noStore struct{}

func (noStore) ImageMetadata(context.Context, int64) (photomap.Metadata, error) {
	return photomap.Metadata{}, errNoStore
}

// New creates a new photo map server. Call Start before serving requests.
func New(cfg Config) (*Server, error) {
	log := logger.Or(cfg.Logger)
	mux := http.NewServeMux()

	links := humastar.NewLinks("/health")

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-photomap API", "1.0.0")
	humaConfig.Info.Description = "Photo map API: markers, photo popups, trail arrows and the host bridge."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, links.Transformer())

	humaAPI := humago.New(mux, humaConfig)

	renderer, err := templates.New(fragmentsDir(cfg.WebDir))
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	s := &Server{
		config:   cfg,
		log:      log,
		mux:      mux,
		humaAPI:  humaAPI,
		links:    links,
		bus:      service.NewEventBusSize(64),
		loop:     photomap.NewLoop(64),
		renderer: renderer,
		done:     make(chan struct{}),
	}

	var metadata photomap.MetadataSource = noStore{}
	var photos *service.PhotoService
	conn, err := db.Open(context.Background(), db.Config{
		DataDir: cfg.DataDir,
		DBName:  "photomap",
		Logger:  log,
	})
	if err != nil {
		log.Warn("photo store unavailable", "error", err)
	} else {
		s.db = conn
		photos = service.NewPhotoService(conn, thumbnail.LoadBadges(cfg.WebDir), log)
		metadata = photos
	}

	var notifiers notify.Multi
	if photos != nil {
		// saved before the host hears of the drag
		notifiers = append(notifiers, notify.NewStore(photos, 0, log))
	}
	notifiers = append(notifiers, notify.NewBus(s.bus), notify.Logging{Log: log})
	if cfg.NATSURL != "" {
		nc, err := notify.Connect(cfg.NATSURL)
		if err != nil {
			log.Warn("nats unavailable, host notifications stay local", "url", cfg.NATSURL, "error", err)
		} else {
			s.nc = nc
			notifiers = append(notifiers, notify.NewNATS(nc, "", log))
		}
	}

	engine := photomap.NewEngine(photomap.Options{
		Map:          browsermap.New(s.bus, browsermap.DefaultView),
		Metadata:     metadata,
		Notifier:     notifiers,
		Renderer:     templates.Popups{R: renderer},
		Scheduler:    s.loop,
		Logger:       log,
		FetchTimeout: cfg.FetchTimeout,
	})
	svc := photomap.NewService(s.loop, engine)

	s.services = &api.Services{
		Map:    svc,
		Photos: photos,
		Bridge: bridge.New(svc, log),
	}

	s.routes()
	return s, nil
}

func fragmentsDir(webDir string) string {
	if webDir == "" {
		return ""
	}
	return filepath.Join(webDir, "templates", "fragments")
}

// Start runs the map engine loop until ctx is done or Close is called.
func (s *Server) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go func() {
		defer close(s.done)
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("map loop stopped", "error", err)
		}
	}()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Services exposes the wired services, mainly for tests.
func (s *Server) Services() *api.Services {
	return s.services
}

// Close stops the loop and releases the database and NATS connection.
func (s *Server) Close() error {
	var err error
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
			<-s.done
		}
		s.loop.Wait()
		if s.nc != nil {
			if derr := s.nc.Drain(); derr != nil {
				err = errors.Join(err, derr)
			}
		}
		if s.db != nil {
			err = errors.Join(err, s.db.Close())
		}
	})
	return err
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(s.services))
	api.NewInfoHandler(s.config.DataDir, s.db != nil, s.nc != nil).RegisterRoutes(s.humaAPI)

	// Datastar and host SSE streams
	mapview.NewHandler(s.services.Map, s.bus, s.renderer, s.log).RegisterRoutes(s.humaAPI)
	mapview.NewHostEvents(s.bus).RegisterRoutes(s.humaAPI)

	s.links.Generate(s.humaAPI)

	s.mux.Handle("/metrics", metrics.Handler())

	// Static files and the map page
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}
	s.mux.HandleFunc("/map", s.handleMap)
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	for _, link := range s.links.For("/health") {
		w.Header().Add("Link", link)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-photomap",
		"status":  "running",
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	page := filepath.Join(s.config.WebDir, "templates", "map.html")
	if _, err := os.Stat(page); err != nil {
		http.Error(w, "map page not installed", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, page)
}
