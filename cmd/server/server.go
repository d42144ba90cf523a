package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"concert-scout/internal/aggregate"
	"concert-scout/internal/auth"
	"concert-scout/internal/config"
	"concert-scout/internal/domain"
	"concert-scout/internal/observability"
	"concert-scout/internal/orchestrator"
	"concert-scout/internal/providers"
	"concert-scout/internal/recommend"
	"concert-scout/internal/spotify"
)

// Server holds the wired pipeline components and the HTTP handlers over them.
type Server struct {
	cfg    *config.Config
	stores *allStores
	logger *log.Logger

	authManager *auth.Manager
	orch        *orchestrator.Orchestrator
	recommender *recommend.Recommender
	hub         *progressHub

	started time.Time

	mu               sync.Mutex
	discoveryRunning bool
	lastRun          time.Time
	runsCompleted    int
	lastResult       *orchestrator.RunResult
}

func newServer(cfg *config.Config, stores *allStores, logger *log.Logger, verbose bool) *Server {
	authManager := auth.NewManager(auth.ManagerOptions{
		Credentials: stores.credentials,
		Identity:    spotify.NewOAuthClient(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.RedirectURI),
	})

	scheduler := aggregate.NewScheduler(aggregate.SchedulerOptions{
		Adapters: []providers.SourceAdapter{
			providers.NewTicketmasterAdapter(cfg.Ticketmaster.APIKey),
			providers.NewSeatGeekAdapter(cfg.SeatGeek.ClientID),
		},
		BatchSize:  cfg.Search.BatchSize,
		BatchDelay: cfg.Search.BatchDelay,
		Logger:     logger,
	})

	return &Server{
		cfg:    cfg,
		stores: stores,
		logger: logger,

		authManager: authManager,
		orch: orchestrator.New(orchestrator.Options{
			Auth:       authManager,
			Catalog:    spotify.NewCatalogClient(),
			Scheduler:  scheduler,
			EventStore: stores.events,
			RunStats:   stores.runStats,
			Verbose:    verbose,
		}),
		recommender: recommend.NewRecommender(recommend.RecommenderOptions{
			Events:      stores.events,
			Preferences: stores.preferences,
			Scorer: recommend.NewScorer(recommend.ScorerOptions{
				ExactMatchPoints:   cfg.Scoring.ExactMatchPoints,
				PartialMatchPoints: cfg.Scoring.PartialMatchPoints,
				TokenMatchPoints:   cfg.Scoring.TokenMatchPoints,
				PopularityWeight:   cfg.Scoring.PopularityWeight,
			}),
		}),
		hub:     newProgressHub(logger),
		started: time.Now(),
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /status", s.handleStatus)

	mux.HandleFunc("POST /api/auth/connect", s.handleAuthConnect)
	mux.HandleFunc("POST /api/auth/disconnect", s.handleAuthDisconnect)
	mux.HandleFunc("GET /api/auth/status", s.handleAuthStatus)

	mux.HandleFunc("POST /api/discover", s.handleDiscover)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/recommendations", s.handleRecommendations)

	mux.HandleFunc("POST /api/preferences", s.handlePreferencePut)
	mux.HandleFunc("POST /api/attendance", s.handleAttendancePut)
	mux.HandleFunc("DELETE /api/attendance", s.handleAttendanceDelete)
	mux.HandleFunc("GET /api/attendance", s.handleAttendanceList)

	mux.HandleFunc("GET /ws/progress", s.hub.HandleWS)

	return mux
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status           string    `json:"status"`
	Uptime           string    `json:"uptime"`
	DiscoveryRunning bool      `json:"discovery_running"`
	RunsCompleted    int       `json:"runs_completed"`
	LastRun          time.Time `json:"last_run,omitempty"`
	LastRunID        string    `json:"last_run_id,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:           "running",
		Uptime:           time.Since(s.started).String(),
		DiscoveryRunning: s.discoveryRunning,
		RunsCompleted:    s.runsCompleted,
		LastRun:          s.lastRun,
	}
	if s.lastResult != nil {
		resp.LastRunID = s.lastResult.RunID
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

type authConnectRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

func (s *Server) handleAuthConnect(w http.ResponseWriter, r *http.Request) {
	var req authConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "user_id and code are required")
		return
	}

	if err := s.authManager.Connect(r.Context(), req.UserID, req.Code); err != nil {
		s.logger.Printf("Auth connect failed for %s: %v", req.UserID, err)
		writeError(w, http.StatusBadGateway, "token exchange failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"connected": true})
}

func (s *Server) handleAuthDisconnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := s.authManager.Disconnect(r.Context(), req.UserID); err != nil {
		writeError(w, http.StatusInternalServerError, "disconnect failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"connected": false})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	connected, err := s.authManager.IsConnected(r.Context(), userID)
	if err != nil {
		s.logger.Printf("Auth status check failed for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "status check failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"connected": connected})
}

type discoverRequest struct {
	UserID      string   `json:"user_id"`
	City        string   `json:"city,omitempty"`
	StateCode   string   `json:"state_code,omitempty"`
	RadiusMiles int      `json:"radius_miles,omitempty"`
	Artists     []string `json:"artists,omitempty"` // skips the catalog harvest when set
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	geo := domain.Geo{
		City:        s.cfg.Search.City,
		StateCode:   s.cfg.Search.StateCode,
		RadiusMiles: s.cfg.Search.RadiusMiles,
	}
	if req.City != "" {
		geo.City = req.City
	}
	if req.StateCode != "" {
		geo.StateCode = req.StateCode
	}
	if req.RadiusMiles > 0 {
		geo.RadiusMiles = req.RadiusMiles
	}

	s.mu.Lock()
	if s.discoveryRunning {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "a discovery run is already in progress")
		return
	}
	s.discoveryRunning = true
	s.mu.Unlock()

	// Runs detach from the request context so a closed connection does not
	// abort the pipeline; progress streams over /ws/progress.
	go s.runDiscovery(context.Background(), req.UserID, geo, req.Artists)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// wsMessage is the envelope broadcast to /ws/progress clients.
type wsMessage struct {
	Type            string `json:"type"` // "progress", "complete", or "error"
	UserID          string `json:"user_id"`
	Batch           int    `json:"batch"`
	TotalBatches    int    `json:"total_batches"`
	ArtistsSearched int    `json:"artists_searched"`
	TotalArtists    int    `json:"total_artists"`
	EventsFound     int    `json:"events_found"`
	RunID           string `json:"run_id,omitempty"`
	UniqueEvents    int    `json:"unique_events"`
	EventsSaved     int    `json:"events_saved"`
	Error           string `json:"error,omitempty"`
}

func (s *Server) runDiscovery(ctx context.Context, userID string, geo domain.Geo, artists []string) {
	defer func() {
		s.mu.Lock()
		s.discoveryRunning = false
		s.lastRun = time.Now()
		s.mu.Unlock()
	}()

	s.logger.Printf("Starting discovery run for %s (%s, %s, %dmi)...", userID, geo.City, geo.StateCode, geo.RadiusMiles)
	start := time.Now()

	onProgress := func(p aggregate.Progress) {
		s.hub.Broadcast(wsMessage{
			Type:            "progress",
			UserID:          userID,
			Batch:           p.Batch,
			TotalBatches:    p.TotalBatches,
			ArtistsSearched: p.ArtistsSearched,
			TotalArtists:    p.TotalArtists,
			EventsFound:     p.EventsFound,
		})
	}

	var result *orchestrator.RunResult
	var err error
	if len(artists) > 0 {
		result, err = s.orch.RunWithArtists(ctx, userID, artists, geo, onProgress)
	} else {
		result, err = s.orch.Run(ctx, userID, geo, onProgress)
	}
	if err != nil {
		s.logger.Printf("Discovery run failed for %s: %v", userID, err)
		s.hub.Broadcast(wsMessage{Type: "error", UserID: userID, Error: err.Error()})
		return
	}

	s.mu.Lock()
	s.runsCompleted++
	s.lastResult = result
	s.mu.Unlock()

	s.logger.Printf("Discovery run %s completed in %v: %d artists, %d unique events, %d saved",
		result.RunID, time.Since(start), result.ArtistsSearched, result.UniqueEvents, result.EventsSaved)

	s.hub.Broadcast(wsMessage{
		Type:            "complete",
		UserID:          userID,
		RunID:           result.RunID,
		ArtistsSearched: result.ArtistsSearched,
		EventsFound:     result.EventsFound,
		UniqueEvents:    result.UniqueEvents,
		EventsSaved:     result.EventsSaved,
	})
}

// EventResponse is the JSON shape for one stored event.
type EventResponse struct {
	ProviderEventID string   `json:"provider_event_id"`
	ArtistName      string   `json:"artist_name"`
	EventName       string   `json:"event_name"`
	VenueName       string   `json:"venue_name"`
	VenueAddress    string   `json:"venue_address,omitempty"`
	City            string   `json:"city"`
	StateCode       string   `json:"state_code"`
	Date            string   `json:"date"`
	Time            string   `json:"time,omitempty"`
	MinPrice        *float64 `json:"min_price,omitempty"`
	MaxPrice        *float64 `json:"max_price,omitempty"`
	TicketURL       string   `json:"ticket_url,omitempty"`
	ImageURL        string   `json:"image_url,omitempty"`
	Source          string   `json:"source"`
	PriorityTier    string   `json:"priority_tier"`
	Popularity      float64  `json:"popularity"`
	Performers      []string `json:"performers,omitempty"`
}

func toEventResponse(e *domain.CanonicalEvent) EventResponse {
	return EventResponse{
		ProviderEventID: e.ProviderEventID,
		ArtistName:      e.ArtistName,
		EventName:       e.EventName,
		VenueName:       e.VenueName,
		VenueAddress:    e.VenueAddress,
		City:            e.City,
		StateCode:       e.StateCode,
		Date:            e.Date,
		Time:            e.Time,
		MinPrice:        e.MinPrice,
		MaxPrice:        e.MaxPrice,
		TicketURL:       e.TicketURL,
		ImageURL:        e.ImageURL,
		Source:          e.Source.String(),
		PriorityTier:    e.PriorityTier,
		Popularity:      e.Popularity,
		Performers:      e.Performers,
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	events, err := s.stores.events.ListAll(r.Context(), userID)
	if err != nil {
		s.logger.Printf("List events failed for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}

	events = recommend.FilterEvents(events, recommend.EventFilter{
		DateFrom:   q.Get("date_from"),
		DateTo:     q.Get("date_to"),
		VenueName:  q.Get("venue"),
		ArtistName: q.Get("artist"),
	})

	switch q.Get("sort") {
	case "", "date":
		recommend.SortEvents(events, recommend.SortDateAsc)
	case "date_desc":
		recommend.SortEvents(events, recommend.SortDateDesc)
	case "artist":
		recommend.SortEvents(events, recommend.SortArtist)
	default:
		writeError(w, http.StatusBadRequest, "sort must be one of date, date_desc, artist")
		return
	}

	resp := make([]EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// RecommendationResponse is one scored event in ranked order.
type RecommendationResponse struct {
	Event EventResponse `json:"event"`
	Score float64       `json:"score"`
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	scored, err := s.recommender.ForUser(r.Context(), userID)
	if err != nil {
		s.logger.Printf("Recommendations failed for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to build recommendations")
		return
	}

	resp := make([]RecommendationResponse, 0, len(scored))
	for _, se := range scored {
		resp = append(resp, RecommendationResponse{Event: toEventResponse(se.Event), Score: se.Score})
	}
	writeJSON(w, http.StatusOK, resp)
}

type preferenceRequest struct {
	UserID     string `json:"user_id"`
	ArtistName string `json:"artist_name"`
	Preference string `json:"preference"`
}

func (s *Server) handlePreferencePut(w http.ResponseWriter, r *http.Request) {
	var req preferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	pref := domain.Preference(req.Preference)
	if req.UserID == "" || req.ArtistName == "" || !pref.IsValid() {
		writeError(w, http.StatusBadRequest, "user_id, artist_name, and preference (liked|disliked) are required")
		return
	}

	err := s.stores.preferences.Upsert(r.Context(), &domain.ArtistPreference{
		UserID:     req.UserID,
		ArtistName: req.ArtistName,
		Preference: pref,
		UpdatedAt:  time.Now().UnixMilli(),
	})
	if err != nil {
		s.logger.Printf("Preference upsert failed for %s: %v", req.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to save preference")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type attendanceRequest struct {
	UserID          string `json:"user_id"`
	ProviderEventID string `json:"provider_event_id"`
	Status          string `json:"status,omitempty"`
}

func (s *Server) handleAttendancePut(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status := domain.AttendanceStatus(req.Status)
	if req.UserID == "" || req.ProviderEventID == "" || !status.IsValid() {
		writeError(w, http.StatusBadRequest, "user_id, provider_event_id, and status (going|interested) are required")
		return
	}

	err := s.stores.attendance.Upsert(r.Context(), &domain.Attendance{
		UserID:          req.UserID,
		ProviderEventID: req.ProviderEventID,
		Status:          status,
		UpdatedAt:       time.Now().UnixMilli(),
	})
	if err != nil {
		s.logger.Printf("Attendance upsert failed for %s: %v", req.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to save attendance")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAttendanceDelete(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.ProviderEventID == "" {
		writeError(w, http.StatusBadRequest, "user_id and provider_event_id are required")
		return
	}

	if err := s.stores.attendance.Delete(r.Context(), req.UserID, req.ProviderEventID); err != nil {
		s.logger.Printf("Attendance delete failed for %s: %v", req.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to delete attendance")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAttendanceList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("user_id")
	status := domain.AttendanceStatus(q.Get("status"))
	if userID == "" || !status.IsValid() {
		writeError(w, http.StatusBadRequest, "user_id and status (going|interested) are required")
		return
	}

	ids, err := s.stores.attendance.ListByStatus(r.Context(), userID, status)
	if err != nil {
		s.logger.Printf("Attendance list failed for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to list attendance")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"provider_event_ids": ids})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
