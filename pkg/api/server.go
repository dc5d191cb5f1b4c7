// Package api exposes the week store over HTTP and JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/grid"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/week"
)

// Prefix is the path every store route lives under.
const Prefix = "/api/v1"

// Options configures a Server.
type Options struct {
	API app.API
	// Secret enables bearer token auth. Empty serves the default user.
	Secret    string
	Location  *time.Location
	WeekStart time.Weekday
	Clock     lifecal.Clock
	Log       *zap.Logger
	Metrics   *Metrics
}

// Server routes HTTP requests to an app.API.
type Server struct {
	api       app.API
	tokens    *Tokens
	loc       *time.Location
	weekStart time.Weekday
	clock     lifecal.Clock
	log       *zap.Logger
	metrics   *Metrics
	router    *mux.Router
}

// New builds the server and its routes.
func New(opts Options) *Server {
	s := &Server{
		api:       opts.API,
		loc:       opts.Location,
		weekStart: opts.WeekStart,
		clock:     opts.Clock,
		log:       opts.Log,
		metrics:   opts.Metrics,
	}
	if opts.Secret != "" {
		s.tokens = NewTokens(opts.Secret)
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.clock == nil {
		s.clock = lifecal.RealClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(requestID, s.metrics.middleware, s.logRequests)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found", Code: http.StatusNotFound})
	})

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix(Prefix).Subrouter()
	v1.Use(Authenticate(s.tokens, s.log))
	v1.HandleFunc("/user", s.getUser).Methods(http.MethodGet)
	v1.HandleFunc("/user/birthdate", s.updateBirthdate).Methods(http.MethodPut)
	v1.HandleFunc("/weeks", s.getAllWeeks).Methods(http.MethodGet)
	v1.HandleFunc("/weeks/{week:[0-9]+}", s.getWeek).Methods(http.MethodGet)
	v1.HandleFunc("/weeks/{week:[0-9]+}", s.upsertWeekData).Methods(http.MethodPatch)
	v1.HandleFunc("/weeks/{week:[0-9]+}/journal", s.upsertJournal).Methods(http.MethodPut)
	v1.HandleFunc("/weeks/{week:[0-9]+}/reminders", s.updateReminders).Methods(http.MethodPut)
	v1.HandleFunc("/grid", s.getGrid).Methods(http.MethodGet)
	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Tokens returns the token manager, or nil when auth is disabled.
func (s *Server) Tokens() *Tokens { return s.tokens }

// Serve listens on addr until ctx is cancelled. onListen, when set, receives
// the bound address.
func (s *Server) Serve(ctx context.Context, addr string, onListen func(net.Addr)) error {
	if addr == "" {
		addr = "127.0.0.1:8080"
	}
	httpSrv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if onListen != nil {
		onListen(ln.Addr())
	}
	s.log.Info("api listening", zap.String("addr", ln.Addr().String()), zap.Bool("auth", s.tokens != nil))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	err = httpSrv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Code  int    `json:"code"`
}

type journalRequest struct {
	JournalText *string `json:"journalText"`
}

type remindersRequest struct {
	Reminders *string `json:"reminders"`
}

type weekDataRequest struct {
	JournalText *string `json:"journalText"`
	Reminders   *string `json:"reminders"`
}

type birthdateRequest struct {
	Birthdate string `json:"birthdate"`
}

// GridResponse is the body of GET /grid.
type GridResponse struct {
	BirthDate string       `json:"birthDate"`
	Summary   grid.Summary `json:"summary"`
	Cells     []grid.Cell  `json:"cells,omitempty"`
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.api.GetUser(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

func (s *Server) updateBirthdate(w http.ResponseWriter, r *http.Request) {
	var req birthdateRequest
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.api.UpdateBirthdate(r.Context(), req.Birthdate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

func (s *Server) getAllWeeks(w http.ResponseWriter, r *http.Request) {
	all, err := s.api.GetAllWeeks(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if all == nil {
		all = []week.Summary{}
	}
	s.writeJSON(w, http.StatusOK, all)
}

func (s *Server) getWeek(w http.ResponseWriter, r *http.Request) {
	n, ok := s.weekNumber(w, r)
	if !ok {
		return
	}
	rec, err := s.api.GetWeek(r.Context(), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) upsertJournal(w http.ResponseWriter, r *http.Request) {
	n, ok := s.weekNumber(w, r)
	if !ok {
		return
	}
	var req journalRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.JournalText == nil {
		s.writeError(w, r, week.NewValidationError("journalText", "journalText is required"))
		return
	}
	rec, err := s.api.UpsertJournalEntry(r.Context(), n, *req.JournalText)
	s.metrics.recordSave(week.Journal.String(), err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) updateReminders(w http.ResponseWriter, r *http.Request) {
	n, ok := s.weekNumber(w, r)
	if !ok {
		return
	}
	var req remindersRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Reminders == nil {
		s.writeError(w, r, week.NewValidationError("reminders", "reminders is required"))
		return
	}
	rec, err := s.api.UpdateReminders(r.Context(), n, *req.Reminders)
	s.metrics.recordSave(week.Reminders.String(), err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) upsertWeekData(w http.ResponseWriter, r *http.Request) {
	n, ok := s.weekNumber(w, r)
	if !ok {
		return
	}
	var req weekDataRequest
	if !s.decode(w, r, &req) {
		return
	}
	rec, err := s.api.UpsertWeekData(r.Context(), n, req.JournalText, req.Reminders)
	s.metrics.recordSave("week", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) getGrid(w http.ResponseWriter, r *http.Request) {
	cal, u, err := app.Calendar(r.Context(), s.api, s.loc, s.weekStart)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	now := s.clock.Now()
	cells := grid.Build(cal, now)
	resp := GridResponse{
		BirthDate: u.BirthDate,
		Summary:   grid.Summarize(cal, cells, now),
	}
	if v, _ := strconv.ParseBool(r.URL.Query().Get("cells")); v {
		resp.Cells = cells
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) weekNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(mux.Vars(r)["week"])
	if err == nil {
		err = week.ValidateNumber(n)
	} else {
		err = week.NewValidationError("weekNumber", "week number must be an integer")
	}
	if err != nil {
		s.writeError(w, r, err)
		return 0, false
	}
	return n, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, r, week.NewValidationError("body", "invalid JSON body: "+err.Error()))
		return false
	}
	return true
}

// StatusFor maps a store error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case week.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, week.ErrNotFound), errors.Is(err, week.ErrNoBirthDate):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	resp := errorResponse{Error: err.Error(), Code: code}
	var v *week.ValidationError
	if errors.As(err, &v) {
		resp.Field = v.Field
	}
	if code == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		resp.Error = http.StatusText(code)
	}
	s.writeJSON(w, code, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}
