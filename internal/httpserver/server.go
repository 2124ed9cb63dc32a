// internal/httpserver/server.go
//
// HTTP server wiring for the dice grid backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, CORS, timeouts, panic recovery).
//   - Public endpoints: "/" (embedded browser UI), "/health", POST /game/new.
//   - Session endpoints (token required): state, initial, roll, select, fill, command.
//
// Notes:
//   - A game is bound to the browser by a signed session token, sent back as
//     a cookie and in the /game/new body for bearer use.
//   - The rule engine never errors on an illegal move. Handlers answer 200
//     with "applied": false and the unchanged view; HTTP errors are reserved
//     for malformed requests and missing sessions.
//   - Controls a browser would show as disabled (roll while a die is
//     selected, a second place click, ...) are refused here via
//     game.State.Permitted; the engine itself stays permissive.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/crisscross/assets"
	"github.com/robalobadob/crisscross/internal/daily"
	"github.com/robalobadob/crisscross/internal/game"
	"github.com/robalobadob/crisscross/internal/session"
	"github.com/robalobadob/crisscross/internal/store"
)

// Options carries the settings the server needs from config.
type Options struct {
	ClientOrigin   string
	DailySalt      string
	Rules          game.Rules
	RequestTimeout time.Duration
}

// Server bundles router, session store, and token issuer.
type Server struct {
	r      *chi.Mux
	store  store.Store
	tokens *session.Tokens
	opts   Options
	now    func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, tokens *session.Tokens, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	s := &Server{r: chi.NewRouter(), store: st, tokens: tokens, opts: opts, now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))        // request-scoped logger
	s.r.Use(accessLog)                          // one line per request
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time
	s.r.Use(cors(opts.ClientOrigin))            // credentials-friendly CORS

	// --- browser UI ---
	s.r.Get("/", s.handleIndex)

	s.r.Group(func(r chi.Router) {
		r.Use(jsonContentType)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Post("/game/new", s.handleNewGame)

		// Everything below needs a session token.
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/game/state", s.handleState)
			r.Post("/game/initial", s.handleInitial)
			r.Post("/game/roll", s.handleRoll)
			r.Post("/game/select", s.handleSelect)
			r.Post("/game/fill", s.handleFill)
			r.Post("/game/command", s.handleCommand)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Start begins serving HTTP on addr and shuts down gracefully when ctx ends.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one structured line per request, tagged with the chi request id.
func accessLog(next http.Handler) http.Handler {
	return hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})(next)
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ctxGameKey is the context key for the session's game id.
type ctxGameKey struct{}

// requireSession enforces a valid session token and injects the game id into
// the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.tokens.FromRequest(r)
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("session rejected")
			writeError(w, http.StatusUnauthorized, "no_session")
			return
		}
		ctx := context.WithValue(r.Context(), ctxGameKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// gameID returns the id injected by requireSession.
func gameID(r *http.Request) string {
	id, _ := r.Context().Value(ctxGameKey{}).(string)
	return id
}

// ------------------------------- UI ----------------------------------------

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := assets.Index()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("read index")
		http.Error(w, "index unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Mode string `json:"mode"` // "normal" (default) | "daily"
}
type newGameRes struct {
	GameID string `json:"gameId"`
	Token  string `json:"token"`
	View   view   `json:"view"`
}

// handleNewGame creates a session, seeds its roller, and hands back a token.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	mode := store.Mode(req.Mode)
	var seed int64
	switch mode {
	case "", store.ModeNormal:
		mode = store.ModeNormal
		var err error
		if seed, err = game.NewSeed(); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("seed roller")
			writeError(w, http.StatusInternalServerError, "seed_failed")
			return
		}
	case store.ModeDaily:
		seed = daily.Seed(s.now(), s.opts.DailySalt)
	default:
		writeError(w, http.StatusBadRequest, "bad_mode")
		return
	}

	sess, err := s.store.Create(r.Context(), mode, game.New(s.opts.Rules), game.NewRoller(seed))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("create session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, exp, err := s.tokens.Issue(sess.ID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("issue token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.tokens.SetCookie(w, tok, exp)

	hlog.FromRequest(r).Info().Str("gameId", sess.ID).Str("name", sess.Name).Str("mode", string(mode)).Msg("game created")
	_ = json.NewEncoder(w).Encode(newGameRes{GameID: sess.ID, Token: tok, View: newView(sess)})
}

// handleState returns the current view.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), gameID(r))
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(newView(sess))
}

type initialReq struct {
	Value int `json:"value"`
}

// handleInitial is a click on one of the six numbered buttons.
func (s *Server) handleInitial(w http.ResponseWriter, r *http.Request) {
	var req initialReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.apply(w, r, func(game.State) game.Command {
		return game.Command{Type: game.CmdChooseInitial, Value: req.Value}
	})
}

// handleRoll is a click on the roll trigger.
func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, func(game.State) game.Command {
		return game.Command{Type: game.CmdRoll}
	})
}

type selectReq struct {
	Die int `json:"die"` // 0 or 1
}

// handleSelect is a click on one of the two place buttons.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Die != 0 && req.Die != 1 {
		writeError(w, http.StatusBadRequest, "bad_die")
		return
	}
	s.apply(w, r, func(st game.State) game.Command {
		return game.Command{Type: game.CmdSelect, Value: st.Dice[req.Die]}
	})
}

type fillReq struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// handleFill is a click on a grid cell.
func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	var req fillReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.apply(w, r, func(game.State) game.Command {
		return game.Command{Type: game.CmdFill, Row: req.Row, Col: req.Col}
	})
}

// handleCommand feeds a raw command through the reducer.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd game.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.apply(w, r, func(game.State) game.Command { return cmd })
}

// actionRes is returned by every action endpoint.
type actionRes struct {
	Applied bool `json:"applied"`
	View    view `json:"view"`
}

// apply builds a command from the current state, gates it like the UI
// would, and runs it through the reducer atomically.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, build func(game.State) game.Command) {
	var (
		applied bool
		cmd     game.Command
	)
	sess, err := s.store.Update(r.Context(), gameID(r), func(sess *store.Session) error {
		cmd = build(sess.State)
		if !cmd.Type.Valid() {
			return game.ErrUnknownCommand
		}
		if !sess.State.Permitted(cmd) {
			return nil
		}
		next, ok, err := game.Reduce(sess.State, cmd, sess.Roller)
		if err != nil {
			return err
		}
		sess.State, applied = next, ok
		return nil
	})
	switch {
	case errors.Is(err, game.ErrUnknownCommand):
		writeError(w, http.StatusBadRequest, "unknown_command")
		return
	case err != nil:
		s.storeError(w, r, err)
		return
	}

	hlog.FromRequest(r).Debug().
		Str("gameId", sess.ID).
		Str("cmd", string(cmd.Type)).
		Int("value", cmd.Value).
		Int("row", cmd.Row).
		Int("col", cmd.Col).
		Bool("applied", applied).
		Str("phase", string(sess.State.Phase())).
		Msg("command")

	_ = json.NewEncoder(w).Encode(actionRes{Applied: applied, View: newView(sess)})
}

// storeError maps store failures to HTTP responses.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "game_not_found")
		return
	}
	hlog.FromRequest(r).Error().Err(err).Msg("store")
	writeError(w, http.StatusInternalServerError, "store_failed")
}

// ------------------------------- view --------------------------------------

// controls mirrors the enabled/visible state of the UI controls.
type controls struct {
	ChooseInitial bool `json:"chooseInitial"`
	Roll          bool `json:"roll"`
	Select        bool `json:"select"`
	ShowDice      bool `json:"showDice"`
}

// view is the JSON shape of a game sent to clients. Grid cells are 0 when blank.
type view struct {
	GameID        string                    `json:"gameId"`
	Name          string                    `json:"name"`
	Mode          store.Mode                `json:"mode"`
	Grid          [game.Size][game.Size]int `json:"grid"`
	Dice          game.Dice                 `json:"dice"`
	Selected      *int                      `json:"selected"`
	LastFilled    *game.Coord               `json:"lastFilled"`
	InitialFilled bool                      `json:"initialFilled"`
	Phase         game.Phase                `json:"phase"`
	Filled        int                       `json:"filled"`
	Controls      controls                  `json:"controls"`
	Rules         game.Rules                `json:"rules"`
}

func newView(sess store.Session) view {
	st := sess.State
	v := view{
		GameID:        sess.ID,
		Name:          sess.Name,
		Mode:          sess.Mode,
		Dice:          st.Dice,
		InitialFilled: st.InitialFilled,
		Phase:         st.Phase(),
		Filled:        st.FilledCount(),
		Rules:         st.Rules,
		Controls: controls{
			ChooseInitial: st.CanChooseInitial(),
			Roll:          st.CanRoll(),
			Select:        st.CanSelect(),
			ShowDice:      st.ShowDice(),
		},
	}
	for r := range st.Grid {
		for c := range st.Grid[r] {
			v.Grid[r][c] = int(st.Grid[r][c])
		}
	}
	if st.HasSelected {
		sel := st.Selected
		v.Selected = &sel
	}
	if st.HasLastFilled {
		last := st.LastFilled
		v.LastFilled = &last
	}
	return v
}

// ------------------------------- small util --------------------------------

// writeError writes {"error":code} with the given status.
func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + code + `"}` + "\n"))
}
