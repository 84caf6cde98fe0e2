package httpApi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"swapboard/internal/format"
	"swapboard/internal/model"
	"swapboard/internal/selector"
	"swapboard/internal/webSocket"
	"swapboard/internal/widget"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// instanceCookie remembers the preview widget of a browser between requests.
const instanceCookie = "swapboard_preview"

type Options struct {
	Variant     widget.Variant // served on /widgets/recent-swaps
	Stablecoins []string
	Now         func() time.Time
	Logger      *zap.Logger
}

type server struct {
	state       selector.State
	renderer    *widget.Renderer
	instances   *widget.Instances
	wsHub       *webSocket.Hub
	variant     widget.Variant
	stablecoins []string
	now         func() time.Time
	log         *zap.Logger
	mux         *http.ServeMux
}

func NewServer(state selector.State, renderer *widget.Renderer, instances *widget.Instances, wsHub *webSocket.Hub, opts Options) http.Handler {
	s := &server{
		state:       state,
		renderer:    renderer,
		instances:   instances,
		wsHub:       wsHub,
		variant:     opts.Variant,
		stablecoins: opts.Stablecoins,
		now:         opts.Now,
		log:         opts.Logger,
		mux:         http.NewServeMux(),
	}
	if s.variant == "" {
		s.variant = widget.Full
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.routes()
	return s.mux
}

func (s *server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("GET /widgets/recent-swaps", s.handleRecentSwaps)
	s.mux.HandleFunc("GET /widgets/recent-swaps/{variant}", s.handleRecentSwaps)
	s.mux.HandleFunc("POST /widgets/recent-swaps/preview/{id}/expand", s.handleExpand)
	s.mux.HandleFunc("POST "+widget.MintExpandPath, s.handleMintExpand)

	s.mux.HandleFunc("GET /tokens/search", s.handleSearchTokens)
	s.mux.HandleFunc("GET /tokens/display", s.handleDisplayByToken)

	s.mux.HandleFunc("GET /ws", s.handleWS)
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"ok": true, "time": s.now().UTC()})
}

// variantFor resolves the variant from the path, then ?variant=, then the configured default.
func (s *server) variantFor(r *http.Request) (widget.Variant, error) {
	name := r.PathValue("variant")
	if name == "" {
		name = r.URL.Query().Get("variant")
	}
	if name == "" {
		return s.variant, nil
	}
	return widget.ParseVariant(name)
}

func (s *server) props(r *http.Request, v widget.Variant) widget.Props {
	q := r.URL.Query()
	p := widget.Props{
		Trades: selector.RecentSwaps(s.state),
		Rates:  s.state,
		Now:    s.now(),
		Layout: widget.ParseLayout(q.Get("size"), q.Get("width")),
		Offset: queryInt(q.Get("offset"), 0),
		Height: queryInt(q.Get("height"), widget.DefaultHeight),
	}
	if v == widget.Preview && s.instances != nil {
		id := q.Get("instance")
		if id == "" {
			if c, err := r.Cookie(instanceCookie); err == nil {
				id = c.Value
			}
		}
		p.Instance, p.State = s.instances.Resolve(id)
	}
	return p
}

func setInstanceCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     instanceCookie,
		Value:    id,
		Path:     "/widgets/recent-swaps",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *server) handleRecentSwaps(w http.ResponseWriter, r *http.Request) {
	v, err := s.variantFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	p := s.props(r, v)
	frag, err := s.renderer.Fragment(v, p)
	if err != nil {
		s.log.Error("render failed", zap.String("variant", string(v)), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	if p.Instance != "" {
		setInstanceCookie(w, p.Instance)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(frag)
}

func (s *server) handleExpand(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.instances == nil {
		http.Error(w, "instances disabled", http.StatusNotFound)
		return
	}
	if err := s.instances.Expand(id); err != nil {
		if errors.Is(err, widget.ErrUnknownInstance) {
			http.Error(w, "unknown widget instance", http.StatusNotFound)
			return
		}
		http.Error(w, "expand failed", http.StatusInternalServerError)
		return
	}
	setInstanceCookie(w, id)
	http.Redirect(w, r, "/widgets/recent-swaps/preview?instance="+id, http.StatusSeeOther)
}

// handleMintExpand serves View All on fragments that carry no instance,
// such as live pushes.
func (s *server) handleMintExpand(w http.ResponseWriter, r *http.Request) {
	if s.instances == nil {
		http.Error(w, "instances disabled", http.StatusNotFound)
		return
	}
	id := s.instances.New()
	if err := s.instances.Expand(id); err != nil {
		http.Error(w, "expand failed", http.StatusInternalServerError)
		return
	}
	setInstanceCookie(w, id)
	http.Redirect(w, r, "/widgets/recent-swaps/preview?instance="+id, http.StatusSeeOther)
}

func (s *server) handleSearchTokens(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, selector.SearchTokens(s.state, s.stablecoins))
}

func (s *server) handleDisplayByToken(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount := q.Get("amount")
	query := model.TokenQuery{Address: q.Get("address"), Symbol: q.Get("symbol")}
	if amount == "" || (query.Address == "" && query.Symbol == "") {
		http.Error(w, "amount and address or symbol required", http.StatusBadRequest)
		return
	}

	display, err := selector.DisplayByToken(s.state, query, amount)
	switch {
	case errors.Is(err, selector.ErrTokenNotFound):
		http.Error(w, "token not found", http.StatusNotFound)
		return
	case errors.Is(err, format.ErrInvalidAmount):
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"display": display})
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.wsHub == nil {
		http.Error(w, "WebSocket not supported in test mode", http.StatusNotImplemented)
		return
	}
	v, err := s.variantFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.wsHub.ServeWS(string(v), func() ([]byte, error) {
		return s.renderer.Fragment(v, LiveProps(s.state, s.now()))
	}).ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return def
	}
	return v
}
