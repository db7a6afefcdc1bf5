package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"trade-confirmer/internal/catalog"
	apperrors "trade-confirmer/internal/errors"
	"trade-confirmer/internal/logging"
	"trade-confirmer/internal/models"
	"trade-confirmer/internal/notation"
	"trade-confirmer/internal/session"
	"trade-confirmer/internal/trading"
)

type notationRequest struct {
	Notation string `json:"notation"`
}

type strategyRequest struct {
	Strategy string `json:"strategy"`
}

type buildRequest struct {
	Notation string `json:"notation,omitempty"`
	Strategy string `json:"strategy,omitempty"`
}

type retypeRequest struct {
	Trade    models.Trade `json:"trade"`
	Strategy string       `json:"strategy"`
}

type confirmRequest struct {
	Notation string                `json:"notation,omitempty"`
	Trade    *models.Trade         `json:"trade,omitempty"`
	Buyers   []models.Counterparty `json:"buyers"`
	Sellers  []models.Counterparty `json:"sellers"`
	Save     bool                  `json:"save"`
}

type solveRequest struct {
	Target *decimal.Decimal `json:"target"`
}

type parseResponse struct {
	Parsed models.ParsedNotation `json:"parsed"`
	Trade  models.Trade          `json:"trade"`
}

type tradeResponse struct {
	Trade          models.Trade    `json:"trade"`
	StructurePrice decimal.Decimal `json:"structure_price"`
	NeedsSwap      bool            `json:"needs_swap"`
}

type confirmResponse struct {
	Text      string `json:"text"`
	JournalID string `json:"journal_id,omitempty"`
}

type sessionResponse struct {
	ID string `json:"id"`
	session.Snapshot
}

// sessionEntry guards one session; the cache hands the same pointer to
// concurrent requests.
type sessionEntry struct {
	mu sync.Mutex
	s  *session.Session
}

// --- Helpers ---

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Code: "bad_request", Message: msg})
}

func (s *Server) internalError(c *gin.Context, where string, err error) {
	s.Logger.Error().Str("where", where).Err(err).Msg("internal_error")
	c.JSON(http.StatusInternalServerError, apiError{Code: "internal_server_error", Message: "internal server error"})
}

// fail maps a domain error onto a status code.
func (s *Server) fail(c *gin.Context, where string, err error) {
	var status int
	var code string
	switch {
	case apperrors.Is(err, apperrors.ErrMalformedInput):
		status, code = http.StatusBadRequest, "malformed_input"
	case apperrors.Is(err, apperrors.ErrUnknownStrategy):
		status, code = http.StatusBadRequest, "unknown_strategy"
	case apperrors.Is(err, apperrors.ErrInvalidLeg):
		status, code = http.StatusBadRequest, "invalid_leg"
	case apperrors.Is(err, apperrors.ErrInputValidation):
		status, code = http.StatusBadRequest, "validation_failed"
	case apperrors.Is(err, apperrors.ErrNotSolvable):
		status, code = http.StatusUnprocessableEntity, "not_solvable"
	case apperrors.Is(err, apperrors.ErrSwapNotReady):
		status, code = http.StatusConflict, "swap_not_ready"
	case apperrors.Is(err, apperrors.ErrNoTrade):
		status, code = http.StatusConflict, "no_trade"
	case apperrors.Is(err, apperrors.ErrSessionNotFound):
		status, code = http.StatusNotFound, "session_not_found"
	default:
		s.internalError(c, where, err)
		return
	}
	c.JSON(status, apiError{Code: code, Message: err.Error()})
}

func newTradeResponse(t models.Trade) tradeResponse {
	price := trading.StructurePrice(t)
	return tradeResponse{Trade: t, StructurePrice: price, NeedsSwap: price.IsNegative()}
}

// record writes a confirmation to the journal when one is configured.
func (s *Server) record(c *gin.Context, raw string, t models.Trade, buyers, sellers []models.Counterparty, text string) (string, error) {
	if s.Journal == nil {
		return "", nil
	}
	entry := &models.Confirmation{
		Notation: raw,
		Trade:    t,
		Buyers:   buyers,
		Sellers:  sellers,
		Text:     text,
	}
	if err := s.Journal.Save(c.Request.Context(), entry); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// --- Stateless handlers ---

func (s *Server) parse(c *gin.Context) {
	var req notationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid JSON body")
		return
	}
	if err := s.validator.ValidateNotation(req.Notation); err != nil {
		s.fail(c, "parse", err)
		return
	}
	raw := strings.TrimSpace(req.Notation)

	key := "parse:" + raw
	if v, ok := s.Parses.Get(key); ok {
		if resp, ok := v.(parseResponse); ok {
			c.Header("X-Cache", "hit")
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	p, err := notation.Parse(raw)
	if err == nil {
		var t models.Trade
		t, err = s.builder.Build(p)
		logging.LogParse(s.Logger, raw, p.StrategyType, err)
		if err == nil {
			resp := parseResponse{Parsed: p, Trade: t}
			s.Parses.Set(key, resp)
			c.Header("X-Cache", "miss")
			c.JSON(http.StatusOK, resp)
			return
		}
	} else {
		logging.LogParse(s.Logger, raw, "", err)
	}
	s.fail(c, "parse", err)
}

// build turns a notation into a trade, or starts an empty trade of the named
// strategy when no notation is given.
func (s *Server) build(c *gin.Context) {
	var req buildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid JSON body")
		return
	}
	var t models.Trade
	var err error
	if strings.TrimSpace(req.Notation) != "" {
		var p models.ParsedNotation
		if p, err = notation.Parse(req.Notation); err == nil {
			t, err = s.builder.Build(p)
		}
	} else {
		t, err = s.builder.Empty(req.Strategy)
	}
	if err != nil {
		s.fail(c, "build", err)
		return
	}
	c.JSON(http.StatusOK, newTradeResponse(t))
}

func (s *Server) retype(c *gin.Context) {
	var req retypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid JSON body")
		return
	}
	t, err := trading.Retype(req.Trade, req.Strategy)
	if err != nil {
		s.fail(c, "retype", err)
		return
	}
	c.JSON(http.StatusOK, newTradeResponse(t))
}

func (s *Server) confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid JSON body")
		return
	}
	if err := s.validator.ValidateCounterparties(req.Buyers, req.Sellers); err != nil {
		s.fail(c, "confirm", err)
		return
	}

	var t models.Trade
	switch {
	case req.Trade != nil:
		if err := req.Trade.Validate(); err != nil {
			s.fail(c, "confirm", err)
			return
		}
		t = *req.Trade
	case strings.TrimSpace(req.Notation) != "":
		err := s.validator.ValidateNotation(req.Notation)
		var p models.ParsedNotation
		if err == nil {
			p, err = notation.Parse(req.Notation)
		}
		if err == nil {
			t, err = s.builder.Build(p)
		}
		if err != nil {
			s.fail(c, "confirm", err)
			return
		}
	default:
		s.badRequest(c, "trade or notation is required")
		return
	}

	text := s.Gen.Generate(t, req.Buyers, req.Sellers)
	resp := confirmResponse{Text: text}
	if req.Save {
		id, err := s.record(c, req.Notation, t, req.Buyers, req.Sellers, text)
		if err != nil {
			s.internalError(c, "journal", err)
			return
		}
		resp.JournalID = id
	}
	logging.LogConfirmation(s.Logger, t.StrategyType, len(req.Buyers), len(req.Sellers), resp.JournalID)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) strategies(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.Definitions())
}

type optionTypeResponse struct {
	Type    catalog.OptionType `json:"type"`
	Strikes int                `json:"strikes"`
}

// optionTypes lists the leg types a leg edit may use, with their strike
// counts.
func (s *Server) optionTypes(c *gin.Context) {
	types := catalog.OptionTypes()
	resp := make([]optionTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, optionTypeResponse{Type: t, Strikes: catalog.RequiredStrikeCount(t)})
	}
	c.JSON(http.StatusOK, resp)
}

// --- Session handlers ---

func (s *Server) createSession(c *gin.Context) {
	id := uuid.NewString()
	entry := &sessionEntry{s: session.New(s.Gen)}
	if !s.Sessions.Set(id, entry) {
		s.internalError(c, "createSession", apperrors.Wrap(apperrors.ErrDatabaseError, "session cache rejected write"))
		return
	}
	s.Sessions.Wait()
	logger := logging.WithSession(s.Logger, id)
	logger.Debug().Msg("session created")
	c.JSON(http.StatusCreated, sessionResponse{ID: id, Snapshot: entry.s.Snapshot()})
}

func (s *Server) lookup(id string) (*sessionEntry, error) {
	v, ok := s.Sessions.Get(id)
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	entry, ok := v.(*sessionEntry)
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return entry, nil
}

// withSession runs fn on the locked session named in the path and replies
// with its snapshot. Every successful call refreshes the session TTL.
func (s *Server) withSession(c *gin.Context, where string, fn func(*session.Session) error) {
	id := c.Param("id")
	entry, err := s.lookup(id)
	if err != nil {
		s.fail(c, where, err)
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := fn(entry.s); err != nil {
		s.fail(c, where, err)
		return
	}
	s.Sessions.Set(id, entry)
	c.JSON(http.StatusOK, sessionResponse{ID: id, Snapshot: entry.s.Snapshot()})
}

func (s *Server) getSession(c *gin.Context) {
	s.withSession(c, "getSession", func(*session.Session) error { return nil })
}

func (s *Server) deleteSession(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.lookup(id); err != nil {
		s.fail(c, "deleteSession", err)
		return
	}
	s.Sessions.Del(id)
	c.Status(http.StatusNoContent)
}

func (s *Server) sessionParse(c *gin.Context) {
	var req notationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid JSON body")
		return
	}
	if err := s.validator.ValidateNotation(req.Notation); err != nil {
		s.fail(c, "sessionParse", err)
		return
	}
	s.withSession(c, "sessionParse", func(ss *session.Session) error {
		t, err := ss.Parse(req.Notation)
		logging.LogParse(logging.WithSession(s.Logger, c.Param("id")), req.Notation, t.StrategyType, err)
		return err
	})
}

func (s *Server) sessionRetype(c *gin.Context) {
	var req strategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid JSON body")
		return
	}
	s.withSession(c, "sessionRetype", func(ss *session.Session) error {
		_, err := ss.Retype(req.Strategy)
		return err
	})
}

func (s *Server) sessionSetLeg(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 1 || n > 2 {
		s.badRequest(c, "leg must be 1 or 2")
		return
	}
	var leg models.Leg
	if err := c.ShouldBindJSON(&leg); err != nil {
		s.badRequest(c, "invalid JSON body")
		return
	}
	s.withSession(c, "sessionSetLeg", func(ss *session.Session) error {
		return ss.SetLeg(n, leg)
	})
}

func (s *Server) sessionSolve(c *gin.Context) {
	var req solveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Target == nil {
		s.badRequest(c, "target price is required")
		return
	}
	s.withSession(c, "sessionSolve", func(ss *session.Session) error {
		return ss.SolvePrice(*req.Target)
	})
}

func (s *Server) sessionSwap(c *gin.Context) {
	s.withSession(c, "sessionSwap", func(ss *session.Session) error {
		return ss.SwapLegs()
	})
}

func (s *Server) sessionConfirm(c *gin.Context) {
	var req confirmRequest
	// an empty body keeps the session counterparties
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.badRequest(c, "invalid JSON body")
		return
	}

	id := c.Param("id")
	entry, err := s.lookup(id)
	if err != nil {
		s.fail(c, "sessionConfirm", err)
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if req.Buyers != nil || req.Sellers != nil {
		if err := s.validator.ValidateCounterparties(req.Buyers, req.Sellers); err != nil {
			s.fail(c, "sessionConfirm", err)
			return
		}
		if err := entry.s.SetCounterparties(req.Buyers, req.Sellers); err != nil {
			s.fail(c, "sessionConfirm", err)
			return
		}
	}
	text, err := entry.s.Generate()
	if err != nil {
		s.fail(c, "sessionConfirm", err)
		return
	}

	resp := confirmResponse{Text: text}
	t, _ := entry.s.Trade()
	if req.Save {
		raw := ""
		if p, ok := entry.s.Parsed(); ok {
			raw = p.Raw
		}
		resp.JournalID, err = s.record(c, raw, t, entry.s.Buyers(), entry.s.Sellers(), text)
		if err != nil {
			s.internalError(c, "journal", err)
			return
		}
	}
	s.Sessions.Set(id, entry)
	logging.LogConfirmation(logging.WithSession(s.Logger, id), t.StrategyType,
		len(entry.s.Buyers()), len(entry.s.Sellers()), resp.JournalID)
	c.JSON(http.StatusOK, resp)
}
